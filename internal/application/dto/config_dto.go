package dto

// DBConfigRequest parámetros de conexión (PUT /api/config/db y POST /api/config/db/test).
type DBConfigRequest struct {
	DatabaseURL string `json:"database_url,omitempty"`
	Host        string `json:"host"`
	Port        int    `json:"port"`
	User        string `json:"user"`
	Password    string `json:"password,omitempty"` // vacío conserva la actual
	Name        string `json:"name"`
	SSLMode     string `json:"sslmode"`
}

// DBConfigResponse parámetros actuales; la contraseña nunca se devuelve.
type DBConfigResponse struct {
	DatabaseURL string `json:"database_url,omitempty"`
	Host        string `json:"host"`
	Port        int    `json:"port"`
	User        string `json:"user"`
	PasswordSet bool   `json:"password_set"`
	Name        string `json:"name"`
	SSLMode     string `json:"sslmode"`
	Source      string `json:"source"` // file | env
	File        string `json:"file"`
	Restart     bool   `json:"restart_required,omitempty"`
}

// DBTestResponse resultado de probar una conexión.
type DBTestResponse struct {
	OK        bool   `json:"ok"`
	Message   string `json:"message"`
	LatencyMS int64  `json:"latency_ms"`
}
