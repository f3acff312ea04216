package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App     AppConfig
	DB      DBConfig
	JWT     JWTConfig
	HTTP    HTTPConfig
	Store   StoreConfig
	Printer PrinterConfig
	Ledger  LedgerConfig
	Jobs    JobsConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	Driver      string // postgres | memory
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	AutoMigrate bool
	ConfigFile  string // archivo local donde /api/config/db persiste los parámetros
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + sslMode,
	}
	return u.String()
}

// JWTConfig configuración de JWT. Con Secret vacío la API no exige token.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// StoreConfig datos de la farmacia impresos en la cabecera del cupom.
type StoreConfig struct {
	Name    string
	Address string
	Phone   string
	CNPJ    string
	Footer  string
}

// PrinterConfig integración con la impresora térmica.
type PrinterConfig struct {
	Mode     string // spooler | agent | none
	Name     string // nombre de la impresora en el spooler del SO
	Command  string // comando del spooler; por defecto "lp"
	AgentURL string
	Columns  int // 48 = 80 mm, 32 = 58 mm
	Rate     float64
	Timeout  time.Duration
	Drawer   bool // abrir gaveta tras imprimir cupom de venta
}

// LedgerConfig reglas del libro de movimientos.
type LedgerConfig struct {
	ChargeCurrentPrice bool // la cuenta fiado se cobra al precio actual del producto
}

// JobsConfig tareas programadas.
type JobsConfig struct {
	ReconcileCron string // vacío desactiva la reconciliación
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, PRINTER_MODE, etc.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "farmacia-pos"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		DB: DBConfig{
			Driver:      getString(v, "DB_DRIVER", "postgres"),
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "farmacia"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
			AutoMigrate: getBool(v, "DB_AUTO_MIGRATE", true),
			ConfigFile:  getString(v, "DB_CONFIG_FILE", "farmacia-db.yaml"),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 720),
			Issuer:     getString(v, "JWT_ISSUER", "farmacia-pos"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Store: StoreConfig{
			Name:    getString(v, "STORE_NAME", "FARMACIA"),
			Address: getString(v, "STORE_ADDRESS", ""),
			Phone:   getString(v, "STORE_PHONE", ""),
			CNPJ:    getString(v, "STORE_CNPJ", ""),
			Footer:  getString(v, "STORE_FOOTER", "OBRIGADO PELA PREFERENCIA"),
		},
		Printer: PrinterConfig{
			Mode:     getString(v, "PRINTER_MODE", "none"),
			Name:     getString(v, "PRINTER_NAME", ""),
			Command:  getString(v, "PRINTER_COMMAND", "lp"),
			AgentURL: getString(v, "PRINTER_AGENT_URL", "http://127.0.0.1:9100"),
			Columns:  getInt(v, "PRINTER_COLUMNS", 48),
			Rate:     getFloat(v, "PRINTER_JOBS_PER_SECOND", 0.5),
			Timeout:  getDuration(v, "PRINTER_TIMEOUT", 15*time.Second),
			Drawer:   getBool(v, "PRINTER_OPEN_DRAWER", false),
		},
		Ledger: LedgerConfig{
			ChargeCurrentPrice: getBool(v, "LEDGER_CHARGE_CURRENT_PRICE", true),
		},
		Jobs: JobsConfig{
			ReconcileCron: getString(v, "LEDGER_RECONCILE_CRON", "0 3 * * *"),
		},
	}

	if cfg.Printer.Columns != 32 && cfg.Printer.Columns != 48 {
		return nil, fmt.Errorf("PRINTER_COLUMNS debe ser 32 o 48, recibido %d", cfg.Printer.Columns)
	}
	switch cfg.Printer.Mode {
	case "spooler", "agent", "none":
	default:
		return nil, fmt.Errorf("PRINTER_MODE inválido: %q", cfg.Printer.Mode)
	}
	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if !v.IsSet(key) {
		return def
	}
	switch v.Get(key).(type) {
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
		if err != nil {
			return def
		}
		return n
	default:
		return v.GetInt(key)
	}
}

func getFloat(v *viper.Viper, key string, def float64) float64 {
	if !v.IsSet(key) {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v.GetString(key)), 64)
	if err != nil {
		return def
	}
	return f
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if !v.IsSet(key) {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v.GetString(key)))
	if err != nil {
		return def
	}
	return b
}

func getDuration(v *viper.Viper, key string, def time.Duration) time.Duration {
	if !v.IsSet(key) {
		return def
	}
	d, err := time.ParseDuration(strings.TrimSpace(v.GetString(key)))
	if err != nil {
		return def
	}
	return d
}
