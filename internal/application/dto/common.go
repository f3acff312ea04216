package dto

// ListQuery paginación y búsqueda por columna para listados.
// GET /api/clientes?limit=20&offset=0&field=name&q=maria
type ListQuery struct {
	Limit   int    `query:"limit"`
	Offset  int    `query:"offset"`
	Field   string `query:"field"`
	Q       string `query:"q"`
	Deleted bool   `query:"deleted"`
}

// Normalize aplica límites: limit por defecto 20, máximo 100; offset no negativo.
func (p *ListQuery) Normalize() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
