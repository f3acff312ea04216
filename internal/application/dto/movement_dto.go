package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementQuery filtros de GET /api/movimentos.
type MovementQuery struct {
	ListQuery
	Code       *int64
	ClientID   string
	EmployeeID string
	Paid       *bool
	From       *time.Time
	To         *time.Time
}

// UpdateMovementRequest corrección de una fila abierta.
type UpdateMovementRequest struct {
	Quantity  *decimal.Decimal `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
	Discount  *decimal.Decimal `json:"discount"`
}

// MovementResponse fila del libro.
type MovementResponse struct {
	ID                 string          `json:"id"`
	Code               int64           `json:"code"`
	ProductID          string          `json:"product_id"`
	ProductDescription string          `json:"product_description"`
	ProductBarcode     string          `json:"product_barcode,omitempty"`
	ProductGeneric     bool            `json:"product_generic"`
	ClientID           string          `json:"client_id,omitempty"`
	ClientName         string          `json:"client_name"`
	EmployeeID         string          `json:"employee_id"`
	EmployeeName       string          `json:"employee_name"`
	Quantity           decimal.Decimal `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	CurrentPrice       decimal.Decimal `json:"current_price"`
	Discount           decimal.Decimal `json:"discount"`
	Total              decimal.Decimal `json:"total"`
	PaymentType        string          `json:"payment_type"`
	Paid               bool            `json:"paid"`
	PaidAt             *time.Time      `json:"paid_at,omitempty"`
	PaidTotal          decimal.Decimal `json:"paid_total"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// MovementListResponse lista paginada de filas.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
