package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterSaleRequest body para POST /api/vendas.
type RegisterSaleRequest struct {
	ClientID    string            `json:"client_id,omitempty"` // obligatorio en FIADO
	EmployeeID  string            `json:"employee_id"`
	PaymentType string            `json:"payment_type"` // DINHEIRO | CARTAO | PIX | FIADO
	Discount    decimal.Decimal   `json:"discount"`     // descuento sobre el total, se reparte entre las líneas
	Items       []SaleItemRequest `json:"items"`
	Print       bool              `json:"print"`
}

// SaleItemRequest línea de venta. Se identifica el producto por id o por código de barras.
// UnitPrice nil toma el precio de venta actual del producto.
type SaleItemRequest struct {
	ProductID string           `json:"product_id,omitempty"`
	Barcode   string           `json:"barcode,omitempty"`
	Quantity  decimal.Decimal  `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
	Discount  decimal.Decimal  `json:"discount"`
}

// SaleQuery filtros de GET /api/vendas.
type SaleQuery struct {
	Limit    int
	Offset   int
	ClientID string
	Paid     *bool
	From     *time.Time
	To       *time.Time
}

// SaleResponse cabecera agregada (y filas en el detalle).
type SaleResponse struct {
	Code         int64              `json:"code"`
	Date         time.Time          `json:"date"`
	ClientID     string             `json:"client_id,omitempty"`
	ClientName   string             `json:"client_name"`
	EmployeeID   string             `json:"employee_id"`
	EmployeeName string             `json:"employee_name"`
	PaymentType  string             `json:"payment_type"`
	Items        int                `json:"items"`
	Gross        decimal.Decimal    `json:"gross"`
	Discount     decimal.Decimal    `json:"discount"`
	Total        decimal.Decimal    `json:"total"`
	Open         decimal.Decimal    `json:"open"`
	Paid         bool               `json:"paid"`
	Rows         []MovementResponse `json:"rows,omitempty"`
	Printed      bool               `json:"printed,omitempty"`
	PrintError   string             `json:"print_error,omitempty"`
}

// SaleListResponse lista paginada de ventas.
type SaleListResponse struct {
	Items []SaleResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
