package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	Description   string          `json:"description"`
	Barcode       string          `json:"barcode"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	Generic       bool            `json:"generic"`
}

// UpdateProductRequest entrada para actualizar un producto. Un cambio de
// sale_price se propaga al precio actual de las filas fiado abiertas.
type UpdateProductRequest struct {
	Description   *string          `json:"description"`
	Barcode       *string          `json:"barcode"`
	PurchasePrice *decimal.Decimal `json:"purchase_price"`
	SalePrice     *decimal.Decimal `json:"sale_price"`
	Generic       *bool            `json:"generic"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID            string          `json:"id"`
	Description   string          `json:"description"`
	Barcode       string          `json:"barcode"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	Generic       bool            `json:"generic"`
	Deleted       bool            `json:"deleted"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
