package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product producto del catálogo. Generic marca medicamento genérico.
type Product struct {
	ID            string
	Description   string
	Barcode       string
	PurchasePrice decimal.Decimal
	SalePrice     decimal.Decimal
	Generic       bool
	Deleted       bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
