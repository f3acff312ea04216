package ports

import "github.com/shopspring/decimal"

// LedgerMetrics registra eventos del libro (ventas, pagos fiado).
type LedgerMetrics interface {
	SaleRegistered(paymentType string, items int, total decimal.Decimal)
	RowsSettled(rows int, amount decimal.Decimal)
}

// NopMetrics descarta todo.
type NopMetrics struct{}

func (NopMetrics) SaleRegistered(string, int, decimal.Decimal) {}
func (NopMetrics) RowsSettled(int, decimal.Decimal)            {}
