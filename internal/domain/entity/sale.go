package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale cabecera de venta calculada sobre las filas que comparten Code.
type Sale struct {
	Code         int64
	Date         time.Time // max(created_at)
	ClientID     string
	ClientName   string
	EmployeeID   string
	EmployeeName string
	PaymentType  string
	Items        int
	Gross        decimal.Decimal // sum(quantity*unit_price)
	Discount     decimal.Decimal
	Total        decimal.Decimal
	Paid         bool // todas las filas pagadas
	Open         decimal.Decimal
}

// ClientBalance saldo fiado abierto de un cliente.
type ClientBalance struct {
	ClientID    string
	ClientName  string
	FolderCode  string
	OpenRows    int
	OpenTotal   decimal.Decimal // suma histórica (total)
	Due         decimal.Decimal // lo que se cobra hoy
	OldestSale  time.Time
	LastPayment *time.Time
}
