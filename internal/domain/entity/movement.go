package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Formas de pago. Todas salvo FIADO nacen pagadas.
const (
	PaymentCash   = "DINHEIRO"
	PaymentCard   = "CARTAO"
	PaymentPix    = "PIX"
	PaymentCredit = "FIADO"
)

// CounterClientName nombre impreso cuando la venta no tiene cliente.
const CounterClientName = "CONSUMIDOR"

// Movement una línea vendida, persistida como fila del libro. Las filas de una
// misma venta comparten Code; no existe cabecera de venta.
//
// Los campos Product*, ClientName y EmployeeName son copias del maestro al
// momento de la venta y se actualizan en cascada cuando el maestro cambia.
// UnitPrice es el precio de venta histórico; CurrentPrice sigue al producto
// mientras la fila no esté pagada.
type Movement struct {
	ID                 string
	Code               int64
	ProductID          string
	ProductDescription string
	ProductBarcode     string
	ProductGeneric     bool
	ClientID           string // vacío = venta de balcão
	ClientName         string
	EmployeeID         string
	EmployeeName       string
	Quantity           decimal.Decimal
	UnitPrice          decimal.Decimal
	CurrentPrice       decimal.Decimal
	Discount           decimal.Decimal
	Total              decimal.Decimal
	PaymentType        string
	Paid               bool
	PaidAt             *time.Time
	PaidTotal          decimal.Decimal
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
