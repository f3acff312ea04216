package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceResponse saldo fiado abierto de un cliente (GET /api/contas).
type BalanceResponse struct {
	ClientID    string          `json:"client_id"`
	ClientName  string          `json:"client_name"`
	FolderCode  string          `json:"folder_code,omitempty"`
	OpenRows    int             `json:"open_rows"`
	OpenTotal   decimal.Decimal `json:"open_total"`
	Due         decimal.Decimal `json:"due"`
	OldestSale  time.Time       `json:"oldest_sale"`
	LastPayment *time.Time      `json:"last_payment,omitempty"`
}

// BalanceListResponse lista paginada de saldos.
type BalanceListResponse struct {
	Items []BalanceResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// AccountRowResponse fila abierta con el monto que se cobra hoy.
type AccountRowResponse struct {
	MovementResponse
	Due decimal.Decimal `json:"due"`
}

// ClientAccountResponse cuenta fiado de un cliente (GET /api/contas/:clientId).
type ClientAccountResponse struct {
	Client    ClientResponse       `json:"client"`
	Rows      []AccountRowResponse `json:"rows"`
	OpenTotal decimal.Decimal      `json:"open_total"`
	Due       decimal.Decimal      `json:"due"`
}

// SettleRequest body para POST /api/contas/pagar. Sin movement_ids se pagan
// todas las filas abiertas del cliente.
type SettleRequest struct {
	ClientID    string   `json:"client_id,omitempty"`
	MovementIDs []string `json:"movement_ids,omitempty"`
	EmployeeID  string   `json:"employee_id,omitempty"`
	Print       bool     `json:"print"`
}

// ReopenRequest body para POST /api/contas/estornar.
type ReopenRequest struct {
	MovementIDs []string `json:"movement_ids"`
}

// SettlementResponse resultado de un pago.
type SettlementResponse struct {
	ClientID   string               `json:"client_id"`
	ClientName string               `json:"client_name"`
	PaidAt     time.Time            `json:"paid_at"`
	Rows       []AccountRowResponse `json:"rows"`
	TotalPaid  decimal.Decimal      `json:"total_paid"`
	Printed    bool                 `json:"printed,omitempty"`
	PrintError string               `json:"print_error,omitempty"`
}
