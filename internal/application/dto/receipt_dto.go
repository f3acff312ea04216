package dto

// ReceiptResponse cupom codificado (GET .../cupom?format=base64).
type ReceiptResponse struct {
	Kind    string `json:"kind"` // venda | pagamento
	Ref     string `json:"ref"`
	Data    string `json:"data"` // ESC/POS en base64
	Preview string `json:"preview"`
	File    string `json:"file"`
}

// PrintResponse resultado de POST /api/vendas/:code/imprimir.
type PrintResponse struct {
	Printed bool   `json:"printed"`
	Printer string `json:"printer"`
	JobID   string `json:"job_id,omitempty"`
}
