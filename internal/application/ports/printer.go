package ports

import "context"

// Printer destino de los bytes ESC/POS (spooler del SO o agente de impresión).
type Printer interface {
	Name() string
	// Print envía el trabajo y devuelve el identificador asignado, si lo hay.
	Print(ctx context.Context, data []byte) (jobID string, err error)
}

// ReceiptPDF representa el cupom como PDF de 80 mm.
type ReceiptPDF interface {
	Render(ctx context.Context, title string, lines []string) ([]byte, error)
}
