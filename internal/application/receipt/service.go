// Package receipt genera los cupons (venta y comprobante de pago fiado) como
// bytes ESC/POS, vista previa en texto, base64 o PDF, y los envía a la impresora.
package receipt

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/farmacia-pos/internal/application/dto"
	"github.com/jhoicas/farmacia-pos/internal/application/ports"
	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/ledger"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
	"github.com/jhoicas/farmacia-pos/pkg/config"
	"github.com/jhoicas/farmacia-pos/pkg/logger"
)

// Tipos de cupom.
const (
	KindSale    = "venda"
	KindPayment = "pagamento"
)

// Receipt cupom renderizado.
type Receipt struct {
	Kind    string
	Ref     string
	Title   string
	Data    []byte
	Preview string
}

// FileName nombre sugerido para descargas.
func (r *Receipt) FileName(ext string) string {
	return fmt.Sprintf("cupom-%s-%s.%s", r.Kind, r.Ref, ext)
}

// Lines vista previa línea por línea (sin las líneas vacías del final).
func (r *Receipt) Lines() []string {
	return strings.Split(strings.TrimRight(r.Preview, "\n"), "\n")
}

// ToResponse representación base64.
func (r *Receipt) ToResponse() *dto.ReceiptResponse {
	return &dto.ReceiptResponse{
		Kind:    r.Kind,
		Ref:     r.Ref,
		Data:    base64.StdEncoding.EncodeToString(r.Data),
		Preview: r.Preview,
		File:    r.FileName("bin"),
	}
}

// Service arma e imprime cupons. printer y pdf pueden ser nil.
type Service struct {
	movements repository.MovementRepository
	clients   repository.ClientRepository
	printer   ports.Printer
	pdf       ports.ReceiptPDF
	store     config.StoreConfig
	columns   int
	drawer    bool
	log       *logger.Logger
}

// NewService construye el servicio con los datos de la farmacia y la impresora.
func NewService(
	movements repository.MovementRepository,
	clients repository.ClientRepository,
	printer ports.Printer,
	pdf ports.ReceiptPDF,
	store config.StoreConfig,
	pc config.PrinterConfig,
	log *logger.Logger,
) *Service {
	return &Service{
		movements: movements,
		clients:   clients,
		printer:   printer,
		pdf:       pdf,
		store:     store,
		columns:   pc.Columns,
		drawer:    pc.Drawer,
		log:       log.Named("cupom"),
	}
}

// RenderSale arma el cupom de una venta ya cargada.
func (s *Service) RenderSale(sale *entity.Sale, rows []*entity.Movement) *Receipt {
	b := BuildSale(s.columns, s.store, sale, rows, s.drawer)
	return &Receipt{
		Kind:    KindSale,
		Ref:     strconv.FormatInt(sale.Code, 10),
		Title:   fmt.Sprintf("Venda %d", sale.Code),
		Data:    b.Bytes(),
		Preview: b.Preview(),
	}
}

// RenderPayment arma el comprobante de pago.
func (s *Service) RenderPayment(clientID, clientName string, paidAt time.Time, rows []*entity.Movement) *Receipt {
	b := BuildPayment(s.columns, s.store, clientName, paidAt, rows)
	return &Receipt{
		Kind:    KindPayment,
		Ref:     clientID,
		Title:   "Comprovante de pagamento " + clientName,
		Data:    b.Bytes(),
		Preview: b.Preview(),
	}
}

// Sale cupom de la venta con el código dado.
func (s *Service) Sale(ctx context.Context, code int64) (*Receipt, error) {
	rows, err := s.movements.ListByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: venta %d", domain.ErrNotFound, code)
	}
	sale, err := ledger.Summarize(rows)
	if err != nil {
		return nil, err
	}
	return s.RenderSale(sale, rows), nil
}

// Payment comprobante del último pago registrado para el cliente.
func (s *Service) Payment(ctx context.Context, clientID string) (*Receipt, error) {
	rows, err := s.movements.ListLastSettlement(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: el cliente no tiene pagos", domain.ErrNotFound)
	}
	name := rows[0].ClientName
	if client, err := s.clients.GetByID(ctx, clientID); err == nil && client != nil {
		name = client.Name
	}
	return s.RenderPayment(clientID, name, *rows[0].PaidAt, rows), nil
}

// PDF representación del cupom en una página de 80 mm.
func (s *Service) PDF(ctx context.Context, r *Receipt) ([]byte, error) {
	if s.pdf == nil {
		return nil, fmt.Errorf("generador PDF no configurado")
	}
	return s.pdf.Render(ctx, r.Title, r.Lines())
}

// Print envía el cupom a la impresora configurada.
func (s *Service) Print(ctx context.Context, r *Receipt) (*dto.PrintResponse, error) {
	if s.printer == nil {
		return nil, fmt.Errorf("%w: PRINTER_MODE=none", domain.ErrPrinterUnavailable)
	}
	jobID, err := s.printer.Print(ctx, r.Data)
	if err != nil {
		s.log.Error().Err(err).Str("kind", r.Kind).Str("ref", r.Ref).Str("printer", s.printer.Name()).Msg("fallo de impresión")
		return nil, err
	}
	s.log.Info().Str("kind", r.Kind).Str("ref", r.Ref).Str("printer", s.printer.Name()).Str("job_id", jobID).Msg("cupom impreso")
	return &dto.PrintResponse{Printed: true, Printer: s.printer.Name(), JobID: jobID}, nil
}

// PrintCode reimprime el cupom de una venta.
func (s *Service) PrintCode(ctx context.Context, code int64) (*dto.PrintResponse, error) {
	r, err := s.Sale(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.Print(ctx, r)
}

// PrintSale imprime una venta recién registrada.
func (s *Service) PrintSale(ctx context.Context, sale *entity.Sale, rows []*entity.Movement) (*dto.PrintResponse, error) {
	return s.Print(ctx, s.RenderSale(sale, rows))
}

// PrintPayment imprime el comprobante de un pago recién registrado.
func (s *Service) PrintPayment(ctx context.Context, clientID, clientName string, paidAt time.Time, rows []*entity.Movement) (*dto.PrintResponse, error) {
	return s.Print(ctx, s.RenderPayment(clientID, clientName, paidAt, rows))
}
