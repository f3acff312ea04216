// Package sales registra ventas como filas del libro de movimientos y consulta
// las cabeceras agregadas por código de venta.
package sales

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/farmacia-pos/internal/application/dto"
	"github.com/jhoicas/farmacia-pos/internal/application/ports"
	"github.com/jhoicas/farmacia-pos/internal/application/usecase"
	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/ledger"
	"github.com/jhoicas/farmacia-pos/pkg/logger"
)

// ReceiptPrinter imprime el cupom de una venta recién registrada.
type ReceiptPrinter interface {
	PrintSale(ctx context.Context, sale *entity.Sale, rows []*entity.Movement) (*dto.PrintResponse, error)
}

// Service casos de uso de ventas.
type Service struct {
	repos   ports.Repos
	tx      ports.TxRunner
	printer ReceiptPrinter
	metrics ports.LedgerMetrics
	log     *logger.Logger
	now     func() time.Time
}

// NewService construye el servicio. printer puede ser nil (sin impresora).
func NewService(repos ports.Repos, tx ports.TxRunner, printer ReceiptPrinter, metrics ports.LedgerMetrics, log *logger.Logger) *Service {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &Service{
		repos:   repos,
		tx:      tx,
		printer: printer,
		metrics: metrics,
		log:     log.Named("vendas"),
		now:     time.Now,
	}
}

// line ítem ya validado contra el catálogo.
type line struct {
	product  *entity.Product
	qty      decimal.Decimal
	unit     decimal.Decimal
	discount decimal.Decimal
	base     decimal.Decimal
}

// Register valida la venta fuera de la transacción y, dentro de una sola
// transacción, reserva el código y graba una fila por ítem. La impresión ocurre
// después del commit y sus errores no deshacen la venta.
func (s *Service) Register(ctx context.Context, in dto.RegisterSaleRequest) (*dto.SaleResponse, error) {
	paymentType, err := ledger.NormalizePaymentType(in.PaymentType)
	if err != nil {
		return nil, err
	}
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: la venta no tiene ítems", domain.ErrInvalidInput)
	}

	employee, err := s.employee(ctx, in.EmployeeID)
	if err != nil {
		return nil, err
	}
	client, err := s.client(ctx, in.ClientID)
	if err != nil {
		return nil, err
	}
	if ledger.IsCredit(paymentType) && client == nil {
		return nil, fmt.Errorf("%w: venta fiado requiere cliente", domain.ErrInvalidInput)
	}

	lines := make([]line, 0, len(in.Items))
	bases := make([]decimal.Decimal, 0, len(in.Items))
	for i, item := range in.Items {
		l, err := s.resolveLine(ctx, i, item)
		if err != nil {
			return nil, err
		}
		lines = append(lines, l)
		bases = append(bases, l.base)
	}
	shares, err := ledger.DistributeDiscount(bases, in.Discount.Round(2))
	if err != nil {
		return nil, err
	}

	now := s.now()
	rows := make([]*entity.Movement, 0, len(lines))
	for i, l := range lines {
		discount := l.discount.Add(shares[i])
		total, err := ledger.LineTotal(l.qty, l.unit, discount)
		if err != nil {
			return nil, fmt.Errorf("ítem %d: %w", i+1, err)
		}
		m := &entity.Movement{
			ID:                 uuid.New().String(),
			ProductID:          l.product.ID,
			ProductDescription: l.product.Description,
			ProductBarcode:     l.product.Barcode,
			ProductGeneric:     l.product.Generic,
			ClientName:         entity.CounterClientName,
			EmployeeID:         employee.ID,
			EmployeeName:       employee.Name,
			Quantity:           l.qty,
			UnitPrice:          l.unit,
			CurrentPrice:       l.product.SalePrice,
			Discount:           discount,
			Total:              total,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if client != nil {
			m.ClientID = client.ID
			m.ClientName = client.Name
		}
		ledger.ApplyPayment(m, paymentType, now)
		rows = append(rows, m)
	}

	err = s.tx.Run(ctx, func(r ports.Repos) error {
		code, err := r.Movements.NextCode(ctx)
		if err != nil {
			return fmt.Errorf("reservar código de venta: %w", err)
		}
		for _, m := range rows {
			m.Code = code
			if err := r.Movements.Create(ctx, m); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sale, err := ledger.Summarize(rows)
	if err != nil {
		return nil, err
	}
	s.metrics.SaleRegistered(paymentType, sale.Items, sale.Total)
	s.log.Info().
		Int64("code", sale.Code).
		Str("payment_type", paymentType).
		Str("client", sale.ClientName).
		Str("employee", sale.EmployeeName).
		Int("items", sale.Items).
		Str("total", sale.Total.StringFixed(2)).
		Msg("venta registrada")

	resp := usecase.ToSaleResponse(sale, rows)
	if in.Print {
		s.print(ctx, resp, sale, rows)
	}
	return resp, nil
}

func (s *Service) print(ctx context.Context, resp *dto.SaleResponse, sale *entity.Sale, rows []*entity.Movement) {
	if s.printer == nil {
		resp.PrintError = domain.ErrPrinterUnavailable.Error()
		return
	}
	res, err := s.printer.PrintSale(ctx, sale, rows)
	if err != nil {
		s.log.Warn().Err(err).Int64("code", sale.Code).Msg("venta registrada sin cupom")
		resp.PrintError = err.Error()
		return
	}
	resp.Printed = res.Printed
}

func (s *Service) employee(ctx context.Context, id string) (*entity.Employee, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: funcionario requerido", domain.ErrInvalidInput)
	}
	e, err := s.repos.Employees.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil || e.Deleted {
		return nil, fmt.Errorf("%w: funcionario %s inexistente", domain.ErrInvalidInput, id)
	}
	return e, nil
}

func (s *Service) client(ctx context.Context, id string) (*entity.Client, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	c, err := s.repos.Clients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil || c.Deleted {
		return nil, fmt.Errorf("%w: cliente %s inexistente", domain.ErrInvalidInput, id)
	}
	return c, nil
}

func (s *Service) resolveLine(ctx context.Context, i int, item dto.SaleItemRequest) (line, error) {
	var (
		p   *entity.Product
		err error
	)
	switch {
	case item.ProductID != "":
		p, err = s.repos.Products.GetByID(ctx, item.ProductID)
	case item.Barcode != "":
		p, err = s.repos.Products.GetByBarcode(ctx, strings.TrimSpace(item.Barcode))
	default:
		return line{}, fmt.Errorf("%w: ítem %d sin producto", domain.ErrInvalidInput, i+1)
	}
	if err != nil {
		return line{}, err
	}
	if p == nil || p.Deleted {
		return line{}, fmt.Errorf("%w: ítem %d: producto inexistente", domain.ErrInvalidInput, i+1)
	}
	unit := p.SalePrice
	if item.UnitPrice != nil {
		unit = item.UnitPrice.Round(2)
	}
	discount := item.Discount.Round(2)
	base, err := ledger.LineTotal(item.Quantity, unit, discount)
	if err != nil {
		return line{}, fmt.Errorf("ítem %d: %w", i+1, err)
	}
	return line{product: p, qty: item.Quantity, unit: unit, discount: discount, base: base}, nil
}
