// Package accounts maneja las cuentas fiado: saldos abiertos por cliente,
// pago de filas y estorno.
package accounts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/farmacia-pos/internal/application/dto"
	"github.com/jhoicas/farmacia-pos/internal/application/ports"
	"github.com/jhoicas/farmacia-pos/internal/application/usecase"
	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/ledger"
	"github.com/jhoicas/farmacia-pos/pkg/config"
	"github.com/jhoicas/farmacia-pos/pkg/logger"
)

// PaymentPrinter imprime el comprobante de un pago.
type PaymentPrinter interface {
	PrintPayment(ctx context.Context, clientID, clientName string, paidAt time.Time, rows []*entity.Movement) (*dto.PrintResponse, error)
}

// Service casos de uso de contas a receber.
type Service struct {
	repos         ports.Repos
	tx            ports.TxRunner
	printer       PaymentPrinter
	metrics       ports.LedgerMetrics
	chargeCurrent bool
	log           *logger.Logger
	now           func() time.Time
}

// NewService construye el servicio. printer puede ser nil.
func NewService(repos ports.Repos, tx ports.TxRunner, printer PaymentPrinter, metrics ports.LedgerMetrics, cfg config.LedgerConfig, log *logger.Logger) *Service {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &Service{
		repos:         repos,
		tx:            tx,
		printer:       printer,
		metrics:       metrics,
		chargeCurrent: cfg.ChargeCurrentPrice,
		log:           log.Named("contas"),
		now:           time.Now,
	}
}

// Balances saldos abiertos por cliente, ordenados por nombre.
func (s *Service) Balances(ctx context.Context, q dto.ListQuery) (*dto.BalanceListResponse, error) {
	f := usecase.ToListFilter(q)
	list, total, err := s.repos.Movements.OpenBalances(ctx, f, s.chargeCurrent)
	if err != nil {
		return nil, err
	}
	items := make([]dto.BalanceResponse, 0, len(list))
	for _, b := range list {
		items = append(items, dto.BalanceResponse{
			ClientID:    b.ClientID,
			ClientName:  b.ClientName,
			FolderCode:  b.FolderCode,
			OpenRows:    b.OpenRows,
			OpenTotal:   b.OpenTotal,
			Due:         b.Due,
			OldestSale:  b.OldestSale,
			LastPayment: b.LastPayment,
		})
	}
	return &dto.BalanceListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: f.Limit, Offset: f.Offset, Total: total},
	}, nil
}

// Account filas abiertas del cliente con lo que se cobra hoy; (nil, nil) si
// el cliente no existe.
func (s *Service) Account(ctx context.Context, clientID string) (*dto.ClientAccountResponse, error) {
	client, err := s.repos.Clients.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, nil
	}
	rows, err := s.repos.Movements.ListUnpaidByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	resp := &dto.ClientAccountResponse{
		Client:    *usecase.ToClientResponse(client),
		Rows:      make([]dto.AccountRowResponse, 0, len(rows)),
		OpenTotal: decimal.Zero,
		Due:       decimal.Zero,
	}
	for _, m := range rows {
		due := ledger.Due(m, s.chargeCurrent)
		resp.Rows = append(resp.Rows, dto.AccountRowResponse{MovementResponse: usecase.ToMovementResponse(m), Due: due})
		resp.OpenTotal = resp.OpenTotal.Add(m.Total)
		resp.Due = resp.Due.Add(due)
	}
	return resp, nil
}

// Settle marca como pagadas las filas indicadas, o todas las abiertas del
// cliente cuando no se indican filas. Todas deben ser fiado del mismo cliente.
func (s *Service) Settle(ctx context.Context, in dto.SettleRequest) (*dto.SettlementResponse, error) {
	clientID := strings.TrimSpace(in.ClientID)
	if clientID == "" && len(in.MovementIDs) == 0 {
		return nil, fmt.Errorf("%w: informe client_id o movement_ids", domain.ErrInvalidInput)
	}
	paidAt := s.now()
	var rows []*entity.Movement
	err := s.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		if len(in.MovementIDs) == 0 {
			rows, err = r.Movements.ListUnpaidByClient(ctx, clientID)
		} else {
			rows, err = loadRows(ctx, r, in.MovementIDs)
		}
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return fmt.Errorf("%w: el cliente no tiene filas abiertas", domain.ErrConflict)
		}
		if clientID == "" {
			clientID = rows[0].ClientID
		}
		for _, m := range rows {
			if !ledger.IsCredit(m.PaymentType) || m.ClientID == "" {
				return fmt.Errorf("%w: movimiento %s no es fiado", domain.ErrInvalidInput, m.ID)
			}
			if m.ClientID != clientID {
				return fmt.Errorf("%w: movimiento %s es de otro cliente", domain.ErrInvalidInput, m.ID)
			}
			if err := ledger.Settle(m, paidAt, s.chargeCurrent); err != nil {
				return err
			}
			if err := r.Movements.Update(ctx, m, false); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := &dto.SettlementResponse{
		ClientID:   clientID,
		ClientName: rows[0].ClientName,
		PaidAt:     paidAt,
		Rows:       make([]dto.AccountRowResponse, 0, len(rows)),
		TotalPaid:  decimal.Zero,
	}
	for _, m := range rows {
		resp.Rows = append(resp.Rows, dto.AccountRowResponse{MovementResponse: usecase.ToMovementResponse(m), Due: m.PaidTotal})
		resp.TotalPaid = resp.TotalPaid.Add(m.PaidTotal)
	}
	s.metrics.RowsSettled(len(rows), resp.TotalPaid)
	s.log.Info().
		Str("client_id", clientID).
		Str("employee_id", in.EmployeeID).
		Int("rows", len(rows)).
		Str("total", resp.TotalPaid.StringFixed(2)).
		Msg("pago fiado registrado")

	if in.Print {
		s.print(ctx, resp, rows)
	}
	return resp, nil
}

func (s *Service) print(ctx context.Context, resp *dto.SettlementResponse, rows []*entity.Movement) {
	if s.printer == nil {
		resp.PrintError = domain.ErrPrinterUnavailable.Error()
		return
	}
	res, err := s.printer.PrintPayment(ctx, resp.ClientID, resp.ClientName, resp.PaidAt, rows)
	if err != nil {
		s.log.Warn().Err(err).Str("client_id", resp.ClientID).Msg("pago registrado sin comprobante")
		resp.PrintError = err.Error()
		return
	}
	resp.Printed = res.Printed
}

// Reopen estorna el pago de filas fiado.
func (s *Service) Reopen(ctx context.Context, in dto.ReopenRequest) ([]dto.MovementResponse, error) {
	if len(in.MovementIDs) == 0 {
		return nil, fmt.Errorf("%w: movement_ids requerido", domain.ErrInvalidInput)
	}
	at := s.now()
	var rows []*entity.Movement
	err := s.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		rows, err = loadRows(ctx, r, in.MovementIDs)
		if err != nil {
			return err
		}
		for _, m := range rows {
			if err := ledger.Reopen(m, at); err != nil {
				return err
			}
			if err := r.Movements.Update(ctx, m, true); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Int("rows", len(rows)).Msg("pago fiado estornado")
	return usecase.ToMovementResponses(rows), nil
}

func loadRows(ctx context.Context, r ports.Repos, ids []string) ([]*entity.Movement, error) {
	unique := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}
	rows, err := r.Movements.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(rows) != len(unique) {
		return nil, fmt.Errorf("%w: %d de %d movimientos no existen", domain.ErrNotFound, len(unique)-len(rows), len(unique))
	}
	return rows, nil
}
