package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/farmacia-pos/internal/application/dto"
	"github.com/jhoicas/farmacia-pos/internal/application/ports"
	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/ledger"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
	"github.com/jhoicas/farmacia-pos/pkg/logger"
)

// MovementUseCase consulta y corrección de filas del libro.
type MovementUseCase struct {
	repo repository.MovementRepository
	tx   ports.TxRunner
	log  *logger.Logger
}

// NewMovementUseCase construye el caso de uso.
func NewMovementUseCase(repo repository.MovementRepository, tx ports.TxRunner, log *logger.Logger) *MovementUseCase {
	return &MovementUseCase{repo: repo, tx: tx, log: log.Named("movimentos")}
}

// List lista filas con filtros.
func (uc *MovementUseCase) List(ctx context.Context, q dto.MovementQuery) (*dto.MovementListResponse, error) {
	f := repository.MovementFilter{
		ListFilter: ToListFilter(q.ListQuery),
		Code:       q.Code,
		ClientID:   q.ClientID,
		EmployeeID: q.EmployeeID,
		Paid:       q.Paid,
		From:       q.From,
		To:         q.To,
	}
	rows, total, err := uc.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return &dto.MovementListResponse{
		Items: ToMovementResponses(rows),
		Page:  dto.PageResponse{Limit: f.Limit, Offset: f.Offset, Total: total},
	}, nil
}

// GetByID obtiene una fila; (nil, nil) si no existe.
func (uc *MovementUseCase) GetByID(ctx context.Context, id string) (*dto.MovementResponse, error) {
	m, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, nil
	}
	resp := ToMovementResponse(m)
	return &resp, nil
}

// Update corrige cantidad, precio unitario o descuento de una fila abierta.
func (uc *MovementUseCase) Update(ctx context.Context, id string, in dto.UpdateMovementRequest) (*dto.MovementResponse, error) {
	var resp dto.MovementResponse
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		m, err := r.Movements.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if m == nil {
			return domain.ErrNotFound
		}
		qty, unit, discount := m.Quantity, m.UnitPrice, m.Discount
		if in.Quantity != nil {
			qty = *in.Quantity
		}
		if in.UnitPrice != nil {
			unit = in.UnitPrice.Round(2)
		}
		if in.Discount != nil {
			discount = in.Discount.Round(2)
		}
		if err := ledger.Reprice(m, qty, unit, discount, time.Now()); err != nil {
			return err
		}
		if err := r.Movements.Update(ctx, m, false); err != nil {
			return err
		}
		resp = ToMovementResponse(m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Delete quita una fila abierta de su venta. Filas pagadas no se borran.
func (uc *MovementUseCase) Delete(ctx context.Context, id string) error {
	return uc.tx.Run(ctx, func(r ports.Repos) error {
		m, err := r.Movements.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if m == nil {
			return domain.ErrNotFound
		}
		if m.Paid {
			return fmt.Errorf("%w: movimiento %s no se puede borrar", domain.ErrAlreadyPaid, id)
		}
		if err := r.Movements.Delete(ctx, id); err != nil {
			return err
		}
		uc.log.Info().Str("movement_id", id).Int64("code", m.Code).Msg("fila quitada de la venta")
		return nil
	})
}

// Reconcile sincroniza current_price de las filas abiertas con el catálogo.
func (uc *MovementUseCase) Reconcile(ctx context.Context) (int64, error) {
	n, err := uc.repo.ReconcileCurrentPrices(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("reconciliar precios: %w", err)
	}
	uc.log.Info().Int64("rows", n).Msg("precios actuales reconciliados")
	return n, nil
}
