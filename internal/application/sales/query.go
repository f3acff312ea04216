package sales

import (
	"context"

	"github.com/jhoicas/farmacia-pos/internal/application/dto"
	"github.com/jhoicas/farmacia-pos/internal/application/usecase"
	"github.com/jhoicas/farmacia-pos/internal/domain/ledger"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
)

// List cabeceras de venta, más recientes primero.
func (s *Service) List(ctx context.Context, q dto.SaleQuery) (*dto.SaleListResponse, error) {
	lq := dto.ListQuery{Limit: q.Limit, Offset: q.Offset}
	lq.Normalize()
	sales, total, err := s.repos.Movements.ListSales(ctx, repository.SaleFilter{
		Limit:    lq.Limit,
		Offset:   lq.Offset,
		ClientID: q.ClientID,
		Paid:     q.Paid,
		From:     q.From,
		To:       q.To,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.SaleResponse, 0, len(sales))
	for _, sale := range sales {
		items = append(items, *usecase.ToSaleResponse(sale, nil))
	}
	return &dto.SaleListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: lq.Limit, Offset: lq.Offset, Total: total},
	}, nil
}

// Get cabecera y filas de una venta; (nil, nil) si el código no existe.
func (s *Service) Get(ctx context.Context, code int64) (*dto.SaleResponse, error) {
	rows, err := s.repos.Movements.ListByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	sale, err := ledger.Summarize(rows)
	if err != nil {
		return nil, err
	}
	return usecase.ToSaleResponse(sale, rows), nil
}
