package accounts_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/farmacia-pos/internal/application/accounts"
	"github.com/jhoicas/farmacia-pos/internal/application/dto"
	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/infrastructure/memory"
	"github.com/jhoicas/farmacia-pos/pkg/config"
	"github.com/jhoicas/farmacia-pos/pkg/logger"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func seed(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	repos := store.Repos()
	t0 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repos.Clients.Create(ctx, &entity.Client{ID: "c1", Name: "MARIA", FolderCode: "M-3"}))
	require.NoError(t, repos.Clients.Create(ctx, &entity.Client{ID: "c2", Name: "ANA"}))
	rows := []*entity.Movement{
		{ID: "a", Code: 1, ClientID: "c1", ClientName: "MARIA", ProductDescription: "DIPIRONA", Quantity: d("2"), UnitPrice: d("10"), CurrentPrice: d("12"), Discount: d("1"), Total: d("19"), PaymentType: entity.PaymentCredit, CreatedAt: t0},
		{ID: "b", Code: 2, ClientID: "c1", ClientName: "MARIA", ProductDescription: "SORO", Quantity: d("1"), UnitPrice: d("3"), CurrentPrice: d("3"), Discount: d("0"), Total: d("3"), PaymentType: entity.PaymentCredit, CreatedAt: t0.Add(time.Hour)},
		{ID: "c", Code: 3, ClientID: "c2", ClientName: "ANA", ProductDescription: "SORO", Quantity: d("1"), UnitPrice: d("3"), CurrentPrice: d("3"), Discount: d("0"), Total: d("3"), PaymentType: entity.PaymentCredit, CreatedAt: t0},
		{ID: "x", Code: 4, ClientID: "c1", ClientName: "MARIA", ProductDescription: "SORO", Quantity: d("1"), UnitPrice: d("3"), CurrentPrice: d("3"), Total: d("3"), PaymentType: entity.PaymentCash, Paid: true, PaidAt: &t0, PaidTotal: d("3"), CreatedAt: t0},
	}
	for _, m := range rows {
		require.NoError(t, repos.Movements.Create(ctx, m))
	}
	return store
}

func newService(store *memory.Store, printer accounts.PaymentPrinter) *accounts.Service {
	return accounts.NewService(store.Repos(), store, printer, nil, config.LedgerConfig{ChargeCurrentPrice: true}, logger.Nop())
}

func TestBalancesYAccount(t *testing.T) {
	store := seed(t)
	svc := newService(store, nil)
	ctx := context.Background()

	list, err := svc.Balances(ctx, dto.ListQuery{})
	require.NoError(t, err)
	require.Equal(t, 2, list.Page.Total)
	assert.Equal(t, "ANA", list.Items[0].ClientName)
	maria := list.Items[1]
	assert.Equal(t, "M-3", maria.FolderCode)
	assert.Equal(t, 2, maria.OpenRows)
	assert.True(t, d("22").Equal(maria.OpenTotal))
	assert.True(t, d("26").Equal(maria.Due), "2*12-1 + 3")

	acc, err := svc.Account(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, acc.Rows, 2)
	assert.Equal(t, "a", acc.Rows[0].ID)
	assert.True(t, d("23").Equal(acc.Rows[0].Due))
	assert.True(t, d("26").Equal(acc.Due))

	missing, err := svc.Account(ctx, "zz")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSettle_TodasLasAbiertasDelCliente(t *testing.T) {
	store := seed(t)
	svc := newService(store, nil)
	ctx := context.Background()

	res, err := svc.Settle(ctx, dto.SettleRequest{ClientID: "c1", Print: true})
	require.NoError(t, err)
	assert.Len(t, res.Rows, 2)
	assert.True(t, d("26").Equal(res.TotalPaid))
	assert.Equal(t, "MARIA", res.ClientName)
	assert.NotEmpty(t, res.PrintError, "sin impresora se informa pero el pago queda")

	a, _ := store.Repos().Movements.GetByID(ctx, "a")
	assert.True(t, a.Paid)
	assert.True(t, d("23").Equal(a.PaidTotal))

	_, err = svc.Settle(ctx, dto.SettleRequest{ClientID: "c1"})
	assert.ErrorIs(t, err, domain.ErrConflict)
	_, err = svc.Settle(ctx, dto.SettleRequest{MovementIDs: []string{"a"}})
	assert.ErrorIs(t, err, domain.ErrAlreadyPaid)
}

func TestSettle_FilasSeleccionadas(t *testing.T) {
	store := seed(t)
	svc := newService(store, nil)
	ctx := context.Background()

	_, err := svc.Settle(ctx, dto.SettleRequest{MovementIDs: []string{"a", "c"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "clientes distintos")
	_, err = svc.Settle(ctx, dto.SettleRequest{MovementIDs: []string{"x"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "no es fiado")
	_, err = svc.Settle(ctx, dto.SettleRequest{MovementIDs: []string{"a", "nope"}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.Settle(ctx, dto.SettleRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	b, _ := store.Repos().Movements.GetByID(ctx, "a")
	assert.False(t, b.Paid, "un fallo no deja filas pagadas")

	res, err := svc.Settle(ctx, dto.SettleRequest{MovementIDs: []string{"b"}})
	require.NoError(t, err)
	assert.Equal(t, "c1", res.ClientID)
	assert.True(t, d("3").Equal(res.TotalPaid))
}

type stubPrinter struct{ rows int }

func (p *stubPrinter) PrintPayment(_ context.Context, _, _ string, _ time.Time, rows []*entity.Movement) (*dto.PrintResponse, error) {
	p.rows = len(rows)
	return &dto.PrintResponse{Printed: true}, nil
}

func TestSettleImprimeYReopen(t *testing.T) {
	store := seed(t)
	printer := &stubPrinter{}
	svc := newService(store, printer)
	ctx := context.Background()

	res, err := svc.Settle(ctx, dto.SettleRequest{ClientID: "c2", Print: true})
	require.NoError(t, err)
	assert.True(t, res.Printed)
	assert.Equal(t, 1, printer.rows)

	rows, err := svc.Reopen(ctx, dto.ReopenRequest{MovementIDs: []string{"c"}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].Paid)
	assert.Nil(t, rows[0].PaidAt)

	_, err = svc.Reopen(ctx, dto.ReopenRequest{MovementIDs: []string{"c"}})
	assert.ErrorIs(t, err, domain.ErrConflict)
	_, err = svc.Reopen(ctx, dto.ReopenRequest{MovementIDs: []string{"x"}})
	assert.ErrorIs(t, err, domain.ErrConflict, "venta al contado no se estorna")
	_, err = svc.Reopen(ctx, dto.ReopenRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
