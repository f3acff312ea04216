package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/farmacia-pos/internal/application/ports"
	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
	"github.com/jhoicas/farmacia-pos/internal/infrastructure/memory"
)

func TestStore_RunRollback(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	boom := errors.New("boom")

	err := s.Run(ctx, func(r ports.Repos) error {
		require.NoError(t, r.Clients.Create(ctx, &entity.Client{ID: "c1", Name: "Ana"}))
		_, _ = r.Movements.NextCode(ctx)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	c, err := s.Repos().Clients.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Nil(t, c)

	code, err := s.Repos().Movements.NextCode(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), code, "la secuencia también vuelve atrás")
}

func TestClientRepo_BusquedaYBorrado(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().Repos()
	require.NoError(t, repos.Clients.Create(ctx, &entity.Client{ID: "1", Name: "José Antônio", CPF: "111"}))
	require.NoError(t, repos.Clients.Create(ctx, &entity.Client{ID: "2", Name: "Maria", CPF: "222"}))
	assert.ErrorIs(t, repos.Clients.Create(ctx, &entity.Client{ID: "3", Name: "Outro", CPF: "111"}), domain.ErrDuplicate)

	items, total, err := repos.Clients.List(ctx, repository.ListFilter{Limit: 10, Query: "antonio"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "1", items[0].ID)

	_, _, err = repos.Clients.List(ctx, repository.ListFilter{Field: "senha", Query: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	require.NoError(t, repos.Clients.SetDeleted(ctx, "2", true, time.Now()))
	_, total, err = repos.Clients.List(ctx, repository.ListFilter{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	deleted, total, err := repos.Clients.List(ctx, repository.ListFilter{Limit: 10, Deleted: true})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Maria", deleted[0].Name)
}

func TestMovementRepo_CascadeProductSoloAbiertasCambianPrecio(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().Repos()
	now := time.Now()
	paidAt := now
	open := &entity.Movement{ID: "a", Code: 1, ProductID: "p", ProductDescription: "DIPIRONA", CurrentPrice: decimal.NewFromInt(5), PaymentType: entity.PaymentCredit, CreatedAt: now}
	paid := &entity.Movement{ID: "b", Code: 1, ProductID: "p", ProductDescription: "DIPIRONA", CurrentPrice: decimal.NewFromInt(5), PaymentType: entity.PaymentCredit, Paid: true, PaidAt: &paidAt, CreatedAt: now}
	require.NoError(t, repos.Movements.Create(ctx, open))
	require.NoError(t, repos.Movements.Create(ctx, paid))

	n, err := repos.Movements.CascadeProduct(ctx, &entity.Product{ID: "p", Description: "DIPIRONA 1G", SalePrice: decimal.NewFromInt(7)}, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	a, _ := repos.Movements.GetByID(ctx, "a")
	b, _ := repos.Movements.GetByID(ctx, "b")
	assert.Equal(t, "DIPIRONA 1G", a.ProductDescription)
	assert.Equal(t, "DIPIRONA 1G", b.ProductDescription)
	assert.True(t, decimal.NewFromInt(7).Equal(a.CurrentPrice))
	assert.True(t, decimal.NewFromInt(5).Equal(b.CurrentPrice))
}

func TestMovementRepo_ListLastSettlement(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().Repos()
	t1 := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(24 * time.Hour)
	for i, at := range []time.Time{t1, t2, t2} {
		paidAt := at
		require.NoError(t, repos.Movements.Create(ctx, &entity.Movement{
			ID: string(rune('a' + i)), Code: int64(i + 1), ClientID: "c", PaymentType: entity.PaymentCredit,
			Paid: true, PaidAt: &paidAt, CreatedAt: t1,
		}))
	}
	rows, err := repos.Movements.ListLastSettlement(ctx, "c")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "b", rows[0].ID)

	rows, err = repos.Movements.ListLastSettlement(ctx, "otro")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestStore_EscrituraFueraDeTxSobreviveAlRollback(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	boom := errors.New("boom")
	done := make(chan error, 1)

	err := s.Run(ctx, func(r ports.Repos) error {
		go func() {
			done <- s.Repos().Clients.Create(ctx, &entity.Client{ID: "c2", Name: "Bia"})
		}()
		select {
		case err := <-done:
			done <- err
			t.Error("la escritura fuera de la transacción no esperó al Run")
		case <-time.After(50 * time.Millisecond):
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	require.NoError(t, <-done)

	c, err := s.Repos().Clients.GetByID(ctx, "c2")
	require.NoError(t, err)
	require.NotNil(t, c, "el rollback no debe borrar escrituras ajenas a la transacción")
	assert.Equal(t, "Bia", c.Name)
}

func TestMovementRepo_UpdateConCopiaVieja(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	now := time.Now()
	require.NoError(t, s.Repos().Movements.Create(ctx, &entity.Movement{
		ID: "m1", Code: 1, ClientID: "c", PaymentType: entity.PaymentCredit,
		Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(10), Total: decimal.NewFromInt(10), CreatedAt: now,
	}))

	stale, err := s.Repos().Movements.GetByID(ctx, "m1")
	require.NoError(t, err)

	require.NoError(t, s.Run(ctx, func(r ports.Repos) error {
		m, err := r.Movements.GetByID(ctx, "m1")
		if err != nil {
			return err
		}
		m.Paid, m.PaidAt, m.PaidTotal = true, &now, m.Total
		return r.Movements.Update(ctx, m, false)
	}))

	stale.Quantity = decimal.NewFromInt(3)
	err = s.Repos().Movements.Update(ctx, stale, false)
	assert.ErrorIs(t, err, domain.ErrConflict)

	got, err := s.Repos().Movements.GetByID(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, got.Paid)
	assert.True(t, decimal.NewFromInt(1).Equal(got.Quantity))

	assert.ErrorIs(t, s.Repos().Movements.Delete(ctx, "m1"), domain.ErrAlreadyPaid)
	assert.ErrorIs(t, s.Repos().Movements.Update(ctx, &entity.Movement{ID: "x"}, false), domain.ErrNotFound)
}
