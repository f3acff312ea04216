package usecase_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/farmacia-pos/internal/application/dto"
	"github.com/jhoicas/farmacia-pos/internal/application/usecase"
	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/infrastructure/memory"
	"github.com/jhoicas/farmacia-pos/pkg/config"
	"github.com/jhoicas/farmacia-pos/pkg/logger"
)

func ptr[T any](v T) *T { return &v }

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestClientUseCase_CreateValidaYUpdatePropaga(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repos := store.Repos()
	uc := usecase.NewClientUseCase(repos.Clients, store, logger.Nop())

	_, err := uc.Create(ctx, dto.CreateClientRequest{Name: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	c, err := uc.Create(ctx, dto.CreateClientRequest{Name: "Ana Souza", CPF: "123"})
	require.NoError(t, err)
	_, err = uc.Create(ctx, dto.CreateClientRequest{Name: "Otra", CPF: "123"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	require.NoError(t, repos.Movements.Create(ctx, &entity.Movement{ID: "m1", Code: 1, ClientID: c.ID, ClientName: "Ana Souza", PaymentType: entity.PaymentCredit}))

	updated, err := uc.Update(ctx, c.ID, dto.UpdateClientRequest{Name: ptr("Ana S. Lima")})
	require.NoError(t, err)
	assert.Equal(t, "Ana S. Lima", updated.Name)

	m, err := repos.Movements.GetByID(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "Ana S. Lima", m.ClientName)

	_, err = uc.Update(ctx, "nao-existe", dto.UpdateClientRequest{Name: ptr("x")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClientUseCase_DeleteRestoreYList(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	uc := usecase.NewClientUseCase(store.Repos().Clients, store, logger.Nop())

	a, err := uc.Create(ctx, dto.CreateClientRequest{Name: "Beatriz"})
	require.NoError(t, err)
	_, err = uc.Create(ctx, dto.CreateClientRequest{Name: "Carlos", FolderCode: "C-12"})
	require.NoError(t, err)

	require.NoError(t, uc.Delete(ctx, a.ID))
	list, err := uc.List(ctx, dto.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Page.Total)
	assert.Equal(t, 20, list.Page.Limit)
	assert.Equal(t, "Carlos", list.Items[0].Name)

	list, err = uc.List(ctx, dto.ListQuery{Field: "folder_code", Q: "c-12"})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Page.Total)

	restored, err := uc.Restore(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, restored.Deleted)

	assert.ErrorIs(t, uc.Delete(ctx, "nao-existe"), domain.ErrNotFound)
}

func TestEmployeeUseCase_PIN(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repos := store.Repos()
	uc := usecase.NewEmployeeUseCase(repos.Employees, store, logger.Nop())

	_, err := uc.Create(ctx, dto.CreateEmployeeRequest{Name: "Rita", PIN: "12a4"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	e, err := uc.Create(ctx, dto.CreateEmployeeRequest{Name: "Rita", PIN: "1234"})
	require.NoError(t, err)
	assert.True(t, e.HasPIN)

	stored, err := repos.Employees.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PINHash), []byte("1234")))

	require.NoError(t, repos.Movements.Create(ctx, &entity.Movement{ID: "m1", EmployeeID: e.ID, EmployeeName: "Rita"}))
	updated, err := uc.Update(ctx, e.ID, dto.UpdateEmployeeRequest{Name: ptr("Rita Cássia"), PIN: ptr("")})
	require.NoError(t, err)
	assert.False(t, updated.HasPIN)

	m, _ := repos.Movements.GetByID(ctx, "m1")
	assert.Equal(t, "Rita Cássia", m.EmployeeName)
}

func TestProductUseCase_UpdatePropagaPrecioSoloAFilasAbiertas(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repos := store.Repos()
	uc := usecase.NewProductUseCase(repos.Products, store, logger.Nop())

	_, err := uc.Create(ctx, dto.CreateProductRequest{Description: "X", SalePrice: d("-1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	p, err := uc.Create(ctx, dto.CreateProductRequest{Description: "Dipirona 500mg", Barcode: "789", SalePrice: d("5.00")})
	require.NoError(t, err)
	_, err = uc.Create(ctx, dto.CreateProductRequest{Description: "Outro", Barcode: "789"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	found, err := uc.GetByBarcode(ctx, "789")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, p.ID, found.ID)

	paidAt := time.Now()
	require.NoError(t, repos.Movements.Create(ctx, &entity.Movement{ID: "open", ProductID: p.ID, CurrentPrice: d("5.00"), PaymentType: entity.PaymentCredit}))
	require.NoError(t, repos.Movements.Create(ctx, &entity.Movement{ID: "paid", ProductID: p.ID, CurrentPrice: d("5.00"), PaymentType: entity.PaymentCredit, Paid: true, PaidAt: &paidAt}))

	_, err = uc.Update(ctx, p.ID, dto.UpdateProductRequest{SalePrice: ptr(d("6.50")), Generic: ptr(true)})
	require.NoError(t, err)

	open, _ := repos.Movements.GetByID(ctx, "open")
	paid, _ := repos.Movements.GetByID(ctx, "paid")
	assert.True(t, d("6.50").Equal(open.CurrentPrice))
	assert.True(t, d("5.00").Equal(paid.CurrentPrice))
	assert.True(t, open.ProductGeneric)
	assert.True(t, paid.ProductGeneric)
}

func TestMovementUseCase_UpdateYDelete(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repos := store.Repos()
	uc := usecase.NewMovementUseCase(repos.Movements, store, logger.Nop())

	paidAt := time.Now()
	require.NoError(t, repos.Movements.Create(ctx, &entity.Movement{ID: "a", Code: 1, Quantity: d("1"), UnitPrice: d("10"), Total: d("10"), PaymentType: entity.PaymentCredit}))
	require.NoError(t, repos.Movements.Create(ctx, &entity.Movement{ID: "b", Code: 1, Quantity: d("1"), UnitPrice: d("10"), Total: d("10"), PaymentType: entity.PaymentCash, Paid: true, PaidAt: &paidAt}))

	m, err := uc.Update(ctx, "a", dto.UpdateMovementRequest{Quantity: ptr(d("3")), Discount: ptr(d("2"))})
	require.NoError(t, err)
	assert.True(t, d("28").Equal(m.Total))

	_, err = uc.Update(ctx, "b", dto.UpdateMovementRequest{Quantity: ptr(d("3"))})
	assert.ErrorIs(t, err, domain.ErrAlreadyPaid)

	assert.ErrorIs(t, uc.Delete(ctx, "b"), domain.ErrAlreadyPaid)
	require.NoError(t, uc.Delete(ctx, "a"))
	got, err := uc.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, got)

	list, err := uc.List(ctx, dto.MovementQuery{Code: ptr(int64(1))})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Page.Total)
}

func TestMovementUseCase_Reconcile(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repos := store.Repos()
	uc := usecase.NewMovementUseCase(repos.Movements, store, logger.Nop())

	require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: "p", Description: "X", SalePrice: d("9")}))
	require.NoError(t, repos.Movements.Create(ctx, &entity.Movement{ID: "a", ProductID: "p", CurrentPrice: d("7"), PaymentType: entity.PaymentCredit}))
	require.NoError(t, repos.Movements.Create(ctx, &entity.Movement{ID: "b", ProductID: "p", CurrentPrice: d("9"), PaymentType: entity.PaymentCredit}))

	n, err := uc.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

type fakeTester struct {
	dsn string
	err error
}

func (f *fakeTester) Test(_ context.Context, dsn string) error {
	f.dsn = dsn
	return f.err
}

func TestDBConfigUseCase(t *testing.T) {
	ctx := context.Background()
	file := config.NewDBFile(filepath.Join(t.TempDir(), "db.yaml"))
	base := config.DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "env-secret", DBName: "farmacia", SSLMode: "disable"}
	tester := &fakeTester{}
	uc := usecase.NewDBConfigUseCase(base, file, tester, logger.Nop())

	got, err := uc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "env", got.Source)
	assert.True(t, got.PasswordSet)

	_, err = uc.Save(ctx, dto.DBConfigRequest{Host: "db"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	saved, err := uc.Save(ctx, dto.DBConfigRequest{Host: "10.0.0.5", User: "caixa", Name: "farmacia"})
	require.NoError(t, err)
	assert.True(t, saved.Restart)
	assert.Equal(t, 5432, saved.Port)

	got, err = uc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "file", got.Source)
	assert.Equal(t, "10.0.0.5", got.Host)

	cfg, found, err := file.Load()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "env-secret", cfg.Password, "contraseña vacía conserva la vigente")

	res, err := uc.Test(ctx, dto.DBConfigRequest{Host: "10.0.0.5", User: "caixa", Name: "farmacia", Password: "x"})
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Contains(t, tester.dsn, "10.0.0.5:5432")

	tester.err = errors.New("connection refused")
	res, err = uc.Test(ctx, dto.DBConfigRequest{DatabaseURL: "postgres://u:p@h/db"})
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, "connection refused", res.Message)
}
