package repository

import (
	"context"
	"time"

	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
)

// MovementRepository puerto del libro de movimientos. Las cabeceras de venta y
// los saldos fiado se calculan por agregación sobre las mismas filas.
type MovementRepository interface {
	NextCode(ctx context.Context) (int64, error)
	Create(ctx context.Context, m *entity.Movement) error
	GetByID(ctx context.Context, id string) (*entity.Movement, error)
	GetByIDs(ctx context.Context, ids []string) ([]*entity.Movement, error)
	ListByCode(ctx context.Context, code int64) ([]*entity.Movement, error)
	List(ctx context.Context, f MovementFilter) ([]*entity.Movement, int, error)
	// Update graba la fila sólo si su estado de pago sigue siendo wasPaid;
	// si otro proceso lo cambió devuelve domain.ErrConflict.
	Update(ctx context.Context, m *entity.Movement, wasPaid bool) error
	// Delete borra una fila abierta; una fila pagada da domain.ErrAlreadyPaid.
	Delete(ctx context.Context, id string) error

	// ListUnpaidByClient filas fiado abiertas del cliente, más antiguas primero.
	ListUnpaidByClient(ctx context.Context, clientID string) ([]*entity.Movement, error)
	// ListLastSettlement filas del último pago registrado para el cliente.
	ListLastSettlement(ctx context.Context, clientID string) ([]*entity.Movement, error)

	ListSales(ctx context.Context, f SaleFilter) ([]*entity.Sale, int, error)
	OpenBalances(ctx context.Context, f ListFilter, chargeCurrent bool) ([]*entity.ClientBalance, int, error)

	// Cascadas desde los maestros. Devuelven la cantidad de filas afectadas.
	CascadeClientName(ctx context.Context, clientID, name string, at time.Time) (int64, error)
	CascadeEmployeeName(ctx context.Context, employeeID, name string, at time.Time) (int64, error)
	CascadeProduct(ctx context.Context, p *entity.Product, at time.Time) (int64, error)
	ReconcileCurrentPrices(ctx context.Context, at time.Time) (int64, error)
}
