package repository

import (
	"context"
	"time"

	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
)

// ProductRepository puerto de persistencia para Product.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByBarcode(ctx context.Context, barcode string) (*entity.Product, error)
	List(ctx context.Context, f ListFilter) ([]*entity.Product, int, error)
	Update(ctx context.Context, product *entity.Product) error
	SetDeleted(ctx context.Context, id string, deleted bool, at time.Time) error
}
