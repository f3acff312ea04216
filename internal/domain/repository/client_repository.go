package repository

import (
	"context"
	"time"

	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
)

// ClientRepository puerto de persistencia para Client.
// GetBy* devuelven (nil, nil) cuando no existe.
type ClientRepository interface {
	Create(ctx context.Context, client *entity.Client) error
	GetByID(ctx context.Context, id string) (*entity.Client, error)
	GetByCPF(ctx context.Context, cpf string) (*entity.Client, error)
	List(ctx context.Context, f ListFilter) ([]*entity.Client, int, error)
	Update(ctx context.Context, client *entity.Client) error
	SetDeleted(ctx context.Context, id string, deleted bool, at time.Time) error
}
