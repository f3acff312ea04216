package repository

import (
	"context"
	"time"

	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
)

// EmployeeRepository puerto de persistencia para Employee.
type EmployeeRepository interface {
	Create(ctx context.Context, employee *entity.Employee) error
	GetByID(ctx context.Context, id string) (*entity.Employee, error)
	List(ctx context.Context, f ListFilter) ([]*entity.Employee, int, error)
	Update(ctx context.Context, employee *entity.Employee) error
	SetDeleted(ctx context.Context, id string, deleted bool, at time.Time) error
}
