package ports

import (
	"context"

	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
)

// Repos repositorios atados a una misma transacción.
type Repos struct {
	Clients   repository.ClientRepository
	Employees repository.EmployeeRepository
	Products  repository.ProductRepository
	Movements repository.MovementRepository
}

// TxRunner ejecuta fn dentro de una transacción: Commit si fn devuelve nil,
// Rollback en cualquier otro caso.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}
