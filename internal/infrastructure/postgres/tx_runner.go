package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/farmacia-pos/internal/application/ports"
)

var _ ports.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Repos repositorios sobre el pool (fuera de transacción).
func Repos(q Querier) ports.Repos {
	return ports.Repos{
		Clients:   NewClientRepository(q),
		Employees: NewEmployeeRepository(q),
		Products:  NewProductRepository(q),
		Movements: NewMovementRepository(q),
	}
}

// txRepos como Repos, con bloqueo de filas en las lecturas del libro.
func txRepos(q Querier) ports.Repos {
	repos := Repos(q)
	repos.Movements = newLockingMovementRepository(q)
	return repos
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(repos ports.Repos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(txRepos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
