package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
)

var _ repository.EmployeeRepository = (*EmployeeRepo)(nil)

const employeeColumns = `id, name, pin_hash, deleted, created_at, updated_at`

// EmployeeRepo funcionarios sobre PostgreSQL.
type EmployeeRepo struct {
	q Querier
}

// NewEmployeeRepository construye el adaptador.
func NewEmployeeRepository(q Querier) *EmployeeRepo {
	return &EmployeeRepo{q: q}
}

func scanEmployee(row pgx.Row) (*entity.Employee, error) {
	var e entity.Employee
	if err := row.Scan(&e.ID, &e.Name, &e.PINHash, &e.Deleted, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EmployeeRepo) Create(ctx context.Context, e *entity.Employee) error {
	_, err := r.q.Exec(ctx, `INSERT INTO funcionarios (`+employeeColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.Name, e.PINHash, e.Deleted, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert funcionario: %w", err)
	}
	return nil
}

func (r *EmployeeRepo) GetByID(ctx context.Context, id string) (*entity.Employee, error) {
	e, err := scanEmployee(r.q.QueryRow(ctx, `SELECT `+employeeColumns+` FROM funcionarios WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get funcionario: %w", err)
	}
	return e, nil
}

func (r *EmployeeRepo) List(ctx context.Context, f repository.ListFilter) ([]*entity.Employee, int, error) {
	w := &where{}
	w.add("deleted = ?", f.Deleted)
	if err := w.search(repository.EmployeeSearch, f, nil); err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM funcionarios`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count funcionarios: %w", err)
	}
	query := fmt.Sprintf(`SELECT %s FROM funcionarios%s ORDER BY unaccent(name), id LIMIT $%d OFFSET $%d`,
		employeeColumns, w.String(), w.next(), w.next()+1)
	rows, err := r.q.Query(ctx, query, append(w.args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list funcionarios: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Employee, 0)
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan funcionario: %w", err)
		}
		list = append(list, e)
	}
	return list, total, rows.Err()
}

func (r *EmployeeRepo) Update(ctx context.Context, e *entity.Employee) error {
	cmd, err := r.q.Exec(ctx, `UPDATE funcionarios SET name = $2, pin_hash = $3, updated_at = $4 WHERE id = $1`,
		e.ID, e.Name, e.PINHash, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update funcionario: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *EmployeeRepo) SetDeleted(ctx context.Context, id string, deleted bool, at time.Time) error {
	cmd, err := r.q.Exec(ctx, `UPDATE funcionarios SET deleted = $2, updated_at = $3 WHERE id = $1`, id, deleted, at)
	if err != nil {
		return fmt.Errorf("borrado lógico funcionario: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
