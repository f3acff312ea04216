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

var _ repository.ClientRepository = (*ClientRepo)(nil)

const clientColumns = `id, name, address, phone, cpf, rg, folder_code, deleted, created_at, updated_at`

// ClientRepo implementación de ClientRepository sobre PostgreSQL (pool o tx).
type ClientRepo struct {
	q Querier
}

// NewClientRepository construye el adaptador. Pasar pool o tx (Querier).
func NewClientRepository(q Querier) *ClientRepo {
	return &ClientRepo{q: q}
}

func scanClient(row pgx.Row) (*entity.Client, error) {
	var c entity.Client
	err := row.Scan(&c.ID, &c.Name, &c.Address, &c.Phone, &c.CPF, &c.RG, &c.FolderCode, &c.Deleted, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create persiste un nuevo cliente.
func (r *ClientRepo) Create(ctx context.Context, c *entity.Client) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO clientes (`+clientColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		c.ID, c.Name, c.Address, c.Phone, c.CPF, c.RG, c.FolderCode, c.Deleted, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: cpf %s", domain.ErrDuplicate, c.CPF)
		}
		return fmt.Errorf("insert cliente: %w", err)
	}
	return nil
}

// GetByID obtiene un cliente por ID.
func (r *ClientRepo) GetByID(ctx context.Context, id string) (*entity.Client, error) {
	c, err := scanClient(r.q.QueryRow(ctx, `SELECT `+clientColumns+` FROM clientes WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cliente: %w", err)
	}
	return c, nil
}

// GetByCPF obtiene el cliente activo con ese CPF.
func (r *ClientRepo) GetByCPF(ctx context.Context, cpf string) (*entity.Client, error) {
	c, err := scanClient(r.q.QueryRow(ctx, `SELECT `+clientColumns+` FROM clientes WHERE cpf = $1 AND NOT deleted`, cpf))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cliente por cpf: %w", err)
	}
	return c, nil
}

// List lista clientes con paginación y búsqueda por columna.
func (r *ClientRepo) List(ctx context.Context, f repository.ListFilter) ([]*entity.Client, int, error) {
	w := &where{}
	w.add("deleted = ?", f.Deleted)
	if err := w.search(repository.ClientSearch, f, nil); err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM clientes`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count clientes: %w", err)
	}
	query := fmt.Sprintf(`SELECT %s FROM clientes%s ORDER BY unaccent(name), id LIMIT $%d OFFSET $%d`,
		clientColumns, w.String(), w.next(), w.next()+1)
	rows, err := r.q.Query(ctx, query, append(w.args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list clientes: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Client, 0)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan cliente: %w", err)
		}
		list = append(list, c)
	}
	return list, total, rows.Err()
}

// Update actualiza los datos del cliente.
func (r *ClientRepo) Update(ctx context.Context, c *entity.Client) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE clientes SET name = $2, address = $3, phone = $4, cpf = $5, rg = $6, folder_code = $7, updated_at = $8
		WHERE id = $1`,
		c.ID, c.Name, c.Address, c.Phone, c.CPF, c.RG, c.FolderCode, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: cpf %s", domain.ErrDuplicate, c.CPF)
		}
		return fmt.Errorf("update cliente: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetDeleted marca o desmarca el borrado lógico.
func (r *ClientRepo) SetDeleted(ctx context.Context, id string, deleted bool, at time.Time) error {
	cmd, err := r.q.Exec(ctx, `UPDATE clientes SET deleted = $2, updated_at = $3 WHERE id = $1`, id, deleted, at)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: ya existe un cliente activo con el mismo cpf", domain.ErrDuplicate)
		}
		return fmt.Errorf("borrado lógico cliente: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
