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

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, description, barcode, purchase_price, sale_price, generic, deleted, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.Description, &p.Barcode, &p.PurchasePrice, &p.SalePrice, &p.Generic, &p.Deleted, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO produtos (`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.Description, p.Barcode, p.PurchasePrice, p.SalePrice, p.Generic, p.Deleted, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: código de barras %s", domain.ErrDuplicate, p.Barcode)
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM produtos WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetByBarcode obtiene el producto activo con ese código de barras.
func (r *ProductRepo) GetByBarcode(ctx context.Context, barcode string) (*entity.Product, error) {
	if barcode == "" {
		return nil, nil
	}
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM produtos WHERE barcode = $1 AND NOT deleted`, barcode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product by barcode: %w", err)
	}
	return p, nil
}

// List lista productos con paginación y búsqueda.
func (r *ProductRepo) List(ctx context.Context, f repository.ListFilter) ([]*entity.Product, int, error) {
	w := &where{}
	w.add("deleted = ?", f.Deleted)
	if err := w.search(repository.ProductSearch, f, nil); err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM produtos`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}
	query := fmt.Sprintf(`SELECT %s FROM produtos%s ORDER BY unaccent(description), id LIMIT $%d OFFSET $%d`,
		productColumns, w.String(), w.next(), w.next()+1)
	rows, err := r.q.Query(ctx, query, append(w.args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, total, rows.Err()
}

// Update actualiza un producto existente.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE produtos SET description = $2, barcode = $3, purchase_price = $4, sale_price = $5, generic = $6, updated_at = $7
		WHERE id = $1`,
		p.ID, p.Description, p.Barcode, p.PurchasePrice, p.SalePrice, p.Generic, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: código de barras %s", domain.ErrDuplicate, p.Barcode)
		}
		return fmt.Errorf("update product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetDeleted marca o desmarca el borrado lógico.
func (r *ProductRepo) SetDeleted(ctx context.Context, id string, deleted bool, at time.Time) error {
	cmd, err := r.q.Exec(ctx, `UPDATE produtos SET deleted = $2, updated_at = $3 WHERE id = $1`, id, deleted, at)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: ya existe un producto activo con el mismo código de barras", domain.ErrDuplicate)
		}
		return fmt.Errorf("borrado lógico product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
