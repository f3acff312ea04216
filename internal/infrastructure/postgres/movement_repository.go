package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementColumns = `id, code, product_id, product_description, product_barcode, product_generic,
	COALESCE(client_id, ''), client_name, employee_id, employee_name,
	quantity, unit_price, current_price, discount, total,
	payment_type, paid, paid_at, paid_total, created_at, updated_at`

// movementSearchColumns expresiones SQL que difieren del nombre expuesto.
var movementSearchColumns = map[string]string{
	"code": "code::numeric",
}

// MovementRepo libro de movimientos sobre la tabla movimentos.
type MovementRepo struct {
	q    Querier
	lock string
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// newLockingMovementRepository adaptador para una tx: las lecturas por id y
// las filas abiertas del cliente bloquean las filas hasta el Commit.
func newLockingMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q, lock: " FOR UPDATE"}
}

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var m entity.Movement
	err := row.Scan(
		&m.ID, &m.Code, &m.ProductID, &m.ProductDescription, &m.ProductBarcode, &m.ProductGeneric,
		&m.ClientID, &m.ClientName, &m.EmployeeID, &m.EmployeeName,
		&m.Quantity, &m.UnitPrice, &m.CurrentPrice, &m.Discount, &m.Total,
		&m.PaymentType, &m.Paid, &m.PaidAt, &m.PaidTotal, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MovementRepo) queryMovements(ctx context.Context, query string, args ...any) ([]*entity.Movement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query movimentos: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Movement, 0)
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movimento: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// NextCode reserva el próximo código de venta.
func (r *MovementRepo) NextCode(ctx context.Context) (int64, error) {
	var code int64
	if err := r.q.QueryRow(ctx, `SELECT nextval('movement_code_seq')`).Scan(&code); err != nil {
		return 0, fmt.Errorf("nextval movement_code_seq: %w", err)
	}
	return code, nil
}

// Create inserta una fila. client_id vacío se guarda como NULL.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO movimentos (
			id, code, product_id, product_description, product_barcode, product_generic,
			client_id, client_name, employee_id, employee_name,
			quantity, unit_price, current_price, discount, total,
			payment_type, paid, paid_at, paid_total, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`,
		m.ID, m.Code, m.ProductID, m.ProductDescription, m.ProductBarcode, m.ProductGeneric,
		m.ClientID, m.ClientName, m.EmployeeID, m.EmployeeName,
		m.Quantity, m.UnitPrice, m.CurrentPrice, m.Discount, m.Total,
		m.PaymentType, m.Paid, m.PaidAt, m.PaidTotal, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: movimento %s", domain.ErrDuplicate, m.ID)
		}
		return fmt.Errorf("insert movimento: %w", err)
	}
	return nil
}

func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	m, err := scanMovement(r.q.QueryRow(ctx, `SELECT `+movementColumns+` FROM movimentos WHERE id = $1`+r.lock, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movimento: %w", err)
	}
	return m, nil
}

// GetByIDs devuelve las filas encontradas; los IDs inexistentes se omiten.
func (r *MovementRepo) GetByIDs(ctx context.Context, ids []string) ([]*entity.Movement, error) {
	if len(ids) == 0 {
		return []*entity.Movement{}, nil
	}
	return r.queryMovements(ctx,
		`SELECT `+movementColumns+` FROM movimentos WHERE id = ANY($1) ORDER BY created_at, code, id`+r.lock, ids)
}

func (r *MovementRepo) ListByCode(ctx context.Context, code int64) ([]*entity.Movement, error) {
	return r.queryMovements(ctx,
		`SELECT `+movementColumns+` FROM movimentos WHERE code = $1 ORDER BY created_at, id`, code)
}

func (r *MovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.Movement, int, error) {
	w := &where{}
	if f.Code != nil {
		w.add("code = ?", *f.Code)
	}
	if f.ClientID != "" {
		w.add("client_id = ?", f.ClientID)
	}
	if f.EmployeeID != "" {
		w.add("employee_id = ?", f.EmployeeID)
	}
	if f.Paid != nil {
		w.add("paid = ?", *f.Paid)
	}
	if f.From != nil {
		w.add("created_at >= ?", *f.From)
	}
	if f.To != nil {
		w.add("created_at <= ?", *f.To)
	}
	if err := w.search(repository.MovementSearch, f.ListFilter, movementSearchColumns); err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM movimentos`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count movimentos: %w", err)
	}
	query := fmt.Sprintf(`SELECT %s FROM movimentos%s ORDER BY created_at DESC, code DESC, id LIMIT $%d OFFSET $%d`,
		movementColumns, w.String(), w.next(), w.next()+1)
	list, err := r.queryMovements(ctx, query, append(w.args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// Update reescribe cantidades, precios y estado de pago de la fila, siempre
// que paid siga valiendo wasPaid.
func (r *MovementRepo) Update(ctx context.Context, m *entity.Movement, wasPaid bool) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE movimentos SET quantity = $2, unit_price = $3, current_price = $4, discount = $5, total = $6,
			paid = $7, paid_at = $8, paid_total = $9, updated_at = $10
		WHERE id = $1 AND paid = $11`,
		m.ID, m.Quantity, m.UnitPrice, m.CurrentPrice, m.Discount, m.Total,
		m.Paid, m.PaidAt, m.PaidTotal, m.UpdatedAt, wasPaid,
	)
	if err != nil {
		return fmt.Errorf("update movimento: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		found, err := r.exists(ctx, m.ID)
		if err != nil {
			return err
		}
		if !found {
			return domain.ErrNotFound
		}
		return fmt.Errorf("%w: movimiento %s cambió de estado de pago", domain.ErrConflict, m.ID)
	}
	return nil
}

// Delete borra la fila sólo si sigue abierta.
func (r *MovementRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM movimentos WHERE id = $1 AND NOT paid`, id)
	if err != nil {
		return fmt.Errorf("delete movimento: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		found, err := r.exists(ctx, id)
		if err != nil {
			return err
		}
		if !found {
			return domain.ErrNotFound
		}
		return fmt.Errorf("%w: movimiento %s no se puede borrar", domain.ErrAlreadyPaid, id)
	}
	return nil
}

func (r *MovementRepo) exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := r.q.QueryRow(ctx, `SELECT 1 FROM movimentos WHERE id = $1`, id).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("buscar movimento: %w", err)
	}
	return true, nil
}

func (r *MovementRepo) ListUnpaidByClient(ctx context.Context, clientID string) ([]*entity.Movement, error) {
	return r.queryMovements(ctx, `
		SELECT `+movementColumns+` FROM movimentos
		WHERE client_id = $1 AND payment_type = $2 AND NOT paid
		ORDER BY created_at, code, id`+r.lock, clientID, entity.PaymentCredit)
}

func (r *MovementRepo) ListLastSettlement(ctx context.Context, clientID string) ([]*entity.Movement, error) {
	return r.queryMovements(ctx, `
		SELECT `+movementColumns+` FROM movimentos
		WHERE client_id = $1 AND payment_type = $2 AND paid
		  AND paid_at = (
			SELECT max(paid_at) FROM movimentos
			WHERE client_id = $1 AND payment_type = $2 AND paid
		  )
		ORDER BY created_at, code, id`, clientID, entity.PaymentCredit)
}

// ListSales agrega las filas por code. Los filtros de estado y fecha aplican
// sobre la cabecera (HAVING), el de cliente sobre las filas.
func (r *MovementRepo) ListSales(ctx context.Context, f repository.SaleFilter) ([]*entity.Sale, int, error) {
	w := &where{}
	if f.ClientID != "" {
		w.add("client_id = ?", f.ClientID)
	}
	whereSQL := w.String()
	w.conds = nil
	if f.Paid != nil {
		w.add("bool_and(paid) = ?", *f.Paid)
	}
	if f.From != nil {
		w.add("max(created_at) >= ?", *f.From)
	}
	if f.To != nil {
		w.add("max(created_at) <= ?", *f.To)
	}
	havingSQL := ""
	if len(w.conds) > 0 {
		havingSQL = " HAVING " + strings.Join(w.conds, " AND ")
	}

	grouped := `
		SELECT code, max(created_at) AS sale_date,
			COALESCE(min(client_id), '') AS client_id, min(client_name) AS client_name,
			min(employee_id) AS employee_id, min(employee_name) AS employee_name,
			min(payment_type) AS payment_type, count(*) AS items,
			sum(round(quantity * unit_price, 2)) AS gross, sum(discount) AS discount, sum(total) AS total,
			bool_and(paid) AS paid, COALESCE(sum(total) FILTER (WHERE NOT paid), 0) AS open
		FROM movimentos` + whereSQL + `
		GROUP BY code` + havingSQL

	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM (`+grouped+`) s`, w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count vendas: %w", err)
	}
	query := fmt.Sprintf(`%s ORDER BY sale_date DESC, code DESC LIMIT $%d OFFSET $%d`, grouped, w.next(), w.next()+1)
	rows, err := r.q.Query(ctx, query, append(w.args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list vendas: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Sale, 0)
	for rows.Next() {
		var s entity.Sale
		if err := rows.Scan(&s.Code, &s.Date, &s.ClientID, &s.ClientName, &s.EmployeeID, &s.EmployeeName,
			&s.PaymentType, &s.Items, &s.Gross, &s.Discount, &s.Total, &s.Paid, &s.Open); err != nil {
			return nil, 0, fmt.Errorf("scan venda: %w", err)
		}
		list = append(list, &s)
	}
	return list, total, rows.Err()
}

// OpenBalances saldo fiado por cliente con filas abiertas.
func (r *MovementRepo) OpenBalances(ctx context.Context, f repository.ListFilter, chargeCurrent bool) ([]*entity.ClientBalance, int, error) {
	w := &where{}
	if err := w.search(repository.BalanceSearch, f, map[string]string{
		"client_name": "c.name",
		"folder_code": "c.folder_code",
	}); err != nil {
		return nil, 0, err
	}
	from := fmt.Sprintf(`
		FROM (
			SELECT client_id, count(*) AS open_rows, sum(total) AS open_total,
				sum(GREATEST(round(quantity * current_price, 2) - discount, 0)) AS due_current,
				min(created_at) AS oldest
			FROM movimentos
			WHERE payment_type = '%s' AND NOT paid AND client_id IS NOT NULL
			GROUP BY client_id
		) o
		JOIN clientes c ON c.id = o.client_id
		LEFT JOIN (
			SELECT client_id, max(paid_at) AS last_payment
			FROM movimentos
			WHERE payment_type = '%s' AND paid AND client_id IS NOT NULL
			GROUP BY client_id
		) l ON l.client_id = o.client_id`, entity.PaymentCredit, entity.PaymentCredit) + w.String()

	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*)`+from, w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count saldos: %w", err)
	}
	n := w.next()
	query := fmt.Sprintf(`
		SELECT o.client_id, c.name, c.folder_code, o.open_rows, o.open_total,
			CASE WHEN $%d::boolean THEN o.due_current ELSE o.open_total END,
			o.oldest, l.last_payment
		%s
		ORDER BY c.name, o.client_id
		LIMIT $%d OFFSET $%d`, n, from, n+1, n+2)
	rows, err := r.q.Query(ctx, query, append(w.args, chargeCurrent, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list saldos: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.ClientBalance, 0)
	for rows.Next() {
		var b entity.ClientBalance
		if err := rows.Scan(&b.ClientID, &b.ClientName, &b.FolderCode, &b.OpenRows, &b.OpenTotal,
			&b.Due, &b.OldestSale, &b.LastPayment); err != nil {
			return nil, 0, fmt.Errorf("scan saldo: %w", err)
		}
		list = append(list, &b)
	}
	return list, total, rows.Err()
}

func (r *MovementRepo) CascadeClientName(ctx context.Context, clientID, name string, at time.Time) (int64, error) {
	cmd, err := r.q.Exec(ctx, `
		UPDATE movimentos SET client_name = $2, updated_at = $3
		WHERE client_id = $1 AND client_name <> $2`, clientID, name, at)
	if err != nil {
		return 0, fmt.Errorf("cascada cliente: %w", err)
	}
	return cmd.RowsAffected(), nil
}

func (r *MovementRepo) CascadeEmployeeName(ctx context.Context, employeeID, name string, at time.Time) (int64, error) {
	cmd, err := r.q.Exec(ctx, `
		UPDATE movimentos SET employee_name = $2, updated_at = $3
		WHERE employee_id = $1 AND employee_name <> $2`, employeeID, name, at)
	if err != nil {
		return 0, fmt.Errorf("cascada funcionario: %w", err)
	}
	return cmd.RowsAffected(), nil
}

// CascadeProduct copia descripción, código y genérico a todas las filas del
// producto; el precio actual sólo a las abiertas.
func (r *MovementRepo) CascadeProduct(ctx context.Context, p *entity.Product, at time.Time) (int64, error) {
	cmd, err := r.q.Exec(ctx, `
		UPDATE movimentos SET
			product_description = $2, product_barcode = $3, product_generic = $4,
			current_price = CASE WHEN paid THEN current_price ELSE $5 END,
			updated_at = $6
		WHERE product_id = $1
		  AND (product_description <> $2 OR product_barcode <> $3 OR product_generic <> $4
		       OR (NOT paid AND current_price <> $5))`,
		p.ID, p.Description, p.Barcode, p.Generic, p.SalePrice, at)
	if err != nil {
		return 0, fmt.Errorf("cascada producto: %w", err)
	}
	return cmd.RowsAffected(), nil
}

// ReconcileCurrentPrices alinea current_price de las filas abiertas con el precio del producto.
func (r *MovementRepo) ReconcileCurrentPrices(ctx context.Context, at time.Time) (int64, error) {
	cmd, err := r.q.Exec(ctx, `
		UPDATE movimentos m SET current_price = p.sale_price, updated_at = $1
		FROM produtos p
		WHERE p.id = m.product_id AND NOT m.paid AND m.current_price <> p.sale_price`, at)
	if err != nil {
		return 0, fmt.Errorf("reconciliar precios: %w", err)
	}
	return cmd.RowsAffected(), nil
}
