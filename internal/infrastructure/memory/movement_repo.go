package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/ledger"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo libro de movimientos en memoria.
type MovementRepo struct {
	s  *Store
	tx bool
}

func (r *MovementRepo) NextCode(_ context.Context) (int64, error) {
	defer r.s.lockWrite(r.tx)()
	r.s.seq++
	return r.s.seq, nil
}

func (r *MovementRepo) Create(_ context.Context, m *entity.Movement) error {
	defer r.s.lockWrite(r.tx)()
	if _, ok := r.s.movements[m.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.movements[m.ID] = copyMovement(m)
	return nil
}

func (r *MovementRepo) GetByID(_ context.Context, id string) (*entity.Movement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.movements[id]
	if !ok {
		return nil, nil
	}
	return copyMovement(m), nil
}

func (r *MovementRepo) GetByIDs(_ context.Context, ids []string) ([]*entity.Movement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Movement, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if m, ok := r.s.movements[id]; ok {
			out = append(out, copyMovement(m))
		}
	}
	sortChronological(out)
	return out, nil
}

func (r *MovementRepo) ListByCode(_ context.Context, code int64) ([]*entity.Movement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := r.filter(func(m *entity.Movement) bool { return m.Code == code })
	sortChronological(out)
	return out, nil
}

func (r *MovementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.Movement, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var matchErr error
	out := r.filter(func(m *entity.Movement) bool {
		if f.Code != nil && m.Code != *f.Code {
			return false
		}
		if f.ClientID != "" && m.ClientID != f.ClientID {
			return false
		}
		if f.EmployeeID != "" && m.EmployeeID != f.EmployeeID {
			return false
		}
		if f.Paid != nil && m.Paid != *f.Paid {
			return false
		}
		if !inRange(m.CreatedAt, f.From, f.To) {
			return false
		}
		ok, err := match(repository.MovementSearch, f.ListFilter, func(field string) interface{} { return movementField(m, field) })
		if err != nil {
			matchErr = err
			return false
		}
		return ok
	})
	if matchErr != nil {
		return nil, 0, matchErr
	}
	sortNewestFirst(out)
	return page(out, f.Limit, f.Offset), len(out), nil
}

func (r *MovementRepo) Update(_ context.Context, m *entity.Movement, wasPaid bool) error {
	defer r.s.lockWrite(r.tx)()
	cur, ok := r.s.movements[m.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if cur.Paid != wasPaid {
		return fmt.Errorf("%w: movimiento %s cambió de estado de pago", domain.ErrConflict, m.ID)
	}
	r.s.movements[m.ID] = copyMovement(m)
	return nil
}

func (r *MovementRepo) Delete(_ context.Context, id string) error {
	defer r.s.lockWrite(r.tx)()
	cur, ok := r.s.movements[id]
	if !ok {
		return domain.ErrNotFound
	}
	if cur.Paid {
		return domain.ErrAlreadyPaid
	}
	delete(r.s.movements, id)
	return nil
}

func (r *MovementRepo) ListUnpaidByClient(_ context.Context, clientID string) ([]*entity.Movement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := r.filter(func(m *entity.Movement) bool {
		return m.ClientID == clientID && !m.Paid && ledger.IsCredit(m.PaymentType)
	})
	sortChronological(out)
	return out, nil
}

func (r *MovementRepo) ListLastSettlement(_ context.Context, clientID string) ([]*entity.Movement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var last *time.Time
	for _, m := range r.s.movements {
		if m.ClientID != clientID || !m.Paid || m.PaidAt == nil || !ledger.IsCredit(m.PaymentType) {
			continue
		}
		if last == nil || m.PaidAt.After(*last) {
			t := *m.PaidAt
			last = &t
		}
	}
	if last == nil {
		return []*entity.Movement{}, nil
	}
	out := r.filter(func(m *entity.Movement) bool {
		return m.ClientID == clientID && m.Paid && m.PaidAt != nil && m.PaidAt.Equal(*last) && ledger.IsCredit(m.PaymentType)
	})
	sortChronological(out)
	return out, nil
}

func (r *MovementRepo) ListSales(_ context.Context, f repository.SaleFilter) ([]*entity.Sale, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rows := r.filter(func(m *entity.Movement) bool {
		return f.ClientID == "" || m.ClientID == f.ClientID
	})
	sales := ledger.GroupSales(rows)
	out := make([]*entity.Sale, 0, len(sales))
	for _, s := range sales {
		if f.Paid != nil && s.Paid != *f.Paid {
			continue
		}
		if !inRange(s.Date, f.From, f.To) {
			continue
		}
		out = append(out, s)
	}
	return page(out, f.Limit, f.Offset), len(out), nil
}

func (r *MovementRepo) OpenBalances(_ context.Context, f repository.ListFilter, chargeCurrent bool) ([]*entity.ClientBalance, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rows := r.filter(func(m *entity.Movement) bool { return ledger.IsCredit(m.PaymentType) })
	all := ledger.Balances(rows, chargeCurrent)
	out := make([]*entity.ClientBalance, 0, len(all))
	for _, b := range all {
		if c, ok := r.s.clients[b.ClientID]; ok {
			b.FolderCode = c.FolderCode
		}
		ok, err := match(repository.BalanceSearch, f, func(field string) interface{} {
			if field == "folder_code" {
				return b.FolderCode
			}
			return b.ClientName
		})
		if err != nil {
			return nil, 0, err
		}
		if ok {
			out = append(out, b)
		}
	}
	return page(out, f.Limit, f.Offset), len(out), nil
}

func (r *MovementRepo) CascadeClientName(_ context.Context, clientID, name string, at time.Time) (int64, error) {
	defer r.s.lockWrite(r.tx)()
	var n int64
	for _, m := range r.s.movements {
		if m.ClientID == clientID && m.ClientName != name {
			m.ClientName = name
			m.UpdatedAt = at
			n++
		}
	}
	return n, nil
}

func (r *MovementRepo) CascadeEmployeeName(_ context.Context, employeeID, name string, at time.Time) (int64, error) {
	defer r.s.lockWrite(r.tx)()
	var n int64
	for _, m := range r.s.movements {
		if m.EmployeeID == employeeID && m.EmployeeName != name {
			m.EmployeeName = name
			m.UpdatedAt = at
			n++
		}
	}
	return n, nil
}

func (r *MovementRepo) CascadeProduct(_ context.Context, p *entity.Product, at time.Time) (int64, error) {
	defer r.s.lockWrite(r.tx)()
	var n int64
	for _, m := range r.s.movements {
		if m.ProductID != p.ID {
			continue
		}
		changed := m.ProductDescription != p.Description || m.ProductBarcode != p.Barcode || m.ProductGeneric != p.Generic
		m.ProductDescription = p.Description
		m.ProductBarcode = p.Barcode
		m.ProductGeneric = p.Generic
		if !m.Paid && !m.CurrentPrice.Equal(p.SalePrice) {
			m.CurrentPrice = p.SalePrice
			changed = true
		}
		if changed {
			m.UpdatedAt = at
			n++
		}
	}
	return n, nil
}

func (r *MovementRepo) ReconcileCurrentPrices(_ context.Context, at time.Time) (int64, error) {
	defer r.s.lockWrite(r.tx)()
	var n int64
	for _, m := range r.s.movements {
		if m.Paid {
			continue
		}
		p, ok := r.s.products[m.ProductID]
		if !ok || m.CurrentPrice.Equal(p.SalePrice) {
			continue
		}
		m.CurrentPrice = p.SalePrice
		m.UpdatedAt = at
		n++
	}
	return n, nil
}

// filter devuelve copias de las filas que cumplen keep. Requiere mu tomado.
func (r *MovementRepo) filter(keep func(m *entity.Movement) bool) []*entity.Movement {
	out := make([]*entity.Movement, 0)
	for _, m := range r.s.movements {
		if keep(m) {
			out = append(out, copyMovement(m))
		}
	}
	return out
}

func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}

func sortChronological(rows []*entity.Movement) {
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.Before(rows[j].CreatedAt)
		}
		if rows[i].Code != rows[j].Code {
			return rows[i].Code < rows[j].Code
		}
		return rows[i].ID < rows[j].ID
	})
}

func sortNewestFirst(rows []*entity.Movement) {
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		if rows[i].Code != rows[j].Code {
			return rows[i].Code > rows[j].Code
		}
		return rows[i].ID < rows[j].ID
	})
}

func movementField(m *entity.Movement, field string) interface{} {
	switch field {
	case "product_barcode":
		return m.ProductBarcode
	case "client_name":
		return m.ClientName
	case "employee_name":
		return m.EmployeeName
	case "payment_type":
		return m.PaymentType
	case "code":
		return decimalFromInt(m.Code)
	case "total":
		return m.Total
	}
	return m.ProductDescription
}
