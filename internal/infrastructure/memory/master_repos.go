package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
)

var (
	_ repository.ClientRepository   = (*ClientRepo)(nil)
	_ repository.EmployeeRepository = (*EmployeeRepo)(nil)
	_ repository.ProductRepository  = (*ProductRepo)(nil)
)

// ClientRepo clientes en memoria.
type ClientRepo struct {
	s  *Store
	tx bool
}

func (r *ClientRepo) Create(_ context.Context, c *entity.Client) error {
	defer r.s.lockWrite(r.tx)()
	if _, ok := r.s.clients[c.ID]; ok {
		return domain.ErrDuplicate
	}
	if r.cpfTaken(c.CPF, c.ID) {
		return fmt.Errorf("%w: cpf %s", domain.ErrDuplicate, c.CPF)
	}
	cp := *c
	r.s.clients[c.ID] = &cp
	return nil
}

func (r *ClientRepo) GetByID(_ context.Context, id string) (*entity.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.clients[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *ClientRepo) GetByCPF(_ context.Context, cpf string) (*entity.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.clients {
		if !c.Deleted && c.CPF == cpf {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *ClientRepo) List(_ context.Context, f repository.ListFilter) ([]*entity.Client, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Client, 0)
	for _, c := range r.s.clients {
		if c.Deleted != f.Deleted {
			continue
		}
		ok, err := match(repository.ClientSearch, f, func(field string) interface{} { return clientField(c, field) })
		if err != nil {
			return nil, 0, err
		}
		if ok {
			cp := *c
			out = append(out, &cp)
		}
	}
	sortByText(out, func(c *entity.Client) string { return c.Name })
	return page(out, f.Limit, f.Offset), len(out), nil
}

func (r *ClientRepo) Update(_ context.Context, c *entity.Client) error {
	defer r.s.lockWrite(r.tx)()
	if _, ok := r.s.clients[c.ID]; !ok {
		return domain.ErrNotFound
	}
	if !c.Deleted && r.cpfTaken(c.CPF, c.ID) {
		return fmt.Errorf("%w: cpf %s", domain.ErrDuplicate, c.CPF)
	}
	cp := *c
	r.s.clients[c.ID] = &cp
	return nil
}

func (r *ClientRepo) SetDeleted(_ context.Context, id string, deleted bool, at time.Time) error {
	defer r.s.lockWrite(r.tx)()
	c, ok := r.s.clients[id]
	if !ok {
		return domain.ErrNotFound
	}
	if !deleted && r.cpfTaken(c.CPF, c.ID) {
		return fmt.Errorf("%w: cpf %s", domain.ErrDuplicate, c.CPF)
	}
	c.Deleted = deleted
	c.UpdatedAt = at
	return nil
}

func (r *ClientRepo) cpfTaken(cpf, exceptID string) bool {
	if cpf == "" {
		return false
	}
	for id, c := range r.s.clients {
		if id != exceptID && !c.Deleted && c.CPF == cpf {
			return true
		}
	}
	return false
}

func clientField(c *entity.Client, field string) interface{} {
	switch field {
	case "address":
		return c.Address
	case "phone":
		return c.Phone
	case "cpf":
		return c.CPF
	case "rg":
		return c.RG
	case "folder_code":
		return c.FolderCode
	}
	return c.Name
}

// EmployeeRepo funcionarios en memoria.
type EmployeeRepo struct {
	s  *Store
	tx bool
}

func (r *EmployeeRepo) Create(_ context.Context, e *entity.Employee) error {
	defer r.s.lockWrite(r.tx)()
	if _, ok := r.s.employees[e.ID]; ok {
		return domain.ErrDuplicate
	}
	cp := *e
	r.s.employees[e.ID] = &cp
	return nil
}

func (r *EmployeeRepo) GetByID(_ context.Context, id string) (*entity.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.employees[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (r *EmployeeRepo) List(_ context.Context, f repository.ListFilter) ([]*entity.Employee, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Employee, 0)
	for _, e := range r.s.employees {
		if e.Deleted != f.Deleted {
			continue
		}
		ok, err := match(repository.EmployeeSearch, f, func(string) interface{} { return e.Name })
		if err != nil {
			return nil, 0, err
		}
		if ok {
			cp := *e
			out = append(out, &cp)
		}
	}
	sortByText(out, func(e *entity.Employee) string { return e.Name })
	return page(out, f.Limit, f.Offset), len(out), nil
}

func (r *EmployeeRepo) Update(_ context.Context, e *entity.Employee) error {
	defer r.s.lockWrite(r.tx)()
	if _, ok := r.s.employees[e.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *e
	r.s.employees[e.ID] = &cp
	return nil
}

func (r *EmployeeRepo) SetDeleted(_ context.Context, id string, deleted bool, at time.Time) error {
	defer r.s.lockWrite(r.tx)()
	e, ok := r.s.employees[id]
	if !ok {
		return domain.ErrNotFound
	}
	e.Deleted = deleted
	e.UpdatedAt = at
	return nil
}

// ProductRepo productos en memoria.
type ProductRepo struct {
	s  *Store
	tx bool
}

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	defer r.s.lockWrite(r.tx)()
	if _, ok := r.s.products[p.ID]; ok {
		return domain.ErrDuplicate
	}
	if r.barcodeTaken(p.Barcode, p.ID) {
		return fmt.Errorf("%w: código de barras %s", domain.ErrDuplicate, p.Barcode)
	}
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *ProductRepo) GetByBarcode(_ context.Context, barcode string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.products {
		if !p.Deleted && p.Barcode == barcode {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *ProductRepo) List(_ context.Context, f repository.ListFilter) ([]*entity.Product, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Product, 0)
	for _, p := range r.s.products {
		if p.Deleted != f.Deleted {
			continue
		}
		ok, err := match(repository.ProductSearch, f, func(field string) interface{} { return productField(p, field) })
		if err != nil {
			return nil, 0, err
		}
		if ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	sortByText(out, func(p *entity.Product) string { return p.Description })
	return page(out, f.Limit, f.Offset), len(out), nil
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	defer r.s.lockWrite(r.tx)()
	if _, ok := r.s.products[p.ID]; !ok {
		return domain.ErrNotFound
	}
	if !p.Deleted && r.barcodeTaken(p.Barcode, p.ID) {
		return fmt.Errorf("%w: código de barras %s", domain.ErrDuplicate, p.Barcode)
	}
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r *ProductRepo) SetDeleted(_ context.Context, id string, deleted bool, at time.Time) error {
	defer r.s.lockWrite(r.tx)()
	p, ok := r.s.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	if !deleted && r.barcodeTaken(p.Barcode, p.ID) {
		return fmt.Errorf("%w: código de barras %s", domain.ErrDuplicate, p.Barcode)
	}
	p.Deleted = deleted
	p.UpdatedAt = at
	return nil
}

func (r *ProductRepo) barcodeTaken(barcode, exceptID string) bool {
	if barcode == "" {
		return false
	}
	for id, p := range r.s.products {
		if id != exceptID && !p.Deleted && p.Barcode == barcode {
			return true
		}
	}
	return false
}

func productField(p *entity.Product, field string) interface{} {
	switch field {
	case "barcode":
		return p.Barcode
	case "generic":
		return p.Generic
	case "sale_price":
		return p.SalePrice
	case "purchase_price":
		return p.PurchasePrice
	}
	return p.Description
}
