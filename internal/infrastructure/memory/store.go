// Package memory implementa los puertos de persistencia en memoria. Se usa con
// DB_DRIVER=memory (demo, desarrollo sin PostgreSQL) y como fake en los tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/farmacia-pos/internal/application/ports"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
	"github.com/jhoicas/farmacia-pos/pkg/textutil"
)

var _ ports.TxRunner = (*Store)(nil)

// Store guarda todas las tablas. Las lecturas devuelven copias; las escrituras
// copian la entidad recibida.
type Store struct {
	mu        sync.Mutex
	txMu      sync.Mutex
	clients   map[string]*entity.Client
	employees map[string]*entity.Employee
	products  map[string]*entity.Product
	movements map[string]*entity.Movement
	seq       int64
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		clients:   make(map[string]*entity.Client),
		employees: make(map[string]*entity.Employee),
		products:  make(map[string]*entity.Product),
		movements: make(map[string]*entity.Movement),
	}
}

// Repos repositorios sobre el almacén (fuera de transacción).
func (s *Store) Repos() ports.Repos { return s.repos(false) }

func (s *Store) repos(tx bool) ports.Repos {
	return ports.Repos{
		Clients:   &ClientRepo{s: s, tx: tx},
		Employees: &EmployeeRepo{s: s, tx: tx},
		Products:  &ProductRepo{s: s, tx: tx},
		Movements: &MovementRepo{s: s, tx: tx},
	}
}

// lockWrite toma mu; fuera de transacción también espera a txMu para que un
// rollback de Run no pise la escritura. Devuelve la función de liberación.
func (s *Store) lockWrite(inTx bool) func() {
	if !inTx {
		s.txMu.Lock()
	}
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		if !inTx {
			s.txMu.Unlock()
		}
	}
}

// Run ejecuta fn de forma serializada; si fn falla se restaura el estado previo.
func (s *Store) Run(ctx context.Context, fn func(r ports.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(s.repos(true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type snapshot struct {
	clients   map[string]*entity.Client
	employees map[string]*entity.Employee
	products  map[string]*entity.Product
	movements map[string]*entity.Movement
	seq       int64
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := snapshot{
		clients:   make(map[string]*entity.Client, len(s.clients)),
		employees: make(map[string]*entity.Employee, len(s.employees)),
		products:  make(map[string]*entity.Product, len(s.products)),
		movements: make(map[string]*entity.Movement, len(s.movements)),
		seq:       s.seq,
	}
	for k, v := range s.clients {
		c := *v
		snap.clients[k] = &c
	}
	for k, v := range s.employees {
		e := *v
		snap.employees[k] = &e
	}
	for k, v := range s.products {
		p := *v
		snap.products[k] = &p
	}
	for k, v := range s.movements {
		snap.movements[k] = copyMovement(v)
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients = snap.clients
	s.employees = snap.employees
	s.products = snap.products
	s.movements = snap.movements
	s.seq = snap.seq
}

func copyMovement(m *entity.Movement) *entity.Movement {
	c := *m
	if m.PaidAt != nil {
		t := *m.PaidAt
		c.PaidAt = &t
	}
	return &c
}

// match aplica la búsqueda por columna sobre el valor de la entidad.
func match(search repository.SearchFields, f repository.ListFilter, value func(field string) interface{}) (bool, error) {
	if f.Query == "" {
		return true, nil
	}
	field, kind, err := search.Resolve(f.Field)
	if err != nil {
		return false, err
	}
	want, err := kind.Parse(f.Query)
	if err != nil {
		return false, err
	}
	got := value(field)
	switch kind {
	case repository.FieldNumber:
		return got.(decimal.Decimal).Equal(want.(decimal.Decimal)), nil
	case repository.FieldBool:
		return got.(bool) == want.(bool), nil
	}
	return textutil.ContainsFold(got.(string), want.(string)), nil
}

// page recorta items según limit/offset. limit <= 0 devuelve todo desde offset.
func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	if offset < 0 {
		offset = 0
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

func sortByText[T any](items []T, key func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		return textutil.Fold(key(items[i])) < textutil.Fold(key(items[j]))
	})
}

func decimalFromInt(n int64) decimal.Decimal { return decimal.NewFromInt(n) }
