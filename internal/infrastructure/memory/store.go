// Package memory implementa los puertos de persistencia en memoria. Cada
// transacción trabaja sobre una copia del estado que solo se publica si fn
// termina sin error; los escritores se serializan.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/jhoicas/Inventario-pos/internal/domain/repository"
)

type balanceKey struct {
	itemID     string
	locationID string
}

type state struct {
	products    map[string]*entity.Product
	locations   map[string]*entity.Location
	balances    map[balanceKey]*entity.StockBalance
	movements   []*entity.StockMovement // orden de inserción
	sales       map[string]*entity.Sale
	saleNumbers map[string]string // saleNumber → id
	lines       map[string][]entity.SaleLine
	payments    map[string][]*entity.Payment
}

func newState() *state {
	return &state{
		products:    map[string]*entity.Product{},
		locations:   map[string]*entity.Location{},
		balances:    map[balanceKey]*entity.StockBalance{},
		sales:       map[string]*entity.Sale{},
		saleNumbers: map[string]string{},
		lines:       map[string][]entity.SaleLine{},
		payments:    map[string][]*entity.Payment{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.products {
		c.products[k] = copyProduct(v)
	}
	for k, v := range s.locations {
		l := *v
		c.locations[k] = &l
	}
	for k, v := range s.balances {
		c.balances[k] = copyBalance(v)
	}
	c.movements = make([]*entity.StockMovement, len(s.movements))
	for i, m := range s.movements {
		c.movements[i] = copyMovement(m)
	}
	for k, v := range s.sales {
		c.sales[k] = copySale(v)
	}
	for k, v := range s.saleNumbers {
		c.saleNumbers[k] = v
	}
	for k, v := range s.lines {
		c.lines[k] = append([]entity.SaleLine(nil), v...)
	}
	for k, v := range s.payments {
		list := make([]*entity.Payment, len(v))
		for i, p := range v {
			cp := *p
			list[i] = &cp
		}
		c.payments[k] = list
	}
	return c
}

// Store base de datos en memoria.
type Store struct {
	txMu sync.Mutex   // un escritor a la vez
	mu   sync.RWMutex // protege st
	st   *state
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// view es el acceso de un repo al estado: el publicado (fuera de tx) o la copia de una tx.
type view struct {
	store *Store
	tx    *state
}

func (v *view) read(fn func(st *state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()
	return fn(v.store.st)
}

func (v *view) write(fn func(st *state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.txMu.Lock()
	defer v.store.txMu.Unlock()
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	return fn(v.store.st)
}

func (s *Store) committed() *view { return &view{store: s} }

// Products repo fuera de transacción.
func (s *Store) Products() *ProductRepo { return &ProductRepo{v: s.committed()} }

// Locations repo fuera de transacción.
func (s *Store) Locations() *LocationRepo { return &LocationRepo{v: s.committed()} }

// Balances repo fuera de transacción.
func (s *Store) Balances() *BalanceRepo { return &BalanceRepo{v: s.committed()} }

// Movements repo fuera de transacción.
func (s *Store) Movements() *MovementRepo { return &MovementRepo{v: s.committed()} }

// Sales repo fuera de transacción.
func (s *Store) Sales() *SaleRepo { return &SaleRepo{v: s.committed()} }

// Payments repo fuera de transacción.
func (s *Store) Payments() *PaymentRepo { return &PaymentRepo{v: s.committed()} }

// Run ejecuta fn con los repos del libro de stock en una transacción.
func (s *Store) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	balanceRepo repository.StockBalanceRepository,
	productRepo repository.ProductRepository,
) error) error {
	return s.RunSale(ctx, func(
		movRepo repository.StockMovementRepository,
		balanceRepo repository.StockBalanceRepository,
		productRepo repository.ProductRepository,
		_ repository.SaleRepository,
		_ repository.PaymentRepository,
	) error {
		return fn(movRepo, balanceRepo, productRepo)
	})
}

// RunSale ejecuta fn con los repos del libro y de ventas en una transacción.
// Si fn falla o el contexto se canceló, la copia se descarta.
func (s *Store) RunSale(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	balanceRepo repository.StockBalanceRepository,
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	paymentRepo repository.PaymentRepository,
) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snap := s.st.clone()
	s.mu.RUnlock()

	v := &view{tx: snap}
	if err := fn(&MovementRepo{v: v}, &BalanceRepo{v: v}, &ProductRepo{v: v}, &SaleRepo{v: v}, &PaymentRepo{v: v}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.st = snap
	s.mu.Unlock()
	return nil
}

func copyProduct(p *entity.Product) *entity.Product {
	c := *p
	return &c
}

func copyBalance(b *entity.StockBalance) *entity.StockBalance {
	c := *b
	if b.LastRestockedAt != nil {
		t := *b.LastRestockedAt
		c.LastRestockedAt = &t
	}
	if b.LastSoldAt != nil {
		t := *b.LastSoldAt
		c.LastSoldAt = &t
	}
	return &c
}

func copyMovement(m *entity.StockMovement) *entity.StockMovement {
	c := *m
	if m.ExpiryDate != nil {
		t := *m.ExpiryDate
		c.ExpiryDate = &t
	}
	return &c
}

func copySale(s *entity.Sale) *entity.Sale {
	c := *s
	if s.HeldAt != nil {
		t := *s.HeldAt
		c.HeldAt = &t
	}
	if s.Metadata != nil {
		c.Metadata = make(map[string]any, len(s.Metadata))
		for k, v := range s.Metadata {
			c.Metadata[k] = v
		}
	}
	c.Lines = nil
	return &c
}

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return []T{}
	}
	if offset < 0 {
		offset = 0
	}
	end := len(list)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return list[offset:end]
}
