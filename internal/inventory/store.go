// Package inventory holds the shared product ledger and the
// aggregate computations that run over snapshots of it.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	ErrNotFound = errors.New("product not found")
	ErrInvalid  = errors.New("invalid product parameters")
)

// InsufficientStockError reports a purchase that would drive a
// quantity below zero. The failed request leaves the product untouched.
type InsufficientStockError struct {
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: available %d, requested %d", e.Available, e.Requested)
}

// Store is the shared product ledger. Two locks guard it: invMu covers
// the product map, the ID counter and every field; priceMu additionally
// guards price writes. The one operation that needs both (UpdatePrice)
// always takes invMu before priceMu — that fixed order is what keeps
// the pair free of circular waits. No other code path may take them in
// any other order.
type Store struct {
	invMu   sync.Mutex
	priceMu sync.Mutex

	m      map[int]Product
	nextID int
}

// Purchase describes one completed BuyStock.
type Purchase struct {
	Name      string
	Quantity  int
	UnitCents int64
	Remaining int
}

// TotalCents is the amount paid for the purchase.
func (p Purchase) TotalCents() int64 {
	return int64(p.Quantity) * p.UnitCents
}

// PriceChange describes one completed UpdatePrice.
type PriceChange struct {
	Name     string
	OldCents int64
	NewCents int64
}

// NewStore builds a store seeded with the sample catalog (IDs 1-5).
func NewStore() *Store {
	s := &Store{m: map[int]Product{}, nextID: 1}

	seed := []struct {
		name  string
		qty   int
		cents int64
	}{
		{"Laptop", 10, 99999},
		{"Mouse", 50, 2550},
		{"Keyboard", 30, 7500},
		{"Monitor", 15, 29999},
		{"USB Cable", 100, 999},
	}
	for _, row := range seed {
		_, _ = s.AddProduct(row.name, row.qty, row.cents)
	}

	return s
}

// AddProduct assigns the next ID and appends the product. IDs are
// monotonic and never reused, even after removal.
func (s *Store) AddProduct(name string, qty int, priceCents int64) (Product, error) {
	if name == "" || qty < 0 || priceCents < 0 {
		return Product{}, ErrInvalid
	}

	s.invMu.Lock()
	defer s.invMu.Unlock()

	p := Product{ID: s.nextID, Name: name, Quantity: qty, PriceCents: priceCents}
	s.nextID++
	s.m[p.ID] = p
	return p, nil
}

// AddStock increments a product's quantity and returns the updated copy.
func (s *Store) AddStock(id, delta int) (Product, error) {
	if delta < 0 {
		return Product{}, ErrInvalid
	}

	s.invMu.Lock()
	defer s.invMu.Unlock()

	p, ok := s.m[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	p.Quantity += delta
	s.m[id] = p
	return p, nil
}

// BuyStock decrements a product's quantity if enough stock is
// available. The availability check and the decrement run inside one
// invMu critical section with no release in between, so two concurrent
// buyers can never both pass the check and oversell.
func (s *Store) BuyStock(id, qty int) (Purchase, error) {
	if qty <= 0 {
		return Purchase{}, ErrInvalid
	}

	s.invMu.Lock()
	defer s.invMu.Unlock()

	p, ok := s.m[id]
	if !ok {
		return Purchase{}, ErrNotFound
	}
	if p.Quantity < qty {
		return Purchase{}, &InsufficientStockError{Available: p.Quantity, Requested: qty}
	}

	p.Quantity -= qty
	s.m[id] = p
	return Purchase{
		Name:      p.Name,
		Quantity:  qty,
		UnitCents: p.PriceCents,
		Remaining: p.Quantity,
	}, nil
}

// UpdatePrice is the only operation that holds both locks. It locates
// the product under invMu, then takes priceMu for the field write, and
// releases in reverse order.
func (s *Store) UpdatePrice(id int, newPriceCents int64) (PriceChange, error) {
	if newPriceCents < 0 {
		return PriceChange{}, ErrInvalid
	}

	s.invMu.Lock()
	defer s.invMu.Unlock()

	p, ok := s.m[id]
	if !ok {
		return PriceChange{}, ErrNotFound
	}

	s.priceMu.Lock()
	old := p.PriceCents
	p.PriceCents = newPriceCents
	s.m[id] = p
	s.priceMu.Unlock()

	return PriceChange{Name: p.Name, OldCents: old, NewCents: newPriceCents}, nil
}

// RemoveProduct deletes the product and returns its name. The freed ID
// is never reassigned.
func (s *Store) RemoveProduct(id int) (string, error) {
	s.invMu.Lock()
	defer s.invMu.Unlock()

	p, ok := s.m[id]
	if !ok {
		return "", ErrNotFound
	}
	delete(s.m, id)
	return p.Name, nil
}

// Snapshot returns a defensive copy of every product, ascending by ID.
// IDs are assigned monotonically and never reused, so ID order equals
// insertion order.
func (s *Store) Snapshot() []Product {
	s.invMu.Lock()
	out := make([]Product, 0, len(s.m))
	for _, p := range s.m {
		out = append(out, p)
	}
	s.invMu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Get returns a copy of one product.
func (s *Store) Get(id int) (Product, bool) {
	s.invMu.Lock()
	defer s.invMu.Unlock()
	p, ok := s.m[id]
	return p, ok
}

// Len reports the number of products currently in the catalog.
func (s *Store) Len() int {
	s.invMu.Lock()
	defer s.invMu.Unlock()
	return len(s.m)
}

// ListAll renders the catalog the way the wire protocol presents it.
func (s *Store) ListAll() string {
	products := s.Snapshot()
	if len(products) == 0 {
		return "No products in inventory"
	}

	var b strings.Builder
	b.WriteString("=== INVENTORY LIST ===\n")
	for _, p := range products {
		b.WriteString(p.String())
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "Total Products: %d", len(products))
	return b.String()
}

// Ping reports readiness for the ops endpoint. The in-memory store is
// always ready once constructed.
func (s *Store) Ping(ctx context.Context) error { return nil }
