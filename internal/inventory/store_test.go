package inventory

import (
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"
)

func TestSeedCatalog(t *testing.T) {
	s := NewStore()

	if got := s.Len(); got != 5 {
		t.Fatalf("Len() = %d, want 5", got)
	}

	want := []Product{
		{ID: 1, Name: "Laptop", Quantity: 10, PriceCents: 99999},
		{ID: 2, Name: "Mouse", Quantity: 50, PriceCents: 2550},
		{ID: 3, Name: "Keyboard", Quantity: 30, PriceCents: 7500},
		{ID: 4, Name: "Monitor", Quantity: 15, PriceCents: 29999},
		{ID: 5, Name: "USB Cable", Quantity: 100, PriceCents: 999},
	}
	got := s.Snapshot()
	if len(got) != len(want) {
		t.Fatalf("Snapshot() returned %d products, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("product %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestBuyStock(t *testing.T) {
	s := NewStore()

	p, err := s.BuyStock(1, 6)
	if err != nil {
		t.Fatalf("BuyStock: %v", err)
	}
	if p.Name != "Laptop" || p.Remaining != 4 || p.UnitCents != 99999 {
		t.Fatalf("unexpected purchase: %+v", p)
	}
	if p.TotalCents() != 6*99999 {
		t.Fatalf("TotalCents() = %d, want %d", p.TotalCents(), 6*99999)
	}
}

func TestBuyStockInsufficientLeavesStateUntouched(t *testing.T) {
	s := NewStore()

	_, err := s.BuyStock(1, 11)
	var insufficient *InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("BuyStock error = %v, want InsufficientStockError", err)
	}
	if insufficient.Available != 10 || insufficient.Requested != 11 {
		t.Fatalf("error carries %+v, want available 10 requested 11", insufficient)
	}

	p, ok := s.Get(1)
	if !ok || p.Quantity != 10 {
		t.Fatalf("quantity after failed buy = %d, want 10", p.Quantity)
	}
}

func TestBuyStockNotFound(t *testing.T) {
	s := NewStore()
	if _, err := s.BuyStock(99, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("BuyStock(99) error = %v, want ErrNotFound", err)
	}
}

func TestConcurrentBuyersNeverOversell(t *testing.T) {
	s := NewStore()

	// Seed product 1 has quantity 10. Twenty buyers of one unit each:
	// exactly ten must succeed and the quantity must end at zero.
	const buyers = 20

	var wg sync.WaitGroup
	results := make(chan error, buyers)
	start := make(chan struct{})

	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := s.BuyStock(1, 1)
			results <- err
		}()
	}
	close(start)
	wg.Wait()
	close(results)

	succeeded, failed := 0, 0
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		default:
			var insufficient *InsufficientStockError
			if !errors.As(err, &insufficient) {
				t.Fatalf("unexpected error: %v", err)
			}
			failed++
		}
	}

	if succeeded != 10 || failed != 10 {
		t.Fatalf("succeeded=%d failed=%d, want 10/10", succeeded, failed)
	}
	p, _ := s.Get(1)
	if p.Quantity != 0 {
		t.Fatalf("final quantity = %d, want 0", p.Quantity)
	}
}

func TestConcurrentAddProductUniqueIDs(t *testing.T) {
	s := NewStore()

	const adders = 100
	ids := make(chan int, adders)

	var wg sync.WaitGroup
	for i := 0; i < adders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := s.AddProduct("Widget", 1, 100)
			if err != nil {
				t.Errorf("AddProduct: %v", err)
				return
			}
			ids <- p.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int]bool)
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
	}
	if len(seen) != adders {
		t.Fatalf("got %d unique ids, want %d", len(seen), adders)
	}
}

func TestRemovedIDsAreNeverReused(t *testing.T) {
	s := NewStore()

	name, err := s.RemoveProduct(5)
	if err != nil || name != "USB Cable" {
		t.Fatalf("RemoveProduct(5) = %q, %v", name, err)
	}

	p, err := s.AddProduct("Webcam", 5, 4999)
	if err != nil {
		t.Fatalf("AddProduct: %v", err)
	}
	if p.ID != 6 {
		t.Fatalf("new product id = %d, want 6", p.ID)
	}

	if _, err := s.RemoveProduct(5); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second RemoveProduct(5) error = %v, want ErrNotFound", err)
	}
}

func TestUpdatePrice(t *testing.T) {
	s := NewStore()

	change, err := s.UpdatePrice(2, 2999)
	if err != nil {
		t.Fatalf("UpdatePrice: %v", err)
	}
	if change.Name != "Mouse" || change.OldCents != 2550 || change.NewCents != 2999 {
		t.Fatalf("unexpected change: %+v", change)
	}

	p, _ := s.Get(2)
	if p.PriceCents != 2999 {
		t.Fatalf("price after update = %d, want 2999", p.PriceCents)
	}

	if _, err := s.UpdatePrice(42, 100); !errors.Is(err, ErrNotFound) {
		t.Fatalf("UpdatePrice(42) error = %v, want ErrNotFound", err)
	}
}

func TestAddStock(t *testing.T) {
	s := NewStore()

	p, err := s.AddStock(2, 25)
	if err != nil {
		t.Fatalf("AddStock: %v", err)
	}
	if p.Quantity != 75 {
		t.Fatalf("quantity = %d, want 75", p.Quantity)
	}

	if _, err := s.AddStock(42, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("AddStock(42) error = %v, want ErrNotFound", err)
	}
}

// Mixed buy/restock/price-update load across all products must always
// terminate under the fixed lock-acquisition order.
func TestMixedOperationsNoDeadlock(t *testing.T) {
	s := NewStore()

	const (
		workers    = 16
		iterations = 2000
	)

	done := make(chan struct{})
	go func() {
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func(seed int64) {
				defer wg.Done()
				rng := rand.New(rand.NewSource(seed))
				for i := 0; i < iterations; i++ {
					id := 1 + rng.Intn(5)
					switch rng.Intn(3) {
					case 0:
						_, _ = s.BuyStock(id, 1)
					case 1:
						_, _ = s.AddStock(id, 1)
					default:
						_, _ = s.UpdatePrice(id, int64(100+rng.Intn(10000)))
					}
				}
			}(int64(w))
		}
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(30 * time.Second):
		t.Fatal("mixed operations did not terminate: possible deadlock")
	}

	for _, p := range s.Snapshot() {
		if p.Quantity < 0 {
			t.Fatalf("product %d has negative quantity %d", p.ID, p.Quantity)
		}
	}
}

func TestListAll(t *testing.T) {
	s := NewStore()

	listing := s.ListAll()
	if want := "=== INVENTORY LIST ==="; listing[:len(want)] != want {
		t.Fatalf("listing header missing:\n%s", listing)
	}
	if want := "Total Products: 5"; listing[len(listing)-len(want):] != want {
		t.Fatalf("listing footer missing:\n%s", listing)
	}

	empty := &Store{m: map[int]Product{}, nextID: 1}
	if got := empty.ListAll(); got != "No products in inventory" {
		t.Fatalf("empty listing = %q", got)
	}
}

func TestAddProductRejectsBadInput(t *testing.T) {
	s := NewStore()

	if _, err := s.AddProduct("", 1, 100); !errors.Is(err, ErrInvalid) {
		t.Fatalf("empty name error = %v, want ErrInvalid", err)
	}
	if _, err := s.AddProduct("X", -1, 100); !errors.Is(err, ErrInvalid) {
		t.Fatalf("negative qty error = %v, want ErrInvalid", err)
	}
	if _, err := s.AddProduct("X", 1, -100); !errors.Is(err, ErrInvalid) {
		t.Fatalf("negative price error = %v, want ErrInvalid", err)
	}
}
