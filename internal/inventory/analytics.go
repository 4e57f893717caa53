package inventory

import (
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// TotalValueCents sums quantity times unit price across the whole
// catalog. The snapshot is taken under invMu; the reduction runs over
// the immutable copy, chunked across CPUs, so the degree of
// parallelism affects latency only, never the result.
func (s *Store) TotalValueCents() int64 {
	return parallelSum(s.Snapshot())
}

// LowStock returns every product with quantity strictly below
// threshold, in ID order. Each chunk is filtered concurrently into its
// own slot so the concatenation preserves snapshot order.
func (s *Store) LowStock(threshold int) []Product {
	products := s.Snapshot()
	if len(products) == 0 {
		return nil
	}

	chunks := splitChunks(products, runtime.NumCPU())
	filtered := make([][]Product, len(chunks))

	var g errgroup.Group
	for i, chunk := range chunks {
		g.Go(func() error {
			var keep []Product
			for _, p := range chunk {
				if p.Quantity < threshold {
					keep = append(keep, p)
				}
			}
			filtered[i] = keep
			return nil
		})
	}
	_ = g.Wait()

	out := make([]Product, 0, len(products))
	for _, part := range filtered {
		out = append(out, part...)
	}
	return out
}

func parallelSum(products []Product) int64 {
	if len(products) == 0 {
		return 0
	}

	var total atomic.Int64
	var g errgroup.Group
	for _, chunk := range splitChunks(products, runtime.NumCPU()) {
		g.Go(func() error {
			var sum int64
			for _, p := range chunk {
				sum += p.TotalValueCents()
			}
			total.Add(sum)
			return nil
		})
	}
	_ = g.Wait()

	return total.Load()
}

func splitChunks(products []Product, n int) [][]Product {
	if n > len(products) {
		n = len(products)
	}
	size := (len(products) + n - 1) / n

	chunks := make([][]Product, 0, n)
	for start := 0; start < len(products); start += size {
		end := start + size
		if end > len(products) {
			end = len(products)
		}
		chunks = append(chunks, products[start:end])
	}
	return chunks
}
