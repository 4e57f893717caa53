package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Report is an immutable aggregate built from one snapshot. It is
// produced by a dedicated goroutine, handed back to exactly one
// session, and never mutated after construction.
type Report struct {
	ID          string
	GeneratedBy string
	GeneratedAt time.Time
	TotalTypes  int
	TotalUnits  int
	TotalCents  int64
	Products    []Product
}

// BuildReport aggregates a snapshot. products must already be a
// defensive copy; the report keeps a reference to it.
func BuildReport(products []Product, generatedBy string) *Report {
	r := &Report{
		ID:          "r_" + uuid.NewString(),
		GeneratedBy: generatedBy,
		GeneratedAt: time.Now().UTC(),
		TotalTypes:  len(products),
		Products:    products,
	}
	for _, p := range products {
		r.TotalUnits += p.Quantity
		r.TotalCents += p.TotalValueCents()
	}
	return r
}

// Render produces the wire form of the report.
func (r *Report) Render() string {
	var b strings.Builder

	b.WriteString("\n=== DAILY INVENTORY REPORT ===\n")
	fmt.Fprintf(&b, "Report ID: %s\n", r.ID)
	fmt.Fprintf(&b, "Generated by: %s\n", r.GeneratedBy)
	fmt.Fprintf(&b, "Timestamp: %s\n\n", r.GeneratedAt.Format(time.RFC1123))

	fmt.Fprintf(&b, "Total Product Types: %d\n", r.TotalTypes)
	fmt.Fprintf(&b, "Total Units in Stock: %d\n", r.TotalUnits)
	fmt.Fprintf(&b, "Total Inventory Value: $%s\n", FormatCents(r.TotalCents))

	b.WriteString("\nProduct Breakdown:\n")
	for _, p := range r.Products {
		fmt.Fprintf(&b, "  - %s: %d units @ $%s = $%s\n",
			p.Name, p.Quantity, FormatCents(p.PriceCents), FormatCents(p.TotalValueCents()))
	}

	b.WriteString("\n=== END OF REPORT ===")
	return b.String()
}
