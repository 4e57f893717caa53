package inventory

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Product is one catalog entry. Prices are integer cents so that
// aggregate arithmetic stays exact. The store owns every Product;
// callers only ever see copies.
type Product struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	PriceCents int64  `json:"price_cents"`
}

// TotalValueCents is quantity times unit price.
func (p Product) TotalValueCents() int64 {
	return int64(p.Quantity) * p.PriceCents
}

func (p Product) String() string {
	return fmt.Sprintf("Product[ID=%d, Name=%s, Qty=%d, Price=%s]",
		p.ID, p.Name, p.Quantity, FormatCents(p.PriceCents))
}

var ErrBadAmount = errors.New("invalid amount")

// ParseAmount converts a decimal string such as "999.99" into cents
// without going through floating point. At most two fractional digits
// are accepted; signs are rejected, and amounts whose cent value would
// not fit in an int64 are rejected rather than wrapped.
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "." || s[0] == '-' || s[0] == '+' {
		return 0, ErrBadAmount
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}

	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || w < 0 || w > math.MaxInt64/100-1 {
		return 0, ErrBadAmount
	}

	switch len(frac) {
	case 0:
		frac = "00"
	case 1:
		frac += "0"
	case 2:
	default:
		return 0, ErrBadAmount
	}

	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil || f < 0 {
		return 0, ErrBadAmount
	}

	return w*100 + f, nil
}

// FormatCents renders cents as a plain decimal: 99999 -> "999.99".
func FormatCents(c int64) string {
	return fmt.Sprintf("%d.%02d", c/100, c%100)
}
