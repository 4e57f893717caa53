package server

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"StockLine/internal/inventory"
)

// sentinel terminates every command response on the wire.
const sentinel = "---"

const defaultLowStockThreshold = 20

// dispatch runs one command and returns the response body. quit is
// true only for EXIT; everything else keeps the session open,
// including store-level failures.
func (s *session) dispatch(line string) (resp string, quit bool) {
	if line == "" {
		return "ERROR: Empty command", false
	}

	parts := strings.Fields(line)
	verb := strings.ToUpper(parts[0])
	args := parts[1:]

	switch verb {
	case "HELP":
		return s.helpText(), false
	case "LIST":
		return s.store.ListAll(), false
	case "BUY_STOCK":
		return s.buyStock(args), false
	case "ANALYTICS":
		return "Total Inventory Value: $" + inventory.FormatCents(s.store.TotalValueCents()), false
	case "LOW_STOCK":
		return s.lowStock(args), false
	case "DAILY_REPORT":
		return s.dailyReport(), false
	case "ADD_PRODUCT":
		return s.addProduct(args), false
	case "ADD_STOCK":
		return s.addStock(args), false
	case "UPDATE_PRICE":
		return s.updatePrice(args), false
	case "REMOVE_PRODUCT":
		return s.removeProduct(args), false
	case "EXIT":
		s.writeLine(fmt.Sprintf("Goodbye %s!", s.username))
		return "Disconnecting...", true
	default:
		return "ERROR: Unknown command. Type HELP for available commands.", false
	}
}

func (s *session) buyStock(args []string) string {
	if len(args) < 2 {
		return "ERROR: Usage: BUY_STOCK <productId> <quantity>"
	}
	id, err1 := strconv.Atoi(args[0])
	qty, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil {
		return "ERROR: Invalid number format"
	}
	if qty <= 0 {
		return "ERROR: Quantity must be positive"
	}

	purchase, err := s.store.BuyStock(id, qty)
	if err != nil {
		return storeErrorLine(id, err)
	}
	return fmt.Sprintf("SUCCESS: Purchased %d units of %s. Total: $%s. Remaining stock: %d",
		purchase.Quantity, purchase.Name,
		inventory.FormatCents(purchase.TotalCents()), purchase.Remaining)
}

func (s *session) addProduct(args []string) string {
	if !s.admin {
		return "ERROR: Only admins can add new products"
	}
	if len(args) < 3 {
		return "ERROR: Usage: ADD_PRODUCT <name> <quantity> <price>"
	}
	qty, err := strconv.Atoi(args[1])
	if err != nil {
		return "ERROR: Invalid number format"
	}
	if qty < 0 {
		return "ERROR: Quantity must be positive"
	}
	cents, err := inventory.ParseAmount(args[2])
	if err != nil {
		return "ERROR: Invalid number format"
	}

	p, err := s.store.AddProduct(args[0], qty, cents)
	if err != nil {
		return "ERROR: " + err.Error()
	}
	return "SUCCESS: Product added - " + p.String()
}

func (s *session) addStock(args []string) string {
	if !s.admin {
		return "ERROR: Only admins can add stock"
	}
	if len(args) < 2 {
		return "ERROR: Usage: ADD_STOCK <productId> <quantity>"
	}
	id, err1 := strconv.Atoi(args[0])
	qty, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil {
		return "ERROR: Invalid number format"
	}
	if qty <= 0 {
		return "ERROR: Quantity must be positive"
	}

	p, err := s.store.AddStock(id, qty)
	if err != nil {
		return storeErrorLine(id, err)
	}
	return fmt.Sprintf("SUCCESS: Added %d units to %s. New quantity: %d", qty, p.Name, p.Quantity)
}

func (s *session) updatePrice(args []string) string {
	if !s.admin {
		return "ERROR: Only admins can update prices"
	}
	if len(args) < 2 {
		return "ERROR: Usage: UPDATE_PRICE <productId> <newPrice>"
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return "ERROR: Invalid number format"
	}
	cents, err := inventory.ParseAmount(args[1])
	if err != nil {
		return "ERROR: Invalid number format"
	}

	change, err := s.store.UpdatePrice(id, cents)
	if err != nil {
		return storeErrorLine(id, err)
	}
	return fmt.Sprintf("SUCCESS: Price updated for %s. Old: $%s, New: $%s",
		change.Name, inventory.FormatCents(change.OldCents), inventory.FormatCents(change.NewCents))
}

func (s *session) removeProduct(args []string) string {
	if !s.admin {
		return "ERROR: Only admins can remove products"
	}
	if len(args) < 1 {
		return "ERROR: Usage: REMOVE_PRODUCT <productId>"
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return "ERROR: Invalid number format"
	}

	name, err := s.store.RemoveProduct(id)
	if err != nil {
		return storeErrorLine(id, err)
	}
	return "SUCCESS: Product removed - " + name
}

func (s *session) lowStock(args []string) string {
	threshold := defaultLowStockThreshold
	if len(args) > 0 {
		t, err := strconv.Atoi(args[0])
		if err != nil {
			return "ERROR: Invalid number format"
		}
		threshold = t
	}

	low := s.store.LowStock(threshold)
	if len(low) == 0 {
		return fmt.Sprintf("No low-stock items found (threshold: %d)", threshold)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Low Stock Items (< %d):\n", threshold)
	for _, p := range low {
		b.WriteString(p.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// dailyReport spawns the report builder and blocks until it finishes,
// so the client never sees a partially built report and the session
// does not advance past this command while the computation runs.
func (s *session) dailyReport() string {
	s.writeLine("Generating daily report... Please wait.")

	done := make(chan *inventory.Report, 1)
	go func() {
		done <- inventory.BuildReport(s.store.Snapshot(), s.username)
	}()
	rep := <-done

	return rep.Render()
}

func (s *session) helpText() string {
	var b strings.Builder

	b.WriteString("\n=== AVAILABLE COMMANDS ===\n")
	b.WriteString("LIST - List all products\n")
	b.WriteString("BUY_STOCK <productId> <quantity> - Purchase stock\n")
	b.WriteString("ANALYTICS - Show total inventory value (uses parallel processing)\n")
	b.WriteString("LOW_STOCK [threshold] - Find low stock items (default threshold: 20)\n")
	b.WriteString("DAILY_REPORT - Generate comprehensive daily report\n")

	if s.admin {
		b.WriteString("\n=== ADMIN COMMANDS ===\n")
		b.WriteString("ADD_PRODUCT <name> <quantity> <price> - Add new product\n")
		b.WriteString("ADD_STOCK <productId> <quantity> - Add stock to existing product\n")
		b.WriteString("UPDATE_PRICE <productId> <newPrice> - Update product price\n")
		b.WriteString("REMOVE_PRODUCT <productId> - Remove a product\n")
	}

	b.WriteString("\nEXIT - Disconnect from server")
	return b.String()
}

func storeErrorLine(id int, err error) string {
	var insufficient *inventory.InsufficientStockError
	switch {
	case errors.Is(err, inventory.ErrNotFound):
		return fmt.Sprintf("ERROR: Product ID %d not found", id)
	case errors.As(err, &insufficient):
		return fmt.Sprintf("ERROR: Insufficient stock. Available: %d, Requested: %d",
			insufficient.Available, insufficient.Requested)
	default:
		return "ERROR: " + err.Error()
	}
}
