package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/shopfloor/internal/domain"
)

// FormatComponents renders the stock list, flagging items under their
// reorder level.
func FormatComponents(components []*domain.Component) string {
	if len(components) == 0 {
		return Dim("No components.") + "\n"
	}
	headers := []string{"ID", "NAME", "ON HAND", "REORDER", "UNIT COST", "VALUE", "SUPPLIER"}
	rows := make([][]string, 0, len(components))
	for _, c := range components {
		onHand := strconv.Itoa(c.QuantityOnHand)
		if c.IsLowStock() {
			onHand = StyleRed.Render(onHand + " ▼")
		}
		supplier := c.Supplier
		if supplier == "" {
			supplier = Dim("--")
		}
		rows = append(rows, []string{
			TruncID(c.ID), c.Name, onHand, strconv.Itoa(c.ReorderLevel),
			Money(c.UnitCost), Money(c.StockValue()), supplier,
		})
	}
	return RenderTable(headers, rows, 2, 3, 4, 5)
}

func FormatComponent(c *domain.Component) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", Bold(c.Name), TruncID(c.ID))
	fmt.Fprintf(&b, "  On hand:    %d\n", c.QuantityOnHand)
	fmt.Fprintf(&b, "  Reorder at: %d\n", c.ReorderLevel)
	fmt.Fprintf(&b, "  Unit cost:  %s\n", Money(c.UnitCost))
	fmt.Fprintf(&b, "  Value:      %s\n", Money(c.StockValue()))
	if c.Supplier != "" {
		fmt.Fprintf(&b, "  Supplier:   %s\n", c.Supplier)
	}
	if c.IsLowStock() {
		b.WriteString("  " + StyleRed.Render("Low stock") + "\n")
	}
	return b.String()
}

// FormatMovements renders ledger entries newest first.
func FormatMovements(movements []*domain.StockMovement) string {
	if len(movements) == 0 {
		return Dim("No stock movements.") + "\n"
	}
	headers := []string{"WHEN", "COMPONENT", "TYPE", "QTY", "BALANCE", "REFERENCE", "BY"}
	rows := make([][]string, 0, len(movements))
	for _, m := range movements {
		by := m.CreatedBy
		if by == "" {
			by = Dim("--")
		}
		rows = append(rows, []string{
			m.CreatedAt.Local().Format("2006-01-02 15:04"),
			m.ComponentName,
			movementType(m.Type),
			strconv.Itoa(m.Quantity),
			strconv.Itoa(m.BalanceAfter),
			m.Reference,
			by,
		})
	}
	return RenderTable(headers, rows, 3, 4)
}

func movementType(t domain.MovementType) string {
	switch t {
	case domain.MovementIn:
		return StyleGreen.Render(string(t))
	case domain.MovementOut:
		return StyleRed.Render(string(t))
	}
	return StyleYellow.Render(string(t))
}

// FormatShortages lists components that cannot cover a requirement.
func FormatShortages(title string, shortages []*domain.InsufficientStockError) string {
	if len(shortages) == 0 {
		return ""
	}
	headers := []string{"COMPONENT", "REQUIRED", "AVAILABLE", "SHORT"}
	rows := make([][]string, 0, len(shortages))
	for _, s := range shortages {
		name := s.ComponentName
		if name == "" {
			name = s.ComponentID
		}
		rows = append(rows, []string{
			name, strconv.Itoa(s.Required), strconv.Itoa(s.Available),
			StyleRed.Render(strconv.Itoa(s.Shortfall())),
		})
	}
	return StyleYellow.Render(title) + "\n" + RenderTable(headers, rows, 1, 2, 3)
}
