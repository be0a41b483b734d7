package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultReorderLevel applies when a component is created without one.
const DefaultReorderLevel = 10

type Component struct {
	ID             string
	Name           string
	QuantityOnHand int
	UnitCost       decimal.Decimal
	Supplier       string
	ReorderLevel   int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsLowStock reports whether on-hand stock has fallen under the reorder level.
func (c *Component) IsLowStock() bool {
	return c.QuantityOnHand < c.ReorderLevel
}

// StockValue is the on-hand quantity valued at the current unit cost.
func (c *Component) StockValue() decimal.Decimal {
	return c.UnitCost.Mul(decimal.NewFromInt(int64(c.QuantityOnHand)))
}

// ValidateUnitCost rejects negative costs.
func ValidateUnitCost(cost decimal.Decimal) error {
	if cost.IsNegative() {
		return &ValidationError{Field: "unit_cost", Reason: "must not be negative"}
	}
	return nil
}

type StockMovement struct {
	ID            string
	ComponentID   string
	ComponentName string
	Type          MovementType
	Quantity      int
	BalanceAfter  int
	Reference     string
	CreatedBy     string
	CreatedAt     time.Time
}
