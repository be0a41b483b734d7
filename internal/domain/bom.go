package domain

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// BillOfMaterials is one immutable version of a product recipe. Revisions
// are new rows sharing the name with a higher version.
type BillOfMaterials struct {
	ID          string
	Name        string
	Description string
	Version     int
	Lines       []BOMLine
	ArchivedAt  *time.Time
	CreatedAt   time.Time
}

type BOMLine struct {
	ComponentID      string
	ComponentName    string
	QuantityRequired int
	// UnitCost is the component's current cost, filled on read.
	UnitCost decimal.Decimal
	Notes    string
	Position int
}

func (l BOMLine) LineCost() decimal.Decimal {
	return l.UnitCost.Mul(decimal.NewFromInt(int64(l.QuantityRequired)))
}

// TotalCost sums line costs at current component prices.
func (b *BillOfMaterials) TotalCost() decimal.Decimal {
	total := decimal.Zero
	for _, l := range b.Lines {
		total = total.Add(l.LineCost())
	}
	return total
}

func (b *BillOfMaterials) IsArchived() bool {
	return b.ArchivedAt != nil
}

// Requirement is the total quantity of one component consumed by an order.
type Requirement struct {
	ComponentID   string
	ComponentName string
	Quantity      int
}

// Requirements scales every line by the order quantity. The result is sorted
// by component ID, which is the order debits are applied in. A product that
// does not fit in an int is a ValidationError on the order quantity.
func (b *BillOfMaterials) Requirements(orderQty int) ([]Requirement, error) {
	if orderQty <= 0 {
		return nil, &ValidationError{Field: "quantity", Reason: "must be positive"}
	}
	reqs := make([]Requirement, 0, len(b.Lines))
	for _, l := range b.Lines {
		qty, ok := mulQuantity(l.QuantityRequired, orderQty)
		if !ok {
			return nil, &ValidationError{
				Field:  "quantity",
				Reason: fmt.Sprintf("%d x %d of %s exceeds the largest stock quantity", orderQty, l.QuantityRequired, l.label()),
			}
		}
		reqs = append(reqs, Requirement{
			ComponentID:   l.ComponentID,
			ComponentName: l.ComponentName,
			Quantity:      qty,
		})
	}
	sort.Slice(reqs, func(i, j int) bool {
		return reqs[i].ComponentID < reqs[j].ComponentID
	})
	return reqs, nil
}

// mulQuantity multiplies two positive quantities, reporting false on
// overflow.
func mulQuantity(a, b int) (int, bool) {
	if a <= 0 || b <= 0 || a > math.MaxInt/b {
		return 0, false
	}
	return a * b, true
}

func (l BOMLine) label() string {
	if l.ComponentName != "" {
		return l.ComponentName
	}
	return l.ComponentID
}
