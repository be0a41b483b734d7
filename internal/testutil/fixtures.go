package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/shopfloor/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var testRefCounter atomic.Int64

// Component options
type ComponentOption func(*domain.Component)

func WithQuantity(q int) ComponentOption {
	return func(c *domain.Component) {
		c.QuantityOnHand = q
	}
}

func WithUnitCost(cost string) ComponentOption {
	return func(c *domain.Component) {
		c.UnitCost = decimal.RequireFromString(cost)
	}
}

func WithReorderLevel(l int) ComponentOption {
	return func(c *domain.Component) {
		c.ReorderLevel = l
	}
}

func WithSupplier(s string) ComponentOption {
	return func(c *domain.Component) {
		c.Supplier = s
	}
}

func NewTestComponent(name string, opts ...ComponentOption) *domain.Component {
	now := time.Now().UTC()
	c := &domain.Component{
		ID:             uuid.New().String(),
		Name:           name,
		QuantityOnHand: 100,
		UnitCost:       decimal.NewFromInt(1),
		ReorderLevel:   domain.DefaultReorderLevel,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BOM options
type BOMOption func(*domain.BillOfMaterials)

func WithLine(componentID string, qty int) BOMOption {
	return func(b *domain.BillOfMaterials) {
		b.Lines = append(b.Lines, domain.BOMLine{
			ComponentID:      componentID,
			QuantityRequired: qty,
			Position:         len(b.Lines),
		})
	}
}

func WithBOMVersion(v int) BOMOption {
	return func(b *domain.BillOfMaterials) {
		b.Version = v
	}
}

func NewTestBOM(name string, opts ...BOMOption) *domain.BillOfMaterials {
	b := &domain.BillOfMaterials{
		ID:        uuid.New().String(),
		Name:      name,
		Version:   1,
		CreatedAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Order options
type OrderOption func(*domain.ManufacturingOrder)

func WithOrderQuantity(q int) OrderOption {
	return func(o *domain.ManufacturingOrder) {
		o.Quantity = q
	}
}

func WithOrderStatus(s domain.OrderStatus) OrderOption {
	return func(o *domain.ManufacturingOrder) {
		o.Status = s
	}
}

func WithPriority(p domain.Priority) OrderOption {
	return func(o *domain.ManufacturingOrder) {
		o.Priority = p
	}
}

func WithDeadline(d time.Time) OrderOption {
	return func(o *domain.ManufacturingOrder) {
		o.Deadline = d
	}
}

func NewTestOrder(bomID, product string, opts ...OrderOption) *domain.ManufacturingOrder {
	now := time.Now().UTC()
	o := &domain.ManufacturingOrder{
		ID:          uuid.New().String(),
		Reference:   fmt.Sprintf("MO-T%04d", testRefCounter.Add(1)),
		ProductName: product,
		Quantity:    1,
		BOMID:       bomID,
		Deadline:    now.AddDate(0, 0, 7),
		Priority:    domain.PriorityMedium,
		Status:      domain.OrderPlanned,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WorkOrder options
type WorkOrderOption func(*domain.WorkOrder)

func WithWorkOrderStatus(s domain.WorkOrderStatus) WorkOrderOption {
	return func(w *domain.WorkOrder) {
		w.Status = s
	}
}

func WithDuration(m int) WorkOrderOption {
	return func(w *domain.WorkOrder) {
		w.DurationMinutes = m
	}
}

func WithAssignee(op string) WorkOrderOption {
	return func(w *domain.WorkOrder) {
		w.AssignedTo = &op
	}
}

func WithWorkCenter(id string) WorkOrderOption {
	return func(w *domain.WorkOrder) {
		w.WorkCenterID = &id
	}
}

func NewTestWorkOrder(orderID string, seq int, name string, opts ...WorkOrderOption) *domain.WorkOrder {
	now := time.Now().UTC()
	w := &domain.WorkOrder{
		ID:                   uuid.New().String(),
		ManufacturingOrderID: orderID,
		Sequence:             seq,
		Name:                 name,
		DurationMinutes:      30,
		Status:               domain.WorkOrderPending,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WorkCenter options
type WorkCenterOption func(*domain.WorkCenter)

func WithRate(perHour string) WorkCenterOption {
	return func(wc *domain.WorkCenter) {
		wc.CostPerHour = decimal.RequireFromString(perHour)
	}
}

func WithCapacity(n int) WorkCenterOption {
	return func(wc *domain.WorkCenter) {
		wc.Capacity = n
	}
}

func Inactive() WorkCenterOption {
	return func(wc *domain.WorkCenter) {
		wc.Active = false
	}
}

func NewTestWorkCenter(name string, opts ...WorkCenterOption) *domain.WorkCenter {
	now := time.Now().UTC()
	wc := &domain.WorkCenter{
		ID:          uuid.New().String(),
		Name:        name,
		CostPerHour: decimal.NewFromInt(60),
		Capacity:    1,
		Efficiency:  decimal.NewFromInt(1),
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, opt := range opts {
		opt(wc)
	}
	return wc
}
