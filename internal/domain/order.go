package domain

import (
	"fmt"
	"time"
)

// DefaultOperationMinutes is the estimate of the generated routing step used
// when an order is created without operations.
const DefaultOperationMinutes = 60

type ManufacturingOrder struct {
	ID          string
	Reference   string
	ProductName string
	Quantity    int
	// BOMID points at one immutable BOM version.
	BOMID       string
	BOMName     string
	BOMVersion  int
	Deadline    time.Time
	Priority    Priority
	Status      OrderStatus
	Progress    int
	Notes       string
	Version     int
	StartedAt   *time.Time
	CompletedAt *time.Time
	CanceledAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	WorkOrders []*WorkOrder
}

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPlanned:    {OrderInProgress, OrderCanceled},
	OrderInProgress: {OrderDone, OrderCanceled},
}

func (o *ManufacturingOrder) CanTransitionTo(to OrderStatus) bool {
	for _, s := range orderTransitions[o.Status] {
		if s == to {
			return true
		}
	}
	return false
}

// TransitionTo applies a status change from the transition table and stamps
// the matching timestamp.
func (o *ManufacturingOrder) TransitionTo(to OrderStatus, now time.Time) error {
	if o.Status == to {
		return nil
	}
	if !o.CanTransitionTo(to) {
		return &InvalidTransitionError{
			Entity: "manufacturing order",
			ID:     o.ID,
			From:   string(o.Status),
			To:     string(to),
		}
	}
	o.Status = to
	switch to {
	case OrderInProgress:
		if o.StartedAt == nil {
			o.StartedAt = &now
		}
	case OrderDone:
		o.CompletedAt = &now
	case OrderCanceled:
		o.CanceledAt = &now
	}
	o.UpdatedAt = now
	return nil
}

// WorkOrder returns the owned work order with the given ID.
func (o *ManufacturingOrder) WorkOrder(id string) (*WorkOrder, bool) {
	for _, w := range o.WorkOrders {
		if w.ID == id {
			return w, true
		}
	}
	return nil, false
}

// DisplayID prefers the human-readable reference.
func (o *ManufacturingOrder) DisplayID() string {
	if o.Reference != "" {
		return o.Reference
	}
	if len(o.ID) >= 8 {
		return o.ID[:8]
	}
	return o.ID
}

// FormatOrderReference renders the sequential order reference.
func FormatOrderReference(seq int) string {
	return fmt.Sprintf("MO-%04d", seq)
}

// Rollup is the order state derived from its work orders.
type Rollup struct {
	Total        int
	Completed    int
	Progress     int
	Status       OrderStatus
	AllCompleted bool
}

// Recompute derives progress and status for a non-terminal order. Status
// moves to InProgress once any work order has left Pending and never falls
// back to Planned. Done is reported as AllCompleted; the caller decides
// whether completion may proceed.
func Recompute(current OrderStatus, workOrders []*WorkOrder) Rollup {
	r := Rollup{Total: len(workOrders), Status: current}
	touched := false
	for _, w := range workOrders {
		switch w.Status {
		case WorkOrderCompleted:
			r.Completed++
			touched = true
		case WorkOrderStarted, WorkOrderPaused:
			touched = true
		}
	}
	r.Progress = ProgressPercent(r.Completed, r.Total)
	r.AllCompleted = r.Total > 0 && r.Completed == r.Total
	if touched && current == OrderPlanned {
		r.Status = OrderInProgress
	}
	if r.AllCompleted {
		r.Status = OrderDone
	}
	return r
}

// ProgressPercent is 100*completed/total rounded half up.
func ProgressPercent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*completed + total) / (2 * total)
}
