package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type WorkOrder struct {
	ID                    string
	ManufacturingOrderID  string
	Sequence              int
	Name                  string
	Description           string
	DurationMinutes       int
	ActualDurationMinutes *int
	AssignedTo            *string
	WorkCenterID          *string
	// WorkCenterName is filled on read.
	WorkCenterName        string
	EstimatedCost         *decimal.Decimal
	ActualCost            *decimal.Decimal
	Status                WorkOrderStatus
	Notes                 string
	StartedAt             *time.Time
	CompletedAt           *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (w *WorkOrder) invalid(to WorkOrderStatus) error {
	return &InvalidTransitionError{
		Entity: "work order",
		ID:     w.ID,
		From:   string(w.Status),
		To:     string(to),
	}
}

// Start moves a Pending or Paused work order to Started. The first start
// stamps StartedAt; an unassigned order is assigned to operator.
func (w *WorkOrder) Start(now time.Time, operator string) error {
	if w.Status != WorkOrderPending && w.Status != WorkOrderPaused {
		return w.invalid(WorkOrderStarted)
	}
	w.Status = WorkOrderStarted
	if w.StartedAt == nil {
		w.StartedAt = &now
	}
	if w.AssignedTo == nil && operator != "" {
		w.AssignedTo = &operator
	}
	w.UpdatedAt = now
	return nil
}

func (w *WorkOrder) Pause(now time.Time) error {
	if w.Status != WorkOrderStarted {
		return w.invalid(WorkOrderPaused)
	}
	w.Status = WorkOrderPaused
	w.UpdatedAt = now
	return nil
}

// Complete finishes a Started or Paused work order. When actualMinutes is
// nil the elapsed wall time since StartedAt is recorded.
func (w *WorkOrder) Complete(now time.Time, notes string, actualMinutes *int) error {
	if w.Status != WorkOrderStarted && w.Status != WorkOrderPaused {
		return w.invalid(WorkOrderCompleted)
	}
	w.finish(now, notes, actualMinutes)
	return nil
}

// ForceComplete completes the work order from any non-terminal status.
// Used when an order is completed as a whole.
func (w *WorkOrder) ForceComplete(now time.Time) error {
	if w.Status.IsTerminal() {
		return w.invalid(WorkOrderCompleted)
	}
	if w.StartedAt == nil {
		w.StartedAt = &now
	}
	w.finish(now, "", nil)
	return nil
}

func (w *WorkOrder) finish(now time.Time, notes string, actualMinutes *int) {
	w.Status = WorkOrderCompleted
	w.CompletedAt = &now
	if notes != "" {
		w.Notes = notes
	}
	if actualMinutes != nil {
		m := *actualMinutes
		w.ActualDurationMinutes = &m
	} else {
		m := ElapsedMinutes(w.StartedAt, now)
		w.ActualDurationMinutes = &m
	}
	w.UpdatedAt = now
}

// PriceActual records the actual cost of a completed work order at wc's
// current rate. Orders without a work center or already priced are left alone.
func (w *WorkOrder) PriceActual(wc *WorkCenter) {
	if w.Status != WorkOrderCompleted || w.ActualCost != nil || wc == nil {
		return
	}
	minutes := 0
	if w.ActualDurationMinutes != nil {
		minutes = *w.ActualDurationMinutes
	}
	cost := wc.CostFor(minutes)
	w.ActualCost = &cost
}

// Cancel terminates a non-terminal work order because its order was canceled.
func (w *WorkOrder) Cancel(now time.Time) error {
	if w.Status.IsTerminal() {
		return w.invalid(WorkOrderCanceled)
	}
	w.Status = WorkOrderCanceled
	w.UpdatedAt = now
	return nil
}

func (w *WorkOrder) Assign(now time.Time, operator string) error {
	if w.Status.IsTerminal() {
		return w.invalid(w.Status)
	}
	if operator == "" {
		w.AssignedTo = nil
	} else {
		w.AssignedTo = &operator
	}
	w.UpdatedAt = now
	return nil
}

// ElapsedMinutes returns whole minutes between since and now, truncated, so
// work finished inside the first minute records 0. It is 0 if since is nil.
func ElapsedMinutes(since *time.Time, now time.Time) int {
	if since == nil {
		return 0
	}
	d := now.Sub(*since)
	if d < 0 {
		return 0
	}
	return int(d / time.Minute)
}
