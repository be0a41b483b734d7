package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WorkCenter is a machine, cell or station that operations run on. Its
// hourly rate prices the work orders routed through it.
type WorkCenter struct {
	ID          string
	Name        string
	Description string
	CostPerHour decimal.Decimal
	// Capacity is how many work orders the center can run at once.
	Capacity   int
	Efficiency decimal.Decimal
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Validate checks the numeric settings.
func (wc *WorkCenter) Validate() error {
	if wc.CostPerHour.IsNegative() {
		return &ValidationError{Field: "cost_per_hour", Reason: "must not be negative"}
	}
	if wc.Capacity <= 0 {
		return &ValidationError{Field: "capacity", Reason: "must be greater than 0"}
	}
	if !wc.Efficiency.IsPositive() {
		return &ValidationError{Field: "efficiency", Reason: "must be greater than 0"}
	}
	return nil
}

var minutesPerHour = decimal.NewFromInt(60)

// CostFor prices minutes of work at the hourly rate, rounded to cents.
func (wc *WorkCenter) CostFor(minutes int) decimal.Decimal {
	return wc.CostPerHour.Mul(decimal.NewFromInt(int64(minutes))).Div(minutesPerHour).Round(2)
}

// WorkCenterLoad aggregates the work orders routed through one center.
type WorkCenterLoad struct {
	WorkCenterID   string
	WorkCenterName string
	OpenWorkOrders int
	Completed      int
	PlannedMinutes int
	ActualMinutes  int
	EstimatedCost  decimal.Decimal
	ActualCost     decimal.Decimal
}
