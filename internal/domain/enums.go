package domain

import "strings"

type OrderStatus string

const (
	OrderPlanned    OrderStatus = "Planned"
	OrderInProgress OrderStatus = "InProgress"
	OrderDone       OrderStatus = "Done"
	OrderCanceled   OrderStatus = "Canceled"
)

// IsTerminal reports whether no further transitions are allowed.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderDone || s == OrderCanceled
}

// ValidOrderStatuses is the closed set accepted at the boundary.
var ValidOrderStatuses = []OrderStatus{OrderPlanned, OrderInProgress, OrderDone, OrderCanceled}

// ParseOrderStatus validates a client-supplied status string. "In Progress"
// is accepted as an alias of InProgress.
func ParseOrderStatus(s string) (OrderStatus, error) {
	if s == "In Progress" {
		return OrderInProgress, nil
	}
	for _, v := range ValidOrderStatuses {
		if string(v) == s {
			return v, nil
		}
	}
	return "", &ValidationError{Field: "status", Reason: "unknown order status " + quote(s)}
}

type WorkOrderStatus string

const (
	WorkOrderPending   WorkOrderStatus = "Pending"
	WorkOrderStarted   WorkOrderStatus = "Started"
	WorkOrderPaused    WorkOrderStatus = "Paused"
	WorkOrderCompleted WorkOrderStatus = "Completed"
	// WorkOrderCanceled is only ever set by canceling the parent order.
	WorkOrderCanceled WorkOrderStatus = "Canceled"
)

func (s WorkOrderStatus) IsTerminal() bool {
	return s == WorkOrderCompleted || s == WorkOrderCanceled
}

// ParseWorkOrderStatus accepts only the operator-visible statuses.
func ParseWorkOrderStatus(s string) (WorkOrderStatus, error) {
	switch WorkOrderStatus(s) {
	case WorkOrderPending, WorkOrderStarted, WorkOrderPaused, WorkOrderCompleted:
		return WorkOrderStatus(s), nil
	}
	return "", &ValidationError{Field: "status", Reason: "unknown work order status " + quote(s)}
}

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
	PriorityUrgent Priority = "Urgent"
)

// ParsePriority validates a priority string. Empty means Medium.
func ParsePriority(s string) (Priority, error) {
	switch Priority(s) {
	case "":
		return PriorityMedium, nil
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return Priority(s), nil
	}
	return "", &ValidationError{Field: "priority", Reason: "unknown priority " + quote(s)}
}

type MovementType string

const (
	MovementIn         MovementType = "IN"
	MovementOut        MovementType = "OUT"
	MovementAdjustment MovementType = "ADJUSTMENT"
)

func ParseMovementType(s string) (MovementType, error) {
	switch MovementType(strings.ToUpper(s)) {
	case MovementIn:
		return MovementIn, nil
	case MovementOut:
		return MovementOut, nil
	case MovementAdjustment:
		return MovementAdjustment, nil
	}
	return "", &ValidationError{Field: "movement_type", Reason: "unknown movement type " + quote(s)}
}

func quote(s string) string {
	return `"` + s + `"`
}
