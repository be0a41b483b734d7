package service

import (
	"time"

	"github.com/alexanderramin/shopfloor/internal/domain"
	"github.com/shopspring/decimal"
)

type CreateComponentRequest struct {
	Name           string          `json:"name" validate:"required,max=200"`
	QuantityOnHand int             `json:"quantity_on_hand" validate:"gte=0"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	Supplier       string          `json:"supplier" validate:"max=200"`
	ReorderLevel   *int            `json:"reorder_level" validate:"omitempty,gte=0"`
}

// UpdateComponentRequest changes descriptive fields. Nil fields are left
// alone. Quantity and cost have their own ledger operations.
type UpdateComponentRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=200"`
	Supplier     *string `json:"supplier" validate:"omitempty,max=200"`
	ReorderLevel *int    `json:"reorder_level" validate:"omitempty,gte=0"`
}

type BOMLineRequest struct {
	ComponentID      string `json:"component_id" validate:"required"`
	QuantityRequired int    `json:"quantity_required" validate:"gt=0"`
	Notes            string `json:"notes" validate:"max=500"`
}

type CreateBOMRequest struct {
	Name        string           `json:"name" validate:"required,max=200"`
	Description string           `json:"description" validate:"max=2000"`
	Lines       []BOMLineRequest `json:"components" validate:"required,min=1,dive"`
}

// ReviseBOMRequest publishes a new version. A nil description keeps the
// previous one.
type ReviseBOMRequest struct {
	Description *string          `json:"description" validate:"omitempty,max=2000"`
	Lines       []BOMLineRequest `json:"components" validate:"required,min=1,dive"`
}

// OperationRequest is one step of the externally supplied routing.
type OperationRequest struct {
	Name            string `json:"name" validate:"required,max=200"`
	Description     string `json:"description" validate:"max=2000"`
	DurationMinutes int    `json:"duration_minutes" validate:"gt=0"`
	AssignedTo      string `json:"assigned_to" validate:"max=200"`
	// WorkCenterID optionally routes the step through an active work center.
	WorkCenterID    string `json:"work_center_id"`
}

type CreateOrderRequest struct {
	ProductName string             `json:"product_name" validate:"required,max=200"`
	Quantity    int                `json:"quantity" validate:"gt=0"`
	BOMID       string             `json:"bom_id" validate:"required"`
	Deadline    time.Time          `json:"deadline" validate:"required"`
	Priority    string             `json:"priority"`
	Notes       string             `json:"notes" validate:"max=2000"`
	Operations  []OperationRequest `json:"operations" validate:"omitempty,dive"`
}

// UpdateOrderRequest edits a Planned order. Nil fields are left alone.
type UpdateOrderRequest struct {
	ProductName *string    `json:"product_name" validate:"omitempty,min=1,max=200"`
	Quantity    *int       `json:"quantity" validate:"omitempty,gt=0"`
	Deadline    *time.Time `json:"deadline"`
	Priority    *string    `json:"priority"`
	Notes       *string    `json:"notes" validate:"omitempty,max=2000"`
}

type CreateWorkCenterRequest struct {
	Name        string           `json:"name" validate:"required,max=200"`
	Description string           `json:"description" validate:"max=2000"`
	CostPerHour decimal.Decimal  `json:"cost_per_hour"`
	// Capacity and Efficiency default to 1 when omitted.
	Capacity    *int             `json:"capacity" validate:"omitempty,gt=0"`
	Efficiency  *decimal.Decimal `json:"efficiency"`
}

// UpdateWorkCenterRequest edits a work center. Nil fields are left alone.
type UpdateWorkCenterRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description" validate:"omitempty,max=2000"`
	CostPerHour *decimal.Decimal `json:"cost_per_hour"`
	Capacity    *int             `json:"capacity" validate:"omitempty,gt=0"`
	Efficiency  *decimal.Decimal `json:"efficiency"`
	Active      *bool            `json:"active"`
}

type CompleteWorkOrderRequest struct {
	Notes                 string `json:"notes" validate:"max=2000"`
	ActualDurationMinutes *int   `json:"actual_duration_minutes" validate:"omitempty,gte=0"`
}

// CreateOrderResult carries the created order and any shortages found
// against current stock. Shortages do not block creation.
type CreateOrderResult struct {
	Order         *domain.ManufacturingOrder
	StockWarnings []*domain.InsufficientStockError
}

// TransitionResult is the authoritative state after a work order transition.
type TransitionResult struct {
	WorkOrder *domain.WorkOrder
	Order     *domain.ManufacturingOrder
}
