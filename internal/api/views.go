package api

import (
	"time"

	"github.com/alexanderramin/shopfloor/internal/domain"
	"github.com/alexanderramin/shopfloor/internal/service"
	"github.com/shopspring/decimal"
)

type componentView struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	QuantityOnHand int             `json:"quantity_on_hand"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	Supplier       string          `json:"supplier"`
	ReorderLevel   int             `json:"reorder_level"`
	LowStock       bool            `json:"low_stock"`
	StockValue     decimal.Decimal `json:"stock_value"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func toComponentView(c *domain.Component) componentView {
	return componentView{
		ID:             c.ID,
		Name:           c.Name,
		QuantityOnHand: c.QuantityOnHand,
		UnitCost:       c.UnitCost,
		Supplier:       c.Supplier,
		ReorderLevel:   c.ReorderLevel,
		LowStock:       c.IsLowStock(),
		StockValue:     c.StockValue(),
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func toComponentViews(cs []*domain.Component) []componentView {
	out := make([]componentView, len(cs))
	for i, c := range cs {
		out[i] = toComponentView(c)
	}
	return out
}

type movementView struct {
	ID            string    `json:"id"`
	ComponentID   string    `json:"component_id"`
	ComponentName string    `json:"component_name"`
	MovementType  string    `json:"movement_type"`
	Quantity      int       `json:"quantity"`
	BalanceAfter  int       `json:"balance_after"`
	Reference     string    `json:"reference"`
	CreatedBy     string    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
}

func toMovementViews(ms []*domain.StockMovement) []movementView {
	out := make([]movementView, len(ms))
	for i, m := range ms {
		out[i] = movementView{
			ID:            m.ID,
			ComponentID:   m.ComponentID,
			ComponentName: m.ComponentName,
			MovementType:  string(m.Type),
			Quantity:      m.Quantity,
			BalanceAfter:  m.BalanceAfter,
			Reference:     m.Reference,
			CreatedBy:     m.CreatedBy,
			CreatedAt:     m.CreatedAt,
		}
	}
	return out
}

type bomLineView struct {
	ComponentID      string          `json:"component_id"`
	ComponentName    string          `json:"component_name"`
	QuantityRequired int             `json:"quantity_required"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	LineCost         decimal.Decimal `json:"line_cost"`
	Notes            string          `json:"notes"`
}

type bomView struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Version     int             `json:"version"`
	Archived    bool            `json:"archived"`
	TotalCost   decimal.Decimal `json:"total_cost"`
	Components  []bomLineView   `json:"components"`
	CreatedAt   time.Time       `json:"created_at"`
}

func toBOMView(b *domain.BillOfMaterials) bomView {
	lines := make([]bomLineView, len(b.Lines))
	for i, l := range b.Lines {
		lines[i] = bomLineView{
			ComponentID:      l.ComponentID,
			ComponentName:    l.ComponentName,
			QuantityRequired: l.QuantityRequired,
			UnitCost:         l.UnitCost,
			LineCost:         l.LineCost(),
			Notes:            l.Notes,
		}
	}
	return bomView{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		Version:     b.Version,
		Archived:    b.IsArchived(),
		TotalCost:   b.TotalCost(),
		Components:  lines,
		CreatedAt:   b.CreatedAt,
	}
}

func toBOMViews(bs []*domain.BillOfMaterials) []bomView {
	out := make([]bomView, len(bs))
	for i, b := range bs {
		out[i] = toBOMView(b)
	}
	return out
}

type workOrderView struct {
	ID                    string           `json:"id"`
	ManufacturingOrderID  string           `json:"manufacturing_order_id"`
	Sequence              int              `json:"sequence"`
	Name                  string           `json:"name"`
	Description           string           `json:"description"`
	DurationMinutes       int              `json:"duration_minutes"`
	ActualDurationMinutes *int             `json:"actual_duration_minutes"`
	AssignedTo            *string          `json:"assigned_to"`
	WorkCenterID          *string          `json:"work_center_id"`
	WorkCenterName        string           `json:"work_center_name,omitempty"`
	EstimatedCost         *decimal.Decimal `json:"estimated_cost"`
	ActualCost            *decimal.Decimal `json:"actual_cost"`
	Status                string           `json:"status"`
	Notes                 string           `json:"notes"`
	StartedAt             *time.Time       `json:"started_at"`
	CompletedAt           *time.Time       `json:"completed_at"`
}

func toWorkOrderView(w *domain.WorkOrder) workOrderView {
	return workOrderView{
		ID:                    w.ID,
		ManufacturingOrderID:  w.ManufacturingOrderID,
		Sequence:              w.Sequence,
		Name:                  w.Name,
		Description:           w.Description,
		DurationMinutes:       w.DurationMinutes,
		ActualDurationMinutes: w.ActualDurationMinutes,
		AssignedTo:            w.AssignedTo,
		WorkCenterID:          w.WorkCenterID,
		WorkCenterName:        w.WorkCenterName,
		EstimatedCost:         w.EstimatedCost,
		ActualCost:            w.ActualCost,
		Status:                string(w.Status),
		Notes:                 w.Notes,
		StartedAt:             w.StartedAt,
		CompletedAt:           w.CompletedAt,
	}
}

func toWorkOrderViews(ws []*domain.WorkOrder) []workOrderView {
	out := make([]workOrderView, len(ws))
	for i, w := range ws {
		out[i] = toWorkOrderView(w)
	}
	return out
}

type orderView struct {
	ID          string          `json:"id"`
	Reference   string          `json:"reference"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	BOMID       string          `json:"bom_id"`
	BOMName     string          `json:"bom_name"`
	BOMVersion  int             `json:"bom_version"`
	Deadline    time.Time       `json:"deadline"`
	Priority    string          `json:"priority"`
	Status      string          `json:"status"`
	Progress    int             `json:"progress"`
	Notes       string          `json:"notes"`
	Version     int             `json:"version"`
	StartedAt   *time.Time      `json:"started_at"`
	CompletedAt *time.Time      `json:"completed_at"`
	CanceledAt  *time.Time      `json:"canceled_at"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	WorkOrders  []workOrderView `json:"work_orders,omitempty"`
}

func toOrderView(o *domain.ManufacturingOrder) orderView {
	v := orderView{
		ID:          o.ID,
		Reference:   o.DisplayID(),
		ProductName: o.ProductName,
		Quantity:    o.Quantity,
		BOMID:       o.BOMID,
		BOMName:     o.BOMName,
		BOMVersion:  o.BOMVersion,
		Deadline:    o.Deadline,
		Priority:    string(o.Priority),
		Status:      string(o.Status),
		Progress:    o.Progress,
		Notes:       o.Notes,
		Version:     o.Version,
		StartedAt:   o.StartedAt,
		CompletedAt: o.CompletedAt,
		CanceledAt:  o.CanceledAt,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
	if len(o.WorkOrders) > 0 {
		v.WorkOrders = toWorkOrderViews(o.WorkOrders)
	}
	return v
}

func toOrderViews(orders []*domain.ManufacturingOrder) []orderView {
	out := make([]orderView, len(orders))
	for i, o := range orders {
		out[i] = toOrderView(o)
	}
	return out
}

type shortageView struct {
	ComponentID   string `json:"component_id"`
	ComponentName string `json:"component_name"`
	Required      int    `json:"required"`
	Available     int    `json:"available"`
	Shortfall     int    `json:"shortfall"`
}

func toShortageViews(ss []*domain.InsufficientStockError) []shortageView {
	out := make([]shortageView, len(ss))
	for i, s := range ss {
		out[i] = shortageView{
			ComponentID:   s.ComponentID,
			ComponentName: s.ComponentName,
			Required:      s.Required,
			Available:     s.Available,
			Shortfall:     s.Shortfall(),
		}
	}
	return out
}

type transitionView struct {
	WorkOrder workOrderView `json:"work_order"`
	Order     orderView     `json:"manufacturing_order"`
}

func toTransitionView(r *service.TransitionResult) transitionView {
	return transitionView{
		WorkOrder: toWorkOrderView(r.WorkOrder),
		Order:     toOrderView(r.Order),
	}
}

type summaryView struct {
	OrdersByStatus     map[string]int  `json:"orders_by_status"`
	TotalOrders        int             `json:"total_orders"`
	TotalComponents    int             `json:"total_components"`
	TotalBOMs          int             `json:"total_boms"`
	LowStockComponents int             `json:"low_stock_components"`
	InventoryValue     decimal.Decimal `json:"inventory_value"`
	GeneratedAt        time.Time       `json:"generated_at"`
}

type workCenterView struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	CostPerHour decimal.Decimal `json:"cost_per_hour"`
	Capacity    int             `json:"capacity"`
	Efficiency  decimal.Decimal `json:"efficiency"`
	Active      bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func toWorkCenterView(wc *domain.WorkCenter) workCenterView {
	return workCenterView{
		ID:          wc.ID,
		Name:        wc.Name,
		Description: wc.Description,
		CostPerHour: wc.CostPerHour,
		Capacity:    wc.Capacity,
		Efficiency:  wc.Efficiency,
		Active:      wc.Active,
		CreatedAt:   wc.CreatedAt,
		UpdatedAt:   wc.UpdatedAt,
	}
}

func toWorkCenterViews(wcs []*domain.WorkCenter) []workCenterView {
	out := make([]workCenterView, len(wcs))
	for i, wc := range wcs {
		out[i] = toWorkCenterView(wc)
	}
	return out
}

type workCenterLoadView struct {
	WorkCenterID   string          `json:"work_center_id"`
	WorkCenterName string          `json:"work_center_name"`
	OpenWorkOrders int             `json:"open_work_orders"`
	Completed      int             `json:"completed_work_orders"`
	PlannedMinutes int             `json:"planned_minutes"`
	ActualMinutes  int             `json:"actual_minutes"`
	EstimatedCost  decimal.Decimal `json:"estimated_cost"`
	ActualCost     decimal.Decimal `json:"actual_cost"`
}

func toWorkCenterLoadViews(ls []*domain.WorkCenterLoad) []workCenterLoadView {
	out := make([]workCenterLoadView, len(ls))
	for i, l := range ls {
		out[i] = workCenterLoadView(*l)
	}
	return out
}
