package service

import (
	"context"

	"github.com/alexanderramin/shopfloor/internal/domain"
	"github.com/alexanderramin/shopfloor/internal/repository"
	"github.com/shopspring/decimal"
)

type StockService interface {
	CreateComponent(ctx context.Context, req CreateComponentRequest) (*domain.Component, error)
	UpdateComponent(ctx context.Context, id string, req UpdateComponentRequest) (*domain.Component, error)
	DeleteComponent(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*domain.Component, error)
	List(ctx context.Context) ([]*domain.Component, error)
	LowStock(ctx context.Context) ([]*domain.Component, error)

	// Debit removes qty from on-hand stock and returns the new balance.
	Debit(ctx context.Context, componentID string, qty int, reference string) (int, error)
	// Credit adds qty to on-hand stock and returns the new balance.
	Credit(ctx context.Context, componentID string, qty int, reference string) (int, error)
	// Adjust sets on-hand stock to a physically counted quantity.
	Adjust(ctx context.Context, componentID string, counted int, reason string) (int, error)
	AdjustUnitCost(ctx context.Context, componentID string, cost decimal.Decimal) (*domain.Component, error)
	// Movements lists ledger entries, newest first. An empty componentID
	// lists across all components.
	Movements(ctx context.Context, componentID string, limit int) ([]*domain.StockMovement, error)
}

type BOMService interface {
	Create(ctx context.Context, req CreateBOMRequest) (*domain.BillOfMaterials, error)
	Revise(ctx context.Context, id string, req ReviseBOMRequest) (*domain.BillOfMaterials, error)
	Get(ctx context.Context, id string) (*domain.BillOfMaterials, error)
	List(ctx context.Context) ([]*domain.BillOfMaterials, error)
	History(ctx context.Context, name string) ([]*domain.BillOfMaterials, error)
	Delete(ctx context.Context, id string) error
}

type OrderService interface {
	Create(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error)
	// Get accepts an order ID or its MO-NNNN reference.
	Get(ctx context.Context, id string) (*domain.ManufacturingOrder, error)
	List(ctx context.Context, filter repository.OrderFilter) ([]*domain.ManufacturingOrder, error)
	Update(ctx context.Context, id string, req UpdateOrderRequest) (*domain.ManufacturingOrder, error)
	Delete(ctx context.Context, id string) error
	Cancel(ctx context.Context, id string) (*domain.ManufacturingOrder, error)
	// Complete force-completes every open work order and consumes stock.
	Complete(ctx context.Context, id string) (*domain.ManufacturingOrder, error)
}

type WorkOrderService interface {
	Start(ctx context.Context, id string) (*TransitionResult, error)
	Pause(ctx context.Context, id string) (*TransitionResult, error)
	Complete(ctx context.Context, id string, req CompleteWorkOrderRequest) (*TransitionResult, error)
	Assign(ctx context.Context, id, operator string) (*TransitionResult, error)
	Get(ctx context.Context, id string) (*domain.WorkOrder, error)
	ListByOrder(ctx context.Context, orderID string) ([]*domain.WorkOrder, error)
}

type WorkCenterService interface {
	Create(ctx context.Context, req CreateWorkCenterRequest) (*domain.WorkCenter, error)
	// Get accepts a work center ID or its name.
	Get(ctx context.Context, idOrName string) (*domain.WorkCenter, error)
	List(ctx context.Context, includeInactive bool) ([]*domain.WorkCenter, error)
	Update(ctx context.Context, id string, req UpdateWorkCenterRequest) (*domain.WorkCenter, error)
	// Deactivate hides the center from routing. It fails while open work
	// orders are still routed through it.
	Deactivate(ctx context.Context, id string) (*domain.WorkCenter, error)
	Load(ctx context.Context) ([]*domain.WorkCenterLoad, error)
}

type StatusService interface {
	Summary(ctx context.Context) (*DashboardSummary, error)
}
