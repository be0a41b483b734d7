package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/shopfloor/internal/domain"
)

type ComponentRepo interface {
	Create(ctx context.Context, c *domain.Component) error
	GetByID(ctx context.Context, id string) (*domain.Component, error)
	List(ctx context.Context) ([]*domain.Component, error)
	ListLowStock(ctx context.Context) ([]*domain.Component, error)
	// Update writes descriptive fields and unit cost. Quantity only changes
	// through Debit and Credit.
	Update(ctx context.Context, c *domain.Component) error
	Debit(ctx context.Context, id string, qty int) (int, error)
	Credit(ctx context.Context, id string, qty int) (int, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

type BOMRepo interface {
	// Create inserts the BOM row and its lines.
	Create(ctx context.Context, b *domain.BillOfMaterials) error
	// GetByID returns the BOM with lines priced at current unit costs,
	// including archived versions.
	GetByID(ctx context.Context, id string) (*domain.BillOfMaterials, error)
	LatestVersion(ctx context.Context, name string) (int, error)
	List(ctx context.Context) ([]*domain.BillOfMaterials, error)
	ListVersions(ctx context.Context, name string) ([]*domain.BillOfMaterials, error)
	Archive(ctx context.Context, id string, at time.Time) error
	CountReferencingComponent(ctx context.Context, componentID string) (int, error)
	Count(ctx context.Context) (int, error)
}

// OrderFilter narrows order listings. Zero value lists everything.
type OrderFilter struct {
	Status domain.OrderStatus
	BOMID  string
}

type OrderRepo interface {
	Create(ctx context.Context, o *domain.ManufacturingOrder) error
	// GetByID returns the order without its work orders.
	GetByID(ctx context.Context, id string) (*domain.ManufacturingOrder, error)
	GetByReference(ctx context.Context, ref string) (*domain.ManufacturingOrder, error)
	List(ctx context.Context, f OrderFilter) ([]*domain.ManufacturingOrder, error)
	// Update persists o if its version still matches the stored one and
	// bumps o.Version. A stale version yields a ConflictError.
	Update(ctx context.Context, o *domain.ManufacturingOrder) error
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context) (map[domain.OrderStatus]int, error)
	CountByBOM(ctx context.Context, bomID string, statuses ...domain.OrderStatus) (int, error)
}

type WorkOrderRepo interface {
	Create(ctx context.Context, w *domain.WorkOrder) error
	GetByID(ctx context.Context, id string) (*domain.WorkOrder, error)
	ListByOrder(ctx context.Context, orderID string) ([]*domain.WorkOrder, error)
	Update(ctx context.Context, w *domain.WorkOrder) error
}

type WorkCenterRepo interface {
	Create(ctx context.Context, wc *domain.WorkCenter) error
	GetByID(ctx context.Context, id string) (*domain.WorkCenter, error)
	GetByName(ctx context.Context, name string) (*domain.WorkCenter, error)
	List(ctx context.Context, includeInactive bool) ([]*domain.WorkCenter, error)
	Update(ctx context.Context, wc *domain.WorkCenter) error
	CountOpenWorkOrders(ctx context.Context, id string) (int, error)
	// Load aggregates planned and actual work per active center.
	Load(ctx context.Context) ([]*domain.WorkCenterLoad, error)
}

type MovementRepo interface {
	Create(ctx context.Context, m *domain.StockMovement) error
	ListByComponent(ctx context.Context, componentID string, limit int) ([]*domain.StockMovement, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.StockMovement, error)
}

type OrderSequenceRepo interface {
	Next(ctx context.Context, name string) (int, error)
}
