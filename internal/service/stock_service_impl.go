package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/shopfloor/internal/db"
	"github.com/alexanderramin/shopfloor/internal/domain"
	"github.com/alexanderramin/shopfloor/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type stockService struct {
	components repository.ComponentRepo
	movements  repository.MovementRepo
	uow        db.UnitOfWork
	observer   UseCaseObserver
}

func NewStockService(
	components repository.ComponentRepo,
	movements repository.MovementRepo,
	uow db.UnitOfWork,
	observers ...UseCaseObserver,
) StockService {
	return &stockService{
		components: components,
		movements:  movements,
		uow:        uow,
		observer:   useCaseObserverOrNoop(observers),
	}
}

func (s *stockService) CreateComponent(ctx context.Context, req CreateComponentRequest) (c *domain.Component, err error) {
	startedAt := time.Now()
	fields := map[string]any{"name": req.Name}
	defer func() { observeUseCase(ctx, s.observer, "create-component", startedAt, fields, err) }()

	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if err := domain.ValidateUnitCost(req.UnitCost); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	c = &domain.Component{
		ID:             uuid.New().String(),
		Name:           strings.TrimSpace(req.Name),
		QuantityOnHand: req.QuantityOnHand,
		UnitCost:       req.UnitCost,
		Supplier:       req.Supplier,
		ReorderLevel:   domain.DefaultReorderLevel,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if req.ReorderLevel != nil {
		c.ReorderLevel = *req.ReorderLevel
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repos := newTxRepos(tx)
		if err := repos.components.Create(ctx, c); err != nil {
			return err
		}
		if c.QuantityOnHand == 0 {
			return nil
		}
		return repos.movements.Create(ctx, newMovement(ctx, c.ID, domain.MovementIn, c.QuantityOnHand, c.QuantityOnHand, "Initial stock", now))
	})
	if err != nil {
		return nil, err
	}
	fields["component_id"] = c.ID
	return c, nil
}

func (s *stockService) UpdateComponent(ctx context.Context, id string, req UpdateComponentRequest) (c *domain.Component, err error) {
	startedAt := time.Now()
	fields := map[string]any{"component_id": id}
	defer func() { observeUseCase(ctx, s.observer, "update-component", startedAt, fields, err) }()

	if err := validateRequest(req); err != nil {
		return nil, err
	}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repos := newTxRepos(tx)
		current, err := repos.components.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if req.Name != nil {
			current.Name = strings.TrimSpace(*req.Name)
		}
		if req.Supplier != nil {
			current.Supplier = *req.Supplier
		}
		if req.ReorderLevel != nil {
			current.ReorderLevel = *req.ReorderLevel
		}
		current.UpdatedAt = time.Now().UTC()
		if err := repos.components.Update(ctx, current); err != nil {
			return err
		}
		c = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *stockService) DeleteComponent(ctx context.Context, id string) (err error) {
	startedAt := time.Now()
	defer func() {
		observeUseCase(ctx, s.observer, "delete-component", startedAt, map[string]any{"component_id": id}, err)
	}()

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repos := newTxRepos(tx)
		n, err := repos.boms.CountReferencingComponent(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return &domain.ConflictError{
				Entity: "component",
				ID:     id,
				Reason: fmt.Sprintf("referenced by %d bill(s) of materials", n),
			}
		}
		return repos.components.Delete(ctx, id)
	})
}

func (s *stockService) Get(ctx context.Context, id string) (*domain.Component, error) {
	return s.components.GetByID(ctx, id)
}

func (s *stockService) List(ctx context.Context) ([]*domain.Component, error) {
	return s.components.List(ctx)
}

func (s *stockService) LowStock(ctx context.Context) ([]*domain.Component, error) {
	return s.components.ListLowStock(ctx)
}

func (s *stockService) Debit(ctx context.Context, componentID string, qty int, reference string) (balance int, err error) {
	startedAt := time.Now()
	fields := map[string]any{"component_id": componentID, "quantity": qty}
	defer func() { observeUseCase(ctx, s.observer, "debit-stock", startedAt, fields, err) }()

	if qty <= 0 {
		return 0, &domain.ValidationError{Field: "quantity", Reason: "must be greater than 0"}
	}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repos := newTxRepos(tx)
		b, err := repos.components.Debit(ctx, componentID, qty)
		if err != nil {
			return err
		}
		balance = b
		return repos.movements.Create(ctx, newMovement(ctx, componentID, domain.MovementOut, qty, b, reference, time.Now().UTC()))
	})
	if err != nil {
		return 0, err
	}
	fields["balance"] = balance
	return balance, nil
}

func (s *stockService) Credit(ctx context.Context, componentID string, qty int, reference string) (balance int, err error) {
	startedAt := time.Now()
	fields := map[string]any{"component_id": componentID, "quantity": qty}
	defer func() { observeUseCase(ctx, s.observer, "credit-stock", startedAt, fields, err) }()

	if qty <= 0 {
		return 0, &domain.ValidationError{Field: "quantity", Reason: "must be greater than 0"}
	}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repos := newTxRepos(tx)
		b, err := repos.components.Credit(ctx, componentID, qty)
		if err != nil {
			return err
		}
		balance = b
		return repos.movements.Create(ctx, newMovement(ctx, componentID, domain.MovementIn, qty, b, reference, time.Now().UTC()))
	})
	if err != nil {
		return 0, err
	}
	fields["balance"] = balance
	return balance, nil
}

// Adjust books the difference between the counted and recorded quantity as
// one ADJUSTMENT movement. The movement quantity is the absolute delta.
func (s *stockService) Adjust(ctx context.Context, componentID string, counted int, reason string) (balance int, err error) {
	startedAt := time.Now()
	fields := map[string]any{"component_id": componentID, "counted": counted}
	defer func() { observeUseCase(ctx, s.observer, "adjust-stock", startedAt, fields, err) }()

	if counted < 0 {
		return 0, &domain.ValidationError{Field: "quantity", Reason: "must not be negative"}
	}
	if reason == "" {
		reason = "Stock count"
	}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repos := newTxRepos(tx)
		c, err := repos.components.GetByID(ctx, componentID)
		if err != nil {
			return err
		}
		delta := counted - c.QuantityOnHand
		switch {
		case delta > 0:
			balance, err = repos.components.Credit(ctx, componentID, delta)
		case delta < 0:
			balance, err = repos.components.Debit(ctx, componentID, -delta)
			delta = -delta
		default:
			balance = c.QuantityOnHand
		}
		if err != nil {
			return err
		}
		fields["delta"] = counted - c.QuantityOnHand
		return repos.movements.Create(ctx, newMovement(ctx, componentID, domain.MovementAdjustment, delta, balance, reason, time.Now().UTC()))
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

func (s *stockService) AdjustUnitCost(ctx context.Context, componentID string, cost decimal.Decimal) (c *domain.Component, err error) {
	startedAt := time.Now()
	fields := map[string]any{"component_id": componentID, "unit_cost": cost.String()}
	defer func() { observeUseCase(ctx, s.observer, "adjust-unit-cost", startedAt, fields, err) }()

	if err := domain.ValidateUnitCost(cost); err != nil {
		return nil, err
	}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repos := newTxRepos(tx)
		current, err := repos.components.GetByID(ctx, componentID)
		if err != nil {
			return err
		}
		old := current.UnitCost
		now := time.Now().UTC()
		current.UnitCost = cost
		current.UpdatedAt = now
		if err := repos.components.Update(ctx, current); err != nil {
			return err
		}
		ref := fmt.Sprintf("Price update: %s -> %s", old.StringFixed(2), cost.StringFixed(2))
		if err := repos.movements.Create(ctx, newMovement(ctx, componentID, domain.MovementAdjustment, 0, current.QuantityOnHand, ref, now)); err != nil {
			return err
		}
		c = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *stockService) Movements(ctx context.Context, componentID string, limit int) ([]*domain.StockMovement, error) {
	if componentID == "" {
		return s.movements.ListRecent(ctx, limit)
	}
	if _, err := s.components.GetByID(ctx, componentID); err != nil {
		return nil, err
	}
	return s.movements.ListByComponent(ctx, componentID, limit)
}

func newMovement(ctx context.Context, componentID string, typ domain.MovementType, qty, balance int, reference string, at time.Time) *domain.StockMovement {
	return &domain.StockMovement{
		ID:           uuid.New().String(),
		ComponentID:  componentID,
		Type:         typ,
		Quantity:     qty,
		BalanceAfter: balance,
		Reference:    reference,
		CreatedBy:    ActorFrom(ctx),
		CreatedAt:    at,
	}
}
