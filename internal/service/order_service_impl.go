package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/shopfloor/internal/db"
	"github.com/alexanderramin/shopfloor/internal/domain"
	"github.com/alexanderramin/shopfloor/internal/lock"
	"github.com/alexanderramin/shopfloor/internal/repository"
	"github.com/google/uuid"
)

type orderService struct {
	orders     repository.OrderRepo
	workOrders repository.WorkOrderRepo
	uow        db.UnitOfWork
	cascade    *cascade
	observer   UseCaseObserver
}

func NewOrderService(
	orders repository.OrderRepo,
	workOrders repository.WorkOrderRepo,
	uow db.UnitOfWork,
	locker lock.Locker,
	observers ...UseCaseObserver,
) OrderService {
	return &orderService{
		orders:     orders,
		workOrders: workOrders,
		uow:        uow,
		cascade:    newCascade(uow, locker),
		observer:   useCaseObserverOrNoop(observers),
	}
}

func (s *orderService) Create(ctx context.Context, req CreateOrderRequest) (result *CreateOrderResult, err error) {
	startedAt := time.Now()
	fields := map[string]any{"bom_id": req.BOMID, "quantity": req.Quantity}
	defer func() { observeUseCase(ctx, s.observer, "create-order", startedAt, fields, err) }()

	if err := validateRequest(req); err != nil {
		return nil, err
	}
	priority, err := domain.ParsePriority(req.Priority)
	if err != nil {
		return nil, err
	}
	now := s.cascade.now()
	if !req.Deadline.After(now) {
		return nil, &domain.ValidationError{Field: "deadline", Reason: "must be in the future"}
	}

	o := &domain.ManufacturingOrder{
		ID:          uuid.New().String(),
		ProductName: strings.TrimSpace(req.ProductName),
		Quantity:    req.Quantity,
		BOMID:       req.BOMID,
		Deadline:    req.Deadline.UTC(),
		Priority:    priority,
		Status:      domain.OrderPlanned,
		Notes:       req.Notes,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	o.WorkOrders = buildRouting(o, req.Operations, now)

	var warnings []*domain.InsufficientStockError
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repos := newTxRepos(tx)
		bom, err := repos.boms.GetByID(ctx, req.BOMID)
		if err != nil {
			return err
		}
		if bom.IsArchived() {
			return &domain.NotFoundError{Entity: "bom", ID: req.BOMID}
		}
		o.BOMName = bom.Name
		o.BOMVersion = bom.Version
		reqs, err := bom.Requirements(o.Quantity)
		if err != nil {
			return err
		}

		seq, err := repos.sequences.Next(ctx, repository.OrderReferenceSequence)
		if err != nil {
			return err
		}
		o.Reference = domain.FormatOrderReference(seq)
		if err := routeToCenters(ctx, repos, o.WorkOrders, req.Operations); err != nil {
			return err
		}

		if err := repos.orders.Create(ctx, o); err != nil {
			return err
		}
		for _, w := range o.WorkOrders {
			if err := repos.workOrders.Create(ctx, w); err != nil {
				return err
			}
		}

		warnings, err = stockWarnings(ctx, repos, reqs)
		return err
	})
	if err != nil {
		return nil, err
	}
	fields["order_id"] = o.ID
	fields["reference"] = o.Reference
	fields["stock_warnings"] = len(warnings)
	return &CreateOrderResult{Order: o, StockWarnings: warnings}, nil
}

// buildRouting turns the supplied operations into sequenced work orders. An
// order without operations gets one default assembly step.
func buildRouting(o *domain.ManufacturingOrder, ops []OperationRequest, now time.Time) []*domain.WorkOrder {
	if len(ops) == 0 {
		ops = []OperationRequest{{
			Name:            "Assembly - " + o.ProductName,
			DurationMinutes: domain.DefaultOperationMinutes,
		}}
	}
	wos := make([]*domain.WorkOrder, len(ops))
	for i, op := range ops {
		w := &domain.WorkOrder{
			ID:                   uuid.New().String(),
			ManufacturingOrderID: o.ID,
			Sequence:             i + 1,
			Name:                 strings.TrimSpace(op.Name),
			Description:          op.Description,
			DurationMinutes:      op.DurationMinutes,
			Status:               domain.WorkOrderPending,
			CreatedAt:            now,
			UpdatedAt:            now,
		}
		if op.AssignedTo != "" {
			assignee := op.AssignedTo
			w.AssignedTo = &assignee
		}
		wos[i] = w
	}
	return wos
}

// routeToCenters binds work orders to the active work centers their
// operations name and prices the planned duration. wos[i] came from ops[i].
func routeToCenters(ctx context.Context, repos *txRepos, wos []*domain.WorkOrder, ops []OperationRequest) error {
	for i, op := range ops {
		if op.WorkCenterID == "" {
			continue
		}
		wc, err := repos.workCenters.GetByID(ctx, op.WorkCenterID)
		if err != nil {
			return err
		}
		if !wc.Active {
			return &domain.NotFoundError{Entity: "work center", ID: op.WorkCenterID}
		}
		w := wos[i]
		id := wc.ID
		estimated := wc.CostFor(w.DurationMinutes)
		w.WorkCenterID = &id
		w.WorkCenterName = wc.Name
		w.EstimatedCost = &estimated
	}
	return nil
}

// stockWarnings compares requirements with current stock without reserving.
func stockWarnings(ctx context.Context, repos *txRepos, reqs []domain.Requirement) ([]*domain.InsufficientStockError, error) {
	var warnings []*domain.InsufficientStockError
	for _, req := range reqs {
		c, err := repos.components.GetByID(ctx, req.ComponentID)
		if err != nil {
			return nil, err
		}
		if c.QuantityOnHand < req.Quantity {
			warnings = append(warnings, &domain.InsufficientStockError{
				ComponentID:   c.ID,
				ComponentName: c.Name,
				Required:      req.Quantity,
				Available:     c.QuantityOnHand,
			})
		}
	}
	return warnings, nil
}

func (s *orderService) Get(ctx context.Context, id string) (*domain.ManufacturingOrder, error) {
	var (
		o   *domain.ManufacturingOrder
		err error
	)
	if strings.HasPrefix(strings.ToUpper(id), "MO-") {
		o, err = s.orders.GetByReference(ctx, id)
	} else {
		o, err = s.orders.GetByID(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	wos, err := s.workOrders.ListByOrder(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.WorkOrders = wos
	return o, nil
}

func (s *orderService) List(ctx context.Context, filter repository.OrderFilter) ([]*domain.ManufacturingOrder, error) {
	return s.orders.List(ctx, filter)
}

func (s *orderService) Update(ctx context.Context, id string, req UpdateOrderRequest) (updated *domain.ManufacturingOrder, err error) {
	startedAt := time.Now()
	fields := map[string]any{"order_id": id}
	defer func() { observeUseCase(ctx, s.observer, "update-order", startedAt, fields, err) }()

	if err := validateRequest(req); err != nil {
		return nil, err
	}
	var priority domain.Priority
	if req.Priority != nil {
		if priority, err = domain.ParsePriority(*req.Priority); err != nil {
			return nil, err
		}
	}

	id, err = s.resolveID(ctx, id)
	if err != nil {
		return nil, err
	}
	unlock, err := s.cascade.locker.Lock(ctx, lock.OrderKey(id))
	if err != nil {
		return nil, err
	}
	defer unlock()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repos := newTxRepos(tx)
		o, err := repos.loadOrder(ctx, id)
		if err != nil {
			return err
		}
		if o.Status != domain.OrderPlanned {
			return &domain.ConflictError{
				Entity: "manufacturing order",
				ID:     o.ID,
				Reason: fmt.Sprintf("only planned orders can be edited, order is %s", o.Status),
			}
		}
		now := s.cascade.now()
		if req.ProductName != nil {
			o.ProductName = strings.TrimSpace(*req.ProductName)
		}
		if req.Quantity != nil {
			bom, err := repos.boms.GetByID(ctx, o.BOMID)
			if err != nil {
				return err
			}
			if _, err := bom.Requirements(*req.Quantity); err != nil {
				return err
			}
			o.Quantity = *req.Quantity
		}
		if req.Deadline != nil {
			if !req.Deadline.After(now) {
				return &domain.ValidationError{Field: "deadline", Reason: "must be in the future"}
			}
			o.Deadline = req.Deadline.UTC()
		}
		if req.Priority != nil {
			o.Priority = priority
		}
		if req.Notes != nil {
			o.Notes = *req.Notes
		}
		o.UpdatedAt = now
		if err := repos.orders.Update(ctx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *orderService) Delete(ctx context.Context, id string) (err error) {
	startedAt := time.Now()
	fields := map[string]any{"order_id": id}
	defer func() { observeUseCase(ctx, s.observer, "delete-order", startedAt, fields, err) }()

	id, err = s.resolveID(ctx, id)
	if err != nil {
		return err
	}
	unlock, err := s.cascade.locker.Lock(ctx, lock.OrderKey(id))
	if err != nil {
		return err
	}
	defer unlock()

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repos := newTxRepos(tx)
		o, err := repos.orders.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if o.Status != domain.OrderPlanned && o.Status != domain.OrderCanceled {
			return &domain.ConflictError{
				Entity: "manufacturing order",
				ID:     o.ID,
				Reason: fmt.Sprintf("cannot delete a %s order", o.Status),
			}
		}
		return repos.orders.Delete(ctx, id)
	})
}

// Cancel terminates the order and every open work order in one transaction.
func (s *orderService) Cancel(ctx context.Context, id string) (o *domain.ManufacturingOrder, err error) {
	startedAt := time.Now()
	fields := map[string]any{"order_id": id}
	defer func() { observeUseCase(ctx, s.observer, "cancel-order", startedAt, fields, err) }()

	id, err = s.resolveID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.cascade.mutate(ctx, id, func(_ context.Context, _ *txRepos, o *domain.ManufacturingOrder, now time.Time) ([]*domain.WorkOrder, error) {
		var touched []*domain.WorkOrder
		for _, w := range o.WorkOrders {
			if w.Status.IsTerminal() {
				continue
			}
			if err := w.Cancel(now); err != nil {
				return nil, err
			}
			touched = append(touched, w)
		}
		fields["work_orders_canceled"] = len(touched)
		return touched, o.TransitionTo(domain.OrderCanceled, now)
	})
}

// Complete force-completes every open work order and then runs the normal
// completion path, so stock is consumed or nothing changes.
func (s *orderService) Complete(ctx context.Context, id string) (o *domain.ManufacturingOrder, err error) {
	startedAt := time.Now()
	fields := map[string]any{"order_id": id}
	defer func() { observeUseCase(ctx, s.observer, "complete-order", startedAt, fields, err) }()

	id, err = s.resolveID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.cascade.mutate(ctx, id, func(_ context.Context, _ *txRepos, o *domain.ManufacturingOrder, now time.Time) ([]*domain.WorkOrder, error) {
		if len(o.WorkOrders) == 0 {
			return nil, &domain.ConflictError{Entity: "manufacturing order", ID: o.ID, Reason: "order has no work orders"}
		}
		var touched []*domain.WorkOrder
		for _, w := range o.WorkOrders {
			if w.Status == domain.WorkOrderCompleted {
				continue
			}
			if err := w.ForceComplete(now); err != nil {
				return nil, err
			}
			touched = append(touched, w)
		}
		return touched, nil
	})
}

// resolveID maps an MO-NNNN reference to the order ID; IDs pass through.
func (s *orderService) resolveID(ctx context.Context, id string) (string, error) {
	if !strings.HasPrefix(strings.ToUpper(id), "MO-") {
		return id, nil
	}
	o, err := s.orders.GetByReference(ctx, id)
	if err != nil {
		return "", err
	}
	return o.ID, nil
}
