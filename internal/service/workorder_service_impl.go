package service

import (
	"context"
	"time"

	"github.com/alexanderramin/shopfloor/internal/db"
	"github.com/alexanderramin/shopfloor/internal/domain"
	"github.com/alexanderramin/shopfloor/internal/lock"
	"github.com/alexanderramin/shopfloor/internal/repository"
)

type workOrderService struct {
	workOrders      repository.WorkOrderRepo
	cascade         *cascade
	enforceSequence bool
	observer        UseCaseObserver
}

// NewWorkOrderService builds the work order sequencer. With enforceSequence
// a work order may only start once every earlier step is completed;
// otherwise sequence numbers are display order only.
func NewWorkOrderService(
	workOrders repository.WorkOrderRepo,
	uow db.UnitOfWork,
	locker lock.Locker,
	enforceSequence bool,
	observers ...UseCaseObserver,
) WorkOrderService {
	return &workOrderService{
		workOrders:      workOrders,
		cascade:         newCascade(uow, locker),
		enforceSequence: enforceSequence,
		observer:        useCaseObserverOrNoop(observers),
	}
}

func (s *workOrderService) Get(ctx context.Context, id string) (*domain.WorkOrder, error) {
	return s.workOrders.GetByID(ctx, id)
}

func (s *workOrderService) ListByOrder(ctx context.Context, orderID string) ([]*domain.WorkOrder, error) {
	return s.workOrders.ListByOrder(ctx, orderID)
}

func (s *workOrderService) Start(ctx context.Context, id string) (*TransitionResult, error) {
	operator := ActorFrom(ctx)
	return s.transition(ctx, "start-work-order", id, func(w *domain.WorkOrder, o *domain.ManufacturingOrder, now time.Time) error {
		if s.enforceSequence {
			if err := checkPredecessors(w, o); err != nil {
				return err
			}
		}
		return w.Start(now, operator)
	})
}

func (s *workOrderService) Pause(ctx context.Context, id string) (*TransitionResult, error) {
	return s.transition(ctx, "pause-work-order", id, func(w *domain.WorkOrder, _ *domain.ManufacturingOrder, now time.Time) error {
		return w.Pause(now)
	})
}

func (s *workOrderService) Complete(ctx context.Context, id string, req CompleteWorkOrderRequest) (*TransitionResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	return s.transition(ctx, "complete-work-order", id, func(w *domain.WorkOrder, _ *domain.ManufacturingOrder, now time.Time) error {
		return w.Complete(now, req.Notes, req.ActualDurationMinutes)
	})
}

func (s *workOrderService) Assign(ctx context.Context, id, operator string) (*TransitionResult, error) {
	return s.transition(ctx, "assign-work-order", id, func(w *domain.WorkOrder, _ *domain.ManufacturingOrder, now time.Time) error {
		return w.Assign(now, operator)
	})
}

// transition runs one work order change through the cascade and returns the
// committed work order with its order.
func (s *workOrderService) transition(
	ctx context.Context,
	name, id string,
	apply func(w *domain.WorkOrder, o *domain.ManufacturingOrder, now time.Time) error,
) (result *TransitionResult, err error) {
	startedAt := time.Now()
	fields := map[string]any{"work_order_id": id}
	defer func() { observeUseCase(ctx, s.observer, name, startedAt, fields, err) }()

	// The owning order never changes, so it is safe to read before locking.
	current, err := s.workOrders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	fields["order_id"] = current.ManufacturingOrderID

	var updated *domain.WorkOrder
	o, err := s.cascade.mutate(ctx, current.ManufacturingOrderID,
		func(_ context.Context, _ *txRepos, o *domain.ManufacturingOrder, now time.Time) ([]*domain.WorkOrder, error) {
			w, ok := o.WorkOrder(id)
			if !ok {
				return nil, &domain.NotFoundError{Entity: "work order", ID: id}
			}
			if err := apply(w, o, now); err != nil {
				return nil, err
			}
			updated = w
			return []*domain.WorkOrder{w}, nil
		})
	if err != nil {
		return nil, err
	}
	fields["order_status"] = string(o.Status)
	fields["progress"] = o.Progress
	return &TransitionResult{WorkOrder: updated, Order: o}, nil
}

// checkPredecessors requires every lower-sequence work order to be completed.
func checkPredecessors(w *domain.WorkOrder, o *domain.ManufacturingOrder) error {
	for _, prev := range o.WorkOrders {
		if prev.Sequence < w.Sequence && prev.Status != domain.WorkOrderCompleted {
			return &domain.InvalidTransitionError{
				Entity: "work order",
				ID:     w.ID,
				From:   string(w.Status),
				To:     string(domain.WorkOrderStarted),
			}
		}
	}
	return nil
}
