package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/shopfloor/internal/db"
	"github.com/alexanderramin/shopfloor/internal/domain"
	"github.com/alexanderramin/shopfloor/internal/lock"
	"github.com/alexanderramin/shopfloor/internal/repository"
)

// txRepos bundles the repositories bound to one transaction.
type txRepos struct {
	orders      *repository.SQLiteOrderRepo
	workOrders  *repository.SQLiteWorkOrderRepo
	boms        *repository.SQLiteBOMRepo
	components  *repository.SQLiteComponentRepo
	movements   *repository.SQLiteMovementRepo
	sequences   *repository.SQLiteOrderSequenceRepo
	workCenters *repository.SQLiteWorkCenterRepo
}

func newTxRepos(tx db.DBTX) *txRepos {
	return &txRepos{
		orders:      repository.NewSQLiteOrderRepo(tx),
		workOrders:  repository.NewSQLiteWorkOrderRepo(tx),
		boms:        repository.NewSQLiteBOMRepo(tx),
		components:  repository.NewSQLiteComponentRepo(tx),
		movements:   repository.NewSQLiteMovementRepo(tx),
		sequences:   repository.NewSQLiteOrderSequenceRepo(tx),
		workCenters: repository.NewSQLiteWorkCenterRepo(tx),
	}
}

// loadOrder reads an order together with its work orders.
func (r *txRepos) loadOrder(ctx context.Context, id string) (*domain.ManufacturingOrder, error) {
	o, err := r.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	wos, err := r.workOrders.ListByOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	o.WorkOrders = wos
	return o, nil
}

// orderMutation changes an order or its work orders in memory and returns
// the work orders it touched.
type orderMutation func(ctx context.Context, repos *txRepos, o *domain.ManufacturingOrder, now time.Time) ([]*domain.WorkOrder, error)

// cascade applies work order and order mutations under the per-order lock
// and settles the order's derived state before the transaction commits.
type cascade struct {
	uow    db.UnitOfWork
	locker lock.Locker
	now    func() time.Time
}

func newCascade(uow db.UnitOfWork, locker lock.Locker) *cascade {
	if locker == nil {
		locker = lock.NewLocal()
	}
	return &cascade{uow: uow, locker: locker, now: func() time.Time { return time.Now().UTC() }}
}

// mutate locks orderID, loads it, rejects terminal orders, applies fn,
// then recomputes progress and status. When every work order is completed
// the BOM requirements are debited; any shortage aborts the whole
// transaction, including fn's changes.
func (c *cascade) mutate(ctx context.Context, orderID string, fn orderMutation) (*domain.ManufacturingOrder, error) {
	unlock, err := c.locker.Lock(ctx, lock.OrderKey(orderID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	var result *domain.ManufacturingOrder
	err = c.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repos := newTxRepos(tx)
		o, err := repos.loadOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if o.Status.IsTerminal() {
			return &domain.ConflictError{
				Entity: "manufacturing order",
				ID:     o.ID,
				Reason: fmt.Sprintf("order is %s", o.Status),
			}
		}

		now := c.now()
		touched, err := fn(ctx, repos, o, now)
		if err != nil {
			return err
		}
		if err := priceCompleted(ctx, repos, touched); err != nil {
			return err
		}
		if err := c.settle(ctx, repos, o, now); err != nil {
			return err
		}

		for _, w := range touched {
			if err := repos.workOrders.Update(ctx, w); err != nil {
				return err
			}
		}
		if err := repos.orders.Update(ctx, o); err != nil {
			return err
		}
		result = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// priceCompleted records the actual cost of touched work orders that were
// completed on a work center, at the center's current rate.
func priceCompleted(ctx context.Context, repos *txRepos, touched []*domain.WorkOrder) error {
	centers := map[string]*domain.WorkCenter{}
	for _, w := range touched {
		if w.Status != domain.WorkOrderCompleted || w.WorkCenterID == nil {
			continue
		}
		wc, ok := centers[*w.WorkCenterID]
		if !ok {
			var err error
			if wc, err = repos.workCenters.GetByID(ctx, *w.WorkCenterID); err != nil {
				return err
			}
			centers[wc.ID] = wc
		}
		w.PriceActual(wc)
	}
	return nil
}

// settle derives progress and status from the work orders. A canceled order
// keeps its progress as it was.
func (c *cascade) settle(ctx context.Context, repos *txRepos, o *domain.ManufacturingOrder, now time.Time) error {
	if o.Status == domain.OrderCanceled {
		o.UpdatedAt = now
		return nil
	}
	rollup := domain.Recompute(o.Status, o.WorkOrders)
	o.Progress = rollup.Progress
	o.UpdatedAt = now

	if rollup.Status != o.Status && o.Status == domain.OrderPlanned {
		if err := o.TransitionTo(domain.OrderInProgress, now); err != nil {
			return err
		}
	}
	if !rollup.AllCompleted {
		return nil
	}

	bom, err := repos.boms.GetByID(ctx, o.BOMID)
	if err != nil {
		return fmt.Errorf("loading bom for order %s: %w", o.ID, err)
	}
	reqs, err := bom.Requirements(o.Quantity)
	if err != nil {
		return err
	}
	if err := debitAll(ctx, repos, o, reqs, now); err != nil {
		return err
	}
	return o.TransitionTo(domain.OrderDone, now)
}

// debitAll consumes every requirement in component order. All lines are
// attempted so the caller learns every shortage at once; if any line is
// short a CompletionBlockedError is returned and the caller must roll back.
func debitAll(ctx context.Context, repos *txRepos, o *domain.ManufacturingOrder, reqs []domain.Requirement, now time.Time) error {
	var shortages []*domain.InsufficientStockError
	for _, req := range reqs {
		balance, err := repos.components.Debit(ctx, req.ComponentID, req.Quantity)
		var short *domain.InsufficientStockError
		if errors.As(err, &short) {
			shortages = append(shortages, short)
			continue
		}
		if err != nil {
			return err
		}
		ref := "Consumed by " + o.DisplayID()
		if err := repos.movements.Create(ctx, newMovement(ctx, req.ComponentID, domain.MovementOut, req.Quantity, balance, ref, now)); err != nil {
			return err
		}
	}
	if len(shortages) > 0 {
		return &domain.CompletionBlockedError{OrderID: o.ID, Shortages: shortages}
	}
	return nil
}
