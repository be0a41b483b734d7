package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/shopfloor/internal/db"
	"github.com/alexanderramin/shopfloor/internal/domain"
	"github.com/alexanderramin/shopfloor/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type workCenterService struct {
	workCenters repository.WorkCenterRepo
	uow         db.UnitOfWork
	observer    UseCaseObserver
}

func NewWorkCenterService(
	workCenters repository.WorkCenterRepo,
	uow db.UnitOfWork,
	observers ...UseCaseObserver,
) WorkCenterService {
	return &workCenterService{
		workCenters: workCenters,
		uow:         uow,
		observer:    useCaseObserverOrNoop(observers),
	}
}

func (s *workCenterService) Create(ctx context.Context, req CreateWorkCenterRequest) (wc *domain.WorkCenter, err error) {
	startedAt := time.Now()
	fields := map[string]any{"name": req.Name}
	defer func() { observeUseCase(ctx, s.observer, "create-work-center", startedAt, fields, err) }()

	if err := validateRequest(req); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	wc = &domain.WorkCenter{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		CostPerHour: req.CostPerHour,
		Capacity:    1,
		Efficiency:  decimal.NewFromInt(1),
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Capacity != nil {
		wc.Capacity = *req.Capacity
	}
	if req.Efficiency != nil {
		wc.Efficiency = *req.Efficiency
	}
	if err := wc.Validate(); err != nil {
		return nil, err
	}
	if err := s.workCenters.Create(ctx, wc); err != nil {
		return nil, err
	}
	fields["work_center_id"] = wc.ID
	return wc, nil
}

func (s *workCenterService) Get(ctx context.Context, idOrName string) (*domain.WorkCenter, error) {
	wc, err := s.workCenters.GetByID(ctx, idOrName)
	var nf *domain.NotFoundError
	if errors.As(err, &nf) {
		return s.workCenters.GetByName(ctx, idOrName)
	}
	return wc, err
}

func (s *workCenterService) List(ctx context.Context, includeInactive bool) ([]*domain.WorkCenter, error) {
	return s.workCenters.List(ctx, includeInactive)
}

func (s *workCenterService) Update(ctx context.Context, id string, req UpdateWorkCenterRequest) (wc *domain.WorkCenter, err error) {
	startedAt := time.Now()
	fields := map[string]any{"work_center_id": id}
	defer func() { observeUseCase(ctx, s.observer, "update-work-center", startedAt, fields, err) }()

	if err := validateRequest(req); err != nil {
		return nil, err
	}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repos := newTxRepos(tx)
		current, err := repos.workCenters.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if req.Name != nil {
			current.Name = strings.TrimSpace(*req.Name)
		}
		if req.Description != nil {
			current.Description = *req.Description
		}
		if req.CostPerHour != nil {
			current.CostPerHour = *req.CostPerHour
		}
		if req.Capacity != nil {
			current.Capacity = *req.Capacity
		}
		if req.Efficiency != nil {
			current.Efficiency = *req.Efficiency
		}
		if err := current.Validate(); err != nil {
			return err
		}
		if req.Active != nil {
			if current.Active && !*req.Active {
				if err := requireIdle(ctx, repos, current); err != nil {
					return err
				}
			}
			current.Active = *req.Active
		}
		current.UpdatedAt = time.Now().UTC()
		if err := repos.workCenters.Update(ctx, current); err != nil {
			return err
		}
		wc = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return wc, nil
}

func (s *workCenterService) Deactivate(ctx context.Context, id string) (*domain.WorkCenter, error) {
	inactive := false
	return s.Update(ctx, id, UpdateWorkCenterRequest{Active: &inactive})
}

func (s *workCenterService) Load(ctx context.Context) ([]*domain.WorkCenterLoad, error) {
	return s.workCenters.Load(ctx)
}

// requireIdle rejects deactivating a center that open work orders still use.
func requireIdle(ctx context.Context, repos *txRepos, wc *domain.WorkCenter) error {
	n, err := repos.workCenters.CountOpenWorkOrders(ctx, wc.ID)
	if err != nil {
		return err
	}
	if n > 0 {
		return &domain.ConflictError{
			Entity: "work center",
			ID:     wc.ID,
			Reason: fmt.Sprintf("%d open work order(s) still routed through %s", n, wc.Name),
		}
	}
	return nil
}
