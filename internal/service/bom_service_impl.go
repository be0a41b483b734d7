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
)

type bomService struct {
	boms     repository.BOMRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewBOMService(boms repository.BOMRepo, uow db.UnitOfWork, observers ...UseCaseObserver) BOMService {
	return &bomService{
		boms:     boms,
		uow:      uow,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *bomService) Create(ctx context.Context, req CreateBOMRequest) (b *domain.BillOfMaterials, err error) {
	startedAt := time.Now()
	fields := map[string]any{"name": req.Name, "lines": len(req.Lines)}
	defer func() { observeUseCase(ctx, s.observer, "create-bom", startedAt, fields, err) }()

	if err := validateRequest(req); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, &domain.ValidationError{Field: "name", Reason: "is required"}
	}
	lines, err := buildLines(req.Lines)
	if err != nil {
		return nil, err
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repos := newTxRepos(tx)
		latest, err := repos.boms.LatestVersion(ctx, name)
		if err != nil {
			return err
		}
		if latest > 0 {
			return &domain.DuplicateNameError{Name: name, Version: 1}
		}
		b, err = publish(ctx, repos, name, req.Description, 1, lines)
		return err
	})
	if err != nil {
		return nil, err
	}
	fields["bom_id"] = b.ID
	return b, nil
}

// Revise publishes a new version of the BOM's name. Earlier versions stay
// untouched so orders keep the recipe they were planned with.
func (s *bomService) Revise(ctx context.Context, id string, req ReviseBOMRequest) (b *domain.BillOfMaterials, err error) {
	startedAt := time.Now()
	fields := map[string]any{"base_bom_id": id}
	defer func() { observeUseCase(ctx, s.observer, "revise-bom", startedAt, fields, err) }()

	if err := validateRequest(req); err != nil {
		return nil, err
	}
	lines, err := buildLines(req.Lines)
	if err != nil {
		return nil, err
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repos := newTxRepos(tx)
		base, err := repos.boms.GetByID(ctx, id)
		if err != nil {
			return err
		}
		latest, err := repos.boms.LatestVersion(ctx, base.Name)
		if err != nil {
			return err
		}
		description := base.Description
		if req.Description != nil {
			description = *req.Description
		}
		b, err = publish(ctx, repos, base.Name, description, latest+1, lines)
		return err
	})
	if err != nil {
		return nil, err
	}
	fields["bom_id"] = b.ID
	fields["version"] = b.Version
	return b, nil
}

// buildLines checks line-level rules that struct tags cannot express.
func buildLines(reqs []BOMLineRequest) ([]domain.BOMLine, error) {
	seen := make(map[string]bool, len(reqs))
	lines := make([]domain.BOMLine, 0, len(reqs))
	for i, l := range reqs {
		if seen[l.ComponentID] {
			return nil, &domain.ValidationError{
				Field:  fmt.Sprintf("components[%d].component_id", i),
				Reason: "component listed more than once",
			}
		}
		seen[l.ComponentID] = true
		lines = append(lines, domain.BOMLine{
			ComponentID:      l.ComponentID,
			QuantityRequired: l.QuantityRequired,
			Notes:            l.Notes,
			Position:         i,
		})
	}
	return lines, nil
}

// publish verifies the referenced components and inserts a new BOM row.
// Lines come back priced at current unit costs.
func publish(ctx context.Context, repos *txRepos, name, description string, version int, lines []domain.BOMLine) (*domain.BillOfMaterials, error) {
	for i, l := range lines {
		if _, err := repos.components.GetByID(ctx, l.ComponentID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, &domain.ValidationError{
					Field:  fmt.Sprintf("components[%d].component_id", i),
					Reason: fmt.Sprintf("unknown component %s", l.ComponentID),
				}
			}
			return nil, err
		}
	}
	b := &domain.BillOfMaterials{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		Version:     version,
		Lines:       lines,
		CreatedAt:   time.Now().UTC(),
	}
	if err := repos.boms.Create(ctx, b); err != nil {
		return nil, err
	}
	return repos.boms.GetByID(ctx, b.ID)
}

func (s *bomService) Get(ctx context.Context, id string) (*domain.BillOfMaterials, error) {
	b, err := s.boms.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.IsArchived() {
		return nil, &domain.NotFoundError{Entity: "bom", ID: id}
	}
	return b, nil
}

func (s *bomService) List(ctx context.Context) ([]*domain.BillOfMaterials, error) {
	return s.boms.List(ctx)
}

func (s *bomService) History(ctx context.Context, name string) ([]*domain.BillOfMaterials, error) {
	versions, err := s.boms.ListVersions(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, &domain.NotFoundError{Entity: "bom", ID: name}
	}
	return versions, nil
}

// Delete archives a BOM version. Versions still used by open orders stay.
func (s *bomService) Delete(ctx context.Context, id string) (err error) {
	startedAt := time.Now()
	defer func() {
		observeUseCase(ctx, s.observer, "delete-bom", startedAt, map[string]any{"bom_id": id}, err)
	}()

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repos := newTxRepos(tx)
		b, err := repos.boms.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if b.IsArchived() {
			return &domain.NotFoundError{Entity: "bom", ID: id}
		}
		open, err := repos.orders.CountByBOM(ctx, id, domain.OrderPlanned, domain.OrderInProgress)
		if err != nil {
			return err
		}
		if open > 0 {
			return &domain.ConflictError{
				Entity: "bom",
				ID:     id,
				Reason: fmt.Sprintf("used by %d open manufacturing order(s)", open),
			}
		}
		return repos.boms.Archive(ctx, id, time.Now().UTC())
	})
}
