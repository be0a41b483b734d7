// Package app is the composition root: it opens storage, picks the order
// locker and wires the services shared by the CLI and the HTTP API.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/alexanderramin/shopfloor/internal/config"
	"github.com/alexanderramin/shopfloor/internal/db"
	"github.com/alexanderramin/shopfloor/internal/lock"
	"github.com/alexanderramin/shopfloor/internal/repository"
	"github.com/alexanderramin/shopfloor/internal/service"
	"github.com/redis/go-redis/v9"
)

// Services holds every use case behind one shared database and locker.
type Services struct {
	Stock       service.StockService
	BOMs        service.BOMService
	Orders      service.OrderService
	WorkOrders  service.WorkOrderService
	WorkCenters service.WorkCenterService
	Status      service.StatusService

	closers []func() error
}

// Options controls how Wire builds the services.
type Options struct {
	Locker          lock.Locker
	EnforceSequence bool
	Observers       []service.UseCaseObserver
}

// Wire builds the services over an open database.
func Wire(database *sql.DB, opts Options) *Services {
	components := repository.NewSQLiteComponentRepo(database)
	movements := repository.NewSQLiteMovementRepo(database)
	boms := repository.NewSQLiteBOMRepo(database)
	orders := repository.NewSQLiteOrderRepo(database)
	workOrders := repository.NewSQLiteWorkOrderRepo(database)
	workCenters := repository.NewSQLiteWorkCenterRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)

	locker := opts.Locker
	if locker == nil {
		locker = lock.NewLocal()
	}

	return &Services{
		Stock:       service.NewStockService(components, movements, uow, opts.Observers...),
		BOMs:        service.NewBOMService(boms, uow, opts.Observers...),
		Orders:      service.NewOrderService(orders, workOrders, uow, locker, opts.Observers...),
		WorkOrders:  service.NewWorkOrderService(workOrders, uow, locker, opts.EnforceSequence, opts.Observers...),
		WorkCenters: service.NewWorkCenterService(workCenters, uow, opts.Observers...),
		Status:      service.NewStatusService(orders, components, boms),
	}
}

// Open opens the configured database, connects to Redis when an address is
// set and wires the services. Close releases both.
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Services, error) {
	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	opts := Options{
		EnforceSequence: cfg.EnforceSequence,
		Observers:       []service.UseCaseObserver{service.NewSlogUseCaseObserver(logger)},
	}
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb, err = lock.Dial(ctx, cfg.RedisAddr)
		if err != nil {
			database.Close()
			return nil, err
		}
		ropts := lock.DefaultRedisOptions()
		ropts.TTL = cfg.LockTTL
		opts.Locker = lock.NewRedis(rdb, ropts, logger)
		logger.Info("using redis order locks", "addr", cfg.RedisAddr)
	}

	s := Wire(database, opts)
	s.closers = append(s.closers, database.Close)
	if rdb != nil {
		s.closers = append(s.closers, rdb.Close)
	}
	return s, nil
}

func (s *Services) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
