package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/alexanderramin/shopfloor/internal/db"
	"github.com/alexanderramin/shopfloor/internal/domain"
	"github.com/alexanderramin/shopfloor/internal/lock"
	"github.com/alexanderramin/shopfloor/internal/repository"
	"github.com/alexanderramin/shopfloor/internal/testutil"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	db         *sql.DB
	uow        db.UnitOfWork
	locker     lock.Locker
	components *repository.SQLiteComponentRepo
	boms       *repository.SQLiteBOMRepo
	orders     *repository.SQLiteOrderRepo
	workOrders *repository.SQLiteWorkOrderRepo
	movements  *repository.SQLiteMovementRepo
	centers    *repository.SQLiteWorkCenterRepo

	stock  StockService
	bom    BOMService
	order  OrderService
	wo     WorkOrderService
	status StatusService
	wc     WorkCenterService
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnv(t, testutil.NewTestDB(t), false)
}

func newTestEnv(t *testing.T, database *sql.DB, enforceSequence bool) *testEnv {
	t.Helper()
	e := &testEnv{
		db:         database,
		uow:        testutil.NewTestUoW(database),
		locker:     lock.NewLocal(),
		components: repository.NewSQLiteComponentRepo(database),
		boms:       repository.NewSQLiteBOMRepo(database),
		orders:     repository.NewSQLiteOrderRepo(database),
		workOrders: repository.NewSQLiteWorkOrderRepo(database),
		movements:  repository.NewSQLiteMovementRepo(database),
		centers:    repository.NewSQLiteWorkCenterRepo(database),
	}
	e.rewire(e.uow, enforceSequence)
	return e
}

// rewire rebuilds the services over uow, e.g. a failure-injecting one.
func (e *testEnv) rewire(uow db.UnitOfWork, enforceSequence bool) {
	e.stock = NewStockService(e.components, e.movements, uow)
	e.bom = NewBOMService(e.boms, uow)
	e.order = NewOrderService(e.orders, e.workOrders, uow, e.locker)
	e.wo = NewWorkOrderService(e.workOrders, uow, e.locker, enforceSequence)
	e.status = NewStatusService(e.orders, e.components, e.boms)
	e.wc = NewWorkCenterService(e.centers, uow)
}

func (e *testEnv) workCenter(t *testing.T, name string, opts ...testutil.WorkCenterOption) *domain.WorkCenter {
	t.Helper()
	wc := testutil.NewTestWorkCenter(name, opts...)
	require.NoError(t, e.centers.Create(context.Background(), wc))
	return wc
}

func (e *testEnv) component(t *testing.T, name string, opts ...testutil.ComponentOption) *domain.Component {
	t.Helper()
	c := testutil.NewTestComponent(name, opts...)
	require.NoError(t, e.components.Create(context.Background(), c))
	return c
}

func (e *testEnv) bomOf(t *testing.T, name string, opts ...testutil.BOMOption) *domain.BillOfMaterials {
	t.Helper()
	b := testutil.NewTestBOM(name, opts...)
	require.NoError(t, e.boms.Create(context.Background(), b))
	return b
}

// newOrder creates an order through the service with n operations.
func (e *testEnv) newOrder(t *testing.T, bomID string, qty, n int) *domain.ManufacturingOrder {
	t.Helper()
	req := CreateOrderRequest{
		ProductName: "Widget",
		Quantity:    qty,
		BOMID:       bomID,
		Deadline:    time.Now().Add(72 * time.Hour),
	}
	for i := 0; i < n; i++ {
		req.Operations = append(req.Operations, OperationRequest{
			Name:            "Step " + string(rune('A'+i)),
			DurationMinutes: 30,
		})
	}
	res, err := e.order.Create(context.Background(), req)
	require.NoError(t, err)
	return res.Order
}

func (e *testEnv) quantity(t *testing.T, componentID string) int {
	t.Helper()
	c, err := e.components.GetByID(context.Background(), componentID)
	require.NoError(t, err)
	return c.QuantityOnHand
}

func (e *testEnv) reload(t *testing.T, orderID string) *domain.ManufacturingOrder {
	t.Helper()
	o, err := e.order.Get(context.Background(), orderID)
	require.NoError(t, err)
	return o
}

// finish starts and completes a work order.
func (e *testEnv) finish(t *testing.T, woID string) *TransitionResult {
	t.Helper()
	ctx := context.Background()
	_, err := e.wo.Start(ctx, woID)
	require.NoError(t, err)
	res, err := e.wo.Complete(ctx, woID, CompleteWorkOrderRequest{})
	require.NoError(t, err)
	return res
}
