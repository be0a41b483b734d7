package service

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/shopfloor/internal/domain"
	"github.com/alexanderramin/shopfloor/internal/repository"
	"github.com/alexanderramin/shopfloor/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func TestCreateWorkCenter_DefaultsAndValidation(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()

	wc, err := e.wc.Create(ctx, CreateWorkCenterRequest{
		Name:        "  Lathe 1 ",
		CostPerHour: decimal.RequireFromString("42.50"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Lathe 1", wc.Name)
	assert.Equal(t, 1, wc.Capacity)
	assert.True(t, wc.Efficiency.Equal(decimal.NewFromInt(1)))
	assert.True(t, wc.Active)

	byName, err := e.wc.Get(ctx, "lathe 1")
	require.NoError(t, err)
	assert.Equal(t, wc.ID, byName.ID)
	assert.Equal(t, "42.5", byName.CostPerHour.String())

	_, err = e.wc.Create(ctx, CreateWorkCenterRequest{Name: "LATHE 1"})
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)

	_, err = e.wc.Create(ctx, CreateWorkCenterRequest{Name: "Mill", CostPerHour: decimal.NewFromInt(-1)})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "cost_per_hour", ve.Field)

	_, err = e.wc.Create(ctx, CreateWorkCenterRequest{Name: "Mill", Capacity: intPtr(0)})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "capacity", ve.Field)

	zero := decimal.Zero
	_, err = e.wc.Create(ctx, CreateWorkCenterRequest{Name: "Mill", Efficiency: &zero})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "efficiency", ve.Field)

	_, err = e.wc.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateOrder_RoutedOperationsCarryEstimatedCost(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	a := e.component(t, "componentA")
	b := e.bomOf(t, "Widget", testutil.WithLine(a.ID, 1))
	weld := e.workCenter(t, "Welding", testutil.WithRate("90"))

	res, err := e.order.Create(ctx, CreateOrderRequest{
		ProductName: "Frame",
		Quantity:    1,
		BOMID:       b.ID,
		Deadline:    time.Now().Add(time.Hour),
		Operations: []OperationRequest{
			{Name: "Cut", DurationMinutes: 20},
			{Name: "Weld", DurationMinutes: 30, WorkCenterID: weld.ID},
		},
	})
	require.NoError(t, err)

	o := e.reload(t, res.Order.ID)
	require.Len(t, o.WorkOrders, 2)
	assert.Nil(t, o.WorkOrders[0].WorkCenterID)
	assert.Nil(t, o.WorkOrders[0].EstimatedCost)

	welded := o.WorkOrders[1]
	require.NotNil(t, welded.WorkCenterID)
	assert.Equal(t, weld.ID, *welded.WorkCenterID)
	assert.Equal(t, "Welding", welded.WorkCenterName)
	require.NotNil(t, welded.EstimatedCost)
	assert.Equal(t, "45", welded.EstimatedCost.String())
	assert.Nil(t, welded.ActualCost)
}

func TestCreateOrder_InactiveOrUnknownWorkCenterRejected(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	a := e.component(t, "componentA")
	b := e.bomOf(t, "Widget", testutil.WithLine(a.ID, 1))
	retired := e.workCenter(t, "Old Press", testutil.Inactive())

	for _, id := range []string{retired.ID, "no-such-center"} {
		_, err := e.order.Create(ctx, CreateOrderRequest{
			ProductName: "Frame",
			Quantity:    1,
			BOMID:       b.ID,
			Deadline:    time.Now().Add(time.Hour),
			Operations:  []OperationRequest{{Name: "Press", DurationMinutes: 10, WorkCenterID: id}},
		})
		assert.ErrorIs(t, err, domain.ErrNotFound, id)
	}

	orders, err := e.order.List(ctx, repository.OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCompleteWorkOrder_RecordsActualCostAtCenterRate(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	a := e.component(t, "componentA", testutil.WithQuantity(10))
	b := e.bomOf(t, "Widget", testutil.WithLine(a.ID, 1))
	lathe := e.workCenter(t, "Lathe", testutil.WithRate("60"))

	res, err := e.order.Create(ctx, CreateOrderRequest{
		ProductName: "Shaft",
		Quantity:    2,
		BOMID:       b.ID,
		Deadline:    time.Now().Add(time.Hour),
		Operations: []OperationRequest{
			{Name: "Turn", DurationMinutes: 30, WorkCenterID: lathe.ID},
			{Name: "Inspect", DurationMinutes: 10},
		},
	})
	require.NoError(t, err)
	turn := res.Order.WorkOrders[0]
	inspect := res.Order.WorkOrders[1]

	_, err = e.wo.Start(ctx, turn.ID)
	require.NoError(t, err)
	done, err := e.wo.Complete(ctx, turn.ID, CompleteWorkOrderRequest{ActualDurationMinutes: intPtr(45)})
	require.NoError(t, err)
	require.NotNil(t, done.WorkOrder.ActualCost)
	assert.Equal(t, "45", done.WorkOrder.ActualCost.String())

	stored, err := e.wo.Get(ctx, turn.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ActualCost)
	assert.Equal(t, "45", stored.ActualCost.String())
	assert.Equal(t, "30", stored.EstimatedCost.String())

	last := e.finish(t, inspect.ID)
	assert.Nil(t, last.WorkOrder.ActualCost)
	assert.Equal(t, domain.OrderDone, last.Order.Status)
	assert.Equal(t, 8, e.quantity(t, a.ID))
}

func TestCompleteWorkOrder_CostRolledBackWithBlockedCompletion(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	a := e.component(t, "componentA", testutil.WithQuantity(0))
	b := e.bomOf(t, "Widget", testutil.WithLine(a.ID, 1))
	lathe := e.workCenter(t, "Lathe")

	res, err := e.order.Create(ctx, CreateOrderRequest{
		ProductName: "Shaft",
		Quantity:    1,
		BOMID:       b.ID,
		Deadline:    time.Now().Add(time.Hour),
		Operations:  []OperationRequest{{Name: "Turn", DurationMinutes: 30, WorkCenterID: lathe.ID}},
	})
	require.NoError(t, err)
	turn := res.Order.WorkOrders[0]

	_, err = e.wo.Start(ctx, turn.ID)
	require.NoError(t, err)
	_, err = e.wo.Complete(ctx, turn.ID, CompleteWorkOrderRequest{ActualDurationMinutes: intPtr(20)})
	require.ErrorIs(t, err, domain.ErrCompletionBlocked)

	stored, err := e.wo.Get(ctx, turn.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.WorkOrderStarted, stored.Status)
	assert.Nil(t, stored.ActualCost)
}

func TestForceCompleteOrder_PricesEveryRoutedWorkOrder(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	a := e.component(t, "componentA", testutil.WithQuantity(5))
	b := e.bomOf(t, "Widget", testutil.WithLine(a.ID, 1))
	paint := e.workCenter(t, "Paint Booth", testutil.WithRate("120"))

	res, err := e.order.Create(ctx, CreateOrderRequest{
		ProductName: "Panel",
		Quantity:    1,
		BOMID:       b.ID,
		Deadline:    time.Now().Add(time.Hour),
		Operations: []OperationRequest{
			{Name: "Prime", DurationMinutes: 15, WorkCenterID: paint.ID},
			{Name: "Topcoat", DurationMinutes: 15, WorkCenterID: paint.ID},
		},
	})
	require.NoError(t, err)

	o, err := e.order.Complete(ctx, res.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderDone, o.Status)
	for _, w := range e.reload(t, o.ID).WorkOrders {
		require.NotNil(t, w.ActualCost, w.Name)
		assert.True(t, w.ActualCost.IsZero(), w.Name)
		assert.Equal(t, "30", w.EstimatedCost.String(), w.Name)
	}
}

func TestDeactivateWorkCenter_BlockedWhileWorkIsOpen(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	a := e.component(t, "componentA", testutil.WithQuantity(5))
	b := e.bomOf(t, "Widget", testutil.WithLine(a.ID, 1))
	press := e.workCenter(t, "Press")

	res, err := e.order.Create(ctx, CreateOrderRequest{
		ProductName: "Bracket",
		Quantity:    1,
		BOMID:       b.ID,
		Deadline:    time.Now().Add(time.Hour),
		Operations:  []OperationRequest{{Name: "Stamp", DurationMinutes: 5, WorkCenterID: press.ID}},
	})
	require.NoError(t, err)

	_, err = e.wc.Deactivate(ctx, press.ID)
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Contains(t, conflict.Reason, "1 open work order")

	e.finish(t, res.Order.WorkOrders[0].ID)

	wc, err := e.wc.Deactivate(ctx, press.ID)
	require.NoError(t, err)
	assert.False(t, wc.Active)

	active, err := e.wc.List(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, active)
	all, err := e.wc.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	on := true
	wc, err = e.wc.Update(ctx, press.ID, UpdateWorkCenterRequest{Active: &on, CostPerHour: ptrDecimal("75")})
	require.NoError(t, err)
	assert.True(t, wc.Active)
	assert.Equal(t, "75", wc.CostPerHour.String())
}

func TestWorkCenterLoad_AggregatesPlannedAndActualWork(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	a := e.component(t, "componentA", testutil.WithQuantity(10))
	b := e.bomOf(t, "Widget", testutil.WithLine(a.ID, 1))
	mill := e.workCenter(t, "Mill", testutil.WithRate("60"))
	e.workCenter(t, "Idle Cell")

	create := func() *domain.ManufacturingOrder {
		res, err := e.order.Create(ctx, CreateOrderRequest{
			ProductName: "Block",
			Quantity:    1,
			BOMID:       b.ID,
			Deadline:    time.Now().Add(time.Hour),
			Operations: []OperationRequest{
				{Name: "Rough", DurationMinutes: 30, WorkCenterID: mill.ID},
				{Name: "Finish", DurationMinutes: 20, WorkCenterID: mill.ID},
			},
		})
		require.NoError(t, err)
		return res.Order
	}
	first := create()
	canceled := create()

	_, err := e.wo.Start(ctx, first.WorkOrders[0].ID)
	require.NoError(t, err)
	_, err = e.wo.Complete(ctx, first.WorkOrders[0].ID, CompleteWorkOrderRequest{ActualDurationMinutes: intPtr(40)})
	require.NoError(t, err)
	_, err = e.order.Cancel(ctx, canceled.ID)
	require.NoError(t, err)

	load, err := e.wc.Load(ctx)
	require.NoError(t, err)
	require.Len(t, load, 2)

	idle := load[0]
	assert.Equal(t, "Idle Cell", idle.WorkCenterName)
	assert.Zero(t, idle.OpenWorkOrders)
	assert.True(t, idle.EstimatedCost.IsZero())

	m := load[1]
	assert.Equal(t, mill.ID, m.WorkCenterID)
	assert.Equal(t, 1, m.OpenWorkOrders)
	assert.Equal(t, 1, m.Completed)
	assert.Equal(t, 50, m.PlannedMinutes)
	assert.Equal(t, 40, m.ActualMinutes)
	assert.Equal(t, "50", m.EstimatedCost.String())
	assert.Equal(t, "40", m.ActualCost.String())
}

func ptrDecimal(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
