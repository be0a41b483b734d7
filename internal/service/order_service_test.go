package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/shopfloor/internal/domain"
	"github.com/alexanderramin/shopfloor/internal/repository"
	"github.com/alexanderramin/shopfloor/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrder_DefaultRoutingAndReference(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	a := e.component(t, "componentA")
	b := e.bomOf(t, "Widget", testutil.WithLine(a.ID, 1))

	res, err := e.order.Create(ctx, CreateOrderRequest{
		ProductName: "Gearbox",
		Quantity:    2,
		BOMID:       b.ID,
		Deadline:    time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	o := res.Order
	assert.Equal(t, "MO-0001", o.Reference)
	assert.Equal(t, domain.OrderPlanned, o.Status)
	assert.Equal(t, domain.PriorityMedium, o.Priority)
	assert.Equal(t, "Widget", o.BOMName)
	assert.Equal(t, 1, o.BOMVersion)
	require.Len(t, o.WorkOrders, 1)
	assert.Equal(t, "Assembly - Gearbox", o.WorkOrders[0].Name)
	assert.Equal(t, domain.DefaultOperationMinutes, o.WorkOrders[0].DurationMinutes)
	assert.Equal(t, 1, o.WorkOrders[0].Sequence)
	assert.Empty(t, res.StockWarnings)

	second := e.newOrder(t, b.ID, 1, 1)
	assert.Equal(t, "MO-0002", second.Reference)

	byRef, err := e.order.Get(ctx, "mo-0001")
	require.NoError(t, err)
	assert.Equal(t, o.ID, byRef.ID)
	assert.Len(t, byRef.WorkOrders, 1)
}

func TestCreateOrder_RoutingKeepsGivenOrder(t *testing.T) {
	e := setupEnv(t)
	a := e.component(t, "componentA")
	b := e.bomOf(t, "Widget", testutil.WithLine(a.ID, 1))

	res, err := e.order.Create(context.Background(), CreateOrderRequest{
		ProductName: "Gearbox",
		Quantity:    1,
		BOMID:       b.ID,
		Deadline:    time.Now().Add(time.Hour),
		Priority:    "High",
		Operations: []OperationRequest{
			{Name: "Cut", DurationMinutes: 15},
			{Name: "Weld", DurationMinutes: 45, AssignedTo: "carol"},
			{Name: "Paint", DurationMinutes: 20},
		},
	})
	require.NoError(t, err)

	stored := e.reload(t, res.Order.ID)
	require.Len(t, stored.WorkOrders, 3)
	assert.Equal(t, []string{"Cut", "Weld", "Paint"}, []string{
		stored.WorkOrders[0].Name, stored.WorkOrders[1].Name, stored.WorkOrders[2].Name,
	})
	require.NotNil(t, stored.WorkOrders[1].AssignedTo)
	assert.Equal(t, "carol", *stored.WorkOrders[1].AssignedTo)
	assert.Equal(t, domain.PriorityHigh, stored.Priority)
}

func TestCreateOrder_ShortagesAreWarningsOnly(t *testing.T) {
	e := setupEnv(t)
	a := e.component(t, "componentA", testutil.WithQuantity(3))
	b := e.bomOf(t, "Widget", testutil.WithLine(a.ID, 2))

	res, err := e.order.Create(context.Background(), CreateOrderRequest{
		ProductName: "Gearbox",
		Quantity:    5,
		BOMID:       b.ID,
		Deadline:    time.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	require.Len(t, res.StockWarnings, 1)
	assert.Equal(t, 10, res.StockWarnings[0].Required)
	assert.Equal(t, 3, res.StockWarnings[0].Available)
	assert.Equal(t, 7, res.StockWarnings[0].Shortfall())
	assert.Equal(t, 3, e.quantity(t, a.ID), "nothing reserved")
}

func TestCreateOrder_Validation(t *testing.T) {
	e := setupEnv(t)
	a := e.component(t, "componentA")
	b := e.bomOf(t, "Widget", testutil.WithLine(a.ID, 1))
	valid := func() CreateOrderRequest {
		return CreateOrderRequest{
			ProductName: "Gearbox",
			Quantity:    1,
			BOMID:       b.ID,
			Deadline:    time.Now().Add(time.Hour),
		}
	}

	tests := []struct {
		name  string
		mod   func(*CreateOrderRequest)
		field string
	}{
		{"zero quantity", func(r *CreateOrderRequest) { r.Quantity = 0 }, "quantity"},
		{"empty product", func(r *CreateOrderRequest) { r.ProductName = "" }, "product_name"},
		{"past deadline", func(r *CreateOrderRequest) { r.Deadline = time.Now().Add(-time.Hour) }, "deadline"},
		{"missing deadline", func(r *CreateOrderRequest) { r.Deadline = time.Time{} }, "deadline"},
		{"unknown priority", func(r *CreateOrderRequest) { r.Priority = "Whenever" }, "priority"},
		{"zero duration", func(r *CreateOrderRequest) {
			r.Operations = []OperationRequest{{Name: "Cut", DurationMinutes: 0}}
		}, "operations[0].duration_minutes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mod(&req)
			_, err := e.order.Create(context.Background(), req)
			var ve *domain.ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, tt.field, ve.Field)
		})
	}

	orders, err := e.order.List(context.Background(), repository.OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCreateOrder_UnknownOrArchivedBOM(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	a := e.component(t, "componentA")
	b := e.bomOf(t, "Widget", testutil.WithLine(a.ID, 1))
	require.NoError(t, e.bom.Delete(ctx, b.ID))

	for _, id := range []string{"missing", b.ID} {
		_, err := e.order.Create(ctx, CreateOrderRequest{
			ProductName: "Gearbox",
			Quantity:    1,
			BOMID:       id,
			Deadline:    time.Now().Add(time.Hour),
		})
		assert.ErrorIs(t, err, domain.ErrNotFound, id)
	}
}

func TestCancelOrder_CancelsOpenWorkOrders(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	a := e.component(t, "componentA", testutil.WithQuantity(10))
	b := e.bomOf(t, "Widget", testutil.WithLine(a.ID, 1))
	o := e.newOrder(t, b.ID, 1, 3)
	e.finish(t, o.WorkOrders[0].ID)
	_, err := e.wo.Start(ctx, o.WorkOrders[1].ID)
	require.NoError(t, err)

	canceled, err := e.order.Cancel(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCanceled, canceled.Status)
	assert.NotNil(t, canceled.CanceledAt)

	stored := e.reload(t, o.ID)
	assert.Equal(t, domain.WorkOrderCompleted, stored.WorkOrders[0].Status)
	assert.Equal(t, domain.WorkOrderCanceled, stored.WorkOrders[1].Status)
	assert.Equal(t, domain.WorkOrderCanceled, stored.WorkOrders[2].Status)
	assert.Equal(t, 33, stored.Progress)
	assert.Equal(t, 10, e.quantity(t, a.ID))

	_, err = e.order.Cancel(ctx, o.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
	_, err = e.wo.Start(ctx, o.WorkOrders[2].ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCompleteOrder_ForceCompletesAndDebits(t *testing.T) {
	e := setupEnv(t)
	ctx := WithActor(context.Background(), "supervisor")
	a := e.component(t, "componentA", testutil.WithQuantity(10))
	b := e.bomOf(t, "Widget", testutil.WithLine(a.ID, 2))
	o := e.newOrder(t, b.ID, 3, 3)
	e.finish(t, o.WorkOrders[0].ID)

	done, err := e.order.Complete(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderDone, done.Status)
	assert.Equal(t, 100, done.Progress)
	for _, w := range done.WorkOrders {
		assert.Equal(t, domain.WorkOrderCompleted, w.Status)
		assert.NotNil(t, w.ActualDurationMinutes)
	}
	assert.Equal(t, 4, e.quantity(t, a.ID))

	moves, err := e.stock.Movements(ctx, a.ID, 10)
	require.NoError(t, err)
	require.NotEmpty(t, moves)
	assert.Equal(t, domain.MovementOut, moves[0].Type)
	assert.Equal(t, 6, moves[0].Quantity)
	assert.Equal(t, 4, moves[0].BalanceAfter)
	assert.Equal(t, "supervisor", moves[0].CreatedBy)
	assert.Contains(t, moves[0].Reference, o.Reference)

	_, err = e.order.Complete(ctx, o.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestUpdateOrder_OnlyWhilePlanned(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	a := e.component(t, "componentA")
	b := e.bomOf(t, "Widget", testutil.WithLine(a.ID, 1))
	o := e.newOrder(t, b.ID, 1, 1)

	name := "Gearbox Mk2"
	priority := "Urgent"
	qty := 4
	updated, err := e.order.Update(ctx, o.Reference, UpdateOrderRequest{ProductName: &name, Priority: &priority, Quantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, name, updated.ProductName)
	assert.Equal(t, domain.PriorityUrgent, updated.Priority)
	assert.Equal(t, 4, updated.Quantity)
	assert.Equal(t, o.Version+1, updated.Version)

	_, err = e.wo.Start(ctx, o.WorkOrders[0].ID)
	require.NoError(t, err)
	_, err = e.order.Update(ctx, o.ID, UpdateOrderRequest{ProductName: &name})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestDeleteOrder_OnlyPlannedOrCanceled(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	a := e.component(t, "componentA")
	b := e.bomOf(t, "Widget", testutil.WithLine(a.ID, 1))

	planned := e.newOrder(t, b.ID, 1, 1)
	require.NoError(t, e.order.Delete(ctx, planned.ID))
	_, err := e.order.Get(ctx, planned.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = e.wo.Get(ctx, planned.WorkOrders[0].ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "work orders cascade")

	running := e.newOrder(t, b.ID, 1, 1)
	_, err = e.wo.Start(ctx, running.WorkOrders[0].ID)
	require.NoError(t, err)
	assert.ErrorIs(t, e.order.Delete(ctx, running.ID), domain.ErrConflict)

	_, err = e.order.Cancel(ctx, running.ID)
	require.NoError(t, err)
	assert.NoError(t, e.order.Delete(ctx, running.ID))
}

func TestListOrders_FilterByStatus(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	a := e.component(t, "componentA")
	b := e.bomOf(t, "Widget", testutil.WithLine(a.ID, 1))
	e.newOrder(t, b.ID, 1, 1)
	started := e.newOrder(t, b.ID, 1, 1)
	_, err := e.wo.Start(ctx, started.WorkOrders[0].ID)
	require.NoError(t, err)

	all, err := e.order.List(ctx, repository.OrderFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	inProgress, err := e.order.List(ctx, repository.OrderFilter{Status: domain.OrderInProgress})
	require.NoError(t, err)
	require.Len(t, inProgress, 1)
	assert.Equal(t, started.ID, inProgress[0].ID)
}

func TestCreateOrder_QuantityOverflowingRequirementsIsRejected(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	bolt := e.component(t, "Bolt", testutil.WithQuantity(10))
	b := e.bomOf(t, "Bracket", testutil.WithLine(bolt.ID, 4))

	_, err := e.order.Create(ctx, CreateOrderRequest{
		ProductName: "Bracket",
		Quantity:    1<<62 + 1,
		BOMID:       b.ID,
		Deadline:    time.Now().Add(time.Hour),
	})
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve), "got %v", err)
	assert.Equal(t, "quantity", ve.Field)

	orders, err := e.order.List(ctx, repository.OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, orders)

	o := e.newOrder(t, b.ID, 1, 1)
	huge := 1<<62 + 1
	_, err = e.order.Update(ctx, o.ID, UpdateOrderRequest{Quantity: &huge})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 1, e.reload(t, o.ID).Quantity)
}

func TestCompleteWorkOrder_OverflowingRequirementsConsumeNothing(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	bolt := e.component(t, "Bolt", testutil.WithQuantity(10))
	b := e.bomOf(t, "Bracket", testutil.WithLine(bolt.ID, 4))

	// Stored directly so the order skips the create-time check.
	o := testutil.NewTestOrder(b.ID, "Bracket", testutil.WithOrderQuantity(1<<62+1))
	require.NoError(t, e.orders.Create(ctx, o))
	w := testutil.NewTestWorkOrder(o.ID, 1, "Assemble")
	require.NoError(t, e.workOrders.Create(ctx, w))

	_, err := e.wo.Start(ctx, w.ID)
	require.NoError(t, err)
	_, err = e.wo.Complete(ctx, w.ID, CompleteWorkOrderRequest{})
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.Equal(t, 10, e.quantity(t, bolt.ID))
	stored := e.reload(t, o.ID)
	assert.Equal(t, domain.OrderInProgress, stored.Status)
	assert.Equal(t, domain.WorkOrderStarted, stored.WorkOrders[0].Status)
}
