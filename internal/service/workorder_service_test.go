package service

import (
	"context"
	"testing"

	"github.com/alexanderramin/shopfloor/internal/domain"
	"github.com/alexanderramin/shopfloor/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStart_AssignsActorAndMovesOrderInProgress(t *testing.T) {
	e := setupEnv(t)
	ctx := WithActor(context.Background(), "alice")
	a := e.component(t, "componentA")
	b := e.bomOf(t, "Widget", testutil.WithLine(a.ID, 1))
	o := e.newOrder(t, b.ID, 1, 2)

	res, err := e.wo.Start(ctx, o.WorkOrders[0].ID)
	require.NoError(t, err)

	require.NotNil(t, res.WorkOrder.AssignedTo)
	assert.Equal(t, "alice", *res.WorkOrder.AssignedTo)
	assert.NotNil(t, res.WorkOrder.StartedAt)
	assert.Equal(t, domain.OrderInProgress, res.Order.Status)
	assert.NotNil(t, res.Order.StartedAt)
	assert.Equal(t, 0, res.Order.Progress)

	stored, err := e.wo.Get(ctx, o.WorkOrders[0].ID)
	require.NoError(t, err)
	assert.Equal(t, domain.WorkOrderStarted, stored.Status)
}

func TestStart_KeepsExistingAssignee(t *testing.T) {
	e := setupEnv(t)
	a := e.component(t, "componentA")
	b := e.bomOf(t, "Widget", testutil.WithLine(a.ID, 1))
	o := e.newOrder(t, b.ID, 1, 1)

	_, err := e.wo.Assign(context.Background(), o.WorkOrders[0].ID, "bob")
	require.NoError(t, err)

	res, err := e.wo.Start(WithActor(context.Background(), "alice"), o.WorkOrders[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", *res.WorkOrder.AssignedTo)
}

func TestPauseAndResume_PreservesStartTime(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	a := e.component(t, "componentA")
	b := e.bomOf(t, "Widget", testutil.WithLine(a.ID, 1))
	o := e.newOrder(t, b.ID, 1, 1)
	id := o.WorkOrders[0].ID

	started, err := e.wo.Start(ctx, id)
	require.NoError(t, err)
	paused, err := e.wo.Pause(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.WorkOrderPaused, paused.WorkOrder.Status)
	assert.Equal(t, domain.OrderInProgress, paused.Order.Status)

	_, err = e.wo.Pause(ctx, id)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	resumed, err := e.wo.Start(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, started.WorkOrder.StartedAt.Unix(), resumed.WorkOrder.StartedAt.Unix())
}

func TestComplete_FromPausedRecordsActualDuration(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	a := e.component(t, "componentA")
	b := e.bomOf(t, "Widget", testutil.WithLine(a.ID, 1))
	o := e.newOrder(t, b.ID, 1, 2)
	id := o.WorkOrders[0].ID

	_, err := e.wo.Start(ctx, id)
	require.NoError(t, err)
	_, err = e.wo.Pause(ctx, id)
	require.NoError(t, err)

	actual := 42
	res, err := e.wo.Complete(ctx, id, CompleteWorkOrderRequest{Notes: "torque checked", ActualDurationMinutes: &actual})
	require.NoError(t, err)
	assert.Equal(t, domain.WorkOrderCompleted, res.WorkOrder.Status)
	require.NotNil(t, res.WorkOrder.ActualDurationMinutes)
	assert.Equal(t, 42, *res.WorkOrder.ActualDurationMinutes)
	assert.Equal(t, "torque checked", res.WorkOrder.Notes)
	assert.Equal(t, 50, res.Order.Progress)
}

func TestComplete_PendingWorkOrderIsInvalid(t *testing.T) {
	e := setupEnv(t)
	a := e.component(t, "componentA")
	b := e.bomOf(t, "Widget", testutil.WithLine(a.ID, 1))
	o := e.newOrder(t, b.ID, 1, 1)

	_, err := e.wo.Complete(context.Background(), o.WorkOrders[0].ID, CompleteWorkOrderRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, domain.OrderPlanned, e.reload(t, o.ID).Status)
}

func TestComplete_RejectsNegativeActualDuration(t *testing.T) {
	e := setupEnv(t)
	negative := -5
	_, err := e.wo.Complete(context.Background(), "any", CompleteWorkOrderRequest{ActualDurationMinutes: &negative})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "actual_duration_minutes", ve.Field)
}

func TestTransition_UnknownWorkOrder(t *testing.T) {
	e := setupEnv(t)
	_, err := e.wo.Start(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSequence_DisplayOrderOnlyByDefault(t *testing.T) {
	e := setupEnv(t)
	a := e.component(t, "componentA")
	b := e.bomOf(t, "Widget", testutil.WithLine(a.ID, 1))
	o := e.newOrder(t, b.ID, 1, 3)

	_, err := e.wo.Start(context.Background(), o.WorkOrders[2].ID)
	assert.NoError(t, err)
}

func TestSequence_EnforcedRequiresPredecessors(t *testing.T) {
	e := newTestEnv(t, testutil.NewTestDB(t), true)
	ctx := context.Background()
	a := e.component(t, "componentA")
	b := e.bomOf(t, "Widget", testutil.WithLine(a.ID, 1))
	o := e.newOrder(t, b.ID, 1, 3)

	_, err := e.wo.Start(ctx, o.WorkOrders[1].ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	e.finish(t, o.WorkOrders[0].ID)
	_, err = e.wo.Start(ctx, o.WorkOrders[1].ID)
	assert.NoError(t, err)

	_, err = e.wo.Start(ctx, o.WorkOrders[2].ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "step 2 is started, not completed")
}

func TestListByOrder_SequenceOrder(t *testing.T) {
	e := setupEnv(t)
	a := e.component(t, "componentA")
	b := e.bomOf(t, "Widget", testutil.WithLine(a.ID, 1))
	o := e.newOrder(t, b.ID, 1, 3)

	wos, err := e.wo.ListByOrder(context.Background(), o.ID)
	require.NoError(t, err)
	require.Len(t, wos, 3)
	for i, w := range wos {
		assert.Equal(t, i+1, w.Sequence)
		assert.Equal(t, o.WorkOrders[i].ID, w.ID)
	}
}
