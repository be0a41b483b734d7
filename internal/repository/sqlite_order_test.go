package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/shopfloor/internal/domain"
	"github.com/alexanderramin/shopfloor/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedBOM(t *testing.T, repo *SQLiteBOMRepo, name string) *domain.BillOfMaterials {
	t.Helper()
	b := testutil.NewTestBOM(name)
	require.NoError(t, repo.Create(context.Background(), b))
	return b
}

func TestOrderRepo_CreateGetWithWorkOrders(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	bomRepo := NewSQLiteBOMRepo(database)
	orderRepo := NewSQLiteOrderRepo(database)
	woRepo := NewSQLiteWorkOrderRepo(database)

	b := seedBOM(t, bomRepo, "Cabinet")
	o := testutil.NewTestOrder(b.ID, "Cabinet", testutil.WithOrderQuantity(3), testutil.WithPriority(domain.PriorityHigh))
	require.NoError(t, orderRepo.Create(ctx, o))

	for i, name := range []string{"Cut", "Assemble", "Finish"} {
		require.NoError(t, woRepo.Create(ctx, testutil.NewTestWorkOrder(o.ID, i+1, name)))
	}

	got, err := orderRepo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cabinet", got.BOMName)
	assert.Equal(t, 1, got.BOMVersion)
	assert.Equal(t, domain.PriorityHigh, got.Priority)
	assert.Equal(t, domain.OrderPlanned, got.Status)
	assert.Equal(t, 1, got.Version)

	byRef, err := orderRepo.GetByReference(ctx, o.Reference)
	require.NoError(t, err)
	assert.Equal(t, o.ID, byRef.ID)

	wos, err := woRepo.ListByOrder(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, wos, 3)
	assert.Equal(t, "Cut", wos[0].Name)
	assert.Equal(t, 3, wos[2].Sequence)
}

func TestOrderRepo_UnknownBOM(t *testing.T) {
	database := testutil.NewTestDB(t)
	orderRepo := NewSQLiteOrderRepo(database)

	err := orderRepo.Create(context.Background(), testutil.NewTestOrder("missing", "X"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOrderRepo_UpdateOptimisticVersion(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	bomRepo := NewSQLiteBOMRepo(database)
	orderRepo := NewSQLiteOrderRepo(database)

	b := seedBOM(t, bomRepo, "Lamp")
	o := testutil.NewTestOrder(b.ID, "Lamp")
	require.NoError(t, orderRepo.Create(ctx, o))

	first, err := orderRepo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	stale, err := orderRepo.GetByID(ctx, o.ID)
	require.NoError(t, err)

	first.Progress = 50
	first.Status = domain.OrderInProgress
	require.NoError(t, orderRepo.Update(ctx, first))
	assert.Equal(t, 2, first.Version)

	stale.Notes = "lost update"
	err = orderRepo.Update(ctx, stale)
	assert.ErrorIs(t, err, domain.ErrConflict)

	got, err := orderRepo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, got.Progress)
	assert.Empty(t, got.Notes)
}

func TestOrderRepo_ListFilterAndCounts(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	bomRepo := NewSQLiteBOMRepo(database)
	orderRepo := NewSQLiteOrderRepo(database)

	b := seedBOM(t, bomRepo, "Stool")
	require.NoError(t, orderRepo.Create(ctx, testutil.NewTestOrder(b.ID, "Stool")))
	require.NoError(t, orderRepo.Create(ctx, testutil.NewTestOrder(b.ID, "Stool", testutil.WithOrderStatus(domain.OrderInProgress))))
	require.NoError(t, orderRepo.Create(ctx, testutil.NewTestOrder(b.ID, "Stool", testutil.WithOrderStatus(domain.OrderDone))))

	all, err := orderRepo.List(ctx, OrderFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	inProgress, err := orderRepo.List(ctx, OrderFilter{Status: domain.OrderInProgress})
	require.NoError(t, err)
	assert.Len(t, inProgress, 1)

	counts, err := orderRepo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[domain.OrderPlanned])
	assert.Equal(t, 1, counts[domain.OrderDone])
	assert.Equal(t, 0, counts[domain.OrderCanceled])

	active, err := orderRepo.CountByBOM(ctx, b.ID, domain.OrderPlanned, domain.OrderInProgress)
	require.NoError(t, err)
	assert.Equal(t, 2, active)

	total, err := orderRepo.CountByBOM(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}

func TestOrderRepo_DeleteCascadesWorkOrders(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	bomRepo := NewSQLiteBOMRepo(database)
	orderRepo := NewSQLiteOrderRepo(database)
	woRepo := NewSQLiteWorkOrderRepo(database)

	b := seedBOM(t, bomRepo, "Frame")
	o := testutil.NewTestOrder(b.ID, "Frame")
	require.NoError(t, orderRepo.Create(ctx, o))
	wo := testutil.NewTestWorkOrder(o.ID, 1, "Weld")
	require.NoError(t, woRepo.Create(ctx, wo))

	require.NoError(t, orderRepo.Delete(ctx, o.ID))
	_, err := woRepo.GetByID(ctx, wo.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWorkOrderRepo_UpdateRoundTripsNullables(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	bomRepo := NewSQLiteBOMRepo(database)
	orderRepo := NewSQLiteOrderRepo(database)
	woRepo := NewSQLiteWorkOrderRepo(database)

	b := seedBOM(t, bomRepo, "Crate")
	o := testutil.NewTestOrder(b.ID, "Crate")
	require.NoError(t, orderRepo.Create(ctx, o))
	wo := testutil.NewTestWorkOrder(o.ID, 1, "Nail")
	require.NoError(t, woRepo.Create(ctx, wo))

	got, err := woRepo.GetByID(ctx, wo.ID)
	require.NoError(t, err)
	assert.Nil(t, got.AssignedTo)
	assert.Nil(t, got.StartedAt)
	assert.Nil(t, got.ActualDurationMinutes)

	require.NoError(t, got.Start(got.CreatedAt, "op-7"))
	require.NoError(t, got.Complete(got.CreatedAt.Add(90*time.Second), "ok", nil))
	require.NoError(t, woRepo.Update(ctx, got))

	again, err := woRepo.GetByID(ctx, wo.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.WorkOrderCompleted, again.Status)
	require.NotNil(t, again.AssignedTo)
	assert.Equal(t, "op-7", *again.AssignedTo)
	require.NotNil(t, again.ActualDurationMinutes)
	assert.Equal(t, 1, *again.ActualDurationMinutes)
	assert.NotNil(t, again.CompletedAt)
	assert.Equal(t, "ok", again.Notes)
}

func TestOrderSequenceRepo_Next(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	seqRepo := NewSQLiteOrderSequenceRepo(database)

	for want := 1; want <= 3; want++ {
		got, err := seqRepo.Next(ctx, OrderReferenceSequence)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	other, err := seqRepo.Next(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, 1, other, "sequences are independent")
}
