package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/shopfloor/internal/domain"
	"github.com/alexanderramin/shopfloor/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBOMRepo_CreateAndGetPricesLines(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	compRepo := NewSQLiteComponentRepo(database)
	bomRepo := NewSQLiteBOMRepo(database)

	top := testutil.NewTestComponent("Top", testutil.WithUnitCost("20.00"))
	leg := testutil.NewTestComponent("Leg", testutil.WithUnitCost("2.50"))
	require.NoError(t, compRepo.Create(ctx, top))
	require.NoError(t, compRepo.Create(ctx, leg))

	b := testutil.NewTestBOM("Table", testutil.WithLine(top.ID, 1), testutil.WithLine(leg.ID, 4))
	require.NoError(t, bomRepo.Create(ctx, b))

	got, err := bomRepo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, got.Lines, 2)
	assert.Equal(t, "Top", got.Lines[0].ComponentName)
	assert.Equal(t, "Leg", got.Lines[1].ComponentName)
	assert.True(t, got.TotalCost().Equal(decimal.RequireFromString("30")))

	// Cost is derived from the current component price on every read.
	leg.UnitCost = decimal.RequireFromString("3.00")
	require.NoError(t, compRepo.Update(ctx, leg))
	got, err = bomRepo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, got.TotalCost().Equal(decimal.RequireFromString("32")))
}

func TestBOMRepo_DuplicateNameVersion(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	bomRepo := NewSQLiteBOMRepo(database)

	require.NoError(t, bomRepo.Create(ctx, testutil.NewTestBOM("Chair")))
	err := bomRepo.Create(ctx, testutil.NewTestBOM("Chair"))
	assert.ErrorIs(t, err, domain.ErrDuplicateName)
}

func TestBOMRepo_UnknownComponentIsValidationError(t *testing.T) {
	database := testutil.NewTestDB(t)
	bomRepo := NewSQLiteBOMRepo(database)

	err := bomRepo.Create(context.Background(), testutil.NewTestBOM("Ghost", testutil.WithLine("missing", 1)))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestBOMRepo_ListReturnsLatestActiveVersion(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	bomRepo := NewSQLiteBOMRepo(database)

	v1 := testutil.NewTestBOM("Desk")
	v2 := testutil.NewTestBOM("Desk", testutil.WithBOMVersion(2))
	other := testutil.NewTestBOM("Shelf")
	for _, b := range []*domain.BillOfMaterials{v1, v2, other} {
		require.NoError(t, bomRepo.Create(ctx, b))
	}

	latest, err := bomRepo.LatestVersion(ctx, "Desk")
	require.NoError(t, err)
	assert.Equal(t, 2, latest)

	list, err := bomRepo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, v2.ID, list[0].ID)

	require.NoError(t, bomRepo.Archive(ctx, v2.ID, time.Now()))
	list, err = bomRepo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, v1.ID, list[0].ID, "archiving the newest version exposes the previous one")

	versions, err := bomRepo.ListVersions(ctx, "Desk")
	require.NoError(t, err)
	assert.Len(t, versions, 2)

	archived, err := bomRepo.GetByID(ctx, v2.ID)
	require.NoError(t, err)
	assert.True(t, archived.IsArchived())

	assert.ErrorIs(t, bomRepo.Archive(ctx, v2.ID, time.Now()), domain.ErrNotFound)
}

func TestBOMRepo_CountReferencingComponent(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	compRepo := NewSQLiteComponentRepo(database)
	bomRepo := NewSQLiteBOMRepo(database)

	c := testutil.NewTestComponent("Screw")
	require.NoError(t, compRepo.Create(ctx, c))
	require.NoError(t, bomRepo.Create(ctx, testutil.NewTestBOM("A", testutil.WithLine(c.ID, 2))))
	require.NoError(t, bomRepo.Create(ctx, testutil.NewTestBOM("B", testutil.WithLine(c.ID, 8))))

	n, err := bomRepo.CountReferencingComponent(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	count, err := bomRepo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
