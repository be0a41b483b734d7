package db_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alexanderramin/shopfloor/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const insertComponent = `INSERT INTO components (id, name, quantity_on_hand, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?)`

func openUoW(t *testing.T) (*sql.DB, *db.SQLiteUnitOfWork) {
	t.Helper()
	database, err := db.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database, db.NewSQLiteUnitOfWork(database)
}

func seedComponent(t *testing.T, database *sql.DB, id string, qty int) {
	t.Helper()
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := database.Exec(insertComponent, id, id, qty, now, now)
	require.NoError(t, err)
}

// onHand returns the stored quantity, or -1 when the component is absent.
func onHand(t *testing.T, database *sql.DB, id string) int {
	t.Helper()
	var qty int
	err := database.QueryRow(`SELECT quantity_on_hand FROM components WHERE id = ?`, id).Scan(&qty)
	if errors.Is(err, sql.ErrNoRows) {
		return -1
	}
	require.NoError(t, err)
	return qty
}

func debit(ctx context.Context, tx db.DBTX, id string, qty int) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE components SET quantity_on_hand = quantity_on_hand - ? WHERE id = ?`, qty, id)
	return err
}

func TestWithinTx_CommitsAllDebits(t *testing.T) {
	database, uow := openUoW(t)
	seedComponent(t, database, "bolt", 10)
	seedComponent(t, database, "nut", 10)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if err := debit(ctx, tx, "bolt", 4); err != nil {
			return err
		}
		return debit(ctx, tx, "nut", 6)
	})
	require.NoError(t, err)

	assert.Equal(t, 6, onHand(t, database, "bolt"))
	assert.Equal(t, 4, onHand(t, database, "nut"))
}

func TestWithinTx_ConstraintFailureRollsBackEarlierDebits(t *testing.T) {
	database, uow := openUoW(t)
	seedComponent(t, database, "bolt", 10)
	seedComponent(t, database, "housing", 1)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if err := debit(ctx, tx, "bolt", 4); err != nil {
			return err
		}
		// Violates CHECK(quantity_on_hand >= 0).
		return debit(ctx, tx, "housing", 2)
	})
	require.Error(t, err)

	assert.Equal(t, 10, onHand(t, database, "bolt"))
	assert.Equal(t, 1, onHand(t, database, "housing"))
}

func TestWithinTx_RollbackOnCallbackError(t *testing.T) {
	database, uow := openUoW(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		now := time.Now().UTC().Format(time.RFC3339)
		if _, err := tx.ExecContext(ctx, insertComponent, "spring", "spring", 3, now, now); err != nil {
			return err
		}
		return fmt.Errorf("completion blocked")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "completion blocked")
	assert.Equal(t, -1, onHand(t, database, "spring"))
}

func TestWithinTx_RollbackOnPanic(t *testing.T) {
	database, uow := openUoW(t)
	seedComponent(t, database, "bolt", 10)

	assert.Panics(t, func() {
		_ = uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
			_ = debit(ctx, tx, "bolt", 5)
			panic("boom")
		})
	})

	assert.Equal(t, 10, onHand(t, database, "bolt"))
}

func TestWithinTx_CanceledContext(t *testing.T) {
	_, uow := openUoW(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestWithinTx_PreservesErrorIdentity(t *testing.T) {
	_, uow := openUoW(t)
	sentinel := errors.New("typed failure")

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		return fmt.Errorf("wrapped: %w", sentinel)
	})
	assert.ErrorIs(t, err, sentinel)
}
