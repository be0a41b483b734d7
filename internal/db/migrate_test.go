package db

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
}

func TestMigrate_CreatesAllTables(t *testing.T) {
	db := openTestDB(t)

	expected := []string{
		"components", "boms", "bom_lines", "manufacturing_orders",
		"work_centers", "work_orders", "stock_movements", "order_sequences",
	}
	for _, table := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_CreatesIndexes(t *testing.T) {
	db := openTestDB(t)

	expected := []string{
		"idx_boms_name_version",
		"idx_bom_lines_component",
		"idx_orders_status",
		"idx_orders_bom",
		"idx_orders_reference",
		"idx_work_orders_order",
		"idx_work_orders_center",
		"idx_work_centers_name",
		"idx_movements_component",
	}
	for _, idx := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='index' AND name=?`, idx).Scan(&name)
		require.NoError(t, err, "index %s should exist", idx)
	}
}

func TestOpenDB_ForeignKeysEnabled(t *testing.T) {
	db := openTestDB(t)

	var fk int
	require.NoError(t, db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk, "foreign keys should be enabled")
}

func TestOpenDB_FileUsesWAL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "shop.db")
	db, err := OpenDB(path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var mode string
	require.NoError(t, db.QueryRow(`PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "wal", mode)

	var timeout int
	require.NoError(t, db.QueryRow(`PRAGMA busy_timeout`).Scan(&timeout))
	assert.Equal(t, busyTimeoutMillis, timeout)
}

func TestSchema_RejectsNegativeStock(t *testing.T) {
	db := openTestDB(t)
	now := time.Now().UTC().Format(time.RFC3339)

	_, err := db.Exec(`INSERT INTO components (id, name, quantity_on_hand, created_at, updated_at) VALUES ('c1', 'Bolt', 1, ?, ?)`, now, now)
	require.NoError(t, err)

	_, err = db.Exec(`UPDATE components SET quantity_on_hand = quantity_on_hand - 2 WHERE id = 'c1'`)
	require.Error(t, err, "check constraint should reject negative stock")
}

func TestSchema_BOMNameVersionUnique(t *testing.T) {
	db := openTestDB(t)
	now := time.Now().UTC().Format(time.RFC3339)

	_, err := db.Exec(`INSERT INTO boms (id, name, version, created_at) VALUES ('b1', 'Table', 1, ?)`, now)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO boms (id, name, version, created_at) VALUES ('b2', 'Table', 1, ?)`, now)
	require.Error(t, err)
	_, err = db.Exec(`INSERT INTO boms (id, name, version, created_at) VALUES ('b3', 'Table', 2, ?)`, now)
	require.NoError(t, err)
}

func TestMigrate_AddsWorkOrderCostColumnsToOlderSchema(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Exec(`ALTER TABLE work_orders DROP COLUMN actual_cost`)
	require.NoError(t, err)

	require.NoError(t, Migrate(db))

	rows, err := db.Query(`SELECT name FROM pragma_table_info('work_orders')`)
	require.NoError(t, err)
	defer rows.Close()
	var cols []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		cols = append(cols, name)
	}
	require.NoError(t, rows.Err())
	assert.Contains(t, cols, "actual_cost")
	assert.Contains(t, cols, "work_center_id")
}

func TestSchema_WorkCenterNameUniqueIgnoringCase(t *testing.T) {
	db := openTestDB(t)
	now := time.Now().UTC().Format(time.RFC3339)

	_, err := db.Exec(`INSERT INTO work_centers (id, name, created_at, updated_at) VALUES ('w1', 'Lathe', ?, ?)`, now, now)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO work_centers (id, name, created_at, updated_at) VALUES ('w2', 'lathe', ?, ?)`, now, now)
	require.Error(t, err)
}
