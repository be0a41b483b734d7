package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS components (
		id               TEXT PRIMARY KEY,
		name             TEXT NOT NULL,
		quantity_on_hand INTEGER NOT NULL DEFAULT 0 CHECK(quantity_on_hand >= 0),
		unit_cost        TEXT NOT NULL DEFAULT '0',
		supplier         TEXT NOT NULL DEFAULT '',
		reorder_level    INTEGER NOT NULL DEFAULT 10 CHECK(reorder_level >= 0),
		created_at       TEXT NOT NULL,
		updated_at       TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS boms (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		version     INTEGER NOT NULL CHECK(version > 0),
		archived_at TEXT,
		created_at  TEXT NOT NULL
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS idx_boms_name_version ON boms(name, version)`,

	`CREATE TABLE IF NOT EXISTS bom_lines (
		bom_id            TEXT NOT NULL REFERENCES boms(id) ON DELETE CASCADE,
		component_id      TEXT NOT NULL REFERENCES components(id) ON DELETE RESTRICT,
		quantity_required INTEGER NOT NULL CHECK(quantity_required > 0),
		notes             TEXT NOT NULL DEFAULT '',
		position          INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (bom_id, component_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_bom_lines_component ON bom_lines(component_id)`,

	`CREATE TABLE IF NOT EXISTS manufacturing_orders (
		id           TEXT PRIMARY KEY,
		reference    TEXT NOT NULL DEFAULT '',
		product_name TEXT NOT NULL,
		quantity     INTEGER NOT NULL CHECK(quantity > 0),
		bom_id       TEXT NOT NULL REFERENCES boms(id) ON DELETE RESTRICT,
		deadline     TEXT NOT NULL,
		priority     TEXT NOT NULL DEFAULT 'Medium'
		             CHECK(priority IN ('Low','Medium','High','Urgent')),
		status       TEXT NOT NULL DEFAULT 'Planned'
		             CHECK(status IN ('Planned','InProgress','Done','Canceled')),
		progress     INTEGER NOT NULL DEFAULT 0 CHECK(progress BETWEEN 0 AND 100),
		notes        TEXT NOT NULL DEFAULT '',
		version      INTEGER NOT NULL DEFAULT 1,
		started_at   TEXT,
		completed_at TEXT,
		canceled_at  TEXT,
		created_at   TEXT NOT NULL,
		updated_at   TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_orders_status ON manufacturing_orders(status)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_bom ON manufacturing_orders(bom_id)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_reference ON manufacturing_orders(reference) WHERE reference != ''`,

	`CREATE TABLE IF NOT EXISTS work_centers (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		description   TEXT NOT NULL DEFAULT '',
		cost_per_hour TEXT NOT NULL DEFAULT '0',
		capacity      INTEGER NOT NULL DEFAULT 1 CHECK(capacity > 0),
		efficiency    TEXT NOT NULL DEFAULT '1',
		active        INTEGER NOT NULL DEFAULT 1,
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS idx_work_centers_name ON work_centers(name COLLATE NOCASE)`,

	`CREATE TABLE IF NOT EXISTS work_orders (
		id                      TEXT PRIMARY KEY,
		manufacturing_order_id  TEXT NOT NULL REFERENCES manufacturing_orders(id) ON DELETE CASCADE,
		sequence                INTEGER NOT NULL CHECK(sequence > 0),
		name                    TEXT NOT NULL,
		description             TEXT NOT NULL DEFAULT '',
		duration_minutes        INTEGER NOT NULL CHECK(duration_minutes > 0),
		actual_duration_minutes INTEGER,
		assigned_to             TEXT,
		work_center_id          TEXT REFERENCES work_centers(id) ON DELETE RESTRICT,
		estimated_cost          TEXT,
		actual_cost             TEXT,
		status                  TEXT NOT NULL DEFAULT 'Pending'
		                        CHECK(status IN ('Pending','Started','Paused','Completed','Canceled')),
		notes                   TEXT NOT NULL DEFAULT '',
		started_at              TEXT,
		completed_at            TEXT,
		created_at              TEXT NOT NULL,
		updated_at              TEXT NOT NULL,
		UNIQUE (manufacturing_order_id, sequence)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_work_orders_order ON work_orders(manufacturing_order_id)`,

	// Databases created before work centers existed.
	`ALTER TABLE work_orders ADD COLUMN work_center_id TEXT REFERENCES work_centers(id) ON DELETE RESTRICT`,
	`ALTER TABLE work_orders ADD COLUMN estimated_cost TEXT`,
	`ALTER TABLE work_orders ADD COLUMN actual_cost TEXT`,
	`CREATE INDEX IF NOT EXISTS idx_work_orders_center ON work_orders(work_center_id)`,

	`CREATE TABLE IF NOT EXISTS stock_movements (
		id            TEXT PRIMARY KEY,
		component_id  TEXT NOT NULL REFERENCES components(id) ON DELETE CASCADE,
		movement_type TEXT NOT NULL CHECK(movement_type IN ('IN','OUT','ADJUSTMENT')),
		quantity      INTEGER NOT NULL CHECK(quantity >= 0),
		balance_after INTEGER NOT NULL,
		reference     TEXT NOT NULL DEFAULT '',
		created_by    TEXT NOT NULL DEFAULT '',
		created_at    TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_movements_component ON stock_movements(component_id)`,
	`CREATE INDEX IF NOT EXISTS idx_movements_created ON stock_movements(created_at)`,

	`CREATE TABLE IF NOT EXISTS order_sequences (
		name     TEXT PRIMARY KEY,
		next_seq INTEGER NOT NULL CHECK(next_seq > 0)
	)`,
}
