package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/shopfloor/internal/db"
	"github.com/alexanderramin/shopfloor/internal/domain"
)

const movementColumns = `m.id, m.component_id, c.name, m.movement_type, m.quantity,
		m.balance_after, m.reference, m.created_by, m.created_at`

// defaultMovementLimit caps ledger reads when the caller passes no limit.
const defaultMovementLimit = 100

// SQLiteMovementRepo is the append-only stock movement ledger.
type SQLiteMovementRepo struct {
	db db.DBTX
}

func NewSQLiteMovementRepo(conn db.DBTX) *SQLiteMovementRepo {
	return &SQLiteMovementRepo{db: conn}
}

func (r *SQLiteMovementRepo) Create(ctx context.Context, m *domain.StockMovement) error {
	query := `INSERT INTO stock_movements
		(id, component_id, movement_type, quantity, balance_after, reference, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		m.ID,
		m.ComponentID,
		string(m.Type),
		m.Quantity,
		m.BalanceAfter,
		m.Reference,
		m.CreatedBy,
		formatTime(m.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting stock movement: %w", err)
	}
	return nil
}

func (r *SQLiteMovementRepo) ListByComponent(ctx context.Context, componentID string, limit int) ([]*domain.StockMovement, error) {
	query := `SELECT ` + movementColumns + `
		FROM stock_movements m JOIN components c ON c.id = m.component_id
		WHERE m.component_id = ?
		ORDER BY m.created_at DESC, m.rowid DESC
		LIMIT ?`
	return r.list(ctx, query, componentID, normalizeLimit(limit))
}

func (r *SQLiteMovementRepo) ListRecent(ctx context.Context, limit int) ([]*domain.StockMovement, error) {
	query := `SELECT ` + movementColumns + `
		FROM stock_movements m JOIN components c ON c.id = m.component_id
		ORDER BY m.created_at DESC, m.rowid DESC
		LIMIT ?`
	return r.list(ctx, query, normalizeLimit(limit))
}

func (r *SQLiteMovementRepo) list(ctx context.Context, query string, args ...any) ([]*domain.StockMovement, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing stock movements: %w", err)
	}
	defer rows.Close()

	var out []*domain.StockMovement
	for rows.Next() {
		var m domain.StockMovement
		var mtype, createdAt string
		if err := rows.Scan(&m.ID, &m.ComponentID, &m.ComponentName, &mtype, &m.Quantity,
			&m.BalanceAfter, &m.Reference, &m.CreatedBy, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning stock movement: %w", err)
		}
		m.Type = domain.MovementType(mtype)
		if m.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stock movements: %w", err)
	}
	return out, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultMovementLimit
	}
	return limit
}
