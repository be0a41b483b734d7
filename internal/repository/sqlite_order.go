package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/shopfloor/internal/db"
	"github.com/alexanderramin/shopfloor/internal/domain"
)

// orderColumns is the canonical SELECT column list for manufacturing_orders,
// aliased as "o" and joined with its BOM version.
const orderColumns = `o.id, o.reference, o.product_name, o.quantity, o.bom_id, b.name, b.version,
		o.deadline, o.priority, o.status, o.progress, o.notes, o.version,
		o.started_at, o.completed_at, o.canceled_at, o.created_at, o.updated_at`

const orderFrom = ` FROM manufacturing_orders o JOIN boms b ON b.id = o.bom_id`

// SQLiteOrderRepo implements OrderRepo using a SQLite database.
type SQLiteOrderRepo struct {
	db db.DBTX
}

func NewSQLiteOrderRepo(conn db.DBTX) *SQLiteOrderRepo {
	return &SQLiteOrderRepo{db: conn}
}

func (r *SQLiteOrderRepo) Create(ctx context.Context, o *domain.ManufacturingOrder) error {
	query := `INSERT INTO manufacturing_orders (id, reference, product_name, quantity, bom_id,
		deadline, priority, status, progress, notes, version,
		started_at, completed_at, canceled_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if o.Version == 0 {
		o.Version = 1
	}
	_, err := r.db.ExecContext(ctx, query,
		o.ID,
		o.Reference,
		o.ProductName,
		o.Quantity,
		o.BOMID,
		formatTime(o.Deadline),
		string(o.Priority),
		string(o.Status),
		o.Progress,
		o.Notes,
		o.Version,
		nullableTimeToString(o.StartedAt),
		nullableTimeToString(o.CompletedAt),
		nullableTimeToString(o.CanceledAt),
		formatTime(o.CreatedAt),
		formatTime(o.UpdatedAt),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return &domain.NotFoundError{Entity: "bom", ID: o.BOMID}
		}
		return fmt.Errorf("inserting manufacturing order: %w", err)
	}
	return nil
}

func (r *SQLiteOrderRepo) GetByID(ctx context.Context, id string) (*domain.ManufacturingOrder, error) {
	query := `SELECT ` + orderColumns + orderFrom + ` WHERE o.id = ?`
	o, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "manufacturing order", ID: id}
	}
	return o, err
}

func (r *SQLiteOrderRepo) GetByReference(ctx context.Context, ref string) (*domain.ManufacturingOrder, error) {
	query := `SELECT ` + orderColumns + orderFrom + ` WHERE UPPER(o.reference) = UPPER(?)`
	o, err := scanOrder(r.db.QueryRowContext(ctx, query, ref))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "manufacturing order", ID: ref}
	}
	return o, err
}

func (r *SQLiteOrderRepo) List(ctx context.Context, f OrderFilter) ([]*domain.ManufacturingOrder, error) {
	var where []string
	var args []any
	if f.Status != "" {
		where = append(where, "o.status = ?")
		args = append(args, string(f.Status))
	}
	if f.BOMID != "" {
		where = append(where, "o.bom_id = ?")
		args = append(args, f.BOMID)
	}
	query := `SELECT ` + orderColumns + orderFrom
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY o.created_at DESC, o.reference DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing manufacturing orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.ManufacturingOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating manufacturing orders: %w", err)
	}
	return orders, nil
}

func (r *SQLiteOrderRepo) Update(ctx context.Context, o *domain.ManufacturingOrder) error {
	query := `UPDATE manufacturing_orders SET
		product_name = ?, quantity = ?, deadline = ?, priority = ?, status = ?, progress = ?, notes = ?,
		started_at = ?, completed_at = ?, canceled_at = ?, updated_at = ?,
		version = version + 1
		WHERE id = ? AND version = ?`
	res, err := r.db.ExecContext(ctx, query,
		o.ProductName,
		o.Quantity,
		formatTime(o.Deadline),
		string(o.Priority),
		string(o.Status),
		o.Progress,
		o.Notes,
		nullableTimeToString(o.StartedAt),
		nullableTimeToString(o.CompletedAt),
		nullableTimeToString(o.CanceledAt),
		formatTime(o.UpdatedAt),
		o.ID,
		o.Version,
	)
	if err != nil {
		return fmt.Errorf("updating manufacturing order: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return &domain.ConflictError{
			Entity: "manufacturing order",
			ID:     o.ID,
			Reason: fmt.Sprintf("modified concurrently (expected version %d)", o.Version),
		}
	}
	o.Version++
	return nil
}

func (r *SQLiteOrderRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM manufacturing_orders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting manufacturing order: %w", err)
	}
	return requireAffected(res, "manufacturing order", id)
}

func (r *SQLiteOrderRepo) CountByStatus(ctx context.Context) (map[domain.OrderStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM manufacturing_orders GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("counting orders by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.OrderStatus]int, len(domain.ValidOrderStatuses))
	for _, s := range domain.ValidOrderStatuses {
		counts[s] = 0
	}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scanning status count: %w", err)
		}
		counts[domain.OrderStatus(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating status counts: %w", err)
	}
	return counts, nil
}

func (r *SQLiteOrderRepo) CountByBOM(ctx context.Context, bomID string, statuses ...domain.OrderStatus) (int, error) {
	query := `SELECT COUNT(*) FROM manufacturing_orders WHERE bom_id = ?`
	args := []any{bomID}
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, s := range statuses {
			placeholders[i] = "?"
			args = append(args, string(s))
		}
		query += ` AND status IN (` + strings.Join(placeholders, ", ") + `)`
	}
	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting orders for bom %s: %w", bomID, err)
	}
	return n, nil
}

func scanOrder(row rowScanner) (*domain.ManufacturingOrder, error) {
	var o domain.ManufacturingOrder
	var deadline, priority, status, createdAt, updatedAt string
	var startedAt, completedAt, canceledAt sql.NullString
	err := row.Scan(
		&o.ID, &o.Reference, &o.ProductName, &o.Quantity, &o.BOMID, &o.BOMName, &o.BOMVersion,
		&deadline, &priority, &status, &o.Progress, &o.Notes, &o.Version,
		&startedAt, &completedAt, &canceledAt, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning manufacturing order: %w", err)
	}

	o.Priority = domain.Priority(priority)
	o.Status = domain.OrderStatus(status)
	o.StartedAt = parseNullableTime(startedAt)
	o.CompletedAt = parseNullableTime(completedAt)
	o.CanceledAt = parseNullableTime(canceledAt)
	if o.Deadline, err = parseTime("deadline", deadline); err != nil {
		return nil, err
	}
	if o.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return nil, err
	}
	if o.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}
