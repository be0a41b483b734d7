package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/shopfloor/internal/db"
	"github.com/alexanderramin/shopfloor/internal/domain"
)

const workOrderColumns = `id, manufacturing_order_id, sequence, name, description,
		duration_minutes, actual_duration_minutes, assigned_to, status, notes,
		started_at, completed_at, created_at, updated_at,
		work_center_id, estimated_cost, actual_cost`

// workOrderSelect reads the stored columns plus the routed center's name.
const workOrderSelect = `SELECT w.id, w.manufacturing_order_id, w.sequence, w.name, w.description,
		w.duration_minutes, w.actual_duration_minutes, w.assigned_to, w.status, w.notes,
		w.started_at, w.completed_at, w.created_at, w.updated_at,
		w.work_center_id, w.estimated_cost, w.actual_cost, COALESCE(wc.name, '')
	FROM work_orders w
	LEFT JOIN work_centers wc ON wc.id = w.work_center_id`

// SQLiteWorkOrderRepo implements WorkOrderRepo using a SQLite database.
type SQLiteWorkOrderRepo struct {
	db db.DBTX
}

func NewSQLiteWorkOrderRepo(conn db.DBTX) *SQLiteWorkOrderRepo {
	return &SQLiteWorkOrderRepo{db: conn}
}

func (r *SQLiteWorkOrderRepo) Create(ctx context.Context, w *domain.WorkOrder) error {
	query := `INSERT INTO work_orders (` + workOrderColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		w.ID,
		w.ManufacturingOrderID,
		w.Sequence,
		w.Name,
		w.Description,
		w.DurationMinutes,
		nullableIntToValue(w.ActualDurationMinutes),
		nullableStringToValue(w.AssignedTo),
		string(w.Status),
		w.Notes,
		nullableTimeToString(w.StartedAt),
		nullableTimeToString(w.CompletedAt),
		formatTime(w.CreatedAt),
		formatTime(w.UpdatedAt),
		nullableStringToValue(w.WorkCenterID),
		nullableDecimalToValue(w.EstimatedCost),
		nullableDecimalToValue(w.ActualCost),
	)
	if err != nil {
		if isForeignKeyViolation(err) && w.WorkCenterID != nil {
			return &domain.NotFoundError{Entity: "work center", ID: *w.WorkCenterID}
		}
		return fmt.Errorf("inserting work order: %w", err)
	}
	return nil
}

func (r *SQLiteWorkOrderRepo) GetByID(ctx context.Context, id string) (*domain.WorkOrder, error) {
	query := workOrderSelect + ` WHERE w.id = ?`
	w, err := scanWorkOrder(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "work order", ID: id}
	}
	return w, err
}

func (r *SQLiteWorkOrderRepo) ListByOrder(ctx context.Context, orderID string) ([]*domain.WorkOrder, error) {
	query := workOrderSelect + ` WHERE w.manufacturing_order_id = ? ORDER BY w.sequence`
	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("listing work orders: %w", err)
	}
	defer rows.Close()

	var out []*domain.WorkOrder
	for rows.Next() {
		w, err := scanWorkOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating work orders: %w", err)
	}
	return out, nil
}

func (r *SQLiteWorkOrderRepo) Update(ctx context.Context, w *domain.WorkOrder) error {
	query := `UPDATE work_orders SET
		name = ?, description = ?, duration_minutes = ?, actual_duration_minutes = ?,
		assigned_to = ?, status = ?, notes = ?, started_at = ?, completed_at = ?, updated_at = ?,
		work_center_id = ?, estimated_cost = ?, actual_cost = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		w.Name,
		w.Description,
		w.DurationMinutes,
		nullableIntToValue(w.ActualDurationMinutes),
		nullableStringToValue(w.AssignedTo),
		string(w.Status),
		w.Notes,
		nullableTimeToString(w.StartedAt),
		nullableTimeToString(w.CompletedAt),
		formatTime(w.UpdatedAt),
		nullableStringToValue(w.WorkCenterID),
		nullableDecimalToValue(w.EstimatedCost),
		nullableDecimalToValue(w.ActualCost),
		w.ID,
	)
	if err != nil {
		return fmt.Errorf("updating work order: %w", err)
	}
	return requireAffected(res, "work order", w.ID)
}

func scanWorkOrder(row rowScanner) (*domain.WorkOrder, error) {
	var w domain.WorkOrder
	var status, createdAt, updatedAt string
	var actual sql.NullInt64
	var assigned, startedAt, completedAt, centerID, estimated, actualCost sql.NullString
	err := row.Scan(
		&w.ID, &w.ManufacturingOrderID, &w.Sequence, &w.Name, &w.Description,
		&w.DurationMinutes, &actual, &assigned, &status, &w.Notes,
		&startedAt, &completedAt, &createdAt, &updatedAt,
		&centerID, &estimated, &actualCost, &w.WorkCenterName,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning work order: %w", err)
	}

	w.Status = domain.WorkOrderStatus(status)
	w.ActualDurationMinutes = parseNullableInt(actual)
	w.AssignedTo = parseNullableString(assigned)
	w.StartedAt = parseNullableTime(startedAt)
	w.CompletedAt = parseNullableTime(completedAt)
	w.WorkCenterID = parseNullableString(centerID)
	if w.EstimatedCost, err = parseNullableDecimal("estimated_cost", estimated); err != nil {
		return nil, err
	}
	if w.ActualCost, err = parseNullableDecimal("actual_cost", actualCost); err != nil {
		return nil, err
	}
	if w.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return nil, err
	}
	if w.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return nil, err
	}
	return &w, nil
}
