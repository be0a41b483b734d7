package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/shopfloor/internal/db"
	"github.com/alexanderramin/shopfloor/internal/domain"
)

const workCenterColumns = `id, name, description, cost_per_hour, capacity, efficiency,
		active, created_at, updated_at`

// SQLiteWorkCenterRepo implements WorkCenterRepo using a SQLite database.
type SQLiteWorkCenterRepo struct {
	db db.DBTX
}

func NewSQLiteWorkCenterRepo(conn db.DBTX) *SQLiteWorkCenterRepo {
	return &SQLiteWorkCenterRepo{db: conn}
}

func (r *SQLiteWorkCenterRepo) Create(ctx context.Context, wc *domain.WorkCenter) error {
	query := `INSERT INTO work_centers (` + workCenterColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		wc.ID,
		wc.Name,
		wc.Description,
		wc.CostPerHour.String(),
		wc.Capacity,
		wc.Efficiency.String(),
		wc.Active,
		formatTime(wc.CreatedAt),
		formatTime(wc.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.ConflictError{Entity: "work center", ID: wc.Name, Reason: "name already in use"}
		}
		return fmt.Errorf("inserting work center: %w", err)
	}
	return nil
}

func (r *SQLiteWorkCenterRepo) GetByID(ctx context.Context, id string) (*domain.WorkCenter, error) {
	query := `SELECT ` + workCenterColumns + ` FROM work_centers WHERE id = ?`
	wc, err := scanWorkCenter(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "work center", ID: id}
	}
	return wc, err
}

// GetByName matches names case-insensitively.
func (r *SQLiteWorkCenterRepo) GetByName(ctx context.Context, name string) (*domain.WorkCenter, error) {
	query := `SELECT ` + workCenterColumns + ` FROM work_centers WHERE name = ? COLLATE NOCASE`
	wc, err := scanWorkCenter(r.db.QueryRowContext(ctx, query, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "work center", ID: name}
	}
	return wc, err
}

func (r *SQLiteWorkCenterRepo) List(ctx context.Context, includeInactive bool) ([]*domain.WorkCenter, error) {
	query := `SELECT ` + workCenterColumns + ` FROM work_centers`
	if !includeInactive {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY name COLLATE NOCASE`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing work centers: %w", err)
	}
	defer rows.Close()

	var out []*domain.WorkCenter
	for rows.Next() {
		wc, err := scanWorkCenter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, wc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating work centers: %w", err)
	}
	return out, nil
}

func (r *SQLiteWorkCenterRepo) Update(ctx context.Context, wc *domain.WorkCenter) error {
	query := `UPDATE work_centers SET
		name = ?, description = ?, cost_per_hour = ?, capacity = ?, efficiency = ?,
		active = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		wc.Name,
		wc.Description,
		wc.CostPerHour.String(),
		wc.Capacity,
		wc.Efficiency.String(),
		wc.Active,
		formatTime(wc.UpdatedAt),
		wc.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.ConflictError{Entity: "work center", ID: wc.Name, Reason: "name already in use"}
		}
		return fmt.Errorf("updating work center: %w", err)
	}
	return requireAffected(res, "work center", wc.ID)
}

// CountOpenWorkOrders counts Pending, Started and Paused work orders routed
// through the center.
func (r *SQLiteWorkCenterRepo) CountOpenWorkOrders(ctx context.Context, id string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM work_orders
		WHERE work_center_id = ? AND status IN ('Pending','Started','Paused')`, id).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting open work orders: %w", err)
	}
	return n, nil
}

// Load aggregates work orders per active center. Costs are stored as text,
// so they are summed here rather than in SQL.
func (r *SQLiteWorkCenterRepo) Load(ctx context.Context) ([]*domain.WorkCenterLoad, error) {
	query := `SELECT wc.id, wc.name, w.status, w.duration_minutes,
			w.actual_duration_minutes, w.estimated_cost, w.actual_cost
		FROM work_centers wc
		LEFT JOIN work_orders w ON w.work_center_id = wc.id
		WHERE wc.active = 1
		ORDER BY wc.name COLLATE NOCASE`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("loading work center usage: %w", err)
	}
	defer rows.Close()

	var out []*domain.WorkCenterLoad
	byID := map[string]*domain.WorkCenterLoad{}
	for rows.Next() {
		var id, name string
		var status, estimated, actualCost sql.NullString
		var planned, actual sql.NullInt64
		if err := rows.Scan(&id, &name, &status, &planned, &actual, &estimated, &actualCost); err != nil {
			return nil, fmt.Errorf("scanning work center usage: %w", err)
		}
		l, ok := byID[id]
		if !ok {
			l = &domain.WorkCenterLoad{WorkCenterID: id, WorkCenterName: name}
			byID[id] = l
			out = append(out, l)
		}
		if !status.Valid {
			continue
		}
		switch domain.WorkOrderStatus(status.String) {
		case domain.WorkOrderCompleted:
			l.Completed++
			l.ActualMinutes += int(actual.Int64)
			if cost, err := parseNullableDecimal("actual_cost", actualCost); err != nil {
				return nil, err
			} else if cost != nil {
				l.ActualCost = l.ActualCost.Add(*cost)
			}
		case domain.WorkOrderCanceled:
			continue
		default:
			l.OpenWorkOrders++
		}
		l.PlannedMinutes += int(planned.Int64)
		if cost, err := parseNullableDecimal("estimated_cost", estimated); err != nil {
			return nil, err
		} else if cost != nil {
			l.EstimatedCost = l.EstimatedCost.Add(*cost)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating work center usage: %w", err)
	}
	return out, nil
}

func scanWorkCenter(row rowScanner) (*domain.WorkCenter, error) {
	var wc domain.WorkCenter
	var rate, efficiency, createdAt, updatedAt string
	err := row.Scan(&wc.ID, &wc.Name, &wc.Description, &rate, &wc.Capacity, &efficiency,
		&wc.Active, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning work center: %w", err)
	}
	if wc.CostPerHour, err = parseDecimal("cost_per_hour", rate); err != nil {
		return nil, err
	}
	if wc.Efficiency, err = parseDecimal("efficiency", efficiency); err != nil {
		return nil, err
	}
	if wc.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return nil, err
	}
	if wc.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return nil, err
	}
	return &wc, nil
}
