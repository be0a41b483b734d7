package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/shopfloor/internal/db"
	"github.com/alexanderramin/shopfloor/internal/domain"
)

// componentColumns is the canonical SELECT column list for components.
const componentColumns = `id, name, quantity_on_hand, unit_cost, supplier, reorder_level, created_at, updated_at`

// SQLiteComponentRepo implements ComponentRepo using a SQLite database.
type SQLiteComponentRepo struct {
	db db.DBTX
}

func NewSQLiteComponentRepo(conn db.DBTX) *SQLiteComponentRepo {
	return &SQLiteComponentRepo{db: conn}
}

func (r *SQLiteComponentRepo) Create(ctx context.Context, c *domain.Component) error {
	query := `INSERT INTO components (` + componentColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		c.ID,
		c.Name,
		c.QuantityOnHand,
		c.UnitCost.String(),
		c.Supplier,
		c.ReorderLevel,
		formatTime(c.CreatedAt),
		formatTime(c.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting component: %w", err)
	}
	return nil
}

func (r *SQLiteComponentRepo) GetByID(ctx context.Context, id string) (*domain.Component, error) {
	query := `SELECT ` + componentColumns + ` FROM components WHERE id = ?`
	c, err := scanComponent(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "component", ID: id}
	}
	return c, err
}

func (r *SQLiteComponentRepo) List(ctx context.Context) ([]*domain.Component, error) {
	query := `SELECT ` + componentColumns + ` FROM components ORDER BY name, id`
	return r.list(ctx, query)
}

func (r *SQLiteComponentRepo) ListLowStock(ctx context.Context) ([]*domain.Component, error) {
	query := `SELECT ` + componentColumns + ` FROM components
		WHERE quantity_on_hand < reorder_level
		ORDER BY quantity_on_hand, name`
	return r.list(ctx, query)
}

func (r *SQLiteComponentRepo) list(ctx context.Context, query string, args ...any) ([]*domain.Component, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing components: %w", err)
	}
	defer rows.Close()

	var components []*domain.Component
	for rows.Next() {
		c, err := scanComponent(rows)
		if err != nil {
			return nil, err
		}
		components = append(components, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating components: %w", err)
	}
	return components, nil
}

func (r *SQLiteComponentRepo) Update(ctx context.Context, c *domain.Component) error {
	query := `UPDATE components SET name = ?, unit_cost = ?, supplier = ?, reorder_level = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		c.Name,
		c.UnitCost.String(),
		c.Supplier,
		c.ReorderLevel,
		formatTime(c.UpdatedAt),
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("updating component: %w", err)
	}
	return requireAffected(res, "component", c.ID)
}

// Debit decrements on-hand stock in a single compare-and-decrement
// statement, so concurrent debits can never drive the balance negative.
func (r *SQLiteComponentRepo) Debit(ctx context.Context, id string, qty int) (int, error) {
	query := `UPDATE components
		SET quantity_on_hand = quantity_on_hand - ?, updated_at = ?
		WHERE id = ? AND quantity_on_hand >= ?
		RETURNING quantity_on_hand`
	var balance int
	err := r.db.QueryRowContext(ctx, query, qty, formatTime(time.Now()), id, qty).Scan(&balance)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("debiting component %s: %w", id, err)
	}

	var name string
	var available int
	err = r.db.QueryRowContext(ctx, `SELECT name, quantity_on_hand FROM components WHERE id = ?`, id).Scan(&name, &available)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, &domain.NotFoundError{Entity: "component", ID: id}
	}
	if err != nil {
		return 0, fmt.Errorf("reading balance of component %s: %w", id, err)
	}
	return 0, &domain.InsufficientStockError{
		ComponentID:   id,
		ComponentName: name,
		Required:      qty,
		Available:     available,
	}
}

func (r *SQLiteComponentRepo) Credit(ctx context.Context, id string, qty int) (int, error) {
	query := `UPDATE components
		SET quantity_on_hand = quantity_on_hand + ?, updated_at = ?
		WHERE id = ?
		RETURNING quantity_on_hand`
	var balance int
	err := r.db.QueryRowContext(ctx, query, qty, formatTime(time.Now()), id).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, &domain.NotFoundError{Entity: "component", ID: id}
	}
	if err != nil {
		return 0, fmt.Errorf("crediting component %s: %w", id, err)
	}
	return balance, nil
}

func (r *SQLiteComponentRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM components WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return &domain.ConflictError{Entity: "component", ID: id, Reason: "referenced by a bill of materials"}
		}
		return fmt.Errorf("deleting component: %w", err)
	}
	return requireAffected(res, "component", id)
}

func (r *SQLiteComponentRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM components`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting components: %w", err)
	}
	return n, nil
}

func scanComponent(row rowScanner) (*domain.Component, error) {
	var c domain.Component
	var unitCost, createdAt, updatedAt string
	err := row.Scan(
		&c.ID, &c.Name, &c.QuantityOnHand, &unitCost,
		&c.Supplier, &c.ReorderLevel, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning component: %w", err)
	}

	if c.UnitCost, err = parseDecimal("unit_cost", unitCost); err != nil {
		return nil, err
	}
	if c.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// requireAffected turns a zero-row write into a NotFoundError.
func requireAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return &domain.NotFoundError{Entity: entity, ID: id}
	}
	return nil
}
