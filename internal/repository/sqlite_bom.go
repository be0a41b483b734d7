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

const bomColumns = `id, name, description, version, archived_at, created_at`

// SQLiteBOMRepo implements BOMRepo using a SQLite database. BOM rows are
// never updated in place except for archival.
type SQLiteBOMRepo struct {
	db db.DBTX
}

func NewSQLiteBOMRepo(conn db.DBTX) *SQLiteBOMRepo {
	return &SQLiteBOMRepo{db: conn}
}

func (r *SQLiteBOMRepo) Create(ctx context.Context, b *domain.BillOfMaterials) error {
	query := `INSERT INTO boms (` + bomColumns + `) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		b.ID,
		b.Name,
		b.Description,
		b.Version,
		nullableTimeToString(b.ArchivedAt),
		formatTime(b.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.DuplicateNameError{Name: b.Name, Version: b.Version}
		}
		return fmt.Errorf("inserting bom: %w", err)
	}

	lineQuery := `INSERT INTO bom_lines (bom_id, component_id, quantity_required, notes, position)
		VALUES (?, ?, ?, ?, ?)`
	for i, l := range b.Lines {
		if _, err := r.db.ExecContext(ctx, lineQuery, b.ID, l.ComponentID, l.QuantityRequired, l.Notes, i); err != nil {
			if isForeignKeyViolation(err) {
				return &domain.ValidationError{Field: "component_id", Reason: "unknown component " + l.ComponentID}
			}
			return fmt.Errorf("inserting bom line %d: %w", i, err)
		}
	}
	return nil
}

func (r *SQLiteBOMRepo) GetByID(ctx context.Context, id string) (*domain.BillOfMaterials, error) {
	query := `SELECT ` + bomColumns + ` FROM boms WHERE id = ?`
	b, err := scanBOM(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "bom", ID: id}
	}
	if err != nil {
		return nil, err
	}
	if b.Lines, err = r.lines(ctx, b.ID); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *SQLiteBOMRepo) LatestVersion(ctx context.Context, name string) (int, error) {
	var v int
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM boms WHERE name = ?`, name).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("reading latest version of bom %q: %w", name, err)
	}
	return v, nil
}

// List returns the newest non-archived version of every BOM name.
func (r *SQLiteBOMRepo) List(ctx context.Context) ([]*domain.BillOfMaterials, error) {
	query := `SELECT ` + bomColumns + ` FROM boms b
		WHERE archived_at IS NULL
		  AND version = (SELECT MAX(version) FROM boms WHERE name = b.name AND archived_at IS NULL)
		ORDER BY name`
	return r.list(ctx, query)
}

func (r *SQLiteBOMRepo) ListVersions(ctx context.Context, name string) ([]*domain.BillOfMaterials, error) {
	query := `SELECT ` + bomColumns + ` FROM boms WHERE name = ? ORDER BY version`
	return r.list(ctx, query, name)
}

func (r *SQLiteBOMRepo) list(ctx context.Context, query string, args ...any) ([]*domain.BillOfMaterials, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing boms: %w", err)
	}
	var boms []*domain.BillOfMaterials
	for rows.Next() {
		b, err := scanBOM(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		boms = append(boms, b)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating boms: %w", err)
	}
	// Close before loading lines; an in-memory database has one connection.
	rows.Close()

	for _, b := range boms {
		if b.Lines, err = r.lines(ctx, b.ID); err != nil {
			return nil, err
		}
	}
	return boms, nil
}

func (r *SQLiteBOMRepo) lines(ctx context.Context, bomID string) ([]domain.BOMLine, error) {
	query := `SELECT l.component_id, c.name, l.quantity_required, c.unit_cost, l.notes, l.position
		FROM bom_lines l
		JOIN components c ON c.id = l.component_id
		WHERE l.bom_id = ?
		ORDER BY l.position`
	rows, err := r.db.QueryContext(ctx, query, bomID)
	if err != nil {
		return nil, fmt.Errorf("listing bom lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.BOMLine
	for rows.Next() {
		var l domain.BOMLine
		var unitCost string
		if err := rows.Scan(&l.ComponentID, &l.ComponentName, &l.QuantityRequired, &unitCost, &l.Notes, &l.Position); err != nil {
			return nil, fmt.Errorf("scanning bom line: %w", err)
		}
		if l.UnitCost, err = parseDecimal("unit_cost", unitCost); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating bom lines: %w", err)
	}
	return lines, nil
}

func (r *SQLiteBOMRepo) Archive(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE boms SET archived_at = ? WHERE id = ? AND archived_at IS NULL`, formatTime(at), id)
	if err != nil {
		return fmt.Errorf("archiving bom: %w", err)
	}
	return requireAffected(res, "bom", id)
}

func (r *SQLiteBOMRepo) CountReferencingComponent(ctx context.Context, componentID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bom_lines WHERE component_id = ?`, componentID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting bom lines for component %s: %w", componentID, err)
	}
	return n, nil
}

// Count returns the number of distinct non-archived BOM names.
func (r *SQLiteBOMRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT name) FROM boms WHERE archived_at IS NULL`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting boms: %w", err)
	}
	return n, nil
}

func scanBOM(row rowScanner) (*domain.BillOfMaterials, error) {
	var b domain.BillOfMaterials
	var archivedAt sql.NullString
	var createdAt string
	err := row.Scan(&b.ID, &b.Name, &b.Description, &b.Version, &archivedAt, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning bom: %w", err)
	}
	b.ArchivedAt = parseNullableTime(archivedAt)
	if b.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return nil, err
	}
	return &b, nil
}
