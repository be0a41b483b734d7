package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/shopfloor/internal/db"
)

// OrderReferenceSequence names the counter behind MO-0001 style references.
const OrderReferenceSequence = "manufacturing_order"

// SQLiteOrderSequenceRepo allocates named sequence values atomically using
// the order_sequences table.
type SQLiteOrderSequenceRepo struct {
	db db.DBTX
}

func NewSQLiteOrderSequenceRepo(conn db.DBTX) *SQLiteOrderSequenceRepo {
	return &SQLiteOrderSequenceRepo{db: conn}
}

// Next returns the next value of the named sequence, starting at 1.
// Allocation is a single UPDATE ... RETURNING, safe under concurrent writers.
func (r *SQLiteOrderSequenceRepo) Next(ctx context.Context, name string) (int, error) {
	if _, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO order_sequences (name, next_seq) VALUES (?, 1)`, name); err != nil {
		return 0, fmt.Errorf("seeding sequence %s: %w", name, err)
	}

	var next int
	allocQuery := `UPDATE order_sequences
		SET next_seq = next_seq + 1
		WHERE name = ?
		RETURNING next_seq - 1`
	if err := r.db.QueryRowContext(ctx, allocQuery, name).Scan(&next); err != nil {
		return 0, fmt.Errorf("allocating next value of sequence %s: %w", name, err)
	}
	return next, nil
}
