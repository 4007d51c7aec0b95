package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/careops/registry-api/internal/repository"
)

type sequenceRepository struct {
	db *sqlx.DB
}

func NewSequenceRepository(db *sqlx.DB) repository.SequenceRepository {
	return &sequenceRepository{db: db}
}

// Next reserves the next value of a named counter. The single UPDATE is
// atomic in both drivers, so two concurrent callers can never observe the
// same value. Values burned by failed inserts are not reused.
func (r *sequenceRepository) Next(ctx context.Context, name string) (int64, error) {
	query := r.db.Rebind(`
		UPDATE code_sequences SET value = value + 1 WHERE name = ? RETURNING value
	`)
	var value int64
	err := r.db.QueryRowxContext(ctx, query, name).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, fmt.Errorf("unknown code sequence %q", name)
		}
		return 0, fmt.Errorf("failed to reserve sequence value: %w", err)
	}
	return value, nil
}
