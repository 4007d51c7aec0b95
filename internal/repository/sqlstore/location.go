package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/careops/registry-api/internal/model"
	"github.com/careops/registry-api/internal/repository"
	apperrors "github.com/careops/registry-api/pkg/errors"
)

type locationRepository struct {
	db *sqlx.DB
}

func NewLocationRepository(db *sqlx.DB) repository.LocationRepository {
	return &locationRepository{db: db}
}

func (r *locationRepository) Create(ctx context.Context, location *model.Location) error {
	query := r.db.Rebind(`
		INSERT INTO locations (name, address, phone, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`)
	location.CreatedAt = time.Now().UTC()

	err := r.db.QueryRowxContext(ctx, query,
		location.Name,
		location.Address,
		location.Phone,
		location.CreatedAt,
	).Scan(&location.ID)
	if err != nil {
		if isNotNullViolation(err) {
			return apperrors.NewValidation("location", notNullColumn(err))
		}
		return fmt.Errorf("failed to create location: %w", err)
	}
	return nil
}

func (r *locationRepository) Get(ctx context.Context, id int64) (*model.Location, error) {
	query := r.db.Rebind(`SELECT * FROM locations WHERE id = ?`)
	var location model.Location
	err := r.db.GetContext(ctx, &location, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFound("location", fmt.Sprintf("%d", id))
		}
		return nil, fmt.Errorf("failed to get location: %w", err)
	}
	return &location, nil
}

func (r *locationRepository) List(ctx context.Context) ([]*model.Location, error) {
	query := `SELECT * FROM locations ORDER BY created_at DESC, id DESC`
	locations := []*model.Location{}
	if err := r.db.SelectContext(ctx, &locations, query); err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	return locations, nil
}

func (r *locationRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM locations`); err != nil {
		return 0, fmt.Errorf("failed to count locations: %w", err)
	}
	return count, nil
}
