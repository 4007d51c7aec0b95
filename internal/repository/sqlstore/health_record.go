package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/careops/registry-api/internal/model"
	"github.com/careops/registry-api/internal/repository"
	apperrors "github.com/careops/registry-api/pkg/errors"
)

type healthRecordRepository struct {
	db *sqlx.DB
}

func NewHealthRecordRepository(db *sqlx.DB) repository.HealthRecordRepository {
	return &healthRecordRepository{db: db}
}

func (r *healthRecordRepository) Create(ctx context.Context, record *model.HealthRecord) error {
	query := r.db.Rebind(`
		INSERT INTO health_records (patient_id, location_id, height, weight, temperature,
			blood_pressure_systolic, blood_pressure_diastolic, heart_rate, notes,
			recorded_by, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)
	record.RecordedAt = time.Now().UTC()

	err := r.db.QueryRowxContext(ctx, query,
		record.PatientID,
		record.LocationID,
		record.Height,
		record.Weight,
		record.Temperature,
		record.BloodPressureSystolic,
		record.BloodPressureDiastolic,
		record.HeartRate,
		record.Notes,
		record.RecordedBy,
		record.RecordedAt,
	).Scan(&record.ID)
	if err != nil {
		switch {
		// The service resolves the patient by code first, so a dangling
		// reference here is the measuring location.
		case isForeignKeyViolation(err):
			return apperrors.NewReferentialIntegrity("health_record", "location_id", err)
		case isNotNullViolation(err):
			return apperrors.NewValidation("health_record", notNullColumn(err))
		}
		return fmt.Errorf("failed to create health record: %w", err)
	}
	return nil
}

func (r *healthRecordRepository) ListForPatient(ctx context.Context, patientID int64) ([]*model.HealthRecordWithLocation, error) {
	query := r.db.Rebind(`
		SELECT hr.*, l.name AS location_name
		FROM health_records hr
		JOIN locations l ON hr.location_id = l.id
		WHERE hr.patient_id = ?
		ORDER BY hr.recorded_at DESC, hr.id DESC
	`)
	records := []*model.HealthRecordWithLocation{}
	if err := r.db.SelectContext(ctx, &records, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list health records: %w", err)
	}
	return records, nil
}
