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

type patientRepository struct {
	db *sqlx.DB
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{db: db}
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := r.db.Rebind(`
		INSERT INTO patients (patient_code, first_name, last_name, date_of_birth, gender,
			phone, email, address, emergency_contact, location_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)
	patient.CreatedAt = time.Now().UTC()

	err := r.db.QueryRowxContext(ctx, query,
		patient.PatientCode,
		patient.FirstName,
		patient.LastName,
		patient.DateOfBirth,
		patient.Gender,
		patient.Phone,
		patient.Email,
		patient.Address,
		patient.EmergencyContact,
		patient.LocationID,
		patient.CreatedAt,
	).Scan(&patient.ID)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return apperrors.NewDuplicateIdentifier("patient", patient.PatientCode, err)
		case isForeignKeyViolation(err):
			return apperrors.NewReferentialIntegrity("patient", "location_id", err)
		case isNotNullViolation(err):
			return apperrors.NewValidation("patient", notNullColumn(err))
		}
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) GetByCode(ctx context.Context, code string) (*model.PatientWithLocation, error) {
	query := r.db.Rebind(`
		SELECT p.*, l.name AS location_name
		FROM patients p
		JOIN locations l ON p.location_id = l.id
		WHERE p.patient_code = ?
	`)
	var patient model.PatientWithLocation
	err := r.db.GetContext(ctx, &patient, query, code)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFound("patient", code)
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) List(ctx context.Context) ([]*model.PatientWithLocation, error) {
	query := `
		SELECT p.*, l.name AS location_name
		FROM patients p
		JOIN locations l ON p.location_id = l.id
		ORDER BY p.created_at DESC, p.id DESC
	`
	patients := []*model.PatientWithLocation{}
	if err := r.db.SelectContext(ctx, &patients, query); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

func (r *patientRepository) ListRecent(ctx context.Context, limit int) ([]*model.PatientWithLocation, error) {
	query := r.db.Rebind(`
		SELECT p.*, l.name AS location_name
		FROM patients p
		JOIN locations l ON p.location_id = l.id
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT ?
	`)
	patients := []*model.PatientWithLocation{}
	if err := r.db.SelectContext(ctx, &patients, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list recent patients: %w", err)
	}
	return patients, nil
}

func (r *patientRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM patients`); err != nil {
		return 0, fmt.Errorf("failed to count patients: %w", err)
	}
	return count, nil
}
