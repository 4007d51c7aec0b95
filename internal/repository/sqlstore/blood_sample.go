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

type bloodSampleRepository struct {
	db *sqlx.DB
}

func NewBloodSampleRepository(db *sqlx.DB) repository.BloodSampleRepository {
	return &bloodSampleRepository{db: db}
}

func (r *bloodSampleRepository) Create(ctx context.Context, sample *model.BloodSample) error {
	query := r.db.Rebind(`
		INSERT INTO blood_samples (sample_code, patient_id, collection_location_id,
			collected_by, collected_at, test_type, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)
	sample.CollectedAt = time.Now().UTC()
	sample.Status = model.SampleStatusCollected

	err := r.db.QueryRowxContext(ctx, query,
		sample.SampleCode,
		sample.PatientID,
		sample.CollectionLocationID,
		sample.CollectedBy,
		sample.CollectedAt,
		sample.TestType,
		sample.Status,
	).Scan(&sample.ID)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return apperrors.NewDuplicateIdentifier("blood_sample", sample.SampleCode, err)
		// The service resolves the patient by code first, so a dangling
		// reference here is the collection location.
		case isForeignKeyViolation(err):
			return apperrors.NewReferentialIntegrity("blood_sample", "collection_location_id", err)
		case isNotNullViolation(err):
			return apperrors.NewValidation("blood_sample", notNullColumn(err))
		}
		return fmt.Errorf("failed to create blood sample: %w", err)
	}
	return nil
}

func (r *bloodSampleRepository) GetByCode(ctx context.Context, code string) (*model.BloodSample, error) {
	query := r.db.Rebind(`SELECT * FROM blood_samples WHERE sample_code = ?`)
	var sample model.BloodSample
	err := r.db.GetContext(ctx, &sample, query, code)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFound("blood_sample", code)
		}
		return nil, fmt.Errorf("failed to get blood sample: %w", err)
	}
	return &sample, nil
}

func (r *bloodSampleRepository) GetByCodeWithPatient(ctx context.Context, code string) (*model.SampleWithPatient, error) {
	query := r.db.Rebind(`
		SELECT bs.*, p.patient_code, p.first_name, p.last_name, p.phone AS patient_phone,
			cl.name AS collection_location_name
		FROM blood_samples bs
		JOIN patients p ON bs.patient_id = p.id
		JOIN locations cl ON bs.collection_location_id = cl.id
		WHERE bs.sample_code = ?
	`)
	var sample model.SampleWithPatient
	err := r.db.GetContext(ctx, &sample, query, code)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFound("blood_sample", code)
		}
		return nil, fmt.Errorf("failed to get blood sample: %w", err)
	}
	return &sample, nil
}

func (r *bloodSampleRepository) ListForPatient(ctx context.Context, patientID int64) ([]*model.SampleWithLocations, error) {
	query := r.db.Rebind(`
		SELECT bs.*, cl.name AS collection_location_name, tl.name AS test_location_name
		FROM blood_samples bs
		JOIN locations cl ON bs.collection_location_id = cl.id
		LEFT JOIN locations tl ON bs.test_location_id = tl.id
		WHERE bs.patient_id = ?
		ORDER BY bs.collected_at DESC, bs.id DESC
	`)
	samples := []*model.SampleWithLocations{}
	if err := r.db.SelectContext(ctx, &samples, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list blood samples: %w", err)
	}
	return samples, nil
}

func (r *bloodSampleRepository) ListAll(ctx context.Context) ([]*model.SampleWithPatient, error) {
	query := `
		SELECT bs.*, p.patient_code, p.first_name, p.last_name, p.phone AS patient_phone,
			cl.name AS collection_location_name
		FROM blood_samples bs
		JOIN patients p ON bs.patient_id = p.id
		JOIN locations cl ON bs.collection_location_id = cl.id
		ORDER BY bs.collected_at DESC, bs.id DESC
	`
	samples := []*model.SampleWithPatient{}
	if err := r.db.SelectContext(ctx, &samples, query); err != nil {
		return nil, fmt.Errorf("failed to list blood samples: %w", err)
	}
	return samples, nil
}

func (r *bloodSampleRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM blood_samples`); err != nil {
		return 0, fmt.Errorf("failed to count blood samples: %w", err)
	}
	return count, nil
}

func (r *bloodSampleRepository) CountPending(ctx context.Context) (int64, error) {
	query := r.db.Rebind(`SELECT COUNT(*) FROM blood_samples WHERE status = ?`)
	var count int64
	if err := r.db.GetContext(ctx, &count, query, model.SampleStatusCollected); err != nil {
		return 0, fmt.Errorf("failed to count pending samples: %w", err)
	}
	return count, nil
}

func (r *bloodSampleRepository) RecordResults(ctx context.Context, code string, testLocationID int64, results, testedBy string, testedAt time.Time) (int64, error) {
	query := r.db.Rebind(`
		UPDATE blood_samples
		SET test_location_id = ?, results = ?, tested_by = ?, tested_at = ?, status = ?
		WHERE sample_code = ? AND status = ?
	`)
	res, err := r.db.ExecContext(ctx, query,
		testLocationID,
		results,
		testedBy,
		testedAt,
		model.SampleStatusTested,
		code,
		model.SampleStatusCollected,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, apperrors.NewReferentialIntegrity("blood_sample", "test_location_id", err)
		}
		return 0, fmt.Errorf("failed to record test results: %w", err)
	}
	return res.RowsAffected()
}

func (r *bloodSampleRepository) MarkDelivered(ctx context.Context, code string, sentAt time.Time) (int64, error) {
	query := r.db.Rebind(`
		UPDATE blood_samples
		SET status = ?, results_sent_at = ?
		WHERE sample_code = ? AND status = ?
	`)
	res, err := r.db.ExecContext(ctx, query,
		model.SampleStatusResultsSent,
		sentAt,
		code,
		model.SampleStatusTested,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark results sent: %w", err)
	}
	return res.RowsAffected()
}
