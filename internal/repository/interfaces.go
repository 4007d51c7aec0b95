package repository

import (
	"context"
	"time"

	"github.com/careops/registry-api/internal/model"
)

type LocationRepository interface {
	Create(ctx context.Context, location *model.Location) error
	Get(ctx context.Context, id int64) (*model.Location, error)
	List(ctx context.Context) ([]*model.Location, error)
	Count(ctx context.Context) (int64, error)
}

type PatientRepository interface {
	Create(ctx context.Context, patient *model.Patient) error
	GetByCode(ctx context.Context, code string) (*model.PatientWithLocation, error)
	List(ctx context.Context) ([]*model.PatientWithLocation, error)
	ListRecent(ctx context.Context, limit int) ([]*model.PatientWithLocation, error)
	Count(ctx context.Context) (int64, error)
}

type HealthRecordRepository interface {
	Create(ctx context.Context, record *model.HealthRecord) error
	ListForPatient(ctx context.Context, patientID int64) ([]*model.HealthRecordWithLocation, error)
}

type BloodSampleRepository interface {
	Create(ctx context.Context, sample *model.BloodSample) error
	GetByCode(ctx context.Context, code string) (*model.BloodSample, error)
	GetByCodeWithPatient(ctx context.Context, code string) (*model.SampleWithPatient, error)
	ListForPatient(ctx context.Context, patientID int64) ([]*model.SampleWithLocations, error)
	ListAll(ctx context.Context) ([]*model.SampleWithPatient, error)
	Count(ctx context.Context) (int64, error)
	CountPending(ctx context.Context) (int64, error)

	// RecordResults applies the collected -> tested transition as a
	// compare-and-set on status. Returns the number of rows updated;
	// zero means the sample was missing or not in collected state.
	RecordResults(ctx context.Context, code string, testLocationID int64, results, testedBy string, testedAt time.Time) (int64, error)

	// MarkDelivered applies the tested -> results_sent transition as a
	// compare-and-set on status. Returns the number of rows updated.
	MarkDelivered(ctx context.Context, code string, sentAt time.Time) (int64, error)
}

// SequenceRepository reserves values from named monotonic counters. A
// reserved value is never handed out twice, even across crashed requests.
type SequenceRepository interface {
	Next(ctx context.Context, name string) (int64, error)
}
