package registry

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careops/registry-api/internal/config"
	"github.com/careops/registry-api/internal/identifier"
	"github.com/careops/registry-api/internal/model"
	"github.com/careops/registry-api/internal/notify"
	"github.com/careops/registry-api/internal/repository/sqlstore"
	"github.com/careops/registry-api/internal/workflow"
	apperrors "github.com/careops/registry-api/pkg/errors"
)

type fixture struct {
	db      *sqlx.DB
	service *Service
	sent    []string
	mu      sync.Mutex
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := sqlstore.NewDB(config.DatabaseConfig{
		Driver: sqlstore.DriverSQLite,
		Path:   ":memory:",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, sqlstore.Migrate(context.Background(), db))

	f := &fixture{db: db}

	sender := notify.SenderFunc(func(_ context.Context, _, message string) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.sent = append(f.sent, message)
		return nil
	})

	samples := sqlstore.NewBloodSampleRepository(db)
	engine := workflow.NewEngine(samples, sender, time.Second, nil, zerolog.Nop())

	f.service = NewService(
		sqlstore.NewLocationRepository(db),
		sqlstore.NewPatientRepository(db),
		sqlstore.NewHealthRecordRepository(db),
		samples,
		identifier.NewIssuer(sqlstore.NewSequenceRepository(db)),
		engine,
		time.Minute,
		nil,
		zerolog.Nop(),
	)
	return f
}

func validRegistration() *model.RegisterPatientRequest {
	return &model.RegisterPatientRequest{
		FirstName:   "John",
		LastName:    "Doe",
		DateOfBirth: "1990-05-20",
		Gender:      "male",
		Phone:       "+1555000111",
		LocationID:  1,
	}
}

func TestRegisterPatientAssignsSequentialCodes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.service.RegisterPatient(ctx, validRegistration())
	require.NoError(t, err)
	assert.Equal(t, "PAT000001", first.PatientCode)
	assert.Equal(t, time.Date(1990, 5, 20, 0, 0, 0, 0, time.UTC), first.DateOfBirth)

	second, err := f.service.RegisterPatient(ctx, validRegistration())
	require.NoError(t, err)
	assert.Equal(t, "PAT000002", second.PatientCode)
}

func TestRegisterPatientValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*model.RegisterPatientRequest)
		field  string
	}{
		{"missing first name", func(r *model.RegisterPatientRequest) { r.FirstName = "" }, "first_name"},
		{"missing last name", func(r *model.RegisterPatientRequest) { r.LastName = "  " }, "last_name"},
		{"missing gender", func(r *model.RegisterPatientRequest) { r.Gender = "" }, "gender"},
		{"missing phone", func(r *model.RegisterPatientRequest) { r.Phone = "" }, "phone"},
		{"missing location", func(r *model.RegisterPatientRequest) { r.LocationID = 0 }, "location_id"},
		{"malformed date of birth", func(r *model.RegisterPatientRequest) { r.DateOfBirth = "20/05/1990" }, "date_of_birth"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRegistration()
			tt.mutate(req)

			_, err := f.service.RegisterPatient(ctx, req)
			require.Error(t, err)
			assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

			appErr := err.(*apperrors.AppError)
			assert.Equal(t, tt.field, appErr.Field)
		})
	}
}

func TestRegisterPatientUnknownLocation(t *testing.T) {
	f := newFixture(t)

	req := validRegistration()
	req.LocationID = 42

	_, err := f.service.RegisterPatient(context.Background(), req)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindReferentialIntegrity))
}

func TestPatientDetail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	patient, err := f.service.RegisterPatient(ctx, validRegistration())
	require.NoError(t, err)

	detail, err := f.service.PatientDetail(ctx, patient.PatientCode)
	require.NoError(t, err)

	assert.Equal(t, "PAT000001", detail.Patient.PatientCode)
	assert.Equal(t, model.SeedLocationName, detail.Patient.LocationName)
	assert.Equal(t, "QR:PAT000001", detail.QRCode)
	assert.Empty(t, detail.HealthRecords)
	assert.Empty(t, detail.BloodSamples)
}

func TestPatientLookupIsCaseInsensitive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.RegisterPatient(ctx, validRegistration())
	require.NoError(t, err)

	detail, err := f.service.PatientDetail(ctx, "  pat000001 ")
	require.NoError(t, err)
	assert.Equal(t, "PAT000001", detail.Patient.PatientCode)
}

func TestAddHealthRecordParsesVitals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.RegisterPatient(ctx, validRegistration())
	require.NoError(t, err)

	record, err := f.service.AddHealthRecord(ctx, "PAT000001", &model.AddHealthRecordRequest{
		LocationID:  1,
		RecordedBy:  "Nurse Adams",
		Height:      "175.5",
		Weight:      "70.2",
		Temperature: "36.6",
		BPSystolic:  "120",
		BPDiastolic: "80",
		HeartRate:   "72",
		Notes:       "routine checkup",
	})
	require.NoError(t, err)

	assert.Equal(t, 175.5, *record.Height)
	assert.Equal(t, 70.2, *record.Weight)
	assert.Equal(t, "120/80", record.BloodPressure())

	detail, err := f.service.PatientDetail(ctx, "PAT000001")
	require.NoError(t, err)
	require.Len(t, detail.HealthRecords, 1)
	assert.Equal(t, model.SeedLocationName, detail.HealthRecords[0].LocationName)
}

func TestAddHealthRecordEmptyVitalsMeanNotMeasured(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.RegisterPatient(ctx, validRegistration())
	require.NoError(t, err)

	record, err := f.service.AddHealthRecord(ctx, "PAT000001", &model.AddHealthRecordRequest{
		LocationID: 1,
		RecordedBy: "Nurse Adams",
	})
	require.NoError(t, err)

	assert.Nil(t, record.Height)
	assert.Nil(t, record.Weight)
	assert.Nil(t, record.Temperature)
	assert.Nil(t, record.HeartRate)
}

func TestAddHealthRecordRejectsNonNumericVitals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.RegisterPatient(ctx, validRegistration())
	require.NoError(t, err)

	tests := []struct {
		field  string
		mutate func(*model.AddHealthRecordRequest)
	}{
		{"height", func(r *model.AddHealthRecordRequest) { r.Height = "tall" }},
		{"weight", func(r *model.AddHealthRecordRequest) { r.Weight = "heavy" }},
		{"temperature", func(r *model.AddHealthRecordRequest) { r.Temperature = "warm" }},
		{"bp_systolic", func(r *model.AddHealthRecordRequest) { r.BPSystolic = "12x" }},
		{"heart_rate", func(r *model.AddHealthRecordRequest) { r.HeartRate = "72.5" }},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			req := &model.AddHealthRecordRequest{LocationID: 1, RecordedBy: "Nurse Adams"}
			tt.mutate(req)

			_, err := f.service.AddHealthRecord(ctx, "PAT000001", req)
			require.Error(t, err)
			assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
			assert.Equal(t, tt.field, err.(*apperrors.AppError).Field)
		})
	}
}

func TestAddHealthRecordUnknownPatient(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.AddHealthRecord(context.Background(), "PAT999999", &model.AddHealthRecordRequest{
		LocationID: 1,
		RecordedBy: "Nurse Adams",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestSampleLifecycleEndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.RegisterPatient(ctx, validRegistration())
	require.NoError(t, err)

	sample, err := f.service.CollectBloodSample(ctx, "PAT000001", &model.CollectSampleRequest{
		CollectionLocationID: 1,
		TestType:             "Blood Sugar",
		CollectedBy:          "Nurse Adams",
	})
	require.NoError(t, err)
	assert.Equal(t, "BS000001", sample.SampleCode)
	assert.Equal(t, model.SampleStatusCollected, sample.Status)

	tested, err := f.service.RecordTestResults(ctx, "bs000001", &model.RecordTestResultsRequest{
		TestLocationID: 1,
		Results:        "Glucose: 95 mg/dL (normal)",
		TestedBy:       "Dr. Smith",
	})
	require.NoError(t, err)
	assert.Equal(t, model.SampleStatusTested, tested.Status)

	delivered, err := f.service.DeliverResults(ctx, "BS000001")
	require.NoError(t, err)
	assert.Equal(t, model.SampleStatusResultsSent, delivered.Status)
	assert.NotNil(t, delivered.ResultsSentAt)

	require.Len(t, f.sent, 1)
	assert.Contains(t, f.sent[0], "Patient: John Doe")
	assert.Contains(t, f.sent[0], "Sample ID: BS000001")

	// Re-delivery of a closed sample is rejected.
	_, err = f.service.DeliverResults(ctx, "BS000001")
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidTransition))
}

func TestRecordTestResultsValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.RecordTestResults(ctx, "BS000001", &model.RecordTestResultsRequest{
		TestLocationID: 1,
		TestedBy:       "Dr. Smith",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	assert.Equal(t, "results", err.(*apperrors.AppError).Field)

	_, err = f.service.RecordTestResults(ctx, "BS000001", &model.RecordTestResultsRequest{
		Results:  "fine",
		TestedBy: "Dr. Smith",
	})
	require.Error(t, err)
	assert.Equal(t, "test_location_id", err.(*apperrors.AppError).Field)
}

func TestCollectSampleValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.RegisterPatient(ctx, validRegistration())
	require.NoError(t, err)

	_, err = f.service.CollectBloodSample(ctx, "PAT000001", &model.CollectSampleRequest{
		CollectionLocationID: 1,
		CollectedBy:          "Nurse Adams",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	assert.Equal(t, "test_type", err.(*apperrors.AppError).Field)
}

func TestAddLocation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	location, err := f.service.AddLocation(ctx, &model.CreateLocationRequest{
		Name:    "Northside Clinic",
		Address: "9 Elm St",
		Phone:   "+1555222333",
	})
	require.NoError(t, err)
	assert.NotZero(t, location.ID)

	_, err = f.service.AddLocation(ctx, &model.CreateLocationRequest{Name: "  "})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	locations, err := f.service.ListLocations(ctx)
	require.NoError(t, err)
	assert.Len(t, locations, 2)
}

func TestDashboardSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	summary, err := f.service.DashboardSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), summary.TotalPatients)
	assert.Equal(t, int64(1), summary.TotalLocations)
	assert.Equal(t, int64(0), summary.PendingSamples)
	assert.Empty(t, summary.RecentPatients)

	// Mutations invalidate the cached summary.
	for i := 0; i < 7; i++ {
		_, err := f.service.RegisterPatient(ctx, validRegistration())
		require.NoError(t, err)
	}
	_, err = f.service.CollectBloodSample(ctx, "PAT000001", &model.CollectSampleRequest{
		CollectionLocationID: 1,
		TestType:             "Blood Sugar",
		CollectedBy:          "Nurse Adams",
	})
	require.NoError(t, err)

	summary, err = f.service.DashboardSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), summary.TotalPatients)
	assert.Equal(t, int64(1), summary.PendingSamples)
	require.Len(t, summary.RecentPatients, 5)
	assert.Equal(t, "PAT000007", summary.RecentPatients[0].PatientCode)
}

func TestListPatientsNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.service.RegisterPatient(ctx, validRegistration())
		require.NoError(t, err)
	}

	patients, err := f.service.ListPatients(ctx)
	require.NoError(t, err)
	require.Len(t, patients, 3)
	assert.Equal(t, "PAT000003", patients[0].PatientCode)
}

func TestTestTypesCatalog(t *testing.T) {
	f := newFixture(t)

	types := f.service.TestTypes()
	assert.Contains(t, types, "Complete Blood Count (CBC)")
	assert.Contains(t, types, "Other")
}

func TestRegisterPatientRetriesPastHandLoadedCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// A row loaded outside the issuer occupies the next code in line; the
	// insert collides and registration must retry with a fresh code.
	preloaded := &model.Patient{
		PatientCode: "PAT000001",
		FirstName:   "Imported",
		LastName:    "Row",
		DateOfBirth: time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC),
		Gender:      "female",
		Phone:       "+1555000999",
		LocationID:  1,
	}
	require.NoError(t, sqlstore.NewPatientRepository(f.db).Create(ctx, preloaded))

	patient, err := f.service.RegisterPatient(ctx, validRegistration())
	require.NoError(t, err)
	assert.Equal(t, "PAT000002", patient.PatientCode)
}

func TestCollectSampleRetriesPastHandLoadedCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	patient, err := f.service.RegisterPatient(ctx, validRegistration())
	require.NoError(t, err)

	preloaded := &model.BloodSample{
		SampleCode:           "BS000001",
		PatientID:            patient.ID,
		CollectionLocationID: 1,
		CollectedBy:          "Import Script",
		TestType:             "Other",
	}
	require.NoError(t, sqlstore.NewBloodSampleRepository(f.db).Create(ctx, preloaded))

	sample, err := f.service.CollectBloodSample(ctx, patient.PatientCode, &model.CollectSampleRequest{
		CollectionLocationID: 1,
		TestType:             "Blood Sugar",
		CollectedBy:          "Nurse Adams",
	})
	require.NoError(t, err)
	assert.Equal(t, "BS000002", sample.SampleCode)
}

func TestRegisterPatientGivesUpWhenRetriesExhaust(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	patients := sqlstore.NewPatientRepository(f.db)

	// Occupy every code the bounded retry will try.
	for i := 1; i <= 3; i++ {
		require.NoError(t, patients.Create(ctx, &model.Patient{
			PatientCode: fmt.Sprintf("PAT%06d", i),
			FirstName:   "Imported",
			LastName:    "Row",
			DateOfBirth: time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC),
			Gender:      "female",
			Phone:       "+1555000999",
			LocationID:  1,
		}))
	}

	_, err := f.service.RegisterPatient(ctx, validRegistration())
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindDuplicateIdentifier))

	// The counter has moved past the occupied range, so the next call wins.
	patient, err := f.service.RegisterPatient(ctx, validRegistration())
	require.NoError(t, err)
	assert.Equal(t, "PAT000004", patient.PatientCode)
}

func TestConcurrentRegistrationsKeepCodesUnique(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const n = 10
	var wg sync.WaitGroup
	codes := make(chan string, n)
	errs := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			patient, err := f.service.RegisterPatient(ctx, validRegistration())
			if err != nil {
				errs <- err
				return
			}
			codes <- patient.PatientCode
		}()
	}
	wg.Wait()
	close(codes)
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	seen := map[string]bool{}
	for code := range codes {
		assert.False(t, seen[code], fmt.Sprintf("code %s issued twice", code))
		seen[code] = true
	}
	assert.Len(t, seen, n)
}
