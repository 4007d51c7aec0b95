// Package registry is the facade the presentation layer calls: it validates
// typed inputs, issues identifiers, writes through the entity store and
// drives the sample workflow engine.
package registry

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/careops/registry-api/internal/identifier"
	"github.com/careops/registry-api/internal/model"
	"github.com/careops/registry-api/internal/repository"
	"github.com/careops/registry-api/internal/workflow"
	apperrors "github.com/careops/registry-api/pkg/errors"
	"github.com/careops/registry-api/pkg/metrics"
)

const (
	dashboardCacheKey  = "dashboard_summary"
	recentPatientLimit = 5
	dateOfBirthLayout  = "2006-01-02"

	// Duplicate identifiers cannot arise from the counter-backed issuer,
	// but the uniqueness constraint can still fire (e.g. rows loaded by
	// hand); issuance + insert is retried as one unit.
	maxIssueAttempts = 3
)

type RegistryService interface {
	RegisterPatient(ctx context.Context, req *model.RegisterPatientRequest) (*model.Patient, error)
	AddLocation(ctx context.Context, req *model.CreateLocationRequest) (*model.Location, error)
	AddHealthRecord(ctx context.Context, patientCode string, req *model.AddHealthRecordRequest) (*model.HealthRecord, error)
	CollectBloodSample(ctx context.Context, patientCode string, req *model.CollectSampleRequest) (*model.BloodSample, error)
	RecordTestResults(ctx context.Context, sampleCode string, req *model.RecordTestResultsRequest) (*model.BloodSample, error)
	DeliverResults(ctx context.Context, sampleCode string) (*model.BloodSample, error)

	DashboardSummary(ctx context.Context) (*model.DashboardSummary, error)
	PatientDetail(ctx context.Context, patientCode string) (*model.PatientDetail, error)
	ListPatients(ctx context.Context) ([]*model.PatientWithLocation, error)
	ListLocations(ctx context.Context) ([]*model.Location, error)
	ListAllBloodSamples(ctx context.Context) ([]*model.SampleWithPatient, error)
	TestTypes() []string
}

type Service struct {
	locations repository.LocationRepository
	patients  repository.PatientRepository
	records   repository.HealthRecordRepository
	samples   repository.BloodSampleRepository
	issuer    *identifier.Issuer
	engine    *workflow.Engine
	summaries *cache.Cache
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

func NewService(
	locations repository.LocationRepository,
	patients repository.PatientRepository,
	records repository.HealthRecordRepository,
	samples repository.BloodSampleRepository,
	issuer *identifier.Issuer,
	engine *workflow.Engine,
	dashboardTTL time.Duration,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Service {
	if dashboardTTL <= 0 {
		dashboardTTL = 30 * time.Second
	}
	return &Service{
		locations: locations,
		patients:  patients,
		records:   records,
		samples:   samples,
		issuer:    issuer,
		engine:    engine,
		summaries: cache.New(dashboardTTL, 2*dashboardTTL),
		metrics:   m,
		logger:    logger,
	}
}

// NormalizeCode maps user-supplied patient/sample codes to stored form.
// Lookup is case-insensitive; stored codes are always upper-case.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (s *Service) RegisterPatient(ctx context.Context, req *model.RegisterPatientRequest) (*model.Patient, error) {
	if err := validateRequired("patient", map[string]string{
		"first_name":    req.FirstName,
		"last_name":     req.LastName,
		"date_of_birth": req.DateOfBirth,
		"gender":        req.Gender,
		"phone":         req.Phone,
	}); err != nil {
		return nil, err
	}
	if req.LocationID <= 0 {
		return nil, apperrors.NewValidation("patient", "location_id")
	}
	dob, err := time.Parse(dateOfBirthLayout, req.DateOfBirth)
	if err != nil {
		return nil, apperrors.NewValidation("patient", "date_of_birth")
	}

	var lastErr error
	for attempt := 0; attempt < maxIssueAttempts; attempt++ {
		code, err := s.issuer.NextPatientCode(ctx)
		if err != nil {
			return nil, err
		}

		patient := &model.Patient{
			PatientCode:      code,
			FirstName:        req.FirstName,
			LastName:         req.LastName,
			DateOfBirth:      dob,
			Gender:           req.Gender,
			Phone:            req.Phone,
			Email:            req.Email,
			Address:          req.Address,
			EmergencyContact: req.EmergencyContact,
			LocationID:       req.LocationID,
		}

		start := time.Now()
		err = s.patients.Create(ctx, patient)
		s.trackDB("create_patient", start, err)
		if err == nil {
			if s.metrics != nil {
				s.metrics.PatientsRegistered.Inc()
			}
			s.invalidateSummary()
			s.logger.Info().
				Str("patient_code", patient.PatientCode).
				Int64("location_id", patient.LocationID).
				Msg("patient registered")
			return patient, nil
		}
		if !apperrors.IsKind(err, apperrors.KindDuplicateIdentifier) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (s *Service) AddLocation(ctx context.Context, req *model.CreateLocationRequest) (*model.Location, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperrors.NewValidation("location", "name")
	}

	location := &model.Location{
		Name:    req.Name,
		Address: req.Address,
		Phone:   req.Phone,
	}

	start := time.Now()
	err := s.locations.Create(ctx, location)
	s.trackDB("create_location", start, err)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.LocationsCreated.Inc()
	}
	s.invalidateSummary()
	s.logger.Info().Str("name", location.Name).Int64("id", location.ID).Msg("location added")
	return location, nil
}

func (s *Service) AddHealthRecord(ctx context.Context, patientCode string, req *model.AddHealthRecordRequest) (*model.HealthRecord, error) {
	patient, err := s.patients.GetByCode(ctx, NormalizeCode(patientCode))
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.RecordedBy) == "" {
		return nil, apperrors.NewValidation("health_record", "recorded_by")
	}
	if req.LocationID <= 0 {
		return nil, apperrors.NewValidation("health_record", "location_id")
	}

	height, err := parseOptionalFloat("health_record", "height", req.Height)
	if err != nil {
		return nil, err
	}
	weight, err := parseOptionalFloat("health_record", "weight", req.Weight)
	if err != nil {
		return nil, err
	}
	temperature, err := parseOptionalFloat("health_record", "temperature", req.Temperature)
	if err != nil {
		return nil, err
	}
	systolic, err := parseOptionalInt("health_record", "bp_systolic", req.BPSystolic)
	if err != nil {
		return nil, err
	}
	diastolic, err := parseOptionalInt("health_record", "bp_diastolic", req.BPDiastolic)
	if err != nil {
		return nil, err
	}
	heartRate, err := parseOptionalInt("health_record", "heart_rate", req.HeartRate)
	if err != nil {
		return nil, err
	}

	record := &model.HealthRecord{
		PatientID:              patient.ID,
		LocationID:             req.LocationID,
		Height:                 height,
		Weight:                 weight,
		Temperature:            temperature,
		BloodPressureSystolic:  systolic,
		BloodPressureDiastolic: diastolic,
		HeartRate:              heartRate,
		Notes:                  req.Notes,
		RecordedBy:             req.RecordedBy,
	}

	start := time.Now()
	err = s.records.Create(ctx, record)
	s.trackDB("create_health_record", start, err)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.HealthRecordsAdded.Inc()
	}
	s.logger.Info().
		Str("patient_code", patient.PatientCode).
		Str("recorded_by", record.RecordedBy).
		Msg("health record added")
	return record, nil
}

func (s *Service) CollectBloodSample(ctx context.Context, patientCode string, req *model.CollectSampleRequest) (*model.BloodSample, error) {
	patient, err := s.patients.GetByCode(ctx, NormalizeCode(patientCode))
	if err != nil {
		return nil, err
	}
	if err := validateRequired("blood_sample", map[string]string{
		"test_type":    req.TestType,
		"collected_by": req.CollectedBy,
	}); err != nil {
		return nil, err
	}
	if req.CollectionLocationID <= 0 {
		return nil, apperrors.NewValidation("blood_sample", "collection_location_id")
	}

	var lastErr error
	for attempt := 0; attempt < maxIssueAttempts; attempt++ {
		code, err := s.issuer.NextSampleCode(ctx)
		if err != nil {
			return nil, err
		}

		sample := &model.BloodSample{
			SampleCode:           code,
			PatientID:            patient.ID,
			CollectionLocationID: req.CollectionLocationID,
			CollectedBy:          req.CollectedBy,
			TestType:             req.TestType,
		}

		start := time.Now()
		err = s.samples.Create(ctx, sample)
		s.trackDB("create_blood_sample", start, err)
		if err == nil {
			if s.metrics != nil {
				s.metrics.SamplesCollected.Inc()
			}
			s.invalidateSummary()
			s.logger.Info().
				Str("sample_code", sample.SampleCode).
				Str("patient_code", patient.PatientCode).
				Str("test_type", sample.TestType).
				Msg("blood sample collected")
			return sample, nil
		}
		if !apperrors.IsKind(err, apperrors.KindDuplicateIdentifier) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (s *Service) RecordTestResults(ctx context.Context, sampleCode string, req *model.RecordTestResultsRequest) (*model.BloodSample, error) {
	if err := validateRequired("blood_sample", map[string]string{
		"results":   req.Results,
		"tested_by": req.TestedBy,
	}); err != nil {
		return nil, err
	}
	if req.TestLocationID <= 0 {
		return nil, apperrors.NewValidation("blood_sample", "test_location_id")
	}

	sample, err := s.engine.RecordTestResults(ctx, NormalizeCode(sampleCode), req)
	if err != nil {
		return nil, err
	}
	s.invalidateSummary()
	return sample, nil
}

func (s *Service) DeliverResults(ctx context.Context, sampleCode string) (*model.BloodSample, error) {
	return s.engine.DeliverResults(ctx, NormalizeCode(sampleCode))
}

func (s *Service) DashboardSummary(ctx context.Context) (*model.DashboardSummary, error) {
	if cached, ok := s.summaries.Get(dashboardCacheKey); ok {
		return cached.(*model.DashboardSummary), nil
	}

	totalPatients, err := s.patients.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalLocations, err := s.locations.Count(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := s.samples.CountPending(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.patients.ListRecent(ctx, recentPatientLimit)
	if err != nil {
		return nil, err
	}

	summary := &model.DashboardSummary{
		TotalPatients:  totalPatients,
		TotalLocations: totalLocations,
		PendingSamples: pending,
		RecentPatients: recent,
	}
	s.summaries.SetDefault(dashboardCacheKey, summary)
	return summary, nil
}

func (s *Service) PatientDetail(ctx context.Context, patientCode string) (*model.PatientDetail, error) {
	patient, err := s.patients.GetByCode(ctx, NormalizeCode(patientCode))
	if err != nil {
		return nil, err
	}
	records, err := s.records.ListForPatient(ctx, patient.ID)
	if err != nil {
		return nil, err
	}
	samples, err := s.samples.ListForPatient(ctx, patient.ID)
	if err != nil {
		return nil, err
	}

	return &model.PatientDetail{
		Patient:       patient,
		QRCode:        "QR:" + patient.PatientCode,
		HealthRecords: records,
		BloodSamples:  samples,
	}, nil
}

func (s *Service) ListPatients(ctx context.Context) ([]*model.PatientWithLocation, error) {
	return s.patients.List(ctx)
}

func (s *Service) ListLocations(ctx context.Context) ([]*model.Location, error) {
	return s.locations.List(ctx)
}

func (s *Service) ListAllBloodSamples(ctx context.Context) ([]*model.SampleWithPatient, error) {
	return s.samples.ListAll(ctx)
}

func (s *Service) TestTypes() []string {
	return model.TestTypes
}

func (s *Service) invalidateSummary() {
	s.summaries.Delete(dashboardCacheKey)
}

func (s *Service) trackDB(op string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	s.metrics.DatabaseOperations.WithLabelValues(op, status).Inc()
	s.metrics.DatabaseLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func validateRequired(entity string, fields map[string]string) error {
	for field, value := range fields {
		if strings.TrimSpace(value) == "" {
			return apperrors.NewValidation(entity, field)
		}
	}
	return nil
}

func parseOptionalFloat(entity, field, raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperrors.NewValidation(entity, field)
	}
	return &v, nil
}

func parseOptionalInt(entity, field, raw string) (*int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, apperrors.NewValidation(entity, field)
	}
	return &v, nil
}
