package workflow

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/careops/registry-api/internal/model"
	"github.com/careops/registry-api/internal/notify"
	"github.com/careops/registry-api/internal/repository"
	apperrors "github.com/careops/registry-api/pkg/errors"
	"github.com/careops/registry-api/pkg/metrics"
)

// Engine applies sample lifecycle transitions. Transitions are executed as
// compare-and-set updates on status, so two concurrent callers observing the
// same state cannot both win.
type Engine struct {
	samples     repository.BloodSampleRepository
	notifier    notify.Sender
	sendTimeout time.Duration
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

func NewEngine(samples repository.BloodSampleRepository, notifier notify.Sender, sendTimeout time.Duration, m *metrics.Metrics, logger zerolog.Logger) *Engine {
	if sendTimeout <= 0 {
		sendTimeout = 10 * time.Second
	}
	return &Engine{
		samples:     samples,
		notifier:    notifier,
		sendTimeout: sendTimeout,
		metrics:     m,
		logger:      logger,
	}
}

// RecordTestResults moves a sample from collected to tested, attaching the
// test location, results text, tester and test timestamp.
func (e *Engine) RecordTestResults(ctx context.Context, sampleCode string, req *model.RecordTestResultsRequest) (*model.BloodSample, error) {
	sample, err := e.samples.GetByCode(ctx, sampleCode)
	if err != nil {
		return nil, err
	}
	if !CanTransition(sample.Status, model.SampleStatusTested) {
		return nil, apperrors.NewInvalidTransition(sampleCode, string(sample.Status), string(model.SampleStatusTested))
	}

	testedAt := time.Now().UTC()
	affected, err := e.samples.RecordResults(ctx, sampleCode, req.TestLocationID, req.Results, req.TestedBy, testedAt)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		// Lost the race: someone else already moved the sample on.
		current, err := e.samples.GetByCode(ctx, sampleCode)
		if err != nil {
			return nil, err
		}
		return nil, apperrors.NewInvalidTransition(sampleCode, string(current.Status), string(model.SampleStatusTested))
	}

	if e.metrics != nil {
		e.metrics.SampleTransitions.WithLabelValues(string(model.SampleStatusTested)).Inc()
	}
	e.logger.Info().
		Str("sample_code", sampleCode).
		Str("status", string(model.SampleStatusTested)).
		Msg("test results recorded")

	return e.samples.GetByCode(ctx, sampleCode)
}

// DeliverResults sends the results message to the patient and, only after a
// successful send, moves the sample from tested to results_sent. A failed or
// timed out send leaves the sample in tested so the caller can retry.
func (e *Engine) DeliverResults(ctx context.Context, sampleCode string) (*model.BloodSample, error) {
	sample, err := e.samples.GetByCodeWithPatient(ctx, sampleCode)
	if err != nil {
		return nil, err
	}
	if !CanTransition(sample.Status, model.SampleStatusResultsSent) {
		return nil, apperrors.NewInvalidTransition(sampleCode, string(sample.Status), string(model.SampleStatusResultsSent))
	}

	msg := notify.ResultsMessage{
		PatientName: sample.PatientFullName(),
		PatientCode: sample.PatientCode,
		SampleCode:  sample.SampleCode,
		TestType:    sample.TestType,
		Results:     *sample.Results,
		TestedBy:    *sample.TestedBy,
		TestedAt:    *sample.TestedAt,
	}

	sendCtx, cancel := context.WithTimeout(ctx, e.sendTimeout)
	defer cancel()

	start := time.Now()
	err = e.notifier.Send(sendCtx, sample.PatientPhone, msg.Format())
	if e.metrics != nil {
		e.metrics.NotificationLatency.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		if e.metrics != nil {
			e.metrics.NotificationSends.WithLabelValues("failed").Inc()
		}
		e.logger.Error().Err(err).
			Str("sample_code", sampleCode).
			Msg("result delivery failed")
		return nil, apperrors.NewDeliveryFailure(sampleCode, err)
	}
	if e.metrics != nil {
		e.metrics.NotificationSends.WithLabelValues("sent").Inc()
	}

	affected, err := e.samples.MarkDelivered(ctx, sampleCode, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		current, err := e.samples.GetByCode(ctx, sampleCode)
		if err != nil {
			return nil, err
		}
		return nil, apperrors.NewInvalidTransition(sampleCode, string(current.Status), string(model.SampleStatusResultsSent))
	}

	if e.metrics != nil {
		e.metrics.SampleTransitions.WithLabelValues(string(model.SampleStatusResultsSent)).Inc()
	}
	e.logger.Info().
		Str("sample_code", sampleCode).
		Str("status", string(model.SampleStatusResultsSent)).
		Msg("results delivered")

	return e.samples.GetByCode(ctx, sampleCode)
}
