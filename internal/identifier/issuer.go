// Package identifier issues the human-readable codes that identify patients
// and blood samples (PAT######, BS######).
package identifier

import (
	"context"
	"fmt"

	"github.com/careops/registry-api/internal/repository"
	"github.com/careops/registry-api/internal/repository/sqlstore"
)

const (
	patientPrefix = "PAT"
	samplePrefix  = "BS"
)

// Issuer hands out codes backed by monotonic counters, never row counts, so
// issued codes stay unique regardless of concurrency. The store's uniqueness
// constraint is the last line of defense: if an insert still collides (for
// example a manually loaded row), it surfaces as a retryable
// DuplicateIdentifier and the caller retries issuance + insert as one unit.
type Issuer struct {
	sequences repository.SequenceRepository
}

func NewIssuer(sequences repository.SequenceRepository) *Issuer {
	return &Issuer{sequences: sequences}
}

func (i *Issuer) NextPatientCode(ctx context.Context) (string, error) {
	value, err := i.sequences.Next(ctx, sqlstore.SequencePatientCodes)
	if err != nil {
		return "", fmt.Errorf("failed to issue patient code: %w", err)
	}
	return FormatPatientCode(value), nil
}

func (i *Issuer) NextSampleCode(ctx context.Context) (string, error) {
	value, err := i.sequences.Next(ctx, sqlstore.SequenceSampleCodes)
	if err != nil {
		return "", fmt.Errorf("failed to issue sample code: %w", err)
	}
	return FormatSampleCode(value), nil
}

func FormatPatientCode(n int64) string {
	return fmt.Sprintf("%s%06d", patientPrefix, n)
}

func FormatSampleCode(n int64) string {
	return fmt.Sprintf("%s%06d", samplePrefix, n)
}
