package identifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSequences struct {
	values map[string]int64
}

func (s *stubSequences) Next(_ context.Context, name string) (int64, error) {
	s.values[name]++
	return s.values[name], nil
}

func TestFormatCodes(t *testing.T) {
	assert.Equal(t, "PAT000001", FormatPatientCode(1))
	assert.Equal(t, "PAT000042", FormatPatientCode(42))
	assert.Equal(t, "PAT1000000", FormatPatientCode(1000000))
	assert.Equal(t, "BS000007", FormatSampleCode(7))
}

func TestIssuerCountsIndependently(t *testing.T) {
	issuer := NewIssuer(&stubSequences{values: map[string]int64{}})
	ctx := context.Background()

	p1, err := issuer.NextPatientCode(ctx)
	require.NoError(t, err)
	p2, err := issuer.NextPatientCode(ctx)
	require.NoError(t, err)
	s1, err := issuer.NextSampleCode(ctx)
	require.NoError(t, err)

	assert.Equal(t, "PAT000001", p1)
	assert.Equal(t, "PAT000002", p2)
	assert.Equal(t, "BS000001", s1)
}
