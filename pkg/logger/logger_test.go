package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewFiltersBelowConfiguredLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: zerolog.InfoLevel, Output: &buf})

	log.Debug().Msg("too quiet to hear")
	assert.Empty(t, buf.String())

	log.Info().Str("patient_code", "PAT000001").Msg("patient registered")
	out := buf.String()
	assert.Contains(t, out, "patient registered")
	assert.Contains(t, out, "PAT000001")
}
