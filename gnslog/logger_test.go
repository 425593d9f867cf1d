package gnslog

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevels(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{DebugLevel, "DEBUG"},
		{InfoLevel, "INFO"},
		{WarnLevel, "WARN"},
		{ErrorLevel, "ERROR"},
		{FatalLevel, "FATAL"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.level.String())
	}
}

func TestStructuredLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, InfoLevel)

	l.Info("envelope opened", String("envelope_id", "abc123"), Bool("signature_valid", true))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "envelope opened", entry["message"])
	assert.Equal(t, "abc123", entry["envelope_id"])
	assert.Equal(t, true, entry["signature_valid"])
}

func TestStructuredLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, WarnLevel)

	l.Info("should not appear")
	assert.Empty(t, buf.Bytes())

	l.Warn("should appear")
	assert.NotEmpty(t, buf.Bytes())
}

func TestWithFieldsAccumulates(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogger(&buf, DebugLevel)
	scoped := base.WithFields(String("component", "relay"))

	scoped.Info("connected")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "relay", entry["component"])
}

func TestErrorFieldHandlesNil(t *testing.T) {
	f := Error(nil)
	assert.Nil(t, f.Value)

	f2 := Error(errors.New("boom"))
	assert.Equal(t, "boom", f2.Value)
}
