package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func capture(level slog.Level) *bytes.Buffer {
	var buf bytes.Buffer
	log = New(NewJSONHandler(&buf, &slog.HandlerOptions{Level: level}))
	return &buf
}

func TestInit(t *testing.T) {
	Init()
	assert.NotNil(t, log)
}

func TestLevels(t *testing.T) {
	buf := capture(slog.LevelDebug)

	Info("info message", "key", "value")
	Error("error message")
	Debug("debug message")
	Warn("warn message")

	out := buf.String()
	assert.Contains(t, out, "info message")
	assert.Contains(t, out, "value")
	assert.Contains(t, out, "error message")
	assert.Contains(t, out, "debug message")
	assert.Contains(t, out, "warn message")
}

func TestFormatted(t *testing.T) {
	buf := capture(slog.LevelDebug)

	Infof("booking %d created", 42)
	Errorf("claim failed for slot %d", 7)
	Debugf("hours=%f", 9.5)

	out := buf.String()
	assert.Contains(t, out, "booking 42 created")
	assert.Contains(t, out, "claim failed for slot 7")
}

func TestWithError(t *testing.T) {
	buf := capture(slog.LevelInfo)

	WithError(assert.AnError).Info("operation failed")

	out := buf.String()
	assert.Contains(t, out, "operation failed")
	assert.Contains(t, out, "error")
}

func TestWithFields(t *testing.T) {
	buf := capture(slog.LevelInfo)

	WithFields(map[string]interface{}{
		"listing_id": 3,
		"user":       "alice",
	}).Info("listing created")

	out := buf.String()
	assert.Contains(t, out, "listing created")
	assert.Contains(t, out, "listing_id")
	assert.Contains(t, out, "alice")
}
