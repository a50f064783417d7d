package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_WritesFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, zerolog.InfoLevel).With(String("pass_id", "p1"))

	l.Info("pass finished",
		Strings("symbols", []string{"AAPL", "MSFT"}),
		Int("rows", 3),
		Float("avg", 1.25),
		Duration("elapsed", 1500*time.Millisecond),
		Error(errors.New("boom")),
	)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "pass finished", entry["message"])
	assert.Equal(t, "p1", entry["pass_id"])
	assert.Equal(t, "AAPL, MSFT", entry["symbols"])
	assert.Equal(t, float64(3), entry["rows"])
	assert.Equal(t, 1.25, entry["avg"])
	assert.Equal(t, float64(1500), entry["elapsed"])
	assert.Equal(t, "boom", entry["error"])
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, zerolog.WarnLevel)
	l.Debug("hidden")
	l.Info("hidden")
	assert.Zero(t, buf.Len())
	l.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud"})
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() { Nop().Error("ignored", Int("n", 1)) })
}
