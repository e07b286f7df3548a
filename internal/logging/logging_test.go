package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{" Warn ", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestMaskID(t *testing.T) {
	assert.Equal(t, "***", MaskID("user1"))
	assert.Equal(t, "0192f3a1...", MaskID("0192f3a1-7b2c-7000-8000-000000000000"))
}

func TestProductionMasksSensitiveAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "info", true)

	logger.Info("Login failed",
		slog.String("email", "alice@example.com"),
		slog.String("user_id", "0192f3a1-7b2c-7000-8000-000000000000"),
		slog.Int("attempts", 3))

	out := buf.String()
	assert.NotContains(t, out, "alice@example.com")
	assert.Contains(t, out, "***@***.***")
	assert.Contains(t, out, "user_id=0192f3a1...")
	assert.Contains(t, out, "attempts=3")
	assert.Contains(t, out, "Login failed")
}

func TestDevelopmentKeepsAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "debug", false)

	logger.Debug("User registered", slog.String("email", "alice@example.com"))

	assert.Contains(t, buf.String(), "alice@example.com")
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "warn", false)

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
