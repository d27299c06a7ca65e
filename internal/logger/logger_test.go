package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONFormatInProduction(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Environment: "production", Level: slog.LevelInfo})

	log.Info("book added", "book_id", "book-123")

	out := buf.String()
	assert.Contains(t, out, `"msg":"book added"`)
	assert.Contains(t, out, `"book_id":"book-123"`)
	assert.Contains(t, out, `"level":"INFO"`)
}

func TestNew_PrettyFormatElsewhere(t *testing.T) {
	for _, env := range []string{"development", "staging", ""} {
		t.Run(env, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(Config{Writer: &buf, Environment: env, Level: slog.LevelInfo})

			log.Info("hello")

			assert.Contains(t, buf.String(), "INF hello")
			assert.NotContains(t, buf.String(), `"msg"`)
		})
	}
}

func TestNew_PrettyHasNoColorForNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: "pretty", Level: slog.LevelInfo})

	log.Warn("careful")

	assert.NotContains(t, buf.String(), "\033[")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"nonsense", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestPrettyHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: "pretty", Level: slog.LevelWarn})

	log.Info("hidden")
	log.Error("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "ERR shown")
}

func TestPrettyHandler_AttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}, false)
	log := slog.New(h).With("service", "books").WithGroup("req")

	log.Debug("listing", "page", 2, "query", "dune messiah")

	line := buf.String()
	assert.Contains(t, line, "DBG listing")
	assert.Contains(t, line, "service=books")
	assert.Contains(t, line, "req.page=2")
	assert.Contains(t, line, `req.query="dune messiah"`)
}

func TestPrettyHandler_ColorWhenEnabled(t *testing.T) {
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, nil, true)

	r := slog.NewRecord(time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC), slog.LevelError, "boom", 0)
	require.NoError(t, h.Handle(context.Background(), r))

	assert.Contains(t, buf.String(), colorRed+"ERR"+colorReset)
	assert.True(t, strings.HasSuffix(buf.String(), "\n"))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "1.5s", formatValue(slog.DurationValue(1500*time.Millisecond)))
	assert.Equal(t, "plain", formatValue(slog.StringValue("plain")))
	assert.Equal(t, `"two words"`, formatValue(slog.StringValue("two words")))
	assert.Equal(t, "42", formatValue(slog.IntValue(42)))
}

func TestLogger_Helpers(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: "json", Level: slog.LevelInfo})

	log.WithError(errors.New("db down")).
		WithField("driver", "sqlite").
		WithFields(map[string]any{"attempt": 1}).
		Error("store unavailable")

	out := buf.String()
	assert.Contains(t, out, `"error":"db down"`)
	assert.Contains(t, out, `"driver":"sqlite"`)
	assert.Contains(t, out, `"attempt":1`)
}

func TestDiscard(t *testing.T) {
	log := Discard()
	require.NotNil(t, log)
	log.Error("goes nowhere")
}
