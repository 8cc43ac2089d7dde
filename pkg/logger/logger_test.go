package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestLoggerWritesServiceAndContextFields(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "storefront", Env: "dev", Output: &buf})

	ctx := logg.WithField(context.Background(), "request_id", "req-1")
	ctx = logg.WithFields(ctx, map[string]any{"product_id": "p-1"})
	logg.Info(ctx, "cart updated")

	entry := decodeLine(t, &buf)
	require.Equal(t, "storefront", entry["service"])
	require.Equal(t, "dev", entry["env"])
	require.Equal(t, "req-1", entry["request_id"])
	require.Equal(t, "p-1", entry["product_id"])
	require.Equal(t, "cart updated", entry["message"])
	require.Equal(t, "info", entry["level"])
}

func TestLoggerErrorIncludesCause(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "storefront", Output: &buf})

	logg.Error(context.Background(), "persist failed", errors.New("disk full"))

	entry := decodeLine(t, &buf)
	require.Equal(t, "error", entry["level"])
	require.Equal(t, "disk full", entry["error"])
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "storefront", Output: &buf, Level: zerolog.WarnLevel})

	logg.Info(context.Background(), "hidden")
	require.Zero(t, buf.Len())

	logg.Warn(context.Background(), "shown")
	require.NotZero(t, buf.Len())
}

func TestChildContextDoesNotLeakFields(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "storefront", Output: &buf})

	parent := logg.WithField(context.Background(), "order_id", "o-1")
	_ = logg.WithField(parent, "payment_id", "pay-1")
	logg.Info(parent, "order placed")

	entry := decodeLine(t, &buf)
	require.Equal(t, "o-1", entry["order_id"])
	require.NotContains(t, entry, "payment_id")
}

func TestNopDiscards(t *testing.T) {
	logg := Nop()
	ctx := logg.WithField(context.Background(), "k", "v")
	logg.Error(ctx, "ignored", errors.New("boom"))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  zerolog.Level
	}{
		{name: "empty defaults to info", input: "", want: zerolog.InfoLevel},
		{name: "debug", input: "debug", want: zerolog.DebugLevel},
		{name: "mixed case", input: " WARN ", want: zerolog.WarnLevel},
		{name: "unknown defaults to info", input: "loud", want: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}
