package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WithOutput(&buf))

	logger.Info("sealed", "variants", 4)
	logger.Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, "msg=sealed")
	assert.Contains(t, out, "variants=4")
	assert.NotContains(t, out, "hidden")
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WithOutput(&buf), WithFormat(FormatJSON), WithLevel(slog.LevelDebug))

	logger.Debug("probe", "capability", "Greet", "satisfied", true)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "probe", record["msg"])
	assert.Equal(t, "Greet", record["capability"])
	assert.Equal(t, true, record["satisfied"])
	assert.Equal(t, "DEBUG", record["level"])
}

func TestNew_WithSource(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WithOutput(&buf), WithFormat(FormatJSON), WithSource(true))

	logger.Info("x")
	assert.Contains(t, buf.String(), `"source"`)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "info", want: slog.LevelInfo},
		{in: "warn", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	f, err = ParseFormat("text")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	logger := Nop()
	assert.False(t, logger.Enabled(context.Background(), slog.LevelError))
	logger.With("k", "v").WithGroup("g").Error("dropped")

	assert.Same(t, logger, OrNop(logger))
	assert.NotNil(t, OrNop(nil))
}
