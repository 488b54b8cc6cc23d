// Package log provides structured logging (slog) configuration for the multiplexer
// and its tooling. Components accept a *slog.Logger and default to Nop().
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Format selects the handler encoding.
type Format string

// Output formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// HandlerOption configures the handler built by New.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	output    io.Writer
	format    Format
	level     slog.Level
	addSource bool
}

// defaultHandlerConfig returns the default configuration.
func defaultHandlerConfig() handlerConfig {
	return handlerConfig{
		output: os.Stderr,
		format: FormatText,
		level:  slog.LevelInfo,
	}
}

// WithLevel sets the minimum log level to report.
func WithLevel(level slog.Level) HandlerOption {
	return func(c *handlerConfig) {
		c.level = level
	}
}

// WithSource enables reporting of source location (file/line).
func WithSource(enabled bool) HandlerOption {
	return func(c *handlerConfig) {
		c.addSource = enabled
	}
}

// WithFormat selects text or JSON output.
func WithFormat(format Format) HandlerOption {
	return func(c *handlerConfig) {
		c.format = format
	}
}

// WithOutput sets the destination writer. Defaults to os.Stderr.
func WithOutput(w io.Writer) HandlerOption {
	return func(c *handlerConfig) {
		c.output = w
	}
}

// NewHandler creates a slog.Handler with the given options.
func NewHandler(opts ...HandlerOption) slog.Handler {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     cfg.level,
		AddSource: cfg.addSource,
	}
	if cfg.format == FormatJSON {
		return slog.NewJSONHandler(cfg.output, handlerOpts)
	}
	return slog.NewTextHandler(cfg.output, handlerOpts)
}

// New creates a logger with the given options.
func New(opts ...HandlerOption) *slog.Logger {
	return slog.New(NewHandler(opts...))
}

// ParseLevel parses "debug", "info", "warn" or "error".
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(s))
	return level, err
}

// ParseFormat parses "text" or "json".
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, FormatJSON:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown log format %q (want text or json)", s)
	}
}

// Nop returns a logger that discards every record.
func Nop() *slog.Logger {
	return slog.New(nopHandler{})
}

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (h nopHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h nopHandler) WithGroup(string) slog.Handler           { return h }

// OrNop returns logger, or Nop() when logger is nil.
func OrNop(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return Nop()
	}
	return logger
}
