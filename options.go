package mux

import (
	"io"
	"log/slog"

	"github.com/reglet-dev/reglet-mux/domain/entities"
	"github.com/reglet-dev/reglet-mux/log"
)

// Releaser runs once when the last reference to a wrapped object is released.
type Releaser func(obj any) error

// closeReleaser closes objects that implement io.Closer and ignores the rest.
func closeReleaser(obj any) error {
	if c, ok := obj.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Option configures a Mux.
type Option func(*muxConfig)

type muxConfig struct {
	logger   *slog.Logger
	releaser Releaser
	mode     entities.Mode
	strategy entities.Strategy
}

func defaultMuxConfig() muxConfig {
	return muxConfig{
		logger:   log.Nop(),
		releaser: closeReleaser,
		mode:     entities.ModeObserved,
		strategy: entities.StrategyStructural,
	}
}

// WithMode selects how variants are enumerated. Defaults to observed.
func WithMode(mode entities.Mode) Option {
	return func(c *muxConfig) {
		c.mode = mode
	}
}

// WithStrategy selects how implementors are detected. Defaults to structural.
func WithStrategy(strategy entities.Strategy) Option {
	return func(c *muxConfig) {
		c.strategy = strategy
	}
}

// WithLogger sets the logger shared by the multiplexer and its components.
func WithLogger(logger *slog.Logger) Option {
	return func(c *muxConfig) {
		c.logger = log.OrNop(logger)
	}
}

// WithReleaser replaces the function run when a wrapped object's last
// reference is released. The default closes io.Closer objects.
func WithReleaser(r Releaser) Option {
	return func(c *muxConfig) {
		if r == nil {
			r = func(any) error { return nil }
		}
		c.releaser = r
	}
}
