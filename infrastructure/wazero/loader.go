package wazero

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/reglet-dev/reglet-mux/log"
)

// loaderConfig holds configuration for the Loader.
type loaderConfig struct {
	logger        *slog.Logger
	runtimeConfig wazero.RuntimeConfig
	wasi          bool
}

func defaultLoaderConfig() loaderConfig {
	return loaderConfig{
		logger:        log.Nop(),
		runtimeConfig: wazero.NewRuntimeConfig(),
		wasi:          true,
	}
}

// LoaderOption configures the Loader.
type LoaderOption func(*loaderConfig)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(c *loaderConfig) {
		c.logger = log.OrNop(logger)
	}
}

// WithRuntimeConfig replaces the wazero runtime configuration.
func WithRuntimeConfig(rc wazero.RuntimeConfig) LoaderOption {
	return func(c *loaderConfig) {
		if rc != nil {
			c.runtimeConfig = rc
		}
	}
}

// WithWASI enables or disables the WASI preview1 host module (default: enabled).
func WithWASI(enabled bool) LoaderOption {
	return func(c *loaderConfig) {
		c.wasi = enabled
	}
}

// Loader compiles and instantiates modules in one wazero runtime.
type Loader struct {
	runtime wazero.Runtime
	config  loaderConfig
	seq     atomic.Uint64
}

// NewLoader creates a Loader with its own runtime.
func NewLoader(ctx context.Context, opts ...LoaderOption) (*Loader, error) {
	cfg := defaultLoaderConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	rt := wazero.NewRuntimeWithConfig(ctx, cfg.runtimeConfig)
	if cfg.wasi {
		if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
			_ = rt.Close(ctx)
			return nil, fmt.Errorf("failed to instantiate WASI: %w", err)
		}
	}

	return &Loader{runtime: rt, config: cfg}, nil
}

// Compile validates and compiles wasm under name. Every instance of the
// blueprint shares name as its implementor key.
func (l *Loader) Compile(ctx context.Context, name string, wasm []byte) (*Blueprint, error) {
	compiled, err := l.runtime.CompileModule(ctx, wasm)
	if err != nil {
		return nil, fmt.Errorf("failed to compile module %s: %w", name, err)
	}

	l.config.logger.Debug("compiled module", "module", name, "exports", len(compiled.ExportedFunctions()))
	return &Blueprint{name: name, compiled: compiled}, nil
}

// Instantiate creates a fresh instance of bp. Instances never share state.
func (l *Loader) Instantiate(ctx context.Context, bp *Blueprint) (*Instance, error) {
	instanceName := fmt.Sprintf("%s#%d", bp.name, l.seq.Add(1))
	mod, err := l.runtime.InstantiateModule(ctx, bp.compiled, wazero.NewModuleConfig().WithName(instanceName))
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate module %s: %w", bp.name, err)
	}

	if init := mod.ExportedFunction("_initialize"); init != nil {
		if _, err := init.Call(ctx); err != nil {
			_ = mod.Close(ctx)
			return nil, fmt.Errorf("failed to call _initialize: %w", err)
		}
	}

	l.config.logger.Debug("instantiated module", "module", bp.name, "instance", instanceName)
	return &Instance{blueprint: bp, module: mod}, nil
}

// Load compiles and instantiates wasm in one step.
func (l *Loader) Load(ctx context.Context, name string, wasm []byte) (*Instance, error) {
	bp, err := l.Compile(ctx, name, wasm)
	if err != nil {
		return nil, err
	}
	return l.Instantiate(ctx, bp)
}

// Close releases the runtime and every module it still holds.
func (l *Loader) Close(ctx context.Context) error {
	return l.runtime.Close(ctx)
}
