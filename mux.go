package mux

import (
	"encoding/hex"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/reglet-dev/reglet-mux/application/detector"
	"github.com/reglet-dev/reglet-mux/application/enumerator"
	"github.com/reglet-dev/reglet-mux/domain/entities"
	domainerrors "github.com/reglet-dev/reglet-mux/domain/errors"
	"github.com/reglet-dev/reglet-mux/domain/ports"
	"github.com/reglet-dev/reglet-mux/infrastructure/contract"
	"github.com/reglet-dev/reglet-mux/registry"
)

// Mux is a capability multiplexer. Capabilities and implementors are declared
// first; sealing fixes the variant table, after which objects can be wrapped.
type Mux struct {
	reg    *registry.Registry
	det    *detector.Detector
	table  atomic.Pointer[enumerator.Table]
	name   string
	config muxConfig
	mu     sync.Mutex
}

// New creates an empty multiplexer named name.
func New(name string, opts ...Option) *Mux {
	cfg := defaultMuxConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	reg, _ := registry.New()
	return &Mux{
		name:   name,
		reg:    reg,
		config: cfg,
		det: detector.New(reg,
			detector.WithStrategy(cfg.strategy),
			detector.WithLogger(cfg.logger),
		),
	}
}

// DeclareMultiplexer creates a multiplexer over opaque capabilities, one per
// name in order. Opaque capabilities are only detected through explicit
// registration, and their handle is the wrapped object itself.
func DeclareMultiplexer(name string, names []string, opts ...Option) (*Mux, error) {
	m := New(name, opts...)
	for _, n := range names {
		if _, err := m.DeclareContract(n, nil); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Declare appends a capability backed by Go interface T and returns its ID.
func Declare[T any](m *Mux, name string, opts ...registry.DeclareOption) (entities.CapabilityID, error) {
	c, err := contract.ForType(reflect.TypeFor[T]())
	if err != nil {
		return 0, err
	}
	return m.DeclareContract(name, c, opts...)
}

// DeclareContract appends a capability backed by an arbitrary contract.
// A nil contract declares an opaque capability.
func (m *Mux) DeclareContract(name string, c ports.Contract, opts ...registry.DeclareOption) (entities.CapabilityID, error) {
	id, err := m.reg.Declare(name, c, opts...)
	if err != nil {
		return 0, err
	}
	m.config.logger.Debug("declared capability",
		"multiplexer", m.name, "capability", name, "id", id, "contract", contractName(c))
	return id, nil
}

func contractName(c ports.Contract) string {
	if c == nil {
		return "opaque"
	}
	return c.String()
}

// RegisterImplementor records an implementor and returns its capability set.
//
// desc is a reflect.Type, a sample value, or a ports.Keyed description such as
// entities.NamedImplementor. With explicit names the set is their union; without
// names the set is probed, which the explicit strategy refuses.
func (m *Mux) RegisterImplementor(desc any, explicit ...string) (entities.CapabilitySet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.table.Load() != nil {
		return entities.EmptySet, &domainerrors.SealedError{Operation: "register implementor " + contract.Describe(desc)}
	}
	return m.det.Register(desc, explicit...)
}

// RegisterExplicit records an implementor with an explicit capability list.
// An empty list registers an implementor with no capabilities.
func (m *Mux) RegisterExplicit(desc any, names []string) (entities.CapabilitySet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.table.Load() != nil {
		return entities.EmptySet, &domainerrors.SealedError{Operation: "register implementor " + contract.Describe(desc)}
	}
	return m.det.RegisterExplicit(desc, names)
}

// Seal freezes the capability list and enumerates the variants.
// It is idempotent; Wrap calls it on first use.
func (m *Mux) Seal() error {
	_, err := m.seal()
	return err
}

func (m *Mux) seal() (*enumerator.Table, error) {
	if t := m.table.Load(); t != nil {
		return t, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if t := m.table.Load(); t != nil {
		return t, nil
	}

	if m.config.mode != entities.ModeFull && m.config.mode != entities.ModeObserved {
		return nil, fmt.Errorf("multiplexer %s: enumeration mode must be full or observed, got %s", m.name, m.config.mode)
	}

	m.reg.Freeze()
	table, err := enumerator.Enumerate(m.reg.List(), m.config.mode, m.det.Observed(),
		enumerator.WithName(m.name),
		enumerator.WithLogger(m.config.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("multiplexer %s: %w", m.name, err)
	}

	fp, err := table.Fingerprint()
	if err != nil {
		return nil, fmt.Errorf("multiplexer %s: %w", m.name, err)
	}

	m.table.Store(table)
	m.config.logger.Info("multiplexer sealed",
		"multiplexer", m.name,
		"mode", m.config.mode.String(),
		"strategy", m.config.strategy.String(),
		"capabilities", m.reg.Len(),
		"implementors", m.det.Len(),
		"variants", table.Count(),
		"fingerprint", hex.EncodeToString(fp[:]),
	)
	return table, nil
}

// Sealed reports whether the variant table has been built.
func (m *Mux) Sealed() bool {
	return m.table.Load() != nil
}

// Wrap detects the capabilities of obj and converts it into a tagged value
// holding one reference. The multiplexer is sealed first if needed.
func (m *Mux) Wrap(obj any) (*Value, error) {
	if obj == nil {
		return nil, fmt.Errorf("multiplexer %s: cannot wrap a nil object", m.name)
	}

	table, err := m.seal()
	if err != nil {
		return nil, err
	}

	set, err := m.det.Detect(obj)
	if err != nil {
		return nil, err
	}
	return m.convert(obj, set, table)
}

// Name returns the multiplexer name.
func (m *Mux) Name() string {
	return m.name
}

// Mode returns the enumeration mode.
func (m *Mux) Mode() entities.Mode {
	return m.config.mode
}

// Strategy returns the detection strategy.
func (m *Mux) Strategy() entities.Strategy {
	return m.config.strategy
}

// Registry returns the capability registry.
func (m *Mux) Registry() *registry.Registry {
	return m.reg
}

// Capabilities returns the declared capabilities in declaration order.
func (m *Mux) Capabilities() []entities.Capability {
	return m.reg.List()
}

// Table returns the variant table, or nil before Seal.
func (m *Mux) Table() *enumerator.Table {
	return m.table.Load()
}

// Variants returns the variants in ascending bitmask order, or nil before Seal.
func (m *Mux) Variants() []entities.Variant {
	t := m.table.Load()
	if t == nil {
		return nil
	}
	return t.Variants()
}
