// Package detector computes which declared capabilities an implementor satisfies.
//
// Two strategies are supported. Under the explicit strategy every implementor
// lists its capabilities at registration and detection is a lookup. Under the
// structural strategy an implementor registered without a list, or an object
// that was never registered, is probed against each capability contract in
// declaration order.
package detector

import (
	"log/slog"
	"reflect"
	"sync"

	"github.com/reglet-dev/reglet-mux/domain/entities"
	domainerrors "github.com/reglet-dev/reglet-mux/domain/errors"
	"github.com/reglet-dev/reglet-mux/domain/ports"
	"github.com/reglet-dev/reglet-mux/infrastructure/contract"
	"github.com/reglet-dev/reglet-mux/log"
)

// Option configures a Detector.
type Option func(*config)

type config struct {
	logger   *slog.Logger
	strategy entities.Strategy
}

func defaultConfig() config {
	return config{
		logger:   log.Nop(),
		strategy: entities.StrategyStructural,
	}
}

// WithStrategy selects the detection strategy.
func WithStrategy(s entities.Strategy) Option {
	return func(c *config) {
		c.strategy = s
	}
}

// WithLogger sets the logger. Probe results are logged at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = log.OrNop(logger)
	}
}

// registration is one registered implementor.
type registration struct {
	key      any
	set      entities.CapabilitySet
	explicit bool
}

// Detector maps implementors to capability sets.
type Detector struct {
	reg    ports.CapabilityRegistry
	byKey  map[any]int
	config config
	order  []registration
	mu     sync.RWMutex
}

// New creates a Detector over the capabilities of reg.
func New(reg ports.CapabilityRegistry, opts ...Option) *Detector {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Detector{
		reg:    reg,
		config: cfg,
		byKey:  make(map[any]int),
	}
}

// Strategy returns the configured strategy.
func (d *Detector) Strategy() entities.Strategy {
	return d.config.strategy
}

// KeyOf returns the registration key of an object or implementor description:
// its ImplementorKey when it is ports.Keyed, the type itself for a
// reflect.Type, and its dynamic type otherwise.
func KeyOf(subject any) any {
	switch s := subject.(type) {
	case ports.Keyed:
		return keyed(s.ImplementorKey())
	case reflect.Type:
		return s
	default:
		return reflect.TypeOf(subject)
	}
}

// keyed distinguishes string keys from reflect.Type keys in the key map.
type keyed string

// Register records an implementor and returns its capability set.
//
// desc describes the implementor: a reflect.Type, a sample value, or a
// ports.Keyed description. With explicit names the set is their union, and
// every named capability that has a contract must be satisfied by desc.
// Without names the set is probed from desc.
func (d *Detector) Register(desc any, explicit ...string) (entities.CapabilitySet, error) {
	return d.register(desc, explicit, explicit != nil)
}

// RegisterExplicit records an implementor with an explicit list, which may be
// empty to declare an implementor with no capabilities.
func (d *Detector) RegisterExplicit(desc any, names []string) (entities.CapabilitySet, error) {
	if names == nil {
		names = []string{}
	}
	return d.register(desc, names, true)
}

func (d *Detector) register(desc any, names []string, explicit bool) (entities.CapabilitySet, error) {
	name := contract.Describe(desc)

	var set entities.CapabilitySet
	if explicit {
		resolved, err := d.reg.Resolve(names...)
		if err != nil {
			return entities.EmptySet, err
		}
		if err := d.verify(desc, resolved); err != nil {
			return entities.EmptySet, err
		}
		set = resolved
	} else {
		if d.config.strategy == entities.StrategyExplicit {
			return entities.EmptySet, &domainerrors.MissingDeclarationError{Implementor: name}
		}
		set = d.Probe(desc)
	}

	key := KeyOf(desc)

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.byKey[key]; exists {
		return entities.EmptySet, &domainerrors.DuplicateImplementorError{Implementor: name}
	}
	d.byKey[key] = len(d.order)
	d.order = append(d.order, registration{key: key, set: set, explicit: explicit})

	d.config.logger.Debug("registered implementor",
		"implementor", name, "capabilities", d.reg.NamesOf(set), "explicit", explicit)
	return set, nil
}

// verify checks that desc satisfies every contract-backed capability in set.
// A bare name carries no structure to check; its objects are checked when
// their handles are projected.
func (d *Detector) verify(desc any, set entities.CapabilitySet) error {
	if _, named := desc.(entities.NamedImplementor); named {
		return nil
	}
	for _, id := range set.IDs() {
		c := d.reg.Contract(id)
		if c == nil {
			continue
		}
		if !safeProbe(c, desc) {
			capability, _ := d.reg.Capability(id)
			return &domainerrors.ContractMismatchError{
				Capability:  capability.Name,
				Implementor: contract.Describe(desc),
			}
		}
	}
	return nil
}

// Detect returns the capability set of obj. Registered implementors answer
// from their registration; others are probed under the structural strategy
// and rejected under the explicit strategy.
func (d *Detector) Detect(obj any) (entities.CapabilitySet, error) {
	d.mu.RLock()
	i, ok := d.byKey[KeyOf(obj)]
	var set entities.CapabilitySet
	if ok {
		set = d.order[i].set
	}
	d.mu.RUnlock()

	if ok {
		return set, nil
	}
	if d.config.strategy == entities.StrategyExplicit {
		return entities.EmptySet, &domainerrors.UnregisteredImplementorError{Implementor: contract.Describe(obj)}
	}
	return d.Probe(obj), nil
}

// Probe tests subject against every capability contract in declaration order.
// A failed probe only leaves its capability out of the result; opaque
// capabilities are never satisfied structurally.
func (d *Detector) Probe(subject any) entities.CapabilitySet {
	var set entities.CapabilitySet
	for _, c := range d.reg.List() {
		ct := d.reg.Contract(c.ID)
		satisfied := ct != nil && safeProbe(ct, subject)
		if satisfied {
			set = set.With(c.ID)
		}
		d.config.logger.Debug("probe", "capability", c.Name, "satisfied", satisfied)
	}
	return set
}

// safeProbe treats a panicking probe as a failed one.
func safeProbe(c ports.Contract, subject any) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return c.Probe(subject)
}

// Observed returns the capability sets of all registered implementors in
// registration order.
func (d *Detector) Observed() []entities.CapabilitySet {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]entities.CapabilitySet, len(d.order))
	for i, r := range d.order {
		out[i] = r.set
	}
	return out
}

// Len returns the number of registered implementors.
func (d *Detector) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.order)
}
