// Package registry implements the capability registry: the canonical, ordered
// list of capabilities a multiplexer can represent.
package registry

import (
	"fmt"
	"sync"

	"github.com/reglet-dev/reglet-mux/domain/entities"
	domainerrors "github.com/reglet-dev/reglet-mux/domain/errors"
	"github.com/reglet-dev/reglet-mux/domain/ports"
)

// entry pairs a capability with its contract.
type entry struct {
	contract   ports.Contract
	capability entities.Capability
}

// Registry is an append-only list of capabilities. IDs are assigned in
// declaration order. Once frozen, no further declarations are accepted.
type Registry struct {
	byName  map[string]entities.CapabilityID
	entries []entry
	mu      sync.RWMutex
	frozen  bool
}

var _ ports.CapabilityRegistry = (*Registry)(nil)

// Option configures a Registry during construction.
type Option func(*builder)

// builder accumulates declarations during construction.
type builder struct {
	reg    *Registry
	errors []error
}

// New creates a Registry with the given options.
// Returns the first error raised by an option.
//
// Example usage:
//
//	reg, err := registry.New(
//	    registry.WithCapability("Greet", contract.Interface[Greeter]()),
//	    registry.WithCapability("Calculate", contract.Interface[Calculator]()),
//	)
func New(opts ...Option) (*Registry, error) {
	b := &builder{reg: &Registry{byName: make(map[string]entities.CapabilityID)}}
	for _, opt := range opts {
		opt(b)
	}
	if len(b.errors) > 0 {
		return nil, b.errors[0]
	}
	return b.reg, nil
}

// FromNames creates a Registry of opaque capabilities, one per name, in order.
func FromNames(names ...string) (*Registry, error) {
	opts := make([]Option, len(names))
	for i, name := range names {
		opts[i] = WithCapability(name, nil)
	}
	return New(opts...)
}

// WithCapability declares a capability during construction.
func WithCapability(name string, contract ports.Contract, opts ...DeclareOption) Option {
	return func(b *builder) {
		if _, err := b.reg.Declare(name, contract, opts...); err != nil {
			b.errors = append(b.errors, err)
		}
	}
}

// DeclareOption adjusts a single declaration.
type DeclareOption func(*entities.Capability)

// WithDescription attaches a description to the capability.
func WithDescription(description string) DeclareOption {
	return func(c *entities.Capability) {
		c.Description = description
	}
}

// Declare appends a capability and returns its ID.
// A nil contract declares an opaque capability that can only be detected explicitly.
func (r *Registry) Declare(name string, contract ports.Contract, opts ...DeclareOption) (entities.CapabilityID, error) {
	if name == "" {
		return 0, &domainerrors.InvalidCapabilityNameError{Name: name}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return 0, &domainerrors.SealedError{Operation: fmt.Sprintf("declare capability %q", name)}
	}
	if _, exists := r.byName[name]; exists {
		return 0, &domainerrors.DuplicateCapabilityError{Name: name}
	}
	if len(r.entries) >= entities.MaxCapabilities {
		return 0, &domainerrors.CapabilitySpaceExhaustedError{Name: name, Limit: entities.MaxCapabilities}
	}

	c := entities.Capability{ID: entities.CapabilityID(len(r.entries)), Name: name}
	for _, opt := range opts {
		opt(&c)
	}

	r.entries = append(r.entries, entry{capability: c, contract: contract})
	r.byName[name] = c.ID
	return c.ID, nil
}

// Freeze stops further declarations. It is idempotent.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Frozen reports whether Freeze was called.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// Len returns the number of declared capabilities.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// List returns the capabilities in declaration order.
func (r *Registry) List() []entities.Capability {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entities.Capability, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.capability
	}
	return out
}

// Names returns the capability names in declaration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.capability.Name
	}
	return out
}

// Lookup returns the capability with the given name.
func (r *Registry) Lookup(name string) (entities.Capability, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[name]
	if !ok {
		return entities.Capability{}, false
	}
	return r.entries[id].capability, true
}

// Capability returns the capability with the given ID.
func (r *Registry) Capability(id entities.CapabilityID) (entities.Capability, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if int(id) >= len(r.entries) {
		return entities.Capability{}, false
	}
	return r.entries[id].capability, true
}

// Contract returns the contract of the capability with the given ID.
// It returns nil for opaque capabilities and unknown IDs.
func (r *Registry) Contract(id entities.CapabilityID) ports.Contract {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if int(id) >= len(r.entries) {
		return nil
	}
	return r.entries[id].contract
}

// Resolve converts capability names into a set.
func (r *Registry) Resolve(names ...string) (entities.CapabilitySet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var set entities.CapabilitySet
	for _, name := range names {
		id, ok := r.byName[name]
		if !ok {
			return entities.EmptySet, &domainerrors.UnknownCapabilityError{Name: name}
		}
		set = set.With(id)
	}
	return set, nil
}

// NamesOf returns the names of the members of set in ID order.
// Bits beyond the declared capabilities are skipped.
func (r *Registry) NamesOf(set entities.CapabilitySet) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, set.Len())
	for _, id := range set.IDs() {
		if int(id) < len(r.entries) {
			names = append(names, r.entries[id].capability.Name)
		}
	}
	return names
}

// Mask returns the set of all declared capabilities.
func (r *Registry) Mask() entities.CapabilitySet {
	return entities.FullSet(r.Len())
}
