package mux

import (
	"fmt"
	"reflect"

	"github.com/reglet-dev/reglet-mux/domain/entities"
	domainerrors "github.com/reglet-dev/reglet-mux/domain/errors"
	"github.com/reglet-dev/reglet-mux/domain/ports"
)

// Accessor reads one capability out of a value.
type Accessor struct {
	capability entities.Capability
}

// Name returns the accessor name, e.g. "try_as_greet".
func (a Accessor) Name() string {
	return a.capability.Accessor()
}

// Capability returns the capability the accessor reads.
func (a Accessor) Capability() entities.Capability {
	return a.capability
}

// Get returns the handle when v carries the capability.
func (a Accessor) Get(v *Value) (any, bool) {
	return v.TryAs(a.capability.ID)
}

// Accessor returns the accessor of the named capability.
func (m *Mux) Accessor(name string) (Accessor, error) {
	c, ok := m.reg.Lookup(name)
	if !ok {
		return Accessor{}, &domainerrors.UnknownCapabilityError{Name: name}
	}
	return Accessor{capability: c}, nil
}

// AccessorByMethod returns the accessor with the given accessor name,
// such as "try_as_binary_debug".
func (m *Mux) AccessorByMethod(method string) (Accessor, error) {
	for _, c := range m.reg.List() {
		if c.Accessor() == method {
			return Accessor{capability: c}, nil
		}
	}
	return Accessor{}, &domainerrors.UnknownCapabilityError{Name: method}
}

// Accessors returns one accessor per capability in declaration order.
func (m *Mux) Accessors() []Accessor {
	caps := m.reg.List()
	out := make([]Accessor, len(caps))
	for i, c := range caps {
		out[i] = Accessor{capability: c}
	}
	return out
}

// TryAs returns the handle of capability id as T. It reports false when v
// lacks the capability or the handle is not a T.
func TryAs[T any](v *Value, id entities.CapabilityID) (T, bool) {
	var zero T
	h, ok := v.TryAs(id)
	if !ok {
		return zero, false
	}
	t, ok := h.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

// TypedAccessor is an Accessor whose handles are read as T.
type TypedAccessor[T any] struct {
	Accessor
}

// Get returns the handle as T when v carries the capability.
func (a TypedAccessor[T]) Get(v *Value) (T, bool) {
	return TryAs[T](v, a.capability.ID)
}

// AccessorFor returns a typed accessor of the named capability. When the
// capability's contract fixes its handle type, T must be assignable from it.
func AccessorFor[T any](m *Mux, name string) (TypedAccessor[T], error) {
	a, err := m.Accessor(name)
	if err != nil {
		return TypedAccessor[T]{}, err
	}

	if typed, ok := m.reg.Contract(a.capability.ID).(ports.HandleTyped); ok {
		want := reflect.TypeFor[T]()
		if have := typed.HandleType(); !have.AssignableTo(want) {
			return TypedAccessor[T]{}, &domainerrors.InvalidContractError{
				Contract: have.String(),
				Reason:   fmt.Sprintf("handles of capability %s cannot be read as %s", name, want),
			}
		}
	}
	return TypedAccessor[T]{Accessor: a}, nil
}
