// Package contract provides capability contracts backed by Go interface types.
// Go interfaces are satisfied structurally, so probing is a method-set check.
package contract

import (
	"fmt"
	"reflect"

	domainerrors "github.com/reglet-dev/reglet-mux/domain/errors"
	"github.com/reglet-dev/reglet-mux/domain/ports"
)

// InterfaceContract is satisfied by any type whose method set implements the interface.
type InterfaceContract struct {
	typ reflect.Type
}

var (
	_ ports.Contract    = (*InterfaceContract)(nil)
	_ ports.HandleTyped = (*InterfaceContract)(nil)
)

// Interface returns the contract for interface type T.
// It panics if T is not an interface type.
func Interface[T any]() *InterfaceContract {
	c, err := ForType(reflect.TypeFor[T]())
	if err != nil {
		panic(err)
	}
	return c
}

// ForType returns the contract for an interface type.
func ForType(t reflect.Type) (*InterfaceContract, error) {
	if t == nil {
		return nil, &domainerrors.InvalidContractError{Contract: "<nil>", Reason: "no type"}
	}
	if t.Kind() != reflect.Interface {
		return nil, &domainerrors.InvalidContractError{
			Contract: t.String(),
			Reason:   fmt.Sprintf("%s is a %s, not an interface", t, t.Kind()),
		}
	}
	return &InterfaceContract{typ: t}, nil
}

// Type returns the interface type.
func (c *InterfaceContract) Type() reflect.Type {
	return c.typ
}

// HandleType returns the interface type. Handles are the objects themselves,
// so any type the interface is assignable to can read them.
func (c *InterfaceContract) HandleType() reflect.Type {
	return c.typ
}

// Probe reports whether subject implements the interface. Subject may be a
// reflect.Type describing an implementor or a concrete object.
func (c *InterfaceContract) Probe(subject any) bool {
	t, ok := subject.(reflect.Type)
	if !ok {
		t = reflect.TypeOf(subject)
	}
	if t == nil {
		return false
	}
	return t.Implements(c.typ)
}

// Project returns obj as the handle. Interface values share the underlying
// pointer, so every handle of one object observes the same state.
func (c *InterfaceContract) Project(obj any) (any, error) {
	if !c.Probe(obj) {
		return nil, &domainerrors.ContractMismatchError{
			Capability:  c.typ.String(),
			Implementor: Describe(obj),
		}
	}
	return obj, nil
}

// String returns the interface type name.
func (c *InterfaceContract) String() string {
	return c.typ.String()
}

// Describe names an object or implementor description for diagnostics.
func Describe(subject any) string {
	switch s := subject.(type) {
	case nil:
		return "<nil>"
	case ports.Keyed:
		return fmt.Sprintf("%q", s.ImplementorKey())
	case reflect.Type:
		return s.String()
	default:
		return reflect.TypeOf(subject).String()
	}
}
