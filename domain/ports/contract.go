package ports

import "reflect"

// Contract is the interface contract a capability names. It decides whether
// an implementor satisfies the capability and projects a handle for it.
type Contract interface {
	// Probe reports whether subject satisfies the contract. Subject is either a
	// concrete object or a description of an implementor (such as a reflect.Type
	// or a compiled module). Probe never panics and has no side effects.
	Probe(subject any) bool

	// Project returns the handle through which obj is used as this capability.
	// The handle must refer to obj itself, never to a copy.
	Project(obj any) (any, error)

	// String describes the contract for diagnostics.
	String() string
}

// Keyed is implemented by objects and implementor descriptions that carry
// their own registration key instead of being keyed by Go type.
type Keyed interface {
	ImplementorKey() string
}

// HandleTyped is implemented by contracts whose projected handles share one
// Go type, so typed accessors can be checked when they are built.
type HandleTyped interface {
	HandleType() reflect.Type
}
