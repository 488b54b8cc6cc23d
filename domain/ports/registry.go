package ports

import "github.com/reglet-dev/reglet-mux/domain/entities"

// CapabilityRegistry is the read side of a capability registry that
// detection and conversion work against.
type CapabilityRegistry interface {
	// List returns every declared capability in declaration order.
	List() []entities.Capability

	// Capability returns the capability with the given ID.
	Capability(id entities.CapabilityID) (entities.Capability, bool)

	// Contract returns the contract of a capability, nil if it is opaque.
	Contract(id entities.CapabilityID) Contract

	// Resolve converts capability names to a set.
	Resolve(names ...string) (entities.CapabilitySet, error)

	// NamesOf lists the names of the capabilities in set.
	NamesOf(set entities.CapabilitySet) []string
}
