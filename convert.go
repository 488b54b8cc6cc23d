package mux

import (
	"github.com/reglet-dev/reglet-mux/application/enumerator"
	"github.com/reglet-dev/reglet-mux/domain/entities"
	domainerrors "github.com/reglet-dev/reglet-mux/domain/errors"
	"github.com/reglet-dev/reglet-mux/infrastructure/contract"
)

// convert tags obj with the variant of set and projects one handle per
// member capability. All handles refer to obj; none copies it.
func (m *Mux) convert(obj any, set entities.CapabilitySet, table *enumerator.Table) (*Value, error) {
	variant, ok := table.Lookup(set)
	if !ok {
		return nil, &domainerrors.UnknownCombinationError{Set: set, Capabilities: m.reg.NamesOf(set)}
	}

	handles := make([]any, 0, set.Len())
	for _, id := range set.IDs() {
		h, err := m.project(id, obj)
		if err != nil {
			return nil, err
		}
		handles = append(handles, h)
	}

	m.config.logger.Debug("wrapped object",
		"multiplexer", m.name, "implementor", contract.Describe(obj), "variant", variant.Name)
	return &Value{
		group:   newGroup(obj, m.config.releaser),
		handles: handles,
		variant: variant,
	}, nil
}

// project builds the handle of one capability. Opaque capabilities hand out
// the object itself.
func (m *Mux) project(id entities.CapabilityID, obj any) (any, error) {
	c := m.reg.Contract(id)
	if c == nil {
		return obj, nil
	}

	h, err := c.Project(obj)
	if err != nil {
		capability, _ := m.reg.Capability(id)
		return nil, &domainerrors.ContractMismatchError{
			Err:         err,
			Capability:  capability.Name,
			Implementor: contract.Describe(obj),
		}
	}
	return h, nil
}
