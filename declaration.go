package mux

import (
	"fmt"
	"slices"

	"github.com/reglet-dev/reglet-mux/domain/entities"
	domainerrors "github.com/reglet-dev/reglet-mux/domain/errors"
	"github.com/reglet-dev/reglet-mux/domain/ports"
	"github.com/reglet-dev/reglet-mux/infrastructure/wazero"
	"github.com/reglet-dev/reglet-mux/registry"
)

// FromDeclaration builds an unsealed multiplexer from a declaration.
//
// Capabilities that list functions get a WASM export contract; the rest are
// opaque. Declared implementors are registered by name with their explicit
// capability lists, so instances whose ImplementorKey matches a name are
// classified without probing. The declaration's mode and strategy override
// opts.
func FromDeclaration(decl *entities.Declaration, opts ...Option) (*Mux, error) {
	if decl == nil {
		return nil, &domainerrors.DeclarationError{Err: fmt.Errorf("no declaration")}
	}

	mode, err := entities.ParseMode(decl.Mode)
	if err != nil {
		return nil, &domainerrors.DeclarationError{Err: err, Field: "mode"}
	}
	strategy, err := entities.ParseStrategy(decl.Strategy)
	if err != nil {
		return nil, &domainerrors.DeclarationError{Err: err, Field: "strategy"}
	}

	m := New(decl.Name, slices.Concat(opts, []Option{WithMode(mode), WithStrategy(strategy)})...)

	for i, cd := range decl.Capabilities {
		var c ports.Contract
		if len(cd.Functions) > 0 {
			ec, err := wazero.ContractFromDecl(cd.Functions)
			if err != nil {
				return nil, &domainerrors.DeclarationError{Err: err, Field: fmt.Sprintf("capabilities[%d].functions", i)}
			}
			c = ec
		}
		if _, err := m.DeclareContract(cd.Name, c, registry.WithDescription(cd.Description)); err != nil {
			return nil, &domainerrors.DeclarationError{Err: err, Field: fmt.Sprintf("capabilities[%d]", i)}
		}
	}

	for i, impl := range decl.Implementors {
		if _, err := m.RegisterExplicit(entities.NamedImplementor(impl.Name), impl.Capabilities); err != nil {
			return nil, &domainerrors.DeclarationError{Err: err, Field: fmt.Sprintf("implementors[%d]", i)}
		}
	}

	return m, nil
}
