package wazero

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/reglet-dev/reglet-mux/domain/ports"
)

var (
	_ ports.Keyed = (*Blueprint)(nil)
	_ ports.Keyed = (*Instance)(nil)
)

// Blueprint is a compiled module. It describes an implementor: registering a
// blueprint covers every instance created from it.
type Blueprint struct {
	compiled wazero.CompiledModule
	name     string
}

// ImplementorKey returns the blueprint name.
func (b *Blueprint) ImplementorKey() string {
	return b.name
}

// Name returns the blueprint name.
func (b *Blueprint) Name() string {
	return b.name
}

// Compiled returns the compiled module.
func (b *Blueprint) Compiled() wazero.CompiledModule {
	return b.compiled
}

// Exports returns the exported functions sorted by name.
func (b *Blueprint) Exports() []Signature {
	return signatures(b.compiled.ExportedFunctions())
}

// Instance is an instantiated module. Closing it closes the module.
type Instance struct {
	blueprint *Blueprint
	module    api.Module
	closeOnce sync.Once
	closeErr  error
}

// ImplementorKey returns the name of the blueprint the instance came from.
func (i *Instance) ImplementorKey() string {
	return i.blueprint.name
}

// Name returns the unique module name of the instance.
func (i *Instance) Name() string {
	return i.module.Name()
}

// Blueprint returns the blueprint the instance came from.
func (i *Instance) Blueprint() *Blueprint {
	return i.blueprint
}

// Module returns the instantiated module.
func (i *Instance) Module() api.Module {
	return i.module
}

// Close closes the module. Only the first call has an effect.
func (i *Instance) Close() error {
	i.closeOnce.Do(func() {
		i.closeErr = i.module.Close(context.Background())
	})
	return i.closeErr
}

// Closed reports whether the module has been closed.
func (i *Instance) Closed() bool {
	return i.module.IsClosed()
}

func signatures(defs map[string]api.FunctionDefinition) []Signature {
	out := make([]Signature, 0, len(defs))
	for name, def := range defs {
		out = append(out, Signature{
			Name:    name,
			Params:  def.ParamTypes(),
			Results: def.ResultTypes(),
		})
	}
	slices.SortFunc(out, func(a, b Signature) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}
