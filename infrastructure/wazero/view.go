package wazero

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero/api"
)

// View is the handle of one WASM-backed capability. It calls into the wrapped
// module and never copies it.
type View struct {
	module   api.Module
	contract *ExportContract
}

// Module returns the module the view calls into.
func (v *View) Module() api.Module {
	return v.module
}

// Functions returns the functions reachable through the view.
func (v *View) Functions() []Signature {
	return v.contract.Signatures()
}

// Call invokes the exported function name. Only functions of the view's
// capability are reachable.
func (v *View) Call(ctx context.Context, name string, params ...uint64) ([]uint64, error) {
	if !v.has(name) {
		return nil, fmt.Errorf("function %s is not part of %s", name, v.contract)
	}
	f := v.module.ExportedFunction(name)
	if f == nil {
		return nil, fmt.Errorf("export %q not found", name)
	}
	results, err := f.Call(ctx, params...)
	if err != nil {
		return nil, fmt.Errorf("call %s on %s: %w", name, v.module.Name(), err)
	}
	return results, nil
}

func (v *View) has(name string) bool {
	for _, s := range v.contract.sigs {
		if s.Name == name {
			return true
		}
	}
	return false
}
