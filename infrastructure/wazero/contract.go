package wazero

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/reglet-dev/reglet-mux/domain/entities"
	domainerrors "github.com/reglet-dev/reglet-mux/domain/errors"
	"github.com/reglet-dev/reglet-mux/domain/ports"
)

// Signature is one function a module must export.
type Signature struct {
	Name    string
	Params  []api.ValueType
	Results []api.ValueType
}

// String renders the signature as "name(i32, i32) -> i32".
func (s Signature) String() string {
	var b strings.Builder
	b.WriteString(s.Name)
	b.WriteByte('(')
	b.WriteString(typeNames(s.Params))
	b.WriteByte(')')
	if len(s.Results) > 0 {
		b.WriteString(" -> ")
		b.WriteString(typeNames(s.Results))
	}
	return b.String()
}

// matches reports whether def has the same name-independent type as s.
func (s Signature) matches(def api.FunctionDefinition) bool {
	return slices.Equal(s.Params, def.ParamTypes()) && slices.Equal(s.Results, def.ResultTypes())
}

func typeNames(vts []api.ValueType) string {
	names := make([]string, len(vts))
	for i, vt := range vts {
		names[i] = api.ValueTypeName(vt)
	}
	return strings.Join(names, ", ")
}

// ParseValueType converts a WebAssembly text type name into a value type.
func ParseValueType(name string) (api.ValueType, error) {
	switch name {
	case "i32":
		return api.ValueTypeI32, nil
	case "i64":
		return api.ValueTypeI64, nil
	case "f32":
		return api.ValueTypeF32, nil
	case "f64":
		return api.ValueTypeF64, nil
	case "externref":
		return api.ValueTypeExternref, nil
	default:
		return 0, fmt.Errorf("unknown value type %q", name)
	}
}

// ExportContract is satisfied by modules that export every listed function
// with exactly the listed signature.
type ExportContract struct {
	sigs []Signature
}

var (
	_ ports.Contract    = (*ExportContract)(nil)
	_ ports.HandleTyped = (*ExportContract)(nil)
)

// NewExportContract builds a contract from at least one signature.
// Function names must be unique.
func NewExportContract(sigs ...Signature) (*ExportContract, error) {
	if len(sigs) == 0 {
		return nil, &domainerrors.InvalidContractError{Contract: "exports{}", Reason: "no functions"}
	}

	seen := make(map[string]bool, len(sigs))
	for _, s := range sigs {
		if s.Name == "" {
			return nil, &domainerrors.InvalidContractError{Contract: s.String(), Reason: "function name is empty"}
		}
		if seen[s.Name] {
			return nil, &domainerrors.InvalidContractError{Contract: s.String(), Reason: "function listed twice"}
		}
		seen[s.Name] = true
	}
	return &ExportContract{sigs: slices.Clone(sigs)}, nil
}

// ContractFromDecl builds a contract from declaration functions.
func ContractFromDecl(fns []entities.FunctionDecl) (*ExportContract, error) {
	sigs := make([]Signature, len(fns))
	for i, fn := range fns {
		params, err := parseValueTypes(fn.Params)
		if err != nil {
			return nil, &domainerrors.InvalidContractError{Contract: fn.Name, Reason: err.Error()}
		}
		results, err := parseValueTypes(fn.Results)
		if err != nil {
			return nil, &domainerrors.InvalidContractError{Contract: fn.Name, Reason: err.Error()}
		}
		sigs[i] = Signature{Name: fn.Name, Params: params, Results: results}
	}
	return NewExportContract(sigs...)
}

func parseValueTypes(names []string) ([]api.ValueType, error) {
	out := make([]api.ValueType, 0, len(names))
	for _, n := range names {
		vt, err := ParseValueType(n)
		if err != nil {
			return nil, err
		}
		out = append(out, vt)
	}
	return out, nil
}

// Signatures returns the required functions.
func (c *ExportContract) Signatures() []Signature {
	return slices.Clone(c.sigs)
}

// HandleType returns the type of projected handles, *View.
func (c *ExportContract) HandleType() reflect.Type {
	return reflect.TypeFor[*View]()
}

// Probe reports whether subject exports every required function. Subject may
// be a *Blueprint, an *Instance, a wazero.CompiledModule or an api.Module.
func (c *ExportContract) Probe(subject any) bool {
	defs := definitions(subject)
	if defs == nil {
		return false
	}
	for _, s := range c.sigs {
		def, ok := defs[s.Name]
		if !ok || !s.matches(def) {
			return false
		}
	}
	return true
}

// Project returns a View over the instantiated module obj.
func (c *ExportContract) Project(obj any) (any, error) {
	mod := moduleOf(obj)
	if mod == nil {
		return nil, fmt.Errorf("%T is not an instantiated module", obj)
	}
	if !c.Probe(mod) {
		return nil, fmt.Errorf("module %s does not export %s", mod.Name(), c)
	}
	return &View{module: mod, contract: c}, nil
}

// String lists the required functions.
func (c *ExportContract) String() string {
	parts := make([]string, len(c.sigs))
	for i, s := range c.sigs {
		parts[i] = s.String()
	}
	return "exports{" + strings.Join(parts, "; ") + "}"
}

func definitions(subject any) map[string]api.FunctionDefinition {
	switch s := subject.(type) {
	case *Instance:
		if s == nil {
			return nil
		}
		return s.module.ExportedFunctionDefinitions()
	case *Blueprint:
		if s == nil {
			return nil
		}
		return s.compiled.ExportedFunctions()
	case wazero.CompiledModule:
		return s.ExportedFunctions()
	case api.Module:
		return s.ExportedFunctionDefinitions()
	default:
		return nil
	}
}

func moduleOf(obj any) api.Module {
	switch o := obj.(type) {
	case *Instance:
		if o == nil {
			return nil
		}
		return o.module
	case api.Module:
		return o
	default:
		return nil
	}
}
