package entities

// Declaration is the file form of a multiplexer: its capabilities in
// declaration order plus the implementors known ahead of time.
type Declaration struct {
	Name         string            `json:"name" yaml:"name" validate:"required,max=128" jsonschema:"minLength=1,pattern=^[A-Za-z_][A-Za-z0-9_]*$"`
	Mode         string            `json:"mode" yaml:"mode" validate:"required,oneof=full observed" jsonschema:"enum=full,enum=observed"`
	Strategy     string            `json:"strategy,omitempty" yaml:"strategy,omitempty" validate:"omitempty,oneof=structural explicit" jsonschema:"enum=structural,enum=explicit"`
	Capabilities []CapabilityDecl  `json:"capabilities" yaml:"capabilities" validate:"required,min=1,max=64,dive"`
	Implementors []ImplementorDecl `json:"implementors,omitempty" yaml:"implementors,omitempty" validate:"omitempty,dive"`
}

// CapabilityDecl declares one capability. Functions, when present, describe
// a WASM export contract the capability requires.
type CapabilityDecl struct {
	Name        string         `json:"name" yaml:"name" validate:"required,max=128" jsonschema:"minLength=1"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Functions   []FunctionDecl `json:"functions,omitempty" yaml:"functions,omitempty" validate:"omitempty,dive"`
}

// FunctionDecl is one exported function signature. Value types use the
// WebAssembly text names: i32, i64, f32, f64, externref.
type FunctionDecl struct {
	Name    string   `json:"name" yaml:"name" validate:"required" jsonschema:"minLength=1"`
	Params  []string `json:"params,omitempty" yaml:"params,omitempty"`
	Results []string `json:"results,omitempty" yaml:"results,omitempty"`
}

// ImplementorDecl lists the capabilities an implementor explicitly satisfies.
// An empty list declares an implementor with no capabilities.
type ImplementorDecl struct {
	Name         string   `json:"name" yaml:"name" validate:"required"`
	Capabilities []string `json:"capabilities" yaml:"capabilities"`
}

// NamedImplementor describes an implementor by name. Objects whose
// ImplementorKey matches the name share its registration.
type NamedImplementor string

// ImplementorKey returns the name.
func (n NamedImplementor) ImplementorKey() string {
	return string(n)
}
