// Package mux wraps objects of heterogeneous types into a single value that
// records which declared capabilities the object supports.
//
// A multiplexer declares an ordered list of capabilities, each backed by a
// contract such as a Go interface or a set of WASM exports. Implementors are
// registered either with an explicit capability list or by probing their
// structure. Sealing the multiplexer fixes its variants, and Wrap converts an
// object into a *Value tagged with its variant. Accessors then answer, in
// constant time, whether the value supports a capability and return a handle
// that refers to the wrapped object itself.
//
// Basic usage:
//
//	m := mux.New("Shape")
//	greet, _ := mux.Declare[Greeter](m, "Greet")
//	calc, _ := mux.Declare[Calculator](m, "Calculate")
//
//	v, err := m.Wrap(&CalculatorGreeter{})
//	if err != nil {
//	    return err
//	}
//	defer v.Release()
//
//	if g, ok := mux.TryAs[Greeter](v, greet); ok {
//	    g.Greet()
//	}
//
// Every clone of a value shares one ownership group. The object is released
// exactly once, when the last reference is released.
package mux
