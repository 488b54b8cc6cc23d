package testutil

import (
	"github.com/tetratelabs/wazero/api"
)

// WasmFunc is one exported function of a generated module.
// Body holds the instructions without the trailing end opcode.
type WasmFunc struct {
	Name    string
	Params  []api.ValueType
	Results []api.ValueType
	Body    []byte
}

// Counter exports name as () -> i32. Each call increments the module's
// mutable global and returns the new value.
func Counter(name string) WasmFunc {
	return WasmFunc{
		Name:    name,
		Results: []api.ValueType{api.ValueTypeI32},
		// global.get 0; i32.const 1; i32.add; global.set 0; global.get 0
		Body: []byte{0x23, 0x00, 0x41, 0x01, 0x6a, 0x24, 0x00, 0x23, 0x00},
	}
}

// Reader exports name as () -> i32 returning the module's global.
func Reader(name string) WasmFunc {
	return WasmFunc{
		Name:    name,
		Results: []api.ValueType{api.ValueTypeI32},
		Body:    []byte{0x23, 0x00},
	}
}

// Adder exports name as (i32, i32) -> i32.
func Adder(name string) WasmFunc {
	return WasmFunc{
		Name:    name,
		Params:  []api.ValueType{api.ValueTypeI32, api.ValueTypeI32},
		Results: []api.ValueType{api.ValueTypeI32},
		Body:    []byte{0x20, 0x00, 0x20, 0x01, 0x6a},
	}
}

// Const exports name as () -> i32 returning v.
func Const(name string, v int32) WasmFunc {
	return WasmFunc{
		Name:    name,
		Results: []api.ValueType{api.ValueTypeI32},
		Body:    append([]byte{0x41}, sleb128(int64(v))...),
	}
}

// WasmModule encodes a WebAssembly binary exporting funcs. The module has
// one mutable i32 global initialized to zero and no imports or memory.
func WasmModule(funcs ...WasmFunc) []byte {
	out := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

	var types, indices, exports, code []byte
	types = append(types, uleb128(uint64(len(funcs)))...)
	indices = append(indices, uleb128(uint64(len(funcs)))...)
	exports = append(exports, uleb128(uint64(len(funcs)))...)
	code = append(code, uleb128(uint64(len(funcs)))...)

	for i, f := range funcs {
		types = append(types, 0x60)
		types = append(types, vector(f.Params)...)
		types = append(types, vector(f.Results)...)

		indices = append(indices, uleb128(uint64(i))...)

		exports = append(exports, name(f.Name)...)
		exports = append(exports, 0x00)
		exports = append(exports, uleb128(uint64(i))...)

		// no locals
		body := append([]byte{0x00}, f.Body...)
		body = append(body, 0x0b)
		code = append(code, uleb128(uint64(len(body)))...)
		code = append(code, body...)
	}

	// one global: mut i32 = i32.const 0
	globals := []byte{0x01, api.ValueTypeI32, 0x01, 0x41, 0x00, 0x0b}

	out = append(out, section(0x01, types)...)
	out = append(out, section(0x03, indices)...)
	out = append(out, section(0x06, globals)...)
	out = append(out, section(0x07, exports)...)
	out = append(out, section(0x0a, code)...)
	return out
}

func section(id byte, content []byte) []byte {
	out := []byte{id}
	out = append(out, uleb128(uint64(len(content)))...)
	return append(out, content...)
}

func vector(vts []api.ValueType) []byte {
	out := uleb128(uint64(len(vts)))
	return append(out, vts...)
}

func name(s string) []byte {
	out := uleb128(uint64(len(s)))
	return append(out, s...)
}

func uleb128(v uint64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			return out
		}
	}
}

func sleb128(v int64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		done := (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0)
		if !done {
			b |= 0x80
		}
		out = append(out, b)
		if done {
			return out
		}
	}
}
