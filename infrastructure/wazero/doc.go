// Package wazero provides capability contracts satisfied by WebAssembly modules
// running in the wazero runtime.
//
// A capability backed by an ExportContract names the functions, with their
// parameter and result types, that a module must export. Probing inspects the
// export section of a compiled or instantiated module, so detection never runs
// guest code. Projection yields a *View over the instance; every view of one
// wrapped instance calls into the same module and observes the same state.
//
// # Basic Usage
//
//	loader, err := wazero.NewLoader(ctx)
//	if err != nil {
//	    return err
//	}
//	defer loader.Close(ctx)
//
//	greet, _ := wazero.NewExportContract(wazero.Signature{
//	    Name:    "greet",
//	    Results: []api.ValueType{api.ValueTypeI32},
//	})
//	m := mux.New("Plugin")
//	greetID, _ := m.DeclareContract("Greet", greet)
//
//	inst, err := loader.Load(ctx, "greeter", wasmBytes)
//	if err != nil {
//	    return err
//	}
//	v, err := m.Wrap(inst)
//	if err != nil {
//	    return err
//	}
//	defer v.Release() // closes the module
//
//	if view, ok := mux.TryAs[*wazero.View](v, greetID); ok {
//	    results, err := view.Call(ctx, "greet")
//	    ...
//	}
package wazero
