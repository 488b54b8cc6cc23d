package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	mux "github.com/reglet-dev/reglet-mux"
	"github.com/reglet-dev/reglet-mux/domain/entities"
	"github.com/reglet-dev/reglet-mux/infrastructure/wazero"
)

type probeOutput struct {
	Module    string          `json:"module"`
	Variant   string          `json:"variant,omitempty"`
	Error     string          `json:"error,omitempty"`
	Accessors map[string]bool `json:"accessors,omitempty"`
}

func newProbeCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "probe <file> <module.wasm>...",
		Short: "Classify WASM modules against a declaration",
		Long: `Compile each module, register it under its file name (without extension)
unless the declaration already lists an implementor of that name, seal the
multiplexer, then wrap one instance of each module and report its variant
and which accessors answer.

Under the explicit strategy only modules named in the declaration can be
classified.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			decl, err := opts.loadDeclaration(args[0])
			if err != nil {
				return err
			}
			m, err := mux.FromDeclaration(decl, mux.WithLogger(opts.logger))
			if err != nil {
				return err
			}

			loader, err := wazero.NewLoader(ctx, wazero.WithLogger(opts.logger))
			if err != nil {
				return err
			}
			defer loader.Close(ctx)

			declared := make(map[string]bool, len(decl.Implementors))
			for _, impl := range decl.Implementors {
				declared[impl.Name] = true
			}

			blueprints := make([]*wazero.Blueprint, 0, len(args)-1)
			for _, path := range args[1:] {
				wasm, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				bp, err := loader.Compile(ctx, moduleName(path), wasm)
				if err != nil {
					return err
				}
				if !declared[bp.Name()] && m.Strategy() == entities.StrategyStructural {
					if _, err := m.RegisterImplementor(bp); err != nil {
						return err
					}
				}
				blueprints = append(blueprints, bp)
			}

			if err := m.Seal(); err != nil {
				return err
			}

			results := make([]probeOutput, 0, len(blueprints))
			for _, bp := range blueprints {
				results = append(results, probe(ctx, m, loader, bp))
			}

			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), results)
			}
			printProbes(cmd, m, results)
			return nil
		},
	}
}

// moduleName derives the implementor name from a module path:
// "plugins/greeter.wasm" becomes "greeter".
func moduleName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func probe(ctx context.Context, m *mux.Mux, loader *wazero.Loader, bp *wazero.Blueprint) probeOutput {
	out := probeOutput{Module: bp.Name()}

	inst, err := loader.Instantiate(ctx, bp)
	if err != nil {
		out.Error = err.Error()
		return out
	}

	v, err := m.Wrap(inst)
	if err != nil {
		_ = inst.Close()
		out.Error = err.Error()
		return out
	}
	defer v.Release()

	out.Variant = v.Tag().Name
	out.Accessors = make(map[string]bool)
	for _, a := range m.Accessors() {
		_, ok := a.Get(v)
		out.Accessors[a.Name()] = ok
	}
	return out
}

func printProbes(cmd *cobra.Command, m *mux.Mux, results []probeOutput) {
	accessors := m.Accessors()
	headers := []string{"MODULE", "VARIANT"}
	for _, a := range accessors {
		headers = append(headers, a.Name())
	}

	t := newTable(headers...)
	for _, r := range results {
		if r.Error != "" {
			row := []string{r.Module, "error: " + r.Error}
			for range accessors {
				row = append(row, "")
			}
			t.Row(row...)
			continue
		}
		row := []string{r.Module, r.Variant}
		for _, a := range accessors {
			if r.Accessors[a.Name()] {
				row = append(row, "yes")
			} else {
				row = append(row, "-")
			}
		}
		t.Row(row...)
	}
	fmt.Fprintln(cmd.OutOrStdout(), t.Render())
}
