package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	mux "github.com/reglet-dev/reglet-mux"
	"github.com/reglet-dev/reglet-mux/domain/entities"
)

type variantOutput struct {
	Name         string   `json:"name"`
	Set          string   `json:"set"`
	Capabilities []string `json:"capabilities"`
	Index        uint64   `json:"index"`
}

type variantsOutput struct {
	Name        string          `json:"name"`
	Mode        string          `json:"mode"`
	Strategy    string          `json:"strategy"`
	Fingerprint string          `json:"fingerprint"`
	Variants    []variantOutput `json:"variants"`
	Count       uint64          `json:"count"`
	Truncated   bool            `json:"truncated,omitempty"`
}

func newVariantsCmd(opts *globalOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "variants <file>",
		Short: "List the variants a declaration produces",
		Long: `Build the multiplexer described by a declaration file, seal it and list
its variants in bitmask order. Full mode over many capabilities produces
2^N variants; --limit bounds how many are printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			decl, err := opts.loadDeclaration(args[0])
			if err != nil {
				return err
			}
			m, err := mux.FromDeclaration(decl, mux.WithLogger(opts.logger))
			if err != nil {
				return err
			}
			if err := m.Seal(); err != nil {
				return err
			}

			out, err := describeVariants(m, limit)
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			return printVariants(cmd, out)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 256, "Maximum number of variants to print (0 for no limit)")
	return cmd
}

func describeVariants(m *mux.Mux, limit int) (*variantsOutput, error) {
	table := m.Table()
	fp, err := table.Fingerprint()
	if err != nil {
		return nil, err
	}

	out := &variantsOutput{
		Name:        m.Name(),
		Mode:        m.Mode().String(),
		Strategy:    m.Strategy().String(),
		Fingerprint: hex.EncodeToString(fp[:]),
		Count:       table.Count(),
	}
	for v := range table.All() {
		if limit > 0 && len(out.Variants) == limit {
			out.Truncated = true
			break
		}
		out.Variants = append(out.Variants, variantOutput{
			Name:         v.Name,
			Set:          v.Set.String(),
			Capabilities: m.Registry().NamesOf(v.Set),
			Index:        v.Index,
		})
	}
	return out, nil
}

func printVariants(cmd *cobra.Command, out *variantsOutput) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "%s %s\n", titleStyle.Render(out.Name),
		mutedStyle.Render(fmt.Sprintf("(mode %s, strategy %s)", out.Mode, out.Strategy)))

	t := newTable("#", "VARIANT", "CAPABILITIES", "SET")
	for _, v := range out.Variants {
		caps := strings.Join(v.Capabilities, ", ")
		if caps == "" {
			caps = "-"
		}
		t.Row(fmt.Sprint(v.Index), v.Name, caps, v.Set)
	}
	fmt.Fprintln(w, t.Render())

	if out.Truncated {
		fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("showing %d of %s variants", len(out.Variants), countString(out.Count))))
	}
	fmt.Fprintf(w, "fingerprint %s\n", out.Fingerprint)
	return nil
}

// countString renders a variant count. A full table over 64 capabilities
// saturates the counter.
func countString(n uint64) string {
	if n == ^uint64(0) {
		return fmt.Sprintf("2^%d", entities.MaxCapabilities)
	}
	return fmt.Sprint(n)
}
