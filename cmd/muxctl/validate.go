package main

import (
	"fmt"

	"github.com/spf13/cobra"

	mux "github.com/reglet-dev/reglet-mux"
	domainerrors "github.com/reglet-dev/reglet-mux/domain/errors"
)

type validateOutput struct {
	Error        *domainerrors.ErrorDetail `json:"error,omitempty"`
	File         string                    `json:"file"`
	Name         string                    `json:"name,omitempty"`
	Capabilities int                       `json:"capabilities,omitempty"`
	Implementors int                       `json:"implementors,omitempty"`
	Valid        bool                      `json:"valid"`
}

func newValidateCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a declaration file",
		Long: `Check a declaration file against the declaration schema and its semantic
rules, then build the multiplexer it describes without sealing it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := validateOutput{File: args[0]}

			err := func() error {
				decl, err := opts.loadDeclaration(args[0])
				if err != nil {
					return err
				}
				if _, err := mux.FromDeclaration(decl, mux.WithLogger(opts.logger)); err != nil {
					return err
				}
				out.Name = decl.Name
				out.Capabilities = len(decl.Capabilities)
				out.Implementors = len(decl.Implementors)
				return nil
			}()
			out.Valid = err == nil
			if err != nil {
				out.Error = domainerrors.ToErrorDetail(err)
			}

			w := cmd.OutOrStdout()
			if opts.jsonOutput {
				if werr := writeJSON(w, out); werr != nil {
					return werr
				}
				return err
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s %s: %s (%d capabilities, %d implementors)\n",
				okStyle.Render("ok"), out.File, out.Name, out.Capabilities, out.Implementors)
			return nil
		},
	}
}
