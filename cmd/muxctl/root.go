package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/reglet-mux/application/declaration"
	"github.com/reglet-dev/reglet-mux/domain/entities"
	"github.com/reglet-dev/reglet-mux/log"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	logger     *slog.Logger
	logLevel   string
	logFormat  string
	jsonOutput bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &globalOptions{logger: log.Nop()}

	root := &cobra.Command{
		Use:           "muxctl",
		Short:         "Inspect capability multiplexer declarations",
		Version:       fmt.Sprintf("%s (%s)", Version, Commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := log.ParseLevel(opts.logLevel)
			if err != nil {
				return fmt.Errorf("--log-level: %w", err)
			}
			format, err := log.ParseFormat(opts.logFormat)
			if err != nil {
				return fmt.Errorf("--log-format: %w", err)
			}
			opts.logger = log.New(log.WithOutput(stderr), log.WithLevel(level), log.WithFormat(format))
			return nil
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn or error")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "Log format: text or json")
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Output in JSON format")

	root.AddCommand(
		newVariantsCmd(opts),
		newValidateCmd(opts),
		newSchemaCmd(),
		newProbeCmd(opts),
	)
	return root
}

// loadDeclaration loads and validates a declaration file.
func (o *globalOptions) loadDeclaration(path string) (*entities.Declaration, error) {
	return declaration.NewLoader(declaration.WithLogger(o.logger)).LoadFile(path)
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
