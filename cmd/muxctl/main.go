// muxctl inspects capability multiplexer declarations: it lists their
// variants, validates them, prints their schema and classifies WASM modules.
package main

import (
	"fmt"
	"os"
)

// Build-time variables set via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
