package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "stdb-wire",
		Short: "Inspect SpacetimeDB wire data",
		Long: `stdb-wire decodes SpacetimeDB wire artifacts for debugging:
raw BSATN value dumps, protocol messages, and compressed frames.

Input is hex on the command line or on stdin; whitespace in the hex
is ignored, so pasted wireshark/log output works as-is.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		dumpCmd(),
		frameCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
