// Package main provides the precis CLI entry point.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)

		var exitErr *exitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.code)
		}
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "precis",
	Short: "Extractive summaries of policy and healthcare documents",
	Long: `precis selects the sentences that best represent a document and
arranges them into titled sections or a single paragraph.

It runs as an HTTP service (precis serve) or directly on files
(precis summarize). Configuration is read from the environment and an
optional .env file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Version = Version
}
