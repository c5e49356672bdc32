// Package main provides the newsdeskctl CLI entry point: operator tooling
// for the newsdesk extension server (offline Crossref exports, approval
// token minting and inspection).
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "newsdeskctl",
	Short: "Operator tooling for the newsdesk extension server",
	Long: `newsdeskctl bundles operator utilities for the newsdesk extension
server: rendering Crossref deposit XML from exported article JSON, and
minting or inspecting the JWT approval tokens used by the sign-off
workflow.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Version = Version
}
