package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "vanguard",
	Short: "Vanguard - REST front door for distributed search",
	Long: `Vanguard is the REST front door of a distributed search and ingest
cluster. It terminates HTTP for the node and serves the public API.

The server provides:
  - Document search and NDJSON ingestion per index
  - Index management (create, list, describe, delete)
  - Cluster, version, and OpenAPI description endpoints
  - Liveness and readiness probes, Prometheus metrics
  - Developer routes for runtime inspection and log level control

For more information, visit: https://github.com/openquery-hq/vanguard`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
