// Package cmd - dividash CLI commands
package cmd

import (
	"github.com/spf13/cobra"
)

const (
	serviceName    = "dividash"
	serviceVersion = "1.0.0"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:     "dividash",
	Short:   "Dividash dividend portfolio backend",
	Version: serviceVersion,
	Long: `Dividash dividend portfolio backend

Aggregates stock quotes, dividend histories, ETF profiles, sector
averages and market instruments from Alpha Vantage and Yahoo Finance,
and serves them over a JSON API.

Commands:
    serve       start the API server with background refresh loops
    refresh     run one bulk refresh pass and exit
`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(refreshCmd)
}
