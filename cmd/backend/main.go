package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "backend",
		Short:         "Single-file HTTP upload endpoint",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (default: ./configs/config.yaml or ./config.yaml)")

	rootCmd.AddCommand(
		serveCmd(&configPath),
		listCmd(&configPath),
		convertCmd(),
		versionCmd(),
	)

	return rootCmd
}
