// Command cla is the CLA administration tool: an HTTP admin server and a
// set of commands for reading and deleting table records from a shell.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags
var (
	configPath string
	verbosity  int
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "cla",
		Short:        "CLA administration tool",
		Long:         `cla serves the CLA administration pages and API, and reads or deletes table records from the command line.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (or set CLA_CONFIG_FILE)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity of record commands (-v info, -vv debug)")

	rootCmd.AddCommand(
		newServeCmd(),
		newRecordsCmd(),
		newRecordCmd(),
		newFieldsetCmd(),
		newDeleteCmd(),
		newQueryCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Show version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "cla %s (commit: %s, built: %s)\n", version, commit, date)
			},
		},
	)

	return rootCmd
}
