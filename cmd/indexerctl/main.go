// Command indexerctl is an operator CLI over a running (or stopped)
// indexer's data directory, replacing the teacher's proxi tool with a
// much smaller surface: db info and db segments.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/solindex/geyser-indexer/cmd/indexerctl/console"
	"github.com/solindex/geyser-indexer/cmd/indexerctl/dbcmd"
)

func init() {
	initRoot()
	dbcmd.Init(rootCmd)
}

var rootCmd = &cobra.Command{
	Use:   "indexerctl",
	Short: "operator CLI for the geyser indexer's data directory",
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

func initRoot() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		console.Fatalf("%v", err)
	}
	os.Exit(0)
}
