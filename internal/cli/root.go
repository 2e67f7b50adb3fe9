// Package cli implements the metactl command line tool: offline dataset
// enrichment, dataset management and summary reporting without running
// the HTTP service.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	inputPath string
	dbPath    string
)

var rootCmd = &cobra.Command{
	Use:   "metactl",
	Short: "Metagame leaderboard tool",
	Long:  "Enrich tournament usage datasets and inspect the resulting leaderboard without running the service.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&inputPath, "input", "", "path to a JSON dataset file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to a SQLite dataset database")

	rootCmd.AddCommand(rankCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(seedCmd)
}
