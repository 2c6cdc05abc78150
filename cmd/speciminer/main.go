// Command speciminer is the catalog-number mining and record-matching CLI
// (spec.md §6): four subcommands — mine, match, export, report — sharing
// one YAML configuration and one BadgerDB-backed store. Each subcommand is
// a thin cobra.Command wrapper; the actual work lives in internal/mine,
// internal/resolve, and internal/report, mirroring how the teacher's own
// cmd/xtract.go and cmd/rchive.go are thin entry points over the eutils
// package.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// globalFlags holds the options shared by every subcommand (spec.md §6's
// CLI surface), in place of the teacher's hand-parsed os.Args globals
// (Design Note, spec.md §9: no hidden package-level state).
type globalFlags struct {
	configPath string
	dbDir      string
	logColor   bool
	batchSize  int
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:           "speciminer",
		Short:         "Mine museum specimen mentions and match them to collection records",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to the YAML regex/department configuration (default: bundled config)")
	root.PersistentFlags().StringVar(&flags.dbDir, "db", "./speciminer-data", "BadgerDB data directory")
	root.PersistentFlags().BoolVar(&flags.logColor, "log-color", true, "colorize log output")
	root.PersistentFlags().IntVar(&flags.batchSize, "batch-size", 0, "write-behind batch flush threshold (default: 2000 per GiB of memory, clamped to 1000-10000)")

	root.AddCommand(newMineCmd(flags))
	root.AddCommand(newMatchCmd(flags))
	root.AddCommand(newExportCmd(flags))
	root.AddCommand(newReportCmd(flags))
	return root
}
