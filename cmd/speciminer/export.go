package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adamancer/speciminer/internal/report"
)

// newExportCmd builds `speciminer export <path>` (spec.md §6: emit a
// tabular report of snippet/link pairs).
func newExportCmd(flags *globalFlags) *cobra.Command {
	var compress bool

	cmd := &cobra.Command{
		Use:   "export <path>",
		Short: "Export every resolved link as a CSV report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			log := newLogger(flags)
			st, err := openStore(flags, log)
			if err != nil {
				log.Fatalf("%v", err)
				return err
			}
			defer st.Close()

			links, err := st.AllLinks()
			if err != nil {
				return err
			}

			f, err := os.Create(path)
			if err != nil {
				return err
			}
			defer f.Close()

			if !compress {
				compress = strings.HasSuffix(path, ".gz")
			}
			if err := report.WriteExport(f, links, compress); err != nil {
				return err
			}
			log.Infof("export: wrote %d links to %s", len(links), path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&compress, "gzip", false, "gzip-compress the export (implied by a .gz path)")
	return cmd
}
