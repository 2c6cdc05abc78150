package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/adamancer/speciminer/internal/report"
	"github.com/adamancer/speciminer/internal/store"
)

// newReportCmd builds `speciminer report <source>` (spec.md §6: emit a
// citation-per-specimen summary). <source> filters to documents whose
// Document.Source field matches; "all" (the default) reports every
// document regardless of source.
func newReportCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <source>",
		Short: "Summarize matched specimens per document citation",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := "all"
			if len(args) == 1 {
				source = args[0]
			}

			log := newLogger(flags)
			st, err := openStore(flags, log)
			if err != nil {
				log.Fatalf("%v", err)
				return err
			}
			defer st.Close()

			docs, err := st.AllDocuments()
			if err != nil {
				return err
			}

			var citations []report.Citation
			for _, doc := range docs {
				if source != "all" && doc.Source != source {
					continue
				}
				links, err := st.LinksByDocument(doc.URL)
				if err != nil {
					return err
				}
				citations = append(citations, citationFor(doc, links))
			}

			return report.WriteReport(os.Stdout, citations)
		},
	}
	return cmd
}

func citationFor(doc store.Document, links []store.Link) report.Citation {
	matched := 0
	for _, l := range links {
		if l.Matched() {
			matched++
		}
	}
	return report.Citation{
		DocURL:       doc.URL,
		Title:        doc.Title,
		NumSpecimens: len(links),
		NumMatched:   matched,
	}
}
