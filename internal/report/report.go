// Package report renders the two tabular outputs spec.md §7 names for
// the CLI's export/report commands: a flat snippet/link export and a
// citation-per-specimen summary, grounded on the eutils package's
// csv-ish tabular helpers (json.go's inflector.Pluralize for count
// labels, xplore.go's cases.Title for the report's human-readable
// headers) and poster.go/merge.go's pgzip.NewWriterLevel for an
// optionally-compressed sink.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/gedex/inflector"
	"github.com/klauspost/pgzip"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/adamancer/speciminer/internal/store"
)

var titleCaser = cases.Title(language.English)

// exportColumns is the column order for WriteExport, matching
// match_database.py's to_csv field order.
var exportColumns = []string{
	"doc_url", "verbatim", "spec_num", "ezid", "match_quality",
	"department", "has_similar_ref", "num_snippets",
}

// WriteExport renders every persisted Link as one CSV row, gzip- or
// pgzip-compressing the stream when compress is true (spec.md §7
// `export <path>`). pgzip is used instead of compress/gzip so a large
// export parallelizes its compression across cores, the same tradeoff
// poster.go/merge.go make for EDirect's archive downloads.
func WriteExport(w io.Writer, links []store.Link, compress bool) error {
	sink := w
	if compress {
		zw, err := pgzip.NewWriterLevel(w, pgzip.BestSpeed)
		if err != nil {
			return fmt.Errorf("report: opening pgzip writer: %w", err)
		}
		defer zw.Close()
		sink = zw
	}

	cw := csv.NewWriter(sink)
	if err := cw.Write(exportColumns); err != nil {
		return fmt.Errorf("report: writing header: %w", err)
	}

	sorted := make([]store.Link, len(links))
	copy(sorted, links)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].DocURL != sorted[j].DocURL {
			return sorted[i].DocURL < sorted[j].DocURL
		}
		return sorted[i].Verbatim < sorted[j].Verbatim
	})

	for _, l := range sorted {
		row := []string{
			l.DocURL, l.Verbatim, l.SpecNum, l.EZID(), l.MatchQuality,
			l.Department, strconv.FormatBool(l.HasSimilarRef), strconv.Itoa(l.NumSnippets),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("report: writing row for %s: %w", l.Verbatim, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("report: flushing csv: %w", err)
	}
	return nil
}

// Citation summarizes one source document's specimen yield for the
// citation-per-specimen report (spec.md §7 `report <source>`,
// match_database.py's report()).
type Citation struct {
	DocURL       string
	Title        string
	NumSpecimens int
	NumMatched   int
}

// WriteReport renders one human-readable line per Citation: a title-
// cased document title and a pluralized specimen count, grounded on
// json.go's inflector.Pluralize/Singularize usage and xplore.go's
// cases.Title for consistent capitalization of mixed-case source
// titles.
func WriteReport(w io.Writer, citations []Citation) error {
	sorted := make([]Citation, len(citations))
	copy(sorted, citations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].DocURL < sorted[j].DocURL })

	for _, c := range sorted {
		noun := "specimen"
		if c.NumSpecimens != 1 {
			noun = inflector.Pluralize(noun)
		}
		title := strings.TrimSpace(c.Title)
		if title == "" {
			title = c.DocURL
		}
		line := fmt.Sprintf("%s — %d %s matched of %d mentioned (%s)\n",
			titleCaser.String(title), c.NumMatched, noun, c.NumSpecimens, c.DocURL)
		if _, err := io.WriteString(w, line); err != nil {
			return fmt.Errorf("report: writing citation for %s: %w", c.DocURL, err)
		}
	}
	return nil
}
