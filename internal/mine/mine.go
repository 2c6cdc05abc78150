// Package mine implements Phase 0 (spec.md §6 `mine` CLI command): it
// drives a corpus.Adapter over a query, running the Snippet Extractor and
// Catalog-Number Parser over every page and persisting the resulting
// Documents, Journals, Snippets, Specimens, and not-yet-resolved Links.
// Phases 1-4 (resolution) are a separate pass, run by internal/resolve via
// the `match` command.
package mine

import (
	"context"
	"fmt"

	"github.com/adamancer/speciminer/internal/catnum"
	"github.com/adamancer/speciminer/internal/corpus"
	"github.com/adamancer/speciminer/internal/logging"
	"github.com/adamancer/speciminer/internal/metrics"
	"github.com/adamancer/speciminer/internal/regexbank"
	"github.com/adamancer/speciminer/internal/snippet"
	"github.com/adamancer/speciminer/internal/store"
)

// mineralSciencesTopic disables short-range expansion (spec.md §8's
// boundary behavior): a document already known to be Mineral Sciences
// uses the non-expanding parser.
const mineralSciencesTopic = "ms"

// Miner wires the Snippet Extractor and Catalog-Number Parser together
// over a corpus.Adapter, persisting the result through Store. It holds no
// mutable state beyond its collaborators (Design Note, spec.md §9).
type Miner struct {
	Store  *store.Store
	Bank   *regexbank.Bank
	Window int
	Log    *logging.Logger
}

// New builds a Miner.
func New(st *store.Store, bank *regexbank.Bank, window int, log *logging.Logger) *Miner {
	return &Miner{Store: st, Bank: bank, Window: window, Log: log}
}

// Run streams every document adapter.Documents(ctx, query) yields, mines
// each of its pages, and persists the results. It returns the first error
// encountered reading the adapter itself; per-document and per-mention
// failures are logged and do not abort the run (spec.md §7).
func (m *Miner) Run(ctx context.Context, adapter corpus.Adapter, query string) error {
	docs, errc := adapter.Documents(ctx, query)
	for doc := range docs {
		if err := m.mineDocument(ctx, adapter, doc); err != nil {
			m.Log.Errorf("mine: document %s: %v", doc.URL, err)
			continue
		}
		metrics.RecordDocument("mine")
	}
	if err := <-errc; err != nil {
		return fmt.Errorf("mine: reading corpus: %w", err)
	}
	return nil
}

func (m *Miner) mineDocument(ctx context.Context, adapter corpus.Adapter, doc corpus.Document) error {
	if err := m.Store.SaveDocument(ctx, doc); err != nil {
		return err
	}
	if doc.Publication != "" {
		if _, found, err := m.Store.GetJournal(doc.Publication); err == nil && !found {
			if err := m.Store.SaveJournal(ctx, store.Journal{Title: doc.Publication}); err != nil {
				return err
			}
		}
	}

	expandShort := doc.Topic != mineralSciencesTopic
	parser := catnum.NewParser(m.Bank, catnum.Options{ExpandShortRanges: expandShort})
	extractor := snippet.NewExtractor(m.Bank, m.Window)

	pages, errc := adapter.Pages(ctx, doc)
	for page := range pages {
		if err := m.minePage(ctx, doc, page, extractor, parser); err != nil {
			m.Log.Warnf("mine: page %s/%s: %v", doc.URL, page.ID, err)
		}
	}
	return <-errc
}

func (m *Miner) minePage(ctx context.Context, doc corpus.Document, page corpus.Page, extractor *snippet.Extractor, parser *catnum.Parser) error {
	snippetsByVerbatim, order := extractor.Extract(page.ID, page.Text)

	var parsedVerbatims []string
	for _, verbatim := range order {
		nums := parser.Parse(verbatim)
		if len(nums) == 0 {
			continue
		}
		parsedVerbatims = append(parsedVerbatims, verbatim)

		for _, snip := range snippetsByVerbatim[verbatim] {
			row := store.SnippetRow{DocURL: doc.URL, PageID: page.ID, Text: snip.Text, Start: snip.Start, End: snip.End}
			if err := m.Store.SaveSnippet(ctx, row); err != nil {
				return err
			}
			snippetRow, _, err := m.Store.GetSnippetByID(store.SnippetID(doc.URL, page.ID, snip.Text))
			if err != nil {
				return err
			}

			for _, num := range nums {
				canonical := catnum.Stringify(num)
				sp := store.Specimen{DocURL: doc.URL, SnippetID: snippetRow.ID, Verbatim: verbatim, SpecNum: canonical}
				if err := m.Store.SaveSpecimen(ctx, sp); err != nil {
					return err
				}
				if err := m.Store.SaveLink(ctx, store.Link{DocURL: doc.URL, Verbatim: verbatim, SpecNum: canonical}); err != nil {
					return err
				}
			}
		}
	}

	if len(parsedVerbatims) > 0 {
		blanked := snippet.Blank(page.Text, parsedVerbatims)
		for _, missed := range snippet.Missed(page.ID, blanked, m.Bank.Code, extractor.Window()) {
			m.Log.Warnf("mine: likely missed mention on %s/%s: %s", doc.URL, page.ID, missed.Text)
		}
	}

	return m.Store.Flush(ctx)
}
