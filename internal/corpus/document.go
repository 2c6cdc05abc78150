// Package corpus holds the Document and Journal entities (spec.md §3) and
// the source-corpus adapter contract (spec.md §6) that document/page
// fetchers for the two external digital-library APIs and the local
// document export implement. The core treats every adapter as an opaque
// iterator; no adapter implementation lives in this package (the local
// export adapter is internal/corpus/localfs).
package corpus

import "context"

// Document is a mined publication: a stable identifier, bibliographic
// metadata, the source corpus it was mined from, and a topic assigned
// either directly or inherited from its Journal (spec.md §3). Topic is
// empty until the external classifier (out of scope, spec.md §1) assigns
// one; a trailing "*" marks an inferred, rather than confirmed,
// assignment (Glossary).
type Document struct {
	URL         string
	Kind        string
	Authors     []string
	Title       string
	Publication string
	Year        int
	Volume      string
	Number      string
	Pages       string
	DOI         string
	Source      string
	Topic       string
	NumSpecimens int
}

// HasTopic reports whether the document carries an assigned topic,
// confirmed or inferred.
func (d Document) HasTopic() bool {
	return d.Topic != ""
}

// Journal is keyed by a case-insensitive title and carries a topic that
// backfills documents naming it (spec.md §3). Journal and Document
// reference each other only by title/URL string, never by pointer, to
// avoid the cyclic document<->journal<->document reference the source's
// duck-typed objects permitted (Design Note, spec.md §9).
type Journal struct {
	Title string
	Topic string
}

// Page is one page of cleaned text from a source document, paired with a
// stable page identifier used for snippet "same page" evidence (spec.md
// §4.5) and for Snippet's (document_id, page_id, snippet_text) uniqueness
// key (spec.md §3).
type Page struct {
	ID   string
	Text string
}

// Adapter is the source-corpus contract (spec.md §6): given a query, it
// yields document metadata paired with an iterable of pages. Adapters
// call Pages lazily so that a corpus with thousands of documents need not
// hold every page in memory at once; Pages returns io.EOF-free channel
// closure to signal completion.
type Adapter interface {
	// Documents streams document metadata matching query. The returned
	// channel is closed when the corpus is exhausted or ctx is
	// cancelled.
	Documents(ctx context.Context, query string) (<-chan Document, <-chan error)

	// Pages streams the pages of doc. The returned channel is closed
	// when the document is exhausted or ctx is cancelled.
	Pages(ctx context.Context, doc Document) (<-chan Page, <-chan error)
}
