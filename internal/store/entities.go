package store

import (
	"strings"

	"github.com/adamancer/speciminer/internal/corpus"
)

// Specimen is a ParsedMention made durable (spec.md §3): the canonical
// SpecNum a verbatim mention expanded to, owned by exactly one Snippet.
type Specimen struct {
	ID        string `json:"id"`
	SnippetID string `json:"snippet_id"`
	DocURL    string `json:"doc_url"`
	Verbatim  string `json:"verbatim"`
	SpecNum   string `json:"spec_num"`
}

// SnippetRow is the persisted form of a Snippet (spec.md §3): one
// highlighted context window for one verbatim match on one page of one
// document. Its uniqueness key is (DocURL, PageID, Text).
type SnippetRow struct {
	ID     string `json:"id"`
	DocURL string `json:"doc_url"`
	PageID string `json:"page_id"`
	Text   string `json:"text"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
}

// Link is the resolution engine's output row (spec.md §3): a
// (document, verbatim, canonical spec num) triple mapped to zero or more
// portal occurrence IDs, a match-quality statement, a department, the
// has_similar_ref flag, and a snippet count. Uniqueness key is
// (DocURL, Verbatim, SpecNum).
type Link struct {
	ID            string   `json:"id"`
	DocURL        string   `json:"doc_url"`
	Verbatim      string   `json:"verbatim"`
	SpecNum       string   `json:"spec_num"`
	EZIDs         []string `json:"ezids"`
	MatchQuality  string   `json:"match_quality"`
	Department    string   `json:"department"`
	HasSimilarRef bool     `json:"has_similar_ref"`
	NumSnippets   int      `json:"num_snippets"`
}

// EZID renders the pipe-separated, sorted ezid list spec.md §3 requires,
// or "" when unmatched.
func (l Link) EZID() string {
	if len(l.EZIDs) == 0 {
		return ""
	}
	return strings.Join(l.EZIDs, " | ")
}

// Matched reports whether this link resolved to at least one portal
// record.
func (l Link) Matched() bool {
	return len(l.EZIDs) > 0
}

// DarwinCoreCache is the cached DarwinCore subset of a matched
// CandidateRecord (spec.md §3: "not persisted except a cached DarwinCore
// subset").
type DarwinCoreCache struct {
	OccurrenceID         string `json:"occurrence_id"`
	HigherClassification string `json:"higher_classification"`
	ScientificName       string `json:"scientific_name"`
	TypeStatus           string `json:"type_status"`
	HigherGeography      string `json:"higher_geography"`
	VerbatimLocality     string `json:"verbatim_locality"`
}

// Taxon is the cached result of the external taxonomy resolver (spec.md
// §1: "treated as an opaque classifier returning a department code for a
// title"), keyed by the name it was looked up with.
type Taxon struct {
	Name       string `json:"name"`
	Department string `json:"department"`
}

// Document and Journal reuse corpus's types directly; the store only
// adds the persistence key derived from their natural identifiers
// (URL, Title), per the Design Note against cyclic object references
// (spec.md §9).
type Document = corpus.Document
type Journal = corpus.Journal
