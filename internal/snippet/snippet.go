// Package snippet implements the Snippet Extractor (spec.md §4.4): it
// scans a page of text for catalog-number mentions and emits every
// candidate substring together with its character offsets and a
// highlighted context window.
package snippet

import (
	"regexp"
	"strings"

	"github.com/adamancer/speciminer/internal/regexbank"
)

// DefaultWindow is the default number of characters of context kept on
// each side of a match (spec.md §4.4, "default 50-100 characters").
const DefaultWindow = 75

// Snippet is a context window around one verbatim match: the display
// text (truncation-marked and **highlighted**), and the byte offsets of
// the match within the page it came from.
type Snippet struct {
	PageID string
	Text   string
	Start  int
	End    int
}

// Extractor runs the mask pattern over page text and produces Snippets,
// plus a second "likely missed" pass over whatever remains once parsed
// verbatims are blanked out (spec.md §4.4 step 4).
type Extractor struct {
	bank   *regexbank.Bank
	window int
}

// NewExtractor builds an Extractor with the given context window width.
// A window <= 0 uses DefaultWindow.
func NewExtractor(bank *regexbank.Bank, window int) *Extractor {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Extractor{bank: bank, window: window}
}

// Window reports the context window width this Extractor was built with,
// so callers can reuse it for a secondary pass (e.g. Missed).
func (e *Extractor) Window() int { return e.window }

// Extract scans pageText with the mask pattern and returns a mapping of
// verbatim match text to every Snippet it produced on this page,
// preserving first-seen order of the verbatim keys.
func (e *Extractor) Extract(pageID, pageText string) (map[string][]Snippet, []string) {
	matches := e.bank.Mask.FindAllStringIndex(pageText, -1)
	out := make(map[string][]Snippet, len(matches))
	var order []string
	for _, loc := range matches {
		start, end := loc[0], loc[1]
		verbatim := pageText[start:end]
		snip := e.window_(pageID, pageText, start, end)
		if _, seen := out[verbatim]; !seen {
			order = append(order, verbatim)
		}
		out[verbatim] = append(out[verbatim], snip)
	}
	return out, order
}

func (e *Extractor) window_(pageID, pageText string, start, end int) Snippet {
	lo := start - e.window
	prefixTrunc := lo > 0
	if lo < 0 {
		lo = 0
	}
	hi := end + e.window
	suffixTrunc := hi < len(pageText)
	if hi > len(pageText) {
		hi = len(pageText)
	}

	var b strings.Builder
	if prefixTrunc {
		b.WriteString("...")
	}
	b.WriteString(pageText[lo:start])
	b.WriteString("**")
	b.WriteString(pageText[start:end])
	b.WriteString("**")
	b.WriteString(pageText[end:hi])
	if suffixTrunc {
		b.WriteString("...")
	}

	return Snippet{PageID: pageID, Text: b.String(), Start: start, End: end}
}

// Blank replaces every occurrence of each verbatim in parsed with blank
// characters of equal length, in preparation for the second "likely
// missed" pass (spec.md §4.4 step 4). It operates on byte length, which
// matches the byte offsets Extract produces.
func Blank(pageText string, parsed []string) string {
	out := pageText
	for _, v := range parsed {
		if v == "" {
			continue
		}
		blank := strings.Repeat(" ", len(v))
		out = strings.ReplaceAll(out, v, blank)
	}
	return out
}

// Missed scans blanked page text with a secondary, looser pattern (plain
// museum-code occurrences, with no requirement that a full catalog
// number follow) to collect snippets around mentions that survived the
// parser's blanking because nothing in them could be parsed into a
// SpecNum. These are logged as "likely missed" candidates for manual
// review rather than persisted as Links.
func Missed(pageID, blankedText string, codePattern *regexp.Regexp, window int) []Snippet {
	if window <= 0 {
		window = DefaultWindow
	}
	e := &Extractor{window: window}
	var out []Snippet
	for _, loc := range codePattern.FindAllStringIndex(blankedText, -1) {
		out = append(out, e.window_(pageID, blankedText, loc[0], loc[1]))
	}
	return out
}
