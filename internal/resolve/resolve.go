// Package resolve implements the Resolution Engine (spec.md §4.6): the
// iterative matcher that scores each mention against the collections
// portal, propagates department context from sibling matches and
// document/journal topics, and finally from numeric runs of catalog
// numbers within a document, writing the results back as Links with a
// closed-vocabulary match-quality descriptor.
package resolve

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/adamancer/speciminer/internal/catnum"
	"github.com/adamancer/speciminer/internal/config"
	"github.com/adamancer/speciminer/internal/logging"
	"github.com/adamancer/speciminer/internal/metrics"
	"github.com/adamancer/speciminer/internal/portal"
	"github.com/adamancer/speciminer/internal/scorer"
	"github.com/adamancer/speciminer/internal/store"
)

// Match-quality vocabulary (spec.md §4.5), closed: every Link's
// match_quality is one of these, optionally with a " (forced <dept>)"
// qualifier added by matchOne and a " (matched ...)" parenthetical
// appended by Score.Summary.
const (
	QualityNoMatch      = "No match"
	QualitySnippet      = "Matched snippet"
	QualitySamePage     = "Matched same page"
	QualityTitle        = "Matched document title"
	QualityDocTopic     = "Matched document topic"
	QualityJournalTopic = "Matched journal topic"
	QualityRelated      = "Matched related specimens"
)

// maxRangeDiff bounds the gap, in catalog numbers, that still counts as
// a contiguous run of one department for Phase 4 range inference
// (spec.md §4.6's MAX_DIFF).
const maxRangeDiff = 1000

// Engine runs Phases 1-4 for one document at a time. It holds no mutable
// state beyond its collaborators, unlike the source's module-level
// singleton parser/matcher objects (Design Note, spec.md §9); a single
// Engine is safe to share across the document-level worker pool
// described in spec.md §5, as long as callers serialize the phases for a
// given document (Phase 1 precedes Phase 2 precedes Phase 3 precedes
// Phase 4; only Phase 4 requires numeric ordering within itself).
type Engine struct {
	Store       *store.Store
	Portal      portal.Client
	Departments config.Departments
	Strategy    DepartmentStrategy
	Log         *logging.Logger
}

// NewEngine builds an Engine with the exclusionary DepartmentStrategy.
func NewEngine(st *store.Store, client portal.Client, depts config.Departments, log *logging.Logger) *Engine {
	return &Engine{Store: st, Portal: client, Departments: depts, Strategy: NewDepartmentStrategy(), Log: log}
}

// Resolve runs every phase for one document in order, then the post-pass
// snippet/specimen counting of spec.md §4.6. It is the unit of work a
// caller should hand to a per-document worker.
func (e *Engine) Resolve(ctx context.Context, docURL string) error {
	doc, found, err := e.Store.GetDocument(docURL)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("resolve: unknown document %s", docURL)
	}

	if err := e.phase1(ctx, doc); err != nil {
		return err
	}
	if err := e.phase2(ctx, doc); err != nil {
		return err
	}
	if err := e.phase3(ctx, doc); err != nil {
		return err
	}
	if err := e.phase4(ctx, doc); err != nil {
		return err
	}
	if err := e.CountSnippets(ctx, docURL); err != nil {
		return err
	}
	if err := e.CountSpecimens(ctx, docURL); err != nil {
		return err
	}
	metrics.RecordDocument("match")
	return nil
}

// phase1 matches each unmatched Link individually against the portal,
// scoring first against its snippet text, then the snippets of other
// mentions on the same page, then its document's title,
// retrying with an alpha suffix stripped and then with any hyphenated
// suffix stripped entirely (spec.md §4.6 Phase 1).
func (e *Engine) phase1(ctx context.Context, doc store.Document) error {
	links, err := e.Store.LinksByDocument(doc.URL)
	if err != nil {
		return err
	}
	snippetText, err := e.snippetTextByVerbatim(doc.URL)
	if err != nil {
		return err
	}
	samePageText, err := e.samePageTextByVerbatim(doc.URL)
	if err != nil {
		return err
	}

	for _, link := range links {
		if link.MatchQuality != "" && link.MatchQuality != QualityNoMatch {
			continue
		}
		updated, err := e.matchOne(ctx, link, snippetText[link.Verbatim], samePageText[link.Verbatim], doc.Title, "", citationText(doc))
		if err != nil {
			e.Log.Warnf("resolve: phase1 %s %s: %v", doc.URL, link.Verbatim, err)
			continue
		}
		if err := e.Store.SaveLink(ctx, updated); err != nil {
			return err
		}
		e.Log.Match(doc.URL, link.Verbatim, updated.MatchQuality)
		metrics.RecordLink("phase1", generalQualityOf(updated.MatchQuality))
	}
	return e.Store.Flush(ctx)
}

// matchOne tries link.SpecNum and, failing that, two OCR/suffix-trimmed
// variants against the portal, scoring each in turn against snippetText,
// then samePageText, then title. forcedDept, when non-empty, is passed
// through as a hard filter (used by Phases 2-4) and recorded as a
// " (forced <dept>)" qualifier on the match quality.
func (e *Engine) matchOne(ctx context.Context, link store.Link, snippetText, samePageText, title, forcedDept, citationText string) (store.Link, error) {
	quality := func(general string) string {
		if forcedDept == "" {
			return general
		}
		return general + " (forced " + forcedDept + ")"
	}
	for _, variant := range specNumVariants(link.SpecNum) {
		refNum, err := catnum.ParseCanonical(variant)
		if err != nil {
			continue
		}
		recs, err := e.Portal.GetSpecimenByID(ctx, variant)
		if err != nil {
			return link, err
		}
		if len(recs) == 0 {
			continue
		}

		if snippetText != "" {
			if best := e.score(recs, refNum, snippetText, forcedDept); len(best) > 0 {
				return applyMatch(link, best, quality(QualitySnippet), citationText), nil
			}
		}
		if samePageText != "" {
			if best := e.score(recs, refNum, samePageText, forcedDept); len(best) > 0 {
				return applyMatch(link, best, quality(QualitySamePage), citationText), nil
			}
		}
		if title != "" {
			if best := e.score(recs, refNum, title, forcedDept); len(best) > 0 {
				return applyMatch(link, best, quality(QualityTitle), citationText), nil
			}
		}
		if snippetText == "" && samePageText == "" && title == "" && forcedDept != "" {
			if best := e.score(recs, refNum, "", forcedDept); len(best) > 0 {
				return applyMatch(link, best, quality(QualityRelated), citationText), nil
			}
		}
	}
	link.MatchQuality = QualityNoMatch
	link.EZIDs = nil
	return link, nil
}

func (e *Engine) score(recs []portal.CandidateRecord, refNum catnum.SpecNum, text, forcedDept string) []*scorer.Result {
	results := make([]*scorer.Result, 0, len(recs))
	for _, rec := range recs {
		results = append(results, scorer.Evaluate(rec, scorer.Evidence{RefNum: refNum, Text: text, ForcedDept: forcedDept}))
	}
	return scorer.Best(results)
}

var trailingAlpha = regexp.MustCompile(`[a-zA-Z]$`)

// citationText renders a document's author/year citation text, used by
// hasSimilarReference to detect when a candidate's associatedReferences
// cites the same work this mention came from (match_database.py's
// save_link has_similar_ref heuristic).
func citationText(doc store.Document) string {
	if doc.Year == 0 {
		return strings.Join(doc.Authors, " ")
	}
	return fmt.Sprintf("%s %d", strings.Join(doc.Authors, " "), doc.Year)
}

// specNumVariants yields specNum, then specNum with a single trailing
// alpha character stripped, then specNum with everything from the first
// hyphen onward stripped (spec.md §4.6 Phase 1's two documented
// fallbacks), skipping duplicates.
func specNumVariants(specNum string) []string {
	variants := []string{specNum}
	trimmed := trailingAlpha.ReplaceAllString(specNum, "")
	if trimmed != specNum {
		variants = append(variants, trimmed)
	}
	split := strings.SplitN(specNum, "-", 2)[0]
	if split != specNum && split != trimmed {
		variants = append(variants, split)
	}
	return variants
}

func applyMatch(link store.Link, best []*scorer.Result, generalQuality, citationText string) store.Link {
	ezids := make([]string, 0, len(best))
	for _, r := range best {
		if r.Record.OccurrenceID != "" {
			ezids = append(ezids, r.Record.OccurrenceID)
		}
	}
	sort.Strings(ezids)
	link.EZIDs = ezids
	link.MatchQuality = best[0].Score.Summary(generalQuality)
	link.Department = best[0].Record.CollectionCode
	for _, r := range best {
		if hasSimilarReference(strings.Join(r.Record.AssociatedReferences, " | "), citationText) {
			link.HasSimilarRef = true
			break
		}
	}
	return link
}

// snippetTextByVerbatim concatenates every snippet's text for each
// verbatim mention in a document with " | ", the same join the original
// match_database.py used to build per-mention context from the rows
// sharing a spec_num.
func (e *Engine) snippetTextByVerbatim(docURL string) (map[string]string, error) {
	specimens, err := e.Store.SpecimensByDocument(docURL)
	if err != nil {
		return nil, err
	}
	out := map[string][]string{}
	for _, sp := range specimens {
		row, found, err := e.Store.GetSnippetByID(sp.SnippetID)
		if err != nil {
			return nil, err
		}
		if found {
			out[sp.Verbatim] = append(out[sp.Verbatim], row.Text)
		}
	}
	joined := make(map[string]string, len(out))
	for verbatim, texts := range out {
		joined[verbatim] = strings.Join(texts, " | ")
	}
	return joined, nil
}

// samePageTextByVerbatim concatenates, for each verbatim mention, the
// snippet text of every *other* mention mined from a page it also
// appears on — the same-page context spec.md §4.6 Phase 1's "Matched
// same page" step scores against. The original match_spec_num instead
// matched against a BHL taxonomic name index keyed by page
// (postmine_extend_data.py's get_taxa_on_pages); since the BHL adapter
// is out of scope here (spec.md §1), this uses the document's own
// co-located mentions as the nearest available same-page signal.
func (e *Engine) samePageTextByVerbatim(docURL string) (map[string]string, error) {
	specimens, err := e.Store.SpecimensByDocument(docURL)
	if err != nil {
		return nil, err
	}

	type mention struct {
		verbatim string
		text     string
	}
	pagesByVerbatim := map[string]map[string]bool{}
	mentionsByPage := map[string][]mention{}

	for _, sp := range specimens {
		row, found, err := e.Store.GetSnippetByID(sp.SnippetID)
		if err != nil {
			return nil, err
		}
		if !found {
			continue
		}
		if pagesByVerbatim[sp.Verbatim] == nil {
			pagesByVerbatim[sp.Verbatim] = map[string]bool{}
		}
		pagesByVerbatim[sp.Verbatim][row.PageID] = true
		mentionsByPage[row.PageID] = append(mentionsByPage[row.PageID], mention{verbatim: sp.Verbatim, text: row.Text})
	}

	out := make(map[string]string, len(pagesByVerbatim))
	for verbatim, pages := range pagesByVerbatim {
		var parts []string
		for page := range pages {
			for _, m := range mentionsByPage[page] {
				if m.verbatim == verbatim {
					continue
				}
				parts = append(parts, m.text)
			}
		}
		out[verbatim] = strings.Join(parts, " | ")
	}
	return out, nil
}

// matchQualityPrefix reports whether quality begins with one of the
// given vocabulary terms, ignoring any "(forced ...)" qualifier matchOne
// added or "(matched ...)" parenthetical Summary appended.
func matchQualityPrefix(quality string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(quality, p) {
			return true
		}
	}
	return false
}

// generalQualityOf strips matchOne's "(forced ...)" qualifier and
// Score.Summary's "(matched ...)" parenthetical,
// collapsing a Link's match_quality back to its closed-vocabulary
// general clause for the low-cardinality metrics.LinksResolved label.
func generalQualityOf(quality string) string {
	for _, q := range []string{QualityNoMatch, QualitySnippet, QualitySamePage, QualityTitle, QualityDocTopic, QualityJournalTopic, QualityRelated} {
		if strings.HasPrefix(quality, q) {
			return q
		}
	}
	return QualityNoMatch
}

// phase2 tallies the department of every sibling Link in the document
// that matched on its own merit (snippet/same-page/title), and, when
// the tally is lopsided enough per Strategy, clears any conflicting
// matches and retries every still-unmatched Link with that department
// forced (spec.md §4.6 Phase 2).
func (e *Engine) phase2(ctx context.Context, doc store.Document) error {
	links, err := e.Store.LinksByDocument(doc.URL)
	if err != nil {
		return err
	}

	tally := map[string]int{}
	for _, l := range links {
		if l.Matched() && matchQualityPrefix(l.MatchQuality, QualitySnippet, QualitySamePage, QualityTitle) {
			tally[l.Department]++
		}
	}
	dept, ok := e.Strategy.Guess(tally)
	if !ok {
		return nil
	}
	forced := dept + "*"

	snippetText, err := e.snippetTextByVerbatim(doc.URL)
	if err != nil {
		return err
	}
	samePageText, err := e.samePageTextByVerbatim(doc.URL)
	if err != nil {
		return err
	}

	for _, link := range links {
		if link.Matched() && link.Department != "" && link.Department != dept {
			link.EZIDs = nil
			link.MatchQuality = QualityNoMatch
			link.Department = ""
			if err := e.Store.SaveLink(ctx, link); err != nil {
				return err
			}
			continue
		}
		if link.Matched() {
			continue
		}
		updated, err := e.matchOne(ctx, link, snippetText[link.Verbatim], samePageText[link.Verbatim], "", forced, citationText(doc))
		if err != nil {
			e.Log.Warnf("resolve: phase2 %s %s: %v", doc.URL, link.Verbatim, err)
			continue
		}
		if updated.Matched() {
			updated.Department = forced
		}
		if err := e.Store.SaveLink(ctx, updated); err != nil {
			return err
		}
		e.Log.Match(doc.URL, link.Verbatim, updated.MatchQuality)
		metrics.RecordLink("phase2", generalQualityOf(updated.MatchQuality))
	}
	return e.Store.Flush(ctx)
}

// phase3 retries every Link still unmatched after Phase 2, forcing the
// document's own topic and, failing that, its journal's topic, as a hard
// department filter (spec.md §4.6 Phase 3).
func (e *Engine) phase3(ctx context.Context, doc store.Document) error {
	topicQuality := QualityDocTopic
	if !doc.HasTopic() {
		journal, found, err := e.Store.GetJournal(doc.Publication)
		if err != nil {
			return err
		}
		if found && journal.Topic != "" {
			doc.Topic = journal.Topic
			topicQuality = QualityJournalTopic
		}
	}
	if doc.Topic == "" {
		return nil
	}

	links, err := e.Store.LinksByDocument(doc.URL)
	if err != nil {
		return err
	}
	snippetText, err := e.snippetTextByVerbatim(doc.URL)
	if err != nil {
		return err
	}
	samePageText, err := e.samePageTextByVerbatim(doc.URL)
	if err != nil {
		return err
	}
	forced := strings.TrimSuffix(doc.Topic, "*") + "*"

	for _, link := range links {
		if link.Matched() {
			continue
		}
		updated, err := e.matchOne(ctx, link, snippetText[link.Verbatim], samePageText[link.Verbatim], "", forced, citationText(doc))
		if err != nil {
			e.Log.Warnf("resolve: phase3 %s %s: %v", doc.URL, link.Verbatim, err)
			continue
		}
		if updated.Matched() {
			updated.Department = forced
			updated.MatchQuality = topicQuality
		}
		if err := e.Store.SaveLink(ctx, updated); err != nil {
			return err
		}
		e.Log.Match(doc.URL, link.Verbatim, updated.MatchQuality)
		metrics.RecordLink("phase3", generalQualityOf(updated.MatchQuality))
	}
	return e.Store.Flush(ctx)
}

// run is one maximal stretch of matched Links, sorted by catalog
// number, whose consecutive numbers differ by no more than
// maxRangeDiff and which share a department (spec.md §4.6 Phase 4).
type run struct {
	department string
	low, high  int
}

func (r run) contains(number int) bool {
	return number >= r.low-maxRangeDiff && number <= r.high+maxRangeDiff
}

// phase4 groups the document's matched Links into contiguous numeric
// runs per department and retries every still-unmatched Link whose
// number falls within maxRangeDiff of a run, forcing that run's
// department (spec.md §4.6 Phase 4).
func (e *Engine) phase4(ctx context.Context, doc store.Document) error {
	links, err := e.Store.LinksByDocument(doc.URL)
	if err != nil {
		return err
	}

	type numbered struct {
		link   store.Link
		prefix string
		number int
	}
	var matched []numbered
	var unmatched []numbered
	for _, l := range links {
		prefix, number, ok := specNumPrefixedNumber(l.SpecNum)
		if !ok {
			continue
		}
		n := numbered{link: l, prefix: prefix, number: number}
		if l.Matched() {
			matched = append(matched, n)
		} else {
			unmatched = append(unmatched, n)
		}
	}
	if len(matched) == 0 || len(unmatched) == 0 {
		return nil
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].prefix != matched[j].prefix {
			return matched[i].prefix < matched[j].prefix
		}
		return matched[i].number < matched[j].number
	})

	var runs []run
	for _, m := range matched {
		dept := strings.TrimSuffix(m.link.Department, "*")
		if dept == "" {
			continue
		}
		if n := len(runs); n > 0 && runs[n-1].department == dept && m.number-runs[n-1].high <= maxRangeDiff {
			if m.number > runs[n-1].high {
				runs[n-1].high = m.number
			}
			continue
		}
		runs = append(runs, run{department: dept, low: m.number, high: m.number})
	}
	if len(runs) == 0 {
		return nil
	}

	snippetText, err := e.snippetTextByVerbatim(doc.URL)
	if err != nil {
		return err
	}
	samePageText, err := e.samePageTextByVerbatim(doc.URL)
	if err != nil {
		return err
	}

	for _, u := range unmatched {
		var best *run
		for i := range runs {
			r := runs[i]
			if r.contains(u.number) {
				if best == nil {
					best = &r
				}
			}
		}
		if best == nil {
			continue
		}
		forced := best.department + "*"
		updated, err := e.matchOne(ctx, u.link, snippetText[u.link.Verbatim], samePageText[u.link.Verbatim], "", forced, citationText(doc))
		if err != nil {
			e.Log.Warnf("resolve: phase4 %s %s: %v", doc.URL, u.link.Verbatim, err)
			continue
		}
		if updated.Matched() {
			updated.Department = forced
			updated.MatchQuality = QualityRelated
		}
		if err := e.Store.SaveLink(ctx, updated); err != nil {
			return err
		}
		e.Log.Match(doc.URL, u.link.Verbatim, updated.MatchQuality)
		metrics.RecordLink("phase4", generalQualityOf(updated.MatchQuality))
	}
	return e.Store.Flush(ctx)
}

var surnameYear = regexp.MustCompile(`([A-Z][a-z]+).{0,40}?(1[7-9][0-9]{2}|20[0-2][0-9])`)

// hasSimilarReference reports whether any of associatedReferences shares
// a surname-and-year pair with citationText, the proxy match_database.py
// used in save_link() to set has_similar_ref without a full citation
// parser.
func hasSimilarReference(associatedReferences, citationText string) bool {
	refs := surnameYear.FindAllStringSubmatch(associatedReferences, -1)
	cites := surnameYear.FindAllStringSubmatch(citationText, -1)
	for _, r := range refs {
		for _, c := range cites {
			if strings.EqualFold(r[1], c[1]) && r[2] == c[2] {
				return true
			}
		}
	}
	return false
}

// CountSnippets recomputes each Link's num_snippets as the number of
// distinct snippets recorded for its verbatim mention in the document
// (spec.md §4.6's post-pass), persisting the update.
func (e *Engine) CountSnippets(ctx context.Context, docURL string) error {
	specimens, err := e.Store.SpecimensByDocument(docURL)
	if err != nil {
		return err
	}
	counts := map[string]map[string]bool{}
	for _, sp := range specimens {
		if counts[sp.Verbatim] == nil {
			counts[sp.Verbatim] = map[string]bool{}
		}
		counts[sp.Verbatim][sp.SnippetID] = true
	}

	links, err := e.Store.LinksByDocument(docURL)
	if err != nil {
		return err
	}
	for _, l := range links {
		n := len(counts[l.Verbatim])
		if l.NumSnippets == n {
			continue
		}
		l.NumSnippets = n
		if err := e.Store.SaveLink(ctx, l); err != nil {
			return err
		}
	}
	return e.Store.Flush(ctx)
}

// CountSpecimens recomputes a document's num_specimens as the count of
// its Links that resolved to at least one occurrence ID (spec.md §4.6's
// summarize_specimens), persisting the update.
func (e *Engine) CountSpecimens(ctx context.Context, docURL string) error {
	links, err := e.Store.LinksByDocument(docURL)
	if err != nil {
		return err
	}
	doc, found, err := e.Store.GetDocument(docURL)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("resolve: unknown document %s", docURL)
	}
	n := 0
	for _, l := range links {
		if l.Matched() {
			n++
		}
	}
	if doc.NumSpecimens == n {
		return nil
	}
	doc.NumSpecimens = n
	return e.Store.SaveDocument(ctx, doc)
}
