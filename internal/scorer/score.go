// Package scorer implements the Context Scorer (spec.md §4.5): given a
// candidate portal record and a bag of contextual evidence, it produces
// a numeric Score with attributed sub-components, and a closed-vocabulary
// match-quality summary string.
package scorer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/adamancer/speciminer/internal/catnum"
	"github.com/adamancer/speciminer/internal/portal"
)

// taxonomyEndings and taxonomyReplacements are the declared-ending
// stemmer and replacement pairs spec.md §4.5 names for
// higherClassification/vernacularName/scientificName matching.
var taxonomyEndings = []string{"idae", "ian", "ide", "ine", "ia", "us", "s", "a", "e"}
var taxonomyReplacements = [][2]string{{"aeo", "eo"}, {"usc", "usk"}}

// Score accumulates signed contributions from each evidence type,
// grounded on miners/link.py's Score class. Points() is the sum of every
// contribution; a catalog-number mismatch (-100) or a forced-department
// mismatch (-100) is an effective exclusion rather than a real penalty.
type Score struct {
	components map[string]float64
	total      float64
}

// NewScore returns a zero Score.
func NewScore() *Score {
	return &Score{components: map[string]float64{}}
}

// Points returns the running total.
func (s *Score) Points() float64 { return s.total }

// Component returns the contribution recorded under key, or 0 if none
// was recorded.
func (s *Score) Component(key string) float64 {
	return s.components[key]
}

func (s *Score) add(key string, val float64) {
	s.components[key] += val
	s.total += val
}

// Summary renders the closed-vocabulary match-quality statement (spec.md
// §4.5): a general clause plus an optional parenthetical enumerating
// which sub-components contributed, grounded on miners/link.py's
// Score.summary.
func (s *Score) Summary(general string) string {
	var matched []string
	for _, key := range []string{"higherClassification", "vernacularName", "scientificName/catalogNumber"} {
		if s.components[key] > 0 {
			matched = append(matched, "taxa")
			break
		}
	}
	if s.components["group/formation/member"] > 0 {
		matched = append(matched, "stratigraphy")
	}
	for _, key := range []string{"country", "stateProvince"} {
		if s.components[key] > 0 {
			matched = append(matched, "country/state")
			break
		}
	}
	if s.components["municipality/island/verbatimLocality"] > 0 {
		matched = append(matched, "locality")
	}
	if s.components["collectionCode"] > 0 {
		matched = append(matched, "collection")
	}
	for _, key := range []string{"prefix", "suffix"} {
		if s.components[key] > 0 {
			matched = append(matched, "catalog")
			break
		}
	}
	if len(matched) == 0 {
		return general
	}
	return fmt.Sprintf("%s (matched %s)", general, strings.Join(matched, ", "))
}

// Evidence bundles the contextual inputs the scorer draws on for a
// single candidate evaluation (spec.md §4.5): the reference specimen
// number being matched, free text from the snippet/title/related
// specimens, and an optional forced department (from Phase 2/3/4 of the
// resolution engine).
type Evidence struct {
	RefNum SpecNum

	// Text is arbitrary free text keywords are extracted from: snippet
	// text, document title, same-page taxa, or serialized related
	// specimens (spec.md §4.5's "Matched snippet"/"same page"/"document
	// title"/"related specimens" sources).
	Text string

	// ForcedDept is a department (optionally trailing "*" for
	// "inferred") the caller wants enforced as a hard filter; empty
	// means no department filter.
	ForcedDept string
}

// SpecNum is an alias of catnum.SpecNum, so a parsed catalog number can be
// passed straight into Evidence.RefNum.
type SpecNum = catnum.SpecNum

// Result pairs a candidate record with its computed Score.
type Result struct {
	Record portal.CandidateRecord
	Score  *Score
}

// Evaluate scores one candidate record against the given evidence,
// applying the hard filters first (catalog-number reconciliation,
// forced-department equality) and then the keyword-based contributions
// (spec.md §4.5's field-set table).
func Evaluate(rec portal.CandidateRecord, ev Evidence) *Result {
	score := NewScore()

	candNum, hasCandNum := candidateSpecNum(rec, ev.RefNum)
	if hasCandNum {
		if ev.RefNum.Prefix == "" && len(candNum.Prefix) == 1 {
			score.add("prefix", -1)
		}
		if candNum.Prefix == "SD" && candNum.Prefix != ev.RefNum.Prefix {
			score.add("prefix", -1)
		}
		if candNum.Number != ev.RefNum.Number {
			score.add("number", -100)
		}
		if score.Points() >= 0 && ev.RefNum.Prefix != "" && candNum.Prefix == ev.RefNum.Prefix {
			score.add("prefix", 1)
		}
		if score.Points() >= 0 && ev.RefNum.Suffix != "" && candNum.Suffix == ev.RefNum.Suffix {
			score.add("suffix", 1)
		}
	}

	if ev.ForcedDept != "" {
		dept := strings.TrimSuffix(ev.ForcedDept, "*")
		if rec.CollectionCode == dept {
			score.add("collectionCode", 1)
			if strings.HasSuffix(ev.ForcedDept, "*") {
				score.add("collectionCode", 0.5)
			}
		} else {
			score.add("collectionCode", -100)
		}
	}

	if ev.Text != "" {
		scoreKeywordFields(score, rec, ev.Text)
	}

	return &Result{Record: rec, Score: score}
}

func scoreKeywordFields(score *Score, rec portal.CandidateRecord, text string) {
	if rec.CollectionCode != "Mineral Sciences" {
		scoreField(score, []string{"higherClassification"}, rec.HigherClassification, text, 5, false, KeywordOptions{Endings: taxonomyEndings, Replacements: taxonomyReplacements})
		scoreField(score, []string{"vernacularName"}, rec.VernacularName, text, 3, true, KeywordOptions{})
	} else {
		combined := rec.ScientificName + " " + rec.CatalogNumber
		scoreField(score, []string{"scientificName/catalogNumber"}, combined, text, 3, true, KeywordOptions{Endings: []string{"ic", "y"}})
	}
	if rec.CollectionCode == "Mineral Sciences" || rec.CollectionCode == "Paleobiology" {
		combined := strings.Join([]string{rec.Group, rec.Formation, rec.Member}, " ")
		scoreField(score, []string{"group/formation/member"}, combined, text, 3, false, KeywordOptions{})
	}
	scoreField(score, []string{"country"}, rec.Country, text, 0.51, true, KeywordOptions{})
	scoreField(score, []string{"stateProvince"}, rec.StateProvince, text, 0.51, true, KeywordOptions{})
	combined := strings.Join([]string{rec.Municipality, rec.Island, rec.VerbatimLocality}, " ")
	scoreField(score, []string{"municipality/island/verbatimLocality"}, combined, text, 1, false, KeywordOptions{})
}

// scoreField computes one row of spec.md §4.5's field-set table. Both
// the candidate's named field(s) and the free-text evidence are run
// through the same stemming options before being intersected, so a
// declared-ending stem (e.g. taxonomyEndings for higherClassification)
// doesn't spuriously fail to match its own unstemmed form in the
// evidence text. Contribution is multiplier * matchCount (any-of) or
// multiplier (if every field keyword matched, for all-of fields).
func scoreField(score *Score, keys []string, fieldText, evidenceText string, multiplier float64, matchAll bool, kwOpts KeywordOptions) {
	keywords := Keywords(fieldText, kwOpts)
	key := strings.Join(keys, "/")
	if len(keywords) == 0 {
		score.add(key, 0)
		return
	}
	refwords := Keywords(evidenceText, kwOpts)
	match := Overlap(keywords, refwords)
	if len(match) == 0 {
		score.add(key, 0)
		return
	}
	if matchAll {
		if len(match) == len(keywords) {
			score.add(key, multiplier)
		} else {
			score.add(key, 0)
		}
		return
	}
	score.add(key, multiplier*float64(len(match)))
}

// candidateSpecNum derives a comparable SpecNum from the candidate's
// catalogNumber (falling back to recordNumber, the entomology type-number
// hack from miners/link.py's filter_records).
func candidateSpecNum(rec portal.CandidateRecord, ref SpecNum) (SpecNum, bool) {
	if rec.CatalogNumber != "" {
		parts := strings.Split(rec.CatalogNumber, "|")
		last := strings.TrimSpace(strings.ToUpper(parts[len(parts)-1]))
		if n, err := catnum.ParseCanonical(withCode(last, ref.Code)); err == nil {
			return n, true
		}
		if n, ok := parseBareNumber(last); ok {
			return SpecNum{Code: ref.Code, Number: n}, true
		}
	}
	for _, recNum := range strings.Split(rec.RecordNumber, "|") {
		recNum = strings.TrimSpace(recNum)
		if n, ok := parseBareNumber(recNum); ok && fmt.Sprint(n) == fmt.Sprint(ref.Number) {
			return SpecNum{Code: ref.Code, Number: n}, true
		}
	}
	return SpecNum{}, false
}

func withCode(s, code string) string {
	if strings.HasPrefix(strings.ToUpper(s), strings.ToUpper(code)) {
		return s
	}
	return code + " " + s
}

func parseBareNumber(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
		n = n*10 + int(s[i]-'0')
	}
	return n, true
}

// Best filters results down to those scoring > 1, then to the subset
// sharing the maximum score among those (spec.md §4.5): if more than one
// remains, all are returned, leaving the caller to treat the tie as
// ambiguous.
func Best(results []*Result) []*Result {
	var candidates []*Result
	for _, r := range results {
		if r.Score.Points() > 1 {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	max := candidates[0].Score.Points()
	for _, r := range candidates[1:] {
		if r.Score.Points() > max {
			max = r.Score.Points()
		}
	}
	var out []*Result
	for _, r := range candidates {
		if r.Score.Points() == max {
			out = append(out, r)
		}
	}
	return out
}

// sortedMatchWords returns the shared keywords between a and b in sorted
// order.
func sortedMatchWords(a, b map[string]bool) []string {
	m := Overlap(a, b)
	out := sortedKeys(m)
	sort.Strings(out)
	return out
}
