package scorer

import (
	"strings"

	"github.com/surgebase/porter2"
)

// MinKeywordLength is the shortest token considered a keyword (spec.md
// §4.5): lowercased, non-alphabetic characters stripped, length >= 5.
const MinKeywordLength = 5

// blacklist is the stopword/domain-generic term list from the original's
// get_keywords (miners/link.py), extended with a handful of directional
// and geological filler words that are too generic to be diagnostic.
var blacklist = map[string]bool{}

func init() {
	for _, w := range []string{
		"above", "along", "animalia", "beach", "boundary", "coast",
		"collection", "confluence", "county", "creek", "district",
		"early", "eastern", "family", "formation", "harbor", "indet",
		"island", "late", "locality", "lower", "member", "middle",
		"mountain", "national", "north", "northern", "northeast",
		"northeastern", "northwest", "northwestern", "genus", "group",
		"present", "province", "ridge", "river", "slide", "slope",
		"south", "southern", "southeast", "southeastern", "southwest",
		"southwestern", "species", "specimen", "states", "united",
		"unknown", "upper", "valley", "western",
		"blue", "green", "red", "yellow", "white", "black",
		// common English stopwords the original pulled from nltk's corpus
		"about", "after", "again", "because", "before", "being",
		"between", "could", "doing", "during", "further", "having",
		"into", "itself", "myself", "other", "ought", "ourselves",
		"should", "their", "theirs", "themselves", "there", "these",
		"those", "through", "under", "until", "where", "which", "while",
		"would", "yours", "yourself", "yourselves",
	} {
		blacklist[w] = true
	}
}

// KeywordOptions configures Keywords. Endings lists declared suffixes to
// strip during stemming (e.g. "idae", "us", "s", "a", "e"); Replacements
// is an ordered list of literal substring substitutions applied after
// stemming (e.g. "aeo" -> "eo"); Aggressive additionally runs
// github.com/surgebase/porter2's full Porter2 stemmer, a stronger mode
// than the declared-ending stemmer spec.md §4.5 describes, useful for the
// noisier vernacular-name and free-text evidence sources.
type KeywordOptions struct {
	MinLen       int
	Endings      []string
	Replacements [][2]string
	Aggressive   bool
}

// Keywords extracts the lowercased, blacklist-filtered, optionally
// stemmed token set from text, per spec.md §4.5's keyword-extraction
// shared utility.
func Keywords(text string, opts KeywordOptions) map[string]bool {
	minLen := opts.MinLen
	if minLen <= 0 {
		minLen = MinKeywordLength
	}

	out := map[string]bool{}
	for _, raw := range strings.Fields(text) {
		word := strings.ToLower(strings.Trim(raw, ".:;,-!?()"))
		if !isAllAlphaASCII(word) || len(word) < minLen || blacklist[word] {
			continue
		}
		for _, ending := range opts.Endings {
			if strings.HasSuffix(word, ending) && len(word) > len(ending) {
				word = word[:len(word)-len(ending)]
				break
			}
		}
		for _, pair := range opts.Replacements {
			word = strings.ReplaceAll(word, pair[0], pair[1])
		}
		if opts.Aggressive {
			word = porter2.Stem(word)
		}
		if len(word) > 2 {
			out[word] = true
		}
	}
	return out
}

func isAllAlphaASCII(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')) {
			return false
		}
	}
	return true
}

// Overlap returns the set intersection of a and b.
func Overlap(a, b map[string]bool) map[string]bool {
	out := map[string]bool{}
	small, big := a, b
	if len(b) < len(a) {
		small, big = b, a
	}
	for k := range small {
		if big[k] {
			out[k] = true
		}
	}
	return out
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
