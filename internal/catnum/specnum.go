// Package catnum implements the catalog-number parser and its supporting
// range/list cluster routines (spec.md §4.2–§4.3): turning a free-text
// mention of a museum specimen into zero or more canonical SpecNum values.
package catnum

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// SpecNum is the canonical specimen identifier: a tuple of museum code,
// optional collection prefix, a positive catalog number, and an optional
// suffix (spec.md §3). Prefix and Suffix are allowed to be empty; Number
// must be >= 1.
type SpecNum struct {
	Code   string
	Prefix string
	Number int
	Suffix string
}

// singleAlphaSuffix reports whether suffix is exactly one alphabetic
// character, the case that joins to the number without a hyphen.
func singleAlphaSuffix(suffix string) bool {
	if len(suffix) != 1 {
		return false
	}
	c := suffix[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// alphaDashNumber matches a suffix of the form "A-123": a rare OCR
// rendering of an alpha sub-identifier glued to a numeric one, grounded in
// miners/parser.py's `stringify`, which special-cases it the same way.
var alphaDashNumber = regexp.MustCompile(`^[A-Za-z]-[0-9]+$`)

// Stringify renders the canonical textual form described in spec.md §4.2
// step 7: "CODE " + optional PREFIX + number + optional "-SUFFIX". A
// single-character prefix joins directly to the number (no space); a
// longer prefix is space-separated. A single alphabetic suffix, or a
// letter-dash-number suffix such as "A-123" (alphaDashNumber), joins
// directly to the number (no hyphen); anything else uses a hyphen.
func Stringify(s SpecNum) string {
	delimPrefix := ""
	if s.Prefix != "" && len(s.Prefix) > 1 {
		delimPrefix = " "
	}

	delimSuffix := "-"
	if s.Suffix == "" {
		delimSuffix = ""
	} else if singleAlphaSuffix(s.Suffix) || alphaDashNumber.MatchString(s.Suffix) {
		delimSuffix = ""
	}

	var b strings.Builder
	b.WriteString(s.Code)
	b.WriteByte(' ')
	b.WriteString(s.Prefix)
	b.WriteString(delimPrefix)
	b.WriteString(strconv.Itoa(s.Number))
	b.WriteString(delimSuffix)
	b.WriteString(s.Suffix)
	return strings.TrimSpace(b.String())
}

// canonicalForm matches the output of Stringify, so that ParseCanonical can
// recover a SpecNum from it (the round-trip law of spec.md §8).
var canonicalForm = regexp.MustCompile(`^([A-Z][A-Z0-9.]*)\s+([A-Z]{1,3})?\s?([0-9]+)(-?)([A-Za-z0-9-]*)$`)

// ParseCanonical recovers a SpecNum from the canonical string produced by
// Stringify. It is intentionally narrow: it only needs to understand the
// shape Stringify emits, not arbitrary free text (that is Parser's job).
func ParseCanonical(s string) (SpecNum, error) {
	s = strings.TrimSpace(s)
	m := canonicalForm.FindStringSubmatch(s)
	if m == nil {
		return SpecNum{}, fmt.Errorf("catnum: %q is not a canonical specimen number", s)
	}
	code, prefix, numStr, suffix := m[1], m[2], m[3], m[5]
	num, err := strconv.Atoi(numStr)
	if err != nil {
		return SpecNum{}, fmt.Errorf("catnum: bad number in %q: %w", s, err)
	}
	return SpecNum{Code: code, Prefix: prefix, Number: num, Suffix: suffix}, nil
}

// String implements fmt.Stringer using the canonical form.
func (s SpecNum) String() string {
	return Stringify(s)
}
