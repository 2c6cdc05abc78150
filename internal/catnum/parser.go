package catnum

import (
	"strconv"
	"strings"

	"github.com/adamancer/speciminer/internal/metrics"
	"github.com/adamancer/speciminer/internal/regexbank"
)

// minCatalogDigits is the shortest digit run that is ever treated as a real
// Smithsonian catalog number. Shorter runs are almost always a stray year,
// page number, or plate number caught by the surrounding mask and are
// dropped rather than mined (spec.md §4.2's "filter short numbers" step).
const minCatalogDigits = 4

// Options configures a Parser. ExpandShortRanges controls whether a range
// whose second endpoint is written with fewer digits than the first
// ("123456-59") is extrapolated to a full range ("123456-123459"). Mineral
// Sciences documents disable this, since a short trailing number there is
// routinely a field or lot number rather than an abbreviated catalog
// number (spec.md §4.3).
type Options struct {
	ExpandShortRanges bool
}

// Parser turns free text into the SpecNum mentions it contains. Unlike the
// module-level singleton in miners/parser.py, a Parser holds no mutable
// state beyond its compiled regex bank and is safe to share across
// concurrently mined documents.
type Parser struct {
	bank *regexbank.Bank
	opts Options
}

// NewParser builds a Parser from a compiled regex bank.
func NewParser(bank *regexbank.Bank, opts Options) *Parser {
	return &Parser{bank: bank, opts: opts}
}

// Parse returns every SpecNum mentioned in text, in order of appearance.
// OCR confusions are corrected (FixOCRErrors) before the mask runs, so a
// garbled number such as "4l7O3" is matched whole rather than cut short
// at its first non-digit.
// Mentions that fail to parse into a plausible catalog number are dropped,
// not returned as an error: a single bad mention in a multi-thousand-word
// document is an expected, recoverable event (spec.md §7), not a reason to
// abandon the rest of the document.
func (p *Parser) Parse(text string) []SpecNum {
	var out []SpecNum
	for _, mention := range p.bank.Mask.FindAllString(FixOCRErrors(text), -1) {
		parsed := p.parseMention(mention)
		if len(parsed) == 0 {
			metrics.RecordMention("discarded")
		} else {
			metrics.RecordMention("expanded")
		}
		out = append(out, parsed...)
	}
	return out
}

func (p *Parser) parseMention(mention string) []SpecNum {
	mention = strings.TrimSpace(mention)
	code := p.extractCode(mention)
	if code == "" {
		return nil
	}

	rest := p.bank.Code.ReplaceAllString(mention, "")
	rest = p.bank.Filler.ReplaceAllString(rest, "")
	rest = strings.TrimSpace(strings.Trim(rest, "()"))

	prefix := ""
	if pm := p.bank.Prefix.FindString(rest); pm != "" && strings.HasPrefix(rest, pm) {
		prefix = strings.TrimSpace(pm)
		rest = strings.TrimSpace(rest[len(pm):])
	}

	switch {
	case p.bank.DiscreteMask.MatchString(rest):
		return p.parseDiscrete(code, prefix, rest)
	case p.bank.RangeMask.MatchString(rest):
		return p.parseRange(code, prefix, rest)
	default:
		n, suffix, ok := p.parseNum(rest)
		if !ok {
			return nil
		}
		return []SpecNum{{Code: code, Prefix: prefix, Number: n, Suffix: suffix}}
	}
}

// extractCode finds and canonicalizes the museum-code token in mention.
// Historical variants ("U.S.N.M.", "USNH") all refer to the same
// institution and are folded to "USNM" (spec.md §6).
func (p *Parser) extractCode(mention string) string {
	raw := p.bank.Code.FindString(mention)
	if raw == "" {
		return ""
	}
	cleaned := strings.ToUpper(raw)
	cleaned = strings.NewReplacer(".", "", " ", "").Replace(cleaned)
	switch cleaned {
	case "USNM", "NMNH", "USNH":
		return "USNM"
	default:
		return cleaned
	}
}

// parseNum pulls a number and trailing suffix out of a single catalog-number
// fragment, correcting OCR errors first. It reports ok=false when the
// fragment has no usable digit run, or that run is shorter than
// minCatalogDigits.
func (p *Parser) parseNum(fragment string) (number int, suffix string, ok bool) {
	fragment = strings.TrimSpace(FixOCRErrors(fragment))
	numMatch := p.bank.Number.FindString(fragment)
	if numMatch == "" {
		return 0, "", false
	}
	digits := strings.ReplaceAll(numMatch, " ", "")
	if len(digits) < minCatalogDigits {
		return 0, "", false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, "", false
	}
	idx := strings.Index(fragment, numMatch)
	rest := strings.TrimSpace(fragment[idx+len(numMatch):])
	rest = strings.TrimPrefix(rest, "-")
	return n, strings.TrimSpace(rest), true
}

// parseDiscrete handles a comma/semicolon/"and"-joined list of catalog
// numbers sharing one museum code, such as
// "201117, 201119, 201120a-c, and 201123a-c". Each fragment after the
// first may omit the leading digits it shares with its predecessor
// (BorrowDigits), and any fragment may carry an alpha-range suffix
// (ExpandAlphaSuffixes). Grounded on miners/cluster.py's cluster/combine.
func (p *Parser) parseDiscrete(code, prefix, rest string) []SpecNum {
	fragments := p.bank.JoinDiscrete.Split(rest, -1)

	var bases []SpecNum
	var rawDigits []string
	prevRaw := ""

	for _, frag := range fragments {
		frag = strings.TrimSpace(FixOCRErrors(frag))
		if frag == "" {
			continue
		}
		numMatch := p.bank.Number.FindString(frag)
		if numMatch == "" {
			continue
		}
		digits := strings.ReplaceAll(numMatch, " ", "")
		if prevRaw != "" {
			digits = BorrowDigits(digits, prevRaw)
		}
		if len(digits) < minCatalogDigits {
			continue
		}
		n, err := strconv.Atoi(digits)
		if err != nil {
			continue
		}
		idx := strings.Index(frag, numMatch)
		suffix := strings.TrimSpace(frag[idx+len(numMatch):])
		suffix = strings.TrimPrefix(suffix, "-")

		bases = append(bases, SpecNum{Code: code, Prefix: prefix, Number: n, Suffix: suffix})
		rawDigits = append(rawDigits, digits)
		prevRaw = digits
	}

	bases = TrimTrailingValue(bases, rawDigits)

	var out []SpecNum
	for _, base := range bases {
		out = append(out, ExpandAlphaSuffixes(base)...)
	}
	return out
}

// parseRange handles a two-endpoint range such as "USNM 123456-123459" or
// the short form "USNM 123456-59", delegating the fill to ExpandRange.
func (p *Parser) parseRange(code, prefix, rest string) []SpecNum {
	parts := p.bank.JoinRange.Split(rest, -1)
	if len(parts) != 2 {
		n, suffix, ok := p.parseNum(rest)
		if !ok {
			return nil
		}
		return []SpecNum{{Code: code, Prefix: prefix, Number: n, Suffix: suffix}}
	}

	loFrag := strings.TrimSpace(FixOCRErrors(parts[0]))
	hiFrag := strings.TrimSpace(FixOCRErrors(parts[1]))

	loMatch := p.bank.Number.FindString(loFrag)
	hiMatch := p.bank.Number.FindString(hiFrag)
	if loMatch == "" || hiMatch == "" {
		return nil
	}
	loRaw := strings.ReplaceAll(loMatch, " ", "")
	hiRaw := strings.ReplaceAll(hiMatch, " ", "")
	if len(loRaw) < minCatalogDigits {
		return nil
	}
	loNum, err := strconv.Atoi(loRaw)
	if err != nil {
		return nil
	}
	hiNum, err := strconv.Atoi(hiRaw)
	if err != nil {
		return nil
	}

	lo := SpecNum{Code: code, Prefix: prefix, Number: loNum}
	hi := SpecNum{Code: code, Prefix: prefix, Number: hiNum}

	expanded, err := ExpandRange(lo, loRaw, hi, hiRaw, p.opts.ExpandShortRanges)
	if err != nil {
		return []SpecNum{lo}
	}
	return expanded
}
