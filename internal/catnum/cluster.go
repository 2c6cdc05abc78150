package catnum

import (
	"fmt"
	"strconv"
	"strings"
)

// maxRangeExpansion bounds how many specimens a single range mention may
// expand into. A run longer than this is almost always a mis-parsed page
// range or similar false positive rather than a real specimen lot.
const maxRangeExpansion = 2000

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isAllAlpha(s string) bool {
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

func isDigitByte(b byte) bool {
	return b >= '0' && b <= '9'
}

var ocrMap = map[byte]byte{
	'I': '1', 'l': '1', 'i': '1',
	'O': '0', 'o': '0',
	'S': '5', 's': '5',
}

// FixOCRErrors corrects common optical-character-recognition confusions
// (I/l/i -> 1, O -> 0, S -> 5) but only within a run that already contains
// at least one digit, so a plain word like "Island" is left untouched while
// "4l7O3" is corrected to "41703". It is grounded on the correction table
// in miners/parser.py's fix_ocr_errors, adapted from a regex substitution
// into an explicit scan because the original's lookaround around alpha
// runs has no RE2 equivalent.
func FixOCRErrors(s string) string {
	b := []byte(s)
	out := make([]byte, len(b))
	copy(out, b)

	start := 0
	for start < len(b) {
		if !isAlnumByte(b[start]) {
			start++
			continue
		}
		end := start
		hasDigit := false
		for end < len(b) && isAlnumByte(b[end]) {
			if isDigitByte(b[end]) {
				hasDigit = true
			}
			end++
		}
		if hasDigit {
			for i := start; i < end; i++ {
				repl, ok := ocrMap[b[i]]
				if !ok {
					continue
				}
				prevDigit := i > start && isDigitByte(b[i-1])
				nextDigit := i+1 < end && isDigitByte(b[i+1])
				if prevDigit || nextDigit {
					out[i] = repl
				}
			}
		}
		start = end
	}
	return string(out)
}

func isAlnumByte(b byte) bool {
	return isDigitByte(b) || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// BorrowDigits completes a short numeric fragment by prepending the leading
// digits of a reference number, the OCR/typesetting shorthand where a
// second catalog number in a list or range drops its shared leading digits
// ("123456, 59" meaning "123456, 123459"). If short is already as long as
// or longer than reference, it is returned unchanged.
func BorrowDigits(short, reference string) string {
	if len(short) >= len(reference) {
		return short
	}
	borrow := len(reference) - len(short)
	return reference[:borrow] + short
}

// ExpandAlphaSuffixes expands a letter-range suffix such as "a-c" into one
// SpecNum per letter (a, b, c), grounded on miners/cluster.py's
// expand_alpha_suffixes. A suffix that is not of the form "<letter>-<letter>"
// is returned as a single-element slice unchanged.
func ExpandAlphaSuffixes(s SpecNum) []SpecNum {
	lo, hi, ok := splitAlphaRange(s.Suffix)
	if !ok {
		return []SpecNum{s}
	}
	out := make([]SpecNum, 0, hi-lo+1)
	for c := lo; c <= hi; c++ {
		next := s
		next.Suffix = string(rune(c))
		out = append(out, next)
	}
	return out
}

func splitAlphaRange(suffix string) (lo, hi byte, ok bool) {
	parts := strings.SplitN(suffix, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	a, b := parts[0], parts[1]
	if len(a) != 1 || len(b) != 1 || !isAllAlpha(a) || !isAllAlpha(b) {
		return 0, 0, false
	}
	lo, hi = strings.ToLower(a)[0], strings.ToLower(b)[0]
	if hi < lo {
		return 0, 0, false
	}
	return lo, hi, true
}

// ExpandRange fills the integers between lo and hi into a run of SpecNum
// values sharing lo's code and prefix, each with an empty suffix. When hiRaw (the digit
// string as written, before any borrowing) is shorter than loRaw, the
// range is a short form such as "123456-59"; expandShort controls whether
// it is extrapolated to "123456-123459" (spec.md's expand_short_ranges
// flag, disabled for Mineral Sciences documents where short trailing
// numbers are routinely something else, like a field number). When
// expandShort is false and the range is short, spec.md §8's scenario table
// requires the mention stay a single catalog number ("123456-59" is one
// SpecNum with Number=123456 and Suffix="59", not two independent numbers
// "123456" and "59") — the same single-fragment prefix/number/suffix split
// parseNum performs, not a fillable range.
func ExpandRange(lo SpecNum, loRaw string, hi SpecNum, hiRaw string, expandShort bool) ([]SpecNum, error) {
	short := len(hiRaw) < len(loRaw)
	if short {
		if !expandShort {
			lo.Suffix = hiRaw
			return []SpecNum{lo}, nil
		}
		borrowed := BorrowDigits(hiRaw, loRaw)
		n, err := strconv.Atoi(borrowed)
		if err != nil {
			return nil, fmt.Errorf("catnum: bad borrowed range end %q: %w", borrowed, err)
		}
		hi.Number = n
	}

	if hi.Number < lo.Number {
		return []SpecNum{lo, hi}, nil
	}
	count := hi.Number - lo.Number + 1
	if count > maxRangeExpansion {
		return nil, fmt.Errorf("catnum: range %s-%s spans %d specimens, exceeds limit", Stringify(lo), Stringify(hi), count)
	}
	out := make([]SpecNum, 0, count)
	for n := lo.Number; n <= hi.Number; n++ {
		next := lo
		next.Number = n
		next.Suffix = ""
		out = append(out, next)
	}
	return out, nil
}

// TrimTrailingValue drops an implausible final entry from a discrete list,
// grounded on miners/cluster.py's trim_bad_values/_validate_last: OCR noise
// after the genuine list of catalog numbers sometimes parses as one more
// short numeric fragment (a page number, a plate number) that was never
// successfully completed by BorrowDigits because no later digits existed to
// borrow from. A trailing value is considered bad when its digit count is
// shorter than that of the longest other entry in the list.
func TrimTrailingValue(nums []SpecNum, rawDigits []string) []SpecNum {
	if len(nums) < 2 || len(nums) != len(rawDigits) {
		return nums
	}
	last := rawDigits[len(rawDigits)-1]
	maxOthers := 0
	for _, raw := range rawDigits[:len(rawDigits)-1] {
		if len(raw) > maxOthers {
			maxOthers = len(raw)
		}
	}
	if len(last) < maxOthers {
		return nums[:len(nums)-1]
	}
	return nums
}
