package catnum

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringify(t *testing.T) {
	cases := []struct {
		name string
		in   SpecNum
		want string
	}{
		{"bare number", SpecNum{Code: "USNM", Number: 123456}, "USNM 123456"},
		{"multi-char prefix", SpecNum{Code: "USNM", Prefix: "PAL", Number: 76012}, "USNM PAL 76012"},
		{"single-char prefix", SpecNum{Code: "USNM", Prefix: "V", Number: 12345}, "USNM V12345"},
		{"single alpha suffix", SpecNum{Code: "USNM", Number: 201120, Suffix: "a"}, "USNM 201120a"},
		{"numeric suffix", SpecNum{Code: "USNM", Number: 201120, Suffix: "2"}, "USNM 201120-2"},
		{"multi-letter suffix", SpecNum{Code: "USNM", Number: 201120, Suffix: "ab"}, "USNM 201120-ab"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Stringify(c.in))
		})
	}
}

func TestStringifyRoundTrip(t *testing.T) {
	in := SpecNum{Code: "USNM", Prefix: "PAL", Number: 76012, Suffix: "a"}
	s := Stringify(in)
	out, err := ParseCanonical(s)
	assert.NoError(t, err)
	assert.Equal(t, s, Stringify(out))
}
