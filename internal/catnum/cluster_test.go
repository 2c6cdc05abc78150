package catnum

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixOCRErrors(t *testing.T) {
	assert.Equal(t, "41703", FixOCRErrors("4l7O3"))
	assert.Equal(t, "Island", FixOCRErrors("Island"))
	assert.Equal(t, "USNM", FixOCRErrors("USNM"))
}

func TestBorrowDigits(t *testing.T) {
	assert.Equal(t, "123459", BorrowDigits("59", "123456"))
	assert.Equal(t, "123456", BorrowDigits("123456", "999999"))
}

func TestExpandAlphaSuffixes(t *testing.T) {
	base := SpecNum{Code: "USNM", Number: 201120, Suffix: "a-c"}
	out := ExpandAlphaSuffixes(base)
	assert.Len(t, out, 3)
	assert.Equal(t, "a", out[0].Suffix)
	assert.Equal(t, "b", out[1].Suffix)
	assert.Equal(t, "c", out[2].Suffix)
}

func TestExpandRangeShortFormExtrapolated(t *testing.T) {
	lo := SpecNum{Code: "USNM", Number: 123456}
	hi := SpecNum{Code: "USNM", Number: 59}
	out, err := ExpandRange(lo, "123456", hi, "59", true)
	assert.NoError(t, err)
	assert.Len(t, out, 4)
	assert.Equal(t, "USNM 123459", Stringify(out[len(out)-1]))
}

func TestExpandRangeShortFormNotExtrapolated(t *testing.T) {
	lo := SpecNum{Code: "USNM", Number: 123456}
	hi := SpecNum{Code: "USNM", Number: 59}
	out, err := ExpandRange(lo, "123456", hi, "59", false)
	assert.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Equal(t, "USNM 123456-59", Stringify(out[0]))
}

func TestTrimTrailingValue(t *testing.T) {
	nums := []SpecNum{
		{Code: "USNM", Number: 201117},
		{Code: "USNM", Number: 201119},
		{Code: "USNM", Number: 12},
	}
	raw := []string{"201117", "201119", "12"}
	trimmed := TrimTrailingValue(nums, raw)
	assert.Len(t, trimmed, 2)
}
