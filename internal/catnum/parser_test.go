package catnum_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adamancer/speciminer/internal/catnum"
	"github.com/adamancer/speciminer/internal/config"
	"github.com/adamancer/speciminer/internal/regexbank"
)

func loadBank(t *testing.T) *regexbank.Bank {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)
	bank, err := cfg.Bank()
	require.NoError(t, err)
	return bank
}

func stringifyAll(nums []catnum.SpecNum) []string {
	out := make([]string, len(nums))
	for i, n := range nums {
		out[i] = catnum.Stringify(n)
	}
	return out
}

func TestParseDiscreteListWithAlphaRanges(t *testing.T) {
	bank := loadBank(t)
	p := catnum.NewParser(bank, catnum.Options{ExpandShortRanges: true})

	got := p.Parse("specimens USNM 201117, 201119, 201120a-c, and 201123a-c were examined")

	assert.Equal(t, []string{
		"USNM 201117",
		"USNM 201119",
		"USNM 201120a",
		"USNM 201120b",
		"USNM 201120c",
		"USNM 201123a",
		"USNM 201123b",
		"USNM 201123c",
	}, stringifyAll(got))
}

func TestParseShortRangeExpanded(t *testing.T) {
	bank := loadBank(t)
	p := catnum.NewParser(bank, catnum.Options{ExpandShortRanges: true})

	got := p.Parse("see USNM 123456-59 for the type series")

	assert.Equal(t, []string{
		"USNM 123456",
		"USNM 123457",
		"USNM 123458",
		"USNM 123459",
	}, stringifyAll(got))
}

func TestParseShortRangeNotExpandedForMineralSciences(t *testing.T) {
	bank := loadBank(t)
	p := catnum.NewParser(bank, catnum.Options{ExpandShortRanges: false})

	got := p.Parse("see USNM 123456-59 for the type series")

	assert.Equal(t, []string{"USNM 123456-59"}, stringifyAll(got))
}

func TestParseOCRCorrectedNumber(t *testing.T) {
	bank := loadBank(t)
	p := catnum.NewParser(bank, catnum.Options{ExpandShortRanges: true})

	got := p.Parse("U.S.N.M. no. 4l7O3")

	assert.Equal(t, []string{"USNM 41703"}, stringifyAll(got))
}
