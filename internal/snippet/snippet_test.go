package snippet_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adamancer/speciminer/internal/config"
	"github.com/adamancer/speciminer/internal/snippet"
)

func TestExtractHighlightsMatch(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)
	bank, err := cfg.Bank()
	require.NoError(t, err)

	e := snippet.NewExtractor(bank, 10)
	text := "Two specimens, USNM 201117 and USNM 201119, were figured."
	byVerbatim, order := e.Extract("page-1", text)

	require.NotEmpty(t, order)
	for _, verbatim := range order {
		snips := byVerbatim[verbatim]
		require.NotEmpty(t, snips)
		assert.Contains(t, snips[0].Text, "**"+verbatim+"**")
	}
}

func TestBlankRemovesParsedVerbatims(t *testing.T) {
	text := "USNM 201117 and USNM 201119"
	blanked := snippet.Blank(text, []string{"USNM 201117"})
	assert.NotContains(t, blanked, "201117")
	assert.Contains(t, blanked, "201119")
}
