package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adamancer/speciminer/internal/logging"
	"github.com/adamancer/speciminer/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(t.TempDir(), 2, logging.NewTo(nilWriter{}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

type nilWriter struct{}

func (nilWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestSaveAndGetLinkRoundTrips(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	link := store.Link{
		DocURL:   "https://example.org/doc/1",
		Verbatim: "USNM 201117",
		SpecNum:  "USNM 201117",
		EZIDs:    []string{"abc"},
		MatchQuality: "Matched snippet",
	}
	require.NoError(t, s.SaveLink(ctx, link))
	require.NoError(t, s.Flush(ctx))

	got, found, err := s.GetLink(link.DocURL, link.Verbatim, link.SpecNum)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "abc", got.EZID())
	assert.True(t, got.Matched())
}

func TestSaveLinkUpgradesInPlace(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	base := store.Link{DocURL: "d1", Verbatim: "USNM 1", SpecNum: "USNM 1", MatchQuality: "No match"}
	require.NoError(t, s.SaveLink(ctx, base))
	require.NoError(t, s.Flush(ctx))

	upgraded := base
	upgraded.MatchQuality = "Matched related specimens"
	upgraded.EZIDs = []string{"xyz"}
	require.NoError(t, s.SaveLink(ctx, upgraded))
	require.NoError(t, s.Flush(ctx))

	links, err := s.LinksByDocument("d1")
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "Matched related specimens", links[0].MatchQuality)
}

func TestBatchAutoFlushesAtLimit(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.SaveLink(ctx, store.Link{
			DocURL: "d1", Verbatim: "v", SpecNum: "USNM " + string(rune('0'+i)),
		}))
	}

	links, err := s.LinksByDocument("d1")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(links), 2)
}
