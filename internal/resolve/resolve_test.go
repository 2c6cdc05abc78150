package resolve_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adamancer/speciminer/internal/config"
	"github.com/adamancer/speciminer/internal/logging"
	"github.com/adamancer/speciminer/internal/portal"
	"github.com/adamancer/speciminer/internal/resolve"
	"github.com/adamancer/speciminer/internal/store"
)

type nilWriter struct{}

func (nilWriter) Write(p []byte) (int, error) { return len(p), nil }

// fakeClient serves a fixed set of CandidateRecords per spec_num, the
// way portalfixture does over HTTP but without the gin server, for
// tests that only need the resolution engine's own logic exercised.
type fakeClient struct {
	records map[string][]portal.CandidateRecord
}

func (f fakeClient) GetSpecimenByID(_ context.Context, specNum string) ([]portal.CandidateRecord, error) {
	return f.records[specNum], nil
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(t.TempDir(), 100, logging.NewTo(nilWriter{}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestResolvePhase1MatchesOnSnippetTaxon(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	doc := store.Document{URL: "doc1", Title: "A note on trilobites"}
	require.NoError(t, st.SaveDocument(ctx, doc))

	row := store.SnippetRow{DocURL: "doc1", PageID: "p1", Text: "a fine trilobite specimen"}
	require.NoError(t, st.SaveSnippet(ctx, row))
	require.NoError(t, st.Flush(ctx))

	rows, err := st.SnippetsByDocument("doc1")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	sp := store.Specimen{DocURL: "doc1", SnippetID: rows[0].ID, Verbatim: "USNM 1000", SpecNum: "USNM 1000"}
	require.NoError(t, st.SaveSpecimen(ctx, sp))
	require.NoError(t, st.SaveLink(ctx, store.Link{DocURL: "doc1", Verbatim: "USNM 1000", SpecNum: "USNM 1000"}))
	require.NoError(t, st.Flush(ctx))

	client := fakeClient{records: map[string][]portal.CandidateRecord{
		"USNM 1000": {
			{OccurrenceID: "ez1", CollectionCode: "Paleobiology", HigherClassification: "Trilobita trilobite fossil arthropod"},
			{OccurrenceID: "ez2", CollectionCode: "Paleobiology", HigherClassification: "Mammalia whale bone fragment"},
		},
	}}

	engine := resolve.NewEngine(st, client, config.Departments{}, logging.NewTo(nilWriter{}))
	require.NoError(t, engine.Resolve(ctx, "doc1"))

	link, found, err := st.GetLink("doc1", "USNM 1000", "USNM 1000")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, link.Matched())
	assert.Equal(t, "ez1", link.EZID())
	assert.Contains(t, link.MatchQuality, "Matched snippet")
}

func TestResolvePhase1MatchesOnSamePage(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	doc := store.Document{URL: "doc3", Title: ""}
	require.NoError(t, st.SaveDocument(ctx, doc))

	require.NoError(t, st.SaveSnippet(ctx, store.SnippetRow{DocURL: "doc3", PageID: "p1", Text: "a fine trilobite specimen"}))
	require.NoError(t, st.SaveSnippet(ctx, store.SnippetRow{DocURL: "doc3", PageID: "p1", Text: "a poorly preserved fragment"}))
	require.NoError(t, st.Flush(ctx))

	rows, err := st.SnippetsByDocument("doc3")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	var rowTrilobite, rowFragment store.SnippetRow
	for _, r := range rows {
		if strings.Contains(r.Text, "trilobite") {
			rowTrilobite = r
		} else {
			rowFragment = r
		}
	}

	require.NoError(t, st.SaveSpecimen(ctx, store.Specimen{DocURL: "doc3", SnippetID: rowTrilobite.ID, Verbatim: "USNM 2000", SpecNum: "USNM 2000"}))
	require.NoError(t, st.SaveSpecimen(ctx, store.Specimen{DocURL: "doc3", SnippetID: rowFragment.ID, Verbatim: "USNM 2001", SpecNum: "USNM 2001"}))
	require.NoError(t, st.SaveLink(ctx, store.Link{DocURL: "doc3", Verbatim: "USNM 2000", SpecNum: "USNM 2000"}))
	require.NoError(t, st.SaveLink(ctx, store.Link{DocURL: "doc3", Verbatim: "USNM 2001", SpecNum: "USNM 2001"}))
	require.NoError(t, st.Flush(ctx))

	client := fakeClient{records: map[string][]portal.CandidateRecord{
		"USNM 2000": {
			{OccurrenceID: "ez1", CollectionCode: "Paleobiology", HigherClassification: "Trilobita trilobite fossil arthropod"},
		},
		"USNM 2001": {
			{OccurrenceID: "ez3", CollectionCode: "Paleobiology", HigherClassification: "Trilobita trilobite fossil arthropod"},
			{OccurrenceID: "ez4", CollectionCode: "Paleobiology", HigherClassification: "Mammalia whale bone"},
		},
	}}

	engine := resolve.NewEngine(st, client, config.Departments{}, logging.NewTo(nilWriter{}))
	require.NoError(t, engine.Resolve(ctx, "doc3"))

	// USNM 2001's own snippet text ("a poorly preserved fragment") shares
	// no keyword with either candidate, so it can only match through the
	// same-page text contributed by USNM 2000's sibling snippet.
	link, found, err := st.GetLink("doc3", "USNM 2001", "USNM 2001")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, link.Matched())
	assert.Equal(t, "ez3", link.EZID())
	assert.Contains(t, link.MatchQuality, "Matched same page")
}

func TestResolvePhase2ForcesSiblingDepartment(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	doc := store.Document{URL: "doc2", Title: ""}
	require.NoError(t, st.SaveDocument(ctx, doc))

	for i := 0; i < 6; i++ {
		require.NoError(t, st.SaveLink(ctx, store.Link{
			DocURL: "doc2", Verbatim: verbatimFor(i), SpecNum: verbatimFor(i),
			EZIDs: []string{"matched"}, MatchQuality: "Matched snippet", Department: "Paleobiology",
		}))
	}
	require.NoError(t, st.SaveLink(ctx, store.Link{DocURL: "doc2", Verbatim: "USNM 9999", SpecNum: "USNM 9999"}))
	require.NoError(t, st.Flush(ctx))

	client := fakeClient{records: map[string][]portal.CandidateRecord{
		"USNM 9999": {
			{OccurrenceID: "ez9", CollectionCode: "Paleobiology"},
			{OccurrenceID: "ezX", CollectionCode: "Mineral Sciences"},
		},
	}}

	engine := resolve.NewEngine(st, client, config.Departments{}, logging.NewTo(nilWriter{}))
	require.NoError(t, engine.Resolve(ctx, "doc2"))

	link, found, err := st.GetLink("doc2", "USNM 9999", "USNM 9999")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, link.Matched())
	assert.Equal(t, "ez9", link.EZID())
}

func verbatimFor(i int) string {
	return "USNM 100" + string(rune('0'+i))
}
