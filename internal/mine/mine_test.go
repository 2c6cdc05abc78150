package mine_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adamancer/speciminer/internal/config"
	"github.com/adamancer/speciminer/internal/corpus/localfs"
	"github.com/adamancer/speciminer/internal/logging"
	"github.com/adamancer/speciminer/internal/mine"
	"github.com/adamancer/speciminer/internal/store"
)

type nilWriter struct{}

func (nilWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestMinerPersistsSnippetsSpecimensAndLinks(t *testing.T) {
	corpusRoot := t.TempDir()
	docDir := filepath.Join(corpusRoot, "doc-a")
	require.NoError(t, os.MkdirAll(docDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(docDir, "meta.yaml"), []byte("title: A note on trilobites\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(docDir, "0001.txt"),
		[]byte("Several specimens, including USNM 201117 and USNM 201119, were examined."), 0o644))

	cfg, err := config.Default()
	require.NoError(t, err)
	bank, err := cfg.Bank()
	require.NoError(t, err)

	st, err := store.Open(t.TempDir(), 0, logging.NewTo(nilWriter{}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	miner := mine.New(st, bank, 0, logging.NewTo(nilWriter{}))
	require.NoError(t, miner.Run(context.Background(), localfs.New(corpusRoot), ""))

	doc, found, err := st.GetDocument("doc-a")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "A note on trilobites", doc.Title)

	links, err := st.LinksByDocument("doc-a")
	require.NoError(t, err)
	var specNums []string
	for _, l := range links {
		specNums = append(specNums, l.SpecNum)
		assert.Equal(t, "", l.MatchQuality)
	}
	assert.Contains(t, specNums, "USNM 201117")
	assert.Contains(t, specNums, "USNM 201119")

	snippets, err := st.SnippetsByDocument("doc-a")
	require.NoError(t, err)
	assert.NotEmpty(t, snippets)
}
