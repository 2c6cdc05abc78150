package localfs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adamancer/speciminer/internal/corpus/localfs"
)

func writeDoc(t *testing.T, root, name, meta string, pages map[string]string) {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "meta.yaml"), []byte(meta), 0o644))
	for pageName, text := range pages {
		require.NoError(t, os.WriteFile(filepath.Join(dir, pageName), []byte(text), 0o644))
	}
}

func TestAdapterStreamsDocumentsAndPages(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "doc-a", "title: A note on trilobites\npublication: Proc. Biol. Soc.\nyear: 1950\n", map[string]string{
		"0001.txt": "USNM 201117 was collected nearby.",
		"0002.txt": "A second page mentioning USNM 201119.",
	})
	writeDoc(t, root, "doc-b", "title: Unrelated\n", map[string]string{
		"0001.txt": "no specimens here",
	})

	adapter := localfs.New(root)
	ctx := context.Background()

	docs, errc := adapter.Documents(ctx, "")
	var found []string
	for d := range docs {
		found = append(found, d.URL)
	}
	require.NoError(t, <-errc)
	assert.Equal(t, []string{"doc-a", "doc-b"}, found)

	docCh, errc2 := adapter.Documents(ctx, "doc-a")
	doc := <-docCh
	require.NoError(t, <-errc2)
	assert.Equal(t, "A note on trilobites", doc.Title)
	assert.Equal(t, "Proc. Biol. Soc.", doc.Publication)
	assert.Equal(t, 1950, doc.Year)
	assert.Equal(t, "local", doc.Source)

	pages, errc3 := adapter.Pages(ctx, doc)
	var texts []string
	for p := range pages {
		texts = append(texts, p.Text)
	}
	require.NoError(t, <-errc3)
	require.Len(t, texts, 2)
	assert.Contains(t, texts[0], "201117")
}
