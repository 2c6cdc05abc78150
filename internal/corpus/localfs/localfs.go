// Package localfs implements the one source-corpus adapter that is not an
// external collaborator (spec.md §1's "a local document export"): a
// directory tree of already-extracted document text. The two digital-
// library API adapters spec.md names remain out of scope, specified only
// by corpus.Adapter; this is the adapter the mine CLI command exercises
// directly against a local corpus export.
//
// Layout: one subdirectory of root per document, containing a meta.yaml
// (title/authors/year/publication/volume/number/pages/doi) and one or more
// page files named "0001.txt", "0002.txt", etc. The subdirectory name is
// used as the document's stable URL/id when meta.yaml omits one.
package localfs

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/adamancer/speciminer/internal/corpus"
)

// Adapter reads documents from a directory tree rooted at Dir.
type Adapter struct {
	Dir string
}

// New builds an Adapter rooted at dir.
func New(dir string) *Adapter {
	return &Adapter{Dir: dir}
}

type meta struct {
	URL         string   `yaml:"url"`
	Kind        string   `yaml:"kind"`
	Authors     []string `yaml:"authors"`
	Title       string   `yaml:"title"`
	Publication string   `yaml:"publication"`
	Year        int      `yaml:"year"`
	Volume      string   `yaml:"volume"`
	Number      string   `yaml:"number"`
	Pages       string   `yaml:"pages"`
	DOI         string   `yaml:"doi"`
}

// Documents streams one corpus.Document per subdirectory of Dir whose name
// contains query as a substring (an empty query matches every document),
// in sorted directory-name order for reproducible runs. query filtering is
// the local stand-in for the external corpora's real search APIs.
func (a *Adapter) Documents(ctx context.Context, query string) (<-chan corpus.Document, <-chan error) {
	docs := make(chan corpus.Document)
	errc := make(chan error, 1)

	go func() {
		defer close(docs)
		defer close(errc)

		entries, err := os.ReadDir(a.Dir)
		if err != nil {
			errc <- err
			return
		}
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			if e.IsDir() {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)

		for _, name := range names {
			if query != "" && !strings.Contains(name, query) {
				continue
			}
			doc, err := a.readMeta(name)
			if err != nil {
				errc <- err
				return
			}
			select {
			case docs <- doc:
			case <-ctx.Done():
				return
			}
		}
	}()

	return docs, errc
}

func (a *Adapter) readMeta(name string) (corpus.Document, error) {
	path := filepath.Join(a.Dir, name, "meta.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return corpus.Document{}, err
	}
	var m meta
	if err := yaml.Unmarshal(data, &m); err != nil {
		return corpus.Document{}, err
	}
	url := m.URL
	if url == "" {
		url = name
	}
	return corpus.Document{
		URL:         url,
		Kind:        m.Kind,
		Authors:     m.Authors,
		Title:       m.Title,
		Publication: m.Publication,
		Year:        m.Year,
		Volume:      m.Volume,
		Number:      m.Number,
		Pages:       m.Pages,
		DOI:         m.DOI,
		Source:      "local",
	}, nil
}

// Pages streams every "NNNN.txt" page file in doc's subdirectory, sorted
// by file name, using the file name (without extension) as the page ID.
func (a *Adapter) Pages(ctx context.Context, doc corpus.Document) (<-chan corpus.Page, <-chan error) {
	pages := make(chan corpus.Page)
	errc := make(chan error, 1)

	dir := filepath.Join(a.Dir, localDirName(doc))

	go func() {
		defer close(pages)
		defer close(errc)

		entries, err := os.ReadDir(dir)
		if err != nil {
			errc <- err
			return
		}
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), ".txt") {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)

		for _, name := range names {
			data, err := os.ReadFile(filepath.Join(dir, name))
			if err != nil {
				errc <- err
				return
			}
			page := corpus.Page{ID: strings.TrimSuffix(name, ".txt"), Text: string(data)}
			select {
			case pages <- page:
			case <-ctx.Done():
				return
			}
		}
	}()

	return pages, errc
}

// localDirName recovers the subdirectory name for doc: its URL unless
// readMeta had to fall back to the directory name, in which case URL and
// directory name are already identical.
func localDirName(doc corpus.Document) string {
	return doc.URL
}
