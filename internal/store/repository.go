package store

import (
	"context"
	"strings"
)

// SaveJournal upserts a Journal, keyed by its case-insensitive title
// (spec.md §3).
func (s *Store) SaveJournal(ctx context.Context, j Journal) error {
	return s.batch.stage(ctx, tableJournal, key(tableJournal, strings.ToLower(j.Title)), j)
}

// GetJournal looks up a Journal by title.
func (s *Store) GetJournal(title string) (Journal, bool, error) {
	var j Journal
	found, err := s.get(key(tableJournal, strings.ToLower(title)), &j)
	return j, found, err
}

// SaveDocument upserts a Document, keyed by its stable URL.
func (s *Store) SaveDocument(ctx context.Context, d Document) error {
	return s.batch.stage(ctx, tableDocument, key(tableDocument, d.URL), d)
}

// GetDocument looks up a Document by URL.
func (s *Store) GetDocument(url string) (Document, bool, error) {
	var d Document
	found, err := s.get(key(tableDocument, url), &d)
	return d, found, err
}

// AllDocuments scans every persisted Document, used by the match/report
// CLI commands to iterate the whole corpus.
func (s *Store) AllDocuments() ([]Document, error) {
	var out []Document
	err := s.scan("speciminer:"+tableDocument+":", func(_ string, v []byte) error {
		var d Document
		if err := unmarshalInto(v, &d); err != nil {
			return err
		}
		out = append(out, d)
		return nil
	})
	return out, err
}

// SaveSnippet upserts a SnippetRow, keyed by (doc_url, page_id,
// snippet_text) per spec.md §3's uniqueness constraint. ID is derived
// deterministically from that same key so GetSnippetByID can look a row
// up directly, without a secondary index, the same way Specimen.SnippetID
// references it.
func (s *Store) SaveSnippet(ctx context.Context, row SnippetRow) error {
	row.ID = SnippetID(row.DocURL, row.PageID, row.Text)
	return s.batch.stage(ctx, tableSnippet, row.ID, row)
}

// SnippetID derives the same deterministic ID SaveSnippet assigns, so
// callers that just staged a SnippetRow can look it up again without a
// round trip through the batch.
func SnippetID(docURL, pageID, text string) string {
	return key(tableSnippet, docURL, pageID, text)
}

// GetSnippetByID looks up a SnippetRow by the ID SaveSnippet assigned it.
func (s *Store) GetSnippetByID(id string) (SnippetRow, bool, error) {
	var row SnippetRow
	found, err := s.get(id, &row)
	return row, found, err
}

// SnippetsByDocument scans every persisted SnippetRow belonging to docURL.
func (s *Store) SnippetsByDocument(docURL string) ([]SnippetRow, error) {
	var out []SnippetRow
	err := s.scan("speciminer:"+tableSnippet+":", func(_ string, v []byte) error {
		var row SnippetRow
		if err := unmarshalInto(v, &row); err != nil {
			return err
		}
		if row.DocURL == docURL {
			out = append(out, row)
		}
		return nil
	})
	return out, err
}

// SaveSpecimen upserts a Specimen (a parsed mention), keyed by the
// (doc_url, snippet_id, spec_num) triple it was parsed from; the
// generated ID is stored in the row but is not part of the key.
func (s *Store) SaveSpecimen(ctx context.Context, sp Specimen) error {
	if sp.ID == "" {
		sp.ID = newID()
	}
	return s.batch.stage(ctx, tableSpecimen, key(tableSpecimen, sp.DocURL, sp.SnippetID, sp.SpecNum), sp)
}

// SpecimensByDocument scans every persisted Specimen belonging to docURL.
func (s *Store) SpecimensByDocument(docURL string) ([]Specimen, error) {
	var out []Specimen
	err := s.scan(tableSpecimenPrefix(), func(_ string, v []byte) error {
		var sp Specimen
		if err := unmarshalInto(v, &sp); err != nil {
			return err
		}
		if sp.DocURL == docURL {
			out = append(out, sp)
		}
		return nil
	})
	return out, err
}

func tableSpecimenPrefix() string { return "speciminer:" + tableSpecimen + ":" }
func tableLinkPrefix() string     { return "speciminer:" + tableLink + ":" }

// SaveLink upserts a Link, keyed by (doc_url, verbatim, spec_num) per
// spec.md §3's uniqueness constraint. Re-saving an existing key upgrades
// it in place, which is how Phase 2-4 of the resolution engine revise a
// Link's match_quality/department without creating a duplicate row
// (spec.md §6's "mutable: quality/department may be upgraded on
// re-pass").
func (s *Store) SaveLink(ctx context.Context, l Link) error {
	if l.ID == "" {
		l.ID = newID()
	}
	return s.batch.stage(ctx, tableLink, key(tableLink, l.DocURL, l.Verbatim, l.SpecNum), l)
}

// GetLink looks up a Link by its natural key.
func (s *Store) GetLink(docURL, verbatim, specNum string) (Link, bool, error) {
	var l Link
	found, err := s.get(key(tableLink, docURL, verbatim, specNum), &l)
	return l, found, err
}

// LinksByDocument scans every persisted Link belonging to docURL. Flush
// should be called first if the caller needs to see writes still
// pending in the batch.
func (s *Store) LinksByDocument(docURL string) ([]Link, error) {
	var out []Link
	err := s.scan(tableLinkPrefix(), func(_ string, v []byte) error {
		var l Link
		if err := unmarshalInto(v, &l); err != nil {
			return err
		}
		if l.DocURL == docURL {
			out = append(out, l)
		}
		return nil
	})
	return out, err
}

// AllLinks scans every persisted Link across all documents.
func (s *Store) AllLinks() ([]Link, error) {
	var out []Link
	err := s.scan(tableLinkPrefix(), func(_ string, v []byte) error {
		var l Link
		if err := unmarshalInto(v, &l); err != nil {
			return err
		}
		out = append(out, l)
		return nil
	})
	return out, err
}

// SaveDarwinCore upserts a cached DarwinCore subset, keyed by
// occurrenceID.
func (s *Store) SaveDarwinCore(ctx context.Context, dwc DarwinCoreCache) error {
	return s.batch.stage(ctx, tableDarwinCore, key(tableDarwinCore, dwc.OccurrenceID), dwc)
}

// GetDarwinCore looks up a cached DarwinCore subset by occurrenceID.
func (s *Store) GetDarwinCore(occurrenceID string) (DarwinCoreCache, bool, error) {
	var dwc DarwinCoreCache
	found, err := s.get(key(tableDarwinCore, occurrenceID), &dwc)
	return dwc, found, err
}

// SaveTaxon upserts a cached topic-classifier result, keyed by name.
func (s *Store) SaveTaxon(ctx context.Context, t Taxon) error {
	return s.batch.stage(ctx, tableTaxon, key(tableTaxon, strings.ToLower(t.Name)), t)
}

// GetTaxon looks up a cached topic-classifier result by name.
func (s *Store) GetTaxon(name string) (Taxon, bool, error) {
	var t Taxon
	found, err := s.get(key(tableTaxon, strings.ToLower(name)), &t)
	return t, found, err
}
