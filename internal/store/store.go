// Package store implements the seven-table persistence contract of
// spec.md §3/§6 (Journal, Document, Snippet, Specimen, Link, DarwinCore
// cache, Taxon) over an embedded BadgerDB, grounded on the
// SnapshotManager pattern in AleutianAI-AleutianFOSS's
// services/trace/graph/snapshot.go: JSON-encoded values under
// string-prefixed keys, opened with WithLogger(nil) to suppress Badger's
// own internal logging in favor of internal/logging.
//
// Writes go through a write-behind Batch (spec.md §5): pending
// inserts/updates are buffered in memory, keyed by each table's declared
// uniqueness columns, and flushed either when the batch reaches its
// configured size or at end-of-phase. A flush failure retries the batch
// record-by-record so a single bad row doesn't sink an otherwise-good
// batch (spec.md §7).
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/adamancer/speciminer/internal/errs"
	"github.com/adamancer/speciminer/internal/logging"
)

const (
	tableJournal    = "journal"
	tableDocument   = "document"
	tableSnippet    = "snippet"
	tableSpecimen   = "specimen"
	tableLink       = "link"
	tableDarwinCore = "dwc"
	tableTaxon      = "taxon"
)

// Store wraps a BadgerDB handle and the current write-behind Batch.
type Store struct {
	db  *badger.DB
	log *logging.Logger

	batch      *Batch
	batchLimit int
}

// Open opens (creating if necessary) a BadgerDB at dir. batchLimit is the
// write-behind batch's flush threshold (spec.md §5 suggests 1,000-10,000
// records); 0 uses a default of 2,000.
func Open(dir string, batchLimit int, log *logging.Logger) (*Store, error) {
	if batchLimit <= 0 {
		batchLimit = 2000
	}
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, &errs.ConfigError{Reason: "opening badger store at " + dir, Err: err}
	}
	s := &Store{db: db, log: log, batchLimit: batchLimit}
	s.batch = newBatch(s)
	return s, nil
}

// Close flushes any pending batch and closes the underlying database.
func (s *Store) Close() error {
	if err := s.Flush(context.Background()); err != nil {
		s.log.Errorf("store: flush on close: %v", err)
	}
	return s.db.Close()
}

// key builds the Badger key for a table row from its uniqueness columns,
// following the SnapshotManager convention of colon-joined string
// prefixes (AleutianAI-AleutianFOSS's graph/snapshot.go).
func key(table string, uniq ...string) string {
	h := sha256.New()
	for _, u := range uniq {
		h.Write([]byte(u))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("speciminer:%s:%s", table, hex.EncodeToString(h.Sum(nil))[:32])
}

func (s *Store) get(k string, out any) (bool, error) {
	var found bool
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(k))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, out)
		})
	})
	return found, err
}

func (s *Store) put(k string, val any) error {
	data, err := json.Marshal(val)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(k), data)
	})
}

func (s *Store) scan(prefix string, visit func(k string, v []byte) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			item := it.Item()
			k := string(item.Key())
			if err := item.Value(func(val []byte) error {
				return visit(k, val)
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

func unmarshalInto(data []byte, out any) error {
	return json.Unmarshal(data, out)
}

// newID generates a random synthetic row ID for Specimen and Link rows
// that arrive without one. It is stored in the row only; Badger keys are
// always built by key from the table's uniqueness columns.
func newID() string {
	return uuid.NewString()
}
