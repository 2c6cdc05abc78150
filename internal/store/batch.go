package store

import (
	"context"
	"sync"

	"github.com/adamancer/speciminer/internal/errs"
	"github.com/adamancer/speciminer/internal/metrics"
)

type pendingEntry struct {
	table string
	key   string
	value any
}

// Batch is the write-behind buffer of spec.md §5: pending inserts and
// updates, keyed by the target table and a synthetic uniqueness key
// derived from the table's declared uniqueness columns, so that two
// writes to the same logical row collapse into one pending entry instead
// of duplicating it. mu guards pending/order since the match command's
// document-level worker pool (spec.md §5) stages writes from several
// goroutines against the one Store/Batch a document's Engine shares.
type Batch struct {
	store *Store

	mu      sync.Mutex
	pending map[string]*pendingEntry
	order   []string
}

func newBatch(s *Store) *Batch {
	return &Batch{store: s, pending: make(map[string]*pendingEntry)}
}

// stage buffers a write under the given table/key, overwriting any
// previously staged write to the same key, and flushes automatically
// once the batch reaches its configured size.
func (b *Batch) stage(ctx context.Context, table, k string, value any) error {
	b.mu.Lock()
	if _, exists := b.pending[k]; !exists {
		b.order = append(b.order, k)
	}
	b.pending[k] = &pendingEntry{table: table, key: k, value: value}
	full := len(b.pending) >= b.store.batchLimit
	b.mu.Unlock()
	if full {
		return b.flush(ctx)
	}
	return nil
}

// flush writes every staged entry to Badger, each in its own
// transaction. If any write fails, entries already written stay written
// and every entry of the batch is written again one record at a time to
// isolate the offending row(s); rows that still fail are logged and
// discarded (spec.md §5/§7).
func (b *Batch) flush(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return &errs.CancelledError{Stage: "batch flush"}
	default:
	}

	b.mu.Lock()
	if len(b.pending) == 0 {
		b.mu.Unlock()
		return nil
	}
	entries := make([]*pendingEntry, 0, len(b.pending))
	for _, k := range b.order {
		entries = append(entries, b.pending[k])
	}
	b.pending = make(map[string]*pendingEntry)
	b.order = nil
	b.mu.Unlock()

	if err := b.writeAll(entries); err != nil {
		metrics.RecordBatchFlush("partial")
		b.store.log.Warnf("store: batch write failed, retrying per-record: %v", err)
		for _, e := range entries {
			if putErr := b.store.put(e.key, e.value); putErr != nil {
				b.store.log.Errorf("store: discarding unwritable row %s[%s]: %v", e.table, e.key, putErr)
			}
		}
	} else {
		metrics.RecordBatchFlush("ok")
	}

	return nil
}

func (b *Batch) writeAll(entries []*pendingEntry) error {
	for _, e := range entries {
		if err := b.store.put(e.key, e.value); err != nil {
			return &errs.ConstraintError{Table: e.table, Key: e.key, Err: err}
		}
	}
	return nil
}

// Flush forces any pending writes out to Badger, used at end-of-phase
// (spec.md §5) and on Store.Close.
func (s *Store) Flush(ctx context.Context) error {
	return s.batch.flush(ctx)
}
