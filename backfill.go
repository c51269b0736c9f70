package docengine

import (
	"context"
	"time"

	"github.com/coldbrewdb/docengine/internal/docio"
)

// BackfillCallback receives the ordered event stream a replica needs
// to catch up: the sindex catalogue first, then deletions, deletion
// ranges, and key/value pairs interleaved in B-tree order (spec
// §4.7).
type BackfillCallback interface {
	OnSindexes(catalogue []SindexDescriptor) error
	// OnDeleteRange is never called by this reference implementation:
	// MemTree records only point tombstones, not the coalesced range
	// tombstones a real B-tree's erase_range would produce. It is
	// part of the interface so that a disk-backed Tree can satisfy
	// the full spec §4.7 event set without an interface change.
	OnDeleteRange(lower, upper []byte) error
	OnDeletion(key []byte, recency time.Time) error
	OnKeyValue(key []byte, doc docio.Document, recency time.Time) error
}

// Backfill emits an ordered stream of events covering [lower, upper)
// to cb. Any error returned by cb aborts the backfill immediately;
// ctx cancellation is checked at every entry and also aborts.
func (t *Table) Backfill(ctx context.Context, lower, upper []byte, cb BackfillCallback) error {
	if err := cb.OnSindexes(t.Catalogue()); err != nil {
		return err
	}

	snap := t.tree.ReadSnapshot()
	cur := snap.NewCursorWithTombstones(lower, upper)
	for cur.Next() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		e := cur.Entry()
		if e.Tombstone {
			if err := cb.OnDeletion(e.Key, e.Ts); err != nil {
				return err
			}
			continue
		}
		lv, err := decodeLeaf(e.Value)
		if err != nil {
			return err
		}
		doc, err := t.readDocGated(ctx, lv)
		if err != nil {
			return err
		}
		if err := cb.OnKeyValue(e.Key, doc, e.Ts); err != nil {
			return err
		}
	}
	return nil
}
