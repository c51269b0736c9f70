// Package btree states the contract this document layer assumes of
// its underlying B-tree: node split/merge, the buffer cache, and the
// on-disk block format all live below this line and are out of scope
// (spec §1). Only the shapes the document layer calls through —
// snapshots, write transactions, ascending cursors, and a coarse
// split-key sampler for distribution queries — are declared here.
//
// MemTree, in this package, is the in-memory reference implementation
// used by the document-layer packages and their tests; a production
// deployment would satisfy the same interfaces with a disk-backed,
// page-cached B-tree instead.
package btree

import "time"

// Entry is a single live or tombstoned key in the tree, along with the
// write timestamp ("recency") of the mutation that produced it. Ts is
// populated for tombstones as well, so that backfill can report
// deletion recency.
type Entry struct {
	Key       []byte
	Value     []byte
	Tombstone bool
	Ts        time.Time
}

// Cursor walks entries in ascending key order over a bounded range.
type Cursor interface {
	// Next advances the cursor and reports whether an entry is
	// available. It must be called once before the first Entry.
	Next() bool
	Entry() Entry
}

// ReadSnapshot is a fixed point-in-time view of the tree, used by
// point reads and range scans so that they are unaffected by
// concurrent writes that commit after the snapshot was taken.
type ReadSnapshot interface {
	Get(key []byte) (value []byte, ok bool)
	// NewCursor returns an ascending cursor over [lower, upper). A nil
	// bound is unbounded on that side. Tombstones are not surfaced.
	NewCursor(lower, upper []byte) Cursor
	// NewCursorWithTombstones is like NewCursor but also yields
	// tombstoned entries, for backfill.
	NewCursorWithTombstones(lower, upper []byte) Cursor
	// SplitKeys returns up to maxDepth candidate split keys at or
	// after left, standing in for the B-tree's actual internal-node
	// boundaries (out of scope here; see spec §4.6).
	SplitKeys(left []byte, maxDepth int) [][]byte
	// TotalKeys is the total number of live keys visible in this
	// snapshot, used by the distribution sampler's bucket-size
	// formula.
	TotalKeys() int
}

// WriteTxn scopes a single key's worth of mutation: locate, read-old,
// write-new, and apply-change are all expected to happen under one
// WriteTxn before Commit, so that the mutation is atomic to
// concurrent readers (spec §5).
type WriteTxn interface {
	Get(key []byte) (value []byte, ok bool)
	Set(key, value []byte, ts time.Time)
	Delete(key []byte, ts time.Time)
	// NewCursor supports range erasure, which walks under write.
	NewCursor(lower, upper []byte) Cursor
	Commit() error
}

// Tree is the external collaborator: the primary table's B-tree, or a
// single sindex's B-tree. Both the primary tree and every sindex tree
// satisfy this same interface.
type Tree interface {
	ReadSnapshot() ReadSnapshot
	Begin() WriteTxn
}
