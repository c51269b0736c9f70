package btree

import (
	"bytes"
	"sort"
	"sync"
	"time"
)

// MemTree is a sorted-slice, mutex-guarded stand-in for a disk-backed
// B-tree. It keeps tombstones around (rather than physically erasing
// them) so that backfill can report deletion recency, the way a real
// leaf would until the next node split/merge compacts them away.
//
// This is the only concrete Tree implementation in this module: the
// real split/merge/cache machinery is an external collaborator per
// spec §1, and nothing upstream of it should depend on MemTree's
// internals.
type MemTree struct {
	mu      sync.RWMutex
	entries []Entry // sorted ascending by Key, including tombstones
}

// NewMemTree returns an empty tree.
func NewMemTree() *MemTree {
	return &MemTree{}
}

func (t *MemTree) find(key []byte) int {
	return sort.Search(len(t.entries), func(i int) bool {
		return bytes.Compare(t.entries[i].Key, key) >= 0
	})
}

// ReadSnapshot returns a view fixed to the tree's state at this
// instant: it copies every entry into a new backing array, so later
// writes to t never mutate what the snapshot sees.
func (t *MemTree) ReadSnapshot() ReadSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	snap := make([]Entry, len(t.entries))
	copy(snap, t.entries)
	return &memSnapshot{entries: snap}
}

func (t *MemTree) Begin() WriteTxn {
	return &memWriteTxn{tree: t}
}

type memSnapshot struct {
	entries []Entry
}

func (s *memSnapshot) liveIndex(key []byte) (int, bool) {
	i := sort.Search(len(s.entries), func(i int) bool {
		return bytes.Compare(s.entries[i].Key, key) >= 0
	})
	if i < len(s.entries) && bytes.Equal(s.entries[i].Key, key) && !s.entries[i].Tombstone {
		return i, true
	}
	return i, false
}

func (s *memSnapshot) Get(key []byte) ([]byte, bool) {
	if i, ok := s.liveIndex(key); ok {
		return s.entries[i].Value, true
	}
	return nil, false
}

func (s *memSnapshot) NewCursor(lower, upper []byte) Cursor {
	return newSliceCursor(s.entries, lower, upper, false)
}

func (s *memSnapshot) NewCursorWithTombstones(lower, upper []byte) Cursor {
	return newSliceCursor(s.entries, lower, upper, true)
}

func (s *memSnapshot) SplitKeys(left []byte, maxDepth int) [][]byte {
	if maxDepth <= 0 {
		return nil
	}
	start := sort.Search(len(s.entries), func(i int) bool {
		return bytes.Compare(s.entries[i].Key, left) >= 0
	})
	live := make([][]byte, 0, len(s.entries)-start)
	for _, e := range s.entries[start:] {
		if !e.Tombstone {
			live = append(live, e.Key)
		}
	}
	if len(live) == 0 {
		return nil
	}
	stride := len(live) / (maxDepth + 1)
	if stride < 1 {
		stride = 1
	}
	var out [][]byte
	for i := stride; i < len(live) && len(out) < maxDepth; i += stride {
		out = append(out, live[i])
	}
	return out
}

func (s *memSnapshot) TotalKeys() int {
	n := 0
	for _, e := range s.entries {
		if !e.Tombstone {
			n++
		}
	}
	return n
}

type sliceCursor struct {
	entries        []Entry
	i              int
	lower, upper   []byte
	withTombstones bool
	cur            Entry
}

func newSliceCursor(entries []Entry, lower, upper []byte, withTombstones bool) *sliceCursor {
	start := 0
	if lower != nil {
		start = sort.Search(len(entries), func(i int) bool {
			return bytes.Compare(entries[i].Key, lower) >= 0
		})
	}
	return &sliceCursor{entries: entries, i: start, lower: lower, upper: upper, withTombstones: withTombstones}
}

func (c *sliceCursor) Next() bool {
	for c.i < len(c.entries) {
		e := c.entries[c.i]
		c.i++
		if c.upper != nil && bytes.Compare(e.Key, c.upper) >= 0 {
			return false
		}
		if e.Tombstone && !c.withTombstones {
			continue
		}
		c.cur = e
		return true
	}
	return false
}

func (c *sliceCursor) Entry() Entry { return c.cur }

type memWriteTxn struct {
	tree *MemTree
}

func (w *memWriteTxn) Get(key []byte) ([]byte, bool) {
	w.tree.mu.RLock()
	defer w.tree.mu.RUnlock()
	i := w.tree.find(key)
	if i < len(w.tree.entries) && bytes.Equal(w.tree.entries[i].Key, key) && !w.tree.entries[i].Tombstone {
		return w.tree.entries[i].Value, true
	}
	return nil, false
}

func (w *memWriteTxn) upsert(key, value []byte, tombstone bool, ts time.Time) {
	w.tree.mu.Lock()
	defer w.tree.mu.Unlock()
	i := w.tree.find(key)
	entry := Entry{Key: append([]byte(nil), key...), Value: value, Tombstone: tombstone, Ts: ts}
	if i < len(w.tree.entries) && bytes.Equal(w.tree.entries[i].Key, key) {
		w.tree.entries[i] = entry
		return
	}
	w.tree.entries = append(w.tree.entries, Entry{})
	copy(w.tree.entries[i+1:], w.tree.entries[i:])
	w.tree.entries[i] = entry
}

func (w *memWriteTxn) Set(key, value []byte, ts time.Time) { w.upsert(key, value, false, ts) }

func (w *memWriteTxn) Delete(key []byte, ts time.Time) { w.upsert(key, nil, true, ts) }

func (w *memWriteTxn) NewCursor(lower, upper []byte) Cursor {
	w.tree.mu.RLock()
	defer w.tree.mu.RUnlock()
	snap := make([]Entry, len(w.tree.entries))
	copy(snap, w.tree.entries)
	return newSliceCursor(snap, lower, upper, false)
}

// Commit is a no-op: MemTree applies each mutation in place as it is
// made, matching how find_keyvalue_location_for_write commits on
// apply_keyvalue_change rather than at an explicit end-of-transaction
// step.
func (w *memWriteTxn) Commit() error { return nil }
