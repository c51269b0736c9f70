package docengine

import (
	"time"

	"github.com/coldbrewdb/docengine/internal/docio"
)

var zeroTime time.Time

// KeyTester decides whether a visited key should be erased.
type KeyTester func(key []byte) bool

// EraseRange walks [leftExclusive, rightInclusiveUpperBound) under
// write, erasing every key for which tester returns true (every key
// when tester is nil) and releasing its blob. No modification reports
// are emitted (spec §4.5); callers that need sindex-coherent erasure
// must drive that cleanup out-of-band.
//
// Despite the parameter names, both bounds are passed straight to the
// underlying cursor's [lower, upper) arguments: a key equal to
// leftExclusive is erased, a key equal to rightInclusiveUpperBound is
// not. A nil bound is unbounded on that side. This is the range
// RangeFromHalfOpen hands back unchanged, so
// that the same [lower, upper) cursor contract used everywhere else
// in this module is reused rather than adding a second, inclusive-
// bound iteration primitive.
func (t *Table) EraseRange(leftExclusive, rightInclusiveUpperBound []byte, tester KeyTester) error {
	txn := t.tree.Begin()
	cur := txn.NewCursor(leftExclusive, rightInclusiveUpperBound)
	var toErase [][]byte
	for cur.Next() {
		e := cur.Entry()
		if tester == nil || tester(e.Key) {
			toErase = append(toErase, append([]byte(nil), e.Key...))
		}
	}
	for _, key := range toErase {
		raw, ok := txn.Get(key)
		if !ok {
			continue
		}
		lv, err := decodeLeaf(raw)
		if err != nil {
			return err
		}
		if err := docio.Clear(lv, t.blobs); err != nil {
			return err
		}
		txn.Delete(key, zeroTime)
	}
	return txn.Commit()
}

// RangeFromHalfOpen returns the boundary pair EraseRange takes for a
// half-open [left, right) range. It performs no decrement of either
// bound.
//
// Keys are opaque byte strings with no general predecessor function;
// this uses the same convention the underlying cursor already
// implements ([lower, upper) semantics), so no actual decrement is
// needed — the half-open bounds are passed straight through. This
// convenience wrapper exists to preserve the shape spec.md describes,
// per its own open "TODO" on erasure's boundary handling.
func RangeFromHalfOpen(left, right []byte) (leftExclusive, rightInclusive []byte) {
	return left, right
}
