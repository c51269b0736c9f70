package btree

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSetGetDelete(t *testing.T) {
	tr := NewMemTree()
	txn := tr.Begin()
	txn.Set([]byte("a"), []byte("1"), time.Now())
	require.NoError(t, txn.Commit())

	snap := tr.ReadSnapshot()
	v, ok := snap.Get([]byte("a"))
	require.True(t, ok)
	require.Equal(t, []byte("1"), v)

	txn2 := tr.Begin()
	txn2.Delete([]byte("a"), time.Now())
	require.NoError(t, txn2.Commit())

	snap2 := tr.ReadSnapshot()
	_, ok = snap2.Get([]byte("a"))
	require.False(t, ok)
}

func TestSnapshotIsolatedFromLaterWrites(t *testing.T) {
	tr := NewMemTree()
	txn := tr.Begin()
	txn.Set([]byte("a"), []byte("1"), time.Now())
	require.NoError(t, txn.Commit())

	snap := tr.ReadSnapshot()

	txn2 := tr.Begin()
	txn2.Set([]byte("b"), []byte("2"), time.Now())
	require.NoError(t, txn2.Commit())

	_, ok := snap.Get([]byte("b"))
	require.False(t, ok, "snapshot must not observe writes made after it was taken")
}

func TestCursorAscendingRange(t *testing.T) {
	tr := NewMemTree()
	txn := tr.Begin()
	for _, k := range []string{"c", "a", "e", "b", "d"} {
		txn.Set([]byte(k), []byte(k), time.Now())
	}
	require.NoError(t, txn.Commit())

	snap := tr.ReadSnapshot()
	cur := snap.NewCursor([]byte("b"), []byte("e"))
	var got []string
	for cur.Next() {
		got = append(got, string(cur.Entry().Key))
	}
	require.Equal(t, []string{"b", "c", "d"}, got)
}

func TestCursorWithTombstones(t *testing.T) {
	tr := NewMemTree()
	txn := tr.Begin()
	txn.Set([]byte("a"), []byte("1"), time.Now())
	require.NoError(t, txn.Commit())

	txn2 := tr.Begin()
	txn2.Delete([]byte("a"), time.Now())
	require.NoError(t, txn2.Commit())

	snap := tr.ReadSnapshot()

	live := snap.NewCursor(nil, nil)
	require.False(t, live.Next())

	withTombstones := snap.NewCursorWithTombstones(nil, nil)
	require.True(t, withTombstones.Next())
	require.True(t, withTombstones.Entry().Tombstone)
}
