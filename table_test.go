package docengine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/coldbrewdb/docengine/internal/blobstore"
	"github.com/coldbrewdb/docengine/internal/btree"
	"github.com/coldbrewdb/docengine/internal/docio"
)

func newTestTable(t *testing.T) *Table {
	t.Helper()
	return NewTable("id", btree.NewMemTree(), blobstore.NewMemStore(), Options{})
}

// S1: insert into empty table.
func TestScenarioInsertIntoEmptyTable(t *testing.T) {
	ctx := context.Background()
	tbl := newTestTable(t)

	res, err := tbl.Replace(ctx, []byte("0"), Insert(docio.Document{"id": "0", "a": float64(0)}), time.Now())
	require.NoError(t, err)
	require.Equal(t, ReplaceResult{Inserted: 1}, res)

	got, err := tbl.Get(ctx, []byte("0"))
	require.NoError(t, err)
	require.Equal(t, docio.Document{"id": "0", "a": float64(0)}, got.Data)
}

// S2: insert without upsert onto an existing key fails.
func TestScenarioInsertDuplicateFails(t *testing.T) {
	ctx := context.Background()
	tbl := newTestTable(t)

	_, err := tbl.Replace(ctx, []byte("2"), Insert(docio.Document{"id": "2", "a": float64(20)}), time.Now())
	require.NoError(t, err)

	res, err := tbl.Replace(ctx, []byte("2"), Insert(docio.Document{"id": "2", "b": float64(20)}), time.Now())
	require.NoError(t, err)
	require.Equal(t, 1, res.Errors)
	require.Equal(t, "Duplicate primary key.", res.FirstError)

	got, err := tbl.Get(ctx, []byte("2"))
	require.NoError(t, err)
	require.Equal(t, docio.Document{"id": "2", "a": float64(20)}, got.Data)
}

// S3: upsert onto an existing key replaces it.
func TestScenarioUpsertReplaces(t *testing.T) {
	ctx := context.Background()
	tbl := newTestTable(t)

	_, err := tbl.Replace(ctx, []byte("2"), Insert(docio.Document{"id": "2", "a": float64(20)}), time.Now())
	require.NoError(t, err)

	res, err := tbl.Replace(ctx, []byte("2"), Upsert(docio.Document{"id": "2", "b": float64(20)}), time.Now())
	require.NoError(t, err)
	require.Equal(t, ReplaceResult{Replaced: 1}, res)

	got, err := tbl.Get(ctx, []byte("2"))
	require.NoError(t, err)
	require.Equal(t, docio.Document{"id": "2", "b": float64(20)}, got.Data)
}

// S4: a transform that changes the primary key fails.
func TestScenarioPrimaryKeyImmutable(t *testing.T) {
	ctx := context.Background()
	tbl := newTestTable(t)

	_, err := tbl.Replace(ctx, []byte("5"), Insert(docio.Document{"id": "5"}), time.Now())
	require.NoError(t, err)

	res, err := tbl.Replace(ctx, []byte("5"), func(old docio.Document) (docio.Document, error) {
		return docio.Document{"id": "6"}, nil
	}, time.Now())
	require.NoError(t, err)
	require.Equal(t, 1, res.Errors)
	require.Contains(t, res.FirstError, "Primary key 'id' cannot be changed")

	got, err := tbl.Get(ctx, []byte("5"))
	require.NoError(t, err)
	require.Equal(t, docio.Document{"id": "5"}, got.Data)
}

// P2: set then get returns the same document.
func TestPropertySetThenGet(t *testing.T) {
	ctx := context.Background()
	tbl := newTestTable(t)
	doc := docio.Document{"id": "k", "v": float64(42)}

	_, err := tbl.Set(ctx, []byte("k"), doc, true, time.Now())
	require.NoError(t, err)

	got, err := tbl.Get(ctx, []byte("k"))
	require.NoError(t, err)
	require.Equal(t, doc, got.Data)
}

// P3: set then delete then get returns null.
func TestPropertySetDeleteGet(t *testing.T) {
	ctx := context.Background()
	tbl := newTestTable(t)
	doc := docio.Document{"id": "k"}

	_, err := tbl.Set(ctx, []byte("k"), doc, true, time.Now())
	require.NoError(t, err)

	delRes, err := tbl.Delete(ctx, []byte("k"), time.Now())
	require.NoError(t, err)
	require.Equal(t, Deleted, delRes.Result)

	got, err := tbl.Get(ctx, []byte("k"))
	require.NoError(t, err)
	require.Nil(t, got.Data)
}

// P4: an idempotent transform produces unchanged.
func TestPropertyIdempotentTransformIsUnchanged(t *testing.T) {
	ctx := context.Background()
	tbl := newTestTable(t)
	doc := docio.Document{"id": "k", "v": float64(1)}

	_, err := tbl.Set(ctx, []byte("k"), doc, true, time.Now())
	require.NoError(t, err)

	res, err := tbl.Replace(ctx, []byte("k"), func(old docio.Document) (docio.Document, error) {
		return old, nil
	}, time.Now())
	require.NoError(t, err)
	require.Equal(t, ReplaceResult{Unchanged: 1}, res)
}

func TestSetWithoutOverwriteReturnsDuplicateAndLeavesRowUnchanged(t *testing.T) {
	ctx := context.Background()
	tbl := newTestTable(t)
	orig := docio.Document{"id": "k", "v": float64(1)}

	res, err := tbl.Set(ctx, []byte("k"), orig, true, time.Now())
	require.NoError(t, err)
	require.Equal(t, Stored, res.Result)

	res2, err := tbl.Set(ctx, []byte("k"), docio.Document{"id": "k", "v": float64(2)}, false, time.Now())
	require.NoError(t, err)
	require.Equal(t, Duplicate, res2.Result)

	got, err := tbl.Get(ctx, []byte("k"))
	require.NoError(t, err)
	require.Equal(t, orig, got.Data)
}

func TestReplaceMissingPKAttributeErrors(t *testing.T) {
	ctx := context.Background()
	tbl := newTestTable(t)

	res, err := tbl.Replace(ctx, []byte("k"), func(old docio.Document) (docio.Document, error) {
		return docio.Document{"noPk": true}, nil
	}, time.Now())
	require.NoError(t, err)
	require.Equal(t, 1, res.Errors)
}

func TestReplaceTransformErrorIsCaught(t *testing.T) {
	ctx := context.Background()
	tbl := newTestTable(t)

	res, err := tbl.Replace(ctx, []byte("k"), func(old docio.Document) (docio.Document, error) {
		return nil, errBoom
	}, time.Now())
	require.NoError(t, err)
	require.Equal(t, 1, res.Errors)
	require.Equal(t, errBoom.Error(), res.FirstError)
}

func TestDeleteMissingKey(t *testing.T) {
	ctx := context.Background()
	tbl := newTestTable(t)

	res, err := tbl.Delete(ctx, []byte("missing"), time.Now())
	require.NoError(t, err)
	require.Equal(t, Missing, res.Result)
}
