package docengine

import (
	"context"
	"time"

	"github.com/coldbrewdb/docengine/internal/docio"
	"github.com/coldbrewdb/docengine/internal/modreport"
)

// Get locates key under a read snapshot and returns its document, or
// a nil Data for a missing row (spec §4.2).
func (t *Table) Get(ctx context.Context, key []byte) (PointReadResponse, error) {
	snap := t.tree.ReadSnapshot()
	raw, ok := snap.Get(key)
	if !ok {
		return PointReadResponse{Data: nil}, nil
	}
	lv, err := decodeLeaf(raw)
	if err != nil {
		return PointReadResponse{}, err
	}
	doc, err := docio.Read(lv, t.blobs)
	if err != nil {
		return PointReadResponse{}, err
	}
	return PointReadResponse{Data: doc}, nil
}

// Set installs doc at key under a write transaction. If an entry was
// already present, the response is Duplicate regardless of overwrite;
// the write only actually happens when overwrite is true or the key
// was absent (spec §4.2).
func (t *Table) Set(ctx context.Context, key []byte, doc docio.Document, overwrite bool, ts time.Time) (PointWriteResponse, error) {
	txn := t.tree.Begin()
	var report modreport.Report
	report.PrimaryKey = key

	oldRaw, present := txn.Get(key)
	result := Stored
	if present {
		result = Duplicate
		lv, err := decodeLeaf(oldRaw)
		if err != nil {
			return PointWriteResponse{}, err
		}
		oldDoc, err := docio.Read(lv, t.blobs)
		if err != nil {
			return PointWriteResponse{}, err
		}
		report.Deleted = oldDoc
		if !overwrite {
			return PointWriteResponse{Result: result}, nil
		}
		if err := docio.Clear(lv, t.blobs); err != nil {
			return PointWriteResponse{}, err
		}
	}
	report.Added = doc

	newLeaf, err := docio.WriteNew(doc, t.blobs, t.opts.BlobCodec)
	if err != nil {
		return PointWriteResponse{}, err
	}
	txn.Set(key, encodeLeaf(newLeaf), ts)
	if err := txn.Commit(); err != nil {
		return PointWriteResponse{}, err
	}

	if err := t.applySindexes(ctx, report); err != nil {
		return PointWriteResponse{Result: result}, err
	}
	return PointWriteResponse{Result: result}, nil
}

// Delete removes key under a write transaction, releasing its blob.
// The response is Missing (and the report unchanged) if the key was
// absent (spec §4.2).
func (t *Table) Delete(ctx context.Context, key []byte, ts time.Time) (PointDeleteResponse, error) {
	txn := t.tree.Begin()
	oldRaw, present := txn.Get(key)
	if !present {
		return PointDeleteResponse{Result: Missing}, nil
	}
	lv, err := decodeLeaf(oldRaw)
	if err != nil {
		return PointDeleteResponse{}, err
	}
	oldDoc, err := docio.Read(lv, t.blobs)
	if err != nil {
		return PointDeleteResponse{}, err
	}
	if err := docio.Clear(lv, t.blobs); err != nil {
		return PointDeleteResponse{}, err
	}
	txn.Delete(key, ts)
	if err := txn.Commit(); err != nil {
		return PointDeleteResponse{}, err
	}

	report := modreport.Report{PrimaryKey: key, Deleted: oldDoc}
	if err := t.applySindexes(ctx, report); err != nil {
		return PointDeleteResponse{Result: Deleted}, err
	}
	return PointDeleteResponse{Result: Deleted}, nil
}
