package docengine

import (
	"context"

	"github.com/coldbrewdb/docengine/internal/docio"
	"github.com/coldbrewdb/docengine/internal/valuecodec"
)

// decodeLeaf and encodeLeaf adapt between the raw []byte a
// btree.Tree stores and the structured LeafValue the value codec and
// document I/O layers operate on.
func decodeLeaf(b []byte) (valuecodec.LeafValue, error) {
	return valuecodec.Decode(b)
}

func encodeLeaf(v valuecodec.LeafValue) []byte {
	return v.Bytes()
}

// readDocGated reads a document's blob, admission-controlled by
// opts.BlobReadSema when the caller configured one, the same way
// LoadBlockSema bounds concurrent sstable block loads: a long
// traversal (range scan, backfill) can otherwise issue far more
// concurrent blob reads than the store can usefully serve at once.
func (t *Table) readDocGated(ctx context.Context, lv valuecodec.LeafValue) (docio.Document, error) {
	sema := t.opts.BlobReadSema
	if sema == nil {
		return docio.Read(lv, t.blobs)
	}
	if err := sema.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer sema.Release(1)
	return docio.Read(lv, t.blobs)
}
