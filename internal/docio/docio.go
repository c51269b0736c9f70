// Package docio reads and writes JSON documents through the leaf
// value / blob layers (spec §4.1). It is the only package that knows
// how to turn blob bytes into a Go value and back.
package docio

import (
	"encoding/json"

	"github.com/coldbrewdb/docengine/internal/blobstore"
	"github.com/coldbrewdb/docengine/internal/direrrors"
	"github.com/coldbrewdb/docengine/internal/valuecodec"
)

// Document is a stored row: a JSON object. Transform inputs/outputs
// may additionally be a Go nil, meaning "absent row" (JSON null); that
// case is represented at the call site as a nil map, not here.
type Document = map[string]interface{}

// Read exposes the blob referenced by v as a document, failing fast
// on corruption rather than returning a partially-parsed value.
func Read(v valuecodec.LeafValue, store blobstore.Store) (Document, error) {
	raw, err := store.Read(v.Ref)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, direrrors.NewCorruption("docio: corrupt document: %v", err)
	}
	return doc, nil
}

// WriteNew serializes doc and allocates a fresh blob for it, returning
// a new leaf reference. It never reuses an existing reference: the
// caller is responsible for Clear-ing whatever it replaces.
func WriteNew(doc Document, store blobstore.Store, codec blobstore.Codec) (valuecodec.LeafValue, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return valuecodec.LeafValue{}, direrrors.NewUser("docio: document does not marshal to JSON: %v", err)
	}
	ref, err := store.Append(raw, codec)
	if err != nil {
		return valuecodec.LeafValue{}, err
	}
	return valuecodec.Encode(ref), nil
}

// Clear releases the blob referenced by v. The leaf reference is
// invalid for any further Read after this returns.
func Clear(v valuecodec.LeafValue, store blobstore.Store) error {
	return store.Clear(v.Ref)
}
