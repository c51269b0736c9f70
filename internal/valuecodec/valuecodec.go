// Package valuecodec defines the on-leaf representation of a document
// value: a variable-length reference into the blob subsystem (spec
// §4.1). It never looks inside the blob's bytes; that is Document
// I/O's job (internal/docio).
package valuecodec

import (
	"encoding/binary"

	"github.com/coldbrewdb/docengine/internal/blobstore"
	"github.com/coldbrewdb/docengine/internal/direrrors"
)

// MaxInlineSize is the constant upper bound on any leaf reference,
// analogous to blob::btree_maxreflen: an encoded Ref (id, length,
// checksum, codec) never exceeds this many bytes.
const MaxInlineSize = 8 + 8 + 8 + 1

// LeafValue is what actually sits inline in a B-tree leaf entry: the
// encoded blob reference. It owns the referenced blob bytes — once
// Clear has run against the underlying store, reusing a LeafValue is
// a corruption bug, not a recoverable error.
type LeafValue struct {
	Ref     blobstore.Ref
	encoded []byte
}

// Encode returns a LeafValue holding ref and its inline byte
// representation, suitable for storing in a leaf entry.
func Encode(ref blobstore.Ref) LeafValue {
	buf := make([]byte, MaxInlineSize)
	binary.LittleEndian.PutUint64(buf[0:8], ref.ID)
	binary.LittleEndian.PutUint64(buf[8:16], uint64(ref.Length))
	binary.LittleEndian.PutUint64(buf[16:24], ref.Checksum)
	buf[24] = byte(ref.Codec)
	return LeafValue{Ref: ref, encoded: buf}
}

// Decode parses an inline leaf entry back into a LeafValue.
func Decode(b []byte) (LeafValue, error) {
	if len(b) != MaxInlineSize {
		return LeafValue{}, direrrors.NewCorruption("valuecodec: leaf value has %d bytes, want %d", len(b), MaxInlineSize)
	}
	ref := blobstore.Ref{
		ID:       binary.LittleEndian.Uint64(b[0:8]),
		Length:   int(binary.LittleEndian.Uint64(b[8:16])),
		Checksum: binary.LittleEndian.Uint64(b[16:24]),
		Codec:    blobstore.Codec(b[24]),
	}
	return LeafValue{Ref: ref, encoded: append([]byte(nil), b...)}, nil
}

// Bytes returns the inline encoding to store in a leaf entry.
func (v LeafValue) Bytes() []byte { return v.encoded }

// Size is the length in bytes the reference occupies in the leaf.
func Size(v LeafValue) int { return len(v.encoded) }

// MaxInlineSizeFn matches the spec's max_inline_size() naming; Go
// prefers the exported constant, but this is kept for callers that
// want a function value (e.g. threading it through a Sizer-shaped
// interface the way the teacher's value_sizer_t is threaded through
// B-tree generics).
func MaxInlineSizeFn() int { return MaxInlineSize }

// Fits reports whether v still fits if the leaf's remaining space is
// budget bytes.
func Fits(v LeafValue, budget int) bool {
	return Size(v) <= budget
}

// DeepFsck verifies that every block backing v's blob is reachable.
func DeepFsck(v LeafValue, store blobstore.Store) error {
	if !Fits(v, MaxInlineSize) {
		return direrrors.NewCorruption("valuecodec: value does not fit in max inline size")
	}
	return store.DeepFsck(v.Ref)
}
