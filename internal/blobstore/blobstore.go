// Package blobstore is the external blob-allocator collaborator cited
// by spec §3: leaf values are variable-length references into this
// store, which owns the referenced bytes. This in-memory
// implementation is the reference/test backing; a production
// deployment would allocate real disk blocks.
package blobstore

import (
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"

	"github.com/coldbrewdb/docengine/internal/direrrors"
)

// Codec names a compression scheme applied to a blob before it is
// written, mirroring the teacher's pluggable sstable block
// compressors.
type Codec uint8

const (
	CodecNone Codec = iota
	CodecSnappy
	CodecZstd
)

// Ref is an opaque reference into the blob store, carrying enough
// metadata to read, verify, and release the bytes it points at. Its
// encoded form is what actually lives inline in a leaf (see
// internal/valuecodec).
type Ref struct {
	ID       uint64
	Length   int
	Checksum uint64
	Codec    Codec
}

// Store is the blob allocator's contract: append new bytes, read an
// existing reference back out, and release one. Read must fail
// loudly on checksum mismatch rather than return corrupt bytes.
type Store interface {
	Append(data []byte, codec Codec) (Ref, error)
	Read(ref Ref) ([]byte, error)
	Clear(ref Ref) error
	// DeepFsck verifies the block backing ref is still reachable,
	// independent of Read's checksum check.
	DeepFsck(ref Ref) error
}

type memBlob struct {
	compressed []byte
	live       bool
}

// MemStore is an in-memory Store used by the reference engine and
// its tests.
type MemStore struct {
	mu      sync.RWMutex
	blobs   map[uint64]*memBlob
	nextID  uint64
	cleared int64 // atomic-friendly counter of Clear calls, for fsck-style assertions
}

func NewMemStore() *MemStore {
	return &MemStore{blobs: make(map[uint64]*memBlob)}
}

func (s *MemStore) Append(data []byte, codec Codec) (Ref, error) {
	compressed, err := compress(codec, data)
	if err != nil {
		return Ref{}, direrrors.NewCorruption("blobstore: compress: %v", err)
	}
	id := atomic.AddUint64(&s.nextID, 1)
	s.mu.Lock()
	s.blobs[id] = &memBlob{compressed: compressed, live: true}
	s.mu.Unlock()
	return Ref{
		ID:       id,
		Length:   len(data),
		Checksum: xxhash.Sum64(data),
		Codec:    codec,
	}, nil
}

func (s *MemStore) Read(ref Ref) ([]byte, error) {
	s.mu.RLock()
	b, ok := s.blobs[ref.ID]
	s.mu.RUnlock()
	if !ok || !b.live {
		return nil, direrrors.NewCorruption("blobstore: read of cleared or unknown blob %d", ref.ID)
	}
	data, err := decompress(ref.Codec, b.compressed, ref.Length)
	if err != nil {
		return nil, direrrors.NewCorruption("blobstore: decompress blob %d: %v", ref.ID, err)
	}
	if xxhash.Sum64(data) != ref.Checksum {
		return nil, direrrors.NewCorruption("blobstore: checksum mismatch on blob %d", ref.ID)
	}
	return data, nil
}

func (s *MemStore) Clear(ref Ref) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blobs[ref.ID]
	if !ok {
		return direrrors.NewCorruption("blobstore: clear of unknown blob %d", ref.ID)
	}
	b.live = false
	b.compressed = nil
	atomic.AddInt64(&s.cleared, 1)
	return nil
}

func (s *MemStore) DeepFsck(ref Ref) error {
	s.mu.RLock()
	b, ok := s.blobs[ref.ID]
	s.mu.RUnlock()
	if !ok || !b.live {
		return direrrors.NewCorruption("blobstore: fsck: blob %d unreachable", ref.ID)
	}
	return nil
}
