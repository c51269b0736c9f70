// Package docengine implements the document-layer operations of a
// B-tree-backed key-value storage engine: point reads, the
// replace-engine mutation pipeline (insert/update/replace/delete via
// server-side transforms), ordered range scans with a transform/
// terminal pipeline, range erasure, key-distribution sampling,
// replication backfill, and secondary-index maintenance including
// online post-construction.
//
// The underlying B-tree, buffer cache, blob allocator, on-disk block
// format, query-language evaluator, cluster metadata layer, and RPC
// surface are external collaborators; only the contracts of the
// B-tree and blob allocator (internal/btree, internal/blobstore) live
// in this module, together with in-memory reference implementations
// of them (btree.MemTree, blobstore.MemStore).
package docengine
