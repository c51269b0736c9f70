package docengine

import (
	"log/slog"

	"github.com/cockroachdb/crlib/fifo"

	"github.com/coldbrewdb/docengine/internal/blobstore"
)

// defaultRGetMaxChunkSize bounds a streamed (no-terminal) range scan's
// estimated output size before it reports truncated=true.
const defaultRGetMaxChunkSize = 1 << 20 // 1 MiB of estimated row size

// defaultCompactEvery is the number of rows between reduction-state
// compaction attempts for datum-map (group-by-reduce) terminals; a
// starting tuning knob per spec §4.4, not a contract.
const defaultCompactEvery = 10000

// Options configures a Table. The zero value is not directly usable;
// call EnsureDefaults (or construct via NewTable, which calls it for
// you) before use, following the teacher's Options.EnsureDefaults
// convention rather than a functional-options constructor.
type Options struct {
	// RGetMaxChunkSize bounds streamed range-scan output, in the same
	// units as EstimateRowSize.
	RGetMaxChunkSize int
	// CompactEvery is filled in by EnsureDefaults but not read by
	// RangeScan: a group-by-reduce terminal compacts at the cadence
	// passed to NewGroupByReduceTerminal, not at this value.
	CompactEvery int
	// BlobCodec selects the compression applied to newly written
	// document blobs.
	BlobCodec blobstore.Codec
	// Logger is filled in by EnsureDefaults. No operation in this
	// package logs through it: neither the long traversals (range
	// scan, backfill, post-construction) nor the single-key write path.
	Logger *slog.Logger
	// EstimateRowSize overrides the coarse row-size estimator used by
	// range scan truncation. Implementations may improve on the
	// default but must keep it monotone in document size.
	EstimateRowSize func(doc map[string]interface{}) int
	// BlobReadSema, if set, bounds the number of blob reads a single
	// range scan or backfill can have in flight at once, the same way
	// LoadBlockSema bounds concurrent block loads. Nil means
	// unbounded.
	BlobReadSema *fifo.Semaphore
}

// EnsureDefaults fills in unset fields and returns the result; it
// never mutates the receiver in place, mirroring
// (*pebble.Options).EnsureDefaults returning *Options.
func (o Options) EnsureDefaults() Options {
	if o.RGetMaxChunkSize <= 0 {
		o.RGetMaxChunkSize = defaultRGetMaxChunkSize
	}
	if o.CompactEvery <= 0 {
		o.CompactEvery = defaultCompactEvery
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.EstimateRowSize == nil {
		o.EstimateRowSize = estimateRowSize
	}
	return o
}

// estimateRowSize is the default coarse size estimator: a constant
// base cost of 64 plus 16 units per top-level field, which is monotone in
// document size without the cost of a full JSON re-encode on every
// row of every scan.
func estimateRowSize(doc map[string]interface{}) int {
	const base = 64
	return base + 16*len(doc)
}
