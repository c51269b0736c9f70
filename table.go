package docengine

import (
	"sync"

	"github.com/coldbrewdb/docengine/internal/blobstore"
	"github.com/coldbrewdb/docengine/internal/btree"
	"github.com/coldbrewdb/docengine/internal/direrrors"
	"github.com/coldbrewdb/docengine/internal/metrics"
)

// Table is a single document table: a primary B-tree keyed by an
// opaque primary key, a blob store for out-of-line values, an
// sindex catalogue, and the configuration all of its operations
// share. It is the analogue of the teacher's *pebble.DB as the
// top-level handle through which every operation is reached.
type Table struct {
	pkName string
	tree   btree.Tree
	blobs  blobstore.Store
	opts   Options
	m      *metrics.Metrics

	mu       sync.Mutex
	sindexes map[string]*sindexEntry
}

// NewTable wires a primary tree and blob store into a Table. pkName
// is the document attribute that holds the primary key (spec §3).
func NewTable(pkName string, tree btree.Tree, blobs blobstore.Store, opts Options) *Table {
	if pkName == "" {
		panic(direrrors.NewPrecondition("docengine: pkName must not be empty"))
	}
	return &Table{
		pkName:   pkName,
		tree:     tree,
		blobs:    blobs,
		opts:     opts.EnsureDefaults(),
		m:        metrics.New("docengine"),
		sindexes: make(map[string]*sindexEntry),
	}
}

// Metrics returns the table's Prometheus collectors for registration
// with the embedding application's registerer.
func (t *Table) Metrics() *metrics.Metrics { return t.m }

// PointReadResponse is the response to Get (spec §6).
type PointReadResponse struct {
	Data map[string]interface{} // nil means JSON null: missing row
}

// WriteResult names the outcome of a point Set.
type WriteResult int

const (
	Stored WriteResult = iota
	Duplicate
)

// PointWriteResponse is the response to Set.
type PointWriteResponse struct {
	Result WriteResult
}

// DeleteResult names the outcome of a point Delete.
type DeleteResult int

const (
	Deleted DeleteResult = iota
	Missing
)

// PointDeleteResponse is the response to Delete.
type PointDeleteResponse struct {
	Result DeleteResult
}
