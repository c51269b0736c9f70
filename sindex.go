package docengine

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/google/uuid"

	"github.com/coldbrewdb/docengine/internal/blobstore"
	"github.com/coldbrewdb/docengine/internal/btree"
	"github.com/coldbrewdb/docengine/internal/direrrors"
	"github.com/coldbrewdb/docengine/internal/docio"
	"github.com/coldbrewdb/docengine/internal/modreport"
)

// IndexFunc is a sindex's indexing function: the serialized
// map-transform that derives an index value from a stored document
// (spec §3). A nil error with a nil interface return means the
// document has no value under this index.
type IndexFunc func(doc docio.Document) (interface{}, error)

// SindexState tracks a sindex's lifecycle: pending until
// post-construction completes, then ready (spec §3).
type SindexState int

const (
	SindexPending SindexState = iota
	SindexReady
)

// SindexDescriptor is the catalogue entry exposed to backfill and to
// callers inspecting sindex state.
type SindexDescriptor struct {
	Name  string
	ID    uuid.UUID
	State SindexState
}

type sindexEntry struct {
	desc SindexDescriptor
	tree btree.Tree
	f    IndexFunc

	mu    sync.Mutex
	state SindexState
}

// distantPast is the write timestamp used for sindex installs, since
// the entry's real recency already lives in the primary tree and the
// sindex entry is derived data (spec §4.8 step 3).
var distantPast = time.Unix(0, 0)

// encodeSecondary builds encode_secondary(index_value, primary_key):
// the indexed value's JSON encoding, length-prefixed, followed by the
// primary key, so that the composite is unique per (value, pk) and
// ordered first by value then by key for any index_value whose JSON
// encoding itself sorts the way the caller needs (e.g. strings, or
// zero-padded numeric encodings supplied by the indexing function).
func encodeSecondary(indexValue interface{}, pk []byte) ([]byte, error) {
	raw, err := json.Marshal(indexValue)
	if err != nil {
		return nil, direrrors.NewUser("sindex: index value does not marshal: %v", err)
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(raw)))
	out := make([]byte, 0, 4+len(raw)+len(pk))
	out = append(out, lenBuf[:]...)
	out = append(out, raw...)
	out = append(out, pk...)
	return out, nil
}

// CreateSindex registers a new sindex in the pending state. Callers
// must follow up with PostConstruct to bring existing rows into it;
// until then, I3 holds only for rows written after this call.
func (t *Table) CreateSindex(name string, tree btree.Tree, f IndexFunc) SindexDescriptor {
	t.mu.Lock()
	defer t.mu.Unlock()
	desc := SindexDescriptor{Name: name, ID: uuid.Must(uuid.NewV7()), State: SindexPending}
	t.sindexes[name] = &sindexEntry{desc: desc, tree: tree, f: f, state: SindexPending}
	return desc
}

// Catalogue returns a snapshot of every sindex's descriptor, used by
// backfill (spec §4.7).
func (t *Table) Catalogue() []SindexDescriptor {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]SindexDescriptor, 0, len(t.sindexes))
	for _, e := range t.sindexes {
		e.mu.Lock()
		d := e.desc
		d.State = e.state
		e.mu.Unlock()
		out = append(out, d)
	}
	return out
}

func (t *Table) activeSindexes() []*sindexEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*sindexEntry, 0, len(t.sindexes))
	for _, e := range t.sindexes {
		out = append(out, e)
	}
	return out
}

// applySindexes fans a modification report out to every sindex in
// parallel under a drain barrier (an errgroup.Group), per spec §4.8.
// A no-op report (neither Deleted nor Added) never reaches this
// method's caller — see pointops.go / replace.go.
func (t *Table) applySindexes(ctx context.Context, report modreport.Report) error {
	if len(report.PrimaryKey) == 0 {
		return direrrors.NewPrecondition("sindex: modification report reaching sindex layer has empty primary key")
	}
	if report.IsNoop() {
		return nil
	}
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for _, e := range t.activeSindexes() {
		e := e
		g.Go(func() error {
			return applyOneSindex(gctx, e, report, t.blobs, t.opts.BlobCodec)
		})
	}
	err := g.Wait()
	t.m.SindexFanoutLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		t.m.SindexFanoutErrors.Inc()
	}
	return err
}

// applyOneSindex implements spec §4.8's per-sindex delete+insert
// sequence. The "chained superblock" the spec describes is, in this
// contract, simply one WriteTxn reused for both steps.
//
// The sindex value is the full row document under the same value
// codec as the primary tree (spec §3): a leaf write allocates its
// blob through blobs the same way installNew does, and a leaf delete
// releases it through docio.Clear the same way removeOld does, rather
// than inlining raw JSON straight into the sindex tree.
func applyOneSindex(ctx context.Context, e *sindexEntry, report modreport.Report, blobs blobstore.Store, codec blobstore.Codec) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	txn := e.tree.Begin()
	if report.Deleted != nil {
		oldVal, err := e.f(report.Deleted)
		if err != nil {
			// A user-defined indexing function's exception propagates
			// to the caller; the primary write already committed.
			return direrrors.NewUser("sindex %s: indexing function failed on deleted doc: %v", e.desc.Name, err)
		}
		if oldVal != nil {
			skOld, err := encodeSecondary(oldVal, report.PrimaryKey)
			if err != nil {
				return err
			}
			if oldRaw, ok := txn.Get(skOld); ok {
				oldLeaf, err := decodeLeaf(oldRaw)
				if err != nil {
					return err
				}
				if err := docio.Clear(oldLeaf, blobs); err != nil {
					return err
				}
			}
			txn.Delete(skOld, distantPast)
		}
	}
	if report.Added != nil {
		newVal, err := e.f(report.Added)
		if err != nil {
			return direrrors.NewUser("sindex %s: indexing function failed on added doc: %v", e.desc.Name, err)
		}
		if newVal != nil {
			skNew, err := encodeSecondary(newVal, report.PrimaryKey)
			if err != nil {
				return err
			}
			newLeaf, err := docio.WriteNew(report.Added, blobs, codec)
			if err != nil {
				return direrrors.NewUser("sindex %s: document does not marshal: %v", e.desc.Name, err)
			}
			txn.Set(skNew, encodeLeaf(newLeaf), distantPast)
		}
	}
	return txn.Commit()
}

// PostConstruct runs the online post-construction traversal of spec
// §4.9: it reads the primary tree under a snapshot, synthesizes a
// (pk, deleted=nil, added=doc) report for every live row as if it had
// just been inserted, and feeds each through the named sindexes. Once
// it returns without error, those sindexes transition to ready.
//
// Interruption is honored via ctx; partial progress from a cancelled
// run is safe to re-run, since writing the same document twice to the
// same sindex key yields the same state (I2).
func (t *Table) PostConstruct(ctx context.Context, names []string) error {
	t.mu.Lock()
	entries := make([]*sindexEntry, 0, len(names))
	for _, n := range names {
		e, ok := t.sindexes[n]
		if !ok {
			t.mu.Unlock()
			return direrrors.NewPrecondition("sindex: unknown sindex %q", n)
		}
		entries = append(entries, e)
	}
	t.mu.Unlock()

	snap := t.tree.ReadSnapshot()
	cur := snap.NewCursor(nil, nil)
	for cur.Next() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		entry := cur.Entry()
		lv, err := decodeLeaf(entry.Value)
		if err != nil {
			return err
		}
		doc, err := docio.Read(lv, t.blobs)
		if err != nil {
			return err
		}
		report := modreport.Report{PrimaryKey: entry.Key, Added: doc}
		g, gctx := errgroup.WithContext(ctx)
		for _, e := range entries {
			e := e
			g.Go(func() error { return applyOneSindex(gctx, e, report, t.blobs, t.opts.BlobCodec) })
		}
		if err := g.Wait(); err != nil {
			return err
		}
		t.m.PostConstructRowsVisited.Inc()
	}

	for _, e := range entries {
		e.mu.Lock()
		e.state = SindexReady
		e.mu.Unlock()
	}
	return nil
}
