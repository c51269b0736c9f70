package docengine

import (
	"bytes"
	"context"

	"github.com/coldbrewdb/docengine/internal/docio"
)

// Stage is one transform-pipeline stage: map, filter, or concatmap,
// implemented as a tagged sum with a per-variant evaluator (spec §9)
// rather than an open-ended interface hierarchy of stage kinds.
type Stage struct {
	kind      stageKind
	mapFn     func(interface{}) (interface{}, error)
	filterFn  func(interface{}) (bool, error)
	concatFn  func(interface{}) ([]interface{}, error)
}

type stageKind int

const (
	stageMap stageKind = iota
	stageFilter
	stageConcatMap
)

func MapStage(fn func(interface{}) (interface{}, error)) Stage {
	return Stage{kind: stageMap, mapFn: fn}
}

func FilterStage(fn func(interface{}) (bool, error)) Stage {
	return Stage{kind: stageFilter, filterFn: fn}
}

func ConcatMapStage(fn func(interface{}) ([]interface{}, error)) Stage {
	return Stage{kind: stageConcatMap, concatFn: fn}
}

// apply flat-maps s over data, replacing it the way spec §4.4
// describes: "replace data with the flat-mapped result of applying t
// to each element."
func (s Stage) apply(data []interface{}) ([]interface{}, error) {
	out := make([]interface{}, 0, len(data))
	for _, d := range data {
		switch s.kind {
		case stageMap:
			v, err := s.mapFn(d)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		case stageFilter:
			keep, err := s.filterFn(d)
			if err != nil {
				return nil, err
			}
			if keep {
				out = append(out, d)
			}
		case stageConcatMap:
			vs, err := s.concatFn(d)
			if err != nil {
				return nil, err
			}
			out = append(out, vs...)
		}
	}
	return out, nil
}

// Terminal is a range scan's final reducer: count, reduce, or
// group-by-reduce. Datum-map terminals (GroupByReduceTerminal)
// implement Compact themselves; the scan engine calls it every row
// for simple accumulators and, for datum-map ones, whenever
// ShouldCompact reports that the compactEvery rows given to
// NewGroupByReduceTerminal have accumulated (spec §4.4).
type Terminal interface {
	Feed(doc interface{}) error
	Compact()
	Finalize() (interface{}, error)
}

// CountTerminal counts rows reaching it after the transform chain.
type CountTerminal struct{ n int }

func (c *CountTerminal) Feed(interface{}) error { c.n++; return nil }
func (c *CountTerminal) Compact()                {}
func (c *CountTerminal) Finalize() (interface{}, error) { return c.n, nil }

// ReduceTerminal folds each element into a single accumulator via fn.
type ReduceTerminal struct {
	Fn  func(acc, doc interface{}) (interface{}, error)
	acc interface{}
	has bool
}

func (r *ReduceTerminal) Feed(doc interface{}) error {
	if !r.has {
		r.acc, r.has = doc, true
		return nil
	}
	v, err := r.Fn(r.acc, doc)
	if err != nil {
		return err
	}
	r.acc = v
	return nil
}
func (r *ReduceTerminal) Compact() {}
func (r *ReduceTerminal) Finalize() (interface{}, error) {
	if !r.has {
		return nil, nil
	}
	return r.acc, nil
}

// GroupByReduceTerminal is the datum-map terminal spec §4.4 singles
// out for expensive compaction: it groups by KeyFn's result and folds
// each group with ReduceFn, only attempting compaction of the group
// map every compactEvery rows since materializing it is expensive.
type GroupByReduceTerminal struct {
	KeyFn    func(interface{}) (interface{}, error)
	ReduceFn func(acc, doc interface{}) (interface{}, error)

	compactEvery int
	groups       map[string]interface{}
	order        []string
	sinceCompact int
}

// NewGroupByReduceTerminal constructs a GroupByReduceTerminal with the
// given compaction cadence (spec's COMPACT_EVERY, default 10000).
func NewGroupByReduceTerminal(keyFn func(interface{}) (interface{}, error), reduceFn func(acc, doc interface{}) (interface{}, error), compactEvery int) *GroupByReduceTerminal {
	if compactEvery <= 0 {
		compactEvery = defaultCompactEvery
	}
	return &GroupByReduceTerminal{KeyFn: keyFn, ReduceFn: reduceFn, compactEvery: compactEvery, groups: make(map[string]interface{})}
}

func (g *GroupByReduceTerminal) Feed(doc interface{}) error {
	k, err := g.KeyFn(doc)
	if err != nil {
		return err
	}
	sk := formatPKForError(k)
	acc, ok := g.groups[sk]
	if !ok {
		g.groups[sk] = doc
		g.order = append(g.order, sk)
	} else {
		v, err := g.ReduceFn(acc, doc)
		if err != nil {
			return err
		}
		g.groups[sk] = v
	}
	g.sinceCompact++
	return nil
}

// Compact is a no-op materialization checkpoint: because rebuilding
// the group map is expensive, it is only meaningful to call this
// every compactEvery rows, which RangeScan enforces on our behalf.
func (g *GroupByReduceTerminal) Compact() {
	g.sinceCompact = 0
}

// ShouldCompact reports whether enough rows have accumulated since
// the last Compact to warrant another attempt.
func (g *GroupByReduceTerminal) ShouldCompact() bool {
	return g.sinceCompact >= g.compactEvery
}

func (g *GroupByReduceTerminal) Finalize() (interface{}, error) {
	out := make(map[string]interface{}, len(g.groups))
	for _, k := range g.order {
		out[k] = g.groups[k]
	}
	return out, nil
}

// RGetReadResponse is the response to RangeScan (spec §6).
type RGetReadResponse struct {
	Stream            []KeyedDoc
	Accumulator       interface{}
	LastConsideredKey []byte
	Truncated         bool
	Err               error
}

// KeyedDoc pairs a document with the key it was read from.
type KeyedDoc struct {
	Key []byte
	Doc docio.Document
}

// RangeScan traverses [lower, upper) in ascending key order, feeding
// each document through stages and either streaming the result (no
// terminal) or folding it into terminal, per spec §4.4.
func (t *Table) RangeScan(ctx context.Context, lower, upper []byte, stages []Stage, terminal Terminal) RGetReadResponse {
	snap := t.tree.ReadSnapshot()
	cur := snap.NewCursor(lower, upper)

	resp := RGetReadResponse{}
	var totalEstimate int
	var rowsSinceCompact int

	for cur.Next() {
		select {
		case <-ctx.Done():
			resp.Err = ctx.Err()
			return resp
		default:
		}
		entry := cur.Entry()
		if bytes.Compare(entry.Key, resp.LastConsideredKey) > 0 {
			resp.LastConsideredKey = append([]byte(nil), entry.Key...)
		}

		lv, err := decodeLeaf(entry.Value)
		if err != nil {
			resp.Err = err
			return resp
		}
		doc, err := t.readDocGated(ctx, lv)
		if err != nil {
			resp.Err = err
			return resp
		}

		data := []interface{}{docio.Document(doc)}
		for _, s := range stages {
			data, err = s.apply(data)
			if err != nil {
				resp.Err = err
				return resp
			}
		}

		if terminal == nil {
			for _, d := range data {
				doc, _ := d.(docio.Document)
				resp.Stream = append(resp.Stream, KeyedDoc{Key: append([]byte(nil), entry.Key...), Doc: doc})
				totalEstimate += t.opts.EstimateRowSize(doc)
			}
			if totalEstimate >= t.opts.RGetMaxChunkSize {
				resp.Truncated = true
				t.m.RangeScanTruncated.Inc()
				return resp
			}
			continue
		}

		for _, d := range data {
			if err := terminal.Feed(d); err != nil {
				resp.Err = err
				return resp
			}
		}
		rowsSinceCompact++
		if g, ok := terminal.(*GroupByReduceTerminal); ok {
			if g.ShouldCompact() {
				g.Compact()
				rowsSinceCompact = 0
			}
		} else {
			terminal.Compact()
			rowsSinceCompact = 0
		}
	}

	if terminal != nil {
		acc, err := terminal.Finalize()
		if err != nil {
			resp.Err = err
			return resp
		}
		resp.Accumulator = acc
	}
	return resp
}
