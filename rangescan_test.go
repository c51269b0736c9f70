package docengine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/coldbrewdb/docengine/internal/docio"
)

func insertRows(t *testing.T, tbl *Table, keys []string) {
	t.Helper()
	ctx := context.Background()
	for _, k := range keys {
		_, err := tbl.Set(ctx, []byte(k), docio.Document{"id": k}, true, time.Now())
		require.NoError(t, err)
	}
}

// P6: a scan with no stages and no terminal returns exactly the
// in-range rows in ascending key order.
func TestRangeScanNoTransformReturnsExactMultiset(t *testing.T) {
	tbl := newTestTable(t)
	insertRows(t, tbl, []string{"a", "b", "c", "d", "e"})

	resp := tbl.RangeScan(context.Background(), []byte("b"), []byte("e"), nil, nil)
	require.NoError(t, resp.Err)
	require.False(t, resp.Truncated)
	require.Len(t, resp.Stream, 3)
	require.Equal(t, []byte("b"), resp.Stream[0].Key)
	require.Equal(t, []byte("c"), resp.Stream[1].Key)
	require.Equal(t, []byte("d"), resp.Stream[2].Key)
}

// S5: truncation stops as soon as the cumulative estimate reaches the
// chunk-size bound, reporting the last row actually considered.
func TestRangeScanTruncates(t *testing.T) {
	tbl := newTestTable(t)
	insertRows(t, tbl, []string{"a", "b", "c"})
	tbl.opts.RGetMaxChunkSize = 15
	tbl.opts.EstimateRowSize = func(docio.Document) int { return 10 }

	resp := tbl.RangeScan(context.Background(), nil, nil, nil, nil)
	require.NoError(t, resp.Err)
	require.True(t, resp.Truncated)
	require.Len(t, resp.Stream, 2)
	require.Equal(t, []byte("b"), resp.LastConsideredKey)
}

// P8: reducing RGET_MAX_CHUNK_SIZE cannot produce a longer stream prefix.
func TestRangeScanTruncationMonotone(t *testing.T) {
	tbl := newTestTable(t)
	insertRows(t, tbl, []string{"a", "b", "c", "d", "e"})
	tbl.opts.EstimateRowSize = func(docio.Document) int { return 10 }

	tbl.opts.RGetMaxChunkSize = 45
	big := tbl.RangeScan(context.Background(), nil, nil, nil, nil)

	tbl.opts.RGetMaxChunkSize = 15
	small := tbl.RangeScan(context.Background(), nil, nil, nil, nil)

	require.LessOrEqual(t, len(small.Stream), len(big.Stream))
}

func TestRangeScanWithMapAndFilterStages(t *testing.T) {
	tbl := newTestTable(t)
	insertRows(t, tbl, []string{"a", "b", "c"})

	upper := MapStage(func(d interface{}) (interface{}, error) {
		doc := d.(docio.Document)
		out := docio.Document{}
		for k, v := range doc {
			out[k] = v
		}
		out["tag"] = "seen"
		return out, nil
	})
	onlyB := FilterStage(func(d interface{}) (bool, error) {
		doc := d.(docio.Document)
		return doc["id"] == "b", nil
	})

	resp := tbl.RangeScan(context.Background(), nil, nil, []Stage{upper, onlyB}, nil)
	require.NoError(t, resp.Err)
	require.Len(t, resp.Stream, 1)
	require.Equal(t, "seen", resp.Stream[0].Doc["tag"])
}

func TestRangeScanWithCountTerminal(t *testing.T) {
	tbl := newTestTable(t)
	insertRows(t, tbl, []string{"a", "b", "c"})

	resp := tbl.RangeScan(context.Background(), nil, nil, nil, &CountTerminal{})
	require.NoError(t, resp.Err)
	require.Equal(t, 3, resp.Accumulator)
}

func TestRangeScanPropagatesStageError(t *testing.T) {
	tbl := newTestTable(t)
	insertRows(t, tbl, []string{"a"})

	boom := MapStage(func(interface{}) (interface{}, error) { return nil, errBoom })
	resp := tbl.RangeScan(context.Background(), nil, nil, []Stage{boom}, nil)
	require.ErrorIs(t, resp.Err, errBoom)
}
