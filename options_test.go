package docengine

import (
	"context"
	"testing"

	"github.com/cockroachdb/crlib/fifo"
	"github.com/stretchr/testify/require"
)

func TestBlobReadSemaGatesRangeScan(t *testing.T) {
	tbl := newTestTable(t)
	insertRows(t, tbl, []string{"a", "b", "c"})
	tbl.opts.BlobReadSema = fifo.NewSemaphore(1)

	resp := tbl.RangeScan(context.Background(), nil, nil, nil, nil)
	require.NoError(t, resp.Err)
	require.Len(t, resp.Stream, 3)
}

func TestBlobReadSemaAbortsOnCancelledContext(t *testing.T) {
	tbl := newTestTable(t)
	insertRows(t, tbl, []string{"a"})
	tbl.opts.BlobReadSema = fifo.NewSemaphore(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp := tbl.RangeScan(ctx, nil, nil, nil, nil)
	require.Error(t, resp.Err)
}
