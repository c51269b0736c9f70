package docio

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coldbrewdb/docengine/internal/blobstore"
)

func TestWriteNewReadRoundTrip(t *testing.T) {
	store := blobstore.NewMemStore()
	doc := Document{"id": float64(1), "a": "hello"}

	lv, err := WriteNew(doc, store, blobstore.CodecNone)
	require.NoError(t, err)

	got, err := Read(lv, store)
	require.NoError(t, err)
	require.Equal(t, doc, got)

	require.NoError(t, Clear(lv, store))
	_, err = Read(lv, store)
	require.Error(t, err)
}
