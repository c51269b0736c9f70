package modreport

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestRoundTrip approximates property P7: encode -> decode -> encode
// is bit-identical.
func TestRoundTrip(t *testing.T) {
	cases := []Report{
		{PrimaryKey: []byte("k1"), Added: map[string]interface{}{"id": "k1", "a": float64(1)}},
		{PrimaryKey: []byte("k2"), Deleted: map[string]interface{}{"id": "k2"}},
		{PrimaryKey: []byte("k3"),
			Deleted: map[string]interface{}{"id": "k3", "v": float64(1)},
			Added:   map[string]interface{}{"id": "k3", "v": float64(2)}},
		{PrimaryKey: []byte("k4")}, // no-op
	}
	for _, r := range cases {
		b1, err := Encode(r)
		require.NoError(t, err)

		decoded, err := Decode(b1)
		require.NoError(t, err)
		require.Equal(t, r.PrimaryKey, decoded.PrimaryKey)
		require.Equal(t, r.Deleted, decoded.Deleted)
		require.Equal(t, r.Added, decoded.Added)

		b2, err := Encode(decoded)
		require.NoError(t, err)
		require.Equal(t, b1, b2)
	}
}

func TestDecodeRejectsUnknownTag(t *testing.T) {
	b, err := Encode(Report{PrimaryKey: []byte("k")})
	require.NoError(t, err)
	b[len(b)-1] = 0x7f // corrupt the added_tag byte
	_, err = Decode(b)
	require.Error(t, err)
}

func TestIsNoop(t *testing.T) {
	require.True(t, Report{PrimaryKey: []byte("k")}.IsNoop())
	require.False(t, Report{PrimaryKey: []byte("k"), Added: map[string]interface{}{"id": "k"}}.IsNoop())
}

// Truncated framing must fail decode cleanly rather than silently
// yielding a short or zero-padded buffer.
func TestDecodeRejectsTruncatedBuffer(t *testing.T) {
	r := Report{
		PrimaryKey: []byte("k1"),
		Added:      map[string]interface{}{"id": "k1", "a": float64(1)},
	}
	b, err := Encode(r)
	require.NoError(t, err)

	for cut := 1; cut < len(b); cut++ {
		_, err := Decode(b[:cut])
		require.Error(t, err, "truncating to %d of %d bytes should fail decode", cut, len(b))
	}
}
