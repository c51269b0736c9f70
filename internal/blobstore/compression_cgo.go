//go:build cgo

package blobstore

import "github.com/DataDog/zstd"

const usingCgoZstd = true

func encodeZstd(data []byte) []byte {
	out, err := zstd.CompressLevel(nil, data, 3)
	if err != nil {
		// zstd only errors on invalid levels; 3 is always valid.
		panic(err)
	}
	return out
}

func decodeZstd(data []byte, decodedLen int) ([]byte, error) {
	return zstd.Decompress(make([]byte, 0, decodedLen), data)
}
