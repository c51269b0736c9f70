//go:build !cgo

package blobstore

import "github.com/klauspost/compress/zstd"

const usingCgoZstd = false

func encodeZstd(data []byte) []byte {
	enc, _ := zstd.NewWriter(nil)
	defer enc.Close()
	return enc.EncodeAll(data, nil)
}

func decodeZstd(data []byte, decodedLen int) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(data, make([]byte, 0, decodedLen))
}
