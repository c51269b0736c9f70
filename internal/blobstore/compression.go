package blobstore

import (
	"github.com/golang/snappy"

	"github.com/coldbrewdb/docengine/internal/direrrors"
)

func compress(codec Codec, data []byte) ([]byte, error) {
	switch codec {
	case CodecNone:
		return data, nil
	case CodecSnappy:
		return snappy.Encode(nil, data), nil
	case CodecZstd:
		return encodeZstd(data), nil
	default:
		return nil, direrrors.NewCorruption("blobstore: unknown codec %d", codec)
	}
}

func decompress(codec Codec, data []byte, decodedLen int) ([]byte, error) {
	switch codec {
	case CodecNone:
		return data, nil
	case CodecSnappy:
		buf := make([]byte, 0, decodedLen)
		return snappy.Decode(buf, data)
	case CodecZstd:
		return decodeZstd(data, decodedLen)
	default:
		return nil, direrrors.NewCorruption("blobstore: unknown codec %d", codec)
	}
}
