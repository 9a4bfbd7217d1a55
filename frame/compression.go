package frame

import (
	"encoding/binary"
	"fmt"

	"github.com/golang/snappy"
	"github.com/pierrec/lz4/v4"
)

// Compressor implements one of the two body compression algorithms
// negotiated during STARTUP (§4.4).
type Compressor interface {
	// Name is the STARTUP COMPRESSION option value, e.g. "lz4" or "snappy".
	Name() string
	Encode(plain []byte) ([]byte, error)
	Decode(compressed []byte) ([]byte, error)
}

// LZ4Compressor implements the "lz4" algorithm: the payload is a 4-byte
// big-endian uncompressed length followed by an LZ4 block.
type LZ4Compressor struct{}

func (LZ4Compressor) Name() string { return "lz4" }

func (LZ4Compressor) Encode(plain []byte) ([]byte, error) {
	out := make([]byte, 4+lz4.CompressBlockBound(len(plain)))
	binary.BigEndian.PutUint32(out[:4], uint32(len(plain)))

	var c lz4.Compressor
	n, err := c.CompressBlock(plain, out[4:])
	if err != nil {
		return nil, fmt.Errorf("%w: lz4 compress: %v", ErrCompression, err)
	}
	if n == 0 && len(plain) > 0 {
		return nil, fmt.Errorf("%w: lz4 compress: incompressible input rejected by block compressor", ErrCompression)
	}
	return out[:4+n], nil
}

func (LZ4Compressor) Decode(compressed []byte) ([]byte, error) {
	if len(compressed) < 4 {
		return nil, fmt.Errorf("%w: lz4 payload shorter than 4-byte length prefix", ErrCompression)
	}
	n := binary.BigEndian.Uint32(compressed[:4])
	out := make([]byte, n)
	if n == 0 {
		return out, nil
	}
	written, err := lz4.UncompressBlock(compressed[4:], out)
	if err != nil {
		return nil, fmt.Errorf("%w: lz4 decompress: %v", ErrCompression, err)
	}
	return out[:written], nil
}

// SnappyCompressor implements the "snappy" algorithm: a raw Snappy
// block, no extra framing.
type SnappyCompressor struct{}

func (SnappyCompressor) Name() string { return "snappy" }

func (SnappyCompressor) Encode(plain []byte) ([]byte, error) {
	return snappy.Encode(nil, plain), nil
}

func (SnappyCompressor) Decode(compressed []byte) ([]byte, error) {
	out, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, fmt.Errorf("%w: snappy decompress: %v", ErrCompression, err)
	}
	return out, nil
}

// ErrCompression covers encode/decode failure of the negotiated codec (§7).
var ErrCompression = fmt.Errorf("frame: compression codec failure")
