package compression

import (
	"fmt"

	"github.com/golang/snappy"
)

// MaxDecodedLen bounds the payload size a container may declare.
const MaxDecodedLen = 1 << 30

// SnappyCompressor uses the snappy block format, not the framed stream.
type SnappyCompressor struct{}

func NewSnappyCompressor() *SnappyCompressor {
	return &SnappyCompressor{}
}

func (c *SnappyCompressor) Name() string {
	return "snappy"
}

func (c *SnappyCompressor) Compress(data []byte) ([]byte, error) {
	if len(data) > MaxDecodedLen {
		return nil, fmt.Errorf("snappy: %d byte payload exceeds limit", len(data))
	}
	return snappy.Encode(nil, data), nil
}

func (c *SnappyCompressor) Decompress(data []byte) ([]byte, error) {
	n, err := snappy.DecodedLen(data)
	if err != nil {
		return nil, err
	}
	if n > MaxDecodedLen {
		return nil, fmt.Errorf("snappy: declared length %d exceeds limit", n)
	}
	return snappy.Decode(make([]byte, n), data)
}

func init() {
	RegisterCompressor("snappy", NewSnappyCompressor())
}
