package compression

import (
	"fmt"
	"log/slog"

	"github.com/klauspost/compress/zstd"
)

// ZstdCompressor is safe for concurrent use; EncodeAll and DecodeAll share
// the underlying encoder and decoder.
type ZstdCompressor struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func NewZstdCompressor(level zstd.EncoderLevel) (*ZstdCompressor, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level))
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	return &ZstdCompressor{encoder: encoder, decoder: decoder}, nil
}

func (c *ZstdCompressor) Compress(data []byte) ([]byte, error) {
	return c.encoder.EncodeAll(data, nil), nil
}

func (c *ZstdCompressor) Decompress(data []byte) ([]byte, error) {
	return c.decoder.DecodeAll(data, nil)
}

func (c *ZstdCompressor) Name() string {
	return "zstd"
}

func init() {
	c, err := NewZstdCompressor(zstd.SpeedDefault)
	if err != nil {
		slog.Warn("zstd compressor unavailable", "err", err)
		return
	}
	RegisterCompressor("zstd", c)
}
