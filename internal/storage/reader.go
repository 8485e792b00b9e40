package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/ivan-cunha/kobuta/internal/compression"
	"github.com/ivan-cunha/kobuta/internal/encoding"
	"github.com/ivan-cunha/kobuta/internal/schema"
	"github.com/ivan-cunha/kobuta/pkg/types"
)

var (
	ErrColumnCount   = errors.New("column count does not match schema")
	ErrPayloadLength = errors.New("payload length mismatch")
)

type FileInfo struct {
	Version    uint16
	Created    int64
	Codec      string
	Schema     types.Schema
	RowCount   uint64
	PayloadLen uint64
	StoredLen  uint64
	Columns    []ColumnMetadata
}

// Reader reads a container file produced by Writer.
type Reader struct {
	r      io.Reader
	header encoding.FileHeader
	info   FileInfo
	read   bool
}

func NewReader(r io.Reader) (*Reader, error) {
	header, err := encoding.ReadHeader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	codec := make([]byte, header.CodecLen)
	if _, err := io.ReadFull(r, codec); err != nil {
		return nil, fmt.Errorf("failed to read codec name: %w", err)
	}

	schemaText := make([]byte, header.SchemaLen)
	if _, err := io.ReadFull(r, schemaText); err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}
	fileSchema, err := schema.Parse(string(schemaText))
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored schema: %w", err)
	}
	if uint32(fileSchema.Len()) != header.ColumnCount {
		return nil, fmt.Errorf("%w: header has %d, schema has %d", ErrColumnCount, header.ColumnCount, fileSchema.Len())
	}

	nullCounts := make([]uint64, header.ColumnCount)
	if err := binary.Read(r, binary.BigEndian, nullCounts); err != nil {
		return nil, fmt.Errorf("failed to read null counts: %w", err)
	}

	slog.Debug("opened container", "codec", string(codec), "schema", fileSchema.String(), "rows", header.RowCount)

	return &Reader{
		r:      r,
		header: header,
		info: FileInfo{
			Version:    header.Version,
			Created:    header.Created,
			Codec:      string(codec),
			Schema:     fileSchema,
			RowCount:   header.RowCount,
			PayloadLen: header.PayloadLen,
			StoredLen:  header.StoredLen,
			Columns:    columnMetadata(fileSchema, nullCounts),
		},
	}, nil
}

func (r *Reader) GetFileInfo() FileInfo {
	return r.info
}

// ReadPayload returns the decompressed payload. It can be called once.
func (r *Reader) ReadPayload() ([]byte, error) {
	if r.read {
		return nil, errors.New("payload already read")
	}
	r.read = true

	compressor, err := compression.GetCompressor(r.info.Codec)
	if err != nil {
		return nil, fmt.Errorf("codec %q: %w", r.info.Codec, err)
	}

	stored := make([]byte, r.header.StoredLen)
	if _, err := io.ReadFull(r.r, stored); err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}

	payload, err := compressor.Decompress(stored)
	if err != nil {
		return nil, fmt.Errorf("decompression failed: %w", err)
	}
	if uint64(len(payload)) != r.header.PayloadLen {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrPayloadLength, r.header.PayloadLen, len(payload))
	}
	return payload, nil
}
