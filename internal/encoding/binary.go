package encoding

import (
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
)

const (
	MagicNumber = 0x4B425400 // "KBT\0"
	Version     = 1
)

// FileHeader opens every container file. It is followed by the codec name,
// the schema text, one uint64 null count per column and the stored payload.
type FileHeader struct {
	Magic       uint32
	Version     uint16
	CodecLen    uint8
	_           uint8
	SchemaLen   uint32
	ColumnCount uint32
	RowCount    uint64
	PayloadLen  uint64 // uncompressed payload size
	StoredLen   uint64 // payload size on disk
	Created     int64
}

// HeaderSize is the encoded size of FileHeader.
var HeaderSize = binary.Size(FileHeader{})

func WriteHeader(w io.Writer, header FileHeader) error {
	slog.Debug("writing header",
		"magic", fmt.Sprintf("%x", header.Magic),
		"version", header.Version,
		"schema_len", header.SchemaLen,
		"rows", header.RowCount,
		"columns", header.ColumnCount)

	if err := binary.Write(w, binary.BigEndian, header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	return nil
}

func ReadHeader(r io.Reader) (FileHeader, error) {
	var header FileHeader
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return header, fmt.Errorf("failed to read header: %w", err)
	}

	slog.Debug("read header",
		"magic", fmt.Sprintf("%x", header.Magic),
		"version", header.Version,
		"schema_len", header.SchemaLen,
		"rows", header.RowCount,
		"columns", header.ColumnCount)

	if header.Magic != MagicNumber {
		return header, fmt.Errorf("invalid magic number: expected %x, got %x", MagicNumber, header.Magic)
	}
	if header.Version != Version {
		return header, fmt.Errorf("unsupported version %d", header.Version)
	}
	return header, nil
}
