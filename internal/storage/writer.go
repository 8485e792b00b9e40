package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/ivan-cunha/kobuta/internal/compression"
	"github.com/ivan-cunha/kobuta/internal/encoding"
	"github.com/ivan-cunha/kobuta/pkg/types"
)

var ErrCountMismatch = errors.New("null counts do not match schema")

// Writer frames an encoded payload as a container file.
type Writer struct {
	w          io.Writer
	schema     types.Schema
	compressor compression.Compressor
	now        func() time.Time
}

func NewWriter(w io.Writer, schema types.Schema, compressor compression.Compressor) *Writer {
	return &Writer{
		w:          w,
		schema:     schema,
		compressor: compressor,
		now:        time.Now,
	}
}

// Write stores payload, which must hold res.Written bytes produced by an
// Encoder under the writer's schema.
func (w *Writer) Write(payload []byte, res Result) error {
	if len(res.NullCounts) != len(w.schema.Columns) {
		return fmt.Errorf("%w: %d counts for %d columns", ErrCountMismatch, len(res.NullCounts), len(w.schema.Columns))
	}

	codec := w.compressor.Name()
	if len(codec) > math.MaxUint8 {
		return fmt.Errorf("codec name %q too long", codec)
	}
	schemaText := w.schema.String()

	stored, err := w.compressor.Compress(payload)
	if err != nil {
		return fmt.Errorf("compression with %s failed: %w", codec, err)
	}

	header := encoding.FileHeader{
		Magic:       encoding.MagicNumber,
		Version:     encoding.Version,
		CodecLen:    uint8(len(codec)),
		SchemaLen:   uint32(len(schemaText)),
		ColumnCount: uint32(len(w.schema.Columns)),
		RowCount:    uint64(res.Rows),
		PayloadLen:  uint64(len(payload)),
		StoredLen:   uint64(len(stored)),
		Created:     w.now().Unix(),
	}

	if err := encoding.WriteHeader(w.w, header); err != nil {
		return err
	}
	if _, err := io.WriteString(w.w, codec); err != nil {
		return fmt.Errorf("failed to write codec name: %w", err)
	}
	if _, err := io.WriteString(w.w, schemaText); err != nil {
		return fmt.Errorf("failed to write schema: %w", err)
	}
	if err := binary.Write(w.w, binary.BigEndian, res.NullCounts); err != nil {
		return fmt.Errorf("failed to write null counts: %w", err)
	}

	slog.Debug("writing payload", "codec", codec, "payload_len", len(payload), "stored_len", len(stored))
	if _, err := w.w.Write(stored); err != nil {
		return fmt.Errorf("failed to write payload: %w", err)
	}
	return nil
}
