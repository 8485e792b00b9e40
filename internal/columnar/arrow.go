// Package columnar exports CSV payloads as Apache Arrow IPC streams, one
// field per schema column.
package columnar

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/ivan-cunha/kobuta/internal/encoding"
	"github.com/ivan-cunha/kobuta/internal/schema"
	"github.com/ivan-cunha/kobuta/internal/storage"
	"github.com/ivan-cunha/kobuta/pkg/types"
)

const DefaultBatchSize = 64 * 1024

// Metadata key carrying the kobuta schema text on the Arrow schema.
const MetaSchema = "kobuta.schema"

// ArrowType maps a column type to its Arrow equivalent.
func ArrowType(dt types.DataType) (arrow.DataType, error) {
	switch dt {
	case types.Int32Type:
		return arrow.PrimitiveTypes.Int32, nil
	case types.Float32Type:
		return arrow.PrimitiveTypes.Float32, nil
	default:
		return nil, types.NewError(types.KindUnknownDataType, 0, "no arrow type for data type %d", int(dt))
	}
}

// ArrowSchema builds the Arrow schema for s. Missing names become column_N.
func ArrowSchema(s types.Schema, names []string) (*arrow.Schema, error) {
	fields := make([]arrow.Field, len(s.Columns))
	for i, col := range s.Columns {
		dt, err := ArrowType(col.Type)
		if err != nil {
			return nil, err
		}
		name := fmt.Sprintf("column_%d", i+1)
		if i < len(names) && names[i] != "" {
			name = names[i]
		}
		fields[i] = arrow.Field{Name: name, Type: dt, Nullable: col.Nullable}
	}
	meta := arrow.NewMetadata([]string{MetaSchema}, []string{s.String()})
	return arrow.NewSchema(fields, &meta), nil
}

// Exporter writes CSV rows as Arrow record batches.
type Exporter struct {
	Separator byte
	// SkipHeader uses the first non-blank row as field names.
	SkipHeader bool
	// BatchSize caps the rows per record batch. Zero means DefaultBatchSize.
	BatchSize int
	// Compress enables zstd buffer compression in the IPC stream.
	Compress  bool
	Allocator memory.Allocator
}

// Export writes every row of input to w as an Arrow IPC stream and returns
// the number of rows written. Rows are validated exactly as by
// storage.Encoder.
func (e *Exporter) Export(w io.Writer, input []byte, s types.Schema) (int, error) {
	if err := schema.Validate(s); err != nil {
		return 0, err
	}

	mem := e.Allocator
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	batchSize := e.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	scanner := storage.NewRowScanner(input, e.Separator)
	fields := make([][]byte, 0, len(s.Columns))
	offsets := make([]int, 0, len(s.Columns))

	var names []string
	if e.SkipHeader && scanner.Next() {
		header, _, err := scanner.Fields(len(s.Columns), nil, nil)
		if err != nil {
			return 0, err
		}
		for _, h := range header {
			names = append(names, string(h))
		}
	}

	arrowSchema, err := ArrowSchema(s, names)
	if err != nil {
		return 0, err
	}

	opts := []ipc.Option{ipc.WithSchema(arrowSchema), ipc.WithAllocator(mem)}
	if e.Compress {
		opts = append(opts, ipc.WithZstd())
	}
	writer := ipc.NewWriter(w, opts...)

	builder := array.NewRecordBuilder(mem, arrowSchema)
	defer builder.Release()

	rows, pending := 0, 0
	flush := func() error {
		rec := builder.NewRecord()
		defer rec.Release()
		if err := writer.Write(rec); err != nil {
			return fmt.Errorf("writing record batch: %w", err)
		}
		slog.Debug("columnar: wrote batch", "rows", rec.NumRows())
		pending = 0
		return nil
	}

	for scanner.Next() {
		fields, offsets, err = scanner.Fields(len(s.Columns), fields[:0], offsets[:0])
		if err != nil {
			writer.Close()
			return rows, err
		}
		for i, col := range s.Columns {
			if err := appendField(builder.Field(i), col, fields[i]); err != nil {
				writer.Close()
				return rows, storage.AtField(err, scanner.Line(), i+1, offsets[i])
			}
		}
		rows++
		pending++
		if pending == batchSize {
			if err := flush(); err != nil {
				writer.Close()
				return rows, err
			}
		}
	}

	if pending > 0 || rows == 0 {
		if err := flush(); err != nil {
			writer.Close()
			return rows, err
		}
	}
	if err := writer.Close(); err != nil {
		return rows, fmt.Errorf("closing IPC writer: %w", err)
	}
	return rows, nil
}

func appendField(b array.Builder, col types.Column, field []byte) error {
	null, err := storage.CheckNull(col, field)
	if err != nil {
		return err
	}
	if null {
		b.AppendNull()
		return nil
	}

	v, err := encoding.Parse(col.Type, string(field))
	if err != nil {
		return err
	}
	switch fb := b.(type) {
	case *array.Int32Builder:
		fb.Append(v.Int32())
	case *array.Float32Builder:
		fb.Append(v.Float32())
	default:
		return fmt.Errorf("unexpected builder %T for %s column", b, col.Type)
	}
	return nil
}
