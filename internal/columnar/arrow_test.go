package columnar

import (
	"bytes"
	"errors"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/ivan-cunha/kobuta/internal/schema"
	"github.com/ivan-cunha/kobuta/pkg/types"
)

func readAll(t *testing.T, data []byte) (*arrow.Schema, []arrow.Record) {
	t.Helper()

	reader, err := ipc.NewReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ipc.NewReader: %v", err)
	}
	defer reader.Release()

	var records []arrow.Record
	for reader.Next() {
		rec := reader.Record()
		rec.Retain()
		records = append(records, rec)
	}
	if err := reader.Err(); err != nil {
		t.Fatalf("reading stream: %v", err)
	}
	return reader.Schema(), records
}

func TestExport(t *testing.T) {
	t.Parallel()

	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	s := schema.MustParse("Int32, Float32 Nullable")
	input := []byte("id,score\n1,0.5\n2,\n3,-1.25\n")

	var buf bytes.Buffer
	e := Exporter{SkipHeader: true, BatchSize: 2, Allocator: mem}
	rows, err := e.Export(&buf, input, s)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if rows != 3 {
		t.Fatalf("rows = %d, want 3", rows)
	}

	got, records := readAll(t, buf.Bytes())
	defer func() {
		for _, rec := range records {
			rec.Release()
		}
	}()

	if got.Field(0).Name != "id" || got.Field(1).Name != "score" {
		t.Fatalf("field names = %q, %q", got.Field(0).Name, got.Field(1).Name)
	}
	if !got.Field(1).Nullable || got.Field(0).Nullable {
		t.Fatal("field nullability does not follow the schema")
	}
	if text, ok := got.Metadata().GetValue(MetaSchema); !ok || text != s.String() {
		t.Fatalf("schema metadata = %q, %v", text, ok)
	}
	if len(records) != 2 {
		t.Fatalf("batches = %d, want 2", len(records))
	}

	var ids []int32
	var scores []float32
	var valid []bool
	for _, rec := range records {
		idCol := rec.Column(0).(*array.Int32)
		scoreCol := rec.Column(1).(*array.Float32)
		for i := 0; i < int(rec.NumRows()); i++ {
			ids = append(ids, idCol.Value(i))
			scores = append(scores, scoreCol.Value(i))
			valid = append(valid, scoreCol.IsValid(i))
		}
	}

	wantIDs := []int32{1, 2, 3}
	wantValid := []bool{true, false, true}
	for i := range wantIDs {
		if ids[i] != wantIDs[i] || valid[i] != wantValid[i] {
			t.Fatalf("row %d = (%d, valid %v), want (%d, valid %v)", i, ids[i], valid[i], wantIDs[i], wantValid[i])
		}
	}
	if scores[0] != 0.5 || scores[2] != -1.25 {
		t.Fatalf("scores = %v", scores)
	}
}

func TestExportCompressedDefaultNames(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	e := Exporter{Compress: true}
	rows, err := e.Export(&buf, bytes.Repeat([]byte("7\n"), 1000), schema.MustParse("Int32"))
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if rows != 1000 {
		t.Fatalf("rows = %d, want 1000", rows)
	}

	got, records := readAll(t, buf.Bytes())
	defer func() {
		for _, rec := range records {
			rec.Release()
		}
	}()
	if got.Field(0).Name != "column_1" {
		t.Fatalf("field name = %q, want column_1", got.Field(0).Name)
	}
	if len(records) != 1 || records[0].NumRows() != 1000 {
		t.Fatalf("unexpected batches %d", len(records))
	}
}

func TestExportEmptyInputWritesSchema(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	var e Exporter
	if _, err := e.Export(&buf, nil, schema.MustParse("Float32")); err != nil {
		t.Fatalf("Export: %v", err)
	}
	got, records := readAll(t, buf.Bytes())
	for _, rec := range records {
		rec.Release()
	}
	if got.NumFields() != 1 {
		t.Fatalf("fields = %d, want 1", got.NumFields())
	}
}

func TestExportErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		kind  error
	}{
		{name: "badValue", input: "1,x\n", kind: types.ErrScalarParse},
		{name: "nullInRequired", input: ",1\n", kind: types.ErrNullNotAllowed},
		{name: "fieldCount", input: "1\n", kind: types.ErrFieldCountMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var e Exporter
			_, err := e.Export(&bytes.Buffer{}, []byte(tt.input), schema.MustParse("Int32, Float32"))
			if !errors.Is(err, tt.kind) {
				t.Fatalf("Export error = %v, want %v", err, tt.kind)
			}
		})
	}
}

func TestArrowTypeUnknown(t *testing.T) {
	t.Parallel()

	if _, err := ArrowType(types.DataType(5)); !errors.Is(err, types.ErrUnknownDataType) {
		t.Fatalf("ArrowType error = %v, want ErrUnknownDataType", err)
	}
}
