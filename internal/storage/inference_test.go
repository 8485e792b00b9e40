package storage

import (
	"errors"
	"testing"

	"github.com/ivan-cunha/kobuta/pkg/types"
)

func TestInferSchema(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		input      string
		skipHeader bool
		sample     int
		want       string
	}{
		{name: "intsAndFloats", input: "1,2.5\n3,4\n", want: "Int32, Float32"},
		{name: "nulls", input: "1,\n,2\n", want: "Int32 Nullable, Int32 Nullable"},
		{name: "header", input: "id,score\n1,0.5\n2,NA\n", skipHeader: true, want: "Int32, Float32 Nullable"},
		{name: "bigIntegerIsFloat", input: "1\n3000000000\n", want: "Float32"},
		{name: "sampleLimit", input: "1\n2\n3.5\n", sample: 2, want: "Int32"},
		{name: "onlyNulls", input: "null\n\t\nNA\n", want: "Int32 Nullable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := InferSchema([]byte(tt.input), ',', tt.skipHeader, tt.sample)
			if err != nil {
				t.Fatalf("InferSchema error: %v", err)
			}
			if got.String() != tt.want {
				t.Fatalf("InferSchema = %q, want %q", got.String(), tt.want)
			}
		})
	}
}

func TestInferSchemaEncodesItsSample(t *testing.T) {
	t.Parallel()

	input := []byte("a,b,c\n1,2.5,\n-4,1e3,7\n")
	s, err := InferSchema(input, ',', true, 0)
	if err != nil {
		t.Fatalf("InferSchema error: %v", err)
	}
	enc := Encoder{SkipHeader: true}
	res, err := enc.Encode(input, s, make([]byte, 64))
	if err != nil {
		t.Fatalf("Encode with inferred schema %q: %v", s, err)
	}
	if res.Rows != 2 {
		t.Fatalf("rows = %d, want 2", res.Rows)
	}
}

func TestInferSchemaErrors(t *testing.T) {
	t.Parallel()

	if _, err := InferSchema([]byte("\n\n"), ',', false, 0); !errors.Is(err, ErrNoRows) {
		t.Fatalf("blank input error = %v, want ErrNoRows", err)
	}
	if _, err := InferSchema([]byte("a,b\n"), ',', true, 0); !errors.Is(err, ErrNoRows) {
		t.Fatalf("header only error = %v, want ErrNoRows", err)
	}
	if _, err := InferSchema([]byte("1,2\n3\n"), ',', false, 0); !errors.Is(err, types.ErrFieldCountMismatch) {
		t.Fatalf("ragged input error = %v, want ErrFieldCountMismatch", err)
	}
	if _, err := InferSchema([]byte("1,abc\n"), ',', false, 0); err == nil {
		t.Fatal("InferSchema accepted a text column")
	}
	if _, err := InferSchema([]byte("1_000\n0x1p-2\n"), ',', false, 0); err == nil {
		t.Fatal("InferSchema accepted Go number literals as numeric")
	}
}
