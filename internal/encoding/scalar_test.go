package encoding

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/ivan-cunha/kobuta/pkg/types"
)

func TestParseValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		dt   types.DataType
		text string
		want types.Value
	}{
		{name: "int", dt: types.Int32Type, text: "42", want: types.Int32Value(42)},
		{name: "negativeInt", dt: types.Int32Type, text: "-17", want: types.Int32Value(-17)},
		{name: "plusInt", dt: types.Int32Type, text: "+3", want: types.Int32Value(3)},
		{name: "minInt", dt: types.Int32Type, text: "-2147483648", want: types.Int32Value(math.MinInt32)},
		{name: "maxInt", dt: types.Int32Type, text: "2147483647", want: types.Int32Value(math.MaxInt32)},
		{name: "float", dt: types.Float32Type, text: "3.5", want: types.Float32Value(3.5)},
		{name: "floatExponent", dt: types.Float32Type, text: "1e3", want: types.Float32Value(1000)},
		{name: "floatInteger", dt: types.Float32Type, text: "-8", want: types.Float32Value(-8)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Parse(tt.dt, tt.text)
			if err != nil {
				t.Fatalf("Parse(%s, %q) error: %v", tt.dt, tt.text, err)
			}
			if got != tt.want {
				t.Fatalf("Parse(%s, %q) = %+v, want %+v", tt.dt, tt.text, got, tt.want)
			}
		})
	}
}

func TestParseInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		dt   types.DataType
		text string
	}{
		{name: "empty", dt: types.Int32Type, text: ""},
		{name: "leadingSpace", dt: types.Int32Type, text: " 1"},
		{name: "trailingSpace", dt: types.Float32Type, text: "1.0 "},
		{name: "fraction", dt: types.Int32Type, text: "1.5"},
		{name: "overflow", dt: types.Int32Type, text: "2147483648"},
		{name: "hexInt", dt: types.Int32Type, text: "0x10"},
		{name: "word", dt: types.Float32Type, text: "abc"},
		{name: "floatOverflow", dt: types.Float32Type, text: "1e39"},
		{name: "partial", dt: types.Float32Type, text: "1.0x"},
		{name: "underscore", dt: types.Float32Type, text: "1_0"},
		{name: "underscoreInt", dt: types.Int32Type, text: "1_0"},
		{name: "hexFloat", dt: types.Float32Type, text: "0x1p-2"},
		{name: "signedHexFloat", dt: types.Float32Type, text: "-0X1p1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(tt.dt, tt.text)
			if !errors.Is(err, types.ErrScalarParse) {
				t.Fatalf("Parse(%s, %q) error = %v, want ErrScalarParse", tt.dt, tt.text, err)
			}
		})
	}
}

func TestWriteReturnsRemainder(t *testing.T) {
	t.Parallel()

	out := make([]byte, 16)
	rest, err := Write(types.Int32Value(-120), out)
	if err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if len(rest) != 12 {
		t.Fatalf("remainder length = %d, want 12", len(rest))
	}
	rest, err = Write(types.Float32Value(0.25), rest)
	if err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if got := string(out[:len(out)-len(rest)]); got != "-1200.25" {
		t.Fatalf("buffer = %q, want %q", got, "-1200.25")
	}
}

func TestTextRoundTrip(t *testing.T) {
	t.Parallel()

	values := []types.Value{
		types.Int32Value(0),
		types.Int32Value(math.MaxInt32),
		types.Int32Value(math.MinInt32),
		types.Float32Value(0),
		types.Float32Value(0.1),
		types.Float32Value(-3.4028235e38),
		types.Float32Value(math.SmallestNonzeroFloat32),
		types.Float32Value(1234567.9),
		types.Float32Value(float32(math.Inf(1))),
	}

	for _, v := range values {
		buf := make([]byte, maxRenderedLen)
		rest, err := Write(v, buf)
		if err != nil {
			t.Fatalf("Write(%+v) error: %v", v, err)
		}
		text := string(buf[:len(buf)-len(rest)])
		got, err := Parse(v.Type, text)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", text, err)
		}
		if got != v {
			t.Fatalf("round trip of %q = %+v, want %+v", text, got, v)
		}
	}
}

func TestWriteBufferOneByteShort(t *testing.T) {
	t.Parallel()

	for _, v := range []types.Value{types.Int32Value(-2147483648), types.Float32Value(-1.25e-7)} {
		full := make([]byte, maxRenderedLen)
		rest, err := Write(v, full)
		if err != nil {
			t.Fatalf("Write(%+v) error: %v", v, err)
		}
		need := len(full) - len(rest)

		short := bytes.Repeat([]byte{'#'}, need-1)
		rest, err = Write(v, short)
		if !errors.Is(err, types.ErrBufferTooSmall) {
			t.Fatalf("Write into %d bytes: error = %v, want ErrBufferTooSmall", need-1, err)
		}
		if len(rest) != len(short) || !bytes.Equal(short, bytes.Repeat([]byte{'#'}, need-1)) {
			t.Fatalf("short buffer was modified: %q", short)
		}

		exact := make([]byte, need)
		if rest, err = Write(v, exact); err != nil || len(rest) != 0 {
			t.Fatalf("Write into exact buffer: rest=%d err=%v", len(rest), err)
		}
	}
}

func TestLookupUnknownType(t *testing.T) {
	t.Parallel()

	if _, err := Lookup(types.DataType(9)); !errors.Is(err, types.ErrUnknownDataType) {
		t.Fatalf("Lookup error = %v, want ErrUnknownDataType", err)
	}
	if _, err := Write(types.Value{Type: types.DataType(9)}, make([]byte, 8)); !errors.Is(err, types.ErrUnknownDataType) {
		t.Fatalf("Write error = %v, want ErrUnknownDataType", err)
	}
}

func BenchmarkWriteFloat32(b *testing.B) {
	out := make([]byte, maxRenderedLen)
	v := types.Float32Value(3.14159)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Write(v, out); err != nil {
			b.Fatal(err)
		}
	}
}
