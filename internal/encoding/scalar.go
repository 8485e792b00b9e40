package encoding

import (
	"errors"
	"strconv"
	"strings"

	"github.com/ivan-cunha/kobuta/pkg/types"
)

// maxRenderedLen covers the longest rendering of any supported scalar,
// e.g. "-2147483648" or "-1.1754944e-38".
const maxRenderedLen = 24

// ScalarCodec parses field text into a value of one data type and renders
// it back as text.
type ScalarCodec interface {
	Parse(text string) (types.Value, error)
	Write(v types.Value, out []byte) ([]byte, error)
}

var codecs = [...]ScalarCodec{
	types.Float32Type: float32Codec{},
	types.Int32Type:   int32Codec{},
}

// Lookup returns the codec registered for dt.
func Lookup(dt types.DataType) (ScalarCodec, error) {
	if !dt.Valid() || int(dt) >= len(codecs) || codecs[dt] == nil {
		return nil, types.NewError(types.KindUnknownDataType, 0, "no codec for data type %d", int(dt))
	}
	return codecs[dt], nil
}

// Parse interprets text as a value of type dt. The text must already be trimmed.
func Parse(dt types.DataType, text string) (types.Value, error) {
	c, err := Lookup(dt)
	if err != nil {
		return types.Value{}, err
	}
	return c.Parse(text)
}

// Write renders v at the front of out and returns the unused tail of out.
func Write(v types.Value, out []byte) ([]byte, error) {
	c, err := Lookup(v.Type)
	if err != nil {
		return out, err
	}
	return c.Write(v, out)
}

type int32Codec struct{}

func (int32Codec) Parse(text string) (types.Value, error) {
	i64, err := strconv.ParseInt(text, 10, 32)
	if err != nil {
		return types.Value{}, scalarError(types.Int32Type, text, err)
	}
	return types.Int32Value(int32(i64)), nil
}

func (int32Codec) Write(v types.Value, out []byte) ([]byte, error) {
	var scratch [maxRenderedLen]byte
	return place(strconv.AppendInt(scratch[:0], int64(v.Int32()), 10), out)
}

type float32Codec struct{}

func (float32Codec) Parse(text string) (types.Value, error) {
	// ParseFloat also takes Go literal syntax; only plain decimal text is valid.
	if goLiteral(text) {
		return types.Value{}, scalarError(types.Float32Type, text, strconv.ErrSyntax)
	}
	f64, err := strconv.ParseFloat(text, 32)
	if err != nil {
		return types.Value{}, scalarError(types.Float32Type, text, err)
	}
	return types.Float32Value(float32(f64)), nil
}

// goLiteral reports digit separators or a hex prefix after an optional sign.
func goLiteral(text string) bool {
	if strings.IndexByte(text, '_') >= 0 {
		return true
	}
	digits := strings.TrimLeft(text, "+-")
	if len(digits) < len(text)-1 {
		return false
	}
	return len(digits) >= 2 && digits[0] == '0' && (digits[1] == 'x' || digits[1] == 'X')
}

func (float32Codec) Write(v types.Value, out []byte) ([]byte, error) {
	var scratch [maxRenderedLen]byte
	return place(strconv.AppendFloat(scratch[:0], float64(v.Float32()), 'g', -1, 32), out)
}

func place(rendered, out []byte) ([]byte, error) {
	if len(rendered) > len(out) {
		return out, types.NewError(types.KindBufferTooSmall, 0,
			"need %d bytes, %d available", len(rendered), len(out))
	}
	n := copy(out, rendered)
	return out[n:], nil
}

// scalarError keeps only the strconv cause; text may alias the caller's input
// buffer, so it is copied before being stored.
func scalarError(dt types.DataType, text string, err error) error {
	cause := err
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		cause = numErr.Err
	}
	return types.NewError(types.KindScalarParse, 0, "%q is not a valid %s: %w", strings.Clone(text), dt, cause)
}
