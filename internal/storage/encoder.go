package storage

import (
	"bytes"
	"errors"
	"log/slog"

	"github.com/ivan-cunha/kobuta/internal/encoding"
	"github.com/ivan-cunha/kobuta/internal/schema"
	"github.com/ivan-cunha/kobuta/pkg/types"
)

// Presence flags written before every nullable column.
const (
	NullFlag    byte = 0x00
	PresentFlag byte = 0x01
)

const progressInterval = 500000

// Encoder packs CSV rows into a caller buffer. Nullable columns are written
// as a presence flag followed, when present, by the rendered value.
// Non-nullable columns carry no flag.
//
// Rows holding only whitespace are skipped and never counted. With a single
// nullable column a blank line is therefore not read as a null row: "1\n\n3"
// encodes two rows. Write an explicit marker such as "null" to keep it.
type Encoder struct {
	// Separator is the field delimiter. Zero means ','.
	Separator byte
	// SkipHeader drops the first non-blank row.
	SkipHeader bool
	// Logger receives progress messages. Nil means slog.Default().
	Logger *slog.Logger
}

// Result describes the part of the input that was encoded.
type Result struct {
	Rows       int
	Written    int
	NullCounts []uint64
}

// Encode is shorthand for a default Encoder.
func Encode(input []byte, s types.Schema, out []byte) (Result, error) {
	var e Encoder
	return e.Encode(input, s, out)
}

// Encode transcodes every row of input into out. It stops at the first
// failing row; Result then covers only the rows completed before it.
func (e *Encoder) Encode(input []byte, s types.Schema, out []byte) (Result, error) {
	res := Result{NullCounts: make([]uint64, len(s.Columns))}
	if err := schema.Validate(s); err != nil {
		return res, err
	}

	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}

	scanner := NewRowScanner(input, e.Separator)
	fields := make([][]byte, 0, len(s.Columns))
	offsets := make([]int, 0, len(s.Columns))
	rowNulls := make([]bool, len(s.Columns))
	rest := out

	skip := e.SkipHeader
	for scanner.Next() {
		if skip {
			skip = false
			continue
		}

		var err error
		fields, offsets, err = scanner.Fields(len(s.Columns), fields[:0], offsets[:0])
		if err != nil {
			return res, err
		}

		tail := rest
		for i, col := range s.Columns {
			tail, rowNulls[i], err = encodeField(col, fields[i], tail)
			if err != nil {
				return res, AtField(err, scanner.Line(), i+1, offsets[i])
			}
		}

		// Null counts only cover rows that encoded completely.
		for i, null := range rowNulls {
			if null {
				res.NullCounts[i]++
			}
		}
		res.Written += len(rest) - len(tail)
		rest = tail
		res.Rows++

		if res.Rows%progressInterval == 0 {
			logger.Debug("encoding rows", "rows", res.Rows, "bytes", res.Written)
		}
	}

	logger.Debug("encoded csv", "rows", res.Rows, "bytes", res.Written, "columns", len(s.Columns))
	return res, nil
}

// CheckNull reports whether field is a null marker. A null in a
// non-nullable column is an ErrNullNotAllowed error.
func CheckNull(col types.Column, field []byte) (bool, error) {
	if !IsNull(field) {
		return false, nil
	}
	if !col.Nullable {
		return true, types.NewError(types.KindNullNotAllowed, 0, "null value %q in non-nullable %s column", string(field), col.Type)
	}
	return true, nil
}

// encodeField writes one field to out and reports whether it was a null.
func encodeField(col types.Column, field, out []byte) ([]byte, bool, error) {
	null, err := CheckNull(col, field)
	if err != nil {
		return out, false, err
	}
	if null {
		if len(out) < 1 {
			return out, false, types.NewError(types.KindBufferTooSmall, 0, "need 1 byte, 0 available")
		}
		out[0] = NullFlag
		return out[1:], true, nil
	}

	v, err := encoding.Parse(col.Type, bytesToString(field))
	if err != nil {
		return out, false, err
	}

	if !col.Nullable {
		tail, err := encoding.Write(v, out)
		return tail, false, err
	}
	if len(out) < 1 {
		return out, false, types.NewError(types.KindBufferTooSmall, 0, "need at least 2 bytes, 0 available")
	}
	tail, err := encoding.Write(v, out[1:])
	if err != nil {
		return out, false, err
	}
	out[0] = PresentFlag
	return tail, false, nil
}

// AtField stamps a codec error with the position of the failing field.
func AtField(err error, line, column, offset int) error {
	var kerr *types.Error
	if !errors.As(err, &kerr) {
		return err
	}
	stamped := *kerr
	stamped.Line = line
	stamped.Column = column
	stamped.Offset = offset
	return &stamped
}

var nullMarkers = [][]byte{
	[]byte("null"),
	[]byte("na"),
	[]byte("n/a"),
}

// IsNull reports whether a trimmed field is a null marker: empty, null, na
// or n/a in any case.
func IsNull(field []byte) bool {
	if len(field) == 0 {
		return true
	}
	for _, marker := range nullMarkers {
		if bytes.EqualFold(field, marker) {
			return true
		}
	}
	return false
}
