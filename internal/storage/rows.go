package storage

import (
	"bytes"
	"fmt"
	"unsafe"

	"github.com/ivan-cunha/kobuta/pkg/types"
)

// RowScanner walks newline-terminated rows of an in-memory CSV payload.
// Blank rows are skipped and a trailing '\r' is dropped.
type RowScanner struct {
	input []byte
	sep   byte
	pos   int

	row       []byte
	rowOffset int
	line      int
}

func NewRowScanner(input []byte, sep byte) *RowScanner {
	if sep == 0 {
		sep = types.Separator
	}
	return &RowScanner{input: input, sep: sep}
}

// Next advances to the next non-blank row.
func (s *RowScanner) Next() bool {
	for s.pos < len(s.input) {
		start := s.pos
		end := bytes.IndexByte(s.input[start:], '\n')
		if end < 0 {
			end = len(s.input)
			s.pos = end
		} else {
			end += start
			s.pos = end + 1
		}
		s.line++

		row := s.input[start:end]
		if n := len(row); n > 0 && row[n-1] == '\r' {
			row = row[:n-1]
		}
		if len(bytes.TrimSpace(row)) == 0 {
			continue
		}
		s.row = row
		s.rowOffset = start
		return true
	}
	s.row = nil
	return false
}

// Row returns the current row without its terminator. It aliases the input.
func (s *RowScanner) Row() []byte {
	return s.row
}

// Line returns the 1-based line number of the current row.
func (s *RowScanner) Line() int {
	return s.line
}

// Offset returns the byte offset of the current row in the input.
func (s *RowScanner) Offset() int {
	return s.rowOffset
}

// Fields splits the current row into exactly n trimmed fields, appending
// them to dst. Offsets of each field are appended to offs when it is not nil.
func (s *RowScanner) Fields(n int, dst [][]byte, offs []int) ([][]byte, []int, error) {
	row := s.row
	start := 0
	for i := 0; i < n; i++ {
		end := len(row)
		if i < n-1 {
			idx := bytes.IndexByte(row[start:], s.sep)
			if idx < 0 {
				return dst, offs, s.countMismatch(n)
			}
			end = start + idx
		} else if bytes.IndexByte(row[start:], s.sep) >= 0 {
			return dst, offs, s.countMismatch(n)
		}

		field, lead := trimField(row[start:end])
		dst = append(dst, field)
		if offs != nil {
			offs = append(offs, s.rowOffset+start+lead)
		}
		start = end + 1
	}
	return dst, offs, nil
}

func (s *RowScanner) countMismatch(want int) error {
	got := bytes.Count(s.row, []byte{s.sep}) + 1
	return &types.Error{
		Kind:   types.KindFieldCountMismatch,
		Offset: s.rowOffset,
		Line:   s.line,
		Column: 1,
		Err:    fmt.Errorf("expected %d fields, got %d", want, got),
	}
}

// trimField strips surrounding ASCII whitespace and reports how many leading
// bytes were removed.
func trimField(b []byte) ([]byte, int) {
	lead := 0
	for lead < len(b) && isSpace(b[lead]) {
		lead++
	}
	end := len(b)
	for end > lead && isSpace(b[end-1]) {
		end--
	}
	return b[lead:end], lead
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\v' || c == '\f'
}

// bytesToString views b as a string without copying. The result must not
// outlive b.
func bytesToString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(b), len(b))
}
