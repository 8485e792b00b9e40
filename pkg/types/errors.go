package types

import (
	"fmt"
	"strings"
)

// ErrorKind classifies schema and encoding failures.
type ErrorKind uint8

const (
	KindUnknownTypeLiteral ErrorKind = iota + 1
	KindMissingSeparator
	KindEmptyColumn
	KindScalarParse
	KindBufferTooSmall
	KindFieldCountMismatch
	KindNullNotAllowed
	KindUnknownDataType
)

var kindNames = map[ErrorKind]string{
	KindUnknownTypeLiteral: "unknown type literal",
	KindMissingSeparator:   "missing separator",
	KindEmptyColumn:        "empty column",
	KindScalarParse:        "invalid scalar",
	KindBufferTooSmall:     "buffer too small",
	KindFieldCountMismatch: "field count mismatch",
	KindNullNotAllowed:     "null in non-nullable column",
	KindUnknownDataType:    "unknown data type",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrUnknownTypeLiteral = &Error{Kind: KindUnknownTypeLiteral}
	ErrMissingSeparator   = &Error{Kind: KindMissingSeparator}
	ErrEmptyColumn        = &Error{Kind: KindEmptyColumn}
	ErrScalarParse        = &Error{Kind: KindScalarParse}
	ErrBufferTooSmall     = &Error{Kind: KindBufferTooSmall}
	ErrFieldCountMismatch = &Error{Kind: KindFieldCountMismatch}
	ErrNullNotAllowed     = &Error{Kind: KindNullNotAllowed}
	ErrUnknownDataType    = &Error{Kind: KindUnknownDataType}
)

// Error is a schema or encoding failure with its position.
//
// Offset is the byte offset into the schema text or the CSV input. Line and
// Column are 1-based and only set for CSV errors.
type Error struct {
	Kind   ErrorKind
	Offset int
	Line   int
	Column int
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("kobuta: ")
	b.WriteString(e.Kind.String())
	if e.Line > 0 {
		fmt.Fprintf(&b, " on line %d, column %d", e.Line, e.Column)
	}
	fmt.Fprintf(&b, " at offset %d", e.Offset)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Is matches any *Error with the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds an *Error of the given kind with a formatted cause.
func NewError(kind ErrorKind, offset int, format string, args ...any) *Error {
	return &Error{Kind: kind, Offset: offset, Err: fmt.Errorf(format, args...)}
}
