package types

import (
	"strings"
	"unsafe"
)

type DataType int

const (
	Float32Type DataType = iota
	Int32Type
)

// Schema literals understood by the grammar parser.
const (
	Float32Literal  = "Float32"
	Int32Literal    = "Int32"
	NullableLiteral = "Nullable"
	Separator       = ','
)

var dataTypeNames = [...]string{
	Float32Type: Float32Literal,
	Int32Type:   Int32Literal,
}

// String returns the schema literal of the type.
func (d DataType) String() string {
	if !d.Valid() {
		return "Unknown"
	}
	return dataTypeNames[d]
}

// Valid reports whether d is a known data type.
func (d DataType) Valid() bool {
	return d >= 0 && int(d) < len(dataTypeNames)
}

// Size returns the width in bytes of the scalar held by a value of this type.
func (d DataType) Size() int {
	switch d {
	case Int32Type:
		return int(unsafe.Sizeof(int32(0)))
	case Float32Type:
		return int(unsafe.Sizeof(float32(0)))
	default:
		return 0
	}
}

type Column struct {
	Type     DataType
	Nullable bool
}

func (c Column) String() string {
	if c.Nullable {
		return c.Type.String() + " " + NullableLiteral
	}
	return c.Type.String()
}

// Schema is the ordered list of columns every CSV row must follow.
type Schema struct {
	Columns []Column
}

func (s Schema) Len() int {
	return len(s.Columns)
}

// String renders the schema in the textual form accepted by schema.Parse.
func (s Schema) String() string {
	var b strings.Builder
	for i, col := range s.Columns {
		if i > 0 {
			b.WriteByte(Separator)
			b.WriteByte(' ')
		}
		b.WriteString(col.String())
	}
	return b.String()
}

// Equal reports whether both schemas hold the same columns in the same order.
func (s Schema) Equal(other Schema) bool {
	if len(s.Columns) != len(other.Columns) {
		return false
	}
	for i := range s.Columns {
		if s.Columns[i] != other.Columns[i] {
			return false
		}
	}
	return true
}

// Value holds one decoded scalar. Only the field matching Type is meaningful.
type Value struct {
	Type DataType
	i32  int32
	f32  float32
}

func Int32Value(v int32) Value {
	return Value{Type: Int32Type, i32: v}
}

func Float32Value(v float32) Value {
	return Value{Type: Float32Type, f32: v}
}

func (v Value) Int32() int32 {
	return v.i32
}

func (v Value) Float32() float32 {
	return v.f32
}
