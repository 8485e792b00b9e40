package schema

import (
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ivan-cunha/kobuta/pkg/types"
)

type literal struct {
	text  string
	dtype types.DataType
}

// typeLiterals is checked in order and the first prefix match wins, so no
// literal may be a prefix of a later one.
var typeLiterals = [...]literal{
	{types.Float32Literal, types.Float32Type},
	{types.Int32Literal, types.Int32Type},
}

// cursor walks the schema text. end excludes trailing whitespace.
type cursor struct {
	text string
	pos  int
	end  int
}

func (c *cursor) rest() string {
	return c.text[c.pos:c.end]
}

func (c *cursor) empty() bool {
	return c.pos >= c.end
}

func (c *cursor) skipSpace() {
	for c.pos < c.end {
		r, size := utf8.DecodeRuneInString(c.text[c.pos:c.end])
		if !unicode.IsSpace(r) {
			return
		}
		c.pos += size
	}
}

func (c *cursor) consume(prefix string) bool {
	if !strings.HasPrefix(c.rest(), prefix) {
		return false
	}
	c.pos += len(prefix)
	return true
}

// Parse reads a schema such as "Float32 Nullable, Int32".
func Parse(text string) (types.Schema, error) {
	c := &cursor{
		text: text,
		end:  len(strings.TrimRightFunc(text, unicode.IsSpace)),
	}
	c.skipSpace()

	var columns []types.Column
	for {
		slog.Debug("schema: parsing column", "offset", c.pos, "leftover", c.rest())
		col, err := c.column()
		if err != nil {
			return types.Schema{}, err
		}
		slog.Debug("schema: parsed column", "column", col.String(), "offset", c.pos)
		columns = append(columns, col)

		if c.empty() {
			break
		}
		if err := c.separator(); err != nil {
			return types.Schema{}, err
		}
	}

	return types.Schema{Columns: columns}, nil
}

// MustParse is like Parse but panics on error.
func MustParse(text string) types.Schema {
	s, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate checks a schema that was built in code rather than parsed.
func Validate(s types.Schema) error {
	if len(s.Columns) == 0 {
		return types.NewError(types.KindEmptyColumn, 0, "schema must have at least one column")
	}
	for i, col := range s.Columns {
		if !col.Type.Valid() {
			return types.NewError(types.KindUnknownDataType, 0, "column %d has unknown type %d", i+1, int(col.Type))
		}
	}
	return nil
}

func (c *cursor) column() (types.Column, error) {
	if c.empty() || c.text[c.pos] == types.Separator {
		return types.Column{}, types.NewError(types.KindEmptyColumn, c.pos, "expected a column type")
	}

	dtype, ok := c.dataType()
	if !ok {
		return types.Column{}, types.NewError(types.KindUnknownTypeLiteral, c.pos, "unknown type at %q", excerpt(c.rest()))
	}
	c.skipSpace()

	nullable := c.consume(types.NullableLiteral)
	if nullable {
		c.skipSpace()
	}

	return types.Column{Type: dtype, Nullable: nullable}, nil
}

func (c *cursor) dataType() (types.DataType, bool) {
	for _, lit := range typeLiterals {
		if c.consume(lit.text) {
			return lit.dtype, true
		}
	}
	return 0, false
}

func (c *cursor) separator() error {
	if c.text[c.pos] != types.Separator {
		return types.NewError(types.KindMissingSeparator, c.pos, "expected %q before %q", types.Separator, excerpt(c.rest()))
	}
	c.pos++
	c.skipSpace()
	return nil
}

func excerpt(s string) string {
	const max = 16
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
