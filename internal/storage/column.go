package storage

import (
	"github.com/ivan-cunha/kobuta/pkg/types"
)

type ColumnMetadata struct {
	Type      types.DataType
	Nullable  bool
	NullCount uint64
}

func columnMetadata(schema types.Schema, nullCounts []uint64) []ColumnMetadata {
	meta := make([]ColumnMetadata, len(schema.Columns))
	for i, col := range schema.Columns {
		meta[i] = ColumnMetadata{
			Type:     col.Type,
			Nullable: col.Nullable,
		}
		if i < len(nullCounts) {
			meta[i].NullCount = nullCounts[i]
		}
	}
	return meta
}
