package storage

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ivan-cunha/kobuta/internal/encoding"
	"github.com/ivan-cunha/kobuta/pkg/types"
)

const DefaultSampleSize = 100

var ErrNoRows = errors.New("no rows to sample")

// typeOrder lists candidate types from most to least specific.
var typeOrder = []types.DataType{
	types.Int32Type,
	types.Float32Type,
}

type typeInference struct {
	possibleTypes map[types.DataType]bool
	nullCount     int
	sampleCount   int
}

func newTypeInference() typeInference {
	possible := make(map[types.DataType]bool, len(typeOrder))
	for _, dt := range typeOrder {
		possible[dt] = true
	}
	return typeInference{possibleTypes: possible}
}

// InferSchema proposes a schema from the first sampleSize rows of input.
// A column is nullable when a null marker was seen in the sample.
func InferSchema(input []byte, sep byte, skipHeader bool, sampleSize int) (types.Schema, error) {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}

	scanner := NewRowScanner(input, sep)
	if !scanner.Next() {
		return types.Schema{}, ErrNoRows
	}
	width := bytes.Count(scanner.Row(), []byte{scanner.sep}) + 1
	if skipHeader && !scanner.Next() {
		return types.Schema{}, ErrNoRows
	}

	inferences := make([]typeInference, width)
	for i := range inferences {
		inferences[i] = newTypeInference()
	}

	fields := make([][]byte, 0, width)
	for rows := 0; rows < sampleSize; rows++ {
		var err error
		fields, _, err = scanner.Fields(width, fields[:0], nil)
		if err != nil {
			return types.Schema{}, err
		}
		for j, field := range fields {
			analyzeValue(&inferences[j], field)
		}
		if !scanner.Next() {
			break
		}
	}

	return finalizeTypes(inferences)
}

func analyzeValue(inference *typeInference, field []byte) {
	inference.sampleCount++
	if IsNull(field) {
		inference.nullCount++
		return
	}

	text := bytesToString(field)
	for _, dt := range typeOrder {
		if !inference.possibleTypes[dt] {
			continue
		}
		if _, err := encoding.Parse(dt, text); err != nil {
			inference.possibleTypes[dt] = false
		}
	}
}

func finalizeTypes(inferences []typeInference) (types.Schema, error) {
	columns := make([]types.Column, len(inferences))
	for i, inf := range inferences {
		found := false
		for _, dt := range typeOrder {
			if inf.possibleTypes[dt] {
				columns[i].Type = dt
				found = true
				break
			}
		}
		if !found {
			return types.Schema{}, fmt.Errorf("column %d holds values matching no supported type", i+1)
		}
		columns[i].Nullable = inf.nullCount > 0
	}
	return types.Schema{Columns: columns}, nil
}
