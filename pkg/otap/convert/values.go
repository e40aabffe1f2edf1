// Copyright The OpenTelemetry Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//       http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package convert

import (
	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/arrow/memory"

	"github.com/open-telemetry/otel-arrow-core/pkg/werror"
)

// allowedNumericWiden holds the src->dst promotions the converter
// performs when a later batch observes a wider type for a field than
// an earlier one did (spec.md §4.1: the unifier always keeps the
// widest type observed, never narrows).
var allowedNumericWiden = map[arrow.Type]arrow.Type{
	arrow.INT32:   arrow.INT64,
	arrow.UINT32:  arrow.UINT64,
	arrow.FLOAT32: arrow.FLOAT64,
}

func widen(mem memory.Allocator, col arrow.Array, srcType, dstType arrow.DataType) (arrow.Array, bool) {
	want, ok := allowedNumericWiden[srcType.ID()]
	if !ok || want != dstType.ID() {
		return nil, false
	}

	b := array.NewBuilder(mem, dstType)
	defer b.Release()

	switch src := col.(type) {
	case *array.Int32:
		nb := b.(*array.Int64Builder)
		for i := 0; i < src.Len(); i++ {
			if src.IsNull(i) {
				nb.AppendNull()
				continue
			}
			nb.Append(int64(src.Value(i)))
		}
	case *array.Uint32:
		nb := b.(*array.Uint64Builder)
		for i := 0; i < src.Len(); i++ {
			if src.IsNull(i) {
				nb.AppendNull()
				continue
			}
			nb.Append(uint64(src.Value(i)))
		}
	case *array.Float32:
		nb := b.(*array.Float64Builder)
		for i := 0; i < src.Len(); i++ {
			if src.IsNull(i) {
				nb.AppendNull()
				continue
			}
			nb.Append(float64(src.Value(i)))
		}
	default:
		return nil, false
	}

	return b.NewArray(), true
}

// decodeDictionary materializes the plain (non-dictionary) values a
// dictionary array logically carries, preserving row order and nulls.
func decodeDictionary(mem memory.Allocator, dict *array.Dictionary) (arrow.Array, error) {
	values := dict.Dictionary()
	b := array.NewBuilder(mem, values.DataType())
	defer b.Release()

	for i := 0; i < dict.Len(); i++ {
		if dict.IsNull(i) {
			b.AppendNull()
			continue
		}
		if err := copyValue(b, values, dict.GetValueIndex(i)); err != nil {
			return nil, err
		}
	}
	return b.NewArray(), nil
}

// encodeDictionary dictionary-encodes a plain array against dstDict's
// value type and key width.
func encodeDictionary(mem memory.Allocator, col arrow.Array, dstDict *arrow.DictionaryType) (arrow.Array, error) {
	db := array.NewDictionaryBuilder(mem, dstDict)
	defer db.Release()

	for i := 0; i < col.Len(); i++ {
		if col.IsNull(i) {
			db.AppendNull()
			continue
		}
		if err := appendDictValue(db, col, i); err != nil {
			return nil, werror.NewBatching(err)
		}
	}
	return db.NewArray(), nil
}

// reencodeDictionary changes a dictionary array's key width and/or
// value type (within the allowed widenings) by decoding then
// re-encoding it.
func reencodeDictionary(mem memory.Allocator, src *array.Dictionary, dstDict *arrow.DictionaryType) (arrow.Array, error) {
	plain, err := decodeDictionary(mem, src)
	if err != nil {
		return nil, err
	}
	defer plain.Release()

	if !arrow.TypeEqual(plain.DataType(), dstDict.ValueType) {
		widened, ok := widen(mem, plain, plain.DataType(), dstDict.ValueType)
		if !ok {
			return nil, werror.NewTypeMismatch("<column>", dstDict.ValueType, plain.DataType())
		}
		defer widened.Release()
		return encodeDictionary(mem, widened, dstDict)
	}
	return encodeDictionary(mem, plain, dstDict)
}

// copyValue appends values[i] onto builder b, dispatching on b's
// concrete type. This set covers the value types the payload schema
// actually uses: strings, byte slices, fixed-size byte slices, 64-bit
// integers, floats, and booleans.
func copyValue(b array.Builder, values arrow.Array, i int) error {
	switch builder := b.(type) {
	case *array.StringBuilder:
		builder.Append(values.(*array.String).Value(i))
	case *array.BinaryBuilder:
		builder.Append(values.(*array.Binary).Value(i))
	case *array.FixedSizeBinaryBuilder:
		builder.Append(values.(*array.FixedSizeBinary).Value(i))
	case *array.Int64Builder:
		builder.Append(values.(*array.Int64).Value(i))
	case *array.Uint64Builder:
		builder.Append(values.(*array.Uint64).Value(i))
	case *array.Float64Builder:
		builder.Append(values.(*array.Float64).Value(i))
	case *array.Int32Builder:
		builder.Append(values.(*array.Int32).Value(i))
	case *array.Uint32Builder:
		builder.Append(values.(*array.Uint32).Value(i))
	case *array.Uint16Builder:
		builder.Append(values.(*array.Uint16).Value(i))
	case *array.BooleanBuilder:
		builder.Append(values.(*array.Boolean).Value(i))
	default:
		return werror.NewFormat("unsupported value builder type for dictionary decode")
	}
	return nil
}

// appendDictValue appends values[i] onto dictionary builder db,
// dispatching on db's concrete (value-type-named) type.
func appendDictValue(db array.DictionaryBuilder, values arrow.Array, i int) error {
	switch builder := db.(type) {
	case *array.StringDictionaryBuilder:
		return builder.Append(values.(*array.String).Value(i))
	case *array.BinaryDictionaryBuilder:
		return builder.Append(values.(*array.Binary).Value(i))
	case *array.FixedSizeBinaryDictionaryBuilder:
		return builder.Append(values.(*array.FixedSizeBinary).Value(i))
	case *array.Int64DictionaryBuilder:
		return builder.Append(values.(*array.Int64).Value(i))
	case *array.Uint64DictionaryBuilder:
		return builder.Append(values.(*array.Uint64).Value(i))
	case *array.Float64DictionaryBuilder:
		return builder.Append(values.(*array.Float64).Value(i))
	case *array.Int32DictionaryBuilder:
		return builder.Append(values.(*array.Int32).Value(i))
	case *array.Uint32DictionaryBuilder:
		return builder.Append(values.(*array.Uint32).Value(i))
	default:
		return werror.NewFormat("unsupported value builder type for dictionary encode")
	}
}
