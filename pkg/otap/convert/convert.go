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

// Package convert implements the column converter (C3): reshaping one
// input record batch to exactly match a unified target schema selected
// by pkg/otap/schema, so every batch bound for the same coalescer
// presents identical columns in identical order.
package convert

import (
	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/arrow/memory"

	"github.com/open-telemetry/otel-arrow-core/pkg/otap/schema"
	"github.com/open-telemetry/otel-arrow-core/pkg/werror"
)

// ConvertColumns reshapes rec to match target column-for-column: a
// field absent from rec becomes an all-null column of the target type;
// a field whose resolved type already matches is passed through
// untouched; a struct field recurses one level; everything else is
// cast via the narrow set of conversions the coalescer actually needs
// (dictionary encode/decode, dictionary key-width widen/narrow,
// integer/float widening).
func ConvertColumns(mem memory.Allocator, rec arrow.Record, target *arrow.Schema) (arrow.Record, error) {
	n := int(target.NumFields())
	cols := make([]arrow.Array, n)
	srcSchema := rec.Schema()

	for i := 0; i < n; i++ {
		field := target.Field(i)
		srcIdx := fieldIndex(srcSchema, field.Name)
		if srcIdx < 0 {
			cols[i] = allNull(mem, field.Type, int(rec.NumRows()))
			continue
		}

		srcField := srcSchema.Field(srcIdx)
		col := rec.Column(srcIdx)

		if arrow.TypeEqual(srcField.Type, field.Type) {
			col.Retain()
			cols[i] = col
			continue
		}

		converted, err := convertColumn(mem, col, srcField.Type, field.Type)
		if err != nil {
			return nil, werror.WrapWithContext(err, map[string]interface{}{"column": field.Name})
		}
		cols[i] = converted
	}

	out := array.NewRecord(target, cols, rec.NumRows())
	for _, c := range cols {
		c.Release()
	}
	return out, nil
}

func fieldIndex(s *arrow.Schema, name string) int {
	indices := s.FieldIndices(name)
	if len(indices) == 0 {
		return -1
	}
	return indices[0]
}

// allNull builds an all-null array of dt with n rows.
func allNull(mem memory.Allocator, dt arrow.DataType, n int) arrow.Array {
	b := array.NewBuilder(mem, dt)
	defer b.Release()
	b.AppendNulls(n)
	return b.NewArray()
}

// convertColumn reshapes col (of type srcType) into an array of type
// dstType. The only conversions supported are the ones the schema
// unifier can actually produce: struct recursion, dictionary
// encode/decode, dictionary key-width change, and the small set of
// numeric widenings listed in allowedNumericWiden.
func convertColumn(mem memory.Allocator, col arrow.Array, srcType, dstType arrow.DataType) (arrow.Array, error) {
	if dstStruct, ok := dstType.(*arrow.StructType); ok {
		return convertStruct(mem, col, srcType, dstStruct)
	}

	srcValueType := schema.UnwrapValueType(srcType)
	dstDict, dstIsDict := dstType.(*arrow.DictionaryType)
	_, srcIsDict := srcType.(*arrow.DictionaryType)

	switch {
	case dstIsDict && !arrow.TypeEqual(srcValueType, dstDict.ValueType):
		return nil, werror.NewTypeMismatch("<column>", dstDict.ValueType, srcValueType)
	case !dstIsDict && !arrow.TypeEqual(srcValueType, schema.UnwrapValueType(dstType)):
		if widened, ok := widen(mem, col, srcValueType, dstType); ok {
			col = widened
			srcType = dstType
			srcIsDict = false
		} else {
			return nil, werror.NewTypeMismatch("<column>", dstType, srcValueType)
		}
	}

	switch {
	case srcIsDict && dstIsDict:
		return reencodeDictionary(mem, col.(*array.Dictionary), dstDict)
	case srcIsDict && !dstIsDict:
		return decodeDictionary(mem, col.(*array.Dictionary))
	case !srcIsDict && dstIsDict:
		return encodeDictionary(mem, col, dstDict)
	default:
		col.Retain()
		return col, nil
	}
}

func convertStruct(mem memory.Allocator, col arrow.Array, srcType arrow.DataType, dstType *arrow.StructType) (arrow.Array, error) {
	srcStruct, ok := srcType.(*arrow.StructType)
	if !ok {
		return nil, werror.NewInvalidDataTypeForStruct("<column>")
	}
	structArr, ok := col.(*array.Struct)
	if !ok {
		return nil, werror.NewInvalidDataTypeForStruct("<column>")
	}

	n := dstType.NumFields()
	fields := make([]arrow.Array, n)
	for i := 0; i < n; i++ {
		dstField := dstType.Field(i)
		srcIdx := -1
		for j := 0; j < srcStruct.NumFields(); j++ {
			if srcStruct.Field(j).Name == dstField.Name {
				srcIdx = j
				break
			}
		}
		if srcIdx < 0 {
			fields[i] = allNull(mem, dstField.Type, structArr.Len())
			continue
		}
		srcField := srcStruct.Field(srcIdx)
		child := structArr.Field(srcIdx)
		if arrow.TypeEqual(srcField.Type, dstField.Type) {
			child.Retain()
			fields[i] = child
			continue
		}
		converted, err := convertColumn(mem, child, srcField.Type, dstField.Type)
		if err != nil {
			return nil, err
		}
		fields[i] = converted
	}
	defer func() {
		for _, f := range fields {
			f.Release()
		}
	}()

	return array.NewStructArray(fields, structFieldNames(dstType)), nil
}

func structFieldNames(dt *arrow.StructType) []string {
	names := make([]string, dt.NumFields())
	for i := range names {
		names[i] = dt.Field(i).Name
	}
	return names
}
