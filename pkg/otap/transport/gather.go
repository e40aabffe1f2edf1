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

package transport

import (
	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/arrow/memory"

	"github.com/open-telemetry/otel-arrow-core/pkg/werror"
)

// gatherColumn builds a new array holding col's rows in perm order
// (out[i] = col[perm[i]]). Dictionary columns are gathered by
// permuting the index array only, sharing the existing values array —
// sorting never changes which logical values are present, only their
// row order.
func gatherColumn(mem memory.Allocator, col arrow.Array, perm []int) (arrow.Array, error) {
	if dict, ok := col.(*array.Dictionary); ok {
		return gatherDictionary(mem, dict, perm)
	}
	if structArr, ok := col.(*array.Struct); ok {
		return gatherStruct(mem, structArr, perm)
	}

	b := array.NewBuilder(mem, col.DataType())
	defer b.Release()

	for _, i := range perm {
		if col.IsNull(i) {
			b.AppendNull()
			continue
		}
		if err := appendAt(b, col, i); err != nil {
			return nil, err
		}
	}
	return b.NewArray(), nil
}

func gatherDictionary(mem memory.Allocator, dict *array.Dictionary, perm []int) (arrow.Array, error) {
	indices := dict.Indices()
	gathered, err := gatherColumn(mem, indices, perm)
	if err != nil {
		return nil, err
	}
	defer gathered.Release()

	values := dict.Dictionary()
	values.Retain()
	defer values.Release()

	dt := dict.DataType().(*arrow.DictionaryType)
	return array.NewDictionaryArray(dt, gathered, values), nil
}

func gatherStruct(mem memory.Allocator, structArr *array.Struct, perm []int) (arrow.Array, error) {
	st := structArr.DataType().(*arrow.StructType)
	fields := make([]arrow.Array, st.NumFields())
	names := make([]string, st.NumFields())
	for i := range fields {
		gathered, err := gatherColumn(mem, structArr.Field(i), perm)
		if err != nil {
			return nil, err
		}
		fields[i] = gathered
		names[i] = st.Field(i).Name
	}
	defer func() {
		for _, f := range fields {
			f.Release()
		}
	}()
	return array.NewStructArray(fields, names), nil
}

// appendAt appends col[i] onto builder b, dispatching on b's concrete
// type. Covers the closed set of value types the payload schema uses.
func appendAt(b array.Builder, col arrow.Array, i int) error {
	switch builder := b.(type) {
	case *array.StringBuilder:
		builder.Append(col.(*array.String).Value(i))
	case *array.BinaryBuilder:
		builder.Append(col.(*array.Binary).Value(i))
	case *array.FixedSizeBinaryBuilder:
		builder.Append(col.(*array.FixedSizeBinary).Value(i))
	case *array.BooleanBuilder:
		builder.Append(col.(*array.Boolean).Value(i))
	case *array.Int8Builder:
		builder.Append(col.(*array.Int8).Value(i))
	case *array.Uint8Builder:
		builder.Append(col.(*array.Uint8).Value(i))
	case *array.Int16Builder:
		builder.Append(col.(*array.Int16).Value(i))
	case *array.Uint16Builder:
		builder.Append(col.(*array.Uint16).Value(i))
	case *array.Int32Builder:
		builder.Append(col.(*array.Int32).Value(i))
	case *array.Uint32Builder:
		builder.Append(col.(*array.Uint32).Value(i))
	case *array.Int64Builder:
		builder.Append(col.(*array.Int64).Value(i))
	case *array.Uint64Builder:
		builder.Append(col.(*array.Uint64).Value(i))
	case *array.Float32Builder:
		builder.Append(col.(*array.Float32).Value(i))
	case *array.Float64Builder:
		builder.Append(col.(*array.Float64).Value(i))
	default:
		return werror.NewFormat("unsupported column type for transport gather")
	}
	return nil
}
