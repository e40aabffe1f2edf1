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
	"testing"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/arrow/memory"
	"github.com/stretchr/testify/require"
)

func TestConvertColumnsFillsMissingColumnWithNulls(t *testing.T) {
	mem := memory.NewGoAllocator()
	src := arrow.NewSchema([]arrow.Field{{Name: "a", Type: arrow.PrimitiveTypes.Int64}}, nil)
	rb := array.NewRecordBuilder(mem, src)
	defer rb.Release()
	rb.Field(0).(*array.Int64Builder).Append(1)
	rec := rb.NewRecord()
	defer rec.Release()

	target := arrow.NewSchema([]arrow.Field{
		{Name: "a", Type: arrow.PrimitiveTypes.Int64},
		{Name: "b", Type: arrow.BinaryTypes.String, Nullable: true},
	}, nil)

	out, err := ConvertColumns(mem, rec, target)
	require.NoError(t, err)
	defer out.Release()

	require.Equal(t, int64(1), out.NumRows())
	require.True(t, out.Column(1).IsNull(0))
}

func TestConvertColumnsWidensInt32ToInt64(t *testing.T) {
	mem := memory.NewGoAllocator()
	src := arrow.NewSchema([]arrow.Field{{Name: "n", Type: arrow.PrimitiveTypes.Int32}}, nil)
	rb := array.NewRecordBuilder(mem, src)
	defer rb.Release()
	rb.Field(0).(*array.Int32Builder).Append(42)
	rec := rb.NewRecord()
	defer rec.Release()

	target := arrow.NewSchema([]arrow.Field{{Name: "n", Type: arrow.PrimitiveTypes.Int64}}, nil)

	out, err := ConvertColumns(mem, rec, target)
	require.NoError(t, err)
	defer out.Release()

	col := out.Column(0).(*array.Int64)
	require.Equal(t, int64(42), col.Value(0))
}

func TestConvertColumnsEncodesPlainIntoDictionary(t *testing.T) {
	mem := memory.NewGoAllocator()
	src := arrow.NewSchema([]arrow.Field{{Name: "method", Type: arrow.BinaryTypes.String}}, nil)
	rb := array.NewRecordBuilder(mem, src)
	defer rb.Release()
	sb := rb.Field(0).(*array.StringBuilder)
	sb.Append("GET")
	sb.Append("POST")
	rec := rb.NewRecord()
	defer rec.Release()

	dictType := &arrow.DictionaryType{IndexType: arrow.PrimitiveTypes.Uint8, ValueType: arrow.BinaryTypes.String}
	target := arrow.NewSchema([]arrow.Field{{Name: "method", Type: dictType}}, nil)

	out, err := ConvertColumns(mem, rec, target)
	require.NoError(t, err)
	defer out.Release()

	dict, ok := out.Column(0).(*array.Dictionary)
	require.True(t, ok)
	values := dict.Dictionary().(*array.String)
	require.Equal(t, "GET", values.Value(dict.GetValueIndex(0)))
	require.Equal(t, "POST", values.Value(dict.GetValueIndex(1)))
}
