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

package schema

import (
	"testing"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/arrow/memory"
	"github.com/stretchr/testify/require"
)

func buildRecord(t *testing.T, schema *arrow.Schema, build func(*array.RecordBuilder)) arrow.Record {
	t.Helper()
	rb := array.NewRecordBuilder(memory.NewGoAllocator(), schema)
	defer rb.Release()
	build(rb)
	return rb.NewRecord()
}

func TestIndexRecordsBasicNullability(t *testing.T) {
	s1 := arrow.NewSchema([]arrow.Field{
		{Name: "name", Type: arrow.BinaryTypes.String},
		{Name: "count", Type: arrow.PrimitiveTypes.Int64},
	}, nil)
	r1 := buildRecord(t, s1, func(rb *array.RecordBuilder) {
		rb.Field(0).(*array.StringBuilder).Append("a")
		rb.Field(1).(*array.Int64Builder).Append(1)
	})
	defer r1.Release()

	s2 := arrow.NewSchema([]arrow.Field{
		{Name: "name", Type: arrow.BinaryTypes.String},
	}, nil)
	r2 := buildRecord(t, s2, func(rb *array.RecordBuilder) {
		rb.Field(0).(*array.StringBuilder).AppendNull()
	})
	defer r2.Release()

	idx, err := IndexRecords([]arrow.Record{r1, r2})
	require.NoError(t, err)
	require.Equal(t, []string{"name", "count"}, idx.Order)

	name := idx.Fields["name"]
	require.True(t, name.Nullable, "null row observed directly")
	require.Equal(t, int64(1), name.TotalValueCount)

	count := idx.Fields["count"]
	require.True(t, count.Nullable, "absent from second batch")
	require.Equal(t, int64(1), count.TotalValueCount)
	require.Equal(t, int64(2), count.TotalElementCount)
}

func TestIndexRecordsTypeMismatch(t *testing.T) {
	s1 := arrow.NewSchema([]arrow.Field{{Name: "v", Type: arrow.PrimitiveTypes.Int64}}, nil)
	r1 := buildRecord(t, s1, func(rb *array.RecordBuilder) {
		rb.Field(0).(*array.Int64Builder).Append(1)
	})
	defer r1.Release()

	s2 := arrow.NewSchema([]arrow.Field{{Name: "v", Type: arrow.BinaryTypes.String}}, nil)
	r2 := buildRecord(t, s2, func(rb *array.RecordBuilder) {
		rb.Field(0).(*array.StringBuilder).Append("x")
	})
	defer r2.Release()

	_, err := IndexRecords([]arrow.Record{r1, r2})
	require.Error(t, err)
}

func TestIndexRecordsStructRecursion(t *testing.T) {
	structType := arrow.StructOf(
		arrow.Field{Name: "a", Type: arrow.PrimitiveTypes.Int64},
		arrow.Field{Name: "b", Type: arrow.BinaryTypes.String},
	)
	s := arrow.NewSchema([]arrow.Field{{Name: "attrs", Type: structType}}, nil)
	r := buildRecord(t, s, func(rb *array.RecordBuilder) {
		sb := rb.Field(0).(*array.StructBuilder)
		sb.Append(true)
		sb.FieldBuilder(0).(*array.Int64Builder).Append(7)
		sb.FieldBuilder(1).(*array.StringBuilder).Append("v")
	})
	defer r.Release()

	idx, err := IndexRecords([]arrow.Record{r})
	require.NoError(t, err)

	attrs := idx.Fields["attrs"]
	require.NotNil(t, attrs.StructIndex)
	require.ElementsMatch(t, []string{"a", "b"}, attrs.StructIndex.Order)
}
