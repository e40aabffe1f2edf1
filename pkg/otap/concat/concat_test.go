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

package concat

import (
	"testing"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/arrow/memory"
	"github.com/stretchr/testify/require"
)

func TestConcatenateUnifiesAndMerges(t *testing.T) {
	mem := memory.NewGoAllocator()

	s1 := arrow.NewSchema([]arrow.Field{
		{Name: "name", Type: arrow.BinaryTypes.String},
		{Name: "count", Type: arrow.PrimitiveTypes.Int32},
	}, nil)
	rb1 := array.NewRecordBuilder(mem, s1)
	rb1.Field(0).(*array.StringBuilder).Append("a")
	rb1.Field(1).(*array.Int32Builder).Append(1)
	r1 := rb1.NewRecord()
	rb1.Release()
	defer r1.Release()

	s2 := arrow.NewSchema([]arrow.Field{
		{Name: "name", Type: arrow.BinaryTypes.String},
		{Name: "count", Type: arrow.PrimitiveTypes.Int64},
	}, nil)
	rb2 := array.NewRecordBuilder(mem, s2)
	rb2.Field(0).(*array.StringBuilder).Append("b")
	rb2.Field(1).(*array.Int64Builder).Append(2)
	r2 := rb2.NewRecord()
	rb2.Release()
	defer r2.Release()

	out, err := Concatenate(mem, []arrow.Record{r1, r2})
	require.NoError(t, err)
	defer out.Release()

	require.Equal(t, int64(2), out.NumRows())
	require.Equal(t, arrow.PrimitiveTypes.Int64, out.Schema().Field(1).Type)
	countCol := out.Column(1).(*array.Int64)
	require.Equal(t, int64(1), countCol.Value(0))
	require.Equal(t, int64(2), countCol.Value(1))
}
