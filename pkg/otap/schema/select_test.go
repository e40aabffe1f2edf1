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
	"github.com/stretchr/testify/require"
)

func TestSelectSchemaLeavesPlainLowCardinalityStringPlain(t *testing.T) {
	s := arrow.NewSchema([]arrow.Field{{Name: "method", Type: arrow.BinaryTypes.String}}, nil)
	r := buildRecord(t, s, func(rb *array.RecordBuilder) {
		sb := rb.Field(0).(*array.StringBuilder)
		for _, v := range []string{"GET", "POST", "GET", "GET"} {
			sb.Append(v)
		}
	})
	defer r.Release()

	idx, err := IndexRecords([]arrow.Record{r})
	require.NoError(t, err)
	// method was never dictionary-encoded on input, so the unifier must
	// leave it plain: DictSeen only flips for fields observed already
	// dictionary-encoded.
	out, err := SelectSchema(idx)
	require.NoError(t, err)
	require.Equal(t, arrow.BinaryTypes.String, out.Field(0).Type)
}

func TestSelectSchemaPreservesDictionaryAndNarrowsKey(t *testing.T) {
	dictType := &arrow.DictionaryType{IndexType: arrow.PrimitiveTypes.Uint16, ValueType: arrow.BinaryTypes.String}
	s := arrow.NewSchema([]arrow.Field{{Name: "method", Type: dictType}}, nil)
	r := buildRecord(t, s, func(rb *array.RecordBuilder) {
		db := rb.Field(0).(*array.StringDictionaryBuilder)
		for _, v := range []string{"GET", "POST", "GET", "GET"} {
			require.NoError(t, db.Append(v))
		}
	})
	defer r.Release()

	idx, err := IndexRecords([]arrow.Record{r})
	require.NoError(t, err)

	out, err := SelectSchema(idx)
	require.NoError(t, err)
	got, ok := out.Field(0).Type.(*arrow.DictionaryType)
	require.True(t, ok)
	require.Equal(t, arrow.BinaryTypes.String, got.ValueType)
	require.Equal(t, arrow.PrimitiveTypes.Uint8, got.IndexType, "only 2 distinct values observed, key should narrow to u8")
}

func TestIndexRecordsRejectsUnsupportedDictionaryKeyWidth(t *testing.T) {
	dictType := &arrow.DictionaryType{IndexType: arrow.PrimitiveTypes.Uint32, ValueType: arrow.BinaryTypes.String}
	s := arrow.NewSchema([]arrow.Field{{Name: "method", Type: dictType}}, nil)
	r := buildRecord(t, s, func(rb *array.RecordBuilder) {
		db := rb.Field(0).(*array.StringDictionaryBuilder)
		require.NoError(t, db.Append("GET"))
	})
	defer r.Release()

	_, err := IndexRecords([]arrow.Record{r})
	require.Error(t, err)
}
