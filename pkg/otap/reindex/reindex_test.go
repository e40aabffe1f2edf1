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

package reindex

import (
	"testing"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/arrow/memory"
	"github.com/stretchr/testify/require"
)

func idRecord(t *testing.T, mem memory.Allocator, ids ...uint32) arrow.Record {
	t.Helper()
	s := arrow.NewSchema([]arrow.Field{{Name: "id", Type: arrow.PrimitiveTypes.Uint32}}, nil)
	rb := array.NewRecordBuilder(mem, s)
	defer rb.Release()
	b := rb.Field(0).(*array.Uint32Builder)
	for _, id := range ids {
		b.Append(id)
	}
	return rb.NewRecord()
}

func TestReindexShiftsSubsequentBatches(t *testing.T) {
	mem := memory.NewGoAllocator()
	r := NewReindexer()

	rec1 := idRecord(t, mem, 0, 1, 2)
	defer rec1.Release()
	out1, remap1, err := r.Reindex(mem, rec1, "id")
	require.NoError(t, err)
	defer out1.Release()
	require.Equal(t, uint64(0), remap1.Offset)
	require.Equal(t, uint32(0), out1.Column(0).(*array.Uint32).Value(0))
	require.Equal(t, uint32(2), out1.Column(0).(*array.Uint32).Value(2))

	rec2 := idRecord(t, mem, 0, 1)
	defer rec2.Release()
	out2, remap2, err := r.Reindex(mem, rec2, "id")
	require.NoError(t, err)
	defer out2.Release()
	require.Equal(t, uint64(3), remap2.Offset)
	require.Equal(t, uint32(3), out2.Column(0).(*array.Uint32).Value(0))
	require.Equal(t, uint32(4), out2.Column(0).(*array.Uint32).Value(1))
}

func TestReindexCompressesGappedRun(t *testing.T) {
	mem := memory.NewGoAllocator()
	r := NewReindexer()
	// distinct sorted non-null ids are 0,2: the gap means this can't be
	// a single vectorized shift, so they're renumbered to 0,1.
	rec := idRecord(t, mem, 0, 2)
	defer rec.Release()

	out, remap, err := r.Reindex(mem, rec, "id")
	require.NoError(t, err)
	defer out.Release()

	require.NotNil(t, remap.Ranks)
	require.Equal(t, uint64(0), remap.Apply(0))
	require.Equal(t, uint64(1), remap.Apply(2))
	require.Equal(t, uint32(0), out.Column(0).(*array.Uint32).Value(0))
	require.Equal(t, uint32(1), out.Column(0).(*array.Uint32).Value(1))

	// the next batch continues from 2, the count of distinct ids seen.
	rec2 := idRecord(t, mem, 0)
	defer rec2.Release()
	out2, remap2, err := r.Reindex(mem, rec2, "id")
	require.NoError(t, err)
	defer out2.Release()
	require.Nil(t, remap2.Ranks)
	require.Equal(t, uint64(2), remap2.Offset)
	require.Equal(t, uint32(2), out2.Column(0).(*array.Uint32).Value(0))
}

func TestApplyParentIDUsesRanksWhenPresent(t *testing.T) {
	mem := memory.NewGoAllocator()
	s := arrow.NewSchema([]arrow.Field{{Name: "parent_id", Type: arrow.PrimitiveTypes.Uint32}}, nil)
	rb := array.NewRecordBuilder(mem, s)
	b := rb.Field(0).(*array.Uint32Builder)
	for _, v := range []uint32{0, 2, 0} {
		b.Append(v)
	}
	child := rb.NewRecord()
	rb.Release()
	defer child.Release()

	remap := Remapping{Column: "id", Ranks: map[uint64]uint64{0: 0, 2: 1}}
	out, err := ApplyParentID(mem, child, "parent_id", remap)
	require.NoError(t, err)
	defer out.Release()

	col := out.Column(0).(*array.Uint32)
	require.Equal(t, []uint32{0, 1, 0}, []uint32{col.Value(0), col.Value(1), col.Value(2)})
}

func TestApplyParentIDShiftsBySameOffset(t *testing.T) {
	mem := memory.NewGoAllocator()
	s := arrow.NewSchema([]arrow.Field{{Name: "parent_id", Type: arrow.PrimitiveTypes.Uint32}}, nil)
	rb := array.NewRecordBuilder(mem, s)
	rb.Field(0).(*array.Uint32Builder).Append(1)
	child := rb.NewRecord()
	rb.Release()
	defer child.Release()

	out, err := ApplyParentID(mem, child, "parent_id", Remapping{Column: "id", Offset: 10})
	require.NoError(t, err)
	defer out.Release()
	require.Equal(t, uint32(11), out.Column(0).(*array.Uint32).Value(0))
}

func TestPartitionPoints(t *testing.T) {
	require.Equal(t, []int{0, 3, 6, 7}, PartitionPoints(7, 3))
	require.Equal(t, []int{0, 5}, PartitionPoints(5, 10))
}

func TestPartitionChildren(t *testing.T) {
	mem := memory.NewGoAllocator()
	s := arrow.NewSchema([]arrow.Field{{Name: "parent_id", Type: arrow.PrimitiveTypes.Uint32}}, nil)
	rb := array.NewRecordBuilder(mem, s)
	b := rb.Field(0).(*array.Uint32Builder)
	for _, v := range []uint32{0, 0, 1, 2, 2, 2} {
		b.Append(v)
	}
	child := rb.NewRecord()
	rb.Release()
	defer child.Release()

	bounds := PartitionPoints(3, 2) // chunk 0: ids [0,2), chunk 1: ids [2,3)
	chunks, err := PartitionChildren(child, "parent_id", bounds)
	require.NoError(t, err)
	defer func() {
		for _, c := range chunks {
			c.Release()
		}
	}()

	require.Len(t, chunks, 2)
	require.Equal(t, int64(3), chunks[0].NumRows())
	require.Equal(t, int64(3), chunks[1].NumRows())
}
