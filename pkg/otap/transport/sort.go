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
	"bytes"
	"sort"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/arrow/memory"

	"github.com/open-telemetry/otel-arrow-core/pkg/werror"
)

// SortForEncoding stably reorders rec's rows by keys, ascending, nulls
// first, and returns the reordered record. keys name columns that must
// exist directly on rec (not inside a struct); this is exactly the
// ordering the id/parent_id delta encoders in this package require.
func SortForEncoding(mem memory.Allocator, rec arrow.Record, keys []string) (arrow.Record, error) {
	if len(keys) == 0 {
		rec.Retain()
		return rec, nil
	}

	keyCols := make([]arrow.Array, len(keys))
	for i, k := range keys {
		idx := fieldIndex(rec.Schema(), k)
		if idx < 0 {
			return nil, werror.NewColumnNotFound(k)
		}
		keyCols[i] = rec.Column(idx)
	}

	n := int(rec.NumRows())
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(a, b int) bool {
		return lessRows(keyCols, perm[a], perm[b])
	})

	cols := make([]arrow.Array, rec.Schema().NumFields())
	for i := 0; i < len(cols); i++ {
		gathered, err := gatherColumn(mem, rec.Column(i), perm)
		if err != nil {
			return nil, err
		}
		cols[i] = gathered
	}
	defer func() {
		for _, c := range cols {
			c.Release()
		}
	}()

	return array.NewRecord(rec.Schema(), cols, rec.NumRows()), nil
}

func fieldIndex(s *arrow.Schema, name string) int {
	indices := s.FieldIndices(name)
	if len(indices) == 0 {
		return -1
	}
	return indices[0]
}

// lessRows compares row a against row b across every key column in
// order, nulls sorting first.
func lessRows(keyCols []arrow.Array, a, b int) bool {
	for _, col := range keyCols {
		aNull, bNull := col.IsNull(a), col.IsNull(b)
		if aNull || bNull {
			if aNull != bNull {
				return aNull
			}
			continue
		}
		switch cmp := compareValue(col, a, b); {
		case cmp < 0:
			return true
		case cmp > 0:
			return false
		}
	}
	return false
}

// compareValue returns -1, 0, or 1 comparing col[a] to col[b].
func compareValue(col arrow.Array, a, b int) int {
	switch arr := col.(type) {
	case *array.String:
		return compareOrdered(arr.Value(a), arr.Value(b))
	case *array.Binary:
		return bytes.Compare(arr.Value(a), arr.Value(b))
	case *array.FixedSizeBinary:
		return bytes.Compare(arr.Value(a), arr.Value(b))
	case *array.Boolean:
		return compareOrdered(boolRank(arr.Value(a)), boolRank(arr.Value(b)))
	case *array.Int8:
		return compareOrdered(arr.Value(a), arr.Value(b))
	case *array.Uint8:
		return compareOrdered(arr.Value(a), arr.Value(b))
	case *array.Int16:
		return compareOrdered(arr.Value(a), arr.Value(b))
	case *array.Uint16:
		return compareOrdered(arr.Value(a), arr.Value(b))
	case *array.Int32:
		return compareOrdered(arr.Value(a), arr.Value(b))
	case *array.Uint32:
		return compareOrdered(arr.Value(a), arr.Value(b))
	case *array.Int64:
		return compareOrdered(arr.Value(a), arr.Value(b))
	case *array.Uint64:
		return compareOrdered(arr.Value(a), arr.Value(b))
	case *array.Float32:
		return compareOrdered(arr.Value(a), arr.Value(b))
	case *array.Float64:
		return compareOrdered(arr.Value(a), arr.Value(b))
	case *array.Dictionary:
		// Compare by dictionary-decoded value so sort order reflects
		// logical content, not arbitrary index assignment.
		values := arr.Dictionary()
		return compareValue(values, arr.GetValueIndex(a), arr.GetValueIndex(b))
	default:
		return 0
	}
}

// valueEquals reports whether col[a] and col[b] carry the same logical
// value. A null on either side is never equal to anything, including
// another null on the other side, so a null value never continues a
// quasi-delta run. Map/Slice attribute rows, whose value lives in the
// "ser" column, are kept out of runs separately, by
// computeAttributeContinues.
func valueEquals(col arrow.Array, a, b int) bool {
	if col.IsNull(a) || col.IsNull(b) {
		return false
	}
	return compareValue(col, a, b) == 0
}

func boolRank(v bool) int {
	if v {
		return 1
	}
	return 0
}

type ordered interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64 | ~string
}

func compareOrdered[T ordered](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
