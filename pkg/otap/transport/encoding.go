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

// Package transport implements the transport-optimized id/parent_id
// encoder and decoder (C5): after rows are sorted for encoding, id and
// parent_id columns compress far better as successive differences than
// as raw values, since sorting clusters equal or near-equal ids
// together.
package transport

import (
	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/arrow/memory"

	"github.com/open-telemetry/otel-arrow-core/pkg/werror"
)

// Encoding identifies how an id-like column is represented on the
// wire.
type Encoding uint8

const (
	// EncodingPlain transmits the column unmodified.
	EncodingPlain Encoding = iota
	// EncodingDelta transmits a primary id column (unique,
	// non-decreasing after SortForEncoding) as a first value plus
	// per-row deltas.
	EncodingDelta
	// EncodingDeltaRemapped is EncodingDelta for a column whose
	// absolute numbering was assigned by the id reindexer (C4): the
	// first transmitted value can be overridden at decode time with a
	// caller-supplied base, letting two already-encoded runs be
	// rebased onto a combined numbering without a full decode/re-encode
	// round trip.
	EncodingDeltaRemapped
	// EncodingQuasiDelta transmits a parent_id column that is not
	// globally non-decreasing once the batch is sorted for encoding (a
	// shared-parent or attribute table is sorted by grouping columns
	// first, not by parent_id itself). The column is split into runs
	// wherever the columns preceding parent_id in Plan.SortKeys change
	// value or, for an attribute table, wherever type, key or the type's
	// own value column changes (see quasiDeltaBoundaries); within a run
	// each value is written
	// as its delta from the previous row, and the first value of every
	// run is written absolute. Because a run can restart at a smaller
	// value than the previous row ended on, the wire representation is
	// signed.
	EncodingQuasiDelta
	// EncodingColumnarQuasiDelta is EncodingQuasiDelta for a parent_id
	// column whose run boundaries are not derived from Plan.SortKeys
	// but from an explicitly declared companion-column set,
	// Plan.GroupColumns — used by the metrics data-point tables, whose
	// sort order cannot also double as the grouping key.
	EncodingColumnarQuasiDelta
)

// deltaEncode computes a first-value-plus-deltas transmission of col,
// which must be a non-decreasing arrow.Uint32 (or Uint16) array.
// strict, when true, requires every delta to be > 0 (unique ids);
// when false, delta == 0 is allowed (shared parent ids).
func deltaEncode(mem memory.Allocator, col arrow.Array, strict bool) (arrow.Array, error) {
	switch a := col.(type) {
	case *array.Uint32:
		return deltaEncodeUint32(mem, a, strict)
	case *array.Uint16:
		return deltaEncodeUint16(mem, a, strict)
	default:
		return nil, werror.NewTypeMismatch("<id column>", arrow.PrimitiveTypes.Uint32, col.DataType())
	}
}

func deltaEncodeUint32(mem memory.Allocator, a *array.Uint32, strict bool) (arrow.Array, error) {
	b := array.NewUint32Builder(mem)
	defer b.Release()

	var prev uint32
	haveFirst := false
	for i := 0; i < a.Len(); i++ {
		if a.IsNull(i) {
			b.AppendNull()
			continue
		}
		v := a.Value(i)
		if !haveFirst {
			b.Append(v)
			prev = v
			haveFirst = true
			continue
		}
		if v < prev || (strict && v == prev) {
			return nil, werror.NewInternal("id column is not sorted ascending for delta encoding")
		}
		b.Append(v - prev)
		prev = v
	}
	return b.NewArray(), nil
}

func deltaEncodeUint16(mem memory.Allocator, a *array.Uint16, strict bool) (arrow.Array, error) {
	b := array.NewUint16Builder(mem)
	defer b.Release()

	var prev uint16
	haveFirst := false
	for i := 0; i < a.Len(); i++ {
		if a.IsNull(i) {
			b.AppendNull()
			continue
		}
		v := a.Value(i)
		if !haveFirst {
			b.Append(v)
			prev = v
			haveFirst = true
			continue
		}
		if v < prev || (strict && v == prev) {
			return nil, werror.NewInternal("id column is not sorted ascending for delta encoding")
		}
		b.Append(v - prev)
		prev = v
	}
	return b.NewArray(), nil
}

// quasiDeltaEncode writes a run-reset transmission of col: continues[i]
// reports whether row i+1 belongs to the same run as row i (see
// quasiDeltaBoundaries/computeContinues in transport.go). The first value of
// col, and the first value of every run thereafter, is written
// absolute; every other value is written as its difference from the
// previous row. A run can restart below the previous row's value (that
// is the point of AttributeQuasiDelta: a new (type,key,value) run
// starts a fresh count), so the output is a signed array one width
// narrower in range than col's own unsigned type, not col's type
// itself.
func quasiDeltaEncode(mem memory.Allocator, col arrow.Array, continues []bool) (arrow.Array, error) {
	switch a := col.(type) {
	case *array.Uint32:
		return quasiDeltaEncodeUint32(mem, a, continues)
	case *array.Uint16:
		return quasiDeltaEncodeUint16(mem, a, continues)
	default:
		return nil, werror.NewTypeMismatch("<id column>", arrow.PrimitiveTypes.Uint32, col.DataType())
	}
}

func quasiDeltaEncodeUint32(mem memory.Allocator, a *array.Uint32, continues []bool) (arrow.Array, error) {
	b := array.NewInt32Builder(mem)
	defer b.Release()

	var prev uint32
	haveFirst := false
	for i := 0; i < a.Len(); i++ {
		if a.IsNull(i) {
			b.AppendNull()
			continue
		}
		v := a.Value(i)
		switch {
		case !haveFirst || !continues[i-1]:
			b.Append(int32(v))
		default:
			b.Append(int32(int64(v) - int64(prev)))
		}
		prev = v
		haveFirst = true
	}
	return b.NewArray(), nil
}

func quasiDeltaEncodeUint16(mem memory.Allocator, a *array.Uint16, continues []bool) (arrow.Array, error) {
	b := array.NewInt16Builder(mem)
	defer b.Release()

	var prev uint16
	haveFirst := false
	for i := 0; i < a.Len(); i++ {
		if a.IsNull(i) {
			b.AppendNull()
			continue
		}
		v := a.Value(i)
		switch {
		case !haveFirst || !continues[i-1]:
			b.Append(int16(v))
		default:
			b.Append(int16(int32(v) - int32(prev)))
		}
		prev = v
		haveFirst = true
	}
	return b.NewArray(), nil
}

// quasiDeltaDecode reverses quasiDeltaEncode given the same continues
// vector recomputed from the (never-encoded) grouping columns.
func quasiDeltaDecode(mem memory.Allocator, col arrow.Array, continues []bool) (arrow.Array, error) {
	switch a := col.(type) {
	case *array.Int32:
		return quasiDeltaDecodeInt32(mem, a, continues)
	case *array.Int16:
		return quasiDeltaDecodeInt16(mem, a, continues)
	default:
		return nil, werror.NewTypeMismatch("<id column>", arrow.PrimitiveTypes.Int32, col.DataType())
	}
}

func quasiDeltaDecodeInt32(mem memory.Allocator, a *array.Int32, continues []bool) (arrow.Array, error) {
	b := array.NewUint32Builder(mem)
	defer b.Release()

	var running int64
	haveFirst := false
	for i := 0; i < a.Len(); i++ {
		if a.IsNull(i) {
			b.AppendNull()
			continue
		}
		v := int64(a.Value(i))
		if !haveFirst || !continues[i-1] {
			running = v
		} else {
			running += v
		}
		b.Append(uint32(running))
		haveFirst = true
	}
	return b.NewArray(), nil
}

func quasiDeltaDecodeInt16(mem memory.Allocator, a *array.Int16, continues []bool) (arrow.Array, error) {
	b := array.NewUint16Builder(mem)
	defer b.Release()

	var running int32
	haveFirst := false
	for i := 0; i < a.Len(); i++ {
		if a.IsNull(i) {
			b.AppendNull()
			continue
		}
		v := int32(a.Value(i))
		if !haveFirst || !continues[i-1] {
			running = v
		} else {
			running += v
		}
		b.Append(uint16(running))
		haveFirst = true
	}
	return b.NewArray(), nil
}

// deltaDecode reverses deltaEncode. If base is non-nil, it replaces
// the transmitted first value (EncodingDeltaRemapped's rebasing).
func deltaDecode(mem memory.Allocator, col arrow.Array, base *uint64) (arrow.Array, error) {
	switch a := col.(type) {
	case *array.Uint32:
		return deltaDecodeUint32(mem, a, base)
	case *array.Uint16:
		return deltaDecodeUint16(mem, a, base)
	default:
		return nil, werror.NewTypeMismatch("<id column>", arrow.PrimitiveTypes.Uint32, col.DataType())
	}
}

func deltaDecodeUint32(mem memory.Allocator, a *array.Uint32, base *uint64) (arrow.Array, error) {
	b := array.NewUint32Builder(mem)
	defer b.Release()

	var running uint32
	haveFirst := false
	for i := 0; i < a.Len(); i++ {
		if a.IsNull(i) {
			b.AppendNull()
			continue
		}
		if !haveFirst {
			running = a.Value(i)
			if base != nil {
				running = uint32(*base)
			}
			b.Append(running)
			haveFirst = true
			continue
		}
		running += a.Value(i)
		b.Append(running)
	}
	return b.NewArray(), nil
}

func deltaDecodeUint16(mem memory.Allocator, a *array.Uint16, base *uint64) (arrow.Array, error) {
	b := array.NewUint16Builder(mem)
	defer b.Release()

	var running uint16
	haveFirst := false
	for i := 0; i < a.Len(); i++ {
		if a.IsNull(i) {
			b.AppendNull()
			continue
		}
		if !haveFirst {
			running = a.Value(i)
			if base != nil {
				running = uint16(*base)
			}
			b.Append(running)
			haveFirst = true
			continue
		}
		running += a.Value(i)
		b.Append(running)
	}
	return b.NewArray(), nil
}
