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

// Package reindex implements the id reindexer and splitter (C4): each
// input record batch arrives with an id run assigned independently by
// its producer, usually gap-free and starting at zero; a run with gaps
// is renumbered value by value (see Remapping). Concatenating batches from
// several producers into one output table means every batch's ids
// after the first must be shifted so the combined column stays
// gap-free and unique; child tables' parent_id columns must shift by
// the same amount their parent did. Splitter then cuts an oversized
// combined table back into transport-sized chunks without tearing a
// parent row apart from its children.
package reindex

import (
	"sort"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/arrow/memory"

	"github.com/open-telemetry/otel-arrow-core/pkg/werror"
)

// Remapping records how a single Reindex call rewrote one id column, so
// parent_id columns of related child tables can be rewritten identically
// via ApplyParentID. A gap-free source run is shifted by a constant
// Offset; a source run with gaps is individually renumbered and Ranks
// holds the original-value-to-new-value lookup instead.
type Remapping struct {
	Column string
	Offset uint64
	// Ranks, when non-nil, maps each original non-null value of the
	// source run to its reassigned value. Set only when the run was not
	// gap-free (see Reindexer.Reindex); takes precedence over Offset.
	Ranks map[uint64]uint64
}

// Apply shifts a single id value per the remapping: through Ranks if
// present, otherwise by Offset. A value absent from Ranks is returned
// unchanged — it belongs to no row the original Reindex call saw.
func (r Remapping) Apply(id uint64) uint64 {
	if r.Ranks != nil {
		if v, ok := r.Ranks[id]; ok {
			return v
		}
		return id
	}
	return id + r.Offset
}

// Reindexer tracks, per id column name, the next starting id available
// for the next batch processed. Reuse one Reindexer across every batch
// feeding the same output table so ids stay globally unique and
// gap-free across the whole run.
type Reindexer struct {
	next map[string]uint64
}

// NewReindexer constructs a Reindexer with every column starting at 0.
func NewReindexer() *Reindexer {
	return &Reindexer{next: make(map[string]uint64)}
}

// Reindex shifts rec's idColumn past this Reindexer's running offset
// for that column, advances the offset past it, and returns the new
// record plus the Remapping needed to rewrite any child table's
// parent_id column the same way. If the batch's non-null ids are
// gap-free (every consecutive sorted pair equal or differs by 1), the
// whole column is shifted by a single constant offset; otherwise the
// sorted distinct ids are individually renumbered to a gap-free run
// starting at the running offset, and the per-value lookup is returned
// via Remapping.Ranks.
func (r *Reindexer) Reindex(mem memory.Allocator, rec arrow.Record, idColumn string) (arrow.Record, Remapping, error) {
	idx := fieldIndex(rec.Schema(), idColumn)
	if idx < 0 {
		return nil, Remapping{}, werror.NewColumnNotFound(idColumn)
	}
	col := rec.Column(idx)

	base := r.next[idColumn]
	run, any, err := analyzeIDs(col)
	if err != nil {
		return nil, Remapping{}, werror.WrapWithContext(err, map[string]interface{}{"column": idColumn})
	}
	if !any {
		rec.Retain()
		return rec, Remapping{Column: idColumn}, nil
	}

	var shifted arrow.Array
	var remapping Remapping
	if run.gapFree {
		offset := base - run.min
		shifted, err = shiftColumn(mem, col, offset)
		if err != nil {
			return nil, Remapping{}, err
		}
		remapping = Remapping{Column: idColumn, Offset: offset}
		r.next[idColumn] = base + (run.max - run.min) + 1
	} else {
		ranks := make(map[uint64]uint64, len(run.distinct))
		for i, v := range run.distinct {
			ranks[v] = base + uint64(i)
		}
		shifted, err = remapColumn(mem, col, ranks)
		if err != nil {
			return nil, Remapping{}, err
		}
		remapping = Remapping{Column: idColumn, Ranks: ranks}
		r.next[idColumn] = base + uint64(len(run.distinct))
	}
	defer shifted.Release()

	cols := make([]arrow.Array, rec.Schema().NumFields())
	for i := range cols {
		if i == idx {
			cols[i] = shifted
			continue
		}
		cols[i] = rec.Column(i)
	}

	return array.NewRecord(rec.Schema(), cols, rec.NumRows()), remapping, nil
}

// ApplyParentID rewrites rec's parentColumn per remapping, propagating a
// parent table's Reindex to one of its child tables: through Ranks when
// the parent run was renumbered, otherwise by Offset.
func ApplyParentID(mem memory.Allocator, rec arrow.Record, parentColumn string, remapping Remapping) (arrow.Record, error) {
	idx := fieldIndex(rec.Schema(), parentColumn)
	if idx < 0 {
		return nil, werror.NewColumnNotFound(parentColumn)
	}
	col := rec.Column(idx)

	var shifted arrow.Array
	var err error
	if remapping.Ranks != nil {
		shifted, err = remapColumn(mem, col, remapping.Ranks)
	} else {
		shifted, err = shiftColumn(mem, col, remapping.Offset)
	}
	if err != nil {
		return nil, err
	}
	defer shifted.Release()

	cols := make([]arrow.Array, rec.Schema().NumFields())
	for i := range cols {
		if i == idx {
			cols[i] = shifted
			continue
		}
		cols[i] = rec.Column(i)
	}
	return array.NewRecord(rec.Schema(), cols, rec.NumRows()), nil
}

func fieldIndex(s *arrow.Schema, name string) int {
	indices := s.FieldIndices(name)
	if len(indices) == 0 {
		return -1
	}
	return indices[0]
}

// idRun summarizes the non-null values of an id column for reindexing.
type idRun struct {
	distinct []uint64 // sorted ascending, deduplicated
	min, max uint64
	gapFree  bool // every consecutive sorted non-null value equal or differs by 1
}

// analyzeIDs walks col (a uint16 or uint32 id column), and reports
// whether it carries any non-null value at all plus, if so, the run
// summary Reindex needs to decide between a vectorized shift and a
// run-length-compress renumbering.
func analyzeIDs(col arrow.Array) (idRun, bool, error) {
	values := make([]uint64, 0, col.Len())
	for i := 0; i < col.Len(); i++ {
		if col.IsNull(i) {
			continue
		}
		v, ok := uintValue(col, i)
		if !ok {
			return idRun{}, false, werror.NewTypeMismatch("<id column>", arrow.PrimitiveTypes.Uint32, col.DataType())
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return idRun{}, false, nil
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	gapFree := true
	distinct := values[:1:1]
	for i := 1; i < len(values); i++ {
		if values[i]-values[i-1] > 1 {
			gapFree = false
		}
		if values[i] != values[i-1] {
			distinct = append(distinct, values[i])
		}
	}
	return idRun{distinct: distinct, min: values[0], max: values[len(values)-1], gapFree: gapFree}, true, nil
}

func uintValue(col arrow.Array, i int) (uint64, bool) {
	switch a := col.(type) {
	case *array.Uint16:
		return uint64(a.Value(i)), true
	case *array.Uint32:
		return uint64(a.Value(i)), true
	default:
		return 0, false
	}
}

// shiftColumn adds offset to every non-null value of col, preserving
// col's concrete width (u16 or u32).
func shiftColumn(mem memory.Allocator, col arrow.Array, offset uint64) (arrow.Array, error) {
	switch a := col.(type) {
	case *array.Uint16:
		b := array.NewUint16Builder(mem)
		defer b.Release()
		for i := 0; i < a.Len(); i++ {
			if a.IsNull(i) {
				b.AppendNull()
				continue
			}
			b.Append(uint16(uint64(a.Value(i)) + offset))
		}
		return b.NewArray(), nil
	case *array.Uint32:
		b := array.NewUint32Builder(mem)
		defer b.Release()
		for i := 0; i < a.Len(); i++ {
			if a.IsNull(i) {
				b.AppendNull()
				continue
			}
			b.Append(uint32(uint64(a.Value(i)) + offset))
		}
		return b.NewArray(), nil
	default:
		return nil, werror.NewTypeMismatch("<id column>", arrow.PrimitiveTypes.Uint32, col.DataType())
	}
}

// remapColumn replaces every non-null value of col with its entry in
// ranks, preserving col's concrete width (u16 or u32). A value with no
// entry in ranks passes through unchanged, matching Remapping.Apply's
// fallback.
func remapColumn(mem memory.Allocator, col arrow.Array, ranks map[uint64]uint64) (arrow.Array, error) {
	lookup := func(v uint64) uint64 {
		if nv, ok := ranks[v]; ok {
			return nv
		}
		return v
	}
	switch a := col.(type) {
	case *array.Uint16:
		b := array.NewUint16Builder(mem)
		defer b.Release()
		for i := 0; i < a.Len(); i++ {
			if a.IsNull(i) {
				b.AppendNull()
				continue
			}
			b.Append(uint16(lookup(uint64(a.Value(i)))))
		}
		return b.NewArray(), nil
	case *array.Uint32:
		b := array.NewUint32Builder(mem)
		defer b.Release()
		for i := 0; i < a.Len(); i++ {
			if a.IsNull(i) {
				b.AppendNull()
				continue
			}
			b.Append(uint32(lookup(uint64(a.Value(i)))))
		}
		return b.NewArray(), nil
	default:
		return nil, werror.NewTypeMismatch("<id column>", arrow.PrimitiveTypes.Uint32, col.DataType())
	}
}

// PartitionPoints returns the row boundaries that split an n-row
// primary table into chunks of at most maxRows rows each: [0,
// boundary1, boundary2, ..., n].
func PartitionPoints(n, maxRows int) []int {
	if maxRows <= 0 || n <= maxRows {
		return []int{0, n}
	}
	bounds := []int{0}
	for b := maxRows; b < n; b += maxRows {
		bounds = append(bounds, b)
	}
	bounds = append(bounds, n)
	return bounds
}

// PartitionChildren slices child (sorted ascending by its parentColumn,
// which holds ids in the same space as the primary table's id column)
// into one sub-record per primary chunk boundary in bounds, using
// binary search to find each chunk's parent_id row range. Chunks with
// no matching children get a zero-row slice of child's schema, not a
// nil record.
func PartitionChildren(child arrow.Record, parentColumn string, bounds []int) ([]arrow.Record, error) {
	idx := fieldIndex(child.Schema(), parentColumn)
	if idx < 0 {
		return nil, werror.NewColumnNotFound(parentColumn)
	}
	col := child.Column(idx)

	parentAt := func(i int) uint64 {
		v, _ := uintValue(col, i)
		return v
	}

	n := col.Len()
	out := make([]arrow.Record, len(bounds)-1)
	for c := 0; c < len(bounds)-1; c++ {
		lowID, highID := uint64(bounds[c]), uint64(bounds[c+1])
		lo := sort.Search(n, func(i int) bool { return parentAt(i) >= lowID })
		hi := sort.Search(n, func(i int) bool { return parentAt(i) >= highID })
		out[c] = child.NewSlice(int64(lo), int64(hi))
	}
	return out, nil
}
