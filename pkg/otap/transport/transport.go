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

	"github.com/open-telemetry/otel-arrow-core/pkg/otel/constants"
	"github.com/open-telemetry/otel-arrow-core/pkg/werror"
)

// Encode sorts rec per plan.SortKeys and replaces its id/parent_id
// columns with their delta encoding. The returned record is ready for
// wire transmission; Decode reverses it given the same plan.
func Encode(mem memory.Allocator, rec arrow.Record, plan Plan) (arrow.Record, error) {
	sorted, err := SortForEncoding(mem, rec, plan.SortKeys)
	if err != nil {
		return nil, err
	}
	defer sorted.Release()

	cols := make([]arrow.Array, sorted.Schema().NumFields())
	for i := range cols {
		cols[i] = sorted.Column(i)
		cols[i].Retain()
	}
	defer func() {
		for _, c := range cols {
			c.Release()
		}
	}()
	fields := append([]arrow.Field(nil), sorted.Schema().Fields()...)
	numRows := int(sorted.NumRows())

	if err := encodeIDColumn(mem, sorted.Schema(), fields, cols, plan, plan.IDColumn, plan.IDEncoding, numRows); err != nil {
		return nil, err
	}
	if plan.ParentIDColumn != "" {
		if err := encodeIDColumn(mem, sorted.Schema(), fields, cols, plan, plan.ParentIDColumn, plan.ParentIDEncoding, numRows); err != nil {
			return nil, err
		}
	}

	return array.NewRecord(arrow.NewSchema(fields, nil), cols, sorted.NumRows()), nil
}

func encodeIDColumn(mem memory.Allocator, schema *arrow.Schema, fields []arrow.Field, cols []arrow.Array, plan Plan, column string, enc Encoding, numRows int) error {
	if enc == EncodingPlain || column == "" {
		return nil
	}
	idx := fieldIndex(schema, column)
	if idx < 0 {
		return werror.NewColumnNotFound(column)
	}

	var encoded arrow.Array
	var wireEncoding string
	var err error
	switch enc {
	case EncodingDelta, EncodingDeltaRemapped:
		encoded, err = deltaEncode(mem, cols[idx], true)
		wireEncoding = constants.EncodingDelta
	case EncodingQuasiDelta, EncodingColumnarQuasiDelta:
		var continues []bool
		continues, err = quasiDeltaBoundaries(plan, schema, cols, column, enc, numRows)
		if err == nil {
			encoded, err = quasiDeltaEncode(mem, cols[idx], continues)
		}
		wireEncoding = constants.EncodingQuasiDelta
	default:
		return werror.NewInternal("unknown id encoding %d for column %q", enc, column)
	}
	if err != nil {
		return werror.WrapWithContext(err, map[string]interface{}{"column": column})
	}

	cols[idx].Release()
	cols[idx] = encoded
	fields[idx] = stampEncoding(fields[idx], encoded.DataType(), wireEncoding)
	return nil
}

// quasiDeltaBoundaries computes the run-continuation vector for
// column's quasi-delta encoding. EncodingColumnarQuasiDelta always uses
// the declared companion-column set C (plan.GroupColumns). Plain
// EncodingQuasiDelta uses AttributeQuasiDelta's type/key/value rule
// when the schema is attribute-shaped (computeAttributeContinues), and
// otherwise falls back to the generic rule: every column that precedes
// column in plan.SortKeys must be equal between adjacent rows — which
// covers a span-events table's name, a span-links table's trace_id,
// and a table sorted by parent_id alone (the exemplar tables: no
// columns precede its parent_id) where every row continues the same
// run and quasi-delta reduces to ordinary delta.
func quasiDeltaBoundaries(plan Plan, schema *arrow.Schema, cols []arrow.Array, column string, enc Encoding, numRows int) ([]bool, error) {
	if enc == EncodingColumnarQuasiDelta {
		return computeContinues(schema, cols, plan.GroupColumns, numRows)
	}
	if isAttrsSchema(schema) {
		return computeAttributeContinues(schema, cols, numRows)
	}
	var groupCols []string
	for i, k := range plan.SortKeys {
		if k == column {
			groupCols = plan.SortKeys[:i]
			break
		}
	}
	return computeContinues(schema, cols, groupCols, numRows)
}

// computeContinues reports, for each pair of adjacent rows, whether
// row i+1 continues the same quasi-delta run as row i: every column in
// groupCols must compare equal between them (valueEquals, so a null on
// either side breaks the run). An empty groupCols means every row
// continues the same run, which reduces quasi-delta to ordinary delta.
func computeContinues(schema *arrow.Schema, cols []arrow.Array, groupCols []string, numRows int) ([]bool, error) {
	if numRows == 0 {
		return nil, nil
	}
	idxs := make([]int, len(groupCols))
	for i, g := range groupCols {
		idx := fieldIndex(schema, g)
		if idx < 0 {
			return nil, werror.NewColumnNotFound(g)
		}
		idxs[i] = idx
	}

	continues := make([]bool, numRows-1)
	for i := range continues {
		same := true
		for _, idx := range idxs {
			if !valueEquals(cols[idx], i, i+1) {
				same = false
				break
			}
		}
		continues[i] = same
	}
	return continues, nil
}

// stampEncoding returns a copy of f with its type updated to dt (a
// quasi-delta column switches from unsigned to signed on the wire) and
// its column_encoding metadata set to enc.
func stampEncoding(f arrow.Field, dt arrow.DataType, enc string) arrow.Field {
	f.Type = dt
	f.Metadata = arrow.NewMetadata([]string{constants.ColumnEncoding}, []string{enc})
	return f
}

// Decode reverses Encode. remappedBase, if non-nil, overrides the
// transmitted first value of an EncodingDeltaRemapped id column — the
// caller supplies the absolute base the C4 reindexer assigned this run
// rather than trusting whatever first value happened to be on the
// wire from the original producer.
func Decode(mem memory.Allocator, rec arrow.Record, plan Plan, remappedBase *uint64) (arrow.Record, error) {
	cols := make([]arrow.Array, rec.Schema().NumFields())
	for i := range cols {
		cols[i] = rec.Column(i)
		cols[i].Retain()
	}
	defer func() {
		for _, c := range cols {
			c.Release()
		}
	}()
	fields := append([]arrow.Field(nil), rec.Schema().Fields()...)
	numRows := int(rec.NumRows())

	if err := decodeIDColumn(mem, rec.Schema(), fields, cols, plan, plan.IDColumn, plan.IDEncoding, remappedBase, numRows); err != nil {
		return nil, err
	}
	if plan.ParentIDColumn != "" {
		if err := decodeIDColumn(mem, rec.Schema(), fields, cols, plan, plan.ParentIDColumn, plan.ParentIDEncoding, nil, numRows); err != nil {
			return nil, err
		}
	}

	return array.NewRecord(arrow.NewSchema(fields, nil), cols, rec.NumRows()), nil
}

func decodeIDColumn(mem memory.Allocator, schema *arrow.Schema, fields []arrow.Field, cols []arrow.Array, plan Plan, column string, enc Encoding, base *uint64, numRows int) error {
	if enc == EncodingPlain || column == "" {
		return nil
	}
	idx := fieldIndex(schema, column)
	if idx < 0 {
		return werror.NewColumnNotFound(column)
	}

	var decoded arrow.Array
	var err error
	switch enc {
	case EncodingDelta, EncodingDeltaRemapped:
		var useBase *uint64
		if enc == EncodingDeltaRemapped {
			useBase = base
		}
		decoded, err = deltaDecode(mem, cols[idx], useBase)
	case EncodingQuasiDelta, EncodingColumnarQuasiDelta:
		var continues []bool
		continues, err = quasiDeltaBoundaries(plan, schema, cols, column, enc, numRows)
		if err == nil {
			decoded, err = quasiDeltaDecode(mem, cols[idx], continues)
		}
	default:
		return werror.NewInternal("unknown id encoding %d for column %q", enc, column)
	}
	if err != nil {
		return werror.WrapWithContext(err, map[string]interface{}{"column": column})
	}
	cols[idx].Release()
	cols[idx] = decoded
	fields[idx] = stampEncoding(fields[idx], decoded.DataType(), constants.EncodingPlain)
	return nil
}

// ApplyRemapping shifts rec's parentColumn by offset, the
// transport-layer equivalent of reindex.ApplyParentID for a record
// whose id/parent_id column is still plain-delta-encoded (EncodingDelta
// or EncodingDeltaRemapped): since delta values only ever express a
// difference from the previous row, shifting the base is enough and no
// column needs to be touched except the very first row's stored
// absolute value. A quasi-delta column resets to an absolute value at
// every run boundary, not just row 0, so it needs every reset point
// shifted and is out of scope here.
func ApplyRemapping(mem memory.Allocator, rec arrow.Record, parentColumn string, offset uint64) (arrow.Record, error) {
	idx := fieldIndex(rec.Schema(), parentColumn)
	if idx < 0 {
		return nil, werror.NewColumnNotFound(parentColumn)
	}

	cols := make([]arrow.Array, rec.Schema().NumFields())
	for i := range cols {
		cols[i] = rec.Column(i)
		cols[i].Retain()
	}
	defer func() {
		for _, c := range cols {
			c.Release()
		}
	}()

	shifted, err := shiftFirstValue(mem, cols[idx], offset)
	if err != nil {
		return nil, err
	}
	cols[idx].Release()
	cols[idx] = shifted

	return array.NewRecord(rec.Schema(), cols, rec.NumRows()), nil
}

// shiftFirstValue adds offset to only the first non-null value of col,
// leaving every subsequent delta untouched.
func shiftFirstValue(mem memory.Allocator, col arrow.Array, offset uint64) (arrow.Array, error) {
	switch a := col.(type) {
	case *array.Uint32:
		b := array.NewUint32Builder(mem)
		defer b.Release()
		shifted := false
		for i := 0; i < a.Len(); i++ {
			if a.IsNull(i) {
				b.AppendNull()
				continue
			}
			if !shifted {
				b.Append(a.Value(i) + uint32(offset))
				shifted = true
				continue
			}
			b.Append(a.Value(i))
		}
		return b.NewArray(), nil
	case *array.Uint16:
		b := array.NewUint16Builder(mem)
		defer b.Release()
		shifted := false
		for i := 0; i < a.Len(); i++ {
			if a.IsNull(i) {
				b.AppendNull()
				continue
			}
			if !shifted {
				b.Append(a.Value(i) + uint16(offset))
				shifted = true
				continue
			}
			b.Append(a.Value(i))
		}
		return b.NewArray(), nil
	default:
		return nil, werror.NewTypeMismatch("<id column>", arrow.PrimitiveTypes.Uint32, col.DataType())
	}
}
