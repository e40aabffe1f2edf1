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

	"github.com/open-telemetry/otel-arrow-core/pkg/otel/constants"
	"github.com/open-telemetry/otel-arrow-core/pkg/werror"
)

// Attribute type codes carried in the AttrsRecordType ("type") column:
// u8, drawn from {Empty, Str, Int, Double, Bool, Bytes, Map, Slice}.
// Map and Slice values serialize into AttrsRecordSer rather than one of
// the typed value columns below, so they have no entry in
// attrValueColumn and therefore never continue a run — not even with
// another Map or Slice row — in computeAttributeContinues.
const (
	attrTypeEmpty uint8 = iota
	attrTypeStr
	attrTypeInt
	attrTypeDouble
	attrTypeBool
	attrTypeBytes
	attrTypeMap
	attrTypeSlice
)

// attrValueColumn maps an attribute type code to the single column that
// holds its value.
var attrValueColumn = map[uint8]string{
	attrTypeStr:    constants.AttrsRecordStr,
	attrTypeInt:    constants.AttrsRecordInt,
	attrTypeDouble: constants.AttrsRecordDouble,
	attrTypeBool:   constants.AttrsRecordBool,
	attrTypeBytes:  constants.AttrsRecordBytes,
}

// isAttrsSchema reports whether schema carries the discriminated
// type/key/value columns of an attribute table, which is what selects
// AttributeQuasiDelta's run-boundary rule (computeAttributeContinues)
// over the generic SortKeys-prefix rule (computeContinues) for a
// parent_id column encoded EncodingQuasiDelta.
func isAttrsSchema(schema *arrow.Schema) bool {
	return fieldIndex(schema, constants.AttrsRecordType) >= 0 && fieldIndex(schema, constants.AttrsRecordKey) >= 0
}

// computeAttributeContinues implements AttributeQuasiDelta's run
// boundary: row i+1 continues row i's run only when both rows carry
// the same (type, key), and, among type's own value column, equal
// values — a null on either side, or a type (Map/Slice) with no
// declared value column at all, never continues a run.
func computeAttributeContinues(schema *arrow.Schema, cols []arrow.Array, numRows int) ([]bool, error) {
	if numRows == 0 {
		return nil, nil
	}

	typeIdx := fieldIndex(schema, constants.AttrsRecordType)
	keyIdx := fieldIndex(schema, constants.AttrsRecordKey)
	if typeIdx < 0 {
		return nil, werror.NewColumnNotFound(constants.AttrsRecordType)
	}
	if keyIdx < 0 {
		return nil, werror.NewColumnNotFound(constants.AttrsRecordKey)
	}

	valueIdx := make(map[string]int, len(attrValueColumn))
	for _, name := range attrValueColumn {
		if _, ok := valueIdx[name]; ok {
			continue
		}
		idx := fieldIndex(schema, name)
		if idx < 0 {
			return nil, werror.NewColumnNotFound(name)
		}
		valueIdx[name] = idx
	}

	typeCol := cols[typeIdx]
	keyCol := cols[keyIdx]

	continues := make([]bool, numRows-1)
	for i := range continues {
		if !valueEquals(typeCol, i, i+1) || !valueEquals(keyCol, i, i+1) {
			continue
		}
		valueCol, ok := attrValueColumn[attrTypeValue(typeCol, i)]
		if !ok {
			continue
		}
		continues[i] = valueEquals(cols[valueIdx[valueCol]], i, i+1)
	}
	return continues, nil
}

func attrTypeValue(col arrow.Array, i int) uint8 {
	switch a := col.(type) {
	case *array.Uint8:
		return a.Value(i)
	case *array.Int8:
		return uint8(a.Value(i))
	default:
		return attrTypeEmpty
	}
}
