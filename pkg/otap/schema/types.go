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

// Package schema implements the column index/schema unifier (C1) and
// the cardinality estimator (C2) from spec.md §4.1: walking a sequence
// of record batches for a single payload type, building a field index,
// and selecting a unified output schema with minimal dictionary key
// widths.
package schema

import (
	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"

	"github.com/open-telemetry/otel-arrow-core/pkg/werror"
)

// KeyWidth is the width of a dictionary index column. Only u8 and u16
// are supported output widths (spec.md §4.1); a wider key observed on
// input is rejected.
type KeyWidth uint8

const (
	// NoKey marks a plain (non-dictionary) column.
	NoKey KeyWidth = iota
	KeyU8
	KeyU16
)

// dictKeyWidth classifies dt, returning (width, true) if dt is a
// supported dictionary index type, or (NoKey, false) otherwise.
func dictKeyWidth(dt arrow.DataType) (KeyWidth, bool) {
	switch dt.ID() {
	case arrow.UINT8:
		return KeyU8, true
	case arrow.UINT16:
		return KeyU16, true
	default:
		return NoKey, false
	}
}

// UnwrapValueType returns the non-dictionary value type of dt: dt
// itself if dt is not a dictionary type, or the dictionary's value type
// otherwise.
func UnwrapValueType(dt arrow.DataType) arrow.DataType {
	if dict, ok := dt.(*arrow.DictionaryType); ok {
		return dict.ValueType
	}
	return dt
}

// dictionaryValues returns the logical (non-dictionary) values array
// backing col: col.(*array.Dictionary).Dictionary() if col is
// dictionary-encoded, or col itself otherwise.
func dictionaryValues(col arrow.Array) arrow.Array {
	if dict, ok := col.(*array.Dictionary); ok {
		return dict.Dictionary()
	}
	return col
}

// isStruct reports whether dt is a one-level struct type.
func isStruct(dt arrow.DataType) bool {
	_, ok := dt.(*arrow.StructType)
	return ok
}

// NativeWidth returns the fixed byte width of dt's native representation
// for the value types the cardinality estimator special-cases (1, 2, 4,
// 8, or fixed-size binary's declared width), or 0 if dt is variable
// width (utf8/binary) or otherwise not natively fixed.
func NativeWidth(dt arrow.DataType) int {
	switch t := dt.(type) {
	case *arrow.Uint8Type, *arrow.Int8Type, *arrow.BooleanType:
		return 1
	case *arrow.Uint16Type, *arrow.Int16Type:
		return 2
	case *arrow.Uint32Type, *arrow.Int32Type, *arrow.Float32Type:
		return 4
	case *arrow.Uint64Type, *arrow.Int64Type, *arrow.Float64Type:
		return 8
	case *arrow.FixedSizeBinaryType:
		return t.ByteWidth
	default:
		return 0
	}
}

func typeMismatch(column string, want, got arrow.DataType) error {
	return werror.NewTypeMismatch(column, want, got)
}
