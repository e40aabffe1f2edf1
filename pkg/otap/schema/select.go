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
	"sort"

	"github.com/apache/arrow/go/v12/arrow"
)

// SelectSchema turns a FieldIndex built by IndexRecords into a single
// unified arrow.Schema (C1), choosing the narrowest dictionary key
// width the cardinality estimator (C2) says is safe for each
// dictionary-eligible field, or plain when the field's cardinality
// exceeds the u16 bound. Top-level fields are emitted in first-seen
// order so the output schema is stable across repeated runs over the
// same input order; a struct's sub-fields are sorted by name.
func SelectSchema(idx *FieldIndex) (*arrow.Schema, error) {
	fields := make([]arrow.Field, 0, len(idx.Order))
	for _, name := range idx.Order {
		info := idx.Fields[name]
		field, err := selectField(info)
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}
	return arrow.NewSchema(fields, nil), nil
}

func selectField(info *FieldInfo) (arrow.Field, error) {
	if info.StructIndex != nil {
		subFields := make([]arrow.Field, 0, len(info.StructIndex.Order))
		for _, name := range info.StructIndex.Order {
			sub, err := selectField(info.StructIndex.Fields[name])
			if err != nil {
				return arrow.Field{}, err
			}
			subFields = append(subFields, sub)
		}
		sort.SliceStable(subFields, func(i, j int) bool { return subFields[i].Name < subFields[j].Name })
		return arrow.Field{
			Name:     info.Name,
			Type:     arrow.StructOf(subFields...),
			Nullable: info.Nullable,
		}, nil
	}

	dt := info.ValueType
	if info.DictSeen && isDictionaryEligible(dt) {
		card := EstimateCardinality(info)
		if card != GreaterThanU16 {
			keyType := keyTypeFor(card)
			dt = &arrow.DictionaryType{IndexType: keyType, ValueType: dt, Ordered: false}
		}
	}

	return arrow.Field{
		Name:     info.Name,
		Type:     dt,
		Nullable: info.Nullable,
	}, nil
}

// isDictionaryEligible reports whether dt is ever worth dictionary
// encoding: variable-width and fixed-size binary values and 4- or
// 8-byte numerics, but not booleans (only two possible values) or 1-
// and 2-byte natives, where a dictionary adds overhead rather than
// saving it.
func isDictionaryEligible(dt arrow.DataType) bool {
	switch dt.ID() {
	case arrow.STRING, arrow.BINARY, arrow.FIXED_SIZE_BINARY,
		arrow.INT64, arrow.UINT64, arrow.FLOAT64, arrow.INT32, arrow.UINT32:
		return true
	default:
		return false
	}
}

func keyTypeFor(card Cardinality) arrow.DataType {
	switch card {
	case WithinU8:
		return arrow.PrimitiveTypes.Uint8
	default:
		return arrow.PrimitiveTypes.Uint16
	}
}
