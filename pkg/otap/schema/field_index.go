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
	"github.com/apache/arrow/go/v12/arrow"

	"github.com/open-telemetry/otel-arrow-core/pkg/werror"
)

// FieldInfo tracks everything the unifier and cardinality estimator
// need to know about one field observed across a run of input batches:
// its resolved (non-dictionary) type, whether it must be nullable in
// the output, whether any batch dictionary-encoded it, and the value
// arrays to sample for cardinality estimation.
type FieldInfo struct {
	Name      string
	ValueType arrow.DataType
	Nullable  bool

	// DictSeen is true if at least one batch presented this field
	// dictionary-encoded. A mix of plain and dictionary-encoded
	// batches for the same field is legal; the unified output is
	// dictionary-encoded iff DictSeen is true for any batch.
	DictSeen bool

	// StructIndex is non-nil iff ValueType is a one-level struct type;
	// it recursively indexes the struct's own fields.
	StructIndex *FieldIndex

	// TotalElementCount is the number of rows the field contributes to
	// across every batch in the run, including rows where the field is
	// absent or null.
	TotalElementCount int64
	// TotalValueCount is the number of non-null values observed.
	TotalValueCount int64
	// LargestValueCount is the largest single-batch non-null count.
	// The cardinality estimator does not read it.
	LargestValueCount int64

	// Values holds, per batch that presented this field, the logical
	// value array (dictionary values unwrapped). Used by the
	// cardinality estimator; the unifier does not need it beyond this
	// point.
	Values []arrow.Array
}

// FieldIndex accumulates FieldInfo for every field observed across a
// run of record batches sharing one payload type, in first-seen order.
type FieldIndex struct {
	Order  []string
	Fields map[string]*FieldInfo

	BatchCount int
	RowCount   int64
}

func newFieldIndex() *FieldIndex {
	return &FieldIndex{Fields: make(map[string]*FieldInfo)}
}

func (idx *FieldIndex) fieldFor(name string) *FieldInfo {
	if info, ok := idx.Fields[name]; ok {
		return info
	}
	info := &FieldInfo{Name: name}
	idx.Fields[name] = info
	idx.Order = append(idx.Order, name)
	return info
}

// IndexRecords walks records (all of the same payload type, already
// grouped by caller) and builds the field index the schema unifier (C1)
// and cardinality estimator (C2) consume. Fields are added to the index
// in first-seen order; a field missing from a later batch, or null in
// any row, is marked Nullable. A field whose resolved type differs
// across batches, or whose dictionary key width is unsupported, is a
// TypeMismatch / UnsupportedDictionaryKeyType error.
func IndexRecords(records []arrow.Record) (*FieldIndex, error) {
	idx := newFieldIndex()
	idx.BatchCount = len(records)

	seenThisBatch := make(map[string]bool)
	for _, rec := range records {
		idx.RowCount += rec.NumRows()
		schema := rec.Schema()
		for k := range seenThisBatch {
			delete(seenThisBatch, k)
		}

		for i := 0; i < int(schema.NumFields()); i++ {
			field := schema.Field(i)
			col := rec.Column(i)
			seenThisBatch[field.Name] = true

			info := idx.fieldFor(field.Name)
			if err := indexColumn(info, field, col); err != nil {
				return nil, err
			}
		}

		for name, info := range idx.Fields {
			if !seenThisBatch[name] {
				info.Nullable = true
			}
		}
	}

	for _, info := range idx.Fields {
		info.TotalElementCount = idx.RowCount
		if info.StructIndex != nil {
			for _, sub := range info.StructIndex.Fields {
				sub.TotalElementCount = idx.RowCount
			}
		}
	}

	return idx, nil
}

// numericWidening lists the promotions accepted when batches disagree on
// a field's numeric type; the field keeps the wider type.
var numericWidening = map[arrow.Type]arrow.Type{
	arrow.INT32:   arrow.INT64,
	arrow.UINT32:  arrow.UINT64,
	arrow.FLOAT32: arrow.FLOAT64,
}

func indexColumn(info *FieldInfo, field arrow.Field, col arrow.Array) error {
	resolvedType := UnwrapValueType(field.Type)

	if info.ValueType == nil {
		info.ValueType = resolvedType
	} else if !arrow.TypeEqual(info.ValueType, resolvedType) {
		if isStruct(info.ValueType) && isStruct(resolvedType) {
			// both struct: recursion below will reconcile field by
			// field, so a shape difference is not itself a mismatch.
		} else if wide, ok := numericWidening[info.ValueType.ID()]; ok && wide == resolvedType.ID() {
			// a later batch carries the wider type: keep it.
			info.ValueType = resolvedType
		} else if wide, ok := numericWidening[resolvedType.ID()]; ok && wide == info.ValueType.ID() {
			// narrower than the type already kept; the converter widens it.
		} else {
			return typeMismatch(info.Name, info.ValueType, resolvedType)
		}
	}

	if _, isDict := field.Type.(*arrow.DictionaryType); isDict {
		dictType := field.Type.(*arrow.DictionaryType)
		if _, ok := dictKeyWidth(dictType.IndexType); !ok {
			return werror.NewUnsupportedDictionaryKeyType(info.Name, dictType.IndexType)
		}
		info.DictSeen = true
	}

	if col.NullN() > 0 {
		info.Nullable = true
	}
	if field.Nullable {
		info.Nullable = true
	}

	nonNull := int64(col.Len() - col.NullN())
	info.TotalValueCount += nonNull
	if nonNull > info.LargestValueCount {
		info.LargestValueCount = nonNull
	}

	values := dictionaryValues(col)
	info.Values = append(info.Values, values)

	if isStruct(resolvedType) {
		structArr, ok := values.(interface {
			Field(int) arrow.Array
		})
		if !ok {
			return werror.NewInvalidDataTypeForStruct(info.Name)
		}
		structType := resolvedType.(*arrow.StructType)
		if info.StructIndex == nil {
			info.StructIndex = newFieldIndex()
		}
		info.StructIndex.BatchCount++
		info.StructIndex.RowCount += int64(values.Len())

		seen := make(map[string]bool, structType.NumFields())
		for i := 0; i < structType.NumFields(); i++ {
			sub := structType.Field(i)
			if isStruct(UnwrapValueType(sub.Type)) {
				return werror.NewInvalidDataTypeForStruct(info.Name + "." + sub.Name)
			}
			subInfo := info.StructIndex.fieldFor(sub.Name)
			seen[sub.Name] = true
			if err := indexColumn(subInfo, sub, structArr.Field(i)); err != nil {
				return err
			}
		}
		for name, subInfo := range info.StructIndex.Fields {
			if !seen[name] {
				subInfo.Nullable = true
			}
		}
	}

	return nil
}
