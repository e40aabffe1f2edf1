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

// Package concat wires the schema unifier (C1), cardinality estimator
// (C2), and column converter (C3) into a single entry point: given a
// run of record batches for one payload type, produce one unified
// record batch.
package concat

import (
	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/arrow/memory"

	"github.com/open-telemetry/otel-arrow-core/pkg/otap/convert"
	"github.com/open-telemetry/otel-arrow-core/pkg/otap/schema"
	"github.com/open-telemetry/otel-arrow-core/pkg/werror"
)

// Concatenate indexes records, selects a unified schema across all of
// them, converts each to that schema, and concatenates the result into
// a single record batch. records must all describe the same payload
// type; callers group by payload type before calling this (see
// pkg/otap/batchproc).
func Concatenate(mem memory.Allocator, records []arrow.Record) (arrow.Record, error) {
	if len(records) == 0 {
		return nil, werror.NewValidationFailure("concatenate: no records")
	}
	if len(records) == 1 {
		idx, err := schema.IndexRecords(records)
		if err != nil {
			return nil, err
		}
		target, err := schema.SelectSchema(idx)
		if err != nil {
			return nil, err
		}
		return convert.ConvertColumns(mem, records[0], target)
	}

	idx, err := schema.IndexRecords(records)
	if err != nil {
		return nil, err
	}
	target, err := schema.SelectSchema(idx)
	if err != nil {
		return nil, err
	}

	converted := make([]arrow.Record, len(records))
	for i, rec := range records {
		out, err := convert.ConvertColumns(mem, rec, target)
		if err != nil {
			return nil, err
		}
		converted[i] = out
	}
	defer func() {
		for _, rec := range converted {
			rec.Release()
		}
	}()

	return concatConverted(mem, target, converted)
}

// concatConverted concatenates the columns of records (all already
// conforming to target) into a single record batch.
func concatConverted(mem memory.Allocator, target *arrow.Schema, records []arrow.Record) (arrow.Record, error) {
	n := int(target.NumFields())
	cols := make([]arrow.Array, n)
	var totalRows int64

	for i, rec := range records {
		if i == 0 {
			totalRows = rec.NumRows()
		} else {
			totalRows += rec.NumRows()
		}
	}

	for col := 0; col < n; col++ {
		chunks := make([]arrow.Array, len(records))
		for i, rec := range records {
			chunks[i] = rec.Column(col)
		}
		merged, err := array.Concatenate(chunks, mem)
		if err != nil {
			return nil, werror.NewBatching(err)
		}
		cols[col] = merged
	}
	defer func() {
		for _, c := range cols {
			c.Release()
		}
	}()

	return array.NewRecord(target, cols, totalRows), nil
}
