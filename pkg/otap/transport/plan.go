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
	"github.com/open-telemetry/otel-arrow-core/pkg/otap/payload"
	"github.com/open-telemetry/otel-arrow-core/pkg/otel/constants"
)

// Plan is the fixed, per-payload-type encoding strategy: which columns
// carry ids, how those columns are delta-encoded, and the column order
// rows must be sorted into before encoding so the deltas are small.
type Plan struct {
	IDColumn         string
	IDEncoding       Encoding
	ParentIDColumn   string // "" for tables with no parent (top-level per signal)
	ParentIDEncoding Encoding
	SortKeys         []string
	// GroupColumns is the declared companion-column set C for
	// EncodingColumnarQuasiDelta: parent_id run boundaries fall wherever
	// any of these columns changes value between adjacent sorted rows.
	// Unused by every other Encoding, where the boundary columns are
	// instead derived from SortKeys (see quasiDeltaBoundaries).
	GroupColumns []string
}

// attrsSortKeys is the sort-key order every *Attrs table uses: cluster
// rows first by the attribute's logical identity (type, key), then by
// whichever single value column that type populates, so that repeated
// (type,key,value) triples — the common case for a fixed-cardinality
// attribute on many rows — land adjacent and quasi-delta their shared
// parent_id down to small or zero deltas.
var attrsSortKeys = []string{
	constants.AttrsRecordType,
	constants.AttrsRecordKey,
	constants.AttrsRecordStr,
	constants.AttrsRecordInt,
	constants.AttrsRecordDouble,
	constants.AttrsRecordBool,
	constants.AttrsRecordBytes,
	constants.ParentID,
}

// plans is the compile-time table of encoding plans, one per payload
// type, built at init rather than assembled through a registration
// side effect: every payload type is known up front (see
// pkg/otap/payload), so there is nothing to discover at runtime.
var plans = map[payload.Type]Plan{
	payload.ResourceAttrs: {IDColumn: constants.ID, IDEncoding: EncodingDeltaRemapped, ParentIDColumn: constants.ParentID, ParentIDEncoding: EncodingQuasiDelta, SortKeys: attrsSortKeys},
	payload.ScopeAttrs:    {IDColumn: constants.ID, IDEncoding: EncodingDeltaRemapped, ParentIDColumn: constants.ParentID, ParentIDEncoding: EncodingQuasiDelta, SortKeys: attrsSortKeys},

	payload.LogRecords: {IDColumn: constants.ID, IDEncoding: EncodingDelta, SortKeys: []string{constants.ID}},
	payload.LogAttrs:   {IDColumn: constants.ID, IDEncoding: EncodingDeltaRemapped, ParentIDColumn: constants.ParentID, ParentIDEncoding: EncodingQuasiDelta, SortKeys: attrsSortKeys},

	payload.Spans:          {IDColumn: constants.ID, IDEncoding: EncodingDelta, SortKeys: []string{constants.ID}},
	payload.SpanAttrs:      {IDColumn: constants.ID, IDEncoding: EncodingDeltaRemapped, ParentIDColumn: constants.ParentID, ParentIDEncoding: EncodingQuasiDelta, SortKeys: attrsSortKeys},
	payload.SpanEvents:     {IDColumn: constants.ID, IDEncoding: EncodingDeltaRemapped, ParentIDColumn: constants.ParentID, ParentIDEncoding: EncodingQuasiDelta, SortKeys: []string{constants.Name, constants.ParentID}},
	payload.SpanLinks:      {IDColumn: constants.ID, IDEncoding: EncodingDeltaRemapped, ParentIDColumn: constants.ParentID, ParentIDEncoding: EncodingQuasiDelta, SortKeys: []string{constants.TraceId, constants.ParentID}},
	payload.SpanEventAttrs: {IDColumn: constants.ID, IDEncoding: EncodingDeltaRemapped, ParentIDColumn: constants.ParentID, ParentIDEncoding: EncodingQuasiDelta, SortKeys: attrsSortKeys},
	payload.SpanLinkAttrs:  {IDColumn: constants.ID, IDEncoding: EncodingDeltaRemapped, ParentIDColumn: constants.ParentID, ParentIDEncoding: EncodingQuasiDelta, SortKeys: attrsSortKeys},

	payload.UnivariateMetrics:            {IDColumn: constants.ID, IDEncoding: EncodingDelta, SortKeys: []string{constants.ID}},
	payload.NumberDataPoints:             {IDColumn: constants.ID, IDEncoding: EncodingDeltaRemapped, ParentIDColumn: constants.ParentID, ParentIDEncoding: EncodingColumnarQuasiDelta, SortKeys: []string{constants.AttributesID, constants.ParentID}, GroupColumns: []string{constants.AttributesID}},
	payload.SummaryDataPoints:            {IDColumn: constants.ID, IDEncoding: EncodingDeltaRemapped, ParentIDColumn: constants.ParentID, ParentIDEncoding: EncodingColumnarQuasiDelta, SortKeys: []string{constants.AttributesID, constants.ParentID}, GroupColumns: []string{constants.AttributesID}},
	payload.HistogramDataPoints:          {IDColumn: constants.ID, IDEncoding: EncodingDeltaRemapped, ParentIDColumn: constants.ParentID, ParentIDEncoding: EncodingColumnarQuasiDelta, SortKeys: []string{constants.AttributesID, constants.ParentID}, GroupColumns: []string{constants.AttributesID}},
	payload.ExpHistogramDataPoints:       {IDColumn: constants.ID, IDEncoding: EncodingDeltaRemapped, ParentIDColumn: constants.ParentID, ParentIDEncoding: EncodingColumnarQuasiDelta, SortKeys: []string{constants.AttributesID, constants.ParentID}, GroupColumns: []string{constants.AttributesID}},
	payload.NumberDpAttrs:                {IDColumn: constants.ID, IDEncoding: EncodingDeltaRemapped, ParentIDColumn: constants.ParentID, ParentIDEncoding: EncodingQuasiDelta, SortKeys: attrsSortKeys},
	payload.SummaryDpAttrs:               {IDColumn: constants.ID, IDEncoding: EncodingDeltaRemapped, ParentIDColumn: constants.ParentID, ParentIDEncoding: EncodingQuasiDelta, SortKeys: attrsSortKeys},
	payload.HistogramDpAttrs:             {IDColumn: constants.ID, IDEncoding: EncodingDeltaRemapped, ParentIDColumn: constants.ParentID, ParentIDEncoding: EncodingQuasiDelta, SortKeys: attrsSortKeys},
	payload.ExpHistogramDpAttrs:          {IDColumn: constants.ID, IDEncoding: EncodingDeltaRemapped, ParentIDColumn: constants.ParentID, ParentIDEncoding: EncodingQuasiDelta, SortKeys: attrsSortKeys},
	payload.NumberDpExemplars:            {IDColumn: constants.ID, IDEncoding: EncodingDeltaRemapped, ParentIDColumn: constants.ParentID, ParentIDEncoding: EncodingQuasiDelta, SortKeys: []string{constants.ParentID}},
	payload.HistogramDpExemplars:         {IDColumn: constants.ID, IDEncoding: EncodingDeltaRemapped, ParentIDColumn: constants.ParentID, ParentIDEncoding: EncodingQuasiDelta, SortKeys: []string{constants.ParentID}},
	payload.ExpHistogramDpExemplars:      {IDColumn: constants.ID, IDEncoding: EncodingDeltaRemapped, ParentIDColumn: constants.ParentID, ParentIDEncoding: EncodingQuasiDelta, SortKeys: []string{constants.ParentID}},
	payload.NumberDpExemplarAttrs:        {IDColumn: constants.ID, IDEncoding: EncodingDeltaRemapped, ParentIDColumn: constants.ParentID, ParentIDEncoding: EncodingQuasiDelta, SortKeys: attrsSortKeys},
	payload.HistogramDpExemplarAttrs:     {IDColumn: constants.ID, IDEncoding: EncodingDeltaRemapped, ParentIDColumn: constants.ParentID, ParentIDEncoding: EncodingQuasiDelta, SortKeys: attrsSortKeys},
	payload.ExpHistogramDpExemplarAttrs:  {IDColumn: constants.ID, IDEncoding: EncodingDeltaRemapped, ParentIDColumn: constants.ParentID, ParentIDEncoding: EncodingQuasiDelta, SortKeys: attrsSortKeys},
	payload.MultivariateMetrics:          {IDColumn: constants.ID, IDEncoding: EncodingDeltaRemapped, ParentIDColumn: constants.ParentID, ParentIDEncoding: EncodingColumnarQuasiDelta, SortKeys: []string{constants.AttributesID, constants.ParentID}, GroupColumns: []string{constants.AttributesID}},
	payload.MetricAttrs:                  {IDColumn: constants.ID, IDEncoding: EncodingDeltaRemapped, ParentIDColumn: constants.ParentID, ParentIDEncoding: EncodingQuasiDelta, SortKeys: attrsSortKeys},
}

// PlanFor returns the fixed encoding plan for pt. Every payload.Type
// has an entry; a missing entry is a programming error in this
// package, not a runtime condition callers need to handle.
func PlanFor(pt payload.Type) Plan {
	return plans[pt]
}
