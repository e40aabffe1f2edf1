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

// Package payload defines the closed set of record-batch roles (Type)
// that make up a signal bundle, and the per-signal lookup tables that
// describe how those roles nest (primary, attributes, children,
// grandchildren).
package payload

// Signal identifies which OTLP signal a bundle carries.
type Signal uint8

const (
	Logs Signal = iota
	Traces
	Metrics
)

func (s Signal) String() string {
	switch s {
	case Logs:
		return "logs"
	case Traces:
		return "traces"
	case Metrics:
		return "metrics"
	default:
		return "unknown"
	}
}

// Type enumerates every record-batch role across every signal. Each
// signal only uses a subset of these, as reported by Types(signal).
type Type uint8

const (
	ResourceAttrs Type = iota
	ScopeAttrs

	// Logs
	LogRecords
	LogAttrs

	// Traces
	Spans
	SpanAttrs
	SpanEvents
	SpanLinks
	SpanEventAttrs
	SpanLinkAttrs

	// Metrics
	UnivariateMetrics
	NumberDataPoints
	SummaryDataPoints
	HistogramDataPoints
	ExpHistogramDataPoints
	NumberDpAttrs
	SummaryDpAttrs
	HistogramDpAttrs
	ExpHistogramDpAttrs
	NumberDpExemplars
	HistogramDpExemplars
	ExpHistogramDpExemplars
	NumberDpExemplarAttrs
	HistogramDpExemplarAttrs
	ExpHistogramDpExemplarAttrs
	MultivariateMetrics
	MetricAttrs

	numTypes
)

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return "unknown"
}

var typeNames = map[Type]string{
	ResourceAttrs:                "ResourceAttrs",
	ScopeAttrs:                   "ScopeAttrs",
	LogRecords:                   "Logs",
	LogAttrs:                     "LogAttrs",
	Spans:                        "Spans",
	SpanAttrs:                    "SpanAttrs",
	SpanEvents:                   "SpanEvents",
	SpanLinks:                    "SpanLinks",
	SpanEventAttrs:               "SpanEventAttrs",
	SpanLinkAttrs:                "SpanLinkAttrs",
	UnivariateMetrics:            "UnivariateMetrics",
	NumberDataPoints:             "NumberDataPoints",
	SummaryDataPoints:            "SummaryDataPoints",
	HistogramDataPoints:          "HistogramDataPoints",
	ExpHistogramDataPoints:       "ExpHistogramDataPoints",
	NumberDpAttrs:                "NumberDpAttrs",
	SummaryDpAttrs:               "SummaryDpAttrs",
	HistogramDpAttrs:             "HistogramDpAttrs",
	ExpHistogramDpAttrs:          "ExpHistogramDpAttrs",
	NumberDpExemplars:            "NumberDpExemplars",
	HistogramDpExemplars:         "HistogramDpExemplars",
	ExpHistogramDpExemplars:      "ExpHistogramDpExemplars",
	NumberDpExemplarAttrs:        "NumberDpExemplarAttrs",
	HistogramDpExemplarAttrs:     "HistogramDpExemplarAttrs",
	ExpHistogramDpExemplarAttrs:  "ExpHistogramDpExemplarAttrs",
	MultivariateMetrics:          "MultivariateMetrics",
	MetricAttrs:                  "MetricAttrs",
}

// logsTypes, tracesTypes, and metricsTypes are the compile-time bundle
// layout tables from spec §6, built once at package init rather than a
// global mutable registry (see DESIGN.md: replaces the "distributed
// slice" factory-registry pattern with an explicit static table).
var (
	logsTypes    = []Type{ResourceAttrs, ScopeAttrs, LogRecords, LogAttrs}
	tracesTypes  = []Type{ResourceAttrs, ScopeAttrs, Spans, SpanAttrs, SpanEvents, SpanLinks, SpanEventAttrs, SpanLinkAttrs}
	metricsTypes = []Type{
		ResourceAttrs, ScopeAttrs, UnivariateMetrics,
		NumberDataPoints, SummaryDataPoints, HistogramDataPoints, ExpHistogramDataPoints,
		NumberDpAttrs, SummaryDpAttrs, HistogramDpAttrs, ExpHistogramDpAttrs,
		NumberDpExemplars, HistogramDpExemplars, ExpHistogramDpExemplars,
		NumberDpExemplarAttrs, HistogramDpExemplarAttrs, ExpHistogramDpExemplarAttrs,
		MultivariateMetrics, MetricAttrs,
	}
)

// Types returns the ordered payload types that make up a bundle for the
// given signal, outermost-dependency-first (a type never depends on a
// type that appears after it in this list).
func Types(signal Signal) []Type {
	switch signal {
	case Logs:
		return logsTypes
	case Traces:
		return tracesTypes
	case Metrics:
		return metricsTypes
	default:
		return nil
	}
}

// Primary returns the payload type whose row count defines the bundle's
// item count for the given signal: LogRecords, Spans, or
// UnivariateMetrics.
func Primary(signal Signal) Type {
	switch signal {
	case Logs:
		return LogRecords
	case Traces:
		return Spans
	case Metrics:
		return UnivariateMetrics
	default:
		return numTypes
	}
}

// Parent reports the payload type that pt's parent_id column refers to,
// for child/grandchild tables, and false for primary/top-level tables
// with no parent_id column of their own.
func Parent(signal Signal, pt Type) (Type, bool) {
	switch signal {
	case Logs:
		switch pt {
		case LogAttrs:
			return LogRecords, true
		}
	case Traces:
		switch pt {
		case SpanAttrs, SpanEvents, SpanLinks:
			return Spans, true
		case SpanEventAttrs:
			return SpanEvents, true
		case SpanLinkAttrs:
			return SpanLinks, true
		}
	case Metrics:
		switch pt {
		case NumberDataPoints, SummaryDataPoints, HistogramDataPoints, ExpHistogramDataPoints:
			return UnivariateMetrics, true
		case NumberDpAttrs:
			return NumberDataPoints, true
		case SummaryDpAttrs:
			return SummaryDataPoints, true
		case HistogramDpAttrs:
			return HistogramDataPoints, true
		case ExpHistogramDpAttrs:
			return ExpHistogramDataPoints, true
		case NumberDpExemplars:
			return NumberDataPoints, true
		case HistogramDpExemplars:
			return HistogramDataPoints, true
		case ExpHistogramDpExemplars:
			return ExpHistogramDataPoints, true
		case NumberDpExemplarAttrs:
			return NumberDpExemplars, true
		case HistogramDpExemplarAttrs:
			return HistogramDpExemplars, true
		case ExpHistogramDpExemplarAttrs:
			return ExpHistogramDpExemplars, true
		case MetricAttrs:
			return UnivariateMetrics, true
		}
	}
	return numTypes, false
}

// IDWidth is the bit width of the id/parent_id column for a payload
// type: top-level per-signal rows and the resource and scope attribute
// tables use u16, everything else (data points, exemplars, events,
// links, and their attributes) uses u32.
type IDWidth uint8

const (
	Width16 IDWidth = 16
	Width32 IDWidth = 32
)

func IDWidthOf(signal Signal, pt Type) IDWidth {
	if pt == Primary(signal) || pt == ResourceAttrs || pt == ScopeAttrs {
		return Width16
	}
	return Width32
}
