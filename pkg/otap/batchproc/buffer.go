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

package batchproc

import (
	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/memory"

	"github.com/open-telemetry/otel-arrow-core/pkg/otap/concat"
	"github.com/open-telemetry/otel-arrow-core/pkg/otap/payload"
)

// SignalBuffer accumulates bundles for one signal between flushes,
// keeping the record batches for each payload type separate until
// Drain concatenates them through pkg/otap/concat.
type SignalBuffer struct {
	signal    payload.Signal
	pending   map[payload.Type][]arrow.Record
	itemCount int64
}

// NewSignalBuffer constructs an empty buffer for signal.
func NewSignalBuffer(signal payload.Signal) *SignalBuffer {
	return &SignalBuffer{signal: signal, pending: make(map[payload.Type][]arrow.Record)}
}

// Add appends every table in bundle to the buffer, retaining a
// reference to each so the caller's bundle can be released
// independently.
func (b *SignalBuffer) Add(bundle *payload.Bundle) {
	for pt, rec := range bundle.Tables {
		if rec == nil {
			continue
		}
		rec.Retain()
		b.pending[pt] = append(b.pending[pt], rec)
	}
	b.itemCount += bundle.NumItems()
}

// ItemCount returns the buffer's running primary-table row count,
// the basis for SendBatchSize triggers.
func (b *SignalBuffer) ItemCount() int64 {
	return b.itemCount
}

// IsEmpty reports whether the buffer holds no items.
func (b *SignalBuffer) IsEmpty() bool {
	return b.itemCount == 0
}

// Drain concatenates every payload type's accumulated batches into one
// merged bundle, releases the buffer's internal references, and resets
// the buffer to empty.
func (b *SignalBuffer) Drain(mem memory.Allocator) (*payload.Bundle, error) {
	out := payload.NewBundle(b.signal)

	for pt, recs := range b.pending {
		merged, err := concat.Concatenate(mem, recs)
		if err != nil {
			for _, rec := range recs {
				rec.Release()
			}
			return nil, err
		}
		for _, rec := range recs {
			rec.Release()
		}
		out.Set(pt, merged)
	}

	b.pending = make(map[payload.Type][]arrow.Record)
	b.itemCount = 0
	return out, nil
}

// Reset releases every retained record and clears the buffer without
// producing a merged bundle.
func (b *SignalBuffer) Reset() {
	for _, recs := range b.pending {
		for _, rec := range recs {
			rec.Release()
		}
	}
	b.pending = make(map[payload.Type][]arrow.Record)
	b.itemCount = 0
}
