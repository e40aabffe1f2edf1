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

package payload

import "github.com/apache/arrow/go/v12/arrow"

// Bundle is a mapping from payload type to optional record batch, for
// exactly one signal. It is a plain value: no back-pointers, no shared
// mutable state, matching the execution-context-by-parameter guidance
// in spec.md §9.
type Bundle struct {
	Signal Signal
	Tables map[Type]arrow.Record
}

// NewBundle creates an empty bundle for the given signal.
func NewBundle(signal Signal) *Bundle {
	return &Bundle{Signal: signal, Tables: make(map[Type]arrow.Record)}
}

// Get returns the record batch for pt, or nil if absent.
func (b *Bundle) Get(pt Type) arrow.Record {
	return b.Tables[pt]
}

// Set installs rec (which may be nil) for pt.
func (b *Bundle) Set(pt Type, rec arrow.Record) {
	if rec == nil {
		delete(b.Tables, pt)
		return
	}
	b.Tables[pt] = rec
}

// NumItems returns the row count of the primary table, or 0 if absent
// (an empty bundle per invariant I4).
func (b *Bundle) NumItems() int64 {
	rec := b.Get(Primary(b.Signal))
	if rec == nil {
		return 0
	}
	return rec.NumRows()
}

// IsEmpty reports whether the bundle's primary table has zero rows (or
// is absent). Per invariant I4, such bundles must never be emitted
// downstream.
func (b *Bundle) IsEmpty() bool {
	return b.NumItems() == 0
}

// Release releases every non-nil table held by the bundle.
func (b *Bundle) Release() {
	for _, rec := range b.Tables {
		if rec != nil {
			rec.Release()
		}
	}
}

// Clone returns a shallow copy of the bundle sharing the same records
// (each record's reference count is bumped via Retain).
func (b *Bundle) Clone() *Bundle {
	out := NewBundle(b.Signal)
	for pt, rec := range b.Tables {
		if rec != nil {
			rec.Retain()
			out.Tables[pt] = rec
		}
	}
	return out
}
