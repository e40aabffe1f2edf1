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

// Package slots provides a small slot table that tracks in-flight work
// by key. The table has no capacity limit: Insert always succeeds. The
// batch processor does not use it; it keeps its own map of pending
// batches. It stands in for the Rust accessory::slots Key/State arena this module
// was distilled from: Go has no generational arena in the standard
// library, and generics make a minimal map-backed version a one-file
// affair rather than a dependency.
package slots

import "sync"

// Key identifies one slot. Keys are never reused while a table is
// live: Remove retires a key permanently rather than recycling it,
// so a stale Key a caller is still holding reliably misses Get rather
// than silently reading another entry's state.
type Key uint64

// Table is a concurrency-safe map from Key to V, handing out
// monotonically increasing keys on Insert.
type Table[V any] struct {
	mu    sync.Mutex
	next  Key
	items map[Key]V
}

// NewTable constructs an empty table.
func NewTable[V any]() *Table[V] {
	return &Table[V]{items: make(map[Key]V)}
}

// Insert adds v under a freshly allocated key and returns it.
func (t *Table[V]) Insert(v V) Key {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	k := t.next
	t.items[k] = v
	return k
}

// Get returns the value at k, or the zero value and false if k is
// absent or was already removed.
func (t *Table[V]) Get(k Key) (V, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.items[k]
	return v, ok
}

// Set overwrites the value at k if present, reporting whether k was
// found.
func (t *Table[V]) Set(k Key, v V) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.items[k]; !ok {
		return false
	}
	t.items[k] = v
	return true
}

// Remove deletes k and returns its prior value, if any.
func (t *Table[V]) Remove(k Key) (V, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.items[k]
	delete(t.items, k)
	return v, ok
}

// Len reports the number of live entries.
func (t *Table[V]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.items)
}

// Keys returns a snapshot of the currently live keys, in no particular
// order.
func (t *Table[V]) Keys() []Key {
	t.mu.Lock()
	defer t.mu.Unlock()
	keys := make([]Key, 0, len(t.items))
	for k := range t.items {
		keys = append(keys, k)
	}
	return keys
}

// Range calls fn for every live entry, stopping early if fn returns
// false. fn must not call back into the table: Range holds the lock
// for its duration.
func (t *Table[V]) Range(fn func(Key, V) bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for k, v := range t.items {
		if !fn(k, v) {
			return
		}
	}
}
