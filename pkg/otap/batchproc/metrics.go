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

import "sync/atomic"

// Metrics holds the processor's running counters. All fields are
// accessed through atomic operations so Accept, Flush, HandleAck, and
// HandleNack can run from different goroutines without a shared lock.
type Metrics struct {
	itemsAccepted  int64
	batchesFlushed int64
	itemsFlushed   int64
	acksReceived   int64
	nacksReceived  int64
	itemsRetried   int64
	itemsDropped   int64
}

func (m *Metrics) addAccepted(n int64)  { atomic.AddInt64(&m.itemsAccepted, n) }
func (m *Metrics) addFlushed(batches, items int64) {
	atomic.AddInt64(&m.batchesFlushed, batches)
	atomic.AddInt64(&m.itemsFlushed, items)
}
func (m *Metrics) addAck()           { atomic.AddInt64(&m.acksReceived, 1) }
func (m *Metrics) addNack()          { atomic.AddInt64(&m.nacksReceived, 1) }
func (m *Metrics) addRetried(n int64) { atomic.AddInt64(&m.itemsRetried, n) }
func (m *Metrics) addDropped(n int64) { atomic.AddInt64(&m.itemsDropped, n) }

// Snapshot is a point-in-time, non-atomic copy of Metrics suitable for
// logging or exporting.
type Snapshot struct {
	ItemsAccepted  int64
	BatchesFlushed int64
	ItemsFlushed   int64
	AcksReceived   int64
	NacksReceived  int64
	ItemsRetried   int64
	ItemsDropped   int64
}

// Snapshot reads every counter atomically and returns a Snapshot.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		ItemsAccepted:  atomic.LoadInt64(&m.itemsAccepted),
		BatchesFlushed: atomic.LoadInt64(&m.batchesFlushed),
		ItemsFlushed:   atomic.LoadInt64(&m.itemsFlushed),
		AcksReceived:   atomic.LoadInt64(&m.acksReceived),
		NacksReceived:  atomic.LoadInt64(&m.nacksReceived),
		ItemsRetried:   atomic.LoadInt64(&m.itemsRetried),
		ItemsDropped:   atomic.LoadInt64(&m.itemsDropped),
	}
}
