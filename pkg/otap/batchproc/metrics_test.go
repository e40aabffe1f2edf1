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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMetricsSnapshot(t *testing.T) {
	var m Metrics
	m.addAccepted(5)
	m.addFlushed(1, 5)
	m.addAck()
	m.addNack()
	m.addRetried(2)
	m.addDropped(3)

	s := m.Snapshot()
	require.Equal(t, int64(5), s.ItemsAccepted)
	require.Equal(t, int64(1), s.BatchesFlushed)
	require.Equal(t, int64(5), s.ItemsFlushed)
	require.Equal(t, int64(1), s.AcksReceived)
	require.Equal(t, int64(1), s.NacksReceived)
	require.Equal(t, int64(2), s.ItemsRetried)
	require.Equal(t, int64(3), s.ItemsDropped)
}

func TestMetricsAccumulateAcrossCalls(t *testing.T) {
	var m Metrics
	m.addAccepted(1)
	m.addAccepted(2)
	require.Equal(t, int64(3), m.Snapshot().ItemsAccepted)
}
