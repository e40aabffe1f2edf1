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

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrimaryPerSignal(t *testing.T) {
	require.Equal(t, LogRecords, Primary(Logs))
	require.Equal(t, Spans, Primary(Traces))
	require.Equal(t, UnivariateMetrics, Primary(Metrics))
}

func TestTypesListsEveryTypeOnce(t *testing.T) {
	for _, signal := range []Signal{Logs, Traces, Metrics} {
		seen := make(map[Type]bool)
		for _, pt := range Types(signal) {
			require.False(t, seen[pt], "duplicate type %v in signal %v", pt, signal)
			seen[pt] = true
		}
		require.Contains(t, seen, Primary(signal))
	}
}

func TestParentChainsTerminateAtPrimary(t *testing.T) {
	for _, signal := range []Signal{Logs, Traces, Metrics} {
		for _, pt := range Types(signal) {
			depth := 0
			cur := pt
			for {
				parent, ok := Parent(signal, cur)
				if !ok {
					break
				}
				depth++
				require.Less(t, depth, 10, "parent chain for %v in %v looks cyclic", pt, signal)
				cur = parent
			}
		}
	}
}

func TestIDWidthOfPrimaryAndSharedTablesIsNarrow(t *testing.T) {
	require.Equal(t, Width16, IDWidthOf(Logs, LogRecords))
	require.Equal(t, Width16, IDWidthOf(Logs, ResourceAttrs))
	require.Equal(t, Width16, IDWidthOf(Logs, ScopeAttrs))
	require.Equal(t, Width32, IDWidthOf(Logs, LogAttrs))
}

func TestBundleNumItemsAndIsEmpty(t *testing.T) {
	b := NewBundle(Logs)
	require.True(t, b.IsEmpty())
	require.Equal(t, int64(0), b.NumItems())
}

func TestBundleSetNilRemoves(t *testing.T) {
	b := NewBundle(Logs)
	b.Set(LogAttrs, nil)
	_, ok := b.Tables[LogAttrs]
	require.False(t, ok)
}
