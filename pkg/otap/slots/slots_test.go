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

package slots

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTableInsertGetRemove(t *testing.T) {
	tbl := NewTable[string]()
	k := tbl.Insert("a")

	v, ok := tbl.Get(k)
	require.True(t, ok)
	require.Equal(t, "a", v)
	require.Equal(t, 1, tbl.Len())

	removed, ok := tbl.Remove(k)
	require.True(t, ok)
	require.Equal(t, "a", removed)
	require.Equal(t, 0, tbl.Len())

	_, ok = tbl.Get(k)
	require.False(t, ok)
}

func TestTableKeysNeverReused(t *testing.T) {
	tbl := NewTable[int]()
	k1 := tbl.Insert(1)
	tbl.Remove(k1)
	k2 := tbl.Insert(2)
	require.NotEqual(t, k1, k2)
}

func TestTableRange(t *testing.T) {
	tbl := NewTable[int]()
	tbl.Insert(1)
	tbl.Insert(2)
	tbl.Insert(3)

	sum := 0
	tbl.Range(func(_ Key, v int) bool {
		sum += v
		return true
	})
	require.Equal(t, 6, sum)
}
