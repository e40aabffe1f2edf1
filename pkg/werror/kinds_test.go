/*
 * Copyright The OpenTelemetry Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *        http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

package werror

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindErrorIs(t *testing.T) {
	t.Parallel()

	err := NewColumnNotFound("parent_id")
	require.True(t, errors.Is(err, ErrColumnNotFound))
	require.False(t, errors.Is(err, ErrTypeMismatch))

	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, ColumnNotFound, kind)
}

func TestKindErrorMessage(t *testing.T) {
	t.Parallel()

	err := NewBatching(errors.New("schema mismatch"))
	require.Contains(t, err.Error(), "Batching")
	require.Contains(t, err.Error(), "schema mismatch")
}
