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
	"time"

	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	c := NewConfig()
	require.NoError(t, c.Validate())
	require.Equal(t, uint32(8192), c.SendBatchSize)
}

func TestConfigOptionsApply(t *testing.T) {
	c := NewConfig(WithSendBatchSize(10), WithSendBatchMaxSize(20), WithTimeout(time.Second))
	require.NoError(t, c.Validate())
	require.Equal(t, uint32(10), c.SendBatchSize)
	require.Equal(t, uint32(20), c.SendBatchMaxSize)
}

func TestConfigValidateRejectsInvertedMaxSize(t *testing.T) {
	c := NewConfig(WithSendBatchSize(100), WithSendBatchMaxSize(10))
	require.Error(t, c.Validate())
}

func TestConfigValidateRejectsZeroSendBatchSize(t *testing.T) {
	c := NewConfig(WithSendBatchSize(0))
	require.Error(t, c.Validate())
}
