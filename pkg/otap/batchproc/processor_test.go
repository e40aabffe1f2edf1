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
	"context"
	"sync"
	"testing"
	"time"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/arrow/memory"
	"github.com/stretchr/testify/require"

	"github.com/open-telemetry/otel-arrow-core/pkg/otap/payload"
)

type fakeHandler struct {
	mu      sync.Mutex
	nextKey Key
	sent    []*payload.Bundle
}

func (h *fakeHandler) SendBatch(ctx context.Context, bundle *payload.Bundle) (Key, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextKey++
	h.sent = append(h.sent, bundle)
	return h.nextKey, nil
}

func logsBundle(t *testing.T, mem memory.Allocator, n int) *payload.Bundle {
	t.Helper()
	s := arrow.NewSchema([]arrow.Field{{Name: "value", Type: arrow.PrimitiveTypes.Int64}}, nil)
	rb := array.NewRecordBuilder(mem, s)
	defer rb.Release()
	b := rb.Field(0).(*array.Int64Builder)
	for i := 0; i < n; i++ {
		b.Append(int64(i))
	}
	rec := rb.NewRecord()

	bundle := payload.NewBundle(payload.Logs)
	bundle.Set(payload.LogRecords, rec)
	return bundle
}

func TestProcessorFlushesAtSendBatchSize(t *testing.T) {
	mem := memory.NewGoAllocator()
	handler := &fakeHandler{}
	cfg := NewConfig(WithSendBatchSize(2), WithTimeout(time.Hour))
	p, err := NewProcessor(cfg, handler, nil)
	require.NoError(t, err)
	p.mem = mem

	require.NoError(t, p.Accept(context.Background(), logsBundle(t, mem, 1)))
	handler.mu.Lock()
	require.Len(t, handler.sent, 0)
	handler.mu.Unlock()

	require.NoError(t, p.Accept(context.Background(), logsBundle(t, mem, 1)))
	handler.mu.Lock()
	require.Len(t, handler.sent, 1)
	require.Equal(t, int64(2), handler.sent[0].NumItems())
	handler.mu.Unlock()
}

func TestProcessorAckReleasesPendingBatch(t *testing.T) {
	mem := memory.NewGoAllocator()
	handler := &fakeHandler{}
	cfg := NewConfig(WithSendBatchSize(1), WithTimeout(time.Hour))
	p, err := NewProcessor(cfg, handler, nil)
	require.NoError(t, err)
	p.mem = mem

	require.NoError(t, p.Accept(context.Background(), logsBundle(t, mem, 1)))
	require.Len(t, p.pending, 1)

	var key Key
	for k := range p.pending {
		key = k
	}
	require.NoError(t, p.HandleAck(key))
	require.Len(t, p.pending, 0)
	require.Equal(t, int64(1), p.Metrics().AcksReceived)
}

func TestProcessorRetryableNackRequeues(t *testing.T) {
	mem := memory.NewGoAllocator()
	handler := &fakeHandler{}
	cfg := NewConfig(WithSendBatchSize(1), WithTimeout(time.Hour))
	p, err := NewProcessor(cfg, handler, nil)
	require.NoError(t, err)
	p.mem = mem

	require.NoError(t, p.Accept(context.Background(), logsBundle(t, mem, 3)))
	var key Key
	for k := range p.pending {
		key = k
	}

	require.NoError(t, p.HandleNack(context.Background(), key, true))
	require.Len(t, p.pending, 0)
	require.Equal(t, int64(3), p.buffers[payload.Logs].ItemCount())
}

func TestProcessorNonRetryableNackDrops(t *testing.T) {
	mem := memory.NewGoAllocator()
	handler := &fakeHandler{}
	cfg := NewConfig(WithSendBatchSize(1), WithTimeout(time.Hour))
	p, err := NewProcessor(cfg, handler, nil)
	require.NoError(t, err)
	p.mem = mem

	require.NoError(t, p.Accept(context.Background(), logsBundle(t, mem, 3)))
	var key Key
	for k := range p.pending {
		key = k
	}

	require.NoError(t, p.HandleNack(context.Background(), key, false))
	require.Equal(t, int64(3), p.Metrics().ItemsDropped)
}
