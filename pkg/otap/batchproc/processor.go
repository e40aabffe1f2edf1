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
	"time"

	"github.com/apache/arrow/go/v12/arrow/memory"
	"go.uber.org/zap"

	"github.com/open-telemetry/otel-arrow-core/pkg/otap/payload"
	"github.com/open-telemetry/otel-arrow-core/pkg/otap/reindex"
	"github.com/open-telemetry/otel-arrow-core/pkg/otel/constants"
	"github.com/open-telemetry/otel-arrow-core/pkg/werror"
)

// EffectHandler is the boundary between the processor and whatever
// sends a flushed bundle onward (a gRPC exporter, a local consumer, a
// test double). SendBatch returns a Key the caller later passes
// back to HandleAck or HandleNack to resolve that specific batch;
// doing it this way, rather than a callback closure, keeps the
// processor's pending-batch bookkeeping out of the handler entirely.
type EffectHandler interface {
	SendBatch(ctx context.Context, bundle *payload.Bundle) (Key, error)
}

// Key identifies one flushed, not-yet-acknowledged batch.
type Key = uint64

// pendingBatch is what the processor remembers about a batch between
// SendBatch and the matching HandleAck/HandleNack.
type pendingBatch struct {
	signal    payload.Signal
	bundle    *payload.Bundle
	attempts  int
}

// Processor accumulates bundles into per-signal buffers, flushing each
// when it reaches Config.SendBatchSize or Config.Timeout, and tracks
// outstanding flushed batches until they are acknowledged or
// negatively acknowledged.
type Processor struct {
	cfg     *Config
	logger  *zap.Logger
	mem     memory.Allocator
	handler EffectHandler

	mu      sync.Mutex
	buffers map[payload.Signal]*SignalBuffer
	timers  map[payload.Signal]*time.Timer

	pendingMu sync.Mutex
	pending   map[Key]*pendingBatch

	metrics Metrics
}

// NewProcessor constructs a Processor. logger may be nil, in which
// case a no-op logger is used.
func NewProcessor(cfg *Config, handler EffectHandler, logger *zap.Logger) (*Processor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		cfg:     cfg,
		logger:  logger,
		mem:     memory.NewGoAllocator(),
		handler: handler,
		buffers: make(map[payload.Signal]*SignalBuffer),
		timers:  make(map[payload.Signal]*time.Timer),
		pending: make(map[Key]*pendingBatch),
	}, nil
}

// Accept adds bundle to its signal's buffer, flushing immediately if
// the buffer has reached Config.SendBatchSize. When bundle is the
// first item in an empty buffer it also arms that signal's timeout
// timer, so the timeout counts from the oldest buffered item.
func (p *Processor) Accept(ctx context.Context, bundle *payload.Bundle) error {
	if bundle.IsEmpty() {
		return nil
	}

	p.pendingMu.Lock()
	pendingCount := len(p.pending)
	p.pendingMu.Unlock()
	if pendingCount >= p.cfg.MaxPendingBatches {
		return werror.NewInternal("pending batch limit (%d) reached", p.cfg.MaxPendingBatches)
	}

	p.mu.Lock()
	buf, ok := p.buffers[bundle.Signal]
	if !ok {
		buf = NewSignalBuffer(bundle.Signal)
		p.buffers[bundle.Signal] = buf
	}
	wasEmpty := buf.IsEmpty()
	buf.Add(bundle)
	p.metrics.addAccepted(bundle.NumItems())

	shouldFlush := uint32(buf.ItemCount()) >= p.cfg.SendBatchSize
	p.mu.Unlock()

	if wasEmpty {
		p.armTimer(bundle.Signal)
	}

	if shouldFlush {
		return p.flushSignal(ctx, bundle.Signal)
	}
	return nil
}

func (p *Processor) armTimer(signal payload.Signal) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if t, ok := p.timers[signal]; ok {
		t.Stop()
	}
	p.timers[signal] = time.AfterFunc(p.cfg.Timeout, func() {
		if err := p.flushSignal(context.Background(), signal); err != nil {
			p.logger.Warn("timed flush failed", zap.Error(err), zap.Stringer("signal", signal))
		}
	})
}

// Flush forces every signal's buffer to flush immediately, regardless
// of size or timeout state.
func (p *Processor) Flush(ctx context.Context) error {
	p.mu.Lock()
	signals := make([]payload.Signal, 0, len(p.buffers))
	for s := range p.buffers {
		signals = append(signals, s)
	}
	p.mu.Unlock()

	var firstErr error
	for _, s := range signals {
		if err := p.flushSignal(ctx, s); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (p *Processor) flushSignal(ctx context.Context, signal payload.Signal) error {
	p.mu.Lock()
	buf, ok := p.buffers[signal]
	if !ok || buf.IsEmpty() {
		p.mu.Unlock()
		return nil
	}
	bundle, err := buf.Drain(p.mem)
	p.mu.Unlock()
	if err != nil {
		return werror.NewBatching(err)
	}

	chunks, err := p.splitToMax(bundle)
	if err != nil {
		bundle.Release()
		return err
	}

	var firstErr error
	for _, chunk := range chunks {
		if err := p.sendChunk(ctx, signal, chunk); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// splitToMax breaks bundle's primary table into Config.SendBatchMaxSize
// chunks if needed. A zero SendBatchMaxSize means unbounded: the whole
// bundle ships as one chunk.
func (p *Processor) splitToMax(bundle *payload.Bundle) ([]*payload.Bundle, error) {
	if p.cfg.SendBatchMaxSize == 0 || bundle.NumItems() <= int64(p.cfg.SendBatchMaxSize) {
		return []*payload.Bundle{bundle}, nil
	}

	primary := payload.Primary(bundle.Signal)
	bounds := reindex.PartitionPoints(int(bundle.NumItems()), int(p.cfg.SendBatchMaxSize))

	chunks := make([]*payload.Bundle, len(bounds)-1)
	for i := range chunks {
		chunks[i] = payload.NewBundle(bundle.Signal)
	}

	for pt, rec := range bundle.Tables {
		if pt == primary {
			for i := 0; i < len(bounds)-1; i++ {
				chunks[i].Set(pt, rec.NewSlice(int64(bounds[i]), int64(bounds[i+1])))
			}
			continue
		}
		parent, hasParent := payload.Parent(bundle.Signal, pt)
		if !hasParent || parent != primary {
			// Only first-level children of the primary table are split
			// directly here; grandchildren follow the id chain of their
			// own immediate parent, which was itself a first-level child
			// sliced the same way, so their parent_id values already fall
			// into the matching chunk's range.
			for i := range chunks {
				chunks[i].Set(pt, rec)
				rec.Retain()
			}
			continue
		}
		slices, err := reindex.PartitionChildren(rec, constants.ParentID, bounds)
		if err != nil {
			for _, c := range chunks {
				c.Release()
			}
			return nil, err
		}
		for i, s := range slices {
			chunks[i].Set(pt, s)
		}
	}

	bundle.Release()
	return chunks, nil
}

func (p *Processor) sendChunk(ctx context.Context, signal payload.Signal, bundle *payload.Bundle) error {
	if bundle.IsEmpty() {
		bundle.Release()
		return nil
	}

	key, err := p.handler.SendBatch(ctx, bundle)
	if err != nil {
		bundle.Release()
		return werror.NewBatching(err)
	}

	p.pendingMu.Lock()
	p.pending[key] = &pendingBatch{signal: signal, bundle: bundle}
	p.pendingMu.Unlock()

	p.metrics.addFlushed(1, bundle.NumItems())
	return nil
}

// HandleAck marks the batch identified by key as successfully
// delivered, releasing its bundle.
func (p *Processor) HandleAck(key Key) error {
	p.pendingMu.Lock()
	pb, ok := p.pending[key]
	delete(p.pending, key)
	p.pendingMu.Unlock()

	if !ok {
		return werror.NewInternal("ack for unknown batch key %d", key)
	}
	p.metrics.addAck()
	pb.bundle.Release()
	return nil
}

// HandleNack reports that the batch identified by key failed
// downstream. If retryable, the batch is re-added to its signal's
// buffer for another attempt (and will be re-split and re-sent on the
// next flush); otherwise it is dropped and counted.
func (p *Processor) HandleNack(ctx context.Context, key Key, retryable bool) error {
	p.pendingMu.Lock()
	pb, ok := p.pending[key]
	delete(p.pending, key)
	p.pendingMu.Unlock()

	if !ok {
		return werror.NewInternal("nack for unknown batch key %d", key)
	}
	p.metrics.addNack()

	if !retryable {
		p.metrics.addDropped(pb.bundle.NumItems())
		p.logger.Warn("dropping batch after non-retryable nack", zap.Uint64("key", key))
		pb.bundle.Release()
		return nil
	}

	pb.attempts++
	p.metrics.addRetried(pb.bundle.NumItems())
	p.mu.Lock()
	buf, ok := p.buffers[pb.signal]
	if !ok {
		buf = NewSignalBuffer(pb.signal)
		p.buffers[pb.signal] = buf
	}
	buf.Add(pb.bundle)
	p.mu.Unlock()
	pb.bundle.Release()

	return nil
}

// Shutdown flushes every buffered item and stops all timers. Batches
// already sent and still awaiting ack/nack are left pending: callers
// that need to drain those too should wait on their own EffectHandler
// before calling Shutdown.
func (p *Processor) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	for _, t := range p.timers {
		t.Stop()
	}
	p.mu.Unlock()

	return p.Flush(ctx)
}

// Metrics returns a point-in-time snapshot of the processor's
// counters.
func (p *Processor) Metrics() Snapshot {
	return p.metrics.Snapshot()
}
