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

// Package batchproc implements the batch processor (C6): accumulating
// signal bundles until a size or time threshold is reached, merging
// them via pkg/otap/concat, and tracking outstanding batches through
// ack/nack. A retryable nack re-queues the whole batch; a
// non-retryable one drops it.
package batchproc

import (
	"time"

	"github.com/open-telemetry/otel-arrow-core/pkg/werror"
)

// Config controls when the processor flushes an accumulated buffer.
// Follows the teacher's functional-options convention (the former
// pkg/config): build with NewConfig(options...), never by
// exported-field literal.
type Config struct {
	// SendBatchSize is the item count at which a buffer flushes as soon
	// as it is reached.
	SendBatchSize uint32
	// SendBatchMaxSize caps a single flushed batch; a buffer holding
	// more than this is split into multiple batches in Flush (see C4's
	// Split / pkg/otap/reindex.PartitionPoints). Zero means unbounded.
	SendBatchMaxSize uint32
	// Timeout flushes whatever is buffered, even if SendBatchSize has
	// not been reached, once this long has elapsed since the oldest
	// unflushed item arrived.
	Timeout time.Duration
	// MaxPendingBatches bounds how many flushed-but-unacknowledged
	// batches the processor tracks before Accept starts refusing new
	// input (back-pressure instead of unbounded memory growth).
	MaxPendingBatches int
}

// Option configures a Config.
type Option func(*Config)

// WithSendBatchSize sets the item count that triggers an immediate
// flush.
func WithSendBatchSize(n uint32) Option {
	return func(c *Config) { c.SendBatchSize = n }
}

// WithSendBatchMaxSize sets the per-batch item cap enforced at flush
// time.
func WithSendBatchMaxSize(n uint32) Option {
	return func(c *Config) { c.SendBatchMaxSize = n }
}

// WithTimeout sets the maximum time an item waits in the buffer before
// a flush is forced.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.Timeout = d }
}

// WithMaxPendingBatches sets the back-pressure limit on unacknowledged
// flushed batches.
func WithMaxPendingBatches(n int) Option {
	return func(c *Config) { c.MaxPendingBatches = n }
}

// NewConfig builds a Config from sane defaults plus opts, in order.
func NewConfig(opts ...Option) *Config {
	c := &Config{
		SendBatchSize:     8192,
		SendBatchMaxSize:  0,
		Timeout:           200 * time.Millisecond,
		MaxPendingBatches: 1000,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Validate reports a ValidationFailure error for any setting that
// cannot produce a working processor.
func (c *Config) Validate() error {
	if c.SendBatchSize == 0 {
		return werror.NewValidationFailure("send_batch_size must be > 0")
	}
	if c.SendBatchMaxSize != 0 && c.SendBatchMaxSize < c.SendBatchSize {
		return werror.NewValidationFailure("send_batch_max_size (%d) must be >= send_batch_size (%d)", c.SendBatchMaxSize, c.SendBatchSize)
	}
	if c.Timeout <= 0 {
		return werror.NewValidationFailure("timeout must be > 0")
	}
	if c.MaxPendingBatches <= 0 {
		return werror.NewValidationFailure("max_pending_batches must be > 0")
	}
	return nil
}
