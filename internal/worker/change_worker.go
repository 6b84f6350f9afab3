// Package worker runs the change feed consumer.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"inari/internal/amqp"
	"inari/internal/cache"
)

// Consumer delivers change messages until its context is done.
type Consumer interface {
	ConsumeChanges(ctx context.Context, handler func(context.Context, *amqp.ChangeMessage) error) error
}

// Processor applies one change message.
type Processor interface {
	Apply(ctx context.Context, msg *amqp.ChangeMessage) error
}

// ChangeWorker feeds consumed changes into the processor and expires the
// store caches while it runs.
type ChangeWorker struct {
	consumer   Consumer
	processor  Processor
	caches     *cache.Manager
	cleanEvery time.Duration
	processed  atomic.Int64
	failed     atomic.Int64
}

func NewChangeWorker(consumer Consumer, processor Processor, caches *cache.Manager, cleanEvery time.Duration) *ChangeWorker {
	return &ChangeWorker{
		consumer:   consumer,
		processor:  processor,
		caches:     caches,
		cleanEvery: cleanEvery,
	}
}

// Run blocks until ctx is done or the consumer fails. A cancelled context is
// a clean stop and returns nil.
func (w *ChangeWorker) Run(ctx context.Context) error {
	if w.caches != nil && w.cleanEvery > 0 {
		w.caches.StartCleanup(w.cleanEvery)
		defer w.caches.Stop()
	}

	slog.InfoContext(ctx, "Change worker started", "component", "worker")
	err := w.consumer.ConsumeChanges(ctx, w.handle)
	slog.InfoContext(ctx, "Change worker stopped",
		"component", "worker",
		"processed", w.processed.Load(),
		"failed", w.failed.Load())

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

func (w *ChangeWorker) handle(ctx context.Context, msg *amqp.ChangeMessage) error {
	if err := w.processor.Apply(ctx, msg); err != nil {
		w.failed.Add(1)
		return err
	}
	w.processed.Add(1)
	return nil
}

// Stats returns how many messages were applied and how many failed.
func (w *ChangeWorker) Stats() (processed, failed int64) {
	return w.processed.Load(), w.failed.Load()
}
