package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inari/internal/amqp"
	"inari/internal/cache"
)

type stubConsumer struct {
	messages []*amqp.ChangeMessage
	results  []error
	err      error
}

func (c *stubConsumer) ConsumeChanges(ctx context.Context, handler func(context.Context, *amqp.ChangeMessage) error) error {
	for _, msg := range c.messages {
		c.results = append(c.results, handler(ctx, msg))
	}
	if c.err != nil {
		return c.err
	}
	return context.Canceled
}

type stubProcessor struct {
	fail map[string]error
}

func (p stubProcessor) Apply(_ context.Context, msg *amqp.ChangeMessage) error {
	return p.fail[msg.ID]
}

type countingCleaner struct{ calls int }

func (c *countingCleaner) CleanExpired() int {
	c.calls++
	return 0
}

func TestChangeWorker_Run(t *testing.T) {
	now := time.Now()
	rejected := errors.New("rejected")
	consumer := &stubConsumer{messages: []*amqp.ChangeMessage{
		amqp.NewDeleteMessage("Transaction", "a", now),
		amqp.NewDeleteMessage("Transaction", "b", now),
		amqp.NewDeleteMessage("Transaction", "c", now),
	}}
	w := NewChangeWorker(consumer, stubProcessor{fail: map[string]error{"b": rejected}}, nil, 0)

	require.NoError(t, w.Run(context.Background()), "cancellation is a clean stop")

	assert.Equal(t, []error{nil, rejected, nil}, consumer.results)
	processed, failed := w.Stats()
	assert.Equal(t, int64(2), processed)
	assert.Equal(t, int64(1), failed)
}

func TestChangeWorker_ConsumerFailure(t *testing.T) {
	boom := errors.New("start consuming: access refused")
	w := NewChangeWorker(&stubConsumer{err: boom}, stubProcessor{}, nil, 0)
	assert.ErrorIs(t, w.Run(context.Background()), boom)
}

func TestChangeWorker_StopsCacheCleanup(t *testing.T) {
	manager := cache.NewManager()
	cleaner := &countingCleaner{}
	manager.Register(cleaner)

	w := NewChangeWorker(&stubConsumer{}, stubProcessor{}, manager, time.Hour)
	require.NoError(t, w.Run(context.Background()))

	// cleanup goroutine has stopped, so sweeping by hand is race free
	assert.Equal(t, 0, manager.CleanNow())
	assert.Equal(t, 1, cleaner.calls)
}
