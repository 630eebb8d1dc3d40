package queue

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/baldhadhaval08/pantry-wizard/internal/core/ai/provider"
	"github.com/baldhadhaval08/pantry-wizard/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingBackend 在 release 關閉前阻塞
type blockingBackend struct {
	started chan struct{}
	release chan struct{}
	calls   int32
	closed  int32
}

func newBlockingBackend() *blockingBackend {
	return &blockingBackend{
		started: make(chan struct{}, 8),
		release: make(chan struct{}),
	}
}

func (b *blockingBackend) Generate(ctx context.Context, prompt string, timeout time.Duration) (string, error) {
	atomic.AddInt32(&b.calls, 1)
	b.started <- struct{}{}
	select {
	case <-b.release:
		return "echo:" + prompt, nil
	case <-ctx.Done():
		return "", provider.Classify(ctx.Err())
	}
}

func (b *blockingBackend) Name() string { return "blocking" }

func (b *blockingBackend) Close() error {
	atomic.AddInt32(&b.closed, 1)
	return nil
}

func TestManagerGenerate(t *testing.T) {
	backend := newBlockingBackend()
	close(backend.release)
	m := NewManager(backend, config.QueueConfig{Workers: 2, MaxSize: 4})
	defer m.Close()

	out, err := m.Generate(context.Background(), "hello", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "echo:hello", out)
	assert.Equal(t, "blocking", m.Name())
	assert.Equal(t, 1, m.GetQueueStatus().ProcessedCount)
}

func TestManagerFullQueueIsUnavailable(t *testing.T) {
	backend := newBlockingBackend()
	m := NewManager(backend, config.QueueConfig{Workers: 1, MaxSize: 1})
	defer m.Close()

	first := make(chan error, 1)
	go func() {
		_, err := m.Generate(context.Background(), "one", 5*time.Second)
		first <- err
	}()
	<-backend.started

	second := make(chan error, 1)
	go func() {
		_, err := m.Generate(context.Background(), "two", 5*time.Second)
		second <- err
	}()
	require.Eventually(t, func() bool {
		return m.GetQueueStatus().QueueLength == 1
	}, time.Second, 5*time.Millisecond)

	_, err := m.Generate(context.Background(), "three", 5*time.Second)
	assert.ErrorIs(t, err, provider.ErrBackendUnavailable)

	close(backend.release)
	assert.NoError(t, <-first)
	assert.NoError(t, <-second)
}

func TestManagerTimeoutWhileWaiting(t *testing.T) {
	backend := newBlockingBackend()
	m := NewManager(backend, config.QueueConfig{Workers: 1, MaxSize: 2})
	defer func() {
		close(backend.release)
		m.Close()
	}()

	_, err := m.Generate(context.Background(), "slow", 30*time.Millisecond)
	assert.ErrorIs(t, err, provider.ErrBackendTimeout)
}

func TestManagerClose(t *testing.T) {
	backend := newBlockingBackend()
	m := NewManager(backend, config.QueueConfig{Workers: 1, MaxSize: 1})

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
	assert.Equal(t, int32(1), atomic.LoadInt32(&backend.closed))

	_, err := m.Generate(context.Background(), "late", time.Second)
	assert.ErrorIs(t, err, provider.ErrBackendUnavailable)
}
