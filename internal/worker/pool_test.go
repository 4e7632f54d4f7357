package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestPoolRunsAllTasksBeforeStop(t *testing.T) {
	pool := NewPool(3, zerolog.Nop())
	pool.Start(context.Background())

	var done int32
	for i := 0; i < 20; i++ {
		require.NoError(t, pool.Submit(func(ctx context.Context) {
			atomic.AddInt32(&done, 1)
		}))
	}

	pool.Stop()
	require.Equal(t, int32(20), atomic.LoadInt32(&done))
	require.Zero(t, pool.Active())

	err := pool.Submit(func(ctx context.Context) {})
	require.True(t, errors.Is(err, ErrPoolStopped))
	pool.Stop()
}

func TestPoolRecoversFromPanics(t *testing.T) {
	pool := NewPool(1, zerolog.Nop())
	pool.Start(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	require.NoError(t, pool.Submit(func(ctx context.Context) { panic("boom") }))
	require.NoError(t, pool.Submit(func(ctx context.Context) { wg.Done() }))

	wg.Wait()
	pool.Stop()
}

func TestPoolReportsFullQueue(t *testing.T) {
	pool := NewPool(1, zerolog.Nop())
	pool.submitTimeout = 10 * time.Millisecond

	release := make(chan struct{})
	pool.Start(context.Background())
	require.NoError(t, pool.Submit(func(ctx context.Context) { <-release }))

	require.Eventually(t, func() bool { return pool.Active() == 1 }, time.Second, time.Millisecond)

	for i := 0; i < 10; i++ {
		require.NoError(t, pool.Submit(func(ctx context.Context) {}))
	}
	err := pool.Submit(func(ctx context.Context) {})
	require.True(t, errors.Is(err, ErrQueueFull))

	close(release)
	pool.Stop()
}
