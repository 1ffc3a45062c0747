package workerpool

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoReturnsResult(t *testing.T) {
	p := New(2)
	errBoom := errors.New("boom")

	assert.NoError(t, p.Do(context.Background(), func() error { return nil }))
	assert.ErrorIs(t, p.Do(context.Background(), func() error { return errBoom }), errBoom)
}

func TestDefaultSize(t *testing.T) {
	assert.Equal(t, runtime.NumCPU(), New(0).Size())
}

func TestDoBoundsConcurrency(t *testing.T) {
	const size = 2
	p := New(size)

	var running, peak int32
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = p.Do(context.Background(), func() error {
				n := atomic.AddInt32(&running, 1)
				for {
					old := atomic.LoadInt32(&peak)
					if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				atomic.AddInt32(&running, -1)
				return nil
			})
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(size))
}

func TestDoHonoursContextWhileQueued(t *testing.T) {
	p := New(1)
	release := make(chan struct{})
	started := make(chan struct{})

	go func() {
		_ = p.Do(context.Background(), func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := p.Do(ctx, func() error { return nil })
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
}

func TestDoRecoversPanics(t *testing.T) {
	p := New(1)

	err := p.Do(context.Background(), func() error { panic("bad hash") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad hash")

	// slot was released
	assert.NoError(t, p.Do(context.Background(), func() error { return nil }))
}
