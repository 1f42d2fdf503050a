package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/unifyhub/core/internal/infrastructure/logger"
)

func TestSchedulerRunsAfterDelay(t *testing.T) {
	scheduler := NewScheduler(logger.NewNop())
	defer scheduler.Shutdown()

	var fired atomic.Bool
	scheduler.After(time.Millisecond, "test", func(ctx context.Context) {
		fired.Store(true)
	})

	scheduler.Wait()
	assert.True(t, fired.Load())
}

func TestSchedulerCancelPreventsFire(t *testing.T) {
	scheduler := NewScheduler(logger.NewNop())
	defer scheduler.Shutdown()

	var fired atomic.Bool
	id := scheduler.After(time.Hour, "test", func(ctx context.Context) {
		fired.Store(true)
	})

	assert.True(t, scheduler.Cancel(id))
	scheduler.Wait()
	assert.False(t, fired.Load())

	// A second cancel reports the task is already gone
	assert.False(t, scheduler.Cancel(id))
}

func TestSchedulerShutdownSweepsPending(t *testing.T) {
	scheduler := NewScheduler(logger.NewNop())

	var fired atomic.Int32
	for i := 0; i < 5; i++ {
		scheduler.After(time.Hour, "test", func(ctx context.Context) {
			fired.Add(1)
		})
	}

	scheduler.Shutdown()
	assert.Equal(t, int32(0), fired.Load())
}

func TestSleepCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Sleep(ctx, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)

	assert.NoError(t, Sleep(context.Background(), time.Millisecond))
}
