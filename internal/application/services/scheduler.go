package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/unifyhub/core/internal/infrastructure/logger"
)

// Scheduler runs deferred one-shot tasks with explicit cancellation. It
// replaces fire-and-forget timers: a scheduled transition can be cancelled
// individually or swept up by Shutdown, so nothing fires after the owning
// component is gone.
type Scheduler struct {
	log    *logger.Logger
	base   context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	pending map[uuid.UUID]context.CancelFunc
}

// NewScheduler creates a scheduler
func NewScheduler(log *logger.Logger) *Scheduler {
	base, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		log:     log,
		base:    base,
		cancel:  cancel,
		pending: make(map[uuid.UUID]context.CancelFunc),
	}
}

// After schedules fn to run once the delay elapses and returns a handle for
// cancellation. The context passed to fn is cancelled by Cancel or Shutdown.
func (s *Scheduler) After(delay time.Duration, name string, fn func(ctx context.Context)) uuid.UUID {
	id := uuid.New()
	ctx, cancel := context.WithCancel(s.base)

	s.mu.Lock()
	s.pending[id] = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.pending, id)
			s.mu.Unlock()
			cancel()
		}()

		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			s.log.Debugw("Scheduled task cancelled", "task", name, "id", id)
			return
		case <-timer.C:
			fn(ctx)
		}
	}()

	return id
}

// Cancel aborts a pending task. Returns false when the task already ran or
// was cancelled.
func (s *Scheduler) Cancel(id uuid.UUID) bool {
	s.mu.Lock()
	cancel, ok := s.pending[id]
	s.mu.Unlock()
	if ok {
		cancel()
	}
	return ok
}

// Wait blocks until every scheduled task has run or been cancelled
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// Shutdown cancels everything still pending and waits for the goroutines to
// drain
func (s *Scheduler) Shutdown() {
	s.cancel()
	s.wg.Wait()
}

// Sleep pauses for the given delay, returning early with the context error
// if ctx is cancelled first
func Sleep(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
