package scheduler

import (
	"context"
	"sync"
	"time"

	"SmartRecover/internal/ports"
)

// IntervalScheduler fires a job immediately and then on every tick of a fixed interval.
type IntervalScheduler struct {
	every time.Duration
	loc   *time.Location

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

var _ ports.Scheduler = (*IntervalScheduler)(nil)

// NewIntervalScheduler builds a scheduler; trigger times are reported in loc.
func NewIntervalScheduler(every time.Duration, loc *time.Location) *IntervalScheduler {
	if every <= 0 {
		every = 24 * time.Hour
	}
	if loc == nil {
		loc = time.UTC
	}
	return &IntervalScheduler{every: every, loc: loc}
}

// Start begins ticking. Calling Start on a running scheduler is a no-op.
func (s *IntervalScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return nil
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	s.stop, s.done = stop, done

	go func() {
		defer close(done)
		ticker := time.NewTicker(s.every)
		defer ticker.Stop()
		job(time.Now().In(s.loc))
		for {
			select {
			case t := <-ticker.C:
				job(t.In(s.loc))
			case <-ctx.Done():
				return
			case <-stop:
				return
			}
		}
	}()

	return nil
}

// Stop halts the ticker goroutine and waits for an in-flight job to return.
func (s *IntervalScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()

	if stop == nil {
		return nil
	}
	close(stop)

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
