package sync

import (
	"context"
	stdsync "sync"
	"time"

	"github.com/fieldforge/jobsync/internal/logger"
)

// Sweeper retries accumulated dirty state in the background. Failed
// pushes are never retried inside the failing call; this periodic pass
// is the explicit retry policy, so a dirty entity never waits
// indefinitely for the user to touch it again.
type Sweeper struct {
	manager      *Manager
	interval     time.Duration
	debounceTime time.Duration
	pending      bool
	mu           stdsync.Mutex
	stopCh       chan struct{}
	stopOnce     stdsync.Once
	onFlush      func(FlushResult)
}

// NewSweeper creates a sweeper flushing on the given interval. It
// starts its own polling loop.
func NewSweeper(manager *Manager, interval time.Duration) *Sweeper {
	s := &Sweeper{
		manager:      manager,
		interval:     interval,
		debounceTime: 5 * time.Second,
		stopCh:       make(chan struct{}),
	}

	go s.pollLoop()

	return s
}

// SetOnFlush sets a callback invoked after each completed sweep.
func (s *Sweeper) SetOnFlush(callback func(FlushResult)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onFlush = callback
}

func (s *Sweeper) pollLoop() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if !s.manager.remote.Online(ctx) {
		logger.Debug("Sweep skipped, backend unreachable")
		return
	}

	result, err := s.manager.FlushDirty(ctx)
	if err != nil {
		logger.Error("Sweep failed", logger.F("error", err))
		return
	}

	s.mu.Lock()
	callback := s.onFlush
	s.mu.Unlock()

	if callback != nil {
		callback(result)
	}
}

// TriggerSoon schedules a debounced sweep shortly after a burst of
// local mutations.
func (s *Sweeper) TriggerSoon() {
	s.mu.Lock()
	if !s.pending {
		s.pending = true
		go s.debouncedSweep()
	}
	s.mu.Unlock()
}

func (s *Sweeper) debouncedSweep() {
	timer := time.NewTimer(s.debounceTime)
	defer timer.Stop()

	select {
	case <-timer.C:
		s.mu.Lock()
		s.pending = false
		s.mu.Unlock()
		s.sweep()
	case <-s.stopCh:
	}
}

// Stop halts the sweeper.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
}
