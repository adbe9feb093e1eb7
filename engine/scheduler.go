package engine

import (
	"sync"
	"time"
)

// FrameFunc is called once per frame with a timestamp in seconds. Only
// differences between timestamps are meaningful.
type FrameFunc func(now float64)

// Scheduler delivers frames to an engine. Start replaces any previous
// callback; Stop cancels future frames but does not interrupt one in
// progress.
type Scheduler interface {
	Start(fn FrameFunc)
	Stop()
}

// TickerScheduler delivers frames from its own goroutine at a fixed rate.
type TickerScheduler struct {
	interval time.Duration
	epoch    time.Time

	mu   sync.Mutex
	stop chan struct{}
}

// NewTickerScheduler creates a scheduler ticking fps times per second.
func NewTickerScheduler(fps int) *TickerScheduler {
	if fps < 1 {
		fps = 60
	}
	return &TickerScheduler{
		interval: time.Second / time.Duration(fps),
		epoch:    time.Now(),
	}
}

// Start begins ticking into fn, replacing any running ticker.
func (s *TickerScheduler) Start(fn FrameFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		close(s.stop)
	}
	stop := make(chan struct{})
	s.stop = stop

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case now := <-ticker.C:
				// A tick can race with Stop; check again before running.
				select {
				case <-stop:
					return
				default:
				}
				fn(now.Sub(s.epoch).Seconds())
			}
		}
	}()
}

// Stop ends the ticker goroutine.
func (s *TickerScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
}

// ManualScheduler delivers frames only when the host calls Advance. Hosts
// with their own main loop (raylib must draw on the main thread) and tests
// use it.
type ManualScheduler struct {
	mu sync.Mutex
	fn FrameFunc
}

// NewManualScheduler creates an idle manual scheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// Start sets the callback Advance delivers to.
func (s *ManualScheduler) Start(fn FrameFunc) {
	s.mu.Lock()
	s.fn = fn
	s.mu.Unlock()
}

// Stop clears the callback.
func (s *ManualScheduler) Stop() {
	s.mu.Lock()
	s.fn = nil
	s.mu.Unlock()
}

// Advance runs one frame at now (seconds) and reports whether a callback
// was scheduled.
func (s *ManualScheduler) Advance(now float64) bool {
	s.mu.Lock()
	fn := s.fn
	s.mu.Unlock()
	if fn == nil {
		return false
	}
	fn(now)
	return true
}

// Active reports whether a callback is scheduled.
func (s *ManualScheduler) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fn != nil
}
