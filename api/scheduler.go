/*
scheduler.go - Expired session sweeper

PURPOSE:
  Periodically removes expired sessions so the session document does not
  grow without bound. Expired sessions are already rejected on use; the
  sweep only reclaims storage.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Sweeps once immediately on start
  - RunNow sweeps synchronously (tests, admin tooling)

USAGE:
  sweeper := NewSessionSweeper(service, logger)
  sweeper.Start()
  // ... later
  sweeper.Stop()

SEE ALSO:
  - planner/planner.go: SweepSessions
*/
package api

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SessionStore is the part of the planner the sweeper needs.
type SessionStore interface {
	SweepSessions(ctx context.Context) (int, error)
}

// SessionSweeper drops expired sessions on a ticker.
type SessionSweeper struct {
	Sessions SessionStore
	Log      *zap.Logger
	Interval time.Duration
	Enabled  bool

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewSessionSweeper creates a sweeper with a 10 minute interval.
func NewSessionSweeper(sessions SessionStore, log *zap.Logger) *SessionSweeper {
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionSweeper{
		Sessions: sessions,
		Log:      log,
		Interval: 10 * time.Minute,
		Enabled:  true,
	}
}

// Start begins sweeping in the background.
func (s *SessionSweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Enabled || s.Interval <= 0 {
		s.Log.Info("session sweeper disabled")
		return
	}
	if s.ticker != nil {
		return
	}

	s.ticker = time.NewTicker(s.Interval)
	s.stop = make(chan struct{})
	s.wg.Add(1)

	go s.run(s.ticker, s.stop)

	s.Log.Info("session sweeper started", zap.Duration("interval", s.Interval))
}

// Stop stops the sweeper and waits for an in-flight sweep.
func (s *SessionSweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		close(s.stop)
		s.wg.Wait()
		s.ticker = nil
		s.Log.Info("session sweeper stopped")
	}
}

// RunNow sweeps once and returns the number of sessions removed.
func (s *SessionSweeper) RunNow(ctx context.Context) (int, error) {
	n, err := s.Sessions.SweepSessions(ctx)
	if err != nil {
		s.Log.Error("session sweep failed", zap.Error(err))
		return 0, err
	}
	if n > 0 {
		s.Log.Info("expired sessions removed", zap.Int("count", n))
	}
	return n, nil
}

func (s *SessionSweeper) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer s.wg.Done()

	s.RunNow(context.Background())

	for {
		select {
		case <-ticker.C:
			s.RunNow(context.Background())
		case <-stop:
			return
		}
	}
}
