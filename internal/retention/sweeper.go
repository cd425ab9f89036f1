// Package retention periodically deletes notes older than each user's
// retention window.
package retention

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultInterval is how often a Sweeper runs when none is configured.
const DefaultInterval = 24 * time.Hour

// Store is what a sweep needs from the database.
type Store interface {
	RetentionUsers() ([]string, error)
	CleanupExpired(userID string) (int, error)
}

// Sweeper runs retention cleanup on startup and then on a fixed interval.
type Sweeper struct {
	db       Store
	interval time.Duration
	log      *slog.Logger

	mu       sync.Mutex
	started  bool
	stopped  bool
	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

// New returns a Sweeper. It does nothing until Start.
func New(db Store, interval time.Duration, logger *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		db:       db,
		interval: interval,
		log:      logger,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start sweeps once synchronously, then keeps sweeping in the background
// until Stop. Only the first call does anything, and never after Stop.
func (s *Sweeper) Start() {
	s.mu.Lock()
	if s.started || s.stopped {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	s.SweepOnce()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.SweepOnce()
			case <-s.stopCh:
				return
			}
		}
	}()
}

// Stop ends the background loop and waits for it if one was started. It may
// be called any number of times.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	started := s.started
	s.stopped = true
	s.mu.Unlock()

	s.stopOnce.Do(func() { close(s.stopCh) })
	if started {
		<-s.done
	}
}

// SweepOnce cleans up every user with a retention setting and returns the
// number of notes deleted. A failing user is logged and skipped.
func (s *Sweeper) SweepOnce() int {
	users, err := s.db.RetentionUsers()
	if err != nil {
		s.log.Error("retention sweep: list users", "err", err)
		return 0
	}
	total := 0
	for _, u := range users {
		n, err := s.db.CleanupExpired(u)
		if err != nil {
			s.log.Warn("retention sweep: cleanup failed", "user_id", u, "err", err)
			continue
		}
		total += n
	}
	if total > 0 {
		s.log.Info("retention sweep", "users", len(users), "deleted", total)
	}
	return total
}
