// Package celebrate serializes milestone celebrations so at most one is
// presented at a time.
//
// The scheduler is a single-slot gate: Idle -> Showing -> Idle. A trigger
// while the slot is occupied is deferred with a timer and retried until
// the slot frees; deferred requests are never dropped, but presentation
// order among them is not guaranteed to match arrival order.
package celebrate

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultRetryDelay is the delay before re-trying a deferred request.
const DefaultRetryDelay = 500 * time.Millisecond

// Request is a celebration to present.
type Request struct {
	// Kind tags the celebration (e.g. "celebration-points").
	Kind string

	// Message is the text to display.
	Message string
}

// Presenter is the toast/notification surface the hosting application
// provides. Show must return quickly; the presentation layer calls the
// scheduler's Complete when the celebration is dismissed.
type Presenter interface {
	Show(req Request)
}

// Config configures a Scheduler.
type Config struct {
	// Presenter displays celebrations. Required.
	Presenter Presenter

	// RetryDelay between attempts while the slot is occupied
	// (default: DefaultRetryDelay).
	RetryDelay time.Duration

	// Logger for diagnostics. Nil disables logging.
	Logger *zap.Logger
}

// Scheduler gates celebration presentation to one at a time.
// Safe for concurrent use.
type Scheduler struct {
	mu sync.Mutex

	presenter  Presenter
	retryDelay time.Duration
	logger     *zap.Logger

	showing bool
	stopped bool

	// Deferred requests awaiting a retry; tracked so Stop can cancel.
	retries map[*time.Timer]struct{}
}

// NewScheduler creates a Scheduler.
func NewScheduler(cfg Config) *Scheduler {
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Scheduler{
		presenter:  cfg.Presenter,
		retryDelay: cfg.RetryDelay,
		logger:     cfg.Logger,
		retries:    make(map[*time.Timer]struct{}),
	}
}

// Trigger presents a celebration, or defers it until the current one
// completes. Deferred requests are retried until they are presented;
// they are never dropped.
func (s *Scheduler) Trigger(req Request) {
	s.mu.Lock()

	if s.stopped {
		s.mu.Unlock()
		return
	}

	if s.showing {
		s.deferLocked(req)
		s.mu.Unlock()
		return
	}

	s.showing = true
	s.mu.Unlock()

	s.presenter.Show(req)
}

// deferLocked schedules a retry for req. Caller holds the lock.
func (s *Scheduler) deferLocked(req Request) {
	s.logger.Debug("celebration slot occupied, deferring",
		zap.String("kind", req.Kind),
		zap.Duration("retry", s.retryDelay))

	var timer *time.Timer
	timer = time.AfterFunc(s.retryDelay, func() {
		s.mu.Lock()
		delete(s.retries, timer)
		s.mu.Unlock()
		s.Trigger(req)
	})
	s.retries[timer] = struct{}{}
}

// Complete frees the presentation slot. Called by the presentation layer
// when the current celebration is dismissed.
func (s *Scheduler) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.showing = false
}

// Showing reports whether a celebration is currently being presented.
func (s *Scheduler) Showing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.showing
}

// Stop cancels pending retries and rejects further triggers.
// Only for teardown; deferred requests are dropped at this point.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	s.stopped = true

	for timer := range s.retries {
		timer.Stop()
		delete(s.retries, timer)
	}
}
