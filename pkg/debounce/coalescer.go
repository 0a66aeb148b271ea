// Package debounce collapses bursts of same-kind notifications into a
// single delayed dispatch.
//
// The first envelope of a kind arms a timer; later envelopes of the same
// kind within the window replace the stored payload but never move the
// deadline, so the dispatch happens at most one window after the first
// unconsumed envelope. Last payload wins, never a merge. Kinds are fully
// isolated from one another.
package debounce

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/houseboard/realtime-go/pkg/wire"
)

// DefaultWindow is the default debounce window.
const DefaultWindow = 100 * time.Millisecond

// PublishFunc dispatches a coalesced notification downstream.
type PublishFunc func(kind string, payload any)

// Config configures a Coalescer.
type Config struct {
	// Window is the debounce window (default: DefaultWindow).
	Window time.Duration

	// Publish receives the surviving envelope of each window. Required.
	Publish PublishFunc

	// Logger for diagnostics. Nil disables logging.
	Logger *zap.Logger
}

// Coalescer debounces notifications per kind.
// Safe for concurrent use.
type Coalescer struct {
	mu sync.Mutex

	window  time.Duration
	publish PublishFunc
	logger  *zap.Logger

	// One live timer per kind; replaced payload, never re-armed timer.
	pending map[string]*pendingKind

	stopped bool
}

// pendingKind holds the timer and the last envelope seen for a kind
// within the current window.
type pendingKind struct {
	timer *time.Timer
	env   wire.Envelope
}

// New creates a Coalescer.
func New(cfg Config) *Coalescer {
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Coalescer{
		window:  cfg.Window,
		publish: cfg.Publish,
		logger:  cfg.Logger,
		pending: make(map[string]*pendingKind),
	}
}

// Accept feeds an envelope into the coalescer.
// The envelope is dispatched once the kind's window elapses, unless a
// newer envelope of the same kind replaces it first.
func (c *Coalescer) Accept(env wire.Envelope) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return
	}

	if p, exists := c.pending[env.Kind]; exists {
		// Window already open: last write wins, deadline unchanged.
		p.env = env
		return
	}

	kind := env.Kind
	p := &pendingKind{env: env}
	p.timer = time.AfterFunc(c.window, func() {
		c.fire(kind)
	})
	c.pending[kind] = p
}

// fire dispatches the surviving envelope for a kind and clears its slot.
func (c *Coalescer) fire(kind string) {
	c.mu.Lock()
	p, exists := c.pending[kind]
	if !exists {
		c.mu.Unlock()
		return
	}
	env := p.env
	delete(c.pending, kind)
	c.mu.Unlock()

	c.logger.Debug("window elapsed, dispatching",
		zap.String("kind", kind))

	// Publish outside the lock; downstream may feed back into Accept.
	c.publish(env.Kind, env.Payload)
}

// Pending returns the number of kinds with an open window.
func (c *Coalescer) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Stop cancels all open windows without dispatching them.
// Subsequent Accept calls are ignored.
func (c *Coalescer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return
	}
	c.stopped = true

	for kind, p := range c.pending {
		p.timer.Stop()
		delete(c.pending, kind)
	}
}
