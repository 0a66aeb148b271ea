// Package bus is the process-wide publish/subscribe hub for change
// notifications.
//
// Producers (normally the debounce coalescer) publish by kind; any number
// of consumers subscribe independently of the connection's lifecycle.
// The configured cache-invalidation policy runs as a built-in consumer on
// every publish.
package bus

import (
	"sync"

	"go.uber.org/zap"

	"github.com/houseboard/realtime-go/pkg/cache"
	"github.com/houseboard/realtime-go/pkg/wire"
)

// Handler receives the payload of a published notification.
type Handler func(payload any)

// Config configures a Bus.
type Config struct {
	// Policy is the cache-invalidation table
	// (default: cache.DefaultPolicy).
	Policy cache.Policy

	// Invalidator is the hosting application's request cache
	// (default: cache.NoopInvalidator).
	Invalidator cache.Invalidator

	// Logger for diagnostics. Nil disables logging.
	Logger *zap.Logger
}

// Bus dispatches notifications to subscribers and applies the
// cache-invalidation policy. Safe for concurrent use.
type Bus struct {
	mu sync.RWMutex

	// Subscribers by kind, in registration order.
	subs   map[string][]*subscriber
	nextID uint64

	policy      cache.Policy
	invalidator cache.Invalidator
	logger      *zap.Logger
}

type subscriber struct {
	id uint64
	fn Handler
}

// New creates a Bus.
func New(cfg Config) *Bus {
	if cfg.Policy == nil {
		cfg.Policy = cache.DefaultPolicy()
	}
	if cfg.Invalidator == nil {
		cfg.Invalidator = cache.NoopInvalidator{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Bus{
		subs:        make(map[string][]*subscriber),
		policy:      cfg.Policy,
		invalidator: cfg.Invalidator,
		logger:      cfg.Logger,
	}
}

// Subscribe registers a handler for a kind and returns a function that
// removes exactly that registration. Multiple subscriptions to the same
// kind are independent and all fire. Unsubscribing during dispatch does
// not affect the current pass but takes effect for subsequent publishes.
func (b *Bus) Subscribe(kind string, fn Handler) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	sub := &subscriber{id: b.nextID, fn: fn}
	b.subs[kind] = append(b.subs[kind], sub)
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		list := b.subs[kind]
		for i, s := range list {
			if s.id == sub.id {
				b.subs[kind] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}
}

// Publish invokes every registered handler for kind in registration
// order, then applies the invalidation policy. A handler panic is
// recovered and logged; it never prevents the remaining handlers from
// running.
func (b *Bus) Publish(kind string, payload any) {
	b.mu.RLock()
	list := b.subs[kind]
	snapshot := make([]*subscriber, len(list))
	copy(snapshot, list)
	b.mu.RUnlock()

	for _, sub := range snapshot {
		b.dispatch(kind, sub, payload)
	}

	b.applyPolicy(kind, payload)
}

// dispatch runs one handler with panic isolation.
func (b *Bus) dispatch(kind string, sub *subscriber, payload any) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("subscriber panicked",
				zap.String("kind", kind),
				zap.Any("panic", r))
		}
	}()
	sub.fn(payload)
}

// applyPolicy invalidates the resources mapped to kind and fans out the
// per-student kind when the rule is student-scoped.
func (b *Bus) applyPolicy(kind string, payload any) {
	rule, ok := b.policy[kind]
	if !ok {
		return
	}

	for _, res := range rule.Resources {
		b.invalidator.Invalidate(res)
	}

	if !rule.StudentScoped {
		return
	}
	fields, ok := payload.(map[string]any)
	if !ok {
		return
	}
	if id, ok := wire.StudentID(fields); ok {
		b.Publish(wire.StudentKind(id), payload)
	}
}

// SubscriberCount returns the number of live registrations for a kind.
func (b *Bus) SubscriberCount(kind string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[kind])
}
