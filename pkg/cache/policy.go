package cache

// Resource identifies a cached resource collection in the hosting
// application's request cache.
type Resource string

// Cached resource keys.
const (
	ResourcePoints  Resource = "points"
	ResourceHouses  Resource = "houses"
	ResourceClasses Resource = "classes"
)

// Invalidator marks cached resources stale so the next read re-fetches.
// Implemented by the hosting application's request cache.
// Implementations must be safe for concurrent use.
type Invalidator interface {
	Invalidate(resource Resource)
}

// NoopInvalidator discards all invalidations. Useful in tests and tools
// that have no cache to manage.
type NoopInvalidator struct{}

// Invalidate discards the invalidation.
func (NoopInvalidator) Invalidate(Resource) {}

var _ Invalidator = NoopInvalidator{}

// Rule describes what a notification kind invalidates.
type Rule struct {
	// Resources are marked stale when the kind arrives.
	Resources []Resource

	// StudentScoped re-publishes under the per-student kind when the
	// payload carries a studentId, so narrowly-scoped subscribers avoid
	// over-invalidating.
	StudentScoped bool
}

// Policy maps notification kinds to invalidation rules.
// Kinds absent from the table trigger no invalidation but are still
// delivered to subscribers.
type Policy map[string]Rule

// DefaultPolicy returns the built-in invalidation table.
// Points changes also invalidate houses because points roll up into
// house totals.
func DefaultPolicy() Policy {
	return Policy{
		"points-updated": {
			Resources:     []Resource{ResourcePoints, ResourceHouses},
			StudentScoped: true,
		},
		"pod-updated": {
			Resources: []Resource{ResourceHouses},
		},
		"house-updated": {
			Resources: []Resource{ResourceHouses},
		},
		"class-updated": {
			Resources: []Resource{ResourceClasses},
		},
	}
}
