package milestone

import (
	"fmt"
	"sync"
)

// Category identifies a tracked metric.
type Category string

// Built-in metric categories.
const (
	// CategoryPoints tracks an entity's running point total.
	CategoryPoints Category = "points"

	// CategoryPositiveStreak tracks consecutive positive marks.
	CategoryPositiveStreak Category = "positiveStreak"
)

// Definition describes the thresholds and celebration for a category.
type Definition struct {
	// Thresholds are the fixed crossing values, ascending.
	Thresholds []int

	// Kind is the celebration notification kind.
	Kind string

	// MessageFormat templates the celebration message with the
	// crossed threshold (one %d verb).
	MessageFormat string
}

// DefaultDefinitions returns the built-in category table.
func DefaultDefinitions() map[Category]Definition {
	return map[Category]Definition{
		CategoryPoints: {
			Thresholds:    []int{10, 25, 50, 100, 250, 500, 1000},
			Kind:          "celebration-points",
			MessageFormat: "Reached %d points!",
		},
		CategoryPositiveStreak: {
			Thresholds:    []int{3, 5, 10, 20},
			Kind:          "celebration-streak",
			MessageFormat: "%d positive marks in a row!",
		},
	}
}

// Award is a newly-crossed milestone.
type Award struct {
	// EntityKey scopes the award (type:id).
	EntityKey string

	// Category is the metric category.
	Category Category

	// Threshold is the crossed value.
	Threshold int

	// Kind is the celebration notification kind.
	Kind string

	// Message is the human-readable celebration text.
	Message string
}

// EntityKey builds the composite ledger key for an entity.
func EntityKey(entityType, entityID string) string {
	return entityType + ":" + entityID
}

// Engine evaluates metric values against category thresholds.
// Safe for concurrent use; for a single entity, calls made in
// increasing value order never re-award a threshold.
type Engine struct {
	mu sync.Mutex

	defs map[Category]Definition

	// Awarded thresholds per entity key and category.
	ledger map[string]map[Category]map[int]struct{}
}

// NewEngine creates an engine with the built-in category table.
func NewEngine() *Engine {
	return NewEngineWithDefinitions(DefaultDefinitions())
}

// NewEngineWithDefinitions creates an engine with a custom category
// table (e.g. thresholds from configuration).
func NewEngineWithDefinitions(defs map[Category]Definition) *Engine {
	return &Engine{
		defs:   defs,
		ledger: make(map[string]map[Category]map[int]struct{}),
	}
}

// Evaluate checks a metric value for an entity against a category's
// thresholds. It returns the smallest threshold that value has reached
// and that has not been awarded yet, marking it awarded, or nil when
// nothing new was crossed. Unknown categories return nil, never an
// error.
func (e *Engine) Evaluate(value int, entityID, entityType string, category Category) *Award {
	def, ok := e.defs[category]
	if !ok {
		return nil
	}

	key := EntityKey(entityType, entityID)

	e.mu.Lock()
	defer e.mu.Unlock()

	awarded := e.awardedSet(key, category)

	for _, threshold := range def.Thresholds {
		if value < threshold {
			break
		}
		if _, done := awarded[threshold]; done {
			continue
		}

		// Point of no return: the same threshold is never returned again.
		awarded[threshold] = struct{}{}

		return &Award{
			EntityKey: key,
			Category:  category,
			Threshold: threshold,
			Kind:      def.Kind,
			Message:   fmt.Sprintf(def.MessageFormat, threshold),
		}
	}

	return nil
}

// awardedSet returns the awarded-threshold set for (key, category),
// creating it lazily. Caller holds the lock.
func (e *Engine) awardedSet(key string, category Category) map[int]struct{} {
	byCat, ok := e.ledger[key]
	if !ok {
		byCat = make(map[Category]map[int]struct{})
		e.ledger[key] = byCat
	}
	awarded, ok := byCat[category]
	if !ok {
		awarded = make(map[int]struct{})
		byCat[category] = awarded
	}
	return awarded
}

// Awarded reports whether a threshold has been awarded for an entity.
func (e *Engine) Awarded(entityID, entityType string, category Category, threshold int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	byCat, ok := e.ledger[EntityKey(entityType, entityID)]
	if !ok {
		return false
	}
	awarded, ok := byCat[category]
	if !ok {
		return false
	}
	_, done := awarded[threshold]
	return done
}

// Reset clears every ledger. Used at administrative term boundaries;
// evaluation never resets implicitly.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ledger = make(map[string]map[Category]map[int]struct{})
}
