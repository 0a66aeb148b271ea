package milestone

import (
	"sort"
	"time"
)

// Measurement is one timestamped signed metric observation, e.g. a
// point award (+) or deduction (-).
type Measurement struct {
	// Value is the signed measurement.
	Value int

	// At is when the measurement was recorded.
	At time.Time
}

// PositiveStreak counts the run of strictly positive values starting at
// the most recent measurement, stopping at the first non-positive value.
// Input order does not matter; the function sorts a copy descending by
// time. An empty list, or a list whose most recent entry is non-positive,
// yields 0. The result feeds CategoryPositiveStreak evaluation.
func PositiveStreak(measurements []Measurement) int {
	if len(measurements) == 0 {
		return 0
	}

	sorted := make([]Measurement, len(measurements))
	copy(sorted, measurements)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].At.After(sorted[j].At)
	})

	streak := 0
	for _, m := range sorted {
		if m.Value <= 0 {
			break
		}
		streak++
	}
	return streak
}
