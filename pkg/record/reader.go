package record

import (
	"errors"
	"io"
	"os"
	"time"
)

// Filter selects capture events. Zero/nil fields match everything for
// that criterion.
type Filter struct {
	// ConnectionID filters by exact socket ID.
	ConnectionID string

	// Direction filters by message direction.
	Direction *Direction

	// Kind filters by envelope kind.
	Kind string

	// TimeStart keeps events at or after this time.
	TimeStart *time.Time

	// TimeEnd keeps events before this time.
	TimeEnd *time.Time
}

// matches returns true if the event satisfies every criterion.
func (f *Filter) matches(event Event) bool {
	if f.ConnectionID != "" && event.ConnectionID != f.ConnectionID {
		return false
	}
	if f.Direction != nil && event.Direction != *f.Direction {
		return false
	}
	if f.Kind != "" && event.Kind != f.Kind {
		return false
	}
	if f.TimeStart != nil && event.Timestamp.Before(*f.TimeStart) {
		return false
	}
	if f.TimeEnd != nil && !event.Timestamp.Before(*f.TimeEnd) {
		return false
	}
	return true
}

// Read decodes all matching events from a CBOR capture stream.
// A nil filter matches everything.
func Read(r io.Reader, filter *Filter) ([]Event, error) {
	dec := NewDecoder(r)

	var events []Event
	for {
		var event Event
		if err := dec.Decode(&event); err != nil {
			if errors.Is(err, io.EOF) {
				return events, nil
			}
			return events, err
		}
		if filter == nil || filter.matches(event) {
			events = append(events, event)
		}
	}
}

// ReadFile decodes all matching events from a capture file.
func ReadFile(path string, filter *Filter) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f, filter)
}
