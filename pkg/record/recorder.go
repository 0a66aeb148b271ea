package record

// Recorder receives sync-channel events. Pass Noop to disable recording.
type Recorder interface {
	// Record captures one event. Implementations must be safe for
	// concurrent use and must not block the caller for long.
	Record(event Event)
}

// Noop discards all events.
// Noop is safe for concurrent use and usable as a zero value.
type Noop struct{}

// Record discards the event.
func (Noop) Record(Event) {}

var _ Recorder = Noop{}

// Multi fans events out to several recorders.
type Multi struct {
	recorders []Recorder
}

// NewMulti creates a recorder that forwards to every given recorder.
func NewMulti(recorders ...Recorder) *Multi {
	return &Multi{recorders: recorders}
}

// Record forwards the event to all recorders.
func (m *Multi) Record(event Event) {
	for _, r := range m.recorders {
		r.Record(event)
	}
}

var _ Recorder = (*Multi)(nil)
