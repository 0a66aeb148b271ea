package record

import (
	"os"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// FileRecorder writes capture events to a file as a CBOR stream.
// It is safe for concurrent use.
type FileRecorder struct {
	mu      sync.Mutex
	file    *os.File
	encoder *cbor.Encoder
	closed  bool
}

// NewFileRecorder opens a capture file for appending, creating it with
// mode 0644 if needed.
func NewFileRecorder(path string) (*FileRecorder, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return &FileRecorder{
		file:    f,
		encoder: NewEncoder(f),
	}, nil
}

// Record appends an event to the capture file.
// Encoding errors are ignored; recording must not disrupt the sync layer.
func (r *FileRecorder) Record(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	_ = r.encoder.Encode(event)
}

// Close closes the capture file. Safe to call multiple times; Record
// calls after Close are silently ignored.
func (r *FileRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true
	return r.file.Close()
}

var _ Recorder = (*FileRecorder)(nil)
