package wire

import (
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// Envelope errors.
var (
	ErrMissingKind = errors.New("envelope missing kind")
)

// codec is the JSON codec for envelopes.
var codec = jsoniter.ConfigCompatibleWithStandardLibrary

// Envelope is the tagged notification envelope.
// Envelopes are transient: constructed on receipt, consumed immediately,
// never persisted.
type Envelope struct {
	// Kind tags the notification (e.g. "points-updated").
	Kind string `json:"kind"`

	// Payload carries kind-specific data. May be nil.
	Payload map[string]any `json:"payload,omitempty"`

	// ObservedAt is when the sender observed the change (RFC 3339).
	ObservedAt time.Time `json:"observedAt"`
}

// NewEnvelope creates an envelope stamped with the current time.
func NewEnvelope(kind string, payload map[string]any) Envelope {
	return Envelope{
		Kind:       kind,
		Payload:    payload,
		ObservedAt: time.Now().UTC(),
	}
}

// Encode encodes an envelope to JSON bytes.
func Encode(env Envelope) ([]byte, error) {
	if env.Kind == "" {
		return nil, ErrMissingKind
	}
	data, err := codec.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	return data, nil
}

// Decode decodes JSON bytes into an envelope.
// A missing or empty kind is rejected; the payload may be absent.
func Decode(data []byte) (Envelope, error) {
	var env Envelope
	if err := codec.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Kind == "" {
		return Envelope{}, ErrMissingKind
	}
	return env, nil
}

// StudentID extracts the optional studentId field from a payload.
// Both JSON numbers and strings are accepted; numbers are rendered
// without a fractional part.
func StudentID(payload map[string]any) (string, bool) {
	if payload == nil {
		return "", false
	}
	switch v := payload["studentId"].(type) {
	case string:
		if v == "" {
			return "", false
		}
		return v, true
	case float64:
		return fmt.Sprintf("%d", int64(v)), true
	case int:
		return fmt.Sprintf("%d", v), true
	case int64:
		return fmt.Sprintf("%d", v), true
	default:
		return "", false
	}
}
