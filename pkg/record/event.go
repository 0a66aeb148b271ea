package record

import (
	"time"
)

// Direction indicates message flow relative to this client.
type Direction uint8

const (
	// DirectionIn is a server-originated message.
	DirectionIn Direction = 0

	// DirectionOut is a client-originated message.
	DirectionOut Direction = 1

	// DirectionNone is a local event (state change, decode failure).
	DirectionNone Direction = 2
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	case DirectionNone:
		return "LOCAL"
	default:
		return "UNKNOWN"
	}
}

// Event is one recorded sync-channel occurrence.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred.
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID identifies the physical socket (UUID); a reconnect
	// produces a new ID.
	ConnectionID string `cbor:"2,keyasint"`

	// Direction of the message flow.
	Direction Direction `cbor:"3,keyasint"`

	// Kind is the envelope kind, when the event carries one.
	Kind string `cbor:"4,keyasint,omitempty"`

	// Raw is the envelope bytes as seen on the wire.
	Raw []byte `cbor:"5,keyasint,omitempty"`

	// Note annotates local events, e.g. "state: OPEN" or a decode error.
	Note string `cbor:"6,keyasint,omitempty"`
}
