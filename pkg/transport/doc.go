// Package transport provides the WebSocket transport for the Houseboard
// push channel.
//
// The target URL is derived purely from the hosting page's origin: an
// https origin yields wss, http yields ws, the host (and any explicit
// port) is preserved, and the path is a fixed build-time constant. The
// derivation performs no network access so it is trivially unit-testable.
//
// Conn wraps a single full-duplex socket with a write lock and an
// idempotent close; reconnection policy lives in package connection.
package transport
