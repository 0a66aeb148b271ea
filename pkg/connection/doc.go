// Package connection maintains the single logical push connection to the
// Houseboard server.
//
// The manager keeps one WebSocket open for the life of the session and
// reconnects forever on failure: an orderly close is retried after a
// short fixed delay, a transport error after a longer one, on the theory
// that errors are likelier to be persistent. The delays are fixed, not
// exponential — this is a best-effort cache-freshness hint, not a
// guaranteed-delivery channel, so there is no retry cap and no permanent
// failure state.
//
// At most one reconnect timer exists at a time: scheduling a new attempt
// first cancels any pending one, and every connect attempt supersedes
// callbacks from the socket it replaced.
//
// Inbound envelopes (and a locally-generated "websocket-connected"
// envelope on every successful open) are fed to the configured Sink,
// normally the debounce coalescer. Malformed inbound messages are logged
// and dropped without disturbing the connection.
package connection
