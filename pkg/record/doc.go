// Package record captures sync-channel traffic for diagnostics.
//
// A Recorder receives one Event per inbound envelope, outbound send, or
// connection state change. FileRecorder appends events to a file as a
// CBOR stream with integer keys; Read loads a capture back, optionally
// filtered. Recording never disrupts the application: encoding errors
// are swallowed and the Noop recorder makes the tap free when disabled.
package record
