// Package wire defines the JSON notification envelope exchanged with the
// Houseboard push endpoint.
//
// Every message, in either direction, is a tagged envelope:
//
//	{
//	  "kind": "points-updated",
//	  "payload": { "studentId": 42, "total": 55 },
//	  "observedAt": "2026-08-23T10:15:04.218Z"
//	}
//
// The kind tag is the only mandatory field. Unknown kinds are valid: the
// event bus forwards them to subscribers even when no cache-invalidation
// rule exists for them.
package wire
