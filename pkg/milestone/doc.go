// Package milestone detects threshold crossings in entity metrics and
// guarantees each crossing is awarded at most once.
//
// The engine keeps an in-memory ledger of awarded thresholds per entity
// key (type:id) and metric category. Evaluate returns the single smallest
// newly-crossed threshold per call; callers wanting every crossing of a
// large jump call repeatedly, which naturally staggers celebrations
// through the scheduler. The ledger grows monotonically and shrinks only
// on an explicit Reset (term rollover, tests).
package milestone
