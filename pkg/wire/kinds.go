package wire

// Well-known notification kinds.
const (
	// KindPointsUpdated signals that point totals changed.
	// The payload may include a studentId for narrow invalidation.
	KindPointsUpdated = "points-updated"

	// KindPodUpdated signals that a pod changed.
	KindPodUpdated = "pod-updated"

	// KindHouseUpdated signals that a house changed.
	KindHouseUpdated = "house-updated"

	// KindClassUpdated signals that a class roster or settings changed.
	KindClassUpdated = "class-updated"

	// KindConnected is emitted locally when the push connection opens,
	// so dependents can refresh data that went stale while offline.
	KindConnected = "websocket-connected"
)

// StudentKind returns the per-student notification kind for an ID,
// e.g. "student-42-updated". Subscribers interested in a single student
// listen to this kind to avoid reacting to every points change.
func StudentKind(studentID string) string {
	return "student-" + studentID + "-updated"
}
