// Package workflow enforces the blood-sample lifecycle:
// collected -> tested -> results_sent, one-way, no re-testing.
package workflow

import "github.com/careops/registry-api/internal/model"

// transitions is the complete set of legal moves. Anything not listed is
// rejected.
var transitions = map[model.SampleStatus]model.SampleStatus{
	model.SampleStatusCollected: model.SampleStatusTested,
	model.SampleStatusTested:    model.SampleStatusResultsSent,
}

// CanTransition reports whether a sample in status from may move to status to.
func CanTransition(from, to model.SampleStatus) bool {
	next, ok := transitions[from]
	return ok && next == to
}

// IsTerminal reports whether no further transitions exist from status s.
func IsTerminal(s model.SampleStatus) bool {
	_, ok := transitions[s]
	return !ok
}
