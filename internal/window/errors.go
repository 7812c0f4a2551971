package window

import "fmt"

// ─── Sentinel errors ─────────────────────────────────────────────────────────

// ErrNotFound is returned when no window exists with the given ID.
var ErrNotFound = fmt.Errorf("match window not found")

// ErrDuplicateWindow is returned when the pair already has a window in a
// non-terminal state.
var ErrDuplicateWindow = fmt.Errorf("pair already has an active match window")

// ErrUnauthorizedParty is returned when the acting user is not a party
// to the window, or not the party allowed to perform the operation.
var ErrUnauthorizedParty = fmt.Errorf("user is not a party to this match window")

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// InvalidTransitionError is returned when the state machine rejects an
// operation in the window's current status.
type InvalidTransitionError struct {
	Status Status
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s: %s", e.Status, e.Reason)
}

// IneligibleError is returned when the pair's compatibility result does
// not clear window creation.
type IneligibleError struct {
	Score     float64
	Threshold float64
	Conflicts int
}

func (e *IneligibleError) Error() string {
	if e.Conflicts > 0 {
		return fmt.Sprintf("pair has %d unresolved conflicts", e.Conflicts)
	}
	return fmt.Sprintf("compatibility score %.1f below threshold %.1f", e.Score, e.Threshold)
}
