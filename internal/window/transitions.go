// Package window defines the match-window state machine and its
// transaction-scoped persistence.
//
// Valid status graph:
//
//	PENDING_BOTH ──► PENDING_USER_A ──► CONFIRMED
//	      │     └──► PENDING_USER_B ──► CONFIRMED
//	      │                │
//	      ├────────────────┴──► EXTENSION_PENDING ──► (prior PENDING_*)
//	      │                              │
//	      └──────────────┬───────────────┴──► EXPIRED
//	                     └──► DECLINED_BY_A / DECLINED_BY_B
//
// PENDING_USER_A means the window is waiting on user A (user B has
// already confirmed), and symmetrically for PENDING_USER_B. Every
// pending state, EXTENSION_PENDING included, can be declined by either
// party or expired by the sweeper. CONFIRMED, DECLINED_BY_A,
// DECLINED_BY_B and EXPIRED are terminal states.
package window

import "fmt"

// Status values mirror the match_window_status enum in PostgreSQL.
type Status string

const (
	StatusPendingBoth      Status = "PENDING_BOTH"
	StatusPendingUserA     Status = "PENDING_USER_A"
	StatusPendingUserB     Status = "PENDING_USER_B"
	StatusConfirmed        Status = "CONFIRMED"
	StatusDeclinedByA      Status = "DECLINED_BY_A"
	StatusDeclinedByB      Status = "DECLINED_BY_B"
	StatusExpired          Status = "EXPIRED"
	StatusExtensionPending Status = "EXTENSION_PENDING"
)

// validTransitions lists every allowed (from → to) pair.
var validTransitions = map[Status][]Status{
	StatusPendingBoth: {
		StatusPendingUserA, StatusPendingUserB,
		StatusDeclinedByA, StatusDeclinedByB,
		StatusExtensionPending, StatusExpired,
	},
	StatusPendingUserA: {
		StatusConfirmed,
		StatusDeclinedByA, StatusDeclinedByB,
		StatusExtensionPending, StatusExpired,
	},
	StatusPendingUserB: {
		StatusConfirmed,
		StatusDeclinedByA, StatusDeclinedByB,
		StatusExtensionPending, StatusExpired,
	},
	StatusExtensionPending: {
		StatusPendingBoth, StatusPendingUserA, StatusPendingUserB,
		StatusDeclinedByA, StatusDeclinedByB,
		StatusExpired,
	},
	// CONFIRMED, DECLINED_BY_A, DECLINED_BY_B and EXPIRED are terminal —
	// no outgoing transitions
}

// ParseStatus converts a raw string to a Status, returning an error for
// unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusPendingBoth, StatusPendingUserA, StatusPendingUserB,
		StatusConfirmed, StatusDeclinedByA, StatusDeclinedByB,
		StatusExpired, StatusExtensionPending:
		return st, nil
	}
	return "", fmt.Errorf("unknown match window status %q", s)
}

// IsTransitionAllowed returns true when moving from → to is permitted by the
// state machine.
func IsTransitionAllowed(from, to Status) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false // terminal state — no outgoing transitions
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal returns true when the status admits no further transitions.
func (s Status) IsTerminal() bool {
	_, ok := validTransitions[s]
	return !ok
}

// IsPending returns true for the states still waiting on at least one
// party's confirmation, EXTENSION_PENDING excluded.
func (s Status) IsPending() bool {
	return s == StatusPendingBoth || s == StatusPendingUserA || s == StatusPendingUserB
}
