package window

import (
	"time"

	"github.com/google/uuid"

	"github.com/tashiscool/alovoa-sub007/internal/pair"
)

// Window is one time-boxed match between two users. UserA and UserB are
// stored in canonical order (UserA < UserB) so the at-most-one-active
// constraint can be enforced with a single index.
type Window struct {
	ID             uuid.UUID
	UserA          int64
	UserB          int64
	Status         Status
	UserAConfirmed bool
	UserBConfirmed bool
	// ExtensionCount is the number of accepted extensions.
	ExtensionCount int
	// ExtensionRequestedBy is the requesting user while an extension is
	// pending, zero otherwise.
	ExtensionRequestedBy int64
	// PriorStatus is the pending state to restore when the extension is
	// accepted, empty otherwise.
	PriorStatus  Status
	ReminderSent bool
	CreatedAt    time.Time
	ExpiresAt    time.Time
	UpdatedAt    time.Time
}

// Pair returns the canonical pair key of the window's participants.
func (w *Window) Pair() pair.Key {
	return pair.Key{Lo: w.UserA, Hi: w.UserB}
}

// HasUser reports whether the user is one of the window's two parties.
func (w *Window) HasUser(userID int64) bool {
	return w.UserA == userID || w.UserB == userID
}

// Other returns the window's other party.
func (w *Window) Other(userID int64) int64 {
	if userID == w.UserA {
		return w.UserB
	}
	return w.UserA
}

// PastExpiry reports whether the deadline has passed at the given time.
// It says nothing about Status: a window past its deadline stays in its
// pending state until a write path or the sweeper transitions it.
func (w *Window) PastExpiry(now time.Time) bool {
	return !now.Before(w.ExpiresAt)
}

// ConfirmedBy reports whether the user has already confirmed.
func (w *Window) ConfirmedBy(userID int64) bool {
	if userID == w.UserA {
		return w.UserAConfirmed
	}
	return w.UserBConfirmed
}
