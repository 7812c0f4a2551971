package window

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tashiscool/alovoa-sub007/internal/notify"
	"github.com/tashiscool/alovoa-sub007/internal/pair"
	"github.com/tashiscool/alovoa-sub007/internal/scoring"
)

// ─── Manager ─────────────────────────────────────────────────────────────────

// Config holds the window lifecycle knobs.
type Config struct {
	// Duration is the initial lifetime of a new window.
	Duration time.Duration
	// ExtensionDuration is added to the deadline per accepted extension.
	ExtensionDuration time.Duration
	// MaxExtensions caps accepted extensions per window.
	MaxExtensions int
	// ExtensionRequestWindow is how close to the deadline a window must
	// be before an extension may be requested.
	ExtensionRequestWindow time.Duration
	// MatchThreshold is the minimum overall compatibility score for
	// window creation.
	MatchThreshold float64
}

// Manager encapsulates the match-window business logic. It is
// transport-agnostic and is the only writer of window state.
type Manager struct {
	store    Store
	scores   *scoring.Service
	dispatch notify.Dispatcher
	cfg      Config
	now      func() time.Time
}

// NewManager returns a configured Manager.
func NewManager(store Store, scores *scoring.Service, dispatch notify.Dispatcher, cfg Config) *Manager {
	return &Manager{
		store:    store,
		scores:   scores,
		dispatch: dispatch,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (m *Manager) event(w *Window, actorID int64) notify.Event {
	return notify.Event{
		WindowID:  w.ID.String(),
		UserA:     w.UserA,
		UserB:     w.UserB,
		Status:    string(w.Status),
		ActorID:   actorID,
		ExpiresAt: w.ExpiresAt,
	}
}

// ─── Creation ────────────────────────────────────────────────────────────────

// Create opens a new window for the pair after checking eligibility
// against the cached compatibility result. The argument order does not
// matter. It returns ErrDuplicateWindow when the pair already has an
// active window, and IneligibleError when the score does not clear the
// threshold or conflicts exist.
func (m *Manager) Create(ctx context.Context, userA, userB int64) (*Window, error) {
	if userA == userB {
		return nil, &ValidationError{Msg: "cannot match a user with themselves"}
	}
	if userA <= 0 || userB <= 0 {
		return nil, &ValidationError{Msg: "user ids must be positive"}
	}

	key := pair.New(userA, userB)
	result, err := m.scores.GetOrCompute(ctx, key.Lo, key.Hi)
	if err != nil {
		return nil, fmt.Errorf("compatibility lookup for %v: %w", key, err)
	}
	if !result.Eligible(m.cfg.MatchThreshold) {
		return nil, &IneligibleError{
			Score:     result.OverallScore,
			Threshold: m.cfg.MatchThreshold,
			Conflicts: len(result.Conflicts),
		}
	}

	now := m.now()
	w := Window{
		ID:        uuid.New(),
		UserA:     key.Lo,
		UserB:     key.Hi,
		Status:    StatusPendingBoth,
		CreatedAt: now,
		ExpiresAt: now.Add(m.cfg.Duration),
	}
	if err := m.store.Create(ctx, w); err != nil {
		if errors.Is(err, ErrDuplicateWindow) {
			// Hand back the active window so the caller can reconcile.
			if existing, findErr := m.store.FindActive(ctx, key); findErr == nil {
				return existing, ErrDuplicateWindow
			}
			return nil, ErrDuplicateWindow
		}
		return nil, err
	}

	if err := m.dispatch.WindowCreated(ctx, m.event(&w, 0)); err != nil {
		slog.Warn("publish window created failed", "windowId", w.ID, "err", err)
	}
	return &w, nil
}

// ─── Confirmation and decline ────────────────────────────────────────────────

// Confirm records the user's confirmation. Re-confirming is a no-op
// success. When both parties have confirmed the window becomes
// CONFIRMED. A window past its deadline is expired in place and the
// confirmation rejected.
func (m *Manager) Confirm(ctx context.Context, windowID uuid.UUID, userID int64) (*Window, error) {
	var expired, confirmed bool
	w, err := m.store.Mutate(ctx, windowID, func(w *Window) error {
		if !w.HasUser(userID) {
			return ErrUnauthorizedParty
		}
		if w.Status == StatusConfirmed {
			return nil // already mutual, idempotent
		}
		if w.Status.IsTerminal() {
			return &InvalidTransitionError{Status: w.Status, Reason: "window is closed"}
		}
		if expired = m.expireInPlace(w); expired {
			return nil
		}
		if w.Status == StatusExtensionPending {
			return &InvalidTransitionError{Status: w.Status, Reason: "extension decision pending"}
		}
		if w.ConfirmedBy(userID) {
			return nil // idempotent
		}

		if userID == w.UserA {
			w.UserAConfirmed = true
		} else {
			w.UserBConfirmed = true
		}
		switch {
		case w.UserAConfirmed && w.UserBConfirmed:
			w.Status = StatusConfirmed
			confirmed = true
		case w.UserAConfirmed:
			w.Status = StatusPendingUserB
		default:
			w.Status = StatusPendingUserA
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if expired {
		return nil, m.rejectExpired(ctx, w)
	}

	if confirmed {
		if err := m.dispatch.WindowConfirmed(ctx, m.event(w, userID)); err != nil {
			slog.Warn("publish window confirmed failed", "windowId", w.ID, "err", err)
		}
	}
	return w, nil
}

// Decline closes the window from any non-terminal state, including
// EXTENSION_PENDING. Unlike Confirm it carries no deadline guard: a
// decline beats a not-yet-swept expiry. Re-declining one's own decline
// is a no-op success.
func (m *Manager) Decline(ctx context.Context, windowID uuid.UUID, userID int64) (*Window, error) {
	var declined bool
	w, err := m.store.Mutate(ctx, windowID, func(w *Window) error {
		if !w.HasUser(userID) {
			return ErrUnauthorizedParty
		}
		declinedStatus := StatusDeclinedByA
		if userID == w.UserB {
			declinedStatus = StatusDeclinedByB
		}
		if w.Status == declinedStatus {
			return nil // idempotent
		}
		if w.Status.IsTerminal() {
			return &InvalidTransitionError{Status: w.Status, Reason: "window is closed"}
		}
		w.Status = declinedStatus
		w.ExtensionRequestedBy = 0
		w.PriorStatus = ""
		declined = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if declined {
		if err := m.dispatch.WindowDeclined(ctx, m.event(w, userID)); err != nil {
			slog.Warn("publish window declined failed", "windowId", w.ID, "err", err)
		}
	}
	return w, nil
}

// ─── Extensions ──────────────────────────────────────────────────────────────

// RequestExtension moves a pending window near its deadline into
// EXTENSION_PENDING, recording the requester. The other party decides
// via RespondToExtension before the original deadline.
func (m *Manager) RequestExtension(ctx context.Context, windowID uuid.UUID, userID int64) (*Window, error) {
	var expired, requested bool
	w, err := m.store.Mutate(ctx, windowID, func(w *Window) error {
		if !w.HasUser(userID) {
			return ErrUnauthorizedParty
		}
		if w.Status.IsTerminal() {
			return &InvalidTransitionError{Status: w.Status, Reason: "window is closed"}
		}
		if expired = m.expireInPlace(w); expired {
			return nil
		}
		if w.Status == StatusExtensionPending {
			if w.ExtensionRequestedBy == userID {
				return nil // idempotent
			}
			return &InvalidTransitionError{Status: w.Status, Reason: "extension already requested by the other party"}
		}
		if !w.Status.IsPending() {
			return &InvalidTransitionError{Status: w.Status, Reason: "only pending windows can be extended"}
		}
		if w.ExtensionCount >= m.cfg.MaxExtensions {
			return &InvalidTransitionError{Status: w.Status, Reason: "extension limit reached"}
		}
		if w.ExpiresAt.Sub(m.now()) > m.cfg.ExtensionRequestWindow {
			return &InvalidTransitionError{Status: w.Status, Reason: "too early to request an extension"}
		}

		w.PriorStatus = w.Status
		w.Status = StatusExtensionPending
		w.ExtensionRequestedBy = userID
		requested = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if expired {
		return nil, m.rejectExpired(ctx, w)
	}

	if requested {
		if err := m.dispatch.ExtensionRequested(ctx, m.event(w, userID)); err != nil {
			slog.Warn("publish extension requested failed", "windowId", w.ID, "err", err)
		}
	}
	return w, nil
}

// RespondToExtension resolves a pending extension. Only the
// non-requesting party may respond. Acceptance restores the prior
// pending state and pushes the deadline out; refusal expires the window
// immediately.
func (m *Manager) RespondToExtension(ctx context.Context, windowID uuid.UUID, userID int64, accept bool) (*Window, error) {
	var expired bool
	w, err := m.store.Mutate(ctx, windowID, func(w *Window) error {
		if !w.HasUser(userID) {
			return ErrUnauthorizedParty
		}
		if w.Status.IsTerminal() {
			return &InvalidTransitionError{Status: w.Status, Reason: "window is closed"}
		}
		if expired = m.expireInPlace(w); expired {
			return nil
		}
		if w.Status != StatusExtensionPending {
			return &InvalidTransitionError{Status: w.Status, Reason: "no extension pending"}
		}
		if w.ExtensionRequestedBy == userID {
			return ErrUnauthorizedParty
		}

		if accept {
			w.Status = w.PriorStatus
			w.PriorStatus = ""
			w.ExpiresAt = w.ExpiresAt.Add(m.cfg.ExtensionDuration)
			w.ExtensionCount++
			w.ReminderSent = false
		} else {
			w.PriorStatus = StatusExtensionPending
			w.Status = StatusExpired
		}
		w.ExtensionRequestedBy = 0
		return nil
	})
	if err != nil {
		return nil, err
	}
	if expired {
		return nil, m.rejectExpired(ctx, w)
	}

	if accept {
		if err := m.dispatch.WindowExtended(ctx, m.event(w, userID)); err != nil {
			slog.Warn("publish window extended failed", "windowId", w.ID, "err", err)
		}
	} else {
		e := m.event(w, userID)
		e.PriorStatus = string(StatusExtensionPending)
		if err := m.dispatch.WindowExpired(ctx, e); err != nil {
			slog.Warn("publish window expired failed", "windowId", w.ID, "err", err)
		}
	}
	return w, nil
}

// ─── Expiration ──────────────────────────────────────────────────────────────

// expireInPlace transitions a window past its deadline to EXPIRED,
// preserving the prior state for the expiration event. Write paths call
// it so a window races the sweeper safely: whoever touches it first
// closes it.
func (m *Manager) expireInPlace(w *Window) bool {
	if !w.PastExpiry(m.now()) {
		return false
	}
	w.PriorStatus = w.Status
	w.Status = StatusExpired
	w.ExtensionRequestedBy = 0
	return true
}

// rejectExpired publishes the expiration event and returns the error the
// blocked operation surfaces to the caller.
func (m *Manager) rejectExpired(ctx context.Context, w *Window) error {
	e := m.event(w, 0)
	e.PriorStatus = string(w.PriorStatus)
	if err := m.dispatch.WindowExpired(ctx, e); err != nil {
		slog.Warn("publish window expired failed", "windowId", w.ID, "err", err)
	}
	return &InvalidTransitionError{Status: StatusExpired, Reason: "window deadline has passed"}
}

// Expire closes one window past its deadline on behalf of the sweeper.
// It re-checks the deadline and status under the row lock, so a confirm
// or decline that won the race is left untouched.
func (m *Manager) Expire(ctx context.Context, windowID uuid.UUID) (bool, error) {
	var expired bool
	w, err := m.store.Mutate(ctx, windowID, func(w *Window) error {
		if w.Status.IsTerminal() {
			return nil // already closed by a racing writer
		}
		expired = m.expireInPlace(w)
		return nil
	})
	if err != nil {
		return false, err
	}
	if !expired {
		return false, nil
	}

	e := m.event(w, 0)
	e.PriorStatus = string(w.PriorStatus)
	if err := m.dispatch.WindowExpired(ctx, e); err != nil {
		slog.Warn("publish window expired failed", "windowId", w.ID, "err", err)
	}
	return true, nil
}

// ─── Queries ─────────────────────────────────────────────────────────────────

// Get returns the window by ID, validating the caller is a party.
func (m *Manager) Get(ctx context.Context, windowID uuid.UUID, userID int64) (*Window, error) {
	w, err := m.store.Get(ctx, windowID)
	if err != nil {
		return nil, err
	}
	if !w.HasUser(userID) {
		return nil, ErrUnauthorizedParty
	}
	return w, nil
}

// ListPending returns the windows waiting on the user's decision:
// pending confirmations and extension requests from the other party.
func (m *Manager) ListPending(ctx context.Context, userID int64) ([]Window, error) {
	windows, err := m.store.ListByUser(ctx, userID,
		StatusPendingBoth, StatusPendingUserA, StatusPendingUserB, StatusExtensionPending)
	if err != nil {
		return nil, err
	}
	pending := windows[:0]
	for _, w := range windows {
		if m.awaitsUser(&w, userID) {
			pending = append(pending, w)
		}
	}
	return pending, nil
}

// ListWaiting returns the windows where the user has acted and the
// other party has not.
func (m *Manager) ListWaiting(ctx context.Context, userID int64) ([]Window, error) {
	windows, err := m.store.ListByUser(ctx, userID,
		StatusPendingUserA, StatusPendingUserB, StatusExtensionPending)
	if err != nil {
		return nil, err
	}
	waiting := windows[:0]
	for _, w := range windows {
		if !m.awaitsUser(&w, userID) {
			waiting = append(waiting, w)
		}
	}
	return waiting, nil
}

// ListConfirmed returns the user's mutually confirmed windows.
func (m *Manager) ListConfirmed(ctx context.Context, userID int64) ([]Window, error) {
	return m.store.ListByUser(ctx, userID, StatusConfirmed)
}

// awaitsUser reports whether the window is blocked on this user's
// decision.
func (m *Manager) awaitsUser(w *Window, userID int64) bool {
	switch w.Status {
	case StatusPendingBoth:
		return true
	case StatusPendingUserA:
		return userID == w.UserA
	case StatusPendingUserB:
		return userID == w.UserB
	case StatusExtensionPending:
		return w.ExtensionRequestedBy != userID
	}
	return false
}
