package window

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tashiscool/alovoa-sub007/internal/pair"
)

// Store persists match windows. Implementations enforce the
// at-most-one-active constraint per pair and serialize concurrent
// writers per window.
type Store interface {
	// Create inserts a new window. It returns ErrDuplicateWindow when
	// the pair already has a window in a non-terminal state.
	Create(ctx context.Context, w Window) error

	// Get returns the window by ID, or ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*Window, error)

	// FindActive returns the pair's non-terminal window, or ErrNotFound.
	FindActive(ctx context.Context, key pair.Key) (*Window, error)

	// Mutate loads the window under an exclusive lock, applies fn and
	// persists the result, all in one transaction. When fn returns an
	// error the window is left untouched and the error is propagated.
	// Concurrent Mutate calls on the same window serialize.
	Mutate(ctx context.Context, id uuid.UUID, fn func(*Window) error) (*Window, error)

	// ListByUser returns the user's windows, newest first, optionally
	// filtered to the given statuses.
	ListByUser(ctx context.Context, userID int64, statuses ...Status) ([]Window, error)

	// ListExpired returns windows past their deadline that are still in
	// a non-terminal state, oldest deadline first.
	ListExpired(ctx context.Context, now time.Time, limit int) ([]Window, error)

	// ListNeedingReminder returns pending windows expiring within the
	// horizon whose reminder has not been sent yet.
	ListNeedingReminder(ctx context.Context, now, horizon time.Time, limit int) ([]Window, error)
}
