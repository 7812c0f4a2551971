// Package notify is the outbound event boundary of the match service.
// Downstream consumers (push notifications, e-mail digests, analytics)
// subscribe to the published channels; this service never blocks on them.
package notify

import (
	"context"
	"time"
)

// Event channels, one per lifecycle transition.
const (
	ChannelWindowCreated      = "EVENT_WINDOW_CREATED"
	ChannelWindowConfirmed    = "EVENT_WINDOW_CONFIRMED"
	ChannelWindowDeclined     = "EVENT_WINDOW_DECLINED"
	ChannelWindowExpired      = "EVENT_WINDOW_EXPIRED"
	ChannelWindowExtended     = "EVENT_WINDOW_EXTENDED"
	ChannelExtensionRequested = "EVENT_EXTENSION_REQUESTED"
	ChannelExpiringSoon       = "EVENT_WINDOW_EXPIRING_SOON"
)

// Event carries the facts of one window transition. ActorID is the user
// who triggered the transition; it is zero for sweeper-driven events.
// PriorStatus is only set on expirations.
type Event struct {
	WindowID    string
	UserA       int64
	UserB       int64
	Status      string
	PriorStatus string
	ActorID     int64
	ExpiresAt   time.Time
}

// Dispatcher publishes window lifecycle events. Implementations must be
// safe for concurrent use. Errors are advisory: callers log and move on,
// a failed notification never rolls back a transition.
type Dispatcher interface {
	WindowCreated(ctx context.Context, e Event) error
	WindowConfirmed(ctx context.Context, e Event) error
	WindowDeclined(ctx context.Context, e Event) error
	WindowExpired(ctx context.Context, e Event) error
	WindowExtended(ctx context.Context, e Event) error
	ExtensionRequested(ctx context.Context, e Event) error
	ExpiringSoon(ctx context.Context, e Event) error
}
