package notify

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisDispatcher publishes events on Redis pub/sub channels, one JSON
// payload per event.
type RedisDispatcher struct {
	rdb *redis.Client
}

// NewRedisDispatcher returns a Dispatcher backed by the given client.
func NewRedisDispatcher(rdb *redis.Client) *RedisDispatcher {
	return &RedisDispatcher{rdb: rdb}
}

func (d *RedisDispatcher) publish(ctx context.Context, channel string, e Event) error {
	payload := map[string]string{
		"type":     channel,
		"windowId": e.WindowID,
		"userA":    strconv.FormatInt(e.UserA, 10),
		"userB":    strconv.FormatInt(e.UserB, 10),
		"status":   e.Status,
	}
	if e.PriorStatus != "" {
		payload["priorStatus"] = e.PriorStatus
	}
	if e.ActorID != 0 {
		payload["actorId"] = strconv.FormatInt(e.ActorID, 10)
	}
	if !e.ExpiresAt.IsZero() {
		payload["expiresAt"] = e.ExpiresAt.UTC().Format(time.RFC3339)
	}

	msg, _ := json.Marshal(payload)
	return d.rdb.Publish(ctx, channel, msg).Err()
}

func (d *RedisDispatcher) WindowCreated(ctx context.Context, e Event) error {
	return d.publish(ctx, ChannelWindowCreated, e)
}

func (d *RedisDispatcher) WindowConfirmed(ctx context.Context, e Event) error {
	return d.publish(ctx, ChannelWindowConfirmed, e)
}

func (d *RedisDispatcher) WindowDeclined(ctx context.Context, e Event) error {
	return d.publish(ctx, ChannelWindowDeclined, e)
}

func (d *RedisDispatcher) WindowExpired(ctx context.Context, e Event) error {
	return d.publish(ctx, ChannelWindowExpired, e)
}

func (d *RedisDispatcher) WindowExtended(ctx context.Context, e Event) error {
	return d.publish(ctx, ChannelWindowExtended, e)
}

func (d *RedisDispatcher) ExtensionRequested(ctx context.Context, e Event) error {
	return d.publish(ctx, ChannelExtensionRequested, e)
}

func (d *RedisDispatcher) ExpiringSoon(ctx context.Context, e Event) error {
	return d.publish(ctx, ChannelExpiringSoon, e)
}
