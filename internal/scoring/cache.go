package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tashiscool/alovoa-sub007/internal/pair"
)

// ErrNoResult is returned by a CacheStore when no result exists for the pair.
var ErrNoResult = errors.New("no cached compatibility result")

// ProfileChangeChannel is the Redis channel the profile service publishes
// to whenever a user's assessment answers change.
const ProfileChangeChannel = "EVENT_PROFILE_UPDATED"

// CacheStore persists one compatibility result per canonical user pair.
type CacheStore interface {
	Get(ctx context.Context, key pair.Key) (*Result, error)
	Upsert(ctx context.Context, r Result) error
	// MarkStale flags every cached result referencing the user and
	// returns how many rows were touched.
	MarkStale(ctx context.Context, userID int64) (int64, error)
}

// Service is the caching front of the scoring engine: callers go through
// GetOrCompute, which consults the cache by canonical pair key and only
// recomputes when the entry is absent or stale.
type Service struct {
	engine  *Engine
	answers AnswerSource
	cache   CacheStore
	now     func() time.Time
}

// NewService wires the engine to its answer source and cache store.
func NewService(engine *Engine, answers AnswerSource, cache CacheStore) *Service {
	return &Service{
		engine:  engine,
		answers: answers,
		cache:   cache,
		now:     time.Now,
	}
}

// GetOrCompute returns the cached result for the pair, recomputing and
// upserting when the cache entry is missing or stale. The argument order
// does not matter.
func (s *Service) GetOrCompute(ctx context.Context, userA, userB int64) (Result, error) {
	key := pair.New(userA, userB)

	cached, err := s.cache.Get(ctx, key)
	if err == nil && !cached.Stale {
		return *cached, nil
	}
	if err != nil && !errors.Is(err, ErrNoResult) {
		return Result{}, fmt.Errorf("score cache get: %w", err)
	}

	return s.Recompute(ctx, key)
}

// Recompute scores the pair from fresh answers and upserts the result.
func (s *Service) Recompute(ctx context.Context, key pair.Key) (Result, error) {
	answersLo, err := s.answers.Answers(ctx, key.Lo)
	if err != nil {
		return Result{}, fmt.Errorf("load answers for user %d: %w", key.Lo, err)
	}
	answersHi, err := s.answers.Answers(ctx, key.Hi)
	if err != nil {
		return Result{}, fmt.Errorf("load answers for user %d: %w", key.Hi, err)
	}

	result := s.engine.Score(answersLo, answersHi)
	result.Pair = key
	result.CalculatedAt = s.now()

	if err := s.cache.Upsert(ctx, result); err != nil {
		return Result{}, fmt.Errorf("score cache upsert: %w", err)
	}
	return result, nil
}

// Invalidate marks every cached result referencing the user as stale.
// Only the flag matters — results already stale are left alone.
func (s *Service) Invalidate(ctx context.Context, userID int64) error {
	n, err := s.cache.MarkStale(ctx, userID)
	if err != nil {
		return fmt.Errorf("mark stale for user %d: %w", userID, err)
	}
	if n > 0 {
		slog.Info("invalidated cached compatibility results", "userId", userID, "count", n)
	}
	return nil
}

// profileChangeEvent is the payload published on ProfileChangeChannel.
type profileChangeEvent struct {
	UserID int64 `json:"userId"`
}

// ListenProfileChanges subscribes to the profile-change feed and marks
// affected cached results stale. It blocks until ctx is cancelled.
func (s *Service) ListenProfileChanges(ctx context.Context, rdb *redis.Client) {
	sub := rdb.Subscribe(ctx, ProfileChangeChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event profileChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				slog.Warn("malformed profile change event", "payload", msg.Payload, "err", err)
				continue
			}
			if err := s.Invalidate(ctx, event.UserID); err != nil {
				slog.Warn("profile change invalidation failed", "userId", event.UserID, "err", err)
			}
		}
	}
}
