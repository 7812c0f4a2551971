// Package sweeper wires up the cron job that closes match windows past
// their deadline and reminds parties shortly before it.
package sweeper

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/tashiscool/alovoa-sub007/internal/notify"
	"github.com/tashiscool/alovoa-sub007/internal/window"
)

// lockKey guards the sweep across service replicas. Whoever takes it
// runs the cycle; everyone else skips the tick.
const lockKey = "match:sweep:lock"

// batchSize bounds how many windows one cycle touches per pass.
const batchSize = 500

// Sweeper wraps robfig/cron and manages the expiration loop.
type Sweeper struct {
	cron     *cron.Cron
	store    window.Store
	manager  *window.Manager
	dispatch notify.Dispatcher
	rdb      *redis.Client
	spec     string // cron spec, e.g. "@every 5m"
	interval time.Duration
	horizon  time.Duration // reminder lead time before the deadline
	running  sync.Mutex    // single-flight within this process
	now      func() time.Time
}

// New creates a Sweeper that fires every intervalMinutes minutes and
// reminds parties reminderHours before a pending window expires.
func New(store window.Store, manager *window.Manager, dispatch notify.Dispatcher, rdb *redis.Client, intervalMinutes, reminderHours int) *Sweeper {
	return &Sweeper{
		cron:     cron.New(cron.WithLogger(cron.DefaultLogger)),
		store:    store,
		manager:  manager,
		dispatch: dispatch,
		rdb:      rdb,
		spec:     fmt.Sprintf("@every %dm", intervalMinutes),
		interval: time.Duration(intervalMinutes) * time.Minute,
		horizon:  time.Duration(reminderHours) * time.Hour,
		now:      time.Now,
	}
}

// Start registers the job and starts the scheduler. Also runs one sweep
// immediately so a restart picks up windows that expired while down.
func (s *Sweeper) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.RunCycle(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[sweeper] Cron started — spec: %s", s.spec)

	go s.RunCycle(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Sweeper) Stop() {
	s.cron.Stop()
	log.Println("[sweeper] Cron stopped")
}

// RunCycle runs one sweep: expirations first, then reminders. Overlapping
// cycles are skipped, within the process via a mutex and across replicas
// via a Redis lock held for the sweep interval.
func (s *Sweeper) RunCycle(ctx context.Context) {
	if !s.running.TryLock() {
		log.Println("[sweeper] Previous cycle still running — skipping")
		return
	}
	defer s.running.Unlock()

	if s.rdb != nil {
		ok, err := s.rdb.SetNX(ctx, lockKey, 1, s.interval).Result()
		if err != nil {
			log.Printf("[sweeper] Lock acquisition error: %v — sweeping anyway", err)
		} else if !ok {
			log.Println("[sweeper] Another replica holds the sweep lock — skipping")
			return
		}
	}

	expired := s.sweepExpired(ctx)
	reminded := s.sendReminders(ctx)
	if expired > 0 || reminded > 0 {
		log.Printf("[sweeper] Cycle complete — expired: %d, reminded: %d", expired, reminded)
	}
}

// sweepExpired closes every window past its deadline. Each window is
// re-checked under its row lock, so a confirm or decline racing the
// sweep wins.
func (s *Sweeper) sweepExpired(ctx context.Context) int {
	windows, err := s.store.ListExpired(ctx, s.now(), batchSize)
	if err != nil {
		log.Printf("[sweeper] ListExpired error: %v", err)
		return 0
	}

	expired := 0
	for _, w := range windows {
		done, err := s.manager.Expire(ctx, w.ID)
		if err != nil {
			log.Printf("[sweeper] Expire error for window %s: %v", w.ID, err)
			continue
		}
		if done {
			expired++
		}
	}
	return expired
}

// sendReminders publishes one expiring-soon event per pending window
// inside the reminder horizon, at most once per deadline.
func (s *Sweeper) sendReminders(ctx context.Context) int {
	now := s.now()
	windows, err := s.store.ListNeedingReminder(ctx, now, now.Add(s.horizon), batchSize)
	if err != nil {
		log.Printf("[sweeper] ListNeedingReminder error: %v", err)
		return 0
	}

	reminded := 0
	for _, w := range windows {
		_, err := s.store.Mutate(ctx, w.ID, func(w *window.Window) error {
			if !w.Status.IsPending() || w.ReminderSent || w.PastExpiry(now) {
				return errSkipReminder
			}
			w.ReminderSent = true
			return nil
		})
		if err != nil {
			if err != errSkipReminder {
				log.Printf("[sweeper] Reminder update error for window %s: %v", w.ID, err)
			}
			continue
		}

		event := notify.Event{
			WindowID:  w.ID.String(),
			UserA:     w.UserA,
			UserB:     w.UserB,
			Status:    string(w.Status),
			ExpiresAt: w.ExpiresAt,
		}
		if err := s.dispatch.ExpiringSoon(ctx, event); err != nil {
			log.Printf("[sweeper] Publish expiring soon failed for window %s: %v", w.ID, err)
		}
		reminded++
	}
	return reminded
}

var errSkipReminder = fmt.Errorf("reminder no longer applies")
