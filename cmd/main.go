// match-service
//
// Match formation core for the dating platform. Exposes a REST API used
// by the Gateway to implement:
//   - openWindow(candidateId)            — eligibility-gated window creation
//   - confirmWindow / declineWindow      — mutual confirmation state machine
//   - requestExtension / respond         — one-shot deadline extensions
//   - myWindows queries                  — pending / waiting / confirmed
//
// A cron sweeper closes windows past their deadline and publishes
// EVENT_WINDOW_EXPIRING_SOON reminders. Compatibility scores are cached
// per pair and invalidated from the EVENT_PROFILE_UPDATED feed.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tashiscool/alovoa-sub007/internal/config"
	"github.com/tashiscool/alovoa-sub007/internal/db"
	"github.com/tashiscool/alovoa-sub007/internal/notify"
	"github.com/tashiscool/alovoa-sub007/internal/scoring"
	"github.com/tashiscool/alovoa-sub007/internal/sweeper"
	"github.com/tashiscool/alovoa-sub007/internal/window"
)

const version = "1.0.0"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[match-service] Config error: %v", err)
	}

	scoringCfg := scoring.DefaultConfig()
	if err := scoringCfg.Validate(); err != nil {
		log.Fatalf("[match-service] Scoring config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	log.Println("[match-service] Connecting to PostgreSQL…")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[match-service] PostgreSQL: %v", err)
	}
	defer pool.Close()
	log.Println("[match-service] PostgreSQL connected ✓")

	// ── Redis ────────────────────────────────────────────────────────────────
	log.Println("[match-service] Connecting to Redis…")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("[match-service] Redis: %v", err)
	}
	defer rdb.Close()
	log.Println("[match-service] Redis connected ✓")

	// ── Services ─────────────────────────────────────────────────────────────
	scores := scoring.NewService(
		scoring.NewEngine(scoringCfg),
		scoring.NewPostgresAnswers(pool),
		scoring.NewPostgresCache(pool),
	)
	dispatch := notify.NewRedisDispatcher(rdb)
	store := window.NewPostgresStore(pool)
	manager := window.NewManager(store, scores, dispatch, window.Config{
		Duration:               time.Duration(cfg.WindowDurationHours) * time.Hour,
		ExtensionDuration:      time.Duration(cfg.ExtensionHours) * time.Hour,
		MaxExtensions:          cfg.MaxExtensions,
		ExtensionRequestWindow: time.Duration(cfg.ExtensionRequestHours) * time.Hour,
		MatchThreshold:         cfg.MatchThreshold,
	})

	// Invalidate cached scores when profiles change.
	go scores.ListenProfileChanges(ctx, rdb)

	// ── Sweeper ──────────────────────────────────────────────────────────────
	sw := sweeper.New(store, manager, dispatch, rdb, cfg.SweepIntervalMinutes, cfg.ReminderWindowHours)
	if err := sw.Start(ctx); err != nil {
		log.Fatalf("[match-service] Sweeper: %v", err)
	}
	defer sw.Stop()

	// ── HTTP server ──────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)

	h := window.NewHandler(manager)
	h.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[match-service] v%s listening on :%s", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[match-service] HTTP server error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[match-service] Shutting down…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[match-service] Shutdown error: %v", err)
	}
	log.Println("[match-service] Stopped.")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "match-service",
		"version": version,
	})
}
