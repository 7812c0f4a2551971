// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all runtime configuration for the match service.
type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string

	WindowDurationHours   int // initial window lifetime
	ExtensionHours        int // deadline push per accepted extension
	MaxExtensions         int // accepted extensions per window
	ExtensionRequestHours int // how close to the deadline extensions open
	SweepIntervalMinutes  int // how often the sweeper cron fires
	ReminderWindowHours   int // expiring-soon lead time
	MatchThreshold        float64
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	port := os.Getenv("MATCH_PORT")
	if port == "" {
		port = "8083"
	}

	cfg := &Config{
		Port:                  port,
		DatabaseURL:           dbURL,
		RedisURL:              redisURL,
		WindowDurationHours:   24,
		ExtensionHours:        12,
		MaxExtensions:         1,
		ExtensionRequestHours: 6,
		SweepIntervalMinutes:  5,
		ReminderWindowHours:   4,
		MatchThreshold:        70,
	}

	ints := []struct {
		env string
		dst *int
	}{
		{"WINDOW_DURATION_HOURS", &cfg.WindowDurationHours},
		{"EXTENSION_HOURS", &cfg.ExtensionHours},
		{"MAX_EXTENSIONS", &cfg.MaxExtensions},
		{"EXTENSION_REQUEST_WINDOW_HOURS", &cfg.ExtensionRequestHours},
		{"SWEEP_INTERVAL_MINUTES", &cfg.SweepIntervalMinutes},
		{"REMINDER_WINDOW_HOURS", &cfg.ReminderWindowHours},
	}
	for _, i := range ints {
		s := os.Getenv(i.env)
		if s == "" {
			continue
		}
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("%s must be a non-negative integer, got %q", i.env, s)
		}
		*i.dst = v
	}
	if cfg.WindowDurationHours < 1 {
		return nil, fmt.Errorf("WINDOW_DURATION_HOURS must be at least 1")
	}
	if cfg.SweepIntervalMinutes < 1 {
		return nil, fmt.Errorf("SWEEP_INTERVAL_MINUTES must be at least 1")
	}

	if s := os.Getenv("MATCH_THRESHOLD"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v < 0 || v > 100 {
			return nil, fmt.Errorf("MATCH_THRESHOLD must be between 0 and 100, got %q", s)
		}
		cfg.MatchThreshold = v
	}

	return cfg, nil
}
