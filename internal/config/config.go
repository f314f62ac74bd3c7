package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	ServerWSURL string

	RedisURL    string
	DatabaseURL string

	// SessionCachePath backs the file token store when no Redis is configured.
	SessionCachePath string

	ConnectTimeout   time.Duration
	PingInterval     time.Duration
	ProbeBeforeDial  bool
	LeaderboardLimit int

	MessageOverrideDir string
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		SessionCachePath: ".chess-arena-session.json",
		ConnectTimeout:   10 * time.Second,
		PingInterval:     30 * time.Second,
		ProbeBeforeDial:  true,
		LeaderboardLimit: 50,
	}

	cfg.ServerWSURL = strings.TrimSpace(os.Getenv("SERVER_WS_URL"))
	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.MessageOverrideDir = strings.TrimSpace(os.Getenv("MESSAGE_OVERRIDE_DIR"))

	if v := strings.TrimSpace(os.Getenv("SESSION_CACHE_PATH")); v != "" {
		cfg.SessionCachePath = v
	}
	if v := strings.TrimSpace(os.Getenv("CONNECT_TIMEOUT")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.ConnectTimeout = d
		}
	}
	if v := strings.TrimSpace(os.Getenv("PING_INTERVAL")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.PingInterval = d
		}
	}
	if v := strings.TrimSpace(os.Getenv("PROBE_BEFORE_DIAL")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.ProbeBeforeDial = b
		}
	}
	if v := strings.TrimSpace(os.Getenv("LEADERBOARD_LIMIT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.LeaderboardLimit = n
		}
	}

	if cfg.ServerWSURL == "" {
		return nil, errors.New("SERVER_WS_URL is required")
	}

	return cfg, nil
}
