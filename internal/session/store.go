package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Cached is the durable resumption slot: the server-issued token and the
// username it was issued to. Cleared only on explicit logout or an
// acknowledged duplicate-session conflict.
type Cached struct {
	SessionID string `json:"session_id"`
	Username  string `json:"username"`
}

// Store persists the resumption slot across restarts.
type Store interface {
	Load(ctx context.Context) (*Cached, error)
	Save(ctx context.Context, c *Cached) error
	Clear(ctx context.Context) error
}

const redisSessionKey = "chessarena:session"

type redisStore struct {
	rdb *redis.Client
}

// NewRedisStore builds a Redis-backed token store.
func NewRedisStore(redisURL string) (Store, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, errors.New("redis url required")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &redisStore{rdb: rdb}, nil
}

func (s *redisStore) Load(ctx context.Context) (*Cached, error) {
	raw, err := s.rdb.Get(ctx, redisSessionKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var c Cached
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	if strings.TrimSpace(c.SessionID) == "" {
		return nil, nil
	}
	return &c, nil
}

func (s *redisStore) Save(ctx context.Context, c *Cached) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, redisSessionKey, raw, 0).Err()
}

func (s *redisStore) Clear(ctx context.Context) error {
	return s.rdb.Del(ctx, redisSessionKey).Err()
}

type fileStore struct {
	path string
}

// NewFileStore builds a file-backed token store, used when no Redis is
// configured.
func NewFileStore(path string) Store {
	return &fileStore{path: path}
}

func (s *fileStore) Load(ctx context.Context) (*Cached, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var c Cached
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	if strings.TrimSpace(c.SessionID) == "" {
		return nil, nil
	}
	return &c, nil
}

func (s *fileStore) Save(ctx context.Context, c *Cached) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0o600)
}

func (s *fileStore) Clear(ctx context.Context) error {
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
