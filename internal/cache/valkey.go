package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned when the token has no live session
var ErrSessionNotFound = errors.New("session not found")

type Config struct {
	Addr          string
	Password      string
	DB            int
	SessionPrefix string
}

// Session - данные участника, которые кладёт в Valkey сервис входа
type Session struct {
	VID   int64  `json:"vid"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

type ValkeyClient struct {
	client *redis.Client
	prefix string
}

func NewValkeyClient(cfg Config) (*ValkeyClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	return NewSessionStore(rdb, cfg.SessionPrefix), nil
}

// NewSessionStore wraps an existing client
func NewSessionStore(rdb *redis.Client, prefix string) *ValkeyClient {
	return &ValkeyClient{client: rdb, prefix: prefix}
}

func (v *ValkeyClient) key(token string) string {
	return v.prefix + token
}

// Session resolves a session token
func (v *ValkeyClient) Session(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}

	raw, err := v.client.Get(ctx, v.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("session lookup error: %w", err)
	}

	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("invalid session payload: %w", err)
	}
	if s.VID <= 0 {
		return nil, ErrSessionNotFound
	}
	return &s, nil
}

// PutSession stores a session with the given ttl, used by tooling and tests
func (v *ValkeyClient) PutSession(ctx context.Context, token string, s Session, ttl time.Duration) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := v.client.Set(ctx, v.key(token), payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

func (v *ValkeyClient) HealthCheck(ctx context.Context) error {
	return v.client.Ping(ctx).Err()
}

func (v *ValkeyClient) Close() error {
	return v.client.Close()
}
