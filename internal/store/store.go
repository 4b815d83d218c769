// Package store encapsulates the Redis-backed session store that maps a chat id
// to its current conversation state.
package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"tg_shop_bot/internal/config"
	"tg_shop_bot/internal/domain"
)

// redisClient captures the subset of redis.Client behavior we rely on to allow
// lightweight stubbing in tests without a live Redis deployment.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// connectRedis is overridable for tests.
var connectRedis = func(opts *redis.Options) redisClient {
	return redis.NewClient(opts)
}

// Manager owns the Redis client for session persistence. It is constructed once
// at process start and injected wherever session access is needed; there is no
// package-level connection.
type Manager struct {
	client redisClient
}

// NewManager connects to the session store using the supplied configuration and
// verifies connectivity with a ping.
func NewManager(ctx context.Context, cfg config.Config) (*Manager, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	client := connectRedis(&redis.Options{
		Addr:     cfg.DatabaseAddr(),
		Password: cfg.DatabasePassword,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping session store: %w", err)
	}

	return &Manager{client: client}, nil
}

// Get reads the stored conversation state for a chat. A missing key is reported
// as found=false, not as an error; a value outside the known state set fails
// with UnknownStateError and the stored value is left untouched.
func (m *Manager) Get(ctx context.Context, chatID int64) (domain.State, bool, error) {
	if m == nil || m.client == nil {
		return "", false, errors.New("session store is not initialized")
	}
	if ctx == nil {
		return "", false, errors.New("context is required")
	}

	value, err := m.client.Get(ctx, sessionKey(chatID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read session %d: %w", chatID, err)
	}

	state, err := domain.ParseState(value)
	if err != nil {
		return "", false, err
	}

	return state, true, nil
}

// Set writes the conversation state for a chat. States are validated before the
// write so a corrupted value can never enter the store through this path.
// Sessions have no TTL; conversations never expire.
func (m *Manager) Set(ctx context.Context, chatID int64, state domain.State) error {
	if m == nil || m.client == nil {
		return errors.New("session store is not initialized")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	if _, err := domain.ParseState(string(state)); err != nil {
		return err
	}

	if err := m.client.Set(ctx, sessionKey(chatID), string(state), 0).Err(); err != nil {
		return fmt.Errorf("write session %d: %w", chatID, err)
	}
	return nil
}

// Ping checks store connectivity; used by the health endpoint.
func (m *Manager) Ping(ctx context.Context) error {
	if m == nil || m.client == nil {
		return errors.New("session store is not initialized")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	return m.client.Ping(ctx).Err()
}

// Close releases the underlying Redis client.
func (m *Manager) Close() error {
	if m == nil || m.client == nil {
		return nil
	}

	return m.client.Close()
}

func sessionKey(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}
