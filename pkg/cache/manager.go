package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long a response stays fresh when no TTL is configured.
const DefaultTTL = 5 * time.Second

var (
	// ErrCacheMiss is returned when no fresh response is cached for a key.
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry is returned for a stored value that does not decode.
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// Manager shares Jolokia responses between exporter replicas through Redis.
// It is safe for concurrent use.
type Manager struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewManager creates a manager on top of client. Responses stored with
// Store stay fresh for ttl, or DefaultTTL when ttl <= 0.
func NewManager(client redis.Cmdable, ttl time.Duration) *Manager {
	if client == nil {
		panic("redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{client: client, ttl: ttl}
}

// TTL returns the freshness window applied by Store.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Get returns the fresh entry stored under key, or ErrCacheMiss.
func (m *Manager) Get(ctx context.Context, key CacheKey) (*CacheEntry, error) {
	raw, err := m.client.Get(ctx, key.String()).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		CacheMisses.Inc()
		return nil, ErrCacheMiss
	case err != nil:
		return nil, fail("get", fmt.Errorf("redis get %s: %w", key, err))
	}

	entry := new(CacheEntry)
	if err := json.Unmarshal(raw, entry); err != nil {
		return nil, fail("get", fmt.Errorf("%w: %v", ErrInvalidEntry, err))
	}

	// Redis expiry has millisecond precision; the entry's own deadline wins.
	if entry.IsExpired() {
		_ = m.Delete(ctx, key)
		CacheMisses.Inc()
		return nil, ErrCacheMiss
	}

	CacheHits.Inc()
	return entry, nil
}

// Set writes entry under key until entry.Expires. An entry that is already
// stale is dropped silently.
func (m *Manager) Set(ctx context.Context, key CacheKey, entry *CacheEntry) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}
	remaining := entry.TTL()
	if remaining <= 0 {
		return nil
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		return fail("set", fmt.Errorf("encode cache entry: %w", err))
	}
	if err := m.client.Set(ctx, key.String(), raw, remaining).Err(); err != nil {
		return fail("set", fmt.Errorf("redis set %s: %w", key, err))
	}

	CacheSize.Set(float64(len(raw)))
	return nil
}

// Store caches a raw agent response under key for the manager's TTL.
func (m *Manager) Store(ctx context.Context, key CacheKey, body []byte) error {
	return m.Set(ctx, key, NewEntry(body, m.ttl))
}

// Delete drops whatever is stored under key.
func (m *Manager) Delete(ctx context.Context, key CacheKey) error {
	if err := m.client.Del(ctx, key.String()).Err(); err != nil {
		return fail("delete", fmt.Errorf("redis del %s: %w", key, err))
	}
	return nil
}

// fail counts err against operation and returns it.
func fail(operation string, err error) error {
	CacheErrors.WithLabelValues(operation).Inc()
	return err
}
