package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/formline/guidecms/internal/store"
)

// Config holds configuration for the cache manager.
type Config struct {
	// Type is the cache backend type: "memory" or "redis"
	Type string

	// RedisURL is the Redis connection URL (redis type only)
	RedisURL string

	// Prefix is the key prefix for Redis
	Prefix string

	// DefaultTTL is the default TTL for cache entries
	DefaultTTL time.Duration

	// MaxSize is the maximum number of entries for the memory backend
	MaxSize int

	// CleanupInterval is the expired entry sweep interval for the memory backend
	CleanupInterval time.Duration

	// FallbackToMemory falls back to the memory backend when Redis is
	// unreachable instead of failing startup.
	FallbackToMemory bool
}

// DefaultConfig returns default cache manager configuration.
func DefaultConfig() Config {
	return Config{
		Type:            "memory",
		DefaultTTL:      time.Hour,
		MaxSize:         10000,
		CleanupInterval: time.Minute,
	}
}

// Info describes the running cache backend.
type Info struct {
	Backend    string
	IsFallback bool
}

// Manager owns the cache backend and the typed caches layered on it.
type Manager struct {
	backend   Cacher
	info      Info
	Languages *LanguageCache
}

// NewManager creates a cache manager with the configured backend.
func NewManager(queries *store.Queries, cfg Config) *Manager {
	m := &Manager{}

	if cfg.Type == "redis" && cfg.RedisURL != "" {
		redisCache, err := NewRedisCache(RedisCacheOptions{
			URL:        cfg.RedisURL,
			Prefix:     cfg.Prefix,
			DefaultTTL: cfg.DefaultTTL,
		})
		if err == nil {
			m.backend = redisCache
			m.info = Info{Backend: "redis"}
		} else if cfg.FallbackToMemory {
			slog.Warn("redis cache unavailable, falling back to memory", "error", err)
			m.info = Info{Backend: "memory", IsFallback: true}
		} else {
			slog.Error("redis cache unavailable", "error", err)
			m.info = Info{Backend: "memory", IsFallback: true}
		}
	}

	if m.backend == nil {
		m.backend = NewMemoryCache(MemoryCacheOptions{
			DefaultTTL:      cfg.DefaultTTL,
			MaxSize:         cfg.MaxSize,
			CleanupInterval: cfg.CleanupInterval,
		})
		if m.info.Backend == "" {
			m.info = Info{Backend: "memory"}
		}
	}

	m.Languages = NewLanguageCache(m.backend, queries)
	return m
}

// Backend exposes the underlying cache for ad hoc entries.
func (m *Manager) Backend() Cacher {
	return m.backend
}

// Info returns backend information.
func (m *Manager) Info() Info {
	return m.info
}

// IsRedis reports whether the active backend is Redis.
func (m *Manager) IsRedis() bool {
	return m.info.Backend == "redis"
}

// Preload warms the typed caches.
func (m *Manager) Preload(ctx context.Context) error {
	_, err := m.Languages.GetAll(ctx)
	return err
}

// Stop closes the backend.
func (m *Manager) Stop() {
	if err := m.backend.Close(); err != nil {
		slog.Error("closing cache backend", "error", err)
	}
}
