package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"todo-engine/internal/config"
	"todo-engine/internal/metrics"
	"todo-engine/internal/models"
	"todo-engine/pkg/logger"
)

const snapshotKey = "todos:snapshot"

var (
	client *redis.Client
	once   sync.Once
)

// Client returns the global Redis client (initialized on first use).
// It returns nil when REDIS_URL is unset or the server is unreachable.
func Client(ctx context.Context) *redis.Client {
	once.Do(func() {
		cfg := config.Get()
		if cfg.RedisURL == "" {
			logger.Info(ctx, "Redis disabled (REDIS_URL not set)")
			return
		}
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error(ctx, "Invalid REDIS_URL", "error", err, "url", cfg.RedisURL)
			return
		}
		opts.PoolSize = cfg.RedisPoolSize
		c := redis.NewClient(opts)
		if err := c.Ping(ctx).Err(); err != nil {
			logger.Error(ctx, "Redis ping failed", "error", err)
			_ = c.Close()
			return
		}
		client = c
		logger.Info(ctx, "Redis client initialized", "pool_size", cfg.RedisPoolSize)
	})
	return client
}

// Snapshot caches the last fetched remote collection.
// A nil *Snapshot or one without a client is a permanent miss.
type Snapshot struct {
	rdb *redis.Client
	ttl time.Duration
	key string
}

// NewSnapshot wraps rdb; ttl <= 0 means no expiry.
func NewSnapshot(rdb *redis.Client, ttl time.Duration) *Snapshot {
	return &Snapshot{rdb: rdb, ttl: ttl, key: snapshotKey}
}

// Get reads the cached collection. Returns (nil, false) on miss or error.
func (s *Snapshot) Get(ctx context.Context) ([]models.Todo, bool) {
	if s == nil || s.rdb == nil {
		return nil, false
	}
	b, err := s.rdb.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
		return nil, false
	}
	if err != nil {
		metrics.CacheLookupsTotal.WithLabelValues("error").Inc()
		logger.Debug(ctx, "Redis get snapshot failed", "error", err)
		return nil, false
	}
	var todos []models.Todo
	if err := json.Unmarshal(b, &todos); err != nil {
		metrics.CacheLookupsTotal.WithLabelValues("error").Inc()
		logger.Debug(ctx, "Redis unmarshal snapshot failed", "error", err)
		return nil, false
	}
	metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
	return todos, true
}

// Set writes the collection with the configured TTL.
func (s *Snapshot) Set(ctx context.Context, todos []models.Todo) {
	if s == nil || s.rdb == nil {
		return
	}
	b, err := json.Marshal(todos)
	if err != nil {
		logger.Debug(ctx, "Marshal snapshot failed", "error", err)
		return
	}
	if err := s.rdb.Set(ctx, s.key, b, s.ttl).Err(); err != nil {
		logger.Debug(ctx, "Redis set snapshot failed", "error", err)
	}
}

// Invalidate deletes the snapshot so the next load goes to the remote.
func (s *Snapshot) Invalidate(ctx context.Context) {
	if s == nil || s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, s.key).Err(); err != nil {
		logger.Debug(ctx, "Redis invalidate snapshot failed", "error", err)
	}
}
