package kv

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Abdulla090/knote/internal/config"

	"github.com/redis/go-redis/v9"
)

const connectTimeout = 5 * time.Second

var (
	redisClient *redis.Client
	redisStore  *RedisStore
	mu          sync.Mutex
)

// RedisStore persists values as plain Redis strings under namespaced keys.
type RedisStore struct {
	client    *redis.Client
	namespace string
}

// Init initializes the Redis-backed store (first call wins, thread-safe).
func Init(ctx context.Context, cfg config.Config, log *slog.Logger) (*RedisStore, error) {
	mu.Lock()
	defer mu.Unlock()

	if redisStore != nil {
		return redisStore, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Error("failed to parse redis url", "err", err)
		return nil, err
	}

	cli := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := cli.Ping(pingCtx).Err(); err != nil {
		log.Error("failed to ping redis", "err", err)
		closeErr := cli.Close()
		return nil, errors.Join(err, closeErr)
	}

	redisClient = cli
	redisStore = &RedisStore{client: cli, namespace: cfg.KVNamespace}

	log.Info("connected to redis", "namespace", cfg.KVNamespace)
	return redisStore, nil
}

// Shutdown closes the Redis connection. Safe to call more than once.
func Shutdown(_ context.Context) error {
	mu.Lock()
	defer mu.Unlock()

	if redisClient == nil {
		return nil
	}
	err := redisClient.Close()
	redisClient = nil
	redisStore = nil
	return err
}

func (s *RedisStore) qualify(key string) string {
	return s.namespace + ":" + key
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, s.qualify(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Set implements Store.
func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, s.qualify(key), value, 0).Err()
}

// Remove implements Store.
func (s *RedisStore) Remove(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.qualify(key)).Err()
}

// Ping checks the Redis connection; used by the health endpoint.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
