package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "onlinemall:storage"

// RedisStorage keeps values in Redis under prefix:key, optionally with a TTL.
// Useful when several consoles should share one login.
type RedisStorage struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStorage builds a Redis-backed storage. A zero ttl keeps keys forever.
func NewRedisStorage(addr, password, prefix string, ttl time.Duration) (*RedisStorage, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("redis storage addr is required")
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStorage{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
		prefix: prefix,
		ttl:    ttl,
	}, nil
}

// Get returns the value stored under key.
func (s *RedisStorage) Get(key string) (string, bool, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return "", false, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	val, err := s.client.Get(ctx, s.redisKey(key)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Set stores value under key.
func (s *RedisStorage) Set(key, value string) error {
	key, err := normalizeKey(key)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return s.client.Set(ctx, s.redisKey(key), value, s.ttl).Err()
}

// Remove deletes key.
func (s *RedisStorage) Remove(key string) error {
	key, err := normalizeKey(key)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.client.Del(ctx, s.redisKey(key)).Err(); err != nil && err != redis.Nil {
		return err
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *RedisStorage) Close() error {
	return s.client.Close()
}

func (s *RedisStorage) redisKey(key string) string {
	return s.prefix + ":" + key
}
