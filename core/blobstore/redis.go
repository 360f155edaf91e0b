package blobstore

import (
	"context"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
)

// RedisStore is an alternate backend for deployments that already run a
// shared key-value service. Hierarchical paths map directly to redis keys.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	URL    string
	Prefix string
}

// NewRedisStore connects to redis using a URL of the form
// redis://[user:pass@]host:port/db.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{client: client, prefix: cfg.Prefix}, nil
}

func (s *RedisStore) key(path string) string {
	if s.prefix == "" {
		return path
	}
	return s.prefix + path
}

func (s *RedisStore) Put(ctx context.Context, path string, data []byte) error {
	if err := s.client.Set(ctx, s.key(path), data, 0).Err(); err != nil {
		return fmt.Errorf("put %s: %w", path, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, path string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, s.key(path)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", path, err)
	}
	return data, true, nil
}

func (s *RedisStore) List(ctx context.Context, prefix string) ([]string, error) {
	var paths []string
	iter := s.client.Scan(ctx, 0, s.key(prefix)+"*", 0).Iterator()
	for iter.Next(ctx) {
		paths = append(paths, iter.Val()[len(s.prefix):])
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", prefix, err)
	}
	sort.Strings(paths)
	return paths, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
