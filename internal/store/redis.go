package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisStore keeps one key per scope.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.Addr, err)
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Load(ctx context.Context, scope string) (*Snapshot, error) {
	data, err := s.client.Get(ctx, Key(scope)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return decode(data), nil
}

func (s *RedisStore) Save(ctx context.Context, scope string, snap *Snapshot) error {
	data, err := encode(snap)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, Key(scope), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, scope string) error {
	if err := s.client.Del(ctx, Key(scope)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Close closes the redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
