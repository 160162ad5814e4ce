package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/heimer/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by the store.
const DefaultPrefix = "heimer:"

// Settings implements ports.SettingsStore on a Redis hash.
type Settings struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Settings)

// WithTTL expires the whole settings hash after ttl of inactivity.
func WithTTL(ttl time.Duration) Option {
	return func(s *Settings) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Settings) {
		s.prefix = prefix
	}
}

// New connects to a Redis server.
func New(address, password string, db int, opts ...Option) *Settings {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromURL connects using a redis:// URL.
func NewFromURL(url string, opts ...Option) (*Settings, error) {
	options, err := backend.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return NewFromClient(backend.NewClient(options), opts...), nil
}

// NewFromClient wraps an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Settings {
	s := &Settings{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Settings) hashKey() string {
	return s.prefix + "settings"
}

// Get returns the value of key.
func (s *Settings) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.HGet(ctx, s.hashKey(), key).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return "", domain.ErrSettingNotFound
		}
		return "", fmt.Errorf("failed to get setting from redis: %w", err)
	}
	return val, nil
}

// Set stores value under key and refreshes the TTL, if any.
func (s *Settings) Set(ctx context.Context, key, value string) error {
	pipe := s.client.Pipeline()
	pipe.HSet(ctx, s.hashKey(), key, value)
	if s.ttl > 0 {
		pipe.Expire(ctx, s.hashKey(), s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save setting to redis: %w", err)
	}
	return nil
}

// Delete removes key.
func (s *Settings) Delete(ctx context.Context, key string) error {
	if err := s.client.HDel(ctx, s.hashKey(), key).Err(); err != nil {
		return fmt.Errorf("failed to delete setting from redis: %w", err)
	}
	return nil
}

// Keys lists the stored keys.
func (s *Settings) Keys(ctx context.Context) ([]string, error) {
	keys, err := s.client.HKeys(ctx, s.hashKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	return keys, nil
}

// Close closes the redis client.
func (s *Settings) Close() error {
	return s.client.Close()
}
