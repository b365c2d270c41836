package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/rueidis"
)

// ErrKeyNotFound is returned by RedisKV.Get for missing keys
var ErrKeyNotFound = errors.New("key not found")

// RedisKV is a minimal key-value store over rueidis, used as the backing
// store for the geocode cache.
type RedisKV struct {
	client rueidis.Client
	ttl    time.Duration
}

// NewRedisKV connects to Redis and returns a KV store with the given TTL
// applied to every Set.
func NewRedisKV(addr, password string, db int, ttl time.Duration) (*RedisKV, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress: []string{addr},
		Password:    password,
		SelectDB:    db,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}
	return &RedisKV{client: client, ttl: ttl}, nil
}

// Get returns the value for key, or ErrKeyNotFound
func (s *RedisKV) Get(ctx context.Context, key string) ([]byte, error) {
	resp := s.client.Do(ctx, s.client.B().Get().Key(key).Build())
	data, err := resp.AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return data, nil
}

// Set stores value under key with the configured TTL
func (s *RedisKV) Set(ctx context.Context, key string, value []byte) error {
	cmd := s.client.B().Set().Key(key).Value(rueidis.BinaryString(value)).Ex(s.ttl).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Ping checks connectivity
func (s *RedisKV) Ping(ctx context.Context) error {
	if err := s.client.Do(ctx, s.client.B().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close shuts down the client
func (s *RedisKV) Close() {
	s.client.Close()
}
