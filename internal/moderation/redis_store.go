// Package moderation provides the Redis backend for the blocked-visitor set.
package moderation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"portfolio/api/internal/store"
)

const defaultKey = "portfolio:blocked"

// RedisStore keeps blocked visitor names in a sorted set scored by the time
// they were blocked.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore connects to redisURL and verifies the connection.
func NewRedisStore(redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisStoreWithClient(client), nil
}

// NewRedisStoreWithClient creates a store from an existing Redis client
func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		key:    defaultKey,
	}
}

// Block adds name to the set. NX keeps the first block time on repeats.
func (s *RedisStore) Block(ctx context.Context, name string) error {
	err := s.client.ZAddNX(ctx, s.key, redis.Z{
		Score:  float64(time.Now().UnixMilli()),
		Member: name,
	}).Err()
	if err != nil {
		return fmt.Errorf("block visitor: %w", err)
	}
	return nil
}

func (s *RedisStore) Unblock(ctx context.Context, name string) error {
	if err := s.client.ZRem(ctx, s.key, name).Err(); err != nil {
		return fmt.Errorf("unblock visitor: %w", err)
	}
	return nil
}

func (s *RedisStore) IsBlocked(ctx context.Context, name string) (bool, error) {
	_, err := s.client.ZScore(ctx, s.key, name).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check blocked visitor: %w", err)
	}
	return true, nil
}

// ListBlocked returns the most recently blocked names first.
func (s *RedisStore) ListBlocked(ctx context.Context) ([]store.BlockEntry, error) {
	members, err := s.client.ZRevRangeWithScores(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list blocked visitors: %w", err)
	}
	items := make([]store.BlockEntry, 0, len(members))
	for _, member := range members {
		name, ok := member.Member.(string)
		if !ok {
			continue
		}
		items = append(items, store.BlockEntry{
			Name:      name,
			BlockedAt: time.UnixMilli(int64(member.Score)),
		})
	}
	return items, nil
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks if Redis is reachable
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
