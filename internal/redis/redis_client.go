package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	activeUsersKey  = "active_users"
	connCountPrefix = "conn_count:"
)

type RedisClient struct {
	client *redis.Client
}

func NewRedisClient(ctx context.Context, redisURL string) (*RedisClient, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisClient{client: client}, nil
}

// Connected records one more live connection for the user. The user shows as
// online while at least one connection remains (two tabs stay online after
// closing one).
func (r *RedisClient) Connected(ctx context.Context, email string) error {
	if err := r.client.Incr(ctx, connCountPrefix+email).Err(); err != nil {
		return err
	}
	return r.client.SAdd(ctx, activeUsersKey, email).Err()
}

// Disconnected drops one connection for the user and removes them from the
// active set when it was the last one.
func (r *RedisClient) Disconnected(ctx context.Context, email string) error {
	remaining, err := r.client.Decr(ctx, connCountPrefix+email).Result()
	if err != nil {
		return err
	}
	if remaining > 0 {
		return nil
	}
	if err := r.client.Del(ctx, connCountPrefix+email).Err(); err != nil {
		return err
	}
	return r.client.SRem(ctx, activeUsersKey, email).Err()
}

func (r *RedisClient) IsOnline(ctx context.Context, email string) (bool, error) {
	return r.client.SIsMember(ctx, activeUsersKey, email).Result()
}

func (r *RedisClient) OnlineEmails(ctx context.Context) ([]string, error) {
	return r.client.SMembers(ctx, activeUsersKey).Result()
}

// FlushAll clears the whole database. Test helper.
func (r *RedisClient) FlushAll(ctx context.Context) error {
	return r.client.FlushAll(ctx).Err()
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}
