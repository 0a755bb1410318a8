package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// NextOrderNumber atomically draws the next human-facing order number for
// an event. Numbers are monotonically increasing per event and never
// reused; callers fall back to the database MAX+1 when Redis is down.
func (c *Client) NextOrderNumber(ctx context.Context, eventID string) (int64, error) {
	key := fmt.Sprintf("orderno:%s", eventID)

	number, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("order number incr failed: %w", err)
	}
	return number, nil
}

// SeedOrderNumber raises the counter to at least current so the sequence
// continues correctly after a Redis restart. Lower values are ignored.
func (c *Client) SeedOrderNumber(ctx context.Context, eventID string, current int64) error {
	key := fmt.Sprintf("orderno:%s", eventID)

	existing, err := c.rdb.Get(ctx, key).Int64()
	if err != nil && err != redis.Nil {
		return err
	}
	if current <= existing {
		return nil
	}
	return c.rdb.Set(ctx, key, current, 0).Err()
}

// BumpSnapshotVersion increments the global snapshot version stamp. Clients
// can compare it against their last seen value to decide whether a full
// resync is worthwhile after a reconnect.
func (c *Client) BumpSnapshotVersion(ctx context.Context) (int64, error) {
	return c.rdb.Incr(ctx, "snapshot:version").Result()
}

// SnapshotVersion reads the current snapshot version stamp
func (c *Client) SnapshotVersion(ctx context.Context) (int64, error) {
	version, err := c.rdb.Get(ctx, "snapshot:version").Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return version, err
}
