// Package cache keeps recent dashboard snapshots in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"healthdash/internal/app"
)

const keyPrefix = "healthdash:snapshot"

// DefaultTTL bounds how stale a cached snapshot may get when no write
// invalidates it.
const DefaultTTL = 15 * time.Second

// SnapshotCache implements app.SnapshotCache on Redis.
type SnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ app.SnapshotCache = (*SnapshotCache)(nil)

// New creates a SnapshotCache. A non-positive ttl selects DefaultTTL.
func New(client *redis.Client, ttl time.Duration) *SnapshotCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &SnapshotCache{client: client, ttl: ttl}
}

// Dial connects to Redis at addr and verifies the connection.
func Dial(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

func genKey(userID int64) string {
	return fmt.Sprintf("%s:%d:gen", keyPrefix, userID)
}

func snapKey(userID, gen int64) string {
	return fmt.Sprintf("%s:%d:v%d", keyPrefix, userID, gen)
}

// generation reads the current generation of a user. A missing counter is 0.
func (c *SnapshotCache) generation(ctx context.Context, userID int64) (int64, error) {
	gen, err := c.client.Get(ctx, genKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// GetSnapshot loads the cached snapshot of a user under the current
// generation. A miss is (nil, gen, nil).
func (c *SnapshotCache) GetSnapshot(ctx context.Context, userID int64) (*app.Snapshot, int64, error) {
	gen, err := c.generation(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	raw, err := c.client.Get(ctx, snapKey(userID, gen)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, gen, nil
	}
	if err != nil {
		return nil, 0, err
	}
	var snap app.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, 0, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, gen, nil
}

// SetSnapshot stores the snapshot of a user under gen for the cache TTL. A
// snapshot filed under a generation that has since been bumped is never read.
func (c *SnapshotCache) SetSnapshot(ctx context.Context, userID, gen int64, snap *app.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return c.client.Set(ctx, snapKey(userID, gen), raw, c.ttl).Err()
}

// InvalidateSnapshot bumps the generation of a user. Entries under older
// generations age out with their TTL.
func (c *SnapshotCache) InvalidateSnapshot(ctx context.Context, userID int64) error {
	return c.client.Incr(ctx, genKey(userID)).Err()
}
