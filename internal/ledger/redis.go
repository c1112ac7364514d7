package ledger

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

//go:embed scripts/pop_order.lua
var popOrderScript string

// Redis is an optional ledger backend that survives process restarts. The
// pop is a Lua script so check-and-remove stays atomic across handlers and
// across instances.
type Redis struct {
	rdb       *redis.Client
	popScript *redis.Script
	ttl       time.Duration
}

// NewRedis connects to Redis and prepares the pop script. ttl > 0 bounds the
// lifetime of each pending order; ttl == 0 retains entries indefinitely.
func NewRedis(addr, password string, db int, ttl time.Duration) (*Redis, error) {
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

	return &Redis{
		rdb:       rdb,
		popScript: redis.NewScript(popOrderScript),
		ttl:       ttl,
	}, nil
}

// Close closes the Redis connection.
func (r *Redis) Close() error {
	return r.rdb.Close()
}

func pendingKey(reference string) string {
	return fmt.Sprintf("pending:%s", reference)
}

// Put registers contact under reference, replacing any existing entry.
func (r *Redis) Put(ctx context.Context, reference, contact string) error {
	if err := r.rdb.Set(ctx, pendingKey(reference), contact, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to register pending order: %w", err)
	}
	return nil
}

// PopIfPresent atomically removes and returns the contact for reference.
func (r *Redis) PopIfPresent(ctx context.Context, reference string) (string, bool, error) {
	result, err := r.popScript.Run(ctx, r.rdb, []string{pendingKey(reference)}).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("pop order script failed: %w", err)
	}

	contact, ok := result.(string)
	if !ok {
		return "", false, fmt.Errorf("unexpected script result type %T", result)
	}
	return contact, true, nil
}
