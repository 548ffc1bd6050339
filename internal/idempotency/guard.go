// Package idempotency stops a double-submitted request from creating a
// second order. The first request for a key reserves it in Redis; retries
// with the same key get the result of the first.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	keyPrefix  = "idem:"
	pending    = "pending"
	defaultTTL = 24 * time.Hour
)

// ErrInProgress is returned when the first request for a key has not
// finished yet.
var ErrInProgress = errors.New("request with this idempotency key is in progress")

// kv is the subset of *redis.Client the guard needs.
type kv interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type Guard struct {
	client kv
	ttl    time.Duration
}

func NewGuard(client *redis.Client) *Guard {
	return &Guard{client: client, ttl: defaultTTL}
}

func newGuard(client kv, ttl time.Duration) *Guard {
	return &Guard{client: client, ttl: ttl}
}

// Begin reserves key for a new request. When the key was already used it
// returns the stored result, or ErrInProgress if the first request is still
// running. An empty result with a nil error means the caller owns the key
// and must call Finish or Abort.
func (g *Guard) Begin(ctx context.Context, scope, key string) (string, error) {
	k := keyPrefix + scope + ":" + key
	ok, err := g.client.SetNX(ctx, k, pending, g.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("reserve idempotency key: %w", err)
	}
	if ok {
		return "", nil
	}

	val, err := g.client.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		// Expired or aborted between SETNX and GET; let the caller retry.
		return "", ErrInProgress
	}
	if err != nil {
		return "", fmt.Errorf("read idempotency key: %w", err)
	}
	if val == pending {
		return "", ErrInProgress
	}
	return val, nil
}

// Finish records result for key so retries can replay it.
func (g *Guard) Finish(ctx context.Context, scope, key, result string) error {
	if err := g.client.Set(ctx, keyPrefix+scope+":"+key, result, g.ttl).Err(); err != nil {
		return fmt.Errorf("store idempotency result: %w", err)
	}
	return nil
}

// Abort releases key after a failed request so it can be retried.
func (g *Guard) Abort(ctx context.Context, scope, key string) error {
	if err := g.client.Del(ctx, keyPrefix+scope+":"+key).Err(); err != nil {
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return nil
}
