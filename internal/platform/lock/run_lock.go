// Package lock serializes pipeline runs across processes.
package lock

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultKey is the Redis key holding the pipeline run lock.
	DefaultKey = "pipeline:run-lock"
	// DefaultTTL bounds how long a crashed holder can block later runs.
	DefaultTTL = 2 * time.Hour
)

// releaseScript deletes the key only while it still holds our token.
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("DEL", KEYS[1]) else return 0 end`

// RunLock is a try-lock. With a Redis client it is a SET NX PX lock shared by
// every process using the same key. Without one it is an in-process mutex.
type RunLock struct {
	rdb *redis.Client
	key string
	ttl time.Duration
	mu  sync.Mutex
}

// NewRunLock creates a RunLock. rdb may be nil.
func NewRunLock(rdb *redis.Client, key string, ttl time.Duration) *RunLock {
	if key == "" {
		key = DefaultKey
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RunLock{rdb: rdb, key: key, ttl: ttl}
}

// TryAcquire takes the lock without waiting. acquired is false when another
// holder has it. release must be called once by the holder.
func (l *RunLock) TryAcquire(ctx context.Context) (release func(context.Context), acquired bool, err error) {
	if l.rdb == nil {
		if !l.mu.TryLock() {
			return nil, false, nil
		}
		return func(context.Context) { l.mu.Unlock() }, true, nil
	}

	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return nil, false, nil
	}
	return func(ctx context.Context) {
		if err := l.rdb.Eval(ctx, releaseScript, []string{l.key}, token).Err(); err != nil {
			slog.Warn("run lock release failed", "key", l.key, "error", err)
		}
	}, true, nil
}
