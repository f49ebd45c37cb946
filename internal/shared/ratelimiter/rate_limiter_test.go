package ratelimiter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRateLimiter_BurstWithinLimit は上限以内の呼び出しが待機せずに通ることを検証します。
func TestRateLimiter_BurstWithinLimit(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(3, time.Second)
	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, rl.WaitIfNeeded(context.Background()))
	}
	assert.Less(t, time.Since(start), 200*time.Millisecond)
}

// TestRateLimiter_CanceledContext は待機中にコンテキストがキャンセルされるとエラーを返すことを検証します。
func TestRateLimiter_CanceledContext(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(1, time.Hour)
	require.NoError(t, rl.WaitIfNeeded(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, rl.WaitIfNeeded(ctx))
}

func TestRateLimiter_Unlimited(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(0, 0)
	for i := 0; i < 100; i++ {
		require.NoError(t, rl.WaitIfNeeded(context.Background()))
	}
}
