package ratelimiter

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterInterface は、API呼び出しなどの操作の頻度を制限するインターフェースです。
type RateLimiterInterface interface {
	WaitIfNeeded(ctx context.Context) error
}

// RateLimiter は x/time/rate のトークンバケットで呼び出し頻度を制限します。
type RateLimiter struct {
	limiter *rate.Limiter
	limit   int
}

// NewRateLimiter は interval あたり limit 回まで許可する RateLimiter を生成します。
// limit が 0 以下の場合は制限なしになります。
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	if limit <= 0 || interval <= 0 {
		return &RateLimiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	every := interval / time.Duration(limit)
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Every(every), limit),
		limit:   limit,
	}
}

// WaitIfNeeded はトークンが得られるまで待機します。ctx がキャンセルされた場合はエラーを返します。
func (rl *RateLimiter) WaitIfNeeded(ctx context.Context) error {
	if rl.limiter.Tokens() < 1 {
		slog.Debug("rate limit reached, waiting", "limit", rl.limit)
	}
	return rl.limiter.Wait(ctx)
}
