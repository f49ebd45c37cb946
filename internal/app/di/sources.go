// Package di provides dependency injection factories for creating application components.
package di

import (
	"log/slog"
	"time"

	"industry_backend/internal/feature/candles/usecase"
	screenerusecase "industry_backend/internal/feature/screener/usecase"
	"industry_backend/internal/platform/externalapi/angelone"
	"industry_backend/internal/platform/externalapi/chartink"
	infrahttp "industry_backend/internal/platform/http"
	"industry_backend/internal/shared/ratelimiter"
)

// NewBrokerage creates the Angel One client with its HTTP client and the
// limiter that paces it. Both are nil when the ANGEL_* credentials are not configured.
func NewBrokerage() (usecase.BrokerageClient, ratelimiter.RateLimiterInterface) {
	cfg := angelone.LoadConfig()
	if !cfg.Configured() {
		slog.Warn("angel one credentials not set; brokerage refresh disabled")
		return nil, nil
	}
	client := angelone.NewClient(cfg, infrahttp.NewHTTPClient(cfg.Timeout, infrahttp.DefaultUserAgent))
	return client, ratelimiter.NewRateLimiter(cfg.RequestsPerMinute, time.Minute)
}

// NewScreenerSource creates the chartink scraper with its HTTP client.
func NewScreenerSource() screenerusecase.ScreenerSource {
	cfg := chartink.LoadConfig()
	return chartink.NewScraper(cfg, infrahttp.NewHTTPClient(cfg.Timeout, infrahttp.DefaultUserAgent))
}
