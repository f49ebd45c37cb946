package di

import (
	"fmt"
	"os"
	"strconv"
	"time"

	candleadapters "industry_backend/internal/feature/candles/adapters"
	"industry_backend/internal/feature/candles/usecase"
	screeneradapters "industry_backend/internal/feature/screener/adapters"
	"industry_backend/internal/shared/istclock"
)

const (
	defaultPadDays         = 5
	defaultSeriesFolder    = "bhavcopy_stock_data"
	defaultReferenceFolder = "reference"
)

// Settings are the pipeline and storage settings read from the environment.
type Settings struct {
	Pipeline usecase.PipelineConfig
	// CategoryStrategy is "global_rank" or "industry_tertile".
	CategoryStrategy string
	PadDays          int

	SeriesFolder    string
	SeriesFile      string
	SeriesFormat    string
	ReferenceFolder string
	BhavcopyFolder  string
	ScreenerFolder  string

	// CacheTTL is 0 when CACHE_TTL is unset; the cache then expires at the next 08:00 IST.
	CacheTTL time.Duration
}

// LoadSettings reads FRESHNESS_THRESHOLD, RETENTION_DAYS, PAD_DAYS, CATEGORY_STRATEGY,
// BACKFILL_START, the folder names, SERIES_FORMAT and CACHE_TTL.
func LoadSettings() (Settings, error) {
	s := Settings{
		Pipeline: usecase.PipelineConfig{
			Threshold:     usecase.DefaultFreshnessThreshold,
			RetentionDays: usecase.DefaultRetentionDays,
		},
		CategoryStrategy: envOr("CATEGORY_STRATEGY", "global_rank"),
		PadDays:          defaultPadDays,
		SeriesFolder:     envOr("SERIES_FOLDER", defaultSeriesFolder),
		SeriesFile:       envOr("SERIES_FILE", candleadapters.DefaultSeriesFile),
		SeriesFormat:     envOr("SERIES_FORMAT", "csv"),
		ReferenceFolder:  envOr("REFERENCE_FOLDER", defaultReferenceFolder),
		BhavcopyFolder:   envOr("BHAVCOPY_FOLDER", candleadapters.DefaultBhavcopyInbox),
		ScreenerFolder:   envOr("SCREENER_FOLDER", screeneradapters.DefaultFolder),
	}

	var err error
	if s.Pipeline.Threshold, err = envInt("FRESHNESS_THRESHOLD", s.Pipeline.Threshold); err != nil {
		return Settings{}, err
	}
	if s.Pipeline.RetentionDays, err = envInt("RETENTION_DAYS", s.Pipeline.RetentionDays); err != nil {
		return Settings{}, err
	}
	if s.PadDays, err = envInt("PAD_DAYS", s.PadDays); err != nil {
		return Settings{}, err
	}
	if v := os.Getenv("BACKFILL_START"); v != "" {
		if s.Pipeline.BackfillStart, err = istclock.ParseDate(v); err != nil {
			return Settings{}, fmt.Errorf("invalid BACKFILL_START %q: %w", v, err)
		}
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		if s.CacheTTL, err = time.ParseDuration(v); err != nil {
			return Settings{}, fmt.Errorf("invalid CACHE_TTL %q: %w", v, err)
		}
	}
	return s, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q", key, v)
	}
	return n, nil
}
