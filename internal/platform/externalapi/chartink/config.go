// Package chartink scrapes chartink.com screener result tables.
package chartink

import (
	"os"
	"strconv"
	"time"
)

const DefaultBaseURL = "https://chartink.com"

// Config holds the scraper settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// RequestsPerMinute paces page loads. 0 disables pacing.
	RequestsPerMinute int
}

// LoadConfig reads CHARTINK_BASE_URL and CHARTINK_REQUESTS_PER_MINUTE.
func LoadConfig() Config {
	cfg := Config{
		BaseURL:           os.Getenv("CHARTINK_BASE_URL"),
		Timeout:           20 * time.Second,
		RequestsPerMinute: 20,
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if n, err := strconv.Atoi(os.Getenv("CHARTINK_REQUESTS_PER_MINUTE")); err == nil && n >= 0 {
		cfg.RequestsPerMinute = n
	}
	return cfg
}
