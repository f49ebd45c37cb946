// Package angelone is a client for the Angel One SmartAPI historical candle endpoints.
package angelone

import (
	"os"
	"strconv"
	"time"
)

const (
	DefaultBaseURL        = "https://apiconnect.angelbroking.com"
	DefaultScripMasterURL = "https://margincalculator.angelbroking.com/OpenAPI_File/files/OpenAPIScripMaster.json"
)

// Config holds the SmartAPI credentials and endpoints.
type Config struct {
	APIKey         string
	ClientCode     string
	Password       string
	TOTPSecret     string // base32 seed of the account's authenticator
	BaseURL        string
	ScripMasterURL string
	LocalIP        string
	PublicIP       string
	MACAddress     string
	Timeout        time.Duration
	// RequestsPerMinute paces historical candle requests. 0 disables pacing.
	RequestsPerMinute int
}

// LoadConfig loads Angel One configuration from ANGEL_* environment variables.
func LoadConfig() Config {
	cfg := Config{
		APIKey:         os.Getenv("ANGEL_API_KEY"),
		ClientCode:     os.Getenv("ANGEL_CLIENT_CODE"),
		Password:       os.Getenv("ANGEL_PASSWORD"),
		TOTPSecret:     os.Getenv("ANGEL_TOTP_SECRET"),
		BaseURL:        os.Getenv("ANGEL_BASE_URL"),
		ScripMasterURL: os.Getenv("ANGEL_SCRIP_MASTER_URL"),
		LocalIP:        envOr("ANGEL_CLIENT_LOCAL_IP", "127.0.0.1"),
		PublicIP:       envOr("ANGEL_CLIENT_PUBLIC_IP", "127.0.0.1"),
		MACAddress:     envOr("ANGEL_MAC_ADDRESS", "00:00:00:00:00:00"),
		Timeout:        30 * time.Second,

		RequestsPerMinute: 180,
	}
	if n, err := strconv.Atoi(os.Getenv("ANGEL_REQUESTS_PER_MINUTE")); err == nil && n >= 0 {
		cfg.RequestsPerMinute = n
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.ScripMasterURL == "" {
		cfg.ScripMasterURL = DefaultScripMasterURL
	}
	return cfg
}

// Configured reports whether credentials are present.
func (c Config) Configured() bool {
	return c.APIKey != "" && c.ClientCode != "" && c.Password != "" && c.TOTPSecret != ""
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
