package blob

import (
	"os"
	"strconv"
)

const (
	BackendFile = "file"
	BackendS3   = "s3"
)

// Config selects and configures the blob backend.
type Config struct {
	Backend  string
	BasePath string
	S3       S3Config
}

// S3Config configures the S3 backend.
type S3Config struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PathStyle       bool
}

// LoadConfig loads blob configuration from environment variables.
func LoadConfig() Config {
	backend := os.Getenv("BLOB_BACKEND")
	if backend == "" {
		backend = BackendFile
	}
	base := os.Getenv("BLOB_BASE_PATH")
	if base == "" {
		base = "data"
	}
	pathStyle, _ := strconv.ParseBool(os.Getenv("S3_PATH_STYLE"))
	return Config{
		Backend:  backend,
		BasePath: base,
		S3: S3Config{
			Bucket:          os.Getenv("S3_BUCKET"),
			Prefix:          os.Getenv("S3_PREFIX"),
			Region:          os.Getenv("S3_REGION"),
			Endpoint:        os.Getenv("S3_ENDPOINT"),
			AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
			PathStyle:       pathStyle,
		},
	}
}
