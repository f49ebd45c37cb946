// Package db opens the SQL database behind the instruments table, the
// operators table and the pipeline run log.
package db

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	gmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	authadapters "industry_backend/internal/feature/auth/adapters"
	candleadapters "industry_backend/internal/feature/candles/adapters"
	instrumentadapters "industry_backend/internal/feature/instruments/adapters"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	retryInterval  = 3 * time.Second
	connectTimeout = 60 * time.Second
)

// Config holds the connection settings.
type Config struct {
	Driver       string
	User         string
	Password     string
	Name         string
	Host         string
	Port         string
	InstanceName string
	Migrate      bool
}

// Opener opens a gorm connection for a DSN.
type Opener func(dsn string) (*gorm.DB, error)

// LoadConfigFromEnv reads DB_DRIVER, DB_* and INSTANCE_CONNECTION_NAME.
// DB_DRIVER defaults to mysql.
func LoadConfigFromEnv() Config {
	driver := os.Getenv("DB_DRIVER")
	if driver == "" {
		driver = DriverMySQL
	}
	return Config{
		Driver:       driver,
		User:         os.Getenv("DB_USER"),
		Password:     os.Getenv("DB_PASSWORD"),
		Name:         os.Getenv("DB_NAME"),
		Host:         os.Getenv("DB_HOST"),
		Port:         os.Getenv("DB_PORT"),
		InstanceName: os.Getenv("INSTANCE_CONNECTION_NAME"),
		Migrate:      os.Getenv("RUN_MIGRATIONS") == "true",
	}
}

// BuildDSN renders the DSN for cfg.Driver. A Cloud SQL instance name takes
// precedence over host and port. For sqlite, Name is the database file.
func BuildDSN(cfg Config) string {
	switch cfg.Driver {
	case DriverPostgres:
		if cfg.InstanceName != "" {
			return fmt.Sprintf("host=/cloudsql/%s user=%s password=%s dbname=%s sslmode=disable TimeZone=Asia/Kolkata",
				cfg.InstanceName, cfg.User, cfg.Password, cfg.Name)
		}
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=Asia/Kolkata",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)
	case DriverSQLite:
		return cfg.Name
	default:
		if cfg.InstanceName != "" {
			return fmt.Sprintf("%s:%s@unix(/cloudsql/%s)/%s?charset=utf8mb4&parseTime=true&loc=Local",
				cfg.User, cfg.Password, cfg.InstanceName, cfg.Name)
		}
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=Local",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name)
	}
}

// OpenerFor returns the gorm opener for a driver name.
func OpenerFor(driver string) (Opener, error) {
	var dial func(string) gorm.Dialector
	switch driver {
	case "", DriverMySQL:
		dial = gmysql.Open
	case DriverPostgres:
		dial = postgres.Open
	case DriverSQLite:
		dial = sqlite.Open
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
	return func(dsn string) (*gorm.DB, error) {
		return gorm.Open(dial(dsn), &gorm.Config{TranslateError: true})
	}, nil
}

// ConnectWithRetry calls opener every few seconds until it succeeds or
// timeout elapses.
func ConnectWithRetry(dsn string, timeout time.Duration, opener Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := opener(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().Add(retryInterval).After(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		slog.Warn("DB connect failed, retrying", "error", err, "retry_in", retryInterval)
		time.Sleep(retryInterval)
	}
}

// Migrate creates or updates the tables owned by the features.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&instrumentadapters.InstrumentModel{},
		&candleadapters.RunModel{},
		&authadapters.OperatorModel{},
	)
}

// Open connects with retry and runs migrations when cfg.Migrate is set.
func Open(cfg Config) (*gorm.DB, error) {
	opener, err := OpenerFor(cfg.Driver)
	if err != nil {
		return nil, err
	}
	db, err := ConnectWithRetry(BuildDSN(cfg), connectTimeout, opener)
	if err != nil {
		return nil, err
	}
	if cfg.Migrate || cfg.Driver == DriverSQLite {
		if err := Migrate(db); err != nil {
			return nil, fmt.Errorf("failed to migrate: %w", err)
		}
	}
	slog.Info("database connected", "driver", cfg.Driver, "name", cfg.Name)
	return db, nil
}
