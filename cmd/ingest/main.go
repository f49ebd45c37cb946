// Command ingest runs the pipeline, reference and screener jobs from the shell or a scheduler.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"industry_backend/internal/app/di"
	"industry_backend/internal/platform/blob"
	infradb "industry_backend/internal/platform/db"
	jwtmw "industry_backend/internal/platform/jwt"
	"industry_backend/internal/platform/logging"
	infraredis "industry_backend/internal/platform/redis"
)

var (
	app      *di.App
	cleanups []func()
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "ingest",
	Short:         "Industry OHLCV pipeline jobs",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil {
			log.Println("[INFO] .env not found; using process environment")
		}
		_, closer := logging.New(logging.LoadConfig())
		cleanups = append(cleanups, func() { _ = closer.Close() })
		return setup(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(referenceCmd)
	rootCmd.AddCommand(screenerCmd)
	rootCmd.AddCommand(operatorCmd)
	rootCmd.AddCommand(exportCmd)
}

// setup opens the connections and wires the usecases.
func setup(ctx context.Context) error {
	db, err := infradb.Open(infradb.LoadConfigFromEnv())
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		cleanups = append(cleanups, func() { _ = sqlDB.Close() })
	}

	rdb, err := infraredis.NewRedisClient(ctx, infraredis.LoadConfig())
	if err != nil {
		slog.Warn("redis unavailable, running with an in-process lock", "error", err)
		rdb = nil
	}
	if rdb != nil {
		cleanups = append(cleanups, func() { _ = rdb.Close() })
	}

	store, err := di.NewBlobStore(ctx, blob.LoadConfig())
	if err != nil {
		return err
	}
	settings, err := di.LoadSettings()
	if err != nil {
		return err
	}

	// ログインはサーバーのみなので、CLIでは秘密鍵が無くても続行します。
	jwtCfg, err := jwtmw.LoadConfig()
	if err != nil {
		slog.Debug("jwt config not loaded", "error", err)
	}

	app, err = di.NewApp(ctx, di.Infra{DB: db, Redis: rdb, Store: store}, settings, jwtCfg)
	return err
}
