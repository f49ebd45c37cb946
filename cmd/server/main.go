package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"industry_backend/internal/app/di"
	"industry_backend/internal/app/router"
	authhandler "industry_backend/internal/feature/auth/transport/handler"
	candlehandler "industry_backend/internal/feature/candles/transport/handler"
	instrumenthandler "industry_backend/internal/feature/instruments/transport/handler"
	screenerhandler "industry_backend/internal/feature/screener/transport/handler"
	"industry_backend/internal/platform/blob"
	infradb "industry_backend/internal/platform/db"
	platformhandler "industry_backend/internal/platform/http/handler"
	jwtmw "industry_backend/internal/platform/jwt"
	"industry_backend/internal/platform/logging"
	infraredis "industry_backend/internal/platform/redis"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] .env not found; using process environment")
	}

	_, logCloser := logging.New(logging.LoadConfig())
	defer func() { _ = logCloser.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// JWT_SECRETチェック
	jwtCfg, err := jwtmw.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	// db
	db, err := infradb.Open(infradb.LoadConfigFromEnv())
	if err != nil {
		log.Fatal(err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = sqlDB.Close() }()

	// Redis
	rdb, err := infraredis.NewRedisClient(ctx, infraredis.LoadConfig())
	if err != nil {
		slog.Warn("redis unavailable, running without cache", "error", err)
		rdb = nil
	}
	if rdb != nil {
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("failed to close redis client", "error", err)
			}
		}()
	}

	// blob
	store, err := di.NewBlobStore(ctx, blob.LoadConfig())
	if err != nil {
		log.Fatal(err)
	}

	settings, err := di.LoadSettings()
	if err != nil {
		log.Fatal(err)
	}
	app, err := di.NewApp(ctx, di.Infra{DB: db, Redis: rdb, Store: store}, settings, jwtCfg)
	if err != nil {
		log.Fatal(err)
	}

	checks := map[string]platformhandler.Pinger{"db": platformhandler.PingFunc(sqlDB.PingContext)}
	if rdb != nil {
		checks["redis"] = platformhandler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}

	r := router.NewRouter(router.Handlers{
		Health:      platformhandler.NewHealthHandler(checks),
		Auth:        authhandler.NewAuthHandler(app.Operators),
		Aggregates:  candlehandler.NewAggregateHandler(app.Query, settings.PadDays),
		Pipeline:    candlehandler.NewPipelineHandler(app.Pipeline),
		Instruments: instrumenthandler.NewInstrumentHandler(app.Reference),
		Screener:    screenerhandler.NewScreenerHandler(app.Screener),
	}, splitOrigins(os.Getenv("CORS_ALLOW_ORIGINS")))

	addr := ":" + envOr("PORT", "8080")
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
