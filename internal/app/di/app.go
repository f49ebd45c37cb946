package di

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	authadapters "industry_backend/internal/feature/auth/adapters"
	authusecase "industry_backend/internal/feature/auth/usecase"
	candleadapters "industry_backend/internal/feature/candles/adapters"
	candleusecase "industry_backend/internal/feature/candles/usecase"
	instrumentadapters "industry_backend/internal/feature/instruments/adapters"
	instrumentusecase "industry_backend/internal/feature/instruments/usecase"
	screeneradapters "industry_backend/internal/feature/screener/adapters"
	screenerusecase "industry_backend/internal/feature/screener/usecase"
	"industry_backend/internal/platform/blob"
	"industry_backend/internal/platform/cache"
	"industry_backend/internal/platform/chart"
	jwtmw "industry_backend/internal/platform/jwt"
	"industry_backend/internal/platform/lock"
)

// Infra holds the opened connections. Redis may be nil.
type Infra struct {
	DB    *gorm.DB
	Redis *redis.Client
	Store blob.Store
}

// OperatorService registers and authenticates operators.
type OperatorService interface {
	Signup(ctx context.Context, email, password string) error
	Login(ctx context.Context, email, password string) (string, error)
}

// App is the wired set of usecases shared by the server and the CLI.
type App struct {
	Settings  Settings
	Reference *instrumentusecase.ReferenceUsecase
	Pipeline  *candleusecase.PipelineUsecase
	Query     *candleusecase.QueryUsecase
	Screener  *screenerusecase.SnapshotUsecase
	Operators OperatorService

	// SeriesFolder is where the canonical series file lives.
	SeriesFolder blob.Folder
	Series       candleusecase.SeriesRepository
}

// NewApp wires repositories, external sources and usecases.
func NewApp(ctx context.Context, infra Infra, s Settings, jwtCfg jwtmw.Config) (*App, error) {
	var openErr error
	open := func(name string) blob.Folder {
		f, err := blob.GetOrCreateFolder(ctx, infra.Store, name)
		if err != nil && openErr == nil {
			openErr = fmt.Errorf("open folder %s: %w", name, err)
		}
		return f
	}
	seriesFolder := open(s.SeriesFolder)
	referenceFolder := open(s.ReferenceFolder)
	bhavcopyFolder := open(s.BhavcopyFolder)
	screenerFolder := open(s.ScreenerFolder)
	if openErr != nil {
		return nil, openErr
	}

	// instruments
	strategy, err := instrumentusecase.NewCategoryStrategy(s.CategoryStrategy)
	if err != nil {
		return nil, err
	}
	referenceUC := instrumentusecase.NewReferenceUsecase(
		instrumentadapters.NewInstrumentRepository(infra.DB),
		instrumentadapters.NewReferenceSource(referenceFolder, instrumentadapters.DefaultReferenceFiles()),
		strategy,
	)

	// candles
	codec, err := candleadapters.NewSeriesCodec(s.SeriesFormat)
	if err != nil {
		return nil, err
	}
	seriesRepo := candleadapters.NewSeriesRepository(seriesFolder, s.SeriesFile, codec)

	ttl := s.CacheTTL
	if ttl == 0 {
		ttl = cache.TimeUntilNext8AM(time.Now())
	}
	cachedAggregates := cache.NewCachingAggregateRepository(infra.Redis, ttl, candleusecase.NewSeriesAggregator(seriesRepo), "aggregates")

	brokerage, limiter := NewBrokerage()
	pipelineUC := candleusecase.NewPipelineUsecase(candleusecase.PipelineDeps{
		Series:      seriesRepo,
		Reference:   referenceUC,
		Bhavcopy:    candleadapters.NewBhavcopySource(bhavcopyFolder),
		Brokerage:   brokerage,
		Lock:        lock.NewRunLock(infra.Redis, lock.DefaultKey, lock.DefaultTTL),
		Cache:       cachedAggregates,
		Runs:        candleadapters.NewRunLog(infra.DB),
		RateLimiter: limiter,
	}, s.Pipeline)
	queryUC := candleusecase.NewQueryUsecase(cachedAggregates, seriesRepo, chart.NewRenderer())

	// screener
	screenerUC := screenerusecase.NewSnapshotUsecase(
		NewScreenerSource(),
		screeneradapters.NewSnapshotRepository(screenerFolder),
		referenceUC,
		nil,
	)

	// auth
	authUC := authusecase.NewAuthUsecase(
		authadapters.NewOperatorRepository(infra.DB),
		jwtmw.NewGenerator(jwtCfg.Secret, jwtCfg.Expiration),
	)

	return &App{
		Settings:     s,
		Reference:    referenceUC,
		Pipeline:     pipelineUC,
		Query:        queryUC,
		Screener:     screenerUC,
		Operators:    authUC,
		SeriesFolder: seriesFolder,
		Series:       seriesRepo,
	}, nil
}
