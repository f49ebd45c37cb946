// Package router assembles the gin engine and its routes.
package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	authhandler "industry_backend/internal/feature/auth/transport/handler"
	candlehandler "industry_backend/internal/feature/candles/transport/handler"
	instrumenthandler "industry_backend/internal/feature/instruments/transport/handler"
	screenerhandler "industry_backend/internal/feature/screener/transport/handler"
	platformhandler "industry_backend/internal/platform/http/handler"
	jwtmw "industry_backend/internal/platform/jwt"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Health      *platformhandler.HealthHandler
	Auth        *authhandler.AuthHandler
	Aggregates  *candlehandler.AggregateHandler
	Pipeline    *candlehandler.PipelineHandler
	Instruments *instrumenthandler.InstrumentHandler
	Screener    *screenerhandler.ScreenerHandler
}

// NewRouter builds the engine. allowOrigins empty disables CORS.
func NewRouter(h Handlers, allowOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	if len(allowOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     allowOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// 認証不要
	// 導通確認用
	r.GET("/healthz", h.Health.Health)
	r.OPTIONS("/healthz", h.Health.Health)
	// ログイン（JWT 発行）
	r.POST("/login", h.Auth.Login)

	// ダッシュボード向けの読み取り
	r.GET("/aggregates", h.Aggregates.List)
	r.GET("/aggregates/filters", h.Aggregates.Filters)
	r.GET("/aggregates/chart.png", h.Aggregates.Chart)
	r.GET("/instruments", h.Instruments.List)
	r.GET("/screener", h.Screener.List)
	r.GET("/pipeline/runs", h.Pipeline.Runs)

	// 運用者専用のルート
	// jwtmw.OperatorRequired() ミドルウェアを適用
	// → リクエストヘッダーに operator ロールの JWT が必要になる
	admin := r.Group("/")
	admin.Use(jwtmw.OperatorRequired())
	{
		admin.POST("/pipeline/refresh", h.Pipeline.Refresh)
		admin.POST("/instruments/rebuild", h.Instruments.Rebuild)
		admin.POST("/screener/refresh", h.Screener.Refresh)
	}

	return r
}
