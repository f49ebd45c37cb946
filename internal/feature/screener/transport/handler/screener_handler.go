// Package handler はscreenerフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"industry_backend/internal/api"
	"industry_backend/internal/feature/screener/domain"
	"industry_backend/internal/feature/screener/domain/entity"
	"industry_backend/internal/feature/screener/transport/http/dto"
	"industry_backend/internal/feature/screener/usecase"
	"industry_backend/internal/shared/istclock"
)

// SnapshotUsecase はスクリーナーのユースケースです。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type SnapshotUsecase interface {
	Refresh(ctx context.Context) (entity.Snapshot, error)
	List(ctx context.Context, date time.Time, f entity.Filter) (entity.Snapshot, error)
}

// ScreenerHandler はスクリーナー関連のHTTPリクエストを処理します。
type ScreenerHandler struct {
	uc SnapshotUsecase
}

// NewScreenerHandler は新しい ScreenerHandler を作成します。
func NewScreenerHandler(uc SnapshotUsecase) *ScreenerHandler {
	return &ScreenerHandler{uc: uc}
}

// List は指定日のスナップショットを返します。
//
// GET /screener?industry=All&sub_industry=All&label=rocket_based&date=05032024
func (h *ScreenerHandler) List(c *gin.Context) {
	var date time.Time
	if s := c.Query("date"); s != "" {
		d, err := istclock.ParseSnapshot(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: domain.ErrInvalidDate.Error() + ": " + s})
			return
		}
		date = d
	}
	f := entity.Filter{
		Industry:    c.Query("industry"),
		SubIndustry: c.Query("sub_industry"),
		Label:       c.Query("label"),
	}

	snap, err := h.uc.List(c.Request.Context(), date, f)
	if err != nil {
		c.JSON(statusFor(err), api.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, toSnapshotDTO(snap))
}

// Refresh は全スクリーナーを取得して今日のスナップショットを保存します。
func (h *ScreenerHandler) Refresh(c *gin.Context) {
	snap, err := h.uc.Refresh(c.Request.Context())
	if err != nil {
		c.JSON(statusFor(err), api.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, toSnapshotDTO(snap))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSnapshotNotFound):
		return http.StatusNotFound
	case usecase.IsFetchError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func toSnapshotDTO(s entity.Snapshot) dto.Snapshot {
	out := dto.Snapshot{Date: istclock.FormatSnapshot(s.Date), Hits: make([]dto.Hit, 0, len(s.Hits))}
	for _, h := range s.Hits {
		out.Hits = append(out.Hits, dto.Hit{
			Label:       string(h.Label),
			Symbol:      h.Symbol,
			StockName:   h.StockName,
			Price:       h.Price,
			Volume:      h.Volume,
			ChangePct:   h.ChangePct,
			Industry:    h.Industry,
			Sector:      h.Sector,
			SubIndustry: h.SubIndustry,
			Category:    h.Category,
		})
	}
	return out
}
