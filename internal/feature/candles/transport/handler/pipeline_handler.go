package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"industry_backend/internal/api"
	"industry_backend/internal/feature/candles/domain/entity"
	"industry_backend/internal/feature/candles/transport/http/dto"
	"industry_backend/internal/shared/istclock"
)

// PipelineUsecase はパイプライン実行のユースケースです。
type PipelineUsecase interface {
	Refresh(ctx context.Context, source entity.Source) (entity.Run, error)
	Runs(ctx context.Context, limit int) ([]entity.Run, error)
}

// PipelineHandler はパイプライン実行と履歴のHTTPリクエストを処理します。
type PipelineHandler struct {
	uc PipelineUsecase
}

// NewPipelineHandler は新しい PipelineHandler を作成します。
func NewPipelineHandler(uc PipelineUsecase) *PipelineHandler {
	return &PipelineHandler{uc: uc}
}

// Refresh は指定ソースで系列を更新します（運用者専用）。
//
// POST /pipeline/refresh?source=bhavcopy|brokerage
func (h *PipelineHandler) Refresh(c *gin.Context) {
	source, ok := entity.ParseSource(c.DefaultQuery("source", string(entity.SourceBhavcopy)))
	if !ok {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "source must be bhavcopy or brokerage"})
		return
	}
	run, err := h.uc.Refresh(c.Request.Context(), source)
	if err != nil {
		slog.Warn("pipeline refresh request failed", "source", source, "error", err, "remote_addr", c.ClientIP())
		c.JSON(statusFor(err), api.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, toRunDTO(run))
}

// Runs は直近の実行履歴を返します。
func (h *PipelineHandler) Runs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	runs, err := h.uc.Runs(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: err.Error()})
		return
	}
	out := make([]dto.Run, 0, len(runs))
	for _, r := range runs {
		out = append(out, toRunDTO(r))
	}
	c.JSON(http.StatusOK, out)
}

func toRunDTO(r entity.Run) dto.Run {
	out := dto.Run{
		ID:         r.ID,
		Source:     string(r.Source),
		Status:     string(r.Status),
		Incoming:   r.Incoming,
		Rows:       r.Rows,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Error:      r.Error,
	}
	if !r.From.IsZero() {
		out.From = istclock.Format(r.From)
	}
	if !r.To.IsZero() {
		out.To = istclock.Format(r.To)
	}
	return out
}
