// Package handler はinstrumentsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"industry_backend/internal/api"
	"industry_backend/internal/feature/instruments/domain/entity"
	"industry_backend/internal/feature/instruments/transport/http/dto"
)

// ReferenceUsecase は参照テーブルのユースケースです。
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type ReferenceUsecase interface {
	ListInstruments(ctx context.Context) ([]entity.Instrument, error)
	Rebuild(ctx context.Context) (int, error)
}

// InstrumentHandler は参照テーブルに関するHTTPリクエストを処理します。
type InstrumentHandler struct {
	uc ReferenceUsecase
}

// NewInstrumentHandler は新しい InstrumentHandler を作成します。
func NewInstrumentHandler(uc ReferenceUsecase) *InstrumentHandler {
	return &InstrumentHandler{uc: uc}
}

// List は参照テーブルの全銘柄を返します。
// ?industry= を指定するとその業種に絞り込みます。
func (h *InstrumentHandler) List(c *gin.Context) {
	instruments, err := h.uc.ListInstruments(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: err.Error()})
		return
	}
	industry := c.Query("industry")

	out := make([]dto.InstrumentItem, 0, len(instruments))
	for _, in := range instruments {
		if industry != "" && in.Industry.String != industry {
			continue
		}
		out = append(out, dto.InstrumentItem{
			Code:        in.Code,
			Name:        in.Name,
			Industry:    in.Industry,
			Sector:      in.Sector,
			SubIndustry: in.SubIndustry,
			MarketCap:   in.MarketCap,
			Category:    string(in.Category),
		})
	}
	c.JSON(http.StatusOK, out)
}

// Rebuild は参照ファイルからテーブルを再構築します（運用者専用）。
func (h *InstrumentHandler) Rebuild(c *gin.Context) {
	n, err := h.uc.Rebuild(c.Request.Context())
	if err != nil {
		slog.Error("reference rebuild failed", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.RebuildResponse{Instruments: n})
}
