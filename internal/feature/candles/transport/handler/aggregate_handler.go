package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"industry_backend/internal/api"
	"industry_backend/internal/feature/candles/domain"
	"industry_backend/internal/feature/candles/domain/entity"
	"industry_backend/internal/feature/candles/transport/http/dto"
	"industry_backend/internal/feature/candles/usecase"
	"industry_backend/internal/shared/istclock"
)

// QueryUsecase は集計系の読み取りユースケースです。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type QueryUsecase interface {
	Aggregates(ctx context.Context, q entity.AggregateQuery) ([]entity.GroupSeries, error)
	Options(ctx context.Context, q entity.AggregateQuery) (usecase.Options, error)
	Chart(ctx context.Context, q entity.AggregateQuery) ([]byte, error)
}

// AggregateHandler は業種別集計のHTTPリクエストを処理します。
type AggregateHandler struct {
	uc      QueryUsecase
	padDays int
}

// NewAggregateHandler は新しい AggregateHandler を作成します。
// padDays は pad_days 未指定時の補完日数です。
func NewAggregateHandler(uc QueryUsecase, padDays int) *AggregateHandler {
	return &AggregateHandler{uc: uc, padDays: padDays}
}

// parseQuery はクエリ文字列を AggregateQuery に変換します。
//
// GET /aggregates?group_by=industry&method=weighted_avg&market=NSE&sector=All
//
//	&industry=All&sub_industry=All&category=Large-cap&from=2024-01-01&to=2024-06-30&pad_days=5
func (h *AggregateHandler) parseQuery(c *gin.Context) (q entity.AggregateQuery, err error) {
	q = entity.AggregateQuery{
		GroupBy:     entity.GroupBy(c.DefaultQuery("group_by", string(entity.GroupByIndustry))),
		Method:      entity.Method(c.DefaultQuery("method", string(entity.MethodWeightedAvg))),
		Market:      c.Query("market"),
		Sector:      c.Query("sector"),
		Industry:    c.Query("industry"),
		SubIndustry: c.Query("sub_industry"),
		Category:    c.Query("category"),
		PadDays:     h.padDays,
	}
	if s := c.Query("pad_days"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 || n > entity.MaxPadDays {
			return q, fmt.Errorf("%w: pad_days %q", domain.ErrInvalidQuery, s)
		}
		q.PadDays = n
	}
	if q.From, err = optionalDate(c, "from"); err != nil {
		return q, err
	}
	if q.To, err = optionalDate(c, "to"); err != nil {
		return q, err
	}
	return q, nil
}

func optionalDate(c *gin.Context, name string) (time.Time, error) {
	s := c.Query(name)
	if s == "" {
		return time.Time{}, nil
	}
	d, err := istclock.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s %q", domain.ErrInvalidQuery, name, s)
	}
	return d, nil
}

// List は集計系列をJSONで返します。
func (h *AggregateHandler) List(c *gin.Context) {
	q, err := h.parseQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	groups, err := h.uc.Aggregates(c.Request.Context(), q)
	if err != nil {
		c.JSON(statusFor(err), api.ErrorResponse{Error: err.Error()})
		return
	}

	out := make([]dto.GroupSeries, 0, len(groups))
	for _, g := range groups {
		bars := make([]dto.AggregatedBar, 0, len(g.Bars))
		for _, b := range g.Bars {
			bars = append(bars, dto.AggregatedBar{
				Date:    istclock.Format(b.Date),
				Open:    b.Open,
				High:    b.High,
				Low:     b.Low,
				Close:   b.Close,
				Volume:  b.Volume,
				Padding: b.Padding,
			})
		}
		out = append(out, dto.GroupSeries{
			Industry:    g.Key.Industry,
			SubIndustry: g.Key.SubIndustry,
			Sector:      g.Sector,
			Category:    g.Category,
			Bars:        bars,
		})
	}
	c.JSON(http.StatusOK, out)
}

// Filters はカスケードフィルタの候補値を返します。
func (h *AggregateHandler) Filters(c *gin.Context) {
	q, err := h.parseQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	opts, err := h.uc.Options(c.Request.Context(), q)
	if err != nil {
		c.JSON(statusFor(err), api.ErrorResponse{Error: err.Error()})
		return
	}
	out := dto.FilterOptions{
		Markets:       opts.Markets,
		Sectors:       opts.Sectors,
		Industries:    opts.Industries,
		SubIndustries: opts.SubIndustries,
		Categories:    opts.Categories,
	}
	if !opts.MinDate.IsZero() {
		out.MinDate = istclock.Format(opts.MinDate)
		out.MaxDate = istclock.Format(opts.MaxDate)
	}
	c.JSON(http.StatusOK, out)
}

// Chart はクエリに一致するグループのPNGチャートを返します。
func (h *AggregateHandler) Chart(c *gin.Context) {
	q, err := h.parseQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	png, err := h.uc.Chart(c.Request.Context(), q)
	if err != nil {
		c.JSON(statusFor(err), api.ErrorResponse{Error: err.Error()})
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}
