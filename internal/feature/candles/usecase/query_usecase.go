package usecase

import (
	"context"
	"fmt"

	"industry_backend/internal/feature/candles/domain"
	"industry_backend/internal/feature/candles/domain/entity"
)

// AggregateRepository は集計済み系列を返します。キャッシュのデコレート対象です。
type AggregateRepository interface {
	Aggregate(ctx context.Context, q entity.AggregateQuery) ([]entity.GroupSeries, error)
}

// SeriesReader は保存済み系列を読み出します。
type SeriesReader interface {
	Load(ctx context.Context) ([]entity.Bar, error)
}

// ChartRenderer はグループ系列をPNGに描画します。
type ChartRenderer interface {
	Render(gs entity.GroupSeries) ([]byte, error)
}

// seriesAggregator は保存済み系列をその場で集計する AggregateRepository です。
type seriesAggregator struct {
	series SeriesReader
}

var _ AggregateRepository = (*seriesAggregator)(nil)

// NewSeriesAggregator は系列リポジトリ上の AggregateRepository を作成します。
func NewSeriesAggregator(series SeriesReader) *seriesAggregator {
	return &seriesAggregator{series: series}
}

func (a *seriesAggregator) Aggregate(ctx context.Context, q entity.AggregateQuery) ([]entity.GroupSeries, error) {
	bars, err := a.series.Load(ctx)
	if err != nil {
		return nil, err
	}
	return Aggregate(bars, q), nil
}

// QueryUsecase はダッシュボード向けの読み取り操作を提供します。
type QueryUsecase struct {
	aggregates AggregateRepository
	series     SeriesReader
	chart      ChartRenderer
}

// NewQueryUsecase は新しい QueryUsecase を作成します。
func NewQueryUsecase(aggregates AggregateRepository, series SeriesReader, chart ChartRenderer) *QueryUsecase {
	return &QueryUsecase{aggregates: aggregates, series: series, chart: chart}
}

// Aggregates は検証済みクエリの集計結果を返します。
func (u *QueryUsecase) Aggregates(ctx context.Context, q entity.AggregateQuery) ([]entity.GroupSeries, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidQuery, err)
	}
	return u.aggregates.Aggregate(ctx, q)
}

// Options はクエリの上位フィルタに応じた候補値を返します。
func (u *QueryUsecase) Options(ctx context.Context, q entity.AggregateQuery) (Options, error) {
	bars, err := u.series.Load(ctx)
	if err != nil {
		return Options{}, err
	}
	return FilterOptions(bars, q), nil
}

// Chart はクエリに一致する最初のグループをPNGで返します。
func (u *QueryUsecase) Chart(ctx context.Context, q entity.AggregateQuery) ([]byte, error) {
	groups, err := u.Aggregates(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, domain.ErrNoData
	}
	return u.chart.Render(groups[0])
}
