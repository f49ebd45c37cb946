// Package usecase はローソク足系列の正規化・マージ・集計とパイプライン実行を実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"industry_backend/internal/feature/candles/domain"
	"industry_backend/internal/feature/candles/domain/entity"
	refentity "industry_backend/internal/feature/instruments/domain/entity"
	"industry_backend/internal/shared/istclock"
	"industry_backend/internal/shared/ratelimiter"
)

// SeriesRepository は正規化済み系列全体の永続化を抽象化します。
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type SeriesRepository interface {
	// Load は保存済み系列を返します。未保存なら空です。
	Load(ctx context.Context) ([]entity.Bar, error)
	// Save は系列全体で置き換えます。
	Save(ctx context.Context, bars []entity.Bar) error
}

// ReferenceProvider は現在の参照テーブルを返します。
type ReferenceProvider interface {
	Table(ctx context.Context) (*refentity.Table, error)
}

// BhavcopyBatch は取り込み待ちの一括ファイル群です。
type BhavcopyBatch struct {
	Files    []entity.BhavcopyFile
	Archives []string
}

// BhavcopySource は取引所の一括ファイルを供給します。
type BhavcopySource interface {
	Pending(ctx context.Context) (BhavcopyBatch, error)
	// Ack は永続化に成功したバッチを消費済みにします。
	Ack(ctx context.Context, batch BhavcopyBatch) error
}

// BrokerageClient は証券会社APIから日足を取得します。
type BrokerageClient interface {
	Historical(ctx context.Context, in refentity.Instrument, from, to time.Time) (entity.Market, []entity.RawCandle, error)
}

// RunLocker はパイプライン実行の排他を提供します。
type RunLocker interface {
	TryAcquire(ctx context.Context) (release func(context.Context), acquired bool, err error)
}

// CacheInvalidator は系列更新後に集計キャッシュを破棄します。
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// RunLog はパイプライン実行履歴を記録します。
type RunLog interface {
	Record(ctx context.Context, run entity.Run) error
	List(ctx context.Context, limit int) ([]entity.Run, error)
}

// PipelineConfig はパイプラインの外部設定です。
type PipelineConfig struct {
	Threshold     int
	RetentionDays int
	// BackfillStart はゼロ値なら未設定で、完全日が無い場合は中断します。
	BackfillStart time.Time
}

// RunContext は1回の実行で共有される状態です。
type RunContext struct {
	ID        string
	Source    entity.Source
	Now       time.Time
	Today     time.Time
	Reference *refentity.Table
	Previous  []entity.Bar
	Config    PipelineConfig
}

// PipelineUsecase は鮮度判定・取得・マージ・保存を1回の実行として行います。
type PipelineUsecase struct {
	series      SeriesRepository
	reference   ReferenceProvider
	bhavcopy    BhavcopySource
	brokerage   BrokerageClient
	lock        RunLocker
	cache       CacheInvalidator
	runs        RunLog
	rateLimiter ratelimiter.RateLimiterInterface
	clock       istclock.Clock
	cfg         PipelineConfig
}

// PipelineDeps は PipelineUsecase の依存です。nil のソースは未設定として扱います。
type PipelineDeps struct {
	Series      SeriesRepository
	Reference   ReferenceProvider
	Bhavcopy    BhavcopySource
	Brokerage   BrokerageClient
	Lock        RunLocker
	Cache       CacheInvalidator
	Runs        RunLog
	RateLimiter ratelimiter.RateLimiterInterface
	Clock       istclock.Clock
}

// NewPipelineUsecase は新しい PipelineUsecase を作成します。
func NewPipelineUsecase(d PipelineDeps, cfg PipelineConfig) *PipelineUsecase {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultFreshnessThreshold
	}
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = DefaultRetentionDays
	}
	if d.Clock == nil {
		d.Clock = istclock.System
	}
	return &PipelineUsecase{
		series:      d.Series,
		reference:   d.Reference,
		bhavcopy:    d.Bhavcopy,
		brokerage:   d.Brokerage,
		lock:        d.Lock,
		cache:       d.Cache,
		runs:        d.Runs,
		rateLimiter: d.RateLimiter,
		clock:       d.Clock,
		cfg:         cfg,
	}
}

// Refresh は指定ソースで系列を最新化します。
// 他の実行がロックを保持している場合は ErrRunInProgress を返します。
func (u *PipelineUsecase) Refresh(ctx context.Context, source entity.Source) (entity.Run, error) {
	if u.lock != nil {
		release, ok, err := u.lock.TryAcquire(ctx)
		if err != nil {
			return entity.Run{}, fmt.Errorf("acquire run lock: %w", err)
		}
		if !ok {
			return entity.Run{}, domain.ErrRunInProgress
		}
		defer release(context.WithoutCancel(ctx))
	}

	now := u.clock()
	run := entity.Run{ID: uuid.NewString(), Source: source, StartedAt: now}
	rc := &RunContext{ID: run.ID, Source: source, Now: now, Today: istclock.DateOf(now), Config: u.cfg}

	err := u.refresh(ctx, rc, &run)
	run.FinishedAt = u.clock()
	if err != nil {
		run.Status = entity.RunFailed
		run.Error = err.Error()
		slog.Error("pipeline run failed", "run_id", run.ID, "source", source, "error", err)
	} else {
		slog.Info("pipeline run finished", "run_id", run.ID, "source", source, "status", run.Status,
			"incoming", run.Incoming, "rows", run.Rows)
	}
	if u.runs != nil {
		if rerr := u.runs.Record(context.WithoutCancel(ctx), run); rerr != nil {
			slog.Warn("failed to record pipeline run", "run_id", run.ID, "error", rerr)
		}
	}
	return run, err
}

func (u *PipelineUsecase) refresh(ctx context.Context, rc *RunContext, run *entity.Run) error {
	table, err := u.reference.Table(ctx)
	if err != nil {
		return fmt.Errorf("load reference table: %w", err)
	}
	rc.Reference = table

	prev, err := u.series.Load(ctx)
	if err != nil {
		return fmt.Errorf("load series: %w", err)
	}
	rc.Previous = prev

	status := entity.RunFetched
	plan, err := Freshness(prev, rc.Config.Threshold, rc.Today)
	switch {
	case errors.Is(err, domain.ErrNoCompleteDate):
		if rc.Config.BackfillStart.IsZero() {
			return err
		}
		plan = FetchPlan{From: istclock.DateOf(rc.Config.BackfillStart), To: rc.Today}
		status = entity.RunBackfill
		slog.Info("no complete date in series, backfilling", "run_id", rc.ID, "from", istclock.Format(plan.From))
	case err != nil:
		return err
	}
	run.From, run.To = plan.From, plan.To

	if plan.UpToDate {
		run.Status = entity.RunUpToDate
		run.Rows = len(prev)
		return nil
	}

	var incoming []entity.Bar
	var ack func(context.Context) error
	switch rc.Source {
	case entity.SourceBhavcopy:
		incoming, ack, err = u.fetchBhavcopy(ctx, rc)
	case entity.SourceBrokerage:
		incoming, err = u.fetchBrokerage(ctx, rc, plan)
	default:
		err = fmt.Errorf("unknown source %q", rc.Source)
	}
	if err != nil {
		return err
	}
	run.Incoming = len(incoming)

	merged := Merge(prev, incoming, rc.Config.RetentionDays, rc.Reference)
	if err := u.series.Save(ctx, merged); err != nil {
		return fmt.Errorf("save series: %w", err)
	}
	run.Rows = len(merged)
	run.Status = status

	if ack != nil {
		if err := ack(ctx); err != nil {
			slog.Warn("failed to acknowledge consumed source files", "run_id", rc.ID, "error", err)
		}
	}
	if u.cache != nil {
		if err := u.cache.Invalidate(ctx); err != nil {
			slog.Warn("failed to invalidate aggregate cache", "run_id", rc.ID, "error", err)
		}
	}
	return nil
}

func (u *PipelineUsecase) fetchBhavcopy(ctx context.Context, rc *RunContext) ([]entity.Bar, func(context.Context) error, error) {
	if u.bhavcopy == nil {
		return nil, nil, &domain.FetchError{Source: string(entity.SourceBhavcopy), Err: errors.New("source not configured")}
	}
	batch, err := u.bhavcopy.Pending(ctx)
	if err != nil {
		return nil, nil, &domain.FetchError{Source: string(entity.SourceBhavcopy), Err: err}
	}

	var incoming []entity.Bar
	for _, f := range batch.Files {
		res, err := NormalizeBhavcopy(f, rc.Reference)
		if err != nil {
			slog.Warn("bulk file skipped", "run_id", rc.ID, "file", f.Name, "error", err)
			continue
		}
		for _, s := range res.Skipped {
			slog.Debug("bulk row skipped", "run_id", rc.ID, "file", f.Name, "error", s)
		}
		if len(res.Skipped) > 0 {
			slog.Warn("bulk rows skipped", "run_id", rc.ID, "file", f.Name, "skipped", len(res.Skipped))
		}
		incoming = append(incoming, res.Bars...)
	}
	ack := func(ctx context.Context) error { return u.bhavcopy.Ack(ctx, batch) }
	return incoming, ack, nil
}

func (u *PipelineUsecase) fetchBrokerage(ctx context.Context, rc *RunContext, plan FetchPlan) ([]entity.Bar, error) {
	if u.brokerage == nil {
		return nil, &domain.FetchError{Source: string(entity.SourceBrokerage), Err: errors.New("source not configured")}
	}

	instruments := rc.Reference.Instruments()
	var incoming []entity.Bar
	var lastErr error
	failed := 0
	for _, in := range instruments {
		if u.rateLimiter != nil {
			if err := u.rateLimiter.WaitIfNeeded(ctx); err != nil {
				return nil, err
			}
		}
		market, raw, err := u.brokerage.Historical(ctx, in, plan.From, plan.To)
		if err != nil {
			// 1銘柄の失敗では処理を止めずにログに出力し、次の銘柄へ
			slog.Warn("historical fetch failed", "run_id", rc.ID, "code", in.Code, "error", err)
			failed++
			lastErr = err
			continue
		}
		res := NormalizeBrokerage(in.Code, market, raw, rc.Reference)
		if len(res.Skipped) > 0 {
			slog.Warn("historical rows skipped", "run_id", rc.ID, "code", in.Code, "skipped", len(res.Skipped))
		}
		incoming = append(incoming, res.Bars...)
	}
	if len(instruments) > 0 && failed == len(instruments) {
		return nil, &domain.FetchError{Source: string(entity.SourceBrokerage), Err: lastErr}
	}
	return incoming, nil
}

// Runs は直近の実行履歴を返します。
func (u *PipelineUsecase) Runs(ctx context.Context, limit int) ([]entity.Run, error) {
	if u.runs == nil {
		return []entity.Run{}, nil
	}
	return u.runs.List(ctx, limit)
}
