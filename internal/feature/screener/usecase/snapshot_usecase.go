package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	candledomain "industry_backend/internal/feature/candles/domain"
	refentity "industry_backend/internal/feature/instruments/domain/entity"
	"industry_backend/internal/feature/screener/domain/entity"
	"industry_backend/internal/shared/istclock"
)

// ScreenerSource returns the copied result table of one screener.
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type ScreenerSource interface {
	FetchTSV(ctx context.Context, label entity.Label) ([]byte, error)
}

// SnapshotRepository は日付単位でスナップショットを保存・取得します。
type SnapshotRepository interface {
	Save(ctx context.Context, s entity.Snapshot) error
	// Load は存在しない場合 domain.ErrSnapshotNotFound を返します。
	Load(ctx context.Context, date time.Time) (entity.Snapshot, error)
}

// ReferenceProvider は現在の参照テーブルを返します。
type ReferenceProvider interface {
	Table(ctx context.Context) (*refentity.Table, error)
}

// SnapshotUsecase はスクリーナーの取得と一覧を提供します。
type SnapshotUsecase struct {
	source    ScreenerSource
	snapshots SnapshotRepository
	reference ReferenceProvider
	clock     istclock.Clock
}

// NewSnapshotUsecase は新しい SnapshotUsecase を作成します。clock が nil ならシステム時計を使います。
func NewSnapshotUsecase(source ScreenerSource, snapshots SnapshotRepository, reference ReferenceProvider, clock istclock.Clock) *SnapshotUsecase {
	if clock == nil {
		clock = istclock.System
	}
	return &SnapshotUsecase{source: source, snapshots: snapshots, reference: reference, clock: clock}
}

// Refresh は全スクリーナーを取得し、今日の日付でスナップショットを保存します。
// 個別のスクリーナー失敗はログに出して続行し、全て失敗した場合のみ FetchError を返します。
func (u *SnapshotUsecase) Refresh(ctx context.Context) (entity.Snapshot, error) {
	table, err := u.reference.Table(ctx)
	if err != nil {
		return entity.Snapshot{}, fmt.Errorf("load reference table: %w", err)
	}

	snap := entity.Snapshot{Date: istclock.Today(u.clock), Hits: []entity.Hit{}}
	var lastErr error
	failed := 0
	for _, label := range entity.Labels {
		tsv, err := u.source.FetchTSV(ctx, label)
		if err == nil {
			var res NormalizeResult
			res, err = NormalizeScreener(label, tsv, table)
			if err == nil {
				if len(res.Skipped) > 0 {
					slog.Warn("screener rows skipped", "label", label, "skipped", len(res.Skipped), "first", res.Skipped[0])
				}
				snap.Hits = append(snap.Hits, res.Hits...)
				slog.Info("screener fetched", "label", label, "hits", len(res.Hits))
				continue
			}
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return entity.Snapshot{}, ctxErr
		}
		slog.Warn("screener fetch failed", "label", label, "error", err)
		failed++
		lastErr = err
	}
	if failed == len(entity.Labels) {
		return entity.Snapshot{}, &candledomain.FetchError{Source: "screener", Err: lastErr}
	}

	if err := u.snapshots.Save(ctx, snap); err != nil {
		return entity.Snapshot{}, fmt.Errorf("save snapshot: %w", err)
	}
	return snap, nil
}

// List は指定日（ゼロ値なら今日）のスナップショットをフィルタして返します。
func (u *SnapshotUsecase) List(ctx context.Context, date time.Time, f entity.Filter) (entity.Snapshot, error) {
	if date.IsZero() {
		date = istclock.Today(u.clock)
	}
	snap, err := u.snapshots.Load(ctx, date)
	if err != nil {
		return entity.Snapshot{}, err
	}
	out := entity.Snapshot{Date: snap.Date, Hits: make([]entity.Hit, 0, len(snap.Hits))}
	for _, h := range snap.Hits {
		if f.Matches(h) {
			out.Hits = append(out.Hits, h)
		}
	}
	return out, nil
}

// IsFetchError reports whether err came from the upstream screener.
func IsFetchError(err error) bool {
	var fe *candledomain.FetchError
	return errors.As(err, &fe)
}
