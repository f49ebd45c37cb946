// Package adapters はスクリーナースナップショットの永続化を提供します。
package adapters

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/guregu/null/v6"

	"industry_backend/internal/feature/screener/domain"
	"industry_backend/internal/feature/screener/domain/entity"
	"industry_backend/internal/feature/screener/usecase"
	"industry_backend/internal/platform/blob"
	"industry_backend/internal/shared/istclock"
)

// DefaultFolder はスナップショットを置く既定のフォルダ名です。
const DefaultFolder = "vcp_folder"

// 欠損した分類の保存表記
const unmapped = "UNMAPPED"

var snapshotHeader = []string{
	"Label", "Symbol", "Stock Name", "Price", "Volume", "% Chg",
	"Industry", "Mapped Sector", "Sub Industry", "Category",
}

// snapshotBlob は日付ごとのCSVでスナップショットを保存します。
type snapshotBlob struct {
	folder blob.Folder
}

var _ usecase.SnapshotRepository = (*snapshotBlob)(nil)

// NewSnapshotRepository は folder 配下に DDMMYYYY.csv を読み書きするリポジトリを生成します。
func NewSnapshotRepository(folder blob.Folder) *snapshotBlob {
	return &snapshotBlob{folder: folder}
}

func fileName(date time.Time) string {
	return istclock.FormatSnapshot(date) + ".csv"
}

// Save は同じ日付のファイルを丸ごと置き換えます。
func (r *snapshotBlob) Save(ctx context.Context, s entity.Snapshot) error {
	records := make([][]string, 0, len(s.Hits)+1)
	records = append(records, snapshotHeader)
	for _, h := range s.Hits {
		records = append(records, []string{
			string(h.Label),
			h.Symbol,
			h.StockName,
			strconv.FormatFloat(h.Price, 'f', -1, 64),
			strconv.FormatInt(h.Volume, 10),
			strconv.FormatFloat(h.ChangePct, 'f', -1, 64),
			orUnmapped(h.Industry),
			orUnmapped(h.Sector),
			orUnmapped(h.SubIndustry),
			orUnmappedString(h.Category),
		})
	}
	if err := blob.WriteCSV(ctx, r.folder, fileName(s.Date), records); err != nil {
		return fmt.Errorf("write snapshot %s: %w", r.folder.Key(fileName(s.Date)), err)
	}
	return nil
}

// Load はファイルが無ければ domain.ErrSnapshotNotFound を返します。
func (r *snapshotBlob) Load(ctx context.Context, date time.Time) (entity.Snapshot, error) {
	name := fileName(date)
	records, err := blob.ReadCSV(ctx, r.folder, name)
	if errors.Is(err, blob.ErrNotFound) {
		return entity.Snapshot{}, fmt.Errorf("%w: %s", domain.ErrSnapshotNotFound, istclock.FormatSnapshot(date))
	}
	if err != nil {
		return entity.Snapshot{}, fmt.Errorf("read snapshot %s: %w", r.folder.Key(name), err)
	}

	snap := entity.Snapshot{Date: istclock.DateOf(date), Hits: []entity.Hit{}}
	if len(records) == 0 {
		return snap, nil
	}
	idx := blob.NewHeaderIndex(records[0])
	if !idx.Has("Label", "Symbol") {
		return entity.Snapshot{}, fmt.Errorf("read snapshot %s: missing Label or Symbol column", r.folder.Key(name))
	}
	for _, rec := range records[1:] {
		h := entity.Hit{
			Label:       entity.Label(idx.Value(rec, "Label")),
			Symbol:      idx.Value(rec, "Symbol"),
			StockName:   idx.Value(rec, "Stock Name"),
			Industry:    fromDisk(idx.Value(rec, "Industry")),
			Sector:      fromDisk(idx.Value(rec, "Mapped Sector")),
			SubIndustry: fromDisk(idx.Value(rec, "Sub Industry")),
		}
		if c := fromDisk(idx.Value(rec, "Category")); c.Valid {
			h.Category = c.String
		}
		h.Price, _ = strconv.ParseFloat(idx.Value(rec, "Price"), 64)
		h.ChangePct, _ = strconv.ParseFloat(idx.Value(rec, "% Chg"), 64)
		if v, err := strconv.ParseFloat(idx.Value(rec, "Volume"), 64); err == nil {
			h.Volume = int64(v)
		}
		snap.Hits = append(snap.Hits, h)
	}
	return snap, nil
}

func orUnmapped(s null.String) string {
	if !s.Valid {
		return unmapped
	}
	return s.String
}

func orUnmappedString(s string) string {
	if s == "" {
		return unmapped
	}
	return s
}

func fromDisk(s string) null.String {
	s = strings.TrimSpace(s)
	switch s {
	case "", unmapped, "BhaPra", "BharPra", "nan":
		return null.String{}
	}
	return null.StringFrom(s)
}
