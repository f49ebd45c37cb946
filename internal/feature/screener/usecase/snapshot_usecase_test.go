package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	refentity "industry_backend/internal/feature/instruments/domain/entity"
	"industry_backend/internal/feature/screener/domain"
	"industry_backend/internal/feature/screener/domain/entity"
	"industry_backend/internal/shared/istclock"
)

// mockScreenerSource はScreenerSourceインターフェースのモック実装です。
type mockScreenerSource struct {
	FetchTSVFunc func(ctx context.Context, label entity.Label) ([]byte, error)
	calls        int
}

func (m *mockScreenerSource) FetchTSV(ctx context.Context, label entity.Label) ([]byte, error) {
	m.calls++
	return m.FetchTSVFunc(ctx, label)
}

// mockSnapshotRepository はSnapshotRepositoryインターフェースのモック実装です。
type mockSnapshotRepository struct {
	saved     []entity.Snapshot
	LoadFunc  func(ctx context.Context, date time.Time) (entity.Snapshot, error)
	loadDates []time.Time
}

func (m *mockSnapshotRepository) Save(ctx context.Context, s entity.Snapshot) error {
	m.saved = append(m.saved, s)
	return nil
}

func (m *mockSnapshotRepository) Load(ctx context.Context, date time.Time) (entity.Snapshot, error) {
	m.loadDates = append(m.loadDates, date)
	return m.LoadFunc(ctx, date)
}

type mockReference struct {
	table *refentity.Table
	err   error
}

func (m *mockReference) Table(ctx context.Context) (*refentity.Table, error) { return m.table, m.err }

func fixedClock() time.Time {
	return time.Date(2024, 3, 5, 10, 0, 0, 0, istclock.IST)
}

func TestSnapshotUsecase_Refresh(t *testing.T) {
	t.Parallel()

	t.Run("partial failure keeps the other labels", func(t *testing.T) {
		t.Parallel()
		src := &mockScreenerSource{FetchTSVFunc: func(ctx context.Context, label entity.Label) ([]byte, error) {
			if label == entity.LabelStockExploderVCP {
				return nil, errors.New("timeout")
			}
			return []byte(clipboard), nil
		}}
		repo := &mockSnapshotRepository{}
		uc := NewSnapshotUsecase(src, repo, &mockReference{table: testTable()}, fixedClock)

		snap, err := uc.Refresh(context.Background())
		require.NoError(t, err)
		assert.Equal(t, len(entity.Labels), src.calls)
		assert.Equal(t, istclock.Date(2024, 3, 5), snap.Date)
		// 3ラベル x 2件（TCS, NEWCO）
		assert.Len(t, snap.Hits, 6)
		require.Len(t, repo.saved, 1)
	})

	t.Run("all labels failing is a fetch error", func(t *testing.T) {
		t.Parallel()
		src := &mockScreenerSource{FetchTSVFunc: func(ctx context.Context, label entity.Label) ([]byte, error) {
			return nil, errors.New("down")
		}}
		repo := &mockSnapshotRepository{}
		uc := NewSnapshotUsecase(src, repo, &mockReference{table: testTable()}, fixedClock)

		_, err := uc.Refresh(context.Background())
		assert.True(t, IsFetchError(err))
		assert.Empty(t, repo.saved)
	})

	t.Run("reference failure", func(t *testing.T) {
		t.Parallel()
		src := &mockScreenerSource{}
		uc := NewSnapshotUsecase(src, &mockSnapshotRepository{}, &mockReference{err: errors.New("db down")}, fixedClock)

		_, err := uc.Refresh(context.Background())
		assert.Error(t, err)
		assert.Equal(t, 0, src.calls)
	})
}

func TestSnapshotUsecase_List(t *testing.T) {
	t.Parallel()

	stored := entity.Snapshot{Date: istclock.Date(2024, 3, 5), Hits: []entity.Hit{
		{Label: entity.LabelRocketBased, Symbol: "TCS", Industry: null.StringFrom("IT - Software"), SubIndustry: null.StringFrom("IT Services")},
		{Label: entity.LabelMinerviniVCP, Symbol: "INFY", Industry: null.StringFrom("IT - Software")},
		{Label: entity.LabelMinerviniVCP, Symbol: "NEWCO"},
	}}

	tests := []struct {
		name   string
		filter entity.Filter
		want   []string
	}{
		{name: "all", filter: entity.Filter{Industry: "All", SubIndustry: "All", Label: "All"}, want: []string{"TCS", "INFY", "NEWCO"}},
		{name: "industry", filter: entity.Filter{Industry: "IT - Software"}, want: []string{"TCS", "INFY"}},
		{name: "sub industry", filter: entity.Filter{SubIndustry: "IT Services"}, want: []string{"TCS"}},
		{name: "label", filter: entity.Filter{Label: string(entity.LabelMinerviniVCP)}, want: []string{"INFY", "NEWCO"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			repo := &mockSnapshotRepository{LoadFunc: func(ctx context.Context, date time.Time) (entity.Snapshot, error) {
				return stored, nil
			}}
			uc := NewSnapshotUsecase(nil, repo, nil, fixedClock)

			snap, err := uc.List(context.Background(), time.Time{}, tt.filter)
			require.NoError(t, err)
			got := make([]string, 0, len(snap.Hits))
			for _, h := range snap.Hits {
				got = append(got, h.Symbol)
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, []time.Time{istclock.Date(2024, 3, 5)}, repo.loadDates)
		})
	}

	t.Run("missing snapshot", func(t *testing.T) {
		t.Parallel()
		repo := &mockSnapshotRepository{LoadFunc: func(ctx context.Context, date time.Time) (entity.Snapshot, error) {
			return entity.Snapshot{}, domain.ErrSnapshotNotFound
		}}
		uc := NewSnapshotUsecase(nil, repo, nil, fixedClock)

		_, err := uc.List(context.Background(), istclock.Date(2024, 1, 1), entity.Filter{})
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})
}
