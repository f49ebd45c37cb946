package adapters

import (
	"context"
	"testing"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"industry_backend/internal/feature/screener/domain"
	"industry_backend/internal/feature/screener/domain/entity"
	"industry_backend/internal/platform/blob"
	"industry_backend/internal/shared/istclock"
)

func newSnapshotFolder(t *testing.T) blob.Folder {
	t.Helper()
	store, err := blob.NewFileStore(t.TempDir())
	require.NoError(t, err)
	folder, err := blob.GetOrCreateFolder(context.Background(), store, DefaultFolder)
	require.NoError(t, err)
	return folder
}

// TestSnapshotBlob_SaveLoad は DDMMYYYY.csv への保存と、欠損分類の往復を検証します。
func TestSnapshotBlob_SaveLoad(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	folder := newSnapshotFolder(t)
	repo := NewSnapshotRepository(folder)
	date := istclock.Date(2024, 3, 5)

	in := entity.Snapshot{Date: date, Hits: []entity.Hit{
		{Label: entity.LabelRocketBased, Symbol: "TCS", StockName: "Tata Consultancy", Price: 4012.5, Volume: 120000, ChangePct: 1.25,
			Industry: null.StringFrom("IT - Software"), Sector: null.StringFrom("Information Technology"), Category: "Large-cap"},
		{Label: entity.LabelMinerviniVCP, Symbol: "NEWCO", Price: 10, Volume: 5, ChangePct: -3},
	}}
	require.NoError(t, repo.Save(ctx, in))

	raw, err := folder.Read(ctx, "05032024.csv")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "UNMAPPED")

	got, err := repo.Load(ctx, date)
	require.NoError(t, err)
	require.Len(t, got.Hits, 2)
	assert.Equal(t, in.Hits[0], got.Hits[0])
	assert.False(t, got.Hits[1].Industry.Valid)
	assert.Equal(t, "", got.Hits[1].Category)
	assert.Equal(t, int64(5), got.Hits[1].Volume)
}

func TestSnapshotBlob_LoadMissing(t *testing.T) {
	t.Parallel()
	repo := NewSnapshotRepository(newSnapshotFolder(t))

	_, err := repo.Load(context.Background(), istclock.Date(2024, 1, 1))
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
}
