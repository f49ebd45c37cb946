package adapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"industry_backend/internal/platform/blob"
)

func newReferenceFolder(t *testing.T, files map[string]string) blob.Folder {
	t.Helper()
	ctx := context.Background()
	store, err := blob.NewFileStore(t.TempDir())
	require.NoError(t, err)
	folder, err := blob.GetOrCreateFolder(ctx, store, "reference")
	require.NoError(t, err)
	for name, body := range files {
		require.NoError(t, folder.Write(ctx, name, []byte(body)))
	}
	return folder
}

// TestReferenceBlob_LoadStocks は数値表記のBSEコード・カンマ付き時価総額・欠損値の扱いを検証します。
func TestReferenceBlob_LoadStocks(t *testing.T) {
	t.Parallel()

	folder := newReferenceFolder(t, map[string]string{
		DefaultStocksFile: "Name,BSE Code,NSE Code,Industry,Current Price,Market Capitalization\n" +
			"Tata Consultancy,532540.0,TCS,IT - Software,4000,\"1,400,000\"\n" +
			"Small Co,500001,,BhaPra,10,\n" +
			"Nothing,,,,1,5\n",
	})
	src := NewReferenceSource(folder, DefaultReferenceFiles())

	rows, err := src.LoadStocks(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "TCS", rows[0].NSECode)
	assert.Equal(t, "532540", rows[0].BSECode)
	assert.Equal(t, "IT - Software", rows[0].Industry.String)
	assert.InDelta(t, 1400000, rows[0].MarketCap.Float64, 1e-9)

	assert.Equal(t, "500001", rows[1].BSECode)
	assert.False(t, rows[1].Industry.Valid)
	assert.False(t, rows[1].MarketCap.Valid)

	assert.Equal(t, "", rows[2].BSECode)
}

func TestReferenceBlob_LoadMaps(t *testing.T) {
	t.Parallel()

	folder := newReferenceFolder(t, map[string]string{
		DefaultSectorMapFile:   "Industry,Mapped Sector\nIT - Software,Information Technology\nBanks,\n",
		DefaultSubIndustryFile: "NSE_BSE_code,Sub Industry\nTCS,IT Services\n500001.0,Textiles\n",
	})
	src := NewReferenceSource(folder, DefaultReferenceFiles())

	sectors, err := src.LoadSectorMap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"IT - Software": "Information Technology"}, sectors)

	subs, err := src.LoadSubIndustryMap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"TCS": "IT Services", "500001": "Textiles"}, subs)
}

// TestReferenceBlob_Errors はファイル欠損・必須列欠損がエラーになることを検証します。
func TestReferenceBlob_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		files   map[string]string
		wantErr error
	}{
		{name: "missing file", files: map[string]string{}, wantErr: blob.ErrNotFound},
		{name: "missing column", files: map[string]string{DefaultStocksFile: "Name,NSE Code\nA,B\n"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := NewReferenceSource(newReferenceFolder(t, tt.files), DefaultReferenceFiles())
			_, err := src.LoadStocks(context.Background())
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
