package usecase

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"industry_backend/internal/feature/candles/domain"
	"industry_backend/internal/feature/candles/domain/entity"
)

// TestNormalizeBrokerage はタイムスタンプの日付部分の採用・参照結合・不正行のスキップを検証します。
func TestNormalizeBrokerage(t *testing.T) {
	t.Parallel()

	raw := []entity.RawCandle{
		{Timestamp: "2024-01-03T00:00:00+05:30", Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 100},
		{Timestamp: "not-a-date", Open: 1, High: 1, Low: 1, Close: 1, Volume: 1},
		{Timestamp: "2024-01-04T00:00:00+05:30", Open: 2, High: 3, Low: 1, Close: 2.5, Volume: 200},
	}

	res := NormalizeBrokerage("TCS", entity.MarketNSE, raw, testTable())

	require.Len(t, res.Bars, 2)
	require.Len(t, res.Skipped, 1)
	var pe *domain.ParseError
	assert.True(t, errors.As(res.Skipped[0], &pe))
	assert.Equal(t, 2, pe.Row)

	b := res.Bars[0]
	assert.True(t, b.Date.Equal(day(2024, 1, 3)))
	assert.Equal(t, "Tata Consultancy", b.Name)
	assert.Equal(t, "IT - Software", b.Industry.String)
	assert.Equal(t, "IT Services", b.SubIndustry.String)
	assert.Equal(t, "Large-cap", b.Category)
	assert.True(t, b.Mapped())
}

func TestNormalizeBrokerage_UnknownCodeIsUnmapped(t *testing.T) {
	t.Parallel()

	res := NormalizeBrokerage("ZZZ", entity.MarketNSE, []entity.RawCandle{{Timestamp: "2024-01-03", Volume: 1}}, testTable())

	require.Len(t, res.Bars, 1)
	assert.Empty(t, res.Skipped)
	assert.False(t, res.Bars[0].Mapped())
	assert.False(t, res.Bars[0].Sector.Valid)
	assert.Equal(t, "", res.Bars[0].Category)
}

// TestNormalizeBhavcopy はNSE/BSEの列名変換・ファイル名からの日付・エラー種別をテーブル駆動で検証します。
func TestNormalizeBhavcopy(t *testing.T) {
	t.Parallel()

	nse := "SYMBOL,SERIES,OPEN,HIGH,LOW,CLOSE,TOTTRDQTY\n" +
		"TCS,EQ,\"3,500.5\",3600,3400,3550,1000\n" +
		"BAD,EQ,abc,1,1,1,1\n" +
		"NEWCO,EQ,10,11,9,10.5,5\n"
	bse := "SC_CODE,SC_NAME,OPEN,HIGH,LOW,CLOSE,NO_OF_SHRS\n500325,RELIANCE,2500,2550,2480,2520,300.0\n"

	tests := []struct {
		name        string
		file        entity.BhavcopyFile
		wantBars    int
		wantSkipped int
		wantMarket  entity.Market
		check       func(t *testing.T, res NormalizeResult)
		wantErr     func(error) bool
	}{
		{
			name:        "nse member",
			file:        entity.BhavcopyFile{Name: "20240103NSE.csv", Data: []byte(nse)},
			wantBars:    2,
			wantSkipped: 1,
			wantMarket:  entity.MarketNSE,
			check: func(t *testing.T, res NormalizeResult) {
				assert.Equal(t, "TCS", res.Bars[0].Code)
				assert.InDelta(t, 3500.5, res.Bars[0].Open, 1e-9)
				assert.EqualValues(t, 1000, res.Bars[0].Volume)
				assert.True(t, res.Bars[0].Date.Equal(day(2024, 1, 3)))
				assert.True(t, res.Bars[0].Mapped())
				// 参照に無い銘柄も保持される
				assert.Equal(t, "NEWCO", res.Bars[1].Code)
				assert.False(t, res.Bars[1].Mapped())
			},
		},
		{
			name:       "bse member in a sub directory",
			file:       entity.BhavcopyFile{Name: "2024-01-03/20240103BSE.csv", Data: []byte(bse)},
			wantBars:   1,
			wantMarket: entity.MarketBSE,
			check: func(t *testing.T, res NormalizeResult) {
				assert.Equal(t, "500325", res.Bars[0].Code)
				assert.Equal(t, "Reliance", res.Bars[0].Name)
				assert.EqualValues(t, 300, res.Bars[0].Volume)
			},
		},
		{
			name: "other member is ignored",
			file: entity.BhavcopyFile{Name: "20240103FO.csv", Data: []byte("x\n")},
		},
		{
			name: "malformed file name",
			file: entity.BhavcopyFile{Name: "2024XX03NSE.csv", Data: []byte(nse)},
			wantErr: func(err error) bool {
				var me *domain.MalformedFilenameError
				return errors.As(err, &me) && me.Name == "2024XX03NSE.csv"
			},
		},
		{
			name: "missing column",
			file: entity.BhavcopyFile{Name: "20240103NSE.csv", Data: []byte("SYMBOL,OPEN\nTCS,1\n")},
			wantErr: func(err error) bool {
				var pe *domain.ParseError
				return errors.As(err, &pe)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res, err := NormalizeBhavcopy(tt.file, testTable())
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, tt.wantErr(err), "unexpected error: %v", err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, res.Bars, tt.wantBars)
			assert.Len(t, res.Skipped, tt.wantSkipped)
			for _, b := range res.Bars {
				assert.Equal(t, tt.wantMarket, b.Market)
			}
			if tt.check != nil {
				tt.check(t, res)
			}
		})
	}
}
