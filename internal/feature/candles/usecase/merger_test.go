package usecase

import (
	"testing"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"industry_backend/internal/feature/candles/domain/entity"
)

// TestMerge_IncomingWins は同一(Code, Date)で後の行が残ることを検証します。
func TestMerge_IncomingWins(t *testing.T) {
	t.Parallel()

	prev := []entity.Bar{
		mapped("A", day(2024, 1, 1), 10, 100, "Banks", ""),
		mapped("A", day(2024, 1, 2), 11, 100, "Banks", ""),
	}
	incoming := []entity.Bar{
		mapped("A", day(2024, 1, 2), 99, 500, "Banks", ""),
		mapped("A", day(2024, 1, 3), 12, 100, "Banks", ""),
		mapped("A", day(2024, 1, 3), 13, 100, "Banks", ""),
	}

	got := Merge(prev, incoming, 180, nil)

	require.Len(t, got, 3)
	assert.InDelta(t, 99, got[1].Close, 1e-9)
	assert.EqualValues(t, 500, got[1].Volume)
	assert.InDelta(t, 13, got[2].Close, 1e-9)
}

// TestMerge_Idempotent は同じ入力を二度マージしても結果が変わらないことを検証します。
func TestMerge_Idempotent(t *testing.T) {
	t.Parallel()

	prev := []entity.Bar{
		mapped("B", day(2024, 1, 1), 10, 100, "Banks", ""),
		mapped("A", day(2024, 1, 1), 10, 100, "Banks", ""),
	}
	incoming := []entity.Bar{
		mapped("A", day(2024, 1, 2), 12, 100, "Banks", ""),
		unmapped("Z", day(2024, 1, 2), 1, 1),
	}

	once := Merge(prev, incoming, 180, testTable())
	twice := Merge(once, incoming, 180, testTable())

	assert.Equal(t, once, twice)
	// (Date, Code) 順
	assert.Equal(t, "A", once[0].Code)
	assert.Equal(t, "B", once[1].Code)
}

// TestMerge_Retention は保持期間の境界（ちょうどN日前は残る）を検証します。
func TestMerge_Retention(t *testing.T) {
	t.Parallel()

	prev := []entity.Bar{
		mapped("A", day(2024, 1, 1), 1, 1, "Banks", ""),
		mapped("A", day(2024, 1, 2), 1, 1, "Banks", ""),
		mapped("A", day(2024, 1, 11), 1, 1, "Banks", ""),
	}
	incoming := []entity.Bar{
		mapped("A", day(2024, 3, 1), 1, 1, "Banks", ""),
	}

	got := Merge(prev, incoming, 9, nil)

	require.Len(t, got, 3)
	assert.True(t, got[0].Date.Equal(day(2024, 1, 2)))
	for _, b := range got[:2] {
		assert.False(t, b.Date.Before(day(2024, 1, 2)))
	}
}

func TestMerge_EmptyInputs(t *testing.T) {
	t.Parallel()

	t.Run("empty incoming returns trimmed previous", func(t *testing.T) {
		t.Parallel()

		prev := []entity.Bar{
			mapped("A", day(2024, 1, 1), 1, 1, "Banks", ""),
			mapped("A", day(2024, 6, 30), 1, 1, "Banks", ""),
		}
		got := Merge(prev, nil, 180, nil)
		require.Len(t, got, 1)
		assert.True(t, got[0].Date.Equal(day(2024, 6, 30)))
	})

	t.Run("both empty", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, Merge(nil, nil, 180, nil))
	})
}

// TestMerge_JoinsSubIndustry は参照テーブルから業種小分類が付与され、参照に無いコードは未分類に戻ることを検証します。
func TestMerge_JoinsSubIndustry(t *testing.T) {
	t.Parallel()

	prev := []entity.Bar{
		{Code: "TCS", Market: entity.MarketNSE, Date: day(2024, 1, 1), Industry: null.StringFrom("IT - Software")},
		{Code: "500325", Market: entity.MarketBSE, Date: day(2024, 1, 1)},
		{Code: "NOPE", Market: entity.MarketNSE, Date: day(2024, 1, 1), Industry: null.StringFrom("Banks"), SubIndustry: null.StringFrom("Stale")},
	}

	got := Merge(prev, nil, 180, testTable())

	require.Len(t, got, 3)
	byCode := map[string]entity.Bar{}
	for _, b := range got {
		byCode[b.Code] = b
	}
	assert.Equal(t, "IT Services", byCode["TCS"].SubIndustry.String)
	assert.Equal(t, "Information Technology", byCode["TCS"].Sector.String)
	assert.Equal(t, "Refineries", byCode["500325"].Industry.String)
	assert.False(t, byCode["500325"].SubIndustry.Valid)
	assert.False(t, byCode["NOPE"].SubIndustry.Valid)
	assert.Equal(t, "Banks", byCode["NOPE"].Industry.String)
}
