package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"industry_backend/internal/feature/candles/domain"
	"industry_backend/internal/feature/candles/domain/entity"
)

// TestFreshness は完全日の判定と取得範囲の算出を検証します。
func TestFreshness(t *testing.T) {
	t.Parallel()

	var series []entity.Bar
	series = append(series, manyCodes(day(2024, 1, 1), 4100)...)
	series = append(series, manyCodes(day(2024, 1, 2), 3990)...)
	series = append(series, manyCodes(day(2024, 1, 3), 4200)...)

	t.Run("fetch from the day after the last complete date", func(t *testing.T) {
		t.Parallel()

		plan, err := Freshness(series, 4000, day(2024, 1, 10))
		require.NoError(t, err)
		assert.False(t, plan.UpToDate)
		assert.True(t, plan.LastComplete.Equal(day(2024, 1, 3)))
		assert.True(t, plan.From.Equal(day(2024, 1, 4)))
		assert.True(t, plan.To.Equal(day(2024, 1, 10)))
	})

	t.Run("up to date when the last complete date is today", func(t *testing.T) {
		t.Parallel()

		plan, err := Freshness(series, 4000, day(2024, 1, 3))
		require.NoError(t, err)
		assert.True(t, plan.UpToDate)
	})

	t.Run("dates below the threshold are skipped", func(t *testing.T) {
		t.Parallel()

		plan, err := Freshness(series, 4150, day(2024, 1, 5))
		require.NoError(t, err)
		assert.True(t, plan.From.Equal(day(2024, 1, 4)))

		plan, err = Freshness(series[:8090], 4000, day(2024, 1, 5))
		require.NoError(t, err)
		assert.True(t, plan.From.Equal(day(2024, 1, 2)))
	})
}

// TestFreshness_IgnoresUnmappedAndDuplicates は未マッピング行と重複コードが件数に含まれないことを検証します。
func TestFreshness_IgnoresUnmappedAndDuplicates(t *testing.T) {
	t.Parallel()

	d := day(2024, 1, 3)
	series := []entity.Bar{
		mapped("A", d, 1, 1, "Banks", ""),
		mapped("A", d, 1, 1, "Banks", ""),
		unmapped("B", d, 1, 1),
	}

	_, err := Freshness(series, 2, day(2024, 1, 4))
	assert.ErrorIs(t, err, domain.ErrNoCompleteDate)

	plan, err := Freshness(series, 1, day(2024, 1, 4))
	require.NoError(t, err)
	assert.True(t, plan.From.Equal(day(2024, 1, 4)))
}

func TestFreshness_EmptySeries(t *testing.T) {
	t.Parallel()

	_, err := Freshness(nil, 1, day(2024, 1, 4))
	assert.ErrorIs(t, err, domain.ErrNoCompleteDate)
}
