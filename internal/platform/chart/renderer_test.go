package chart

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"industry_backend/internal/feature/candles/domain"
	"industry_backend/internal/feature/candles/domain/entity"
	"industry_backend/internal/shared/istclock"
)

func series(n int) entity.GroupSeries {
	gs := entity.GroupSeries{Key: entity.GroupKey{Industry: "Banks"}, Category: entity.All}
	start := istclock.Date(2024, 1, 1)
	gs.Bars = append(gs.Bars, entity.AggregatedBar{Date: istclock.AddDays(start, -1), Padding: true})
	for i := 0; i < n; i++ {
		c := 100 + float64(i)
		gs.Bars = append(gs.Bars, entity.AggregatedBar{
			Date: istclock.AddDays(start, i), Open: null.FloatFrom(c), High: null.FloatFrom(c + 1),
			Low: null.FloatFrom(c - 1), Close: null.FloatFrom(c), Volume: int64(1000 * (i + 1)),
		})
	}
	return gs
}

// TestRenderer_Render は描画結果が指定サイズのPNGであることを検証します。
func TestRenderer_Render(t *testing.T) {
	t.Parallel()

	r := NewRenderer()
	out, err := r.Render(series(90))
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, r.Width, img.Bounds().Dx())
	assert.Equal(t, r.Height, img.Bounds().Dy())
}

func TestRenderer_TooFewPoints(t *testing.T) {
	t.Parallel()

	gs := series(1)
	gs.Bars = append(gs.Bars, entity.AggregatedBar{Date: istclock.Date(2024, 1, 2)}) // missing close
	_, err := NewRenderer().Render(gs)
	assert.ErrorIs(t, err, domain.ErrNoData)
}

func TestTitle(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Banks", title(entity.GroupSeries{Key: entity.GroupKey{Industry: "Banks"}, Category: entity.All}))
	assert.Equal(t, "Banks / Private Banks (Large-cap)", title(entity.GroupSeries{
		Key: entity.GroupKey{Industry: "Banks", SubIndustry: "Private Banks"}, Category: "Large-cap",
	}))
}

func TestRenderer_ZoomKeepsTwoPoints(t *testing.T) {
	t.Parallel()

	gs := entity.GroupSeries{Key: entity.GroupKey{Industry: "Banks"}, Bars: []entity.AggregatedBar{
		{Date: istclock.Date(2023, 1, 2), Close: null.FloatFrom(10), Volume: 5},
		{Date: istclock.Date(2024, 1, 2), Close: null.FloatFrom(11), Volume: 6},
	}}
	out, err := NewRenderer().Render(gs)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
