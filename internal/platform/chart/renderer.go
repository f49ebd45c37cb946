// Package chart renders aggregated group series as PNG images.
package chart

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"industry_backend/internal/feature/candles/domain"
	"industry_backend/internal/feature/candles/domain/entity"
	"industry_backend/internal/shared/istclock"
)

const (
	// DefaultZoomDays is the visible window ending at the last bar.
	DefaultZoomDays = 60
	// DefaultRightPadDays is the blank space after the last bar.
	DefaultRightPadDays = 10
)

// Renderer draws the close line of a group with its volume on a secondary axis.
type Renderer struct {
	Width, Height int
	ZoomDays      int
	RightPadDays  int
}

// NewRenderer returns a Renderer with the dashboard defaults.
func NewRenderer() *Renderer {
	return &Renderer{Width: 1000, Height: 450, ZoomDays: DefaultZoomDays, RightPadDays: DefaultRightPadDays}
}

// Render draws gs. Padding rows and dates without a close are skipped.
// Fewer than two drawable points is reported as domain.ErrNoData.
func (r *Renderer) Render(gs entity.GroupSeries) ([]byte, error) {
	var (
		xs     []time.Time
		closes []float64
		vols   []float64
	)
	for _, b := range gs.Bars {
		if b.Padding || !b.Close.Valid {
			continue
		}
		xs = append(xs, b.Date)
		closes = append(closes, b.Close.Float64)
		vols = append(vols, float64(b.Volume))
	}
	if len(xs) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 data points, got %d", domain.ErrNoData, len(xs))
	}

	// zoom to the trailing window, keeping at least two points
	last := xs[len(xs)-1]
	from := istclock.AddDays(last, -r.ZoomDays)
	i := 0
	for i < len(xs)-2 && xs[i].Before(from) {
		i++
	}
	xs, closes, vols = xs[i:], closes[i:], vols[i:]
	from = xs[0]
	to := istclock.AddDays(last, r.RightPadDays)

	closeSeries := chart.TimeSeries{
		Name: "Close",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"),
			StrokeWidth: 2,
		},
		XValues: xs,
		YValues: closes,
	}
	volumeSeries := chart.TimeSeries{
		Name:  "Volume",
		YAxis: chart.YAxisSecondary,
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("9ca3af"),
			FillColor:   drawing.ColorFromHex("9ca3af").WithAlpha(64),
			StrokeWidth: 1,
		},
		XValues: xs,
		YValues: vols,
	}

	graph := chart.Chart{
		Title:  title(gs),
		Width:  r.Width,
		Height: r.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			Range: &chart.ContinuousRange{Min: chart.TimeToFloat64(from), Max: chart.TimeToFloat64(to)},
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).In(istclock.IST).Format("02 Jan")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.1f", f)
				}
				return ""
			},
		},
		YAxisSecondary: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0fk", f/1000)
				}
				return ""
			},
		},
		Series: []chart.Series{volumeSeries, closeSeries},
	}
	graph.Elements = []chart.Renderable{chart.LegendLeft(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}

func title(gs entity.GroupSeries) string {
	t := gs.Key.Industry
	if gs.Key.SubIndustry != "" {
		t += " / " + gs.Key.SubIndustry
	}
	if gs.Category != "" && gs.Category != entity.All {
		t += " (" + gs.Category + ")"
	}
	return t
}
