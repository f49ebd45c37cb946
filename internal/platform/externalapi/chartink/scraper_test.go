package chartink

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"industry_backend/internal/feature/screener/domain/entity"
	"industry_backend/internal/feature/screener/usecase"
)

const page = `<html><head><title>Rocket Based Scan</title></head><body>
<table><thead><tr><th>Index</th><th>Value</th></tr></thead><tbody><tr><td>Nifty</td><td>22000</td></tr></tbody></table>
<table class="results">
<thead><tr><th>Sr.</th><th>Stock Name</th><th>Symbol</th><th>Links</th><th>% Chg</th><th>Price</th><th>Volume</th></tr></thead>
<tbody>
<tr><td>1</td><td>Tata  Consultancy</td><td>TCS</td><td><a>P&amp;F</a></td><td>1.25%</td><td>4,012.5</td><td>1,20,000</td></tr>
<tr><td>2</td><td>New Co</td><td>NEWCO</td><td>P&amp;F</td><td>-3%</td><td>10</td><td>5</td></tr>
</tbody></table></body></html>`

func newTestScraper(t *testing.T, handler http.HandlerFunc) *Scraper {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewScraper(Config{BaseURL: srv.URL, RequestsPerMinute: 0}, srv.Client())
}

// TestScraper_FetchTSV はコピー形式のTSVがスクリーナー正規化でそのまま読めることを検証します。
func TestScraper_FetchTSV(t *testing.T) {
	t.Parallel()

	var path string
	s := newTestScraper(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = w.Write([]byte(page))
	})

	tsv, err := s.FetchTSV(context.Background(), entity.LabelStockExploderVCP)
	require.NoError(t, err)
	assert.Equal(t, "/screener/stockexploder-vcp-2", path)
	assert.Equal(t, "Rocket Based Scan\n"+
		"Sr.\tStock Name\tSymbol\tLinks\t% Chg\tPrice\tVolume\n"+
		"1\tTata Consultancy\tTCS\tP&F\t1.25%\t4,012.5\t1,20,000\n"+
		"2\tNew Co\tNEWCO\tP&F\t-3%\t10\t5\n", string(tsv))

	res, err := usecase.NormalizeScreener(entity.LabelStockExploderVCP, tsv, nil)
	require.NoError(t, err)
	require.Len(t, res.Hits, 2)
	assert.Equal(t, int64(120000), res.Hits[0].Volume)
}

func TestScraper_FetchTSV_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		label entity.Label
		body  string
		code  int
	}{
		{name: "unknown label", label: entity.Label("nope"), code: http.StatusOK},
		{name: "http error", label: entity.LabelRocketBased, code: http.StatusServiceUnavailable},
		{name: "no result table", label: entity.LabelRocketBased, body: "<html><body><p>loading</p></body></html>", code: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := newTestScraper(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := s.FetchTSV(context.Background(), tt.label)
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("CHARTINK_BASE_URL", "")
	t.Setenv("CHARTINK_REQUESTS_PER_MINUTE", "5")

	cfg := LoadConfig()
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, 5, cfg.RequestsPerMinute)
}
