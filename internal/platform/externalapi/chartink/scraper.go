package chartink

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"industry_backend/internal/feature/screener/domain/entity"
	"industry_backend/internal/feature/screener/usecase"
	"industry_backend/internal/shared/ratelimiter"
)

// Scraper loads a screener page and renders its result table in the layout
// of the site's "Copy" button: a title line, a header line, then one
// tab-separated line per row.
type Scraper struct {
	cfg     Config
	client  *http.Client
	limiter ratelimiter.RateLimiterInterface
}

var _ usecase.ScreenerSource = (*Scraper)(nil)

// NewScraper creates a Scraper.
func NewScraper(cfg Config, client *http.Client) *Scraper {
	return &Scraper{
		cfg:     cfg,
		client:  client,
		limiter: ratelimiter.NewRateLimiter(cfg.RequestsPerMinute, time.Minute),
	}
}

// FetchTSV returns the result table of the screener behind label.
func (s *Scraper) FetchTSV(ctx context.Context, label entity.Label) ([]byte, error) {
	slug, ok := label.Slug()
	if !ok {
		return nil, fmt.Errorf("unknown screener label %q", label)
	}
	if err := s.limiter.WaitIfNeeded(ctx); err != nil {
		return nil, err
	}

	u := strings.TrimRight(s.cfg.BaseURL, "/") + "/screener/" + slug
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	res, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("chartink http %d for %s", res.StatusCode, slug)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("parse chartink page %s: %w", slug, err)
	}
	return tableTSV(doc, slug)
}

// tableTSV renders the first table that has a "Symbol" header.
func tableTSV(doc *goquery.Document, slug string) ([]byte, error) {
	var (
		b     strings.Builder
		found bool
	)
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		var headers []string
		table.Find("thead th").Each(func(_ int, th *goquery.Selection) {
			headers = append(headers, cellText(th))
		})
		if !contains(headers, "Symbol") {
			return true
		}
		found = true

		title := cellText(doc.Find("title").First())
		if title == "" {
			title = slug
		}
		b.WriteString(title + "\n")
		b.WriteString(strings.Join(headers, "\t") + "\n")
		table.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
			var cells []string
			tr.Find("td").Each(func(_ int, td *goquery.Selection) {
				cells = append(cells, cellText(td))
			})
			if len(cells) > 0 {
				b.WriteString(strings.Join(cells, "\t") + "\n")
			}
		})
		return false
	})
	if !found {
		return nil, fmt.Errorf("no result table on chartink page %s", slug)
	}
	return []byte(b.String()), nil
}

func cellText(s *goquery.Selection) string {
	t := strings.Join(strings.Fields(s.Text()), " ")
	return strings.ReplaceAll(t, "\t", " ")
}

func contains(xs []string, want string) bool {
	for _, x := range xs {
		if x == want {
			return true
		}
	}
	return false
}
