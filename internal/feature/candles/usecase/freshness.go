package usecase

import (
	"sort"
	"time"

	"industry_backend/internal/feature/candles/domain"
	"industry_backend/internal/feature/candles/domain/entity"
	"industry_backend/internal/shared/istclock"
)

// DefaultFreshnessThreshold is the number of mapped instruments a date needs
// before it counts as complete.
const DefaultFreshnessThreshold = 4000

// FetchPlan is the outcome of the freshness gate.
// When UpToDate is false, From..To (both inclusive) is the range to fetch.
type FetchPlan struct {
	UpToDate     bool
	LastComplete time.Time
	From         time.Time
	To           time.Time
}

// Freshness finds the latest date on which at least threshold distinct
// mapped codes have a bar, and plans a fetch from the following day through
// today. ErrNoCompleteDate is returned when no date qualifies.
func Freshness(series []entity.Bar, threshold int, today time.Time) (FetchPlan, error) {
	today = istclock.DateOf(today)

	perDate := make(map[time.Time]map[string]struct{})
	for _, b := range series {
		if !b.Mapped() {
			continue
		}
		d := istclock.DateOf(b.Date)
		codes, ok := perDate[d]
		if !ok {
			codes = make(map[string]struct{})
			perDate[d] = codes
		}
		codes[b.Code] = struct{}{}
	}

	dates := make([]time.Time, 0, len(perDate))
	for d := range perDate {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].After(dates[j]) })

	for _, d := range dates {
		if len(perDate[d]) < threshold {
			continue
		}
		if !d.Before(today) {
			return FetchPlan{UpToDate: true, LastComplete: d}, nil
		}
		return FetchPlan{LastComplete: d, From: istclock.AddDays(d, 1), To: today}, nil
	}
	return FetchPlan{}, domain.ErrNoCompleteDate
}
