package usecase

import (
	"sort"
	"time"

	"github.com/guregu/null/v6"

	"industry_backend/internal/feature/candles/domain/entity"
	"industry_backend/internal/shared/istclock"
)

// filterLevel is a position in the filter cascade
// market -> sector -> industry -> sub-industry -> category -> date.
type filterLevel int

const (
	levelMarket filterLevel = iota
	levelSector
	levelIndustry
	levelSubIndustry
	levelCategory
	levelDate
	levelAll
)

// passes applies the filters of q strictly above level upto.
func passes(b entity.Bar, q entity.AggregateQuery, upto filterLevel) bool {
	if upto > levelMarket && !entity.Passes(q.Market, string(b.Market)) {
		return false
	}
	if upto > levelSector && !entity.Passes(q.Sector, b.Sector.String) {
		return false
	}
	if upto > levelIndustry && !entity.Passes(q.Industry, b.Industry.String) {
		return false
	}
	if upto > levelSubIndustry && !entity.Passes(q.SubIndustry, b.SubIndustry.String) {
		return false
	}
	if upto > levelCategory && !entity.Passes(q.Category, b.Category) {
		return false
	}
	if upto > levelDate {
		d := istclock.DateOf(b.Date)
		if !q.From.IsZero() && d.Before(istclock.DateOf(q.From)) {
			return false
		}
		if !q.To.IsZero() && d.After(istclock.DateOf(q.To)) {
			return false
		}
	}
	return true
}

type groupAcc struct {
	sector string
	dates  map[time.Time]*dayAcc
}

type dayAcc struct {
	n                    int
	open, high, low, cls float64
	wOpen, wHigh, wLow   float64
	wClose               float64
	volume               int64
}

// Aggregate filters the series and reduces it per group and per date.
// Unmapped bars never contribute. Each group is preceded by exactly
// q.PadDays padding rows on the calendar days before its first real date.
// Groups are ordered by (Industry, SubIndustry) and bars by date.
func Aggregate(series []entity.Bar, q entity.AggregateQuery) []entity.GroupSeries {
	groups := make(map[entity.GroupKey]*groupAcc)
	for _, b := range series {
		if !b.Mapped() || !passes(b, q, levelAll) {
			continue
		}
		key := entity.GroupKey{Industry: b.Industry.String}
		if q.GroupBy == entity.GroupBySubIndustry {
			if !b.SubIndustry.Valid {
				continue
			}
			key.SubIndustry = b.SubIndustry.String
		}
		g, ok := groups[key]
		if !ok {
			g = &groupAcc{sector: b.Sector.String, dates: make(map[time.Time]*dayAcc)}
			groups[key] = g
		}
		d := istclock.DateOf(b.Date)
		acc, ok := g.dates[d]
		if !ok {
			acc = &dayAcc{}
			g.dates[d] = acc
		}
		acc.add(b)
	}

	category := q.Category
	if category == "" {
		category = entity.All
	}

	keys := make([]entity.GroupKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Industry != keys[j].Industry {
			return keys[i].Industry < keys[j].Industry
		}
		return keys[i].SubIndustry < keys[j].SubIndustry
	})

	out := make([]entity.GroupSeries, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		dates := make([]time.Time, 0, len(g.dates))
		for d := range g.dates {
			dates = append(dates, d)
		}
		sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

		bars := make([]entity.AggregatedBar, 0, len(dates)+q.PadDays)
		for i := q.PadDays; i > 0; i-- {
			bars = append(bars, entity.AggregatedBar{Date: istclock.AddDays(dates[0], -i), Padding: true})
		}
		for _, d := range dates {
			bars = append(bars, g.dates[d].result(d, q.Method))
		}
		out = append(out, entity.GroupSeries{Key: k, Sector: g.sector, Category: category, Bars: bars})
	}
	return out
}

func (a *dayAcc) add(b entity.Bar) {
	a.n++
	a.open += b.Open
	a.high += b.High
	a.low += b.Low
	a.cls += b.Close
	v := float64(b.Volume)
	a.wOpen += b.Open * v
	a.wHigh += b.High * v
	a.wLow += b.Low * v
	a.wClose += b.Close * v
	a.volume += b.Volume
}

func (a *dayAcc) result(d time.Time, m entity.Method) entity.AggregatedBar {
	out := entity.AggregatedBar{Date: d, Volume: a.volume}
	switch m {
	case entity.MethodMean:
		n := float64(a.n)
		out.Open, out.High = null.FloatFrom(a.open/n), null.FloatFrom(a.high/n)
		out.Low, out.Close = null.FloatFrom(a.low/n), null.FloatFrom(a.cls/n)
	case entity.MethodWeightedAvg:
		// zero total volume leaves every price null
		if a.volume == 0 {
			return out
		}
		v := float64(a.volume)
		out.Open, out.High = null.FloatFrom(a.wOpen/v), null.FloatFrom(a.wHigh/v)
		out.Low, out.Close = null.FloatFrom(a.wLow/v), null.FloatFrom(a.wClose/v)
	default:
		out.Open, out.High = null.FloatFrom(a.open), null.FloatFrom(a.high)
		out.Low, out.Close = null.FloatFrom(a.low), null.FloatFrom(a.cls)
	}
	return out
}

// Options lists the values a dashboard may pick at each filter level.
// Every list is computed after the filters above its level.
type Options struct {
	Markets       []string
	Sectors       []string
	Industries    []string
	SubIndustries []string
	Categories    []string
	MinDate       time.Time
	MaxDate       time.Time
}

// FilterOptions computes the cascading filter values for q over the mapped
// bars of series. The date bounds honour every filter except the range itself.
func FilterOptions(series []entity.Bar, q entity.AggregateQuery) Options {
	sets := [5]map[string]struct{}{{}, {}, {}, {}, {}}
	var opts Options
	for _, b := range series {
		if !b.Mapped() {
			continue
		}
		vals := [5]null.String{
			null.StringFrom(string(b.Market)),
			b.Sector,
			b.Industry,
			b.SubIndustry,
			null.NewString(b.Category, b.Category != ""),
		}
		for lvl := levelMarket; lvl <= levelCategory; lvl++ {
			if !passes(b, q, lvl) {
				break
			}
			if v := vals[lvl]; v.Valid && v.String != "" {
				sets[lvl][v.String] = struct{}{}
			}
		}
		if passes(b, q, levelDate) {
			d := istclock.DateOf(b.Date)
			if opts.MinDate.IsZero() || d.Before(opts.MinDate) {
				opts.MinDate = d
			}
			if d.After(opts.MaxDate) {
				opts.MaxDate = d
			}
		}
	}
	opts.Markets = sortedKeys(sets[levelMarket])
	opts.Sectors = sortedKeys(sets[levelSector])
	opts.Industries = sortedKeys(sets[levelIndustry])
	opts.SubIndustries = sortedKeys(sets[levelSubIndustry])
	opts.Categories = sortedKeys(sets[levelCategory])
	return opts
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
