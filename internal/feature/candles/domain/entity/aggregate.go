package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/guregu/null/v6"
)

// GroupBy selects the hierarchy level groups are formed on.
type GroupBy string

const (
	GroupByIndustry    GroupBy = "industry"
	GroupBySubIndustry GroupBy = "sub_industry"
)

// Method is the per-date price reduction of a group.
type Method string

const (
	MethodSum         Method = "sum"
	MethodMean        Method = "mean"
	MethodWeightedAvg Method = "weighted_avg"
)

// All is the filter value that passes every row.
const All = "All"

// DefaultPadDays is the number of synthetic rows prepended to each group.
const DefaultPadDays = 5

// MaxPadDays bounds PadDays so a single request cannot allocate without limit.
const MaxPadDays = 366

// AggregatedBar is one per-date value of a group series. Prices are null when
// they are undefined, e.g. a volume-weighted average over zero volume.
type AggregatedBar struct {
	Date    time.Time
	Open    null.Float
	High    null.Float
	Low     null.Float
	Close   null.Float
	Volume  int64
	Padding bool
}

// GroupKey identifies a group. SubIndustry is empty when grouping by industry.
type GroupKey struct {
	Industry    string
	SubIndustry string
}

// GroupSeries is the aggregated series of one group.
type GroupSeries struct {
	Key      GroupKey
	Sector   string
	Category string
	Bars     []AggregatedBar
}

// AggregateQuery describes one aggregation request. Empty or "All" filter
// values pass everything. Zero From/To leave the range open on that side.
type AggregateQuery struct {
	GroupBy     GroupBy
	Method      Method
	Market      string
	Sector      string
	Industry    string
	SubIndustry string
	Category    string
	From        time.Time
	To          time.Time
	PadDays     int
}

// Validate checks the enumerated fields.
func (q AggregateQuery) Validate() error {
	switch q.GroupBy {
	case GroupByIndustry, GroupBySubIndustry:
	default:
		return fmt.Errorf("unknown group_by %q", q.GroupBy)
	}
	switch q.Method {
	case MethodSum, MethodMean, MethodWeightedAvg:
	default:
		return fmt.Errorf("unknown method %q", q.Method)
	}
	if q.PadDays < 0 || q.PadDays > MaxPadDays {
		return fmt.Errorf("pad_days must be between 0 and %d", MaxPadDays)
	}
	if !q.From.IsZero() && !q.To.IsZero() && q.To.Before(q.From) {
		return fmt.Errorf("to is before from")
	}
	return nil
}

// CacheKey returns a deterministic key over every field of the query.
func (q AggregateQuery) CacheKey() string {
	return strings.Join([]string{
		string(q.GroupBy),
		string(q.Method),
		filterKey(q.Market),
		filterKey(q.Sector),
		filterKey(q.Industry),
		filterKey(q.SubIndustry),
		filterKey(q.Category),
		dateKey(q.From),
		dateKey(q.To),
		fmt.Sprint(q.PadDays),
	}, "|")
}

// Passes reports whether value passes the filter f.
func Passes(f, value string) bool {
	return f == "" || f == All || f == value
}

func filterKey(f string) string {
	if f == "" {
		return All
	}
	return f
}

func dateKey(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}
