// Package istclock anchors calendar dates to Indian Standard Time.
package istclock

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO-8601 date layout used on disk and on the wire.
const DateLayout = "2006-01-02"

// IST is the Asia/Kolkata location (UTC+5:30).
var IST *time.Location

func init() {
	var err error
	IST, err = time.LoadLocation("Asia/Kolkata")
	if err != nil {
		// tzdata が無い環境では固定オフセットで代用する
		IST = time.FixedZone("IST", 5*60*60+30*60)
	}
}

// Clock returns the current instant. Tests inject a fixed clock.
type Clock func() time.Time

// System is the wall clock.
func System() time.Time { return time.Now() }

// Date returns midnight IST of the given civil date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, IST)
}

// DateOf truncates t to its civil date in IST.
func DateOf(t time.Time) time.Time {
	t = t.In(IST)
	return Date(t.Year(), t.Month(), t.Day())
}

// Today returns the current civil date in IST according to clock.
func Today(clock Clock) time.Time {
	if clock == nil {
		clock = System
	}
	return DateOf(clock())
}

// AddDays moves a civil date by n calendar days.
func AddDays(d time.Time, n int) time.Time {
	d = d.In(IST)
	return Date(d.Year(), d.Month(), d.Day()+n)
}

// Format renders d as YYYY-MM-DD.
func Format(d time.Time) string {
	return d.In(IST).Format(DateLayout)
}

// ParseDate parses YYYY-MM-DD. A full ISO timestamp is accepted and only the
// part before "T" is used.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		s = s[:i]
	}
	t, err := time.ParseInLocation(DateLayout, s, IST)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// ParseCompact parses YYYYMMDD in IST.
func ParseCompact(s string) (time.Time, error) {
	return time.ParseInLocation("20060102", s, IST)
}

// FormatSnapshot renders d as DDMMYYYY, the screener snapshot file stem.
func FormatSnapshot(d time.Time) string {
	return d.In(IST).Format("02012006")
}

// ParseSnapshot parses DDMMYYYY in IST.
func ParseSnapshot(s string) (time.Time, error) {
	return time.ParseInLocation("02012006", s, IST)
}

// DaysBetween returns the number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	a, b = DateOf(a), DateOf(b)
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}
