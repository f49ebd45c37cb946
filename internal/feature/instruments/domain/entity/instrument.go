// Package entity defines the domain models for the instruments feature.
package entity

import (
	"strings"

	"github.com/guregu/null/v6"
)

// Category is the market-capitalisation bucket of an instrument.
type Category string

const (
	CategoryLarge Category = "Large-cap"
	CategoryMid   Category = "Mid-cap"
	CategorySmall Category = "Small-cap"
	// CategoryNone marks an instrument the active strategy did not rank.
	CategoryNone Category = ""
)

// ParseCategory normalises the spellings found in reference files
// ("Large-Cap", "large-cap") to the canonical labels.
func ParseCategory(s string) Category {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "large-cap":
		return CategoryLarge
	case "mid-cap":
		return CategoryMid
	case "small-cap":
		return CategorySmall
	default:
		return CategoryNone
	}
}

// Instrument is one row of the entity reference table.
// Taxonomy fields are null when the reference files carry no mapping for the code.
type Instrument struct {
	Code        string
	NSECode     string
	BSECode     string
	Name        string
	Industry    null.String
	Sector      null.String
	SubIndustry null.String
	MarketCap   null.Float
	Category    Category
}

// Mapped reports whether the instrument has an industry.
func (i Instrument) Mapped() bool {
	return i.Industry.Valid
}

// IdentityCode picks the NSE code and falls back to the BSE code.
func IdentityCode(nse, bse string) string {
	if nse = strings.TrimSpace(nse); nse != "" {
		return nse
	}
	return strings.TrimSpace(bse)
}

// ReferenceRow is one line of the all-stocks reference file before joins.
type ReferenceRow struct {
	Name      string
	NSECode   string
	BSECode   string
	Industry  null.String
	MarketCap null.Float
}
