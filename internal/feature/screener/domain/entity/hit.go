// Package entity defines the screener snapshot model.
package entity

import (
	"time"

	"github.com/guregu/null/v6"
)

// Label names the external screener a hit came from.
type Label string

const (
	LabelVolatilityCompression Label = "volatility-compression"
	LabelMinerviniVCP          Label = "mark-minervini-vcp-pattern"
	LabelStockExploderVCP      Label = "stockexploder_vcp"
	LabelRocketBased           Label = "rocket_based"
)

// Labels lists every screener in refresh order.
var Labels = []Label{LabelVolatilityCompression, LabelMinerviniVCP, LabelStockExploderVCP, LabelRocketBased}

var slugs = map[Label]string{
	LabelVolatilityCompression: "volatility-compression",
	LabelMinerviniVCP:          "mark-minervini-vcp-pattern",
	LabelStockExploderVCP:      "stockexploder-vcp-2",
	LabelRocketBased:           "rb-stockexploder",
}

// Slug is the screener page name on the website.
func (l Label) Slug() (string, bool) {
	s, ok := slugs[l]
	return s, ok
}

// Hit is one stock listed by a screener, enriched from the reference table.
type Hit struct {
	Label     Label
	Symbol    string
	StockName string
	Price     float64
	Volume    int64
	ChangePct float64

	Industry    null.String
	Sector      null.String
	SubIndustry null.String
	Category    string
}

// Snapshot is the set of hits captured on one date.
type Snapshot struct {
	Date time.Time
	Hits []Hit
}

// Filter narrows a snapshot listing. "" and "All" pass everything.
type Filter struct {
	Industry    string
	SubIndustry string
	Label       string
}

// Matches reports whether h passes f.
func (f Filter) Matches(h Hit) bool {
	return passes(f.Industry, h.Industry) && passes(f.SubIndustry, h.SubIndustry) &&
		(f.Label == "" || f.Label == "All" || f.Label == string(h.Label))
}

func passes(f string, v null.String) bool {
	return f == "" || f == "All" || (v.Valid && v.String == f)
}
