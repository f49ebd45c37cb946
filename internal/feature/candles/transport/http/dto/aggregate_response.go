// Package dto defines data transfer objects for the candles HTTP API.
package dto

import "github.com/guregu/null/v6"

// AggregatedBar is one date of a group series. Missing prices are null.
type AggregatedBar struct {
	Date    string     `json:"date"`
	Open    null.Float `json:"open"`
	High    null.Float `json:"high"`
	Low     null.Float `json:"low"`
	Close   null.Float `json:"close"`
	Volume  int64      `json:"volume"`
	Padding bool       `json:"padding,omitempty"`
}

// GroupSeries is one aggregated group.
type GroupSeries struct {
	Industry    string          `json:"industry"`
	SubIndustry string          `json:"sub_industry,omitempty"`
	Sector      string          `json:"sector"`
	Category    string          `json:"category"`
	Bars        []AggregatedBar `json:"bars"`
}

// FilterOptions lists the cascading dashboard filter values.
type FilterOptions struct {
	Markets       []string `json:"markets"`
	Sectors       []string `json:"sectors"`
	Industries    []string `json:"industries"`
	SubIndustries []string `json:"sub_industries"`
	Categories    []string `json:"categories"`
	MinDate       string   `json:"min_date,omitempty"`
	MaxDate       string   `json:"max_date,omitempty"`
}
