// Package dto defines data transfer objects for the screener HTTP API.
package dto

import "github.com/guregu/null/v6"

// Hit is one screener row in the API response.
type Hit struct {
	Label       string      `json:"label"`
	Symbol      string      `json:"symbol"`
	StockName   string      `json:"stock_name"`
	Price       float64     `json:"price"`
	Volume      int64       `json:"volume"`
	ChangePct   float64     `json:"change_pct"`
	Industry    null.String `json:"industry"`
	Sector      null.String `json:"sector"`
	SubIndustry null.String `json:"sub_industry"`
	Category    string      `json:"category,omitempty"`
}

// Snapshot is the screener listing of one date.
type Snapshot struct {
	Date string `json:"date"`
	Hits []Hit  `json:"hits"`
}
