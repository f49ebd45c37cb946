// Package dto defines data transfer objects for the instruments HTTP API.
package dto

import "github.com/guregu/null/v6"

// InstrumentItem is one reference table row in the API response.
type InstrumentItem struct {
	Code        string      `json:"code"`
	Name        string      `json:"name"`
	Industry    null.String `json:"industry"`
	Sector      null.String `json:"sector"`
	SubIndustry null.String `json:"sub_industry"`
	MarketCap   null.Float  `json:"market_cap"`
	Category    string      `json:"category"`
}

// RebuildResponse reports the size of a rebuilt reference table.
type RebuildResponse struct {
	Instruments int `json:"instruments"`
}
