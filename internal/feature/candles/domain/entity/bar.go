// Package entity defines the domain models for the candles feature.
package entity

import (
	"time"

	"github.com/guregu/null/v6"

	"industry_backend/internal/shared/istclock"
)

// Market is the exchange a bar was traded on.
type Market string

const (
	MarketNSE Market = "NSE"
	MarketBSE Market = "BSE"
)

// Bar is one canonical daily OHLCV row of an instrument.
// Date is a civil date anchored at 00:00 Asia/Kolkata.
// Taxonomy fields are denormalised from the reference table and are null
// when the instrument is unmapped.
type Bar struct {
	Code   string
	Name   string
	Market Market
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64

	Industry    null.String
	Sector      null.String
	SubIndustry null.String
	Category    string
	MarketCap   null.Float
}

// BarKey identifies a bar within a series.
type BarKey struct {
	Code string
	Date time.Time
}

// Key returns the (Code, Date) identity of the bar.
func (b Bar) Key() BarKey {
	return BarKey{Code: b.Code, Date: istclock.DateOf(b.Date)}
}

// Mapped reports whether the bar joined the reference table.
// Unmapped bars are stored but never counted or aggregated.
func (b Bar) Mapped() bool {
	return b.Industry.Valid
}
