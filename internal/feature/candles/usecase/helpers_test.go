package usecase

import (
	"fmt"
	"time"

	"github.com/guregu/null/v6"

	"industry_backend/internal/feature/candles/domain/entity"
	refentity "industry_backend/internal/feature/instruments/domain/entity"
	"industry_backend/internal/shared/istclock"
)

func day(y int, m time.Month, d int) time.Time { return istclock.Date(y, m, d) }

// mapped はテスト用のマッピング済みバーを作ります。
func mapped(code string, d time.Time, price float64, vol int64, industry, sub string) entity.Bar {
	b := entity.Bar{
		Code: code, Market: entity.MarketNSE, Date: d,
		Open: price, High: price, Low: price, Close: price, Volume: vol,
		Industry: null.StringFrom(industry), Sector: null.StringFrom("Sector of " + industry),
		Category: string(refentity.CategoryLarge),
	}
	if sub != "" {
		b.SubIndustry = null.StringFrom(sub)
	}
	return b
}

func unmapped(code string, d time.Time, price float64, vol int64) entity.Bar {
	return entity.Bar{
		Code: code, Market: entity.MarketBSE, Date: d,
		Open: price, High: price, Low: price, Close: price, Volume: vol,
	}
}

// manyCodes は1日にn銘柄分のマッピング済みバーを作ります。
func manyCodes(d time.Time, n int) []entity.Bar {
	out := make([]entity.Bar, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, mapped(fmt.Sprintf("C%05d", i), d, 1, 1, "Banks", ""))
	}
	return out
}

func testTable() *refentity.Table {
	return refentity.NewTable([]refentity.Instrument{
		{
			Code: "TCS", NSECode: "TCS", BSECode: "532540", Name: "Tata Consultancy",
			Industry: null.StringFrom("IT - Software"), Sector: null.StringFrom("Information Technology"),
			SubIndustry: null.StringFrom("IT Services"), MarketCap: null.FloatFrom(1400000),
			Category: refentity.CategoryLarge,
		},
		{
			Code: "500325", BSECode: "500325", Name: "Reliance",
			Industry: null.StringFrom("Refineries"), Sector: null.StringFrom("Energy"),
			Category: refentity.CategoryLarge,
		},
	})
}
