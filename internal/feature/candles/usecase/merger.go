package usecase

import (
	"sort"

	"github.com/guregu/null/v6"

	"industry_backend/internal/feature/candles/domain/entity"
	refentity "industry_backend/internal/feature/instruments/domain/entity"
	"industry_backend/internal/shared/istclock"
)

// DefaultRetentionDays is the look-back kept from the previous series.
const DefaultRetentionDays = 180

// TaxonomyLookup resolves reference rows by identity code.
type TaxonomyLookup interface {
	Lookup(code string) (refentity.Instrument, bool)
}

// Merge combines the stored series with freshly fetched bars.
//
// previous is trimmed to dates on or after max(previous.Date)-retentionDays
// (retentionDays <= 0 keeps everything). The sub-industry is refreshed from
// ref, and any taxonomy a bar lacks is filled in. Rows are deduplicated on
// (Code, Date) with the later row winning, so incoming beats previous.
// The result is ordered by (Date, Code) and is meant to replace the stored
// series as a whole.
func Merge(previous, incoming []entity.Bar, retentionDays int, ref TaxonomyLookup) []entity.Bar {
	trimmed := trimRetention(previous, retentionDays)

	all := make([]entity.Bar, 0, len(trimmed)+len(incoming))
	all = append(all, trimmed...)
	all = append(all, incoming...)

	pos := make(map[entity.BarKey]int, len(all))
	out := make([]entity.Bar, 0, len(all))
	for _, b := range all {
		b.Date = istclock.DateOf(b.Date)
		if ref != nil {
			b = joinTaxonomy(b, ref)
		}
		k := b.Key()
		if i, ok := pos[k]; ok {
			out[i] = b
			continue
		}
		pos[k] = len(out)
		out = append(out, b)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Code < out[j].Code
	})
	return out
}

func trimRetention(previous []entity.Bar, retentionDays int) []entity.Bar {
	if len(previous) == 0 || retentionDays <= 0 {
		return previous
	}
	maxDate := previous[0].Date
	for _, b := range previous[1:] {
		if b.Date.After(maxDate) {
			maxDate = b.Date
		}
	}
	cutoff := istclock.AddDays(maxDate, -retentionDays)

	out := make([]entity.Bar, 0, len(previous))
	for _, b := range previous {
		if !istclock.DateOf(b.Date).Before(cutoff) {
			out = append(out, b)
		}
	}
	return out
}

func joinTaxonomy(b entity.Bar, ref TaxonomyLookup) entity.Bar {
	in, ok := ref.Lookup(b.Code)
	if !ok {
		b.SubIndustry = null.String{}
		return b
	}
	b.SubIndustry = in.SubIndustry
	if !b.Industry.Valid {
		b.Industry = in.Industry
	}
	if !b.Sector.Valid {
		b.Sector = in.Sector
	}
	if b.Category == "" {
		b.Category = string(in.Category)
	}
	if !b.MarketCap.Valid {
		b.MarketCap = in.MarketCap
	}
	if b.Name == "" {
		b.Name = in.Name
	}
	return b
}
