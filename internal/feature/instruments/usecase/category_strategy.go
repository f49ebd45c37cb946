package usecase

import (
	"fmt"
	"sort"
	"strings"

	"industry_backend/internal/feature/instruments/domain/entity"
)

const (
	// StrategyGlobalRank ranks the whole universe by market cap.
	StrategyGlobalRank = "global_rank"
	// StrategyIndustryTertile splits every industry into market-cap thirds.
	StrategyIndustryTertile = "industry_tertile"

	globalLargeMaxRank = 100
	globalMidMaxRank   = 250
)

// CategoryStrategy derives the market-cap Category of every instrument.
// Implementations return a new slice in the input order.
type CategoryStrategy interface {
	Name() string
	Assign(instruments []entity.Instrument) []entity.Instrument
}

// NewCategoryStrategy selects a strategy by its configuration name.
// An empty name selects the global rank strategy.
func NewCategoryStrategy(name string) (CategoryStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", StrategyGlobalRank:
		return GlobalRankStrategy{LargeMaxRank: globalLargeMaxRank, MidMaxRank: globalMidMaxRank}, nil
	case StrategyIndustryTertile:
		return IndustryTertileStrategy{}, nil
	default:
		return nil, fmt.Errorf("unknown category strategy %q", name)
	}
}

// GlobalRankStrategy ranks by market cap descending across the whole table.
// Ties keep input order. Ranks up to LargeMaxRank are Large-cap, up to
// MidMaxRank Mid-cap and the rest Small-cap. Instruments without a market cap
// are ranked after every instrument that has one.
type GlobalRankStrategy struct {
	LargeMaxRank int
	MidMaxRank   int
}

func (GlobalRankStrategy) Name() string { return StrategyGlobalRank }

func (s GlobalRankStrategy) Assign(instruments []entity.Instrument) []entity.Instrument {
	out := append([]entity.Instrument(nil), instruments...)
	order := make([]int, len(out))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return capGreater(out[order[a]], out[order[b]])
	})
	for pos, idx := range order {
		rank := pos + 1
		switch {
		case out[idx].MarketCap.Valid && rank <= s.LargeMaxRank:
			out[idx].Category = entity.CategoryLarge
		case out[idx].MarketCap.Valid && rank <= s.MidMaxRank:
			out[idx].Category = entity.CategoryMid
		default:
			out[idx].Category = entity.CategorySmall
		}
	}
	return out
}

// IndustryTertileStrategy sorts each industry by market cap descending and
// assigns index i < n/3 Large-cap, i < 2n/3 Mid-cap, else Small-cap.
// Instruments lacking a market cap or an industry are left unassigned.
type IndustryTertileStrategy struct{}

func (IndustryTertileStrategy) Name() string { return StrategyIndustryTertile }

func (IndustryTertileStrategy) Assign(instruments []entity.Instrument) []entity.Instrument {
	out := append([]entity.Instrument(nil), instruments...)
	groups := map[string][]int{}
	for i := range out {
		out[i].Category = entity.CategoryNone
		if !out[i].MarketCap.Valid || !out[i].Industry.Valid {
			continue
		}
		groups[out[i].Industry.String] = append(groups[out[i].Industry.String], i)
	}
	for _, idxs := range groups {
		sort.SliceStable(idxs, func(a, b int) bool {
			return out[idxs[a]].MarketCap.Float64 > out[idxs[b]].MarketCap.Float64
		})
		n := float64(len(idxs))
		for i, idx := range idxs {
			switch {
			case float64(i) < n/3:
				out[idx].Category = entity.CategoryLarge
			case float64(i) < 2*n/3:
				out[idx].Category = entity.CategoryMid
			default:
				out[idx].Category = entity.CategorySmall
			}
		}
	}
	return out
}

func capGreater(a, b entity.Instrument) bool {
	if a.MarketCap.Valid != b.MarketCap.Valid {
		return a.MarketCap.Valid
	}
	return a.MarketCap.Float64 > b.MarketCap.Float64
}
