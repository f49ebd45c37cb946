// Package usecase implements the business logic for the entity reference table.
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/guregu/null/v6"

	"industry_backend/internal/feature/instruments/domain/entity"
)

// InstrumentRepository abstracts the persistence layer for the reference table.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type InstrumentRepository interface {
	ReplaceAll(ctx context.Context, instruments []entity.Instrument) error
	ListAll(ctx context.Context) ([]entity.Instrument, error)
}

// ReferenceSource reads the raw reference files.
type ReferenceSource interface {
	LoadStocks(ctx context.Context) ([]entity.ReferenceRow, error)
	// LoadSectorMap returns industry -> mapped sector.
	LoadSectorMap(ctx context.Context) (map[string]string, error)
	// LoadSubIndustryMap returns identity code -> sub-industry.
	LoadSubIndustryMap(ctx context.Context) (map[string]string, error)
}

// ReferenceUsecase builds, persists and serves the entity reference table.
// The table is held in memory after the first load and replaced on Rebuild.
type ReferenceUsecase struct {
	repo     InstrumentRepository
	source   ReferenceSource
	strategy CategoryStrategy

	mu    sync.RWMutex
	table *entity.Table
}

// NewReferenceUsecase creates a new ReferenceUsecase. A nil strategy falls
// back to the global rank strategy.
func NewReferenceUsecase(repo InstrumentRepository, source ReferenceSource, strategy CategoryStrategy) *ReferenceUsecase {
	if strategy == nil {
		strategy = GlobalRankStrategy{LargeMaxRank: globalLargeMaxRank, MidMaxRank: globalMidMaxRank}
	}
	return &ReferenceUsecase{repo: repo, source: source, strategy: strategy}
}

// Build joins the reference rows with the sector and sub-industry mappings,
// resolves the identity code and assigns categories. Rows with neither an
// NSE nor a BSE code are dropped.
func Build(rows []entity.ReferenceRow, sectors, subIndustries map[string]string, strategy CategoryStrategy) []entity.Instrument {
	out := make([]entity.Instrument, 0, len(rows))
	for _, r := range rows {
		code := entity.IdentityCode(r.NSECode, r.BSECode)
		if code == "" {
			continue
		}
		in := entity.Instrument{
			Code:      code,
			NSECode:   r.NSECode,
			BSECode:   r.BSECode,
			Name:      r.Name,
			Industry:  r.Industry,
			MarketCap: r.MarketCap,
		}
		if r.Industry.Valid {
			if s, ok := sectors[r.Industry.String]; ok && s != "" {
				in.Sector = null.StringFrom(s)
			}
		}
		if s, ok := subIndustries[code]; ok && s != "" {
			in.SubIndustry = null.StringFrom(s)
		}
		out = append(out, in)
	}
	if strategy != nil {
		out = strategy.Assign(out)
	}
	return out
}

// Rebuild re-reads the reference files, recomputes the table and replaces the
// persisted copy. It returns the number of instruments written.
func (u *ReferenceUsecase) Rebuild(ctx context.Context) (int, error) {
	rows, err := u.source.LoadStocks(ctx)
	if err != nil {
		return 0, fmt.Errorf("load stocks: %w", err)
	}
	sectors, err := u.source.LoadSectorMap(ctx)
	if err != nil {
		return 0, fmt.Errorf("load sector map: %w", err)
	}
	subs, err := u.source.LoadSubIndustryMap(ctx)
	if err != nil {
		return 0, fmt.Errorf("load sub-industry map: %w", err)
	}

	instruments := Build(rows, sectors, subs, u.strategy)
	if err := u.repo.ReplaceAll(ctx, instruments); err != nil {
		return 0, fmt.Errorf("persist reference table: %w", err)
	}

	u.mu.Lock()
	u.table = entity.NewTable(instruments)
	u.mu.Unlock()

	slog.Info("reference table rebuilt", "instruments", len(instruments), "strategy", u.strategy.Name())
	return len(instruments), nil
}

// Table returns the in-memory reference table, loading it from the
// repository on first use.
func (u *ReferenceUsecase) Table(ctx context.Context) (*entity.Table, error) {
	u.mu.RLock()
	t := u.table
	u.mu.RUnlock()
	if t != nil {
		return t, nil
	}

	instruments, err := u.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	t = entity.NewTable(instruments)

	u.mu.Lock()
	u.table = t
	u.mu.Unlock()
	return t, nil
}

// ListInstruments returns every instrument ordered by code.
func (u *ReferenceUsecase) ListInstruments(ctx context.Context) ([]entity.Instrument, error) {
	t, err := u.Table(ctx)
	if err != nil {
		return nil, err
	}
	return t.Instruments(), nil
}
