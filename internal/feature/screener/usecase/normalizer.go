// Package usecase implements screener snapshot capture and listing.
package usecase

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	candledomain "industry_backend/internal/feature/candles/domain"
	refentity "industry_backend/internal/feature/instruments/domain/entity"
	"industry_backend/internal/feature/screener/domain/entity"
)

// required columns of the copied screener table
const (
	colName   = "Stock Name"
	colSymbol = "Symbol"
	colChange = "% Chg"
	colPrice  = "Price"
	colVolume = "Volume"
)

// NormalizeResult holds parsed hits and the rows that were skipped.
type NormalizeResult struct {
	Hits    []entity.Hit
	Skipped []error
}

// NormalizeScreener parses a copied screener table. Commas are dropped, the
// first line is discarded and the second line is the header. Hits are
// deduplicated per symbol and enriched from table.
func NormalizeScreener(label entity.Label, tsv []byte, table *refentity.Table) (NormalizeResult, error) {
	src := "screener:" + string(label)
	text := strings.ReplaceAll(strings.ReplaceAll(string(tsv), ",", ""), "\r\n", "\n")
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) < 2 {
		return NormalizeResult{}, &candledomain.ParseError{Source: src, Err: errors.New("no header line")}
	}

	header := map[string]int{}
	for i, h := range strings.Split(lines[1], "\t") {
		header[strings.TrimSpace(h)] = i
	}
	for _, c := range []string{colName, colSymbol, colChange, colPrice, colVolume} {
		if _, ok := header[c]; !ok {
			return NormalizeResult{}, &candledomain.ParseError{Source: src, Err: fmt.Errorf("missing column %q", c)}
		}
	}

	res := NormalizeResult{}
	seen := map[string]bool{}
	for n, line := range lines[2:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		row := n + 1
		fields := strings.Split(line, "\t")
		get := func(col string) string {
			if i := header[col]; i < len(fields) {
				return strings.TrimSpace(fields[i])
			}
			return ""
		}

		symbol := get(colSymbol)
		if symbol == "" {
			res.Skipped = append(res.Skipped, &candledomain.ParseError{Source: src, Row: row, Field: colSymbol, Err: errors.New("empty symbol")})
			continue
		}
		pct, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(get(colChange), "%")), 64)
		if err != nil {
			res.Skipped = append(res.Skipped, &candledomain.ParseError{Source: src, Row: row, Field: colChange, Value: get(colChange), Err: err})
			continue
		}
		price, err := strconv.ParseFloat(get(colPrice), 64)
		if err != nil {
			res.Skipped = append(res.Skipped, &candledomain.ParseError{Source: src, Row: row, Field: colPrice, Value: get(colPrice), Err: err})
			continue
		}
		vol, err := strconv.ParseFloat(get(colVolume), 64)
		if err != nil || vol < 0 {
			if err == nil {
				err = errors.New("negative volume")
			}
			res.Skipped = append(res.Skipped, &candledomain.ParseError{Source: src, Row: row, Field: colVolume, Value: get(colVolume), Err: err})
			continue
		}
		if seen[symbol] {
			continue
		}
		seen[symbol] = true

		res.Hits = append(res.Hits, Enrich(entity.Hit{
			Label:     label,
			Symbol:    symbol,
			StockName: get(colName),
			Price:     price,
			Volume:    int64(vol),
			ChangePct: pct,
		}, table))
	}
	return res, nil
}

// Enrich copies taxonomy and category from the instrument whose code is the symbol.
// Unknown symbols keep absent taxonomy.
func Enrich(h entity.Hit, table *refentity.Table) entity.Hit {
	if table == nil {
		return h
	}
	in, ok := table.Lookup(h.Symbol)
	if !ok {
		return h
	}
	h.Industry, h.Sector, h.SubIndustry = in.Industry, in.Sector, in.SubIndustry
	h.Category = string(in.Category)
	return h
}
