package usecase

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"

	"industry_backend/internal/feature/candles/domain"
	"industry_backend/internal/feature/candles/domain/entity"
	refentity "industry_backend/internal/feature/instruments/domain/entity"
	"industry_backend/internal/shared/istclock"
)

// NormalizeResult holds the canonical bars of one source unit and the rows
// that were skipped on the way.
type NormalizeResult struct {
	Bars    []entity.Bar
	Skipped []error
}

// bhavcopyLayout is the column naming of one exchange's bulk file.
type bhavcopyLayout struct {
	market entity.Market
	code   string
	volume string
	name   string
}

var (
	nseLayout = bhavcopyLayout{market: entity.MarketNSE, code: "SYMBOL", volume: "TOTTRDQTY"}
	bseLayout = bhavcopyLayout{market: entity.MarketBSE, code: "SC_CODE", volume: "NO_OF_SHRS", name: "SC_NAME"}
)

// Enrich copies the reference taxonomy of the bar's code onto the bar.
// A code missing from the table leaves the bar unmapped.
func Enrich(b entity.Bar, table *refentity.Table) entity.Bar {
	in, ok := table.Lookup(b.Code)
	if !ok {
		return b
	}
	if in.Name != "" {
		b.Name = in.Name
	}
	b.Industry = in.Industry
	b.Sector = in.Sector
	b.SubIndustry = in.SubIndustry
	b.Category = string(in.Category)
	b.MarketCap = in.MarketCap
	return b
}

// NormalizeBrokerage converts the historical candles of one instrument.
// Rows with an unparsable timestamp are skipped and reported.
func NormalizeBrokerage(code string, market entity.Market, raw []entity.RawCandle, table *refentity.Table) NormalizeResult {
	res := NormalizeResult{Bars: make([]entity.Bar, 0, len(raw))}
	for i, rc := range raw {
		d, err := istclock.ParseDate(rc.Timestamp)
		if err != nil {
			res.Skipped = append(res.Skipped, &domain.ParseError{
				Source: "brokerage:" + code, Row: i + 1, Field: "timestamp", Value: rc.Timestamp, Err: err,
			})
			continue
		}
		if rc.Volume < 0 {
			res.Skipped = append(res.Skipped, &domain.ParseError{
				Source: "brokerage:" + code, Row: i + 1, Field: "volume",
				Value: strconv.FormatInt(rc.Volume, 10), Err: errors.New("negative volume"),
			})
			continue
		}
		res.Bars = append(res.Bars, Enrich(entity.Bar{
			Code:   code,
			Market: market,
			Date:   d,
			Open:   rc.Open,
			High:   rc.High,
			Low:    rc.Low,
			Close:  rc.Close,
			Volume: rc.Volume,
		}, table))
	}
	return res
}

// NormalizeBhavcopy converts one CSV member of a bulk archive. Members that
// are neither NSE.csv nor BSE.csv yield an empty result. A name whose first
// eight characters are not YYYYMMDD fails the whole file with
// MalformedFilenameError, and so does a missing required column with
// ParseError. Unparsable rows are skipped and reported.
func NormalizeBhavcopy(f entity.BhavcopyFile, table *refentity.Table) (NormalizeResult, error) {
	var layout bhavcopyLayout
	switch {
	case strings.Contains(f.Name, "NSE.csv"):
		layout = nseLayout
	case strings.Contains(f.Name, "BSE.csv"):
		layout = bseLayout
	default:
		return NormalizeResult{}, nil
	}

	base := path.Base(f.Name)
	if len(base) < 8 {
		return NormalizeResult{}, &domain.MalformedFilenameError{Name: f.Name}
	}
	date, err := istclock.ParseCompact(base[:8])
	if err != nil {
		return NormalizeResult{}, &domain.MalformedFilenameError{Name: f.Name}
	}

	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(f.Data, []byte("\xef\xbb\xbf"))))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return NormalizeResult{}, &domain.ParseError{Source: f.Name, Err: err}
	}
	if len(records) == 0 {
		return NormalizeResult{}, &domain.ParseError{Source: f.Name, Err: errors.New("empty file")}
	}

	col := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		col[strings.ToUpper(strings.TrimSpace(h))] = i
	}
	for _, c := range []string{layout.code, "OPEN", "HIGH", "LOW", "CLOSE", layout.volume} {
		if _, ok := col[c]; !ok {
			return NormalizeResult{}, &domain.ParseError{Source: f.Name, Err: fmt.Errorf("missing column %s", c)}
		}
	}

	res := NormalizeResult{Bars: make([]entity.Bar, 0, len(records)-1)}
	for n, rec := range records[1:] {
		row := n + 2
		field := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		code := field(layout.code)
		if code == "" {
			res.Skipped = append(res.Skipped, &domain.ParseError{
				Source: f.Name, Row: row, Field: layout.code, Err: errors.New("empty code"),
			})
			continue
		}

		var prices [4]float64
		var perr error
		for i, name := range []string{"OPEN", "HIGH", "LOW", "CLOSE"} {
			v, err := parseFloatField(field(name))
			if err != nil {
				perr = &domain.ParseError{Source: f.Name, Row: row, Field: name, Value: field(name), Err: err}
				break
			}
			prices[i] = v
		}
		if perr != nil {
			res.Skipped = append(res.Skipped, perr)
			continue
		}
		vol, err := parseVolumeField(field(layout.volume))
		if err != nil {
			res.Skipped = append(res.Skipped, &domain.ParseError{
				Source: f.Name, Row: row, Field: layout.volume, Value: field(layout.volume), Err: err,
			})
			continue
		}

		b := entity.Bar{
			Code:   code,
			Market: layout.market,
			Date:   date,
			Open:   prices[0],
			High:   prices[1],
			Low:    prices[2],
			Close:  prices[3],
			Volume: vol,
		}
		if layout.name != "" {
			b.Name = field(layout.name)
		}
		res.Bars = append(res.Bars, Enrich(b, table))
	}
	return res, nil
}

func parseFloatField(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), 64)
}

// parseVolumeField accepts integral values written as floats ("1200.0").
func parseVolumeField(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		if v < 0 {
			return 0, errors.New("negative volume")
		}
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f < 0 || f != float64(int64(f)) {
		return 0, fmt.Errorf("volume %q is not a non-negative integer", s)
	}
	return int64(f), nil
}
