package adapters

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/guregu/null/v6"
	"github.com/parquet-go/parquet-go"

	"industry_backend/internal/feature/candles/domain/entity"
	refentity "industry_backend/internal/feature/instruments/domain/entity"
	"industry_backend/internal/shared/istclock"
)

// Unmapped is written in place of an absent taxonomy value.
const Unmapped = "UNMAPPED"

// seriesColumns is the on-disk column order of the canonical series.
var seriesColumns = []string{
	"NSE_BSE_code", "open", "high", "low", "close", "volume", "datetime", "market",
	"Name", "Industry", "Mapped Sector", "Sub Industry", "Category", "Market Capitalization",
}

// SeriesCodec encodes the canonical series to a file format.
type SeriesCodec interface {
	Ext() string
	Encode(bars []entity.Bar) ([]byte, error)
	Decode(data []byte) ([]entity.Bar, error)
}

// NewSeriesCodec selects a codec by format name ("csv" or "parquet").
func NewSeriesCodec(format string) (SeriesCodec, error) {
	switch strings.ToLower(format) {
	case "", "csv":
		return CSVCodec{}, nil
	case "parquet":
		return ParquetCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown series format %q", format)
	}
}

// CSVCodec is the legacy CSV layout.
type CSVCodec struct{}

func (CSVCodec) Ext() string { return ".csv" }

func (CSVCodec) Encode(bars []entity.Bar) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(seriesColumns); err != nil {
		return nil, err
	}
	for _, b := range bars {
		rec := []string{
			b.Code,
			strconv.FormatFloat(b.Open, 'f', -1, 64),
			strconv.FormatFloat(b.High, 'f', -1, 64),
			strconv.FormatFloat(b.Low, 'f', -1, 64),
			strconv.FormatFloat(b.Close, 'f', -1, 64),
			strconv.FormatInt(b.Volume, 10),
			istclock.Format(b.Date),
			string(b.Market),
			b.Name,
			orUnmapped(b.Industry),
			orUnmapped(b.Sector),
			orUnmapped(b.SubIndustry),
			orUnmapped(null.NewString(b.Category, b.Category != "")),
			"",
		}
		if b.MarketCap.Valid {
			rec[13] = strconv.FormatFloat(b.MarketCap.Float64, 'f', -1, 64)
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode tolerates extra columns, full ISO timestamps and the legacy
// BhaPra/BharPra sentinels. Rows that cannot be parsed are dropped.
func (CSVCodec) Decode(data []byte) ([]entity.Bar, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse series csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	col := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		col[strings.TrimSpace(h)] = i
	}
	for _, c := range []string{"NSE_BSE_code", "open", "high", "low", "close", "volume", "datetime"} {
		if _, ok := col[c]; !ok {
			return nil, fmt.Errorf("parse series csv: missing column %s", c)
		}
	}

	out := make([]entity.Bar, 0, len(records)-1)
	dropped := 0
	for _, rec := range records[1:] {
		get := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		b, err := decodeRow(get)
		if err != nil {
			dropped++
			continue
		}
		out = append(out, b)
	}
	if dropped > 0 {
		slog.Warn("series rows dropped while decoding", "dropped", dropped)
	}
	return out, nil
}

func decodeRow(get func(string) string) (entity.Bar, error) {
	d, err := istclock.ParseDate(get("datetime"))
	if err != nil {
		return entity.Bar{}, err
	}
	var nums [4]float64
	for i, c := range []string{"open", "high", "low", "close"} {
		if nums[i], err = strconv.ParseFloat(get(c), 64); err != nil {
			return entity.Bar{}, err
		}
	}
	vol, err := decodeVolume(get("volume"))
	if err != nil {
		return entity.Bar{}, err
	}

	b := entity.Bar{
		Code:        strings.TrimSuffix(get("NSE_BSE_code"), ".0"),
		Name:        get("Name"),
		Market:      entity.Market(get("market")),
		Date:        d,
		Open:        nums[0],
		High:        nums[1],
		Low:         nums[2],
		Close:       nums[3],
		Volume:      vol,
		Industry:    fromDisk(get("Industry")),
		Sector:      fromDisk(get("Mapped Sector")),
		SubIndustry: fromDisk(get("Sub Industry")),
		Category:    string(refentity.ParseCategory(get("Category"))),
	}
	if mc, err := strconv.ParseFloat(strings.ReplaceAll(get("Market Capitalization"), ",", ""), 64); err == nil {
		b.MarketCap = null.FloatFrom(mc)
	}
	return b, nil
}

// decodeVolume accepts integers and integral floats ("1200.0") only.
func decodeVolume(s string) (int64, error) {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil && v >= 0 {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || f != math.Trunc(f) || f >= math.MaxInt64 {
		return 0, fmt.Errorf("bad volume %q", s)
	}
	return int64(f), nil
}

func orUnmapped(s null.String) string {
	if !s.Valid || s.String == "" {
		return Unmapped
	}
	return s.String
}

func fromDisk(s string) null.String {
	switch s {
	case "", Unmapped, "BhaPra", "BharPra", "nan", "NaN":
		return null.String{}
	}
	return null.StringFrom(s)
}

// parquetBar is the parquet row layout of the canonical series.
type parquetBar struct {
	Code        string   `parquet:"nse_bse_code"`
	Open        float64  `parquet:"open"`
	High        float64  `parquet:"high"`
	Low         float64  `parquet:"low"`
	Close       float64  `parquet:"close"`
	Volume      int64    `parquet:"volume"`
	Date        string   `parquet:"datetime"`
	Market      string   `parquet:"market"`
	Name        string   `parquet:"name"`
	Industry    *string  `parquet:"industry,optional"`
	Sector      *string  `parquet:"mapped_sector,optional"`
	SubIndustry *string  `parquet:"sub_industry,optional"`
	Category    *string  `parquet:"category,optional"`
	MarketCap   *float64 `parquet:"market_capitalization,optional"`
}

// ParquetCodec stores the series as a single parquet file.
type ParquetCodec struct{}

func (ParquetCodec) Ext() string { return ".parquet" }

func (ParquetCodec) Encode(bars []entity.Bar) ([]byte, error) {
	rows := make([]parquetBar, 0, len(bars))
	for _, b := range bars {
		rows = append(rows, parquetBar{
			Code:        b.Code,
			Open:        b.Open,
			High:        b.High,
			Low:         b.Low,
			Close:       b.Close,
			Volume:      b.Volume,
			Date:        istclock.Format(b.Date),
			Market:      string(b.Market),
			Name:        b.Name,
			Industry:    b.Industry.Ptr(),
			Sector:      b.Sector.Ptr(),
			SubIndustry: b.SubIndustry.Ptr(),
			Category:    null.NewString(b.Category, b.Category != "").Ptr(),
			MarketCap:   b.MarketCap.Ptr(),
		})
	}
	var buf bytes.Buffer
	if err := parquet.Write(&buf, rows); err != nil {
		return nil, fmt.Errorf("encode series parquet: %w", err)
	}
	return buf.Bytes(), nil
}

func (ParquetCodec) Decode(data []byte) ([]entity.Bar, error) {
	rows, err := parquet.Read[parquetBar](bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("decode series parquet: %w", err)
	}
	out := make([]entity.Bar, 0, len(rows))
	for _, r := range rows {
		d, err := istclock.ParseDate(r.Date)
		if err != nil {
			return nil, fmt.Errorf("decode series parquet: %w", err)
		}
		out = append(out, entity.Bar{
			Code:        r.Code,
			Name:        r.Name,
			Market:      entity.Market(r.Market),
			Date:        d,
			Open:        r.Open,
			High:        r.High,
			Low:         r.Low,
			Close:       r.Close,
			Volume:      r.Volume,
			Industry:    null.StringFromPtr(r.Industry),
			Sector:      null.StringFromPtr(r.Sector),
			SubIndustry: null.StringFromPtr(r.SubIndustry),
			Category:    null.StringFromPtr(r.Category).String,
			MarketCap:   null.FloatFromPtr(r.MarketCap),
		})
	}
	return out, nil
}
