package adapters

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/guregu/null/v6"

	"industry_backend/internal/feature/instruments/domain/entity"
	"industry_backend/internal/feature/instruments/usecase"
	"industry_backend/internal/platform/blob"
)

// 参照フォルダ内の既定ファイル名
const (
	DefaultStocksFile      = "all-stocks.csv"
	DefaultSectorMapFile   = "map_indus_sector.csv"
	DefaultSubIndustryFile = "sub_industry_mapping.csv"
)

// ReferenceFiles は参照フォルダ内のファイル名です。
type ReferenceFiles struct {
	Stocks      string
	SectorMap   string
	SubIndustry string
}

// DefaultReferenceFiles は既定のファイル名を返します。
func DefaultReferenceFiles() ReferenceFiles {
	return ReferenceFiles{
		Stocks:      DefaultStocksFile,
		SectorMap:   DefaultSectorMapFile,
		SubIndustry: DefaultSubIndustryFile,
	}
}

// referenceBlob はblobストア上のCSVからReferenceSourceを実装します。
type referenceBlob struct {
	folder blob.Folder
	files  ReferenceFiles
}

var _ usecase.ReferenceSource = (*referenceBlob)(nil)

// NewReferenceSource は参照フォルダのCSVを読むReferenceSourceを生成します。
func NewReferenceSource(folder blob.Folder, files ReferenceFiles) *referenceBlob {
	return &referenceBlob{folder: folder, files: files}
}

// LoadStocks は all-stocks ファイルを読み込みます。
// 必須列は Name, BSE Code, NSE Code, Industry, Market Capitalization です。
func (r *referenceBlob) LoadStocks(ctx context.Context) ([]entity.ReferenceRow, error) {
	records, err := r.read(ctx, r.files.Stocks, "Name", "BSE Code", "NSE Code", "Industry", "Market Capitalization")
	if err != nil {
		return nil, err
	}
	idx := blob.NewHeaderIndex(records[0])

	out := make([]entity.ReferenceRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := entity.ReferenceRow{
			Name:     strings.TrimSpace(idx.Value(rec, "Name")),
			NSECode:  strings.TrimSpace(idx.Value(rec, "NSE Code")),
			BSECode:  normalizeBSECode(idx.Value(rec, "BSE Code")),
			Industry: optionalString(idx.Value(rec, "Industry")),
		}
		if v, ok := parseNumber(idx.Value(rec, "Market Capitalization")); ok {
			row.MarketCap = null.FloatFrom(v)
		}
		out = append(out, row)
	}
	return out, nil
}

// LoadSectorMap は Industry -> Mapped Sector の対応を読み込みます。
func (r *referenceBlob) LoadSectorMap(ctx context.Context) (map[string]string, error) {
	return r.loadMap(ctx, r.files.SectorMap, "Industry", "Mapped Sector")
}

// LoadSubIndustryMap は NSE_BSE_code -> Sub Industry の対応を読み込みます。
func (r *referenceBlob) LoadSubIndustryMap(ctx context.Context) (map[string]string, error) {
	return r.loadMap(ctx, r.files.SubIndustry, "NSE_BSE_code", "Sub Industry")
}

func (r *referenceBlob) loadMap(ctx context.Context, file, keyCol, valCol string) (map[string]string, error) {
	records, err := r.read(ctx, file, keyCol, valCol)
	if err != nil {
		return nil, err
	}
	idx := blob.NewHeaderIndex(records[0])

	out := make(map[string]string, len(records)-1)
	for _, rec := range records[1:] {
		k := normalizeBSECode(idx.Value(rec, keyCol))
		v := optionalString(idx.Value(rec, valCol))
		if k == "" || !v.Valid {
			continue
		}
		out[k] = v.String
	}
	return out, nil
}

func (r *referenceBlob) read(ctx context.Context, file string, required ...string) ([][]string, error) {
	records, err := blob.ReadCSV(ctx, r.folder, file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.folder.Key(file), err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read %s: empty file", r.folder.Key(file))
	}
	if !blob.NewHeaderIndex(records[0]).Has(required...) {
		return nil, fmt.Errorf("read %s: missing one of columns %v", r.folder.Key(file), required)
	}
	return records, nil
}

// normalizeBSECode は "500325.0" のような数値表記を整数表記に直します。
// 0 は欠損扱いです。
func normalizeBSECode(s string) string {
	s = strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int64(f)) {
		if f == 0 {
			return ""
		}
		return strconv.FormatInt(int64(f), 10)
	}
	return s
}

// optionalString は空文字と旧来の欠損値を null にします。
func optionalString(s string) null.String {
	s = strings.TrimSpace(s)
	switch s {
	case "", "UNMAPPED", "BhaPra", "BharPra", "nan", "NaN":
		return null.String{}
	}
	return null.StringFrom(s)
}

func parseNumber(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
