// Package adapters はinstrumentsフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"time"

	"github.com/guregu/null/v6"
	"gorm.io/gorm"

	"industry_backend/internal/feature/instruments/domain/entity"
	"industry_backend/internal/feature/instruments/usecase"
)

// InstrumentModel は instruments テーブルの行です。
type InstrumentModel struct {
	Code        string      `gorm:"primaryKey;size:32"`
	NSECode     string      `gorm:"column:nse_code;size:32"`
	BSECode     string      `gorm:"column:bse_code;size:32"`
	Name        string      `gorm:"size:255"`
	Industry    null.String `gorm:"size:255;index"`
	Sector      null.String `gorm:"size:255"`
	SubIndustry null.String `gorm:"size:255"`
	MarketCap   null.Float
	Category    string `gorm:"size:16"`
	UpdatedAt   time.Time
}

// TableName はテーブル名を固定します。
func (InstrumentModel) TableName() string { return "instruments" }

func toModel(in entity.Instrument) InstrumentModel {
	return InstrumentModel{
		Code:        in.Code,
		NSECode:     in.NSECode,
		BSECode:     in.BSECode,
		Name:        in.Name,
		Industry:    in.Industry,
		Sector:      in.Sector,
		SubIndustry: in.SubIndustry,
		MarketCap:   in.MarketCap,
		Category:    string(in.Category),
	}
}

func (m InstrumentModel) toEntity() entity.Instrument {
	return entity.Instrument{
		Code:        m.Code,
		NSECode:     m.NSECode,
		BSECode:     m.BSECode,
		Name:        m.Name,
		Industry:    m.Industry,
		Sector:      m.Sector,
		SubIndustry: m.SubIndustry,
		MarketCap:   m.MarketCap,
		Category:    entity.Category(m.Category),
	}
}

// instrumentGorm はInstrumentRepositoryインターフェースのGORM実装です。
type instrumentGorm struct {
	db *gorm.DB
}

var _ usecase.InstrumentRepository = (*instrumentGorm)(nil)

// NewInstrumentRepository は指定されたDB接続でリポジトリを生成します。
func NewInstrumentRepository(db *gorm.DB) *instrumentGorm {
	return &instrumentGorm{db: db}
}

// ReplaceAll はテーブル全体を1トランザクションで置き換えます。
func (r *instrumentGorm) ReplaceAll(ctx context.Context, instruments []entity.Instrument) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&InstrumentModel{}).Error; err != nil {
			return err
		}
		if len(instruments) == 0 {
			return nil
		}
		rows := make([]InstrumentModel, 0, len(instruments))
		for _, in := range instruments {
			rows = append(rows, toModel(in))
		}
		return tx.CreateInBatches(rows, 500).Error
	})
}

// ListAll はコード順に全銘柄を返します。
func (r *instrumentGorm) ListAll(ctx context.Context) ([]entity.Instrument, error) {
	var rows []InstrumentModel
	if err := r.db.WithContext(ctx).Order("code ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Instrument, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toEntity())
	}
	return out, nil
}
