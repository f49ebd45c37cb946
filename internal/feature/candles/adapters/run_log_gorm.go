package adapters

import (
	"context"
	"time"

	"gorm.io/gorm"

	"industry_backend/internal/feature/candles/domain/entity"
	"industry_backend/internal/feature/candles/usecase"
)

// DefaultRunListLimit は履歴取得件数の既定値です。
const DefaultRunListLimit = 50

type runLogGorm struct {
	db *gorm.DB
}

var _ usecase.RunLog = (*runLogGorm)(nil)

// NewRunLog は pipeline_runs テーブルへの RunLog を生成します。
func NewRunLog(db *gorm.DB) *runLogGorm {
	return &runLogGorm{db: db}
}

// RunModel は pipeline_runs テーブルの行です。
type RunModel struct {
	ID         string    `gorm:"primaryKey;size:36"`
	Source     string    `gorm:"size:16;not null"`
	Status     string    `gorm:"size:16;not null"`
	FromDate   time.Time `gorm:"column:from_date"`
	ToDate     time.Time `gorm:"column:to_date"`
	Incoming   int       `gorm:"not null;default:0"`
	Rows       int       `gorm:"column:row_count;not null;default:0"`
	StartedAt  time.Time `gorm:"not null;index"`
	FinishedAt time.Time
	Error      string `gorm:"type:text"`
}

func (RunModel) TableName() string {
	return "pipeline_runs"
}

func toRunModel(r entity.Run) RunModel {
	return RunModel{
		ID:         r.ID,
		Source:     string(r.Source),
		Status:     string(r.Status),
		FromDate:   r.From,
		ToDate:     r.To,
		Incoming:   r.Incoming,
		Rows:       r.Rows,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Error:      r.Error,
	}
}

func (m RunModel) toEntity() entity.Run {
	return entity.Run{
		ID:         m.ID,
		Source:     entity.Source(m.Source),
		Status:     entity.RunStatus(m.Status),
		From:       m.FromDate,
		To:         m.ToDate,
		Incoming:   m.Incoming,
		Rows:       m.Rows,
		StartedAt:  m.StartedAt,
		FinishedAt: m.FinishedAt,
		Error:      m.Error,
	}
}

func (r *runLogGorm) Record(ctx context.Context, run entity.Run) error {
	m := toRunModel(run)
	return r.db.WithContext(ctx).Create(&m).Error
}

// List は開始時刻の新しい順に最大 limit 件を返します。
func (r *runLogGorm) List(ctx context.Context, limit int) ([]entity.Run, error) {
	if limit <= 0 {
		limit = DefaultRunListLimit
	}
	var rows []RunModel
	if err := r.db.WithContext(ctx).Order("started_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Run, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toEntity())
	}
	return out, nil
}
