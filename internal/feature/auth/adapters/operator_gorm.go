// Package adapters はauthフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"industry_backend/internal/feature/auth/domain"
	"industry_backend/internal/feature/auth/domain/entity"
	"industry_backend/internal/feature/auth/usecase"
)

// OperatorModel is the GORM model for the operators table.
type OperatorModel struct {
	ID           uint   `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName returns the table name for GORM.
func (OperatorModel) TableName() string { return "operators" }

// operatorGorm はOperatorRepositoryインターフェースのGORM実装です。
type operatorGorm struct {
	db *gorm.DB
}

var _ usecase.OperatorRepository = (*operatorGorm)(nil)

// NewOperatorRepository は operatorGorm を生成します。
func NewOperatorRepository(db *gorm.DB) *operatorGorm {
	return &operatorGorm{db: db}
}

// Create はオペレーターを追加し、採番されたIDと時刻を op に反映します。
func (r *operatorGorm) Create(ctx context.Context, op *entity.Operator) error {
	m := OperatorModel{Email: op.Email, PasswordHash: op.PasswordHash}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if isDuplicateKey(err) {
			return domain.ErrOperatorExists
		}
		return err
	}
	op.ID, op.CreatedAt, op.UpdatedAt = m.ID, m.CreatedAt, m.UpdatedAt
	return nil
}

// FindByEmail はメールアドレスでオペレーターを取得します。
func (r *operatorGorm) FindByEmail(ctx context.Context, email string) (*entity.Operator, error) {
	var m OperatorModel
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOperatorNotFound
		}
		return nil, err
	}
	return &entity.Operator{
		ID:           m.ID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}, nil
}

// isDuplicateKey は一意制約違反を判定します。
// MySQLはエラー番号1062、それ以外はgormの TranslateError による変換結果を見ます。
func isDuplicateKey(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
