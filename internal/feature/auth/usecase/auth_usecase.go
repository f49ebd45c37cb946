// Package usecase はauthフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"industry_backend/internal/feature/auth/domain"
	"industry_backend/internal/feature/auth/domain/entity"
)

const (
	// minPasswordLength はパスワードの最低文字数を定義します。
	minPasswordLength = 8

	// dummyHash はオペレーター不在時にもbcrypt比較を行うためのハッシュです。
	dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
)

// OperatorRepository はオペレーターの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type OperatorRepository interface {
	// Create は新しいオペレーターを保存します。メール重複時は domain.ErrOperatorExists を返します。
	Create(ctx context.Context, op *entity.Operator) error
	// FindByEmail は存在しない場合 domain.ErrOperatorNotFound を返します。
	FindByEmail(ctx context.Context, email string) (*entity.Operator, error)
}

// JWTGenerator はJWTトークン生成のインターフェースを定義します。
type JWTGenerator interface {
	GenerateToken(operatorID uint, email string) (string, error)
}

// authUsecase はオペレーター認証のビジネスロジックを実装します。
type authUsecase struct {
	operators    OperatorRepository
	jwtGenerator JWTGenerator
	cost         int
}

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。
func NewAuthUsecase(operators OperatorRepository, jwtGenerator JWTGenerator) *authUsecase {
	return &authUsecase{
		operators:    operators,
		jwtGenerator: jwtGenerator,
		cost:         bcrypt.DefaultCost,
	}
}

// Signup はハッシュ化したパスワードでオペレーターを登録します。CLIから呼ばれます。
func (u *authUsecase) Signup(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: at least %d characters", domain.ErrWeakPassword, minPasswordLength)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), u.cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := u.operators.Create(ctx, &entity.Operator{Email: email, PasswordHash: string(hashed)}); err != nil {
		return fmt.Errorf("create operator %s: %w", email, err)
	}
	slog.Info("operator registered", "email", email)
	return nil
}

// Login はオペレーターを認証し、成功時にJWTトークンを返します。
// オペレーターが存在しない場合でもbcrypt比較を実行します。
func (u *authUsecase) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	op, err := u.operators.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrOperatorNotFound) {
		return "", fmt.Errorf("find operator: %w", err)
	}

	hash := dummyHash
	if err == nil {
		hash = op.PasswordHash
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err != nil || compareErr != nil {
		return "", domain.ErrInvalidCredentials
	}

	token, err := u.jwtGenerator.GenerateToken(op.ID, op.Email)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}
