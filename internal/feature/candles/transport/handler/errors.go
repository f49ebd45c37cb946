// Package handler はcandlesフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"errors"
	"net/http"

	"industry_backend/internal/feature/candles/domain"
)

// statusFor はドメインエラーをHTTPステータスに対応付けます。
func statusFor(err error) int {
	var fe *domain.FetchError
	switch {
	case errors.Is(err, domain.ErrInvalidQuery):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNoData):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRunInProgress):
		return http.StatusConflict
	case errors.As(err, &fe):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
