package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func setupRouter(checks map[string]Pinger) *gin.Engine {
	h := NewHealthHandler(checks)
	r := gin.New()
	r.GET("/healthz", h.Health)
	r.HEAD("/healthz", h.Health)
	r.OPTIONS("/healthz", h.Health)
	return r
}

func up(context.Context) error   { return nil }
func down(context.Context) error { return errors.New("connection refused") }

// TestHealth はメソッドと依存先の状態ごとのステータスと本文を検証します。
func TestHealth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		method         string
		checks         map[string]Pinger
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "GET no dependencies",
			method:         http.MethodGet,
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"ok","dependencies":{}}`,
		},
		{
			name:           "GET all up",
			method:         http.MethodGet,
			checks:         map[string]Pinger{"db": PingFunc(up), "redis": PingFunc(up)},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"ok","dependencies":{"db":"up","redis":"up"}}`,
		},
		{
			name:           "GET redis down",
			method:         http.MethodGet,
			checks:         map[string]Pinger{"db": PingFunc(up), "redis": PingFunc(down)},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   `{"status":"degraded","dependencies":{"db":"up","redis":"down"}}`,
		},
		{
			name:           "HEAD degraded has no body",
			method:         http.MethodHead,
			checks:         map[string]Pinger{"db": PingFunc(down)},
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name:           "OPTIONS skips checks",
			method:         http.MethodOptions,
			checks:         map[string]Pinger{"db": PingFunc(down)},
			expectedStatus: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			setupRouter(tt.checks).ServeHTTP(w, httptest.NewRequest(tt.method, "/healthz", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, w.Body.String())
			} else {
				assert.Empty(t, w.Body.String())
			}
		})
	}
}
