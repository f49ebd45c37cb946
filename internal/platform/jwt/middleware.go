// Package jwtmw issues and verifies the operator tokens guarding the admin endpoints.
package jwtmw

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"industry_backend/internal/api"
)

const (
	ContextOperatorID    = "operatorID"
	ContextOperatorEmail = "operatorEmail"
)

// OperatorRequired returns a Gin middleware that admits only requests
// carrying a valid operator token.
func OperatorRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: "missing bearer token"})
			return
		}
		tokenStr := strings.TrimPrefix(auth, "Bearer ")

		secret := os.Getenv(EnvKeyJWTSecret)
		if secret == "" {
			c.AbortWithStatusJSON(http.StatusInternalServerError, api.ErrorResponse{Error: "server misconfigured"})
			return
		}

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			// HMAC only
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: "invalid token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || claims["role"] != RoleOperator {
			c.AbortWithStatusJSON(http.StatusForbidden, api.ErrorResponse{Error: "operator role required"})
			return
		}
		if sub, ok := claims["sub"].(float64); ok { // JWT numbers are decoded as float64
			c.Set(ContextOperatorID, uint(sub))
		}
		if email, ok := claims["email"].(string); ok {
			c.Set(ContextOperatorEmail, email)
		}
		c.Next()
	}
}
