package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/jengzang/riskdash-backend/internal/apperr"
	"github.com/jengzang/riskdash-backend/pkg/response"
)

// ErrMissingToken is returned when no bearer token is present
var ErrMissingToken = errors.New("missing bearer token")

// BearerAuth requires an HS256 token signed with secret
func BearerAuth(secret []byte) gin.HandlerFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	return func(c *gin.Context) {
		raw, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			response.Error(c, http.StatusUnauthorized, apperr.Unauthorized, err.Error())
			return
		}

		claims := jwt.RegisteredClaims{}
		token, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
			return secret, nil
		})
		if err != nil || !token.Valid {
			response.Error(c, http.StatusUnauthorized, apperr.Unauthorized, "invalid token")
			return
		}

		c.Set("subject", claims.Subject)
		c.Next()
	}
}

func bearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(token), nil
}
