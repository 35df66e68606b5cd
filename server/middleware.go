package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const userIDKey = "user_id"

// authMiddleware checks for a valid bearer token
func (s *Server) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		auth := c.Request().Header.Get("Authorization")
		if auth == "" {
			return fail(http.StatusUnauthorized, "authorization required")
		}

		token := strings.TrimPrefix(auth, "Bearer ")
		if token == auth {
			return fail(http.StatusUnauthorized, "invalid authorization format")
		}

		claims, err := s.parseToken(token)
		if errors.Is(err, jwt.ErrTokenExpired) {
			return fail(http.StatusUnauthorized, "token expired")
		}
		if err != nil {
			return fail(http.StatusUnauthorized, "invalid token")
		}

		c.Set(userIDKey, claims.UserID)
		return next(c)
	}
}

func userID(c echo.Context) string {
	id, _ := c.Get(userIDKey).(string)
	return id
}
