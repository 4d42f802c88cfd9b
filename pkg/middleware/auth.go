package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const UserIDContextKey = "user_id"

// TokenVerifier validates a bearer token and returns the user id it
// carries.
type TokenVerifier func(token string) (uint, error)

// NewJWTAuthMiddleware guards routes with a bearer token check and
// stashes the authenticated user id in the echo context.
func NewJWTAuthMiddleware(verify TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"message": "missing or malformed authorization header",
				})
			}

			userID, err := verify(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"message": "invalid or expired token",
				})
			}

			c.Set(UserIDContextKey, userID)
			return next(c)
		}
	}
}

// UserID extracts the authenticated user id placed by the auth middleware.
func UserID(c echo.Context) uint {
	if id, ok := c.Get(UserIDContextKey).(uint); ok {
		return id
	}
	return 0
}
