package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kgwiazdak/sprint-planning-copilot/pkg/jwt"
)

// RequireBearerToken guards mutating routes with a service bearer token.
// A nil manager disables the check, which is how local development runs.
func RequireBearerToken(manager *jwt.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if manager == nil {
				return next(c)
			}

			header := c.Request().Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				return c.JSON(http.StatusUnauthorized, map[string]interface{}{
					"error":   "unauthorized",
					"message": "missing bearer token",
				})
			}

			claims, err := manager.ValidateToken(token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]interface{}{
					"error":   "unauthorized",
					"message": "invalid bearer token",
				})
			}

			c.Set("subject", claims.Subject)
			return next(c)
		}
	}
}
