package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nutritrack/calorie-api/internal/core/domain"
)

// RBAC gates a route by minimum role. Roles form an ordered hierarchy, so
// a route open to managers is open to admins too; an unknown or missing
// role never clears the gate.
func RBAC(min domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("role").(string)
			if !domain.Role(role).Valid() || !domain.Role(role).AtLeast(min) {
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}
			return next(c)
		}
	}
}
