package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nutritrack/calorie-api/internal/core/domain"
)

// ctxPrincipal extracts the acting principal injected by the Auth
// middleware and fast-fails before any service call: both claims must be
// present, and the role must be one of the persistable roles — a token
// carrying anything else is structurally valid but operationally unusable.
func ctxPrincipal(c echo.Context) (domain.Principal, error) {
	userName, _ := c.Get("user_name").(string)
	role, _ := c.Get("role").(string)

	if userName == "" || role == "" {
		return domain.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	p := domain.Principal{UserName: userName, Role: domain.Role(role)}
	if !p.Role.Valid() {
		return domain.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "token carries unknown role")
	}

	return p, nil
}
