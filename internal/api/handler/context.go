package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/smartcare/smartcare-api/internal/api/middleware"
)

// ctxUserID returns the authenticated user id, or 401 when the Auth
// middleware did not run.
func ctxUserID(c echo.Context) (string, error) {
	id, _ := c.Get(middleware.CtxUserID).(string)
	if id == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return id, nil
}

// bind decodes the request body into req and validates it.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return invalidPayload
	}
	return c.Validate(req)
}
