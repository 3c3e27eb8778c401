package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hirehub/jobboard/internal/core/domain"
)

// Context keys set by the Auth middleware.
const (
	CtxUser     = "user"
	CtxRole     = "role"
	CtxClientID = "client_id"
)

// currentUser extracts the user injected by the Auth middleware. A missing
// user means the route was registered without the middleware.
func currentUser(c echo.Context) (domain.User, error) {
	u, ok := c.Get(CtxUser).(*domain.User)
	if !ok || u == nil || u.ID == "" {
		return domain.User{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return *u, nil
}

// optionalUser is currentUser for routes that also serve anonymous callers.
func optionalUser(c echo.Context) *domain.User {
	u, ok := c.Get(CtxUser).(*domain.User)
	if !ok || u == nil || u.ID == "" {
		return nil
	}
	return u
}

func clientID(c echo.Context) string {
	id, _ := c.Get(CtxClientID).(string)
	return id
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return c.Validate(req)
}
