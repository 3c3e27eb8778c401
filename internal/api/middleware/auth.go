package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/hirehub/jobboard/internal/core/domain"
)

// HeaderAPIKey carries the project's API key on every /auth and /v1 request.
const HeaderAPIKey = "X-API-Key"

// Authenticator resolves a bearer token to its user and client id.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, string, error)
}

// Auth validates the bearer token and injects the user, role and client id
// into the context.
func Auth(sessions Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			token, ok := bearer(authHeader)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			user, clientID, err := sessions.Authenticate(c.Request().Context(), token)
			if err != nil {
				return authFailure(err)
			}

			setClaims(c, user, clientID)
			return next(c)
		}
	}
}

// OptionalAuth is Auth for routes that also serve anonymous callers: a
// missing or unusable token continues without a user.
func OptionalAuth(sessions Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearer(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return next(c)
			}
			if user, clientID, err := sessions.Authenticate(c.Request().Context(), token); err == nil {
				setClaims(c, user, clientID)
			}
			return next(c)
		}
	}
}

// APIKey rejects requests whose X-API-Key header does not match key.
func APIKey(key string) echo.MiddlewareFunc {
	return echomiddleware.KeyAuthWithConfig(echomiddleware.KeyAuthConfig{
		KeyLookup: "header:" + HeaderAPIKey,
		Validator: func(got string, _ echo.Context) (bool, error) {
			return subtle.ConstantTimeCompare([]byte(got), []byte(key)) == 1, nil
		},
		ErrorHandler: func(error, echo.Context) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing or invalid API key")
		},
	})
}

func bearer(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func setClaims(c echo.Context, user *domain.User, clientID string) {
	c.Set("user", user)
	c.Set("role", user.Role)
	c.Set("client_id", clientID)
}

func authFailure(err error) error {
	var ae *domain.AuthError
	if !errors.As(err, &ae) {
		return err
	}
	if ae.Code == domain.AuthOffline || ae.Code == domain.AuthNetwork {
		return echo.NewHTTPError(http.StatusServiceUnavailable, ae.Message())
	}
	return echo.NewHTTPError(http.StatusUnauthorized, ae.Message())
}
