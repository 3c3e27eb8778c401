package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hirehub/jobboard/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that maps domain errors
// to status codes and renders {"error": "<message>"}. Unexpected errors are
// logged and never leak their cause to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	var ae *domain.AuthError
	if errors.As(err, &ae) {
		return authStatus(ae.Code), errorResponse{Error: ae.Message(), Code: string(ae.Code)}
	}

	var te *domain.TransitionError
	if errors.As(err, &te) {
		return http.StatusUnprocessableEntity, errorResponse{Error: te.Error()}
	}

	switch {
	case errors.Is(err, domain.ErrJobNotFound),
		errors.Is(err, domain.ErrApplicationNotFound),
		errors.Is(err, domain.ErrProfileNotFound),
		errors.Is(err, domain.ErrCompanyNotFound),
		errors.Is(err, domain.ErrFileNotFound):
		return http.StatusNotFound, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, errorResponse{Error: "access forbidden"}
	case errors.Is(err, domain.ErrAlreadyApplied),
		errors.Is(err, domain.ErrAlreadyExists),
		errors.Is(err, domain.ErrJobClosed),
		errors.Is(err, domain.ErrDeadlinePassed):
		return http.StatusConflict, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusUnsupportedMediaType, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidJob),
		errors.Is(err, domain.ErrResumeRequired),
		errors.Is(err, domain.ErrUnknownFileKind):
		return http.StatusBadRequest, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusUnauthorized, errorResponse{Error: "session not found"}
	case errors.Is(err, domain.ErrOffline):
		return http.StatusServiceUnavailable, errorResponse{Error: "service is offline, try again later"}
	case errors.Is(err, domain.ErrUploadFailed):
		log.Warn().Err(err).Str("path", c.Path()).Msg("upload failed")
		return http.StatusBadGateway, errorResponse{Error: "upload failed, please try again"}
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}

func authStatus(code domain.AuthCode) int {
	switch code {
	case domain.AuthInvalidCredentials, domain.AuthInvalidToken:
		return http.StatusUnauthorized
	case domain.AuthUserNotFound:
		return http.StatusNotFound
	case domain.AuthEmailInUse:
		return http.StatusConflict
	case domain.AuthTooManyRequests:
		return http.StatusTooManyRequests
	case domain.AuthNetwork, domain.AuthOffline:
		return http.StatusServiceUnavailable
	}
	return http.StatusBadRequest
}
