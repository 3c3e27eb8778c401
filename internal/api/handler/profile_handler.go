package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hirehub/jobboard/internal/core/domain"
	"github.com/hirehub/jobboard/internal/core/ports"
)

// sessionUserSetter refreshes the user cached on a session after a profile
// change.
type sessionUserSetter interface {
	SetUser(ctx context.Context, clientID string, user domain.User) error
}

// ProfileHandler serves the signed-in user's profile.
type ProfileHandler struct {
	profiles  ports.ProfileRepository
	mutations ports.MutationService
	sessions  sessionUserSetter
	log       zerolog.Logger
}

func NewProfileHandler(profiles ports.ProfileRepository, mutations ports.MutationService, sessions sessionUserSetter, log zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, mutations: mutations, sessions: sessions, log: log}
}

// Get handles GET /v1/profile.
//
// @Summary      Get my profile
// @Tags         profile
// @Produce      json
// @Security     ApiKeyAuth
// @Security     BearerAuth
// @Success      200  {object}  domain.Profile
// @Failure      404  {object}  errorResponse
// @Failure      503  {object}  errorResponse
// @Router       /v1/profile [get]
func (h *ProfileHandler) Get(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	p, err := h.profiles.FindByID(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Update handles PATCH /v1/profile. Omitted fields are left untouched.
//
// @Summary      Update my profile
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Security     BearerAuth
// @Param        body  body      profileUpdateRequest  true  "Fields to change"
// @Success      200   {object}  ports.ProfileResult
// @Failure      400   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /v1/profile [patch]
func (h *ProfileHandler) Update(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req profileUpdateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.mutations.UpdateProfile(c.Request().Context(), user, toProfileUpdate(req))
	if err != nil {
		return err
	}
	syncSessionUser(c, h.sessions, h.log, result.User)
	return c.JSON(http.StatusOK, result)
}

func syncSessionUser(c echo.Context, sessions sessionUserSetter, log zerolog.Logger, user domain.User) {
	if sessions == nil {
		return
	}
	if err := sessions.SetUser(c.Request().Context(), clientID(c), user); err != nil {
		log.Warn().Err(err).Str("uid", user.ID).Msg("session user not refreshed")
	}
}
