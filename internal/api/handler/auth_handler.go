package handler

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hirehub/jobboard/internal/core/domain"
	"github.com/hirehub/jobboard/internal/core/ports"
)

// HeaderClientID names the browser tab (or device) a session belongs to.
// Sign-in routes mint one when the caller has none and echo it back.
const HeaderClientID = "X-Client-ID"

type AuthHandler struct {
	sessions ports.SessionService
}

func NewAuthHandler(sessions ports.SessionService) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

type registerRequest struct {
	Email           string `json:"email" validate:"required"`
	Password        string `json:"password" validate:"required"`
	Role            string `json:"role" validate:"omitempty,oneof=jobseeker employer"`
	FullName        string `json:"full_name,omitempty"`
	CompanyName     string `json:"company_name,omitempty"`
	CompanyIndustry string `json:"company_industry,omitempty"`
	CompanySize     string `json:"company_size,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type federatedRequest struct {
	IDToken string `json:"id_token,omitempty"`
	Error   string `json:"error,omitempty"`
}

type restoreRequest struct {
	Token string `json:"token,omitempty"`
}

type meResponse struct {
	User  domain.User         `json:"user"`
	State domain.SessionState `json:"state"`
}

// sessionClientID returns the caller's client id, minting one when absent.
func sessionClientID(c echo.Context) string {
	id := strings.TrimSpace(c.Request().Header.Get(HeaderClientID))
	if id == "" {
		id = uuid.NewString()
	}
	c.Response().Header().Set(HeaderClientID, id)
	return id
}

// Register creates a new account and signs it in.
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        X-Client-ID  header    string           false  "Client id; minted when absent"
// @Param        body         body      registerRequest  true   "Registration details"
// @Success      201          {object}  ports.AuthSession
// @Failure      400          {object}  errorResponse
// @Failure      409          {object}  errorResponse
// @Failure      503          {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	session, err := h.sessions.SignUp(c.Request().Context(), sessionClientID(c), ports.RegisterInput{
		Email:           req.Email,
		Password:        req.Password,
		Role:            req.Role,
		FullName:        req.FullName,
		CompanyName:     req.CompanyName,
		CompanyIndustry: req.CompanyIndustry,
		CompanySize:     req.CompanySize,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, session)
}

// Login signs in with email and password.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        X-Client-ID  header    string        false  "Client id; minted when absent"
// @Param        body         body      loginRequest  true   "Login credentials"
// @Success      200          {object}  ports.AuthSession
// @Failure      400          {object}  errorResponse
// @Failure      401          {object}  errorResponse
// @Failure      429          {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	session, err := h.sessions.SignInWithPassword(c.Request().Context(), sessionClientID(c), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, session)
}

// Federated completes a federated consent flow.
//
// @Summary      Federated sign-in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        X-Client-ID  header    string            false  "Client id; minted when absent"
// @Param        body         body      federatedRequest  true   "Provider ID token or the consent flow's error code"
// @Success      200          {object}  ports.AuthSession
// @Failure      400          {object}  errorResponse
// @Failure      401          {object}  errorResponse
// @Router       /auth/federated [post]
func (h *AuthHandler) Federated(c echo.Context) error {
	var req federatedRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	session, err := h.sessions.SignInWithFederated(c.Request().Context(), sessionClientID(c), ports.FederatedAssertion{
		IDToken: req.IDToken,
		Error:   req.Error,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, session)
}

// Restore re-establishes a session from a previously issued token.
//
// @Summary      Restore a session
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        body  body      restoreRequest  false  "Token; the Authorization header is used when omitted"
// @Success      200   {object}  ports.AuthSession
// @Failure      401   {object}  errorResponse
// @Router       /auth/restore [post]
func (h *AuthHandler) Restore(c echo.Context) error {
	var req restoreRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	token := req.Token
	if token == "" {
		token = BearerToken(c)
	}
	if token == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
	}

	session, err := h.sessions.Restore(c.Request().Context(), token)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, session)
}

// Logout ends the caller's session. A caller whose token is already revoked
// or expired has no session left to end, so logging out again also succeeds.
//
// @Summary      Logout
// @Tags         auth
// @Security     ApiKeyAuth
// @Security     BearerAuth
// @Success      204
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if optionalUser(c) == nil {
		return c.NoContent(http.StatusNoContent)
	}
	if err := h.sessions.SignOut(c.Request().Context(), clientID(c)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Refresh rotates the caller's token.
//
// @Summary      Refresh the session token
// @Tags         auth
// @Produce      json
// @Security     ApiKeyAuth
// @Security     BearerAuth
// @Success      200  {object}  ports.AuthSession
// @Failure      401  {object}  errorResponse
// @Failure      503  {object}  errorResponse
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	session, err := h.sessions.Refresh(c.Request().Context(), clientID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, session)
}

// Me returns the signed-in user.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     ApiKeyAuth
// @Security     BearerAuth
// @Success      200  {object}  meResponse
// @Failure      401  {object}  errorResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	state, err := h.sessions.State(c.Request().Context(), clientID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, meResponse{User: user, State: state})
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(c echo.Context) string {
	parts := strings.SplitN(c.Request().Header.Get(echo.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
