package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hirehub/jobboard/internal/core/ports"
)

// ApplicationHandler serves job applications for both sides: submission and
// the seeker's list, and the employer's review.
type ApplicationHandler struct {
	views     ports.ViewService
	mutations ports.MutationService
}

func NewApplicationHandler(views ports.ViewService, mutations ports.MutationService) *ApplicationHandler {
	return &ApplicationHandler{views: views, mutations: mutations}
}

// Submit handles POST /v1/applications.
//
// @Summary      Apply to a job
// @Tags         applications
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Security     BearerAuth
// @Param        body  body      applyRequest  true  "Application"
// @Success      201   {object}  ports.ApplyResult
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/applications [post]
func (h *ApplicationHandler) Submit(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req applyRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.mutations.SubmitApplication(c.Request().Context(), user, ports.ApplyInput{
		JobID:       req.JobID,
		ResumeURL:   req.ResumeURL,
		CoverLetter: req.CoverLetter,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, result)
}

// Mine handles GET /v1/applications/mine.
//
// @Summary      List my applications
// @Tags         applications
// @Produce      json
// @Security     ApiKeyAuth
// @Security     BearerAuth
// @Success      200  {array}   ports.SeekerApplicationRow
// @Failure      401  {object}  errorResponse
// @Router       /v1/applications/mine [get]
func (h *ApplicationHandler) Mine(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	rows, err := h.views.ListMyApplications(c.Request().Context(), user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rows)
}

// SetStatus handles PATCH /v1/applications/:id/status. Any known status
// label is accepted.
//
// @Summary      Review an application
// @Tags         applications
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Security     BearerAuth
// @Param        id    path      string                    true  "Application id"
// @Param        body  body      applicationStatusRequest  true  "Target status"
// @Success      200   {object}  domain.Application
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/applications/{id}/status [patch]
func (h *ApplicationHandler) SetStatus(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req applicationStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	app, err := h.mutations.SetApplicationStatus(c.Request().Context(), user, c.Param("id"), req.Status, req.Notes)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, app)
}

// UpdateCoverLetter handles PATCH /v1/applications/:id/cover-letter.
//
// @Summary      Edit a cover letter
// @Tags         applications
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Security     BearerAuth
// @Param        id    path      string              true  "Application id"
// @Param        body  body      coverLetterRequest  true  "Cover letter"
// @Success      200   {object}  domain.Application
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/applications/{id}/cover-letter [patch]
func (h *ApplicationHandler) UpdateCoverLetter(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req coverLetterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	app, err := h.mutations.UpdateCoverLetter(c.Request().Context(), user, c.Param("id"), req.CoverLetter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, app)
}
