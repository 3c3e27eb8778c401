package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hirehub/jobboard/internal/core/ports"
)

// JobHandler serves job postings: the public board, the employer's own jobs
// and their applicants.
type JobHandler struct {
	views     ports.ViewService
	mutations ports.MutationService
}

func NewJobHandler(views ports.ViewService, mutations ports.MutationService) *JobHandler {
	return &JobHandler{views: views, mutations: mutations}
}

// List handles GET /v1/jobs.
//
// @Summary      List open jobs
// @Tags         jobs
// @Produce      json
// @Security     ApiKeyAuth
// @Param        search       query     string  false  "Title prefix"
// @Param        type         query     string  false  "Job type"
// @Param        location     query     string  false  "Location prefix"
// @Param        employer_id  query     string  false  "Employer id"
// @Param        limit        query     int     false  "Max rows (1-100)"
// @Success      200          {array}   ports.JobListItem
// @Failure      400          {object}  errorResponse
// @Router       /v1/jobs [get]
func (h *JobHandler) List(c echo.Context) error {
	var q jobListQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}

	items, err := h.views.ListJobs(c.Request().Context(), toJobFilter(q))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// Get handles GET /v1/jobs/:id. Signed-in job seekers see whether they
// already applied.
//
// @Summary      Get a job
// @Tags         jobs
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id   path      string  true  "Job id"
// @Success      200  {object}  ports.JobDetail
// @Failure      404  {object}  errorResponse
// @Router       /v1/jobs/{id} [get]
func (h *JobHandler) Get(c echo.Context) error {
	detail, err := h.views.GetJobDetail(c.Request().Context(), c.Param("id"), optionalUser(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, detail)
}

// Create handles POST /v1/jobs.
//
// @Summary      Post a job
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string      false  "Idempotency key to prevent duplicate posts"
// @Param        body             body      jobRequest  true   "Job details"
// @Success      201              {object}  ports.JobResult
// @Success      200              {object}  ports.JobResult  "Replayed idempotent request"
// @Failure      400              {object}  errorResponse
// @Failure      403              {object}  errorResponse
// @Router       /v1/jobs [post]
func (h *JobHandler) Create(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req jobRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	idempotencyKey := c.Request().Header.Get("Idempotency-Key")
	result, err := h.mutations.PostJob(c.Request().Context(), user, toJobInput(req, idempotencyKey))
	if err != nil {
		return err
	}
	if result.AlreadyExisted {
		return c.JSON(http.StatusOK, result)
	}
	return c.JSON(http.StatusCreated, result)
}

// Update handles PUT /v1/jobs/:id.
//
// @Summary      Edit a job
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Security     BearerAuth
// @Param        id    path      string      true  "Job id"
// @Param        body  body      jobRequest  true  "Job details"
// @Success      200   {object}  ports.JobResult
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/jobs/{id} [put]
func (h *JobHandler) Update(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req jobRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.mutations.UpdateJob(c.Request().Context(), user, c.Param("id"), toJobInput(req, ""))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// SetStatus handles PATCH /v1/jobs/:id/status.
//
// @Summary      Open or close a job
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Security     BearerAuth
// @Param        id    path      string            true  "Job id"
// @Param        body  body      jobStatusRequest  true  "Target status"
// @Success      200   {object}  domain.Job
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/jobs/{id}/status [patch]
func (h *JobHandler) SetStatus(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req jobStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	job, err := h.mutations.SetJobStatus(c.Request().Context(), user, c.Param("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, job)
}

// Delete handles DELETE /v1/jobs/:id. A deletion that left the company's job
// count stale answers 200 with the warning instead of 204.
//
// @Summary      Delete a job
// @Tags         jobs
// @Produce      json
// @Security     ApiKeyAuth
// @Security     BearerAuth
// @Param        id   path      string  true  "Job id"
// @Success      204
// @Success      200  {object}  ports.JobResult  "Deleted with a warning"
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/jobs/{id} [delete]
func (h *JobHandler) Delete(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	result, err := h.mutations.DeleteJob(c.Request().Context(), user, c.Param("id"))
	if err != nil {
		return err
	}
	if result.Warning != "" {
		return c.JSON(http.StatusOK, result)
	}
	return c.NoContent(http.StatusNoContent)
}

// Mine handles GET /v1/employer/jobs.
//
// @Summary      List the employer's jobs
// @Tags         jobs
// @Produce      json
// @Security     ApiKeyAuth
// @Security     BearerAuth
// @Success      200  {array}   ports.JobListItem
// @Failure      403  {object}  errorResponse
// @Router       /v1/employer/jobs [get]
func (h *JobHandler) Mine(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	items, err := h.views.ListEmployerJobs(c.Request().Context(), user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// Applicants handles GET /v1/jobs/:id/applicants.
//
// @Summary      List a job's applicants
// @Tags         jobs
// @Produce      json
// @Security     ApiKeyAuth
// @Security     BearerAuth
// @Param        id   path      string  true  "Job id"
// @Success      200  {array}   ports.ApplicantRow
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/jobs/{id}/applicants [get]
func (h *JobHandler) Applicants(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	rows, err := h.views.ListJobApplicants(c.Request().Context(), user, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rows)
}
