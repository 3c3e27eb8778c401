package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hirehub/jobboard/internal/core/ports"
)

type CompanyHandler struct {
	views ports.ViewService
}

func NewCompanyHandler(views ports.ViewService) *CompanyHandler {
	return &CompanyHandler{views: views}
}

// List handles GET /v1/companies.
//
// @Summary      Company directory
// @Tags         companies
// @Produce      json
// @Security     ApiKeyAuth
// @Param        industry  query     string  false  "Industry"
// @Param        size      query     string  false  "Company size"
// @Param        search    query     string  false  "Matches name, description or industry"
// @Success      200       {array}   ports.CompanyData
// @Router       /v1/companies [get]
func (h *CompanyHandler) List(c echo.Context) error {
	var q companyListQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}

	companies, err := h.views.ListCompanies(c.Request().Context(), ports.CompanyFilter{
		Industry: strings.TrimSpace(q.Industry),
		Size:     strings.TrimSpace(q.Size),
		Search:   strings.TrimSpace(q.Search),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, companies)
}

// Get handles GET /v1/companies/:id.
//
// @Summary      Company page with open jobs
// @Tags         companies
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id   path      string  true  "Employer id"
// @Success      200  {object}  ports.CompanyPage
// @Failure      404  {object}  errorResponse
// @Router       /v1/companies/{id} [get]
func (h *CompanyHandler) Get(c echo.Context) error {
	page, err := h.views.GetCompany(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}
