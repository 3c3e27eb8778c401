package handler

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hirehub/jobboard/internal/core/domain"
	"github.com/hirehub/jobboard/internal/core/ports"
)

// blobReader streams stored objects.
type blobReader interface {
	Open(ctx context.Context, path string) (io.ReadCloser, *domain.StoredFile, error)
}

// FileHandler serves uploads: resumes, avatars and company logos.
type FileHandler struct {
	mutations ports.MutationService
	blobs     blobReader
	sessions  sessionUserSetter
	log       zerolog.Logger
}

func NewFileHandler(mutations ports.MutationService, blobs blobReader, sessions sessionUserSetter, log zerolog.Logger) *FileHandler {
	return &FileHandler{mutations: mutations, blobs: blobs, sessions: sessions, log: log}
}

// Upload handles POST /v1/files (multipart/form-data).
//
// @Summary      Upload a file
// @Tags         files
// @Accept       mpfd
// @Produce      json
// @Security     ApiKeyAuth
// @Security     BearerAuth
// @Param        kind  formData  string  true  "resume, avatar or company_logo"
// @Param        file  formData  file    true  "File (max 5MB)"
// @Success      201   {object}  ports.UploadResult
// @Failure      400   {object}  errorResponse
// @Failure      413   {object}  errorResponse
// @Failure      415   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /v1/files [post]
func (h *FileHandler) Upload(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	kind, err := domain.ParseFileKind(c.FormValue("kind"))
	if err != nil {
		return err
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	if fh.Size > domain.MaxUploadBytes {
		return domain.ErrFileTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable file")
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, domain.MaxUploadBytes+1))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable file")
	}

	contentType := fh.Header.Get(echo.HeaderContentType)
	if contentType == "" || contentType == echo.MIMEOctetStream {
		contentType = http.DetectContentType(data)
	}

	result, err := h.mutations.Upload(c.Request().Context(), user, ports.UploadInput{
		Kind:        kind,
		FileName:    fh.Filename,
		ContentType: contentType,
		Data:        data,
	})
	if err != nil {
		return err
	}
	if result.User != nil {
		syncSessionUser(c, h.sessions, h.log, *result.User)
	}
	return c.JSON(http.StatusCreated, result)
}

// List handles GET /v1/files?kind=resume.
//
// @Summary      List my files
// @Tags         files
// @Produce      json
// @Security     ApiKeyAuth
// @Security     BearerAuth
// @Param        kind  query     string  true  "resume, avatar or company_logo"
// @Success      200   {array}   domain.StoredFile
// @Failure      400   {object}  errorResponse
// @Router       /v1/files [get]
func (h *FileHandler) List(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	kind, err := domain.ParseFileKind(c.QueryParam("kind"))
	if err != nil {
		return err
	}
	files, err := h.mutations.ListFiles(c.Request().Context(), user, kind)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, files)
}

// Delete handles DELETE /v1/files?path=resumes/<uid>/<name>.
//
// @Summary      Delete one of my files
// @Tags         files
// @Security     ApiKeyAuth
// @Security     BearerAuth
// @Param        path  query  string  true  "Stored path"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/files [delete]
func (h *FileHandler) Delete(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	path := strings.TrimPrefix(c.QueryParam("path"), "/")
	if path == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "path is required")
	}
	if err := h.mutations.DeleteFile(c.Request().Context(), user, path); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Download handles GET /files/*, the URLs handed out on upload.
//
// @Summary      Download a stored file
// @Tags         files
// @Produce      octet-stream
// @Param        path  path  string  true  "Stored path"
// @Success      200
// @Failure      404  {object}  errorResponse
// @Router       /files/{path} [get]
func (h *FileHandler) Download(c echo.Context) error {
	path := c.Param("*")
	if path == "" || strings.Contains(path, "..") {
		return domain.ErrFileNotFound
	}

	rc, file, err := h.blobs.Open(c.Request().Context(), path)
	if err != nil {
		return err
	}
	defer rc.Close()

	contentType := file.ContentType
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return c.Stream(http.StatusOK, contentType, rc)
}
