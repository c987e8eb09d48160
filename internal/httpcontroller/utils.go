package httpcontroller

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/gignote/gignote-go/internal/errors"
)

// ErrorResponse is the JSON shape of all API errors.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Code          int    `json:"code"`
	CorrelationID string `json:"correlation_id"`
}

// NewErrorResponse builds an error response with a short correlation id
// for log lookups.
func NewErrorResponse(err error, message string, code int) *ErrorResponse {
	resp := &ErrorResponse{
		Message:       message,
		Code:          code,
		CorrelationID: uuid.New().String()[:8],
	}
	if err != nil {
		resp.Error = err.Error()
	} else {
		resp.Error = message
	}
	return resp
}

// HandleError logs the error and writes the JSON error response.
func (s *Server) HandleError(ctx echo.Context, err error, message string, code int) error {
	resp := NewErrorResponse(err, message, code)
	s.webLogger.Error("API Error",
		"correlation_id", resp.CorrelationID,
		"message", message,
		"error", resp.Error,
		"code", code,
		"path", ctx.Request().URL.Path,
		"method", ctx.Request().Method,
		"ip", ctx.RealIP(),
	)
	return ctx.JSON(code, resp)
}

// statusForError maps error categories to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.HasCategory(err, errors.CategoryNotFound):
		return http.StatusNotFound
	case errors.HasCategory(err, errors.CategoryValidation):
		return http.StatusBadRequest
	case errors.HasCategory(err, errors.CategoryConflict):
		return http.StatusConflict
	case errors.HasCategory(err, errors.CategoryAuth):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// handleDatastoreError writes an error response with the status derived
// from the error's category.
func (s *Server) handleDatastoreError(ctx echo.Context, err error, message string) error {
	return s.HandleError(ctx, err, message, statusForError(err))
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalPages int   `json:"total_pages"`
	TotalItems int64 `json:"total_items"`
}

// requestedPage reads the page query parameter. A missing or
// non-numeric value means the first page.
func requestedPage(c echo.Context) int {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// paginate turns a requested page into limit and offset. A page past the
// end clamps to the last page rather than returning an empty list.
func paginate(page, perPage int, total int64) (limit, offset int, p Pagination) {
	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}
	return perPage, (page - 1) * perPage, Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
		TotalItems: total,
	}
}

// pathID parses the :id route parameter.
func pathID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, errors.Newf("invalid id %q", c.Param("id")).
			Component("httpcontroller").
			Category(errors.CategoryValidation).
			Build()
	}
	return uint(id), nil
}

// formatTime renders timestamps for JSON responses.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
