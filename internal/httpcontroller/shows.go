package httpcontroller

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ListShows returns one page of shows, most recent first.
func (s *Server) ListShows(c echo.Context) error {
	total, err := s.DS.CountShows()
	if err != nil {
		return s.handleDatastoreError(c, err, "Failed to list shows")
	}
	limit, offset, pagination := paginate(requestedPage(c), s.Settings.WebServer.PageSize, total)

	shows, _, err := s.DS.GetShows(limit, offset)
	if err != nil {
		return s.handleDatastoreError(c, err, "Failed to list shows")
	}
	return c.JSON(http.StatusOK, ShowListResponse{Shows: showResponses(shows), Pagination: pagination})
}

// GetShow returns one show with its artist and venue.
func (s *Server) GetShow(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return s.HandleError(c, err, "Invalid show id", http.StatusBadRequest)
	}
	show, err := s.DS.GetShow(id)
	if err != nil {
		return s.handleDatastoreError(c, err, "Show not found")
	}
	return c.JSON(http.StatusOK, showResponse(&show))
}

// GetShowNotes returns the notes posted for one show, newest first.
func (s *Server) GetShowNotes(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return s.HandleError(c, err, "Invalid show id", http.StatusBadRequest)
	}
	if _, err := s.DS.GetShow(id); err != nil {
		return s.handleDatastoreError(c, err, "Show not found")
	}
	notes, err := s.DS.GetNotesByShow(id)
	if err != nil {
		return s.handleDatastoreError(c, err, "Failed to list notes")
	}
	return c.JSON(http.StatusOK, noteResponses(notes))
}
