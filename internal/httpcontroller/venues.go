package httpcontroller

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ListVenues returns one page of venues, optionally filtered by a
// case-insensitive substring of the name.
func (s *Server) ListVenues(c echo.Context) error {
	search := c.QueryParam("search")
	perPage := s.Settings.WebServer.PageSize

	_, total, err := s.DS.SearchVenues(search, 1, 0)
	if err != nil {
		return s.handleDatastoreError(c, err, "Failed to list venues")
	}
	limit, offset, pagination := paginate(requestedPage(c), perPage, total)

	venues, _, err := s.DS.SearchVenues(search, limit, offset)
	if err != nil {
		return s.handleDatastoreError(c, err, "Failed to list venues")
	}

	resp := VenueListResponse{Venues: make([]VenueResponse, 0, len(venues)), Pagination: pagination}
	for i := range venues {
		resp.Venues = append(resp.Venues, venueResponse(&venues[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

// GetVenue returns one venue by id.
func (s *Server) GetVenue(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return s.HandleError(c, err, "Invalid venue id", http.StatusBadRequest)
	}
	venue, err := s.DS.GetVenue(id)
	if err != nil {
		return s.handleDatastoreError(c, err, "Venue not found")
	}
	return c.JSON(http.StatusOK, venueResponse(&venue))
}

// GetVenueShows returns all shows played at one venue, most recent first.
func (s *Server) GetVenueShows(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return s.HandleError(c, err, "Invalid venue id", http.StatusBadRequest)
	}
	if _, err := s.DS.GetVenue(id); err != nil {
		return s.handleDatastoreError(c, err, "Venue not found")
	}
	shows, err := s.DS.GetShowsByVenue(id)
	if err != nil {
		return s.handleDatastoreError(c, err, "Failed to list shows")
	}
	return c.JSON(http.StatusOK, showResponses(shows))
}
