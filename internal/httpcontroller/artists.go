package httpcontroller

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ListArtists returns one page of artists, optionally filtered by a
// case-insensitive substring of the name.
func (s *Server) ListArtists(c echo.Context) error {
	search := c.QueryParam("search")
	perPage := s.Settings.WebServer.PageSize

	_, total, err := s.DS.SearchArtists(search, 1, 0)
	if err != nil {
		return s.handleDatastoreError(c, err, "Failed to list artists")
	}
	limit, offset, pagination := paginate(requestedPage(c), perPage, total)

	artists, _, err := s.DS.SearchArtists(search, limit, offset)
	if err != nil {
		return s.handleDatastoreError(c, err, "Failed to list artists")
	}

	resp := ArtistListResponse{Artists: make([]ArtistResponse, 0, len(artists)), Pagination: pagination}
	for i := range artists {
		resp.Artists = append(resp.Artists, artistResponse(&artists[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

// GetArtist returns one artist by id.
func (s *Server) GetArtist(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return s.HandleError(c, err, "Invalid artist id", http.StatusBadRequest)
	}
	artist, err := s.DS.GetArtist(id)
	if err != nil {
		return s.handleDatastoreError(c, err, "Artist not found")
	}
	return c.JSON(http.StatusOK, artistResponse(&artist))
}

// GetArtistShows returns all shows played by one artist, most recent first.
func (s *Server) GetArtistShows(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return s.HandleError(c, err, "Invalid artist id", http.StatusBadRequest)
	}
	if _, err := s.DS.GetArtist(id); err != nil {
		return s.handleDatastoreError(c, err, "Artist not found")
	}
	shows, err := s.DS.GetShowsByArtist(id)
	if err != nil {
		return s.handleDatastoreError(c, err, "Failed to list shows")
	}
	return c.JSON(http.StatusOK, showResponses(shows))
}
