package httpcontroller

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gignote/gignote-go/internal/errors"
	"github.com/gignote/gignote-go/internal/ingest"
)

// Populate runs the ingest pipeline against the configured source.
// Allowed for an admin session or a request carrying the scheduler
// token; anyone else gets 403 and nothing is written.
func (s *Server) Populate(c echo.Context) error {
	if !s.Security.CanTriggerIngest(c) {
		return s.HandleError(c, nil, "Not allowed to trigger ingest", http.StatusForbidden)
	}
	if s.Ingest == nil {
		return s.HandleError(c, nil, "Ingest service not configured", http.StatusServiceUnavailable)
	}

	if err := s.Ingest.Run(c.Request().Context()); err != nil {
		switch {
		case errors.Is(err, ingest.ErrSourceNotFound):
			return s.HandleError(c, err, "Source page not found", http.StatusBadGateway)
		case errors.Is(err, ingest.ErrMalformedSource):
			return s.HandleError(c, err, "Source page markup has changed", http.StatusBadGateway)
		default:
			return s.HandleError(c, err, "Ingest run failed", http.StatusInternalServerError)
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
