package ingest

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gignote/gignote-go/internal/errors"
)

// ErrSourceNotFound is returned when the source page responds with 404.
// It propagates unchanged through the whole pipeline so callers can treat
// a missing source differently from a fetch failure.
var ErrSourceNotFound = errors.NewStd("show listing source not found")

const userAgent = "GigNote-Go https://github.com/gignote/gignote-go"

// fetchPage retrieves the raw listing page as text. A 404 response maps to
// ErrSourceNotFound, any other non-200 response is a fatal fetch error.
func (s *Service) fetchPage(ctx context.Context) (string, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.settings.Ingest.SourceURL, nil)
	if err != nil {
		return "", errors.New(err).
			Component("ingest").
			Category(errors.CategoryNetwork).
			Context("url", s.settings.Ingest.SourceURL).
			Build()
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		s.metrics.RecordFetch("error", time.Since(start).Seconds())
		return "", errors.New(err).
			Component("ingest").
			Category(errors.CategoryNetwork).
			Context("url", s.settings.Ingest.SourceURL).
			Build()
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			s.log.Warn("Failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode == http.StatusNotFound {
		s.metrics.RecordFetch("not_found", time.Since(start).Seconds())
		return "", errors.New(ErrSourceNotFound).
			Component("ingest").
			Category(errors.CategoryScraper).
			Context("url", s.settings.Ingest.SourceURL).
			Build()
	}

	if resp.StatusCode != http.StatusOK {
		s.metrics.RecordFetch("error", time.Since(start).Seconds())
		return "", errors.Newf("unexpected status code %d fetching source page", resp.StatusCode).
			Component("ingest").
			Category(errors.CategoryNetwork).
			Context("url", s.settings.Ingest.SourceURL).
			Context("status_code", resp.StatusCode).
			Build()
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		s.metrics.RecordFetch("error", time.Since(start).Seconds())
		return "", errors.New(err).
			Component("ingest").
			Category(errors.CategoryNetwork).
			Context("url", s.settings.Ingest.SourceURL).
			Build()
	}

	s.metrics.RecordFetch("success", time.Since(start).Seconds())
	return string(body), nil
}
