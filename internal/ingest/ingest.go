// Package ingest implements the show data ingest pipeline: it scrapes the
// source venue's past shows listing and seeds the database with venues,
// artists and shows. The pipeline runs five sequential stages, fetch,
// parse, enrich, normalize and upsert, with data flowing strictly forward.
package ingest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gignote/gignote-go/internal/conf"
	"github.com/gignote/gignote-go/internal/datastore"
	"github.com/gignote/gignote-go/internal/logging"
	"github.com/gignote/gignote-go/internal/observability/metrics"
)

// Service runs the ingest pipeline against a datastore.
type Service struct {
	settings *conf.Settings
	ds       datastore.Interface
	client   *http.Client
	metrics  *metrics.IngestMetrics
	location *time.Location
	log      *slog.Logger
	logClose func() error
}

// NewService creates an ingest service. The configured ingest timezone must
// be valid, settings validation guarantees that at startup.
func NewService(settings *conf.Settings, ds datastore.Interface, ingestMetrics *metrics.IngestMetrics) (*Service, error) {
	location, err := time.LoadLocation(settings.Ingest.Timezone)
	if err != nil {
		return nil, err
	}

	logger, logClose, err := logging.NewFileLogger("logs/ingest.log", "ingest", slog.LevelInfo)
	if err != nil {
		logging.Error("Failed to initialize ingest file logger", "error", err)
		logger = logging.NewDiscardLogger("ingest")
		logClose = func() error { return nil }
	}

	return &Service{
		settings: settings,
		ds:       ds,
		client:   &http.Client{Timeout: time.Duration(settings.Ingest.Timeout) * time.Second},
		metrics:  ingestMetrics,
		location: location,
		log:      logger,
		logClose: logClose,
	}, nil
}

// Close releases the service's log file.
func (s *Service) Close() error {
	return s.logClose()
}

// SetHTTPClient replaces the fetch client. Used by tests to install mocks.
func (s *Service) SetHTTPClient(client *http.Client) {
	s.client = client
}

// Run executes one full pipeline run. Duplicate venues, artists and shows
// are skipped silently, so re-running on the same source data changes
// nothing. Fetch and parse failures abort the run; ErrSourceNotFound
// propagates to the caller unchanged.
func (s *Service) Run(ctx context.Context) error {
	start := time.Now()
	s.log.Info("Starting ingest run", "source", s.settings.Ingest.SourceURL)

	err := s.run(ctx)
	if err != nil {
		s.metrics.RecordRun("error", time.Since(start).Seconds())
		s.log.Error("Ingest run failed", "error", err)
		return err
	}

	s.metrics.RecordRun("success", time.Since(start).Seconds())
	s.log.Info("Ingest run completed", "duration", time.Since(start).String())
	return nil
}

func (s *Service) run(ctx context.Context) error {
	page, err := s.fetchPage(ctx)
	if err != nil {
		return err
	}

	rawShows, err := parseShows(page)
	if err != nil {
		return err
	}
	s.metrics.RecordParsed(len(rawShows))
	s.log.Info("Parsed show listing", "records", len(rawShows))

	enriched := enrichLocations(rawShows, s.settings.Ingest.VenueCities, s.settings.Ingest.VenueState)

	records, err := normalizeDates(enriched, s.location, s.settings.Ingest.DefaultShowHour)
	if err != nil {
		return err
	}

	return s.upsertRecords(records)
}

// upsertRecords stores each record's venue, artist and show as three
// independent inserts. A duplicate on any of them is routine, it is logged
// and the remaining inserts for this and later records continue.
func (s *Service) upsertRecords(records []ShowRecord) error {
	for i := range records {
		record := &records[i]

		created, err := s.ds.InsertVenue(&datastore.Venue{
			Name:  record.VenueName,
			City:  record.VenueCity,
			State: record.VenueState,
		})
		if err != nil {
			s.metrics.RecordInsert("venue", "error")
			return err
		}
		if created {
			s.metrics.RecordInsert("venue", "created")
		} else {
			s.metrics.RecordInsert("venue", "duplicate")
			s.log.Info("Venue is already in database", "venue", record.VenueName)
		}

		created, err = s.ds.InsertArtist(&datastore.Artist{Name: record.ArtistName})
		if err != nil {
			s.metrics.RecordInsert("artist", "error")
			return err
		}
		if created {
			s.metrics.RecordInsert("artist", "created")
		} else {
			s.metrics.RecordInsert("artist", "duplicate")
			s.log.Info("Artist is already in database", "artist", record.ArtistName)
		}

		// Re-fetch both rows, the inserts above may have been no-ops
		venue, err := s.ds.GetVenueByName(record.VenueName)
		if err != nil {
			return err
		}
		artist, err := s.ds.GetArtistByName(record.ArtistName)
		if err != nil {
			return err
		}

		created, err = s.ds.InsertShow(&datastore.Show{
			Date:     record.Date,
			ArtistID: artist.ID,
			VenueID:  venue.ID,
		})
		if err != nil {
			s.metrics.RecordInsert("show", "error")
			return err
		}
		if created {
			s.metrics.RecordInsert("show", "created")
		} else {
			s.metrics.RecordInsert("show", "duplicate")
			s.log.Info("Show is already in database",
				"artist", record.ArtistName,
				"venue", record.VenueName,
				"date", record.Date)
		}
	}
	return nil
}
