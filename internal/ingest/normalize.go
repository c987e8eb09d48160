package ingest

import (
	"strconv"
	"time"

	"github.com/gignote/gignote-go/internal/errors"
)

// months maps the page's three letter month abbreviations to month numbers.
var months = map[string]time.Month{
	"Jan": time.January,
	"Feb": time.February,
	"Mar": time.March,
	"Apr": time.April,
	"May": time.May,
	"Jun": time.June,
	"Jul": time.July,
	"Aug": time.August,
	"Sep": time.September,
	"Oct": time.October,
	"Nov": time.November,
	"Dec": time.December,
}

// normalizeDates converts each record's month/day/year tokens into a single
// UTC instant at the default show hour. The naive date is interpreted in the
// source region's local timezone, so the UTC offset follows that zone's
// daylight saving rules for the given date.
func normalizeDates(shows []EnrichedShow, loc *time.Location, showHour int) ([]ShowRecord, error) {
	records := make([]ShowRecord, 0, len(shows))
	for _, show := range shows {
		month, ok := months[show.Month]
		if !ok {
			return nil, errors.New(ErrMalformedSource).
				Component("ingest").
				Category(errors.CategoryScraper).
				Context("invalid_month", show.Month).
				Build()
		}

		day, err := strconv.Atoi(show.Day)
		if err != nil {
			return nil, errors.New(ErrMalformedSource).
				Component("ingest").
				Category(errors.CategoryScraper).
				Context("invalid_day", show.Day).
				Build()
		}

		year, err := strconv.Atoi(show.Year)
		if err != nil {
			return nil, errors.New(ErrMalformedSource).
				Component("ingest").
				Category(errors.CategoryScraper).
				Context("invalid_year", show.Year).
				Build()
		}

		local := time.Date(year, month, day, showHour, 0, 0, 0, loc)

		records = append(records, ShowRecord{
			ArtistName: show.ArtistName,
			VenueName:  show.VenueName,
			VenueCity:  show.VenueCity,
			VenueState: show.VenueState,
			Date:       local.UTC(),
		})
	}
	return records, nil
}
