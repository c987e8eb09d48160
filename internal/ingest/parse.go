package ingest

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gignote/gignote-go/internal/errors"
)

// ErrMalformedSource is returned when the source page markup is missing an
// expected element, which means the page structure has changed.
var ErrMalformedSource = errors.NewStd("source page markup has unexpected structure")

// Selectors the parser is coupled to. The source page marks up each listing
// entry with these CSS classes.
const (
	selectorShowItem  = ".show_list_item"
	selectorMonth     = ".month"
	selectorDay       = ".day"
	selectorYear      = ".year"
	selectorVenueName = ".venue_name"
	selectorArtist    = "h4 a"
)

// parseShows extracts show records from the listing page text, in document
// order. The page lists shows most recent first and that order is kept.
func parseShows(pageText string) ([]RawShow, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageText))
	if err != nil {
		return nil, errors.New(err).
			Component("ingest").
			Category(errors.CategoryScraper).
			Build()
	}

	var shows []RawShow
	var parseErr error

	doc.Find(selectorShowItem).EachWithBreak(func(i int, item *goquery.Selection) bool {
		var raw RawShow

		fields := []struct {
			selector string
			name     string
			dest     *string
		}{
			{selectorMonth, "month", &raw.Month},
			{selectorDay, "day", &raw.Day},
			{selectorYear, "year", &raw.Year},
			{selectorVenueName, "venue_name", &raw.VenueName},
			{selectorArtist, "artist_name", &raw.ArtistName},
		}

		for _, field := range fields {
			sel := item.Find(field.selector)
			if sel.Length() == 0 {
				parseErr = errors.New(ErrMalformedSource).
					Component("ingest").
					Category(errors.CategoryScraper).
					Context("missing_field", field.name).
					Context("entry_index", i).
					Build()
				return false
			}
			*field.dest = strings.Trim(sel.First().Text(), "\n\t ")
		}

		// The page pads artist names with non-breaking spaces
		raw.ArtistName = strings.ReplaceAll(raw.ArtistName, " ", " ")

		shows = append(shows, raw)
		return true
	})

	if parseErr != nil {
		return nil, parseErr
	}
	return shows, nil
}
