package ingest

import "time"

// RawShow is one listing entry as it appears on the source page, date
// fields still as page tokens.
type RawShow struct {
	ArtistName string
	VenueName  string
	Month      string // three letter month abbreviation, e.g. "Jan"
	Day        string
	Year       string
}

// EnrichedShow is a RawShow with the venue location attached.
type EnrichedShow struct {
	RawShow
	VenueCity  string
	VenueState string
}

// ShowRecord is the pipeline's final output shape, the page's date tokens
// replaced by a single UTC instant.
type ShowRecord struct {
	ArtistName string
	VenueName  string
	VenueCity  string
	VenueState string
	Date       time.Time // UTC
}
