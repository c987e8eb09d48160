package ingest

// UnknownCity is attached to venues missing from the configured
// venue-to-city table.
const UnknownCity = "Unknown"

// enrichLocations attaches a city to each show by venue name lookup and
// stamps every record with the configured state. Venues absent from the
// table get UnknownCity.
func enrichLocations(shows []RawShow, venueCities map[string]string, state string) []EnrichedShow {
	enriched := make([]EnrichedShow, 0, len(shows))
	for _, show := range shows {
		city, known := venueCities[show.VenueName]
		if !known {
			city = UnknownCity
		}
		enriched = append(enriched, EnrichedShow{
			RawShow:    show,
			VenueCity:  city,
			VenueState: state,
		})
	}
	return enriched
}
