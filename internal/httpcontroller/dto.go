package httpcontroller

import (
	"github.com/gignote/gignote-go/internal/datastore"
)

// VenueResponse is the JSON shape of a venue.
type VenueResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	City  string `json:"city"`
	State string `json:"state"`
}

// ArtistResponse is the JSON shape of an artist.
type ArtistResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// ShowResponse is the JSON shape of a show with its artist and venue.
type ShowResponse struct {
	ID     uint           `json:"id"`
	Date   string         `json:"date"`
	Artist ArtistResponse `json:"artist"`
	Venue  VenueResponse  `json:"venue"`
}

// UserResponse is the public JSON shape of a user.
type UserResponse struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// NoteResponse is the JSON shape of a show note.
type NoteResponse struct {
	ID       uint          `json:"id"`
	ShowID   uint          `json:"show_id"`
	Title    string        `json:"title"`
	Text     string        `json:"text"`
	PostedAt string        `json:"posted_at"`
	HasPhoto bool          `json:"has_photo"`
	User     UserResponse  `json:"user"`
	Show     *ShowResponse `json:"show,omitempty"`
}

// ProfileResponse is the JSON shape of the logged-in user's profile.
type ProfileResponse struct {
	User           UserResponse    `json:"user"`
	FavoriteArtist *ArtistResponse `json:"favorite_artist,omitempty"`
	FavoriteVenue  *VenueResponse  `json:"favorite_venue,omitempty"`
	HasAvatar      bool            `json:"has_avatar"`
}

// VenueListResponse is one page of venues.
type VenueListResponse struct {
	Venues     []VenueResponse `json:"venues"`
	Pagination Pagination      `json:"pagination"`
}

// ArtistListResponse is one page of artists.
type ArtistListResponse struct {
	Artists    []ArtistResponse `json:"artists"`
	Pagination Pagination       `json:"pagination"`
}

// ShowListResponse is one page of shows.
type ShowListResponse struct {
	Shows      []ShowResponse `json:"shows"`
	Pagination Pagination     `json:"pagination"`
}

// NoteListResponse is one page of notes.
type NoteListResponse struct {
	Notes      []NoteResponse `json:"notes"`
	Pagination Pagination     `json:"pagination"`
}

func venueResponse(v *datastore.Venue) VenueResponse {
	return VenueResponse{ID: v.ID, Name: v.Name, City: v.City, State: v.State}
}

func artistResponse(a *datastore.Artist) ArtistResponse {
	return ArtistResponse{ID: a.ID, Name: a.Name}
}

func showResponse(show *datastore.Show) ShowResponse {
	return ShowResponse{
		ID:     show.ID,
		Date:   formatTime(show.Date),
		Artist: artistResponse(&show.Artist),
		Venue:  venueResponse(&show.Venue),
	}
}

func showResponses(shows []datastore.Show) []ShowResponse {
	out := make([]ShowResponse, 0, len(shows))
	for i := range shows {
		out = append(out, showResponse(&shows[i]))
	}
	return out
}

func userResponse(u *datastore.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

// noteResponse renders a note. The embedded show is included only when
// it was preloaded.
func noteResponse(n *datastore.Note) NoteResponse {
	resp := NoteResponse{
		ID:       n.ID,
		ShowID:   n.ShowID,
		Title:    n.Title,
		Text:     n.Text,
		PostedAt: formatTime(n.PostedAt),
		HasPhoto: n.Photo != "",
		User:     userResponse(&n.User),
	}
	if n.Show.ID != 0 {
		show := showResponse(&n.Show)
		resp.Show = &show
	}
	return resp
}

func noteResponses(notes []datastore.Note) []NoteResponse {
	out := make([]NoteResponse, 0, len(notes))
	for i := range notes {
		out = append(out, noteResponse(&notes[i]))
	}
	return out
}
