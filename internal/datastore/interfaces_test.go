package datastore

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/gignote/gignote-go/internal/conf"
	"github.com/gignote/gignote-go/internal/errors"
)

// newTestStore opens an isolated in-memory SQLite store with migrations run.
func newTestStore(t *testing.T) Interface {
	t.Helper()

	settings := &conf.Settings{}
	settings.Database.SQLite.Enabled = true
	settings.Database.SQLite.Path = fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())

	ds := New(settings)
	require.NotNil(t, ds)
	require.NoError(t, ds.Open())
	t.Cleanup(func() { _ = ds.Close() })
	return ds
}

func mustInsertShow(t *testing.T, ds Interface, artistName, venueName string, date time.Time) Show {
	t.Helper()

	_, err := ds.InsertVenue(&Venue{Name: venueName, City: "Minneapolis", State: "Minnesota"})
	require.NoError(t, err)
	_, err = ds.InsertArtist(&Artist{Name: artistName})
	require.NoError(t, err)

	venue, err := ds.GetVenueByName(venueName)
	require.NoError(t, err)
	artist, err := ds.GetArtistByName(artistName)
	require.NoError(t, err)

	show := Show{Date: date, ArtistID: artist.ID, VenueID: venue.ID}
	created, err := ds.InsertShow(&show)
	require.NoError(t, err)
	require.True(t, created)
	return show
}

func mustCreateUser(t *testing.T, ds Interface, username string) User {
	t.Helper()

	user := User{
		Username:  username,
		Email:     username + "@example.com",
		FirstName: "Test",
		LastName:  "User",
	}
	require.NoError(t, ds.CreateUser(&user))
	return user
}

func TestInsertVenueIgnoresDuplicates(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	created, err := ds.InsertVenue(&Venue{Name: "First Avenue", City: "Minneapolis", State: "Minnesota"})
	require.NoError(t, err)
	assert.True(t, created)

	// Same name again, even with a different city, is a duplicate
	created, err = ds.InsertVenue(&Venue{Name: "First Avenue", City: "Duluth", State: "Minnesota"})
	require.NoError(t, err)
	assert.False(t, created)

	// The first sighting wins, the row is never updated
	venue, err := ds.GetVenueByName("First Avenue")
	require.NoError(t, err)
	assert.Equal(t, "Minneapolis", venue.City)

	_, total, err := ds.SearchVenues("", 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestInsertArtistIgnoresDuplicates(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	created, err := ds.InsertArtist(&Artist{Name: "Dessa"})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = ds.InsertArtist(&Artist{Name: "Dessa"})
	require.NoError(t, err)
	assert.False(t, created)

	_, total, err := ds.SearchArtists("", 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestInsertShowUniqueOnDateArtistVenue(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	date := time.Date(2021, time.November, 28, 1, 0, 0, 0, time.UTC)
	show := mustInsertShow(t, ds, "Low", "First Avenue", date)

	// Identical triple is a duplicate
	created, err := ds.InsertShow(&Show{Date: date, ArtistID: show.ArtistID, VenueID: show.VenueID})
	require.NoError(t, err)
	assert.False(t, created)

	// Same artist and venue on another date is a new show
	created, err = ds.InsertShow(&Show{
		Date:     date.AddDate(0, 0, 1),
		ArtistID: show.ArtistID,
		VenueID:  show.VenueID,
	})
	require.NoError(t, err)
	assert.True(t, created)

	total, err := ds.CountShows()
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}

func TestSearchVenues(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	for _, name := range []string{"First Avenue", "7th St Entry", "Turf Club", "Fine Line"} {
		_, err := ds.InsertVenue(&Venue{Name: name, City: "Minneapolis", State: "Minnesota"})
		require.NoError(t, err)
	}

	venues, total, err := ds.SearchVenues("avenue", 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, venues, 1)
	assert.Equal(t, "First Avenue", venues[0].Name)

	// Empty query matches everything, ordered by name
	venues, total, err = ds.SearchVenues("", 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	require.Len(t, venues, 4)
	assert.Equal(t, "7th St Entry", venues[0].Name)
}

func TestSearchVenuesPagination(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	for i := 0; i < 25; i++ {
		_, err := ds.InsertVenue(&Venue{
			Name:  fmt.Sprintf("Venue %02d", i),
			City:  "Minneapolis",
			State: "Minnesota",
		})
		require.NoError(t, err)
	}

	venues, total, err := ds.SearchVenues("", 10, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 25, total)
	assert.Len(t, venues, 5, "last page holds the remainder")
}

func TestGetShowsMostRecentFirst(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	older := time.Date(2021, time.March, 14, 1, 0, 0, 0, time.UTC)
	newer := time.Date(2021, time.November, 28, 1, 0, 0, 0, time.UTC)
	mustInsertShow(t, ds, "Semisonic", "First Avenue", older)
	mustInsertShow(t, ds, "Low", "Turf Club", newer)

	shows, total, err := ds.GetShows(10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, shows, 2)

	assert.True(t, shows[0].Date.Equal(newer))
	assert.Equal(t, "Low", shows[0].Artist.Name)
	assert.Equal(t, "Turf Club", shows[0].Venue.Name)
}

func TestGetShowsByVenue(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	date := time.Date(2021, time.June, 19, 0, 0, 0, 0, time.UTC)
	mustInsertShow(t, ds, "Dizzy Fae", "7th St Entry", date)
	mustInsertShow(t, ds, "Hippo Campus", "First Avenue", date)

	venue, err := ds.GetVenueByName("7th St Entry")
	require.NoError(t, err)

	shows, err := ds.GetShowsByVenue(venue.ID)
	require.NoError(t, err)
	require.Len(t, shows, 1)
	assert.Equal(t, "Dizzy Fae", shows[0].Artist.Name)
}

func TestSaveNoteRejectsFutureShow(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	show := mustInsertShow(t, ds, "Low", "First Avenue", time.Now().Add(24*time.Hour))
	user := mustCreateUser(t, ds, "alice")

	err := ds.SaveNote(&Note{ShowID: show.ID, UserID: user.ID, Title: "Great", Text: "It was great"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoteBeforeShow))
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))

	notes, err := ds.GetNotesByShow(show.ID)
	require.NoError(t, err)
	assert.Empty(t, notes, "validation failure must not persist the note")
}

func TestSaveNoteOnePerUserPerShow(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	show := mustInsertShow(t, ds, "Low", "First Avenue", time.Now().Add(-24*time.Hour))
	user := mustCreateUser(t, ds, "alice")

	require.NoError(t, ds.SaveNote(&Note{ShowID: show.ID, UserID: user.ID, Title: "First", Text: "so good"}))

	err := ds.SaveNote(&Note{ShowID: show.ID, UserID: user.ID, Title: "Second", Text: "again"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))
	assert.True(t, errors.HasCategory(err, errors.CategoryConflict))

	// A different user may still add a note for the same show
	other := mustCreateUser(t, ds, "bob")
	require.NoError(t, ds.SaveNote(&Note{ShowID: show.ID, UserID: other.ID, Title: "Mine", Text: "loved it"}))
}

func TestGetNotesMostRecentFirst(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	show := mustInsertShow(t, ds, "Low", "First Avenue", time.Now().Add(-72*time.Hour))
	alice := mustCreateUser(t, ds, "alice")
	bob := mustCreateUser(t, ds, "bob")

	older := Note{ShowID: show.ID, UserID: alice.ID, Title: "Older", Text: "x",
		PostedAt: time.Now().Add(-2 * time.Hour)}
	newer := Note{ShowID: show.ID, UserID: bob.ID, Title: "Newer", Text: "y",
		PostedAt: time.Now().Add(-1 * time.Hour)}
	require.NoError(t, ds.SaveNote(&older))
	require.NoError(t, ds.SaveNote(&newer))

	notes, total, err := ds.GetNotes(10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, notes, 2)
	assert.Equal(t, "Newer", notes[0].Title)
	assert.Equal(t, "bob", notes[0].User.Username)

	latest, err := ds.GetLatestNotes(1)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, "Newer", latest[0].Title)
}

func TestDeleteNote(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	show := mustInsertShow(t, ds, "Low", "First Avenue", time.Now().Add(-24*time.Hour))
	user := mustCreateUser(t, ds, "alice")

	note := Note{ShowID: show.ID, UserID: user.ID, Title: "Bye", Text: "z"}
	require.NoError(t, ds.SaveNote(&note))
	require.NoError(t, ds.DeleteNote(note.ID))

	_, err := ds.GetNote(note.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	assert.True(t, errors.HasCategory(err, errors.CategoryNotFound))
}

func TestCreateUserCreatesProfile(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	user := mustCreateUser(t, ds, "alice")

	profile, err := ds.GetProfile(user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, profile.UserID)
	assert.Empty(t, profile.Avatar)
}

func TestCreateUserUniqueUsernameAndEmail(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	mustCreateUser(t, ds, "alice")

	err := ds.CreateUser(&User{
		Username:  "alice",
		Email:     "other@example.com",
		FirstName: "Other",
		LastName:  "User",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))

	err = ds.CreateUser(&User{
		Username:  "alice2",
		Email:     "alice@example.com",
		FirstName: "Other",
		LastName:  "User",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))
}

func TestUpdateProfileFavorites(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	show := mustInsertShow(t, ds, "Low", "First Avenue", time.Now().Add(-24*time.Hour))
	user := mustCreateUser(t, ds, "alice")

	profile, err := ds.GetProfile(user.ID)
	require.NoError(t, err)

	profile.FavoriteArtistID = &show.ArtistID
	profile.FavoriteVenueID = &show.VenueID
	require.NoError(t, ds.UpdateProfile(&profile))

	updated, err := ds.GetProfile(user.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.FavoriteArtist)
	require.NotNil(t, updated.FavoriteVenue)
	assert.Equal(t, "Low", updated.FavoriteArtist.Name)
	assert.Equal(t, "First Avenue", updated.FavoriteVenue.Name)
}
