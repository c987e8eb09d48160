// interfaces.go: this code defines the interface for the database operations
package datastore

import (
	"time"

	"github.com/gignote/gignote-go/internal/conf"
	"github.com/gignote/gignote-go/internal/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNoteBeforeShow is returned when a note is saved for a show that has
// not happened yet.
var ErrNoteBeforeShow = errors.NewStd("cannot add note for a show that has not happened yet")

// Interface abstracts the underlying database implementation and defines
// the interface for database operations.
type Interface interface {
	Open() error
	Close() error

	// Venues
	InsertVenue(venue *Venue) (created bool, err error)
	GetVenue(id uint) (Venue, error)
	GetVenueByName(name string) (Venue, error)
	SearchVenues(query string, limit, offset int) ([]Venue, int64, error)

	// Artists
	InsertArtist(artist *Artist) (created bool, err error)
	GetArtist(id uint) (Artist, error)
	GetArtistByName(name string) (Artist, error)
	SearchArtists(query string, limit, offset int) ([]Artist, int64, error)

	// Shows
	InsertShow(show *Show) (created bool, err error)
	GetShow(id uint) (Show, error)
	GetShows(limit, offset int) ([]Show, int64, error)
	GetShowsByVenue(venueID uint) ([]Show, error)
	GetShowsByArtist(artistID uint) ([]Show, error)
	CountShows() (int64, error)

	// Notes
	SaveNote(note *Note) error
	GetNote(id uint) (Note, error)
	GetNotes(limit, offset int) ([]Note, int64, error)
	GetLatestNotes(limit int) ([]Note, error)
	GetNotesByShow(showID uint) ([]Note, error)
	GetNoteByShowAndUser(showID, userID uint) (Note, error)
	UpdateNote(note *Note) error
	DeleteNote(id uint) error

	// Users and profiles
	CreateUser(user *User) error
	GetUser(id uint) (User, error)
	GetUserByUsername(username string) (User, error)
	GetUserByEmail(email string) (User, error)
	GetProfile(userID uint) (Profile, error)
	UpdateProfile(profile *Profile) error
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB *gorm.DB // GORM database instance
}

// New creates a new datastore instance based on the provided configuration.
func New(settings *conf.Settings) Interface {
	switch {
	case settings.Database.SQLite.Enabled:
		return &SQLiteStore{
			Settings: settings,
		}
	case settings.Database.MySQL.Enabled:
		return &MySQLStore{
			Settings: settings,
		}
	default:
		return nil
	}
}

// newDatabaseError wraps a gorm error with datastore context.
func newDatabaseError(err error, operation string) error {
	category := errors.CategoryDatabase
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		category = errors.CategoryNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		category = errors.CategoryConflict
	}
	return errors.New(err).
		Component("datastore").
		Category(category).
		Context("operation", operation).
		Build()
}

// insertIgnoreDuplicate inserts value and reports whether a row was
// created. A uniqueness conflict inserts nothing and is not an error.
func (ds *DataStore) insertIgnoreDuplicate(value any, operation string) (bool, error) {
	result := ds.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(value)
	if result.Error != nil {
		return false, newDatabaseError(result.Error, operation)
	}
	return result.RowsAffected > 0, nil
}

// InsertVenue inserts a venue unless one with the same name exists.
func (ds *DataStore) InsertVenue(venue *Venue) (bool, error) {
	return ds.insertIgnoreDuplicate(venue, "insert_venue")
}

// GetVenue retrieves a venue by its ID.
func (ds *DataStore) GetVenue(id uint) (Venue, error) {
	var venue Venue
	if err := ds.DB.First(&venue, id).Error; err != nil {
		return Venue{}, newDatabaseError(err, "get_venue")
	}
	return venue, nil
}

// GetVenueByName retrieves a venue by its unique name.
func (ds *DataStore) GetVenueByName(name string) (Venue, error) {
	var venue Venue
	if err := ds.DB.Where("name = ?", name).First(&venue).Error; err != nil {
		return Venue{}, newDatabaseError(err, "get_venue_by_name")
	}
	return venue, nil
}

// SearchVenues returns venues whose name contains query, ordered by name,
// along with the total number of matches. An empty query matches all venues.
func (ds *DataStore) SearchVenues(query string, limit, offset int) ([]Venue, int64, error) {
	var venues []Venue
	var total int64

	tx := ds.DB.Model(&Venue{})
	if query != "" {
		tx = tx.Where("name LIKE ?", "%"+query+"%")
	}
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, newDatabaseError(err, "count_venues")
	}
	if err := tx.Order("name").Limit(limit).Offset(offset).Find(&venues).Error; err != nil {
		return nil, 0, newDatabaseError(err, "search_venues")
	}
	return venues, total, nil
}

// InsertArtist inserts an artist unless one with the same name exists.
func (ds *DataStore) InsertArtist(artist *Artist) (bool, error) {
	return ds.insertIgnoreDuplicate(artist, "insert_artist")
}

// GetArtist retrieves an artist by its ID.
func (ds *DataStore) GetArtist(id uint) (Artist, error) {
	var artist Artist
	if err := ds.DB.First(&artist, id).Error; err != nil {
		return Artist{}, newDatabaseError(err, "get_artist")
	}
	return artist, nil
}

// GetArtistByName retrieves an artist by its unique name.
func (ds *DataStore) GetArtistByName(name string) (Artist, error) {
	var artist Artist
	if err := ds.DB.Where("name = ?", name).First(&artist).Error; err != nil {
		return Artist{}, newDatabaseError(err, "get_artist_by_name")
	}
	return artist, nil
}

// SearchArtists returns artists whose name contains query, ordered by name,
// along with the total number of matches.
func (ds *DataStore) SearchArtists(query string, limit, offset int) ([]Artist, int64, error) {
	var artists []Artist
	var total int64

	tx := ds.DB.Model(&Artist{})
	if query != "" {
		tx = tx.Where("name LIKE ?", "%"+query+"%")
	}
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, newDatabaseError(err, "count_artists")
	}
	if err := tx.Order("name").Limit(limit).Offset(offset).Find(&artists).Error; err != nil {
		return nil, 0, newDatabaseError(err, "search_artists")
	}
	return artists, total, nil
}

// InsertShow inserts a show unless one with the same (date, artist, venue)
// triple exists.
func (ds *DataStore) InsertShow(show *Show) (bool, error) {
	return ds.insertIgnoreDuplicate(show, "insert_show")
}

// GetShow retrieves a show with its artist and venue by ID.
func (ds *DataStore) GetShow(id uint) (Show, error) {
	var show Show
	err := ds.DB.Preload("Artist").Preload("Venue").First(&show, id).Error
	if err != nil {
		return Show{}, newDatabaseError(err, "get_show")
	}
	return show, nil
}

// GetShows returns shows ordered most recent first, along with the total
// number of shows.
func (ds *DataStore) GetShows(limit, offset int) ([]Show, int64, error) {
	var shows []Show
	var total int64

	if err := ds.DB.Model(&Show{}).Count(&total).Error; err != nil {
		return nil, 0, newDatabaseError(err, "count_shows")
	}
	err := ds.DB.Preload("Artist").Preload("Venue").
		Order("date desc").Limit(limit).Offset(offset).
		Find(&shows).Error
	if err != nil {
		return nil, 0, newDatabaseError(err, "get_shows")
	}
	return shows, total, nil
}

// GetShowsByVenue returns all shows played at a venue, most recent first.
func (ds *DataStore) GetShowsByVenue(venueID uint) ([]Show, error) {
	var shows []Show
	err := ds.DB.Preload("Artist").Preload("Venue").
		Where("venue_id = ?", venueID).
		Order("date desc").
		Find(&shows).Error
	if err != nil {
		return nil, newDatabaseError(err, "get_shows_by_venue")
	}
	return shows, nil
}

// GetShowsByArtist returns all shows played by an artist, most recent first.
func (ds *DataStore) GetShowsByArtist(artistID uint) ([]Show, error) {
	var shows []Show
	err := ds.DB.Preload("Artist").Preload("Venue").
		Where("artist_id = ?", artistID).
		Order("date desc").
		Find(&shows).Error
	if err != nil {
		return nil, newDatabaseError(err, "get_shows_by_artist")
	}
	return shows, nil
}

// CountShows returns the total number of shows.
func (ds *DataStore) CountShows() (int64, error) {
	var total int64
	if err := ds.DB.Model(&Show{}).Count(&total).Error; err != nil {
		return 0, newDatabaseError(err, "count_shows")
	}
	return total, nil
}

// SaveNote stores a new note after validating that the show has already
// happened. At most one note per (show, user) pair is allowed.
func (ds *DataStore) SaveNote(note *Note) error {
	var show Show
	if err := ds.DB.First(&show, note.ShowID).Error; err != nil {
		return newDatabaseError(err, "save_note_show_lookup")
	}

	if time.Now().Before(show.Date) {
		return errors.New(ErrNoteBeforeShow).
			Component("datastore").
			Category(errors.CategoryValidation).
			Context("show_id", note.ShowID).
			Build()
	}

	if note.PostedAt.IsZero() {
		note.PostedAt = time.Now().UTC()
	}

	if err := ds.DB.Create(note).Error; err != nil {
		return newDatabaseError(err, "save_note")
	}
	return nil
}

// GetNote retrieves a note with its show and author by ID.
func (ds *DataStore) GetNote(id uint) (Note, error) {
	var note Note
	err := ds.DB.Preload("Show.Artist").Preload("Show.Venue").Preload("User").
		First(&note, id).Error
	if err != nil {
		return Note{}, newDatabaseError(err, "get_note")
	}
	return note, nil
}

// GetNotes returns notes ordered most recent first, along with the total
// number of notes.
func (ds *DataStore) GetNotes(limit, offset int) ([]Note, int64, error) {
	var notes []Note
	var total int64

	if err := ds.DB.Model(&Note{}).Count(&total).Error; err != nil {
		return nil, 0, newDatabaseError(err, "count_notes")
	}
	err := ds.DB.Preload("Show.Artist").Preload("Show.Venue").Preload("User").
		Order("posted_at desc").Limit(limit).Offset(offset).
		Find(&notes).Error
	if err != nil {
		return nil, 0, newDatabaseError(err, "get_notes")
	}
	return notes, total, nil
}

// GetLatestNotes returns the most recent notes, newest first.
func (ds *DataStore) GetLatestNotes(limit int) ([]Note, error) {
	var notes []Note
	err := ds.DB.Preload("Show.Artist").Preload("Show.Venue").Preload("User").
		Order("posted_at desc").Limit(limit).
		Find(&notes).Error
	if err != nil {
		return nil, newDatabaseError(err, "get_latest_notes")
	}
	return notes, nil
}

// GetNotesByShow returns the notes for one show, newest first.
func (ds *DataStore) GetNotesByShow(showID uint) ([]Note, error) {
	var notes []Note
	err := ds.DB.Preload("User").
		Where("show_id = ?", showID).
		Order("posted_at desc").
		Find(&notes).Error
	if err != nil {
		return nil, newDatabaseError(err, "get_notes_by_show")
	}
	return notes, nil
}

// GetNoteByShowAndUser returns the note a user wrote for a show, if any.
func (ds *DataStore) GetNoteByShowAndUser(showID, userID uint) (Note, error) {
	var note Note
	err := ds.DB.Where("show_id = ? AND user_id = ?", showID, userID).First(&note).Error
	if err != nil {
		return Note{}, newDatabaseError(err, "get_note_by_show_and_user")
	}
	return note, nil
}

// UpdateNote saves changes to an existing note.
func (ds *DataStore) UpdateNote(note *Note) error {
	if err := ds.DB.Save(note).Error; err != nil {
		return newDatabaseError(err, "update_note")
	}
	return nil
}

// DeleteNote removes a note by ID.
func (ds *DataStore) DeleteNote(id uint) error {
	if err := ds.DB.Delete(&Note{}, id).Error; err != nil {
		return newDatabaseError(err, "delete_note")
	}
	return nil
}

// CreateUser stores a new user and their empty profile in one transaction.
func (ds *DataStore) CreateUser(user *User) error {
	err := ds.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		profile := Profile{UserID: user.ID}
		if err := tx.Create(&profile).Error; err != nil {
			return err
		}
		user.Profile = &profile
		return nil
	})
	if err != nil {
		return newDatabaseError(err, "create_user")
	}
	return nil
}

// GetUser retrieves a user by ID.
func (ds *DataStore) GetUser(id uint) (User, error) {
	var user User
	if err := ds.DB.First(&user, id).Error; err != nil {
		return User{}, newDatabaseError(err, "get_user")
	}
	return user, nil
}

// GetUserByUsername retrieves a user by their unique username.
func (ds *DataStore) GetUserByUsername(username string) (User, error) {
	var user User
	if err := ds.DB.Where("username = ?", username).First(&user).Error; err != nil {
		return User{}, newDatabaseError(err, "get_user_by_username")
	}
	return user, nil
}

// GetUserByEmail retrieves a user by their unique email address.
func (ds *DataStore) GetUserByEmail(email string) (User, error) {
	var user User
	if err := ds.DB.Where("email = ?", email).First(&user).Error; err != nil {
		return User{}, newDatabaseError(err, "get_user_by_email")
	}
	return user, nil
}

// GetProfile retrieves the profile for a user with favorites preloaded.
func (ds *DataStore) GetProfile(userID uint) (Profile, error) {
	var profile Profile
	err := ds.DB.Preload("FavoriteArtist").Preload("FavoriteVenue").
		Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		return Profile{}, newDatabaseError(err, "get_profile")
	}
	return profile, nil
}

// UpdateProfile saves changes to a profile.
func (ds *DataStore) UpdateProfile(profile *Profile) error {
	if err := ds.DB.Save(profile).Error; err != nil {
		return newDatabaseError(err, "update_profile")
	}
	return nil
}
