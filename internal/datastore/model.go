// model.go this code defines the data model for the application
package datastore

import "time"

// User represents a registered account. Username and email are unique,
// first and last name are required at registration.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	FirstName    string `gorm:"not null"`
	LastName     string `gorm:"not null"`
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time

	Profile *Profile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"` // One-to-one relationship with cascade delete
}

// Profile holds a user's preferences. One profile is created automatically
// for every user.
type Profile struct {
	ID               uint    `gorm:"primaryKey"`
	UserID           uint    `gorm:"uniqueIndex;not null"`
	FavoriteArtistID *uint   `gorm:"index"`
	FavoriteVenueID  *uint   `gorm:"index"`
	Avatar           string  // stored image filename, empty means default avatar
	FavoriteArtist   *Artist `gorm:"foreignKey:FavoriteArtistID;constraint:OnDelete:SET NULL"`
	FavoriteVenue    *Venue  `gorm:"foreignKey:FavoriteVenueID;constraint:OnDelete:SET NULL"`
}

// Venue represents a venue that hosts shows. Created on first sighting,
// never updated, a later sighting with the same name is a duplicate.
type Venue struct {
	ID    uint   `gorm:"primaryKey"`
	Name  string `gorm:"uniqueIndex;not null"`
	City  string `gorm:"not null"`
	State string `gorm:"not null"`
}

// Artist represents a musician or a band. Same creation policy as Venue.
type Artist struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;not null"`
}

// Show is one Artist playing at one Venue at a particular date and time.
// Identity is the (date, artist, venue) triple.
type Show struct {
	ID       uint      `gorm:"primaryKey"`
	Date     time.Time `gorm:"uniqueIndex:idx_shows_date_artist_venue;index:idx_shows_date;not null"` // stored in UTC
	ArtistID uint      `gorm:"uniqueIndex:idx_shows_date_artist_venue;not null"`
	VenueID  uint      `gorm:"uniqueIndex:idx_shows_date_artist_venue;not null"`
	Artist   Artist    `gorm:"foreignKey:ArtistID;constraint:OnDelete:CASCADE"`
	Venue    Venue     `gorm:"foreignKey:VenueID;constraint:OnDelete:CASCADE"`
}

// InPast reports whether the show has already happened.
func (s *Show) InPast() bool {
	return s.Date.Before(time.Now())
}

// Note is one user's opinion of one Show, at most one per (show, user).
// A note may not be posted before the show has happened.
type Note struct {
	ID       uint   `gorm:"primaryKey"`
	ShowID   uint   `gorm:"uniqueIndex:idx_notes_show_user;not null"`
	UserID   uint   `gorm:"uniqueIndex:idx_notes_show_user;not null"`
	Title    string `gorm:"not null"`
	Text     string `gorm:"type:text;not null"`
	Photo    string // stored image filename, optional
	PostedAt time.Time
	Show     Show `gorm:"foreignKey:ShowID;constraint:OnDelete:CASCADE"`
	User     User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}
