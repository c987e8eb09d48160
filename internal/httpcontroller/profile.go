package httpcontroller

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/gignote/gignote-go/internal/datastore"
)

// GetProfile returns the logged-in user's profile.
func (s *Server) GetProfile(c echo.Context) error {
	userID, _ := s.Security.CurrentUserID(c)

	user, err := s.DS.GetUser(userID)
	if err != nil {
		return s.handleDatastoreError(c, err, "Failed to load profile")
	}
	profile, err := s.DS.GetProfile(userID)
	if err != nil {
		return s.handleDatastoreError(c, err, "Failed to load profile")
	}
	return c.JSON(http.StatusOK, profileResponse(&user, &profile))
}

// UpdateProfile sets the favorite artist and venue and optionally
// replaces the avatar. The request is multipart form data.
func (s *Server) UpdateProfile(c echo.Context) error {
	userID, _ := s.Security.CurrentUserID(c)

	profile, err := s.DS.GetProfile(userID)
	if err != nil {
		return s.handleDatastoreError(c, err, "Failed to load profile")
	}

	if id, ok, err := formID(c, "favorite_artist_id"); err != nil {
		return s.HandleError(c, err, "Invalid favorite artist id", http.StatusBadRequest)
	} else if ok {
		if _, err := s.DS.GetArtist(id); err != nil {
			return s.handleDatastoreError(c, err, "Favorite artist not found")
		}
		profile.FavoriteArtistID = &id
	}

	if id, ok, err := formID(c, "favorite_venue_id"); err != nil {
		return s.HandleError(c, err, "Invalid favorite venue id", http.StatusBadRequest)
	} else if ok {
		if _, err := s.DS.GetVenue(id); err != nil {
			return s.handleDatastoreError(c, err, "Favorite venue not found")
		}
		profile.FavoriteVenueID = &id
	}

	if file, err := c.FormFile("avatar"); err == nil && file != nil {
		filename, err := s.replacePhoto(file, profile.Avatar)
		if err != nil {
			return s.HandleError(c, err, "Invalid avatar upload", statusForError(err))
		}
		profile.Avatar = filename
	}

	if err := s.DS.UpdateProfile(&profile); err != nil {
		return s.handleDatastoreError(c, err, "Failed to update profile")
	}

	user, err := s.DS.GetUser(userID)
	if err != nil {
		return s.handleDatastoreError(c, err, "Failed to load profile")
	}
	saved, err := s.DS.GetProfile(userID)
	if err != nil {
		return s.handleDatastoreError(c, err, "Failed to load profile")
	}
	return c.JSON(http.StatusOK, profileResponse(&user, &saved))
}

// GetAvatar streams the logged-in user's avatar image.
func (s *Server) GetAvatar(c echo.Context) error {
	userID, _ := s.Security.CurrentUserID(c)

	profile, err := s.DS.GetProfile(userID)
	if err != nil {
		return s.handleDatastoreError(c, err, "Failed to load profile")
	}
	if profile.Avatar == "" {
		return s.HandleError(c, nil, "No avatar set", http.StatusNotFound)
	}
	return s.serveImage(c, profile.Avatar)
}

// profileResponse renders a user and their profile.
func profileResponse(user *datastore.User, profile *datastore.Profile) ProfileResponse {
	resp := ProfileResponse{
		User:      userResponse(user),
		HasAvatar: profile.Avatar != "",
	}
	if profile.FavoriteArtist != nil {
		artist := artistResponse(profile.FavoriteArtist)
		resp.FavoriteArtist = &artist
	}
	if profile.FavoriteVenue != nil {
		venue := venueResponse(profile.FavoriteVenue)
		resp.FavoriteVenue = &venue
	}
	return resp
}

// formID reads an optional numeric form field. ok is false when the
// field is absent or empty.
func formID(c echo.Context, field string) (id uint, ok bool, err error) {
	value := c.FormValue(field)
	if value == "" {
		return 0, false, nil
	}
	parsed, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return 0, false, err
	}
	return uint(parsed), true, nil
}
