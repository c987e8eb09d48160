package httpcontroller

import (
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/gignote/gignote-go/internal/datastore"
	"github.com/gignote/gignote-go/internal/errors"
)

// ListNotes returns one page of notes, most recent first.
func (s *Server) ListNotes(c echo.Context) error {
	_, total, err := s.DS.GetNotes(1, 0)
	if err != nil {
		return s.handleDatastoreError(c, err, "Failed to list notes")
	}
	limit, offset, pagination := paginate(requestedPage(c), s.Settings.WebServer.PageSize, total)

	page, _, err := s.DS.GetNotes(limit, offset)
	if err != nil {
		return s.handleDatastoreError(c, err, "Failed to list notes")
	}
	return c.JSON(http.StatusOK, NoteListResponse{Notes: noteResponses(page), Pagination: pagination})
}

// GetLatestNotes returns the 20 most recent notes.
func (s *Server) GetLatestNotes(c echo.Context) error {
	notes, err := s.DS.GetLatestNotes(20)
	if err != nil {
		return s.handleDatastoreError(c, err, "Failed to list notes")
	}
	return c.JSON(http.StatusOK, noteResponses(notes))
}

// GetNote returns one note with its show and author.
func (s *Server) GetNote(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return s.HandleError(c, err, "Invalid note id", http.StatusBadRequest)
	}
	note, err := s.DS.GetNote(id)
	if err != nil {
		return s.handleDatastoreError(c, err, "Note not found")
	}
	return c.JSON(http.StatusOK, noteResponse(&note))
}

// CreateNote posts a note about a show the user attended. The request is
// multipart form data with title, text and an optional photo.
func (s *Server) CreateNote(c echo.Context) error {
	showID, err := pathID(c)
	if err != nil {
		return s.HandleError(c, err, "Invalid show id", http.StatusBadRequest)
	}
	userID, _ := s.Security.CurrentUserID(c)

	title := strings.TrimSpace(c.FormValue("title"))
	text := strings.TrimSpace(c.FormValue("text"))
	if title == "" || text == "" {
		return s.HandleError(c, nil, "Title and text are required", http.StatusBadRequest)
	}

	photo, err := s.savePhotoUpload(c, "photo")
	if err != nil {
		return s.HandleError(c, err, "Invalid photo upload", statusForError(err))
	}

	note := datastore.Note{
		ShowID: showID,
		UserID: userID,
		Title:  title,
		Text:   text,
		Photo:  photo,
	}
	if err := s.DS.SaveNote(&note); err != nil {
		if photo != "" {
			_ = s.Images.Delete(photo)
		}
		return s.handleDatastoreError(c, err, "Failed to save note")
	}

	saved, err := s.DS.GetNote(note.ID)
	if err != nil {
		return s.handleDatastoreError(c, err, "Failed to load note")
	}
	return c.JSON(http.StatusCreated, noteResponse(&saved))
}

// UpdateNote edits the caller's own note. Uploading a new photo removes
// the previous file.
func (s *Server) UpdateNote(c echo.Context) error {
	note, err := s.ownedNote(c)
	if err != nil {
		return err
	}

	if title := strings.TrimSpace(c.FormValue("title")); title != "" {
		note.Title = title
	}
	if text := strings.TrimSpace(c.FormValue("text")); text != "" {
		note.Text = text
	}

	if file, err := c.FormFile("photo"); err == nil && file != nil {
		filename, err := s.replacePhoto(file, note.Photo)
		if err != nil {
			return s.HandleError(c, err, "Invalid photo upload", statusForError(err))
		}
		note.Photo = filename
	}

	if err := s.DS.UpdateNote(&note); err != nil {
		return s.handleDatastoreError(c, err, "Failed to update note")
	}
	saved, err := s.DS.GetNote(note.ID)
	if err != nil {
		return s.handleDatastoreError(c, err, "Failed to load note")
	}
	return c.JSON(http.StatusOK, noteResponse(&saved))
}

// DeleteNote removes the caller's own note and its photo file.
func (s *Server) DeleteNote(c echo.Context) error {
	note, err := s.ownedNote(c)
	if err != nil {
		return err
	}

	if err := s.DS.DeleteNote(note.ID); err != nil {
		return s.handleDatastoreError(c, err, "Failed to delete note")
	}
	if note.Photo != "" {
		if err := s.Images.Delete(note.Photo); err != nil {
			s.webLogger.Warn("Failed to delete note photo", "filename", note.Photo, "error", err)
		}
	}
	return c.NoContent(http.StatusNoContent)
}

// GetNotePhoto streams the stored photo for a note.
func (s *Server) GetNotePhoto(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return s.HandleError(c, err, "Invalid note id", http.StatusBadRequest)
	}
	note, err := s.DS.GetNote(id)
	if err != nil {
		return s.handleDatastoreError(c, err, "Note not found")
	}
	if note.Photo == "" {
		return s.HandleError(c, nil, "Note has no photo", http.StatusNotFound)
	}
	return s.serveImage(c, note.Photo)
}

// ownedNote loads the note addressed by the route and verifies the
// caller wrote it. Any failure has already been written as a response.
func (s *Server) ownedNote(c echo.Context) (datastore.Note, error) {
	id, err := pathID(c)
	if err != nil {
		return datastore.Note{}, s.HandleError(c, err, "Invalid note id", http.StatusBadRequest)
	}
	note, err := s.DS.GetNote(id)
	if err != nil {
		return datastore.Note{}, s.handleDatastoreError(c, err, "Note not found")
	}
	userID, _ := s.Security.CurrentUserID(c)
	if note.UserID != userID {
		return datastore.Note{}, s.HandleError(c, nil, "Not the author of this note", http.StatusForbidden)
	}
	return note, nil
}

// savePhotoUpload stores the uploaded image from the named form field.
// A missing file is not an error and returns an empty filename.
func (s *Server) savePhotoUpload(c echo.Context, field string) (string, error) {
	file, err := c.FormFile(field)
	if err != nil || file == nil {
		return "", nil
	}
	return s.saveImage(file)
}

func (s *Server) saveImage(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", errors.New(err).
			Component("httpcontroller").
			Category(errors.CategoryValidation).
			Build()
	}
	defer src.Close()
	return s.Images.Save(src, file.Header.Get("Content-Type"))
}

func (s *Server) replacePhoto(file *multipart.FileHeader, oldFilename string) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", errors.New(err).
			Component("httpcontroller").
			Category(errors.CategoryValidation).
			Build()
	}
	defer src.Close()
	return s.Images.Replace(src, file.Header.Get("Content-Type"), oldFilename)
}

// serveImage streams a stored image with a content type derived from
// its file extension.
func (s *Server) serveImage(c echo.Context, filename string) error {
	f, err := s.Images.Open(filename)
	if err != nil {
		return s.handleDatastoreError(c, err, "Image not found")
	}
	defer f.Close()

	contentType := "image/jpeg"
	if strings.HasSuffix(filename, ".png") {
		contentType = "image/png"
	}
	return c.Stream(http.StatusOK, contentType, f)
}
