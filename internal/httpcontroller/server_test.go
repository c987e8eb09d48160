package httpcontroller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gignote/gignote-go/internal/conf"
	"github.com/gignote/gignote-go/internal/datastore"
	"github.com/gignote/gignote-go/internal/imagestore"
	"github.com/gignote/gignote-go/internal/ingest"
	"github.com/gignote/gignote-go/internal/observability"
	"github.com/gignote/gignote-go/internal/security"
)

const testSourceURL = "https://venue.example.com/shows/?orderby=past_shows"

// listingPage is a minimal source page with two past show entries.
const listingPage = `<html><body>
<div class="show_list_item">
  <span class="month">Nov</span><span class="day">27</span><span class="year">2021</span>
  <h4><a href="/low">Low</a></h4>
  <span class="venue_name">First Avenue</span>
</div>
<div class="show_list_item">
  <span class="month">Jul</span><span class="day">24</span><span class="year">2021</span>
  <h4><a href="/dessa">Dessa</a></h4>
  <span class="venue_name">Turf Club</span>
</div>
</body></html>`

func testSettings(t *testing.T) *conf.Settings {
	t.Helper()

	settings := &conf.Settings{}
	settings.WebServer.Port = "8080"
	settings.WebServer.PageSize = 10
	settings.Database.SQLite.Enabled = true
	settings.Database.SQLite.Path = fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	settings.Security.SessionSecret = "test-session-secret"
	settings.Security.SchedulerToken = "test-scheduler-token"
	settings.Media.Path = t.TempDir()
	settings.Ingest.SourceURL = testSourceURL
	settings.Ingest.Timeout = 10
	settings.Ingest.Timezone = "America/Chicago"
	settings.Ingest.DefaultShowHour = 19
	settings.Ingest.VenueState = "Minnesota"
	settings.Ingest.VenueCities = map[string]string{
		"First Avenue": "Minneapolis",
		"Turf Club":    "St. Paul",
	}
	return settings
}

// newTestServer wires a full server against an isolated in-memory
// database. The returned transport is the mocked ingest fetch client.
func newTestServer(t *testing.T) (*Server, *http.Client) {
	t.Helper()

	settings := testSettings(t)

	ds := datastore.New(settings)
	require.NotNil(t, ds)
	require.NoError(t, ds.Open())
	t.Cleanup(func() { _ = ds.Close() })

	metrics, err := observability.NewMetrics()
	require.NoError(t, err)

	images, err := imagestore.New(settings.Media.Path)
	require.NoError(t, err)

	ingestService, err := ingest.NewService(settings, ds, metrics.Ingest)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ingestService.Close() })

	client := &http.Client{}
	httpmock.ActivateNonDefault(client)
	t.Cleanup(httpmock.DeactivateAndReset)
	ingestService.SetHTTPClient(client)

	server := New(settings, ds, security.NewManager(settings), images, ingestService, metrics)
	t.Cleanup(func() { _ = server.webLogClose() })
	return server, client
}

func doRequest(server *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	server.Echo.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, target string, body any) *http.Request {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(data))
	req.Header.Set(echoHeaderContentType, "application/json")
	return req
}

const echoHeaderContentType = "Content-Type"

// registerUser creates an account through the API and returns its
// session cookies.
func registerUser(t *testing.T, server *Server, username string) []*http.Cookie {
	t.Helper()

	rec := doRequest(server, jsonRequest(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"username":   username,
		"email":      username + "@example.com",
		"first_name": "Test",
		"last_name":  "User",
		"password":   "a long enough password",
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return rec.Result().Cookies()
}

func withCookies(req *http.Request, cookies []*http.Cookie) *http.Request {
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	return req
}

// seedShow inserts a venue, artist and show directly into the datastore.
func seedShow(t *testing.T, server *Server, artistName, venueName string, date time.Time) datastore.Show {
	t.Helper()

	_, err := server.DS.InsertVenue(&datastore.Venue{Name: venueName, City: "Minneapolis", State: "Minnesota"})
	require.NoError(t, err)
	_, err = server.DS.InsertArtist(&datastore.Artist{Name: artistName})
	require.NoError(t, err)

	venue, err := server.DS.GetVenueByName(venueName)
	require.NoError(t, err)
	artist, err := server.DS.GetArtistByName(artistName)
	require.NoError(t, err)

	show := datastore.Show{Date: date, ArtistID: artist.ID, VenueID: venue.ID}
	created, err := server.DS.InsertShow(&show)
	require.NoError(t, err)
	require.True(t, created)
	return show
}

// noteForm builds a multipart note body with an optional photo part.
func noteForm(t *testing.T, title, text, photoContentType string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("title", title))
	require.NoError(t, w.WriteField("text", text))

	if photoContentType != "" {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="photo"; filename="photo"`)
		header.Set("Content-Type", photoContentType)
		part, err := w.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write([]byte("image bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestListVenuesSearchAndPagination(t *testing.T) {
	server, _ := newTestServer(t)

	for i := 0; i < 15; i++ {
		_, err := server.DS.InsertVenue(&datastore.Venue{
			Name:  fmt.Sprintf("Venue %02d", i),
			City:  "Minneapolis",
			State: "Minnesota",
		})
		require.NoError(t, err)
	}

	var resp VenueListResponse

	// First page holds the page size
	rec := doRequest(server, httptest.NewRequest(http.MethodGet, "/api/v1/venues", http.NoBody))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Venues, 10)
	assert.Equal(t, 1, resp.Pagination.Page)
	assert.Equal(t, 2, resp.Pagination.TotalPages)
	assert.EqualValues(t, 15, resp.Pagination.TotalItems)

	// Second page holds the remainder
	rec = doRequest(server, httptest.NewRequest(http.MethodGet, "/api/v1/venues?page=2", http.NoBody))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Venues, 5)
	assert.Equal(t, 2, resp.Pagination.Page)

	// A non-numeric page falls back to the first page
	rec = doRequest(server, httptest.NewRequest(http.MethodGet, "/api/v1/venues?page=abc", http.NoBody))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Pagination.Page)

	// A page past the end clamps to the last page
	rec = doRequest(server, httptest.NewRequest(http.MethodGet, "/api/v1/venues?page=99", http.NoBody))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Pagination.Page)
	assert.Len(t, resp.Venues, 5)

	// Search narrows by name substring
	rec = doRequest(server, httptest.NewRequest(http.MethodGet, "/api/v1/venues?search=Venue+03", http.NoBody))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Venues, 1)
	assert.Equal(t, "Venue 03", resp.Venues[0].Name)
}

func TestGetVenueNotFound(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(server, httptest.NewRequest(http.MethodGet, "/api/v1/venues/999", http.NoBody))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(server, httptest.NewRequest(http.MethodGet, "/api/v1/venues/notanid", http.NoBody))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVenueShows(t *testing.T) {
	server, _ := newTestServer(t)

	date := time.Date(2021, time.November, 28, 1, 0, 0, 0, time.UTC)
	show := seedShow(t, server, "Low", "First Avenue", date)
	seedShow(t, server, "Dessa", "Turf Club", date)

	rec := doRequest(server, httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/api/v1/venues/%d/shows", show.VenueID), http.NoBody))
	require.Equal(t, http.StatusOK, rec.Code)

	var shows []ShowResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &shows))
	require.Len(t, shows, 1)
	assert.Equal(t, "Low", shows[0].Artist.Name)
	assert.Equal(t, "First Avenue", shows[0].Venue.Name)
}

func TestListShowsMostRecentFirst(t *testing.T) {
	server, _ := newTestServer(t)

	older := time.Date(2021, time.March, 14, 1, 0, 0, 0, time.UTC)
	newer := time.Date(2021, time.November, 28, 1, 0, 0, 0, time.UTC)
	seedShow(t, server, "Semisonic", "First Avenue", older)
	seedShow(t, server, "Low", "Turf Club", newer)

	rec := doRequest(server, httptest.NewRequest(http.MethodGet, "/api/v1/shows", http.NoBody))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ShowListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Shows, 2)
	assert.Equal(t, "Low", resp.Shows[0].Artist.Name)
}

func TestRegisterLoginLogout(t *testing.T) {
	server, _ := newTestServer(t)

	cookies := registerUser(t, server, "alice")
	require.NotEmpty(t, cookies)

	// Duplicate username conflicts
	rec := doRequest(server, jsonRequest(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"username":   "alice",
		"email":      "alice2@example.com",
		"first_name": "Test",
		"last_name":  "User",
		"password":   "a long enough password",
	}))
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Wrong password rejected
	rec = doRequest(server, jsonRequest(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": "alice",
		"password": "wrong password entirely",
	}))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Correct password accepted
	rec = doRequest(server, jsonRequest(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": "alice",
		"password": "a long enough password",
	}))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Logout clears the session
	req := withCookies(httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", http.NoBody), rec.Result().Cookies())
	rec = doRequest(server, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(server, jsonRequest(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"username":   "bob",
		"email":      "bob@example.com",
		"first_name": "Test",
		"last_name":  "User",
		"password":   "short",
	}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateNoteRequiresSession(t *testing.T) {
	server, _ := newTestServer(t)

	show := seedShow(t, server, "Low", "First Avenue", time.Now().Add(-24*time.Hour))

	body, contentType := noteForm(t, "Great show", "It was great", "")
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/shows/%d/notes", show.ID), body)
	req.Header.Set(echoHeaderContentType, contentType)
	rec := doRequest(server, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNoteLifecycle(t *testing.T) {
	server, _ := newTestServer(t)

	past := seedShow(t, server, "Low", "First Avenue", time.Now().Add(-24*time.Hour))
	future := seedShow(t, server, "Dessa", "Turf Club", time.Now().Add(24*time.Hour))
	alice := registerUser(t, server, "alice")
	bob := registerUser(t, server, "bob")

	postNote := func(cookies []*http.Cookie, showID uint, title string) *httptest.ResponseRecorder {
		body, contentType := noteForm(t, title, "some text", "")
		req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/shows/%d/notes", showID), body)
		req.Header.Set(echoHeaderContentType, contentType)
		return doRequest(server, withCookies(req, cookies))
	}

	// A note for a show that has not happened yet is rejected
	rec := postNote(alice, future.ID, "Too early")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// First note accepted
	rec = postNote(alice, past.ID, "Great show")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var note NoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &note))
	assert.Equal(t, "alice", note.User.Username)
	assert.False(t, note.HasPhoto)

	// Second note for the same show conflicts
	rec = postNote(alice, past.ID, "Again")
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Another user may edit nothing of alice's note
	body, contentType := noteForm(t, "Hijacked", "rewritten", "")
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/v1/notes/%d", note.ID), body)
	req.Header.Set(echoHeaderContentType, contentType)
	rec = doRequest(server, withCookies(req, bob))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// The author may edit it
	body, contentType = noteForm(t, "Still great", "", "")
	req = httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/v1/notes/%d", note.ID), body)
	req.Header.Set(echoHeaderContentType, contentType)
	rec = doRequest(server, withCookies(req, alice))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &note))
	assert.Equal(t, "Still great", note.Title)
	assert.Equal(t, "some text", note.Text, "empty field leaves the value unchanged")

	// Deleting someone else's note is forbidden
	req = httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/v1/notes/%d", note.ID), http.NoBody)
	rec = doRequest(server, withCookies(req, bob))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// The author may delete it
	req = httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/v1/notes/%d", note.ID), http.NoBody)
	rec = doRequest(server, withCookies(req, alice))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(server, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/notes/%d", note.ID), http.NoBody))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNotePhotoUpload(t *testing.T) {
	server, _ := newTestServer(t)

	show := seedShow(t, server, "Low", "First Avenue", time.Now().Add(-24*time.Hour))
	alice := registerUser(t, server, "alice")

	// An unsupported content type is rejected before anything is saved
	body, contentType := noteForm(t, "Great show", "text", "image/svg+xml")
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/shows/%d/notes", show.ID), body)
	req.Header.Set(echoHeaderContentType, contentType)
	rec := doRequest(server, withCookies(req, alice))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// PNG accepted
	body, contentType = noteForm(t, "Great show", "text", "image/png")
	req = httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/shows/%d/notes", show.ID), body)
	req.Header.Set(echoHeaderContentType, contentType)
	rec = doRequest(server, withCookies(req, alice))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var note NoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &note))
	assert.True(t, note.HasPhoto)

	// The photo is served back
	rec = doRequest(server, httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/api/v1/notes/%d/photo", note.ID), http.NoBody))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echoHeaderContentType))
	data, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, "image bytes", string(data))
}

func TestProfileUpdate(t *testing.T) {
	server, _ := newTestServer(t)

	show := seedShow(t, server, "Low", "First Avenue", time.Now().Add(-24*time.Hour))
	alice := registerUser(t, server, "alice")

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("favorite_artist_id", fmt.Sprint(show.ArtistID)))
	require.NoError(t, w.WriteField("favorite_venue_id", fmt.Sprint(show.VenueID)))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPut, "/api/v1/profile", &buf)
	req.Header.Set(echoHeaderContentType, w.FormDataContentType())
	rec := doRequest(server, withCookies(req, alice))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var profile ProfileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	require.NotNil(t, profile.FavoriteArtist)
	require.NotNil(t, profile.FavoriteVenue)
	assert.Equal(t, "Low", profile.FavoriteArtist.Name)
	assert.Equal(t, "First Avenue", profile.FavoriteVenue.Name)
	assert.False(t, profile.HasAvatar)

	// Unauthenticated profile access is rejected
	rec = doRequest(server, httptest.NewRequest(http.MethodGet, "/api/v1/profile", http.NoBody))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPopulateForbiddenWithoutCredentials(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(server, httptest.NewRequest(http.MethodPost, "/api/v1/admin/populate", http.NoBody))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	total, err := server.DS.CountShows()
	require.NoError(t, err)
	assert.Zero(t, total, "a rejected trigger must not write anything")
}

func TestPopulateWithSchedulerToken(t *testing.T) {
	server, _ := newTestServer(t)

	httpmock.RegisterResponder(http.MethodGet, testSourceURL,
		httpmock.NewStringResponder(http.StatusOK, listingPage))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/populate", http.NoBody)
	req.Header.Set(security.SchedulerTokenHeader, "test-scheduler-token")
	rec := doRequest(server, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	total, err := server.DS.CountShows()
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	venue, err := server.DS.GetVenueByName("Turf Club")
	require.NoError(t, err)
	assert.Equal(t, "St. Paul", venue.City)
}

func TestPopulateSourceGone(t *testing.T) {
	server, _ := newTestServer(t)

	httpmock.RegisterResponder(http.MethodGet, testSourceURL,
		httpmock.NewStringResponder(http.StatusNotFound, "gone"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/populate", http.NoBody)
	req.Header.Set(security.SchedulerTokenHeader, "test-scheduler-token")
	rec := doRequest(server, req)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	// Serve one API request so the HTTP counters have samples
	doRequest(server, httptest.NewRequest(http.MethodGet, "/api/v1/venues", http.NoBody))

	rec := doRequest(server, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "http_requests_total"))
}
