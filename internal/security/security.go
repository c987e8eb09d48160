// Package security handles password auth, cookie sessions and social
// login, plus the scheduler token gate for the ingest endpoint.
package security

import (
	"crypto/sha256"
	"crypto/subtle"
	"log/slog"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"

	"github.com/gignote/gignote-go/internal/conf"
	"github.com/gignote/gignote-go/internal/logging"
)

const (
	sessionName    = "gignote-session"
	sessionUserID  = "user_id"
	sessionIsAdmin = "is_admin"

	// SchedulerTokenHeader carries the shared secret the cron scheduler
	// presents when triggering an ingest run.
	SchedulerTokenHeader = "X-Scheduler-Token"
)

var securityLogger = logging.ForService("security")

// Manager owns the cookie session store and the authorization checks
// used by the HTTP layer.
type Manager struct {
	Settings *conf.Settings
	store    *sessions.CookieStore
	log      *slog.Logger
}

// NewManager creates the session store from the configured secret and
// registers the enabled social login providers.
func NewManager(settings *conf.Settings) *Manager {
	store := sessions.NewCookieStore(createSessionKey(settings.Security.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
	}

	m := &Manager{
		Settings: settings,
		store:    store,
		log:      securityLogger,
	}
	m.initGoth()
	return m
}

// createSessionKey derives a 32 byte key for AES-256 from the seed.
func createSessionKey(seed string) []byte {
	hasher := sha256.New()
	hasher.Write([]byte(seed))
	return hasher.Sum(nil)
}

// LoginUser records the user in the session cookie.
func (m *Manager) LoginUser(c echo.Context, userID uint, isAdmin bool) error {
	session, _ := m.store.Get(c.Request(), sessionName)
	session.Values[sessionUserID] = userID
	session.Values[sessionIsAdmin] = isAdmin
	if err := session.Save(c.Request(), c.Response()); err != nil {
		return err
	}
	m.log.Info("User logged in", "user_id", userID)
	return nil
}

// LogoutUser clears the session cookie.
func (m *Manager) LogoutUser(c echo.Context) error {
	session, _ := m.store.Get(c.Request(), sessionName)
	session.Options.MaxAge = -1
	return session.Save(c.Request(), c.Response())
}

// CurrentUserID returns the logged-in user's ID, if any.
func (m *Manager) CurrentUserID(c echo.Context) (uint, bool) {
	session, err := m.store.Get(c.Request(), sessionName)
	if err != nil {
		return 0, false
	}
	userID, ok := session.Values[sessionUserID].(uint)
	return userID, ok
}

// IsAuthenticated reports whether the request carries a valid session.
func (m *Manager) IsAuthenticated(c echo.Context) bool {
	_, ok := m.CurrentUserID(c)
	return ok
}

// IsAdmin reports whether the session belongs to an admin user.
func (m *Manager) IsAdmin(c echo.Context) bool {
	session, err := m.store.Get(c.Request(), sessionName)
	if err != nil {
		return false
	}
	isAdmin, ok := session.Values[sessionIsAdmin].(bool)
	return ok && isAdmin
}

// HasValidSchedulerToken reports whether the request presents the
// configured scheduler secret.
func (m *Manager) HasValidSchedulerToken(c echo.Context) bool {
	token := m.Settings.Security.SchedulerToken
	if token == "" {
		return false
	}
	header := c.Request().Header.Get(SchedulerTokenHeader)
	return subtle.ConstantTimeCompare([]byte(header), []byte(token)) == 1
}

// CanTriggerIngest reports whether the request may start an ingest run:
// an admin session or the scheduler token.
func (m *Manager) CanTriggerIngest(c echo.Context) bool {
	return m.IsAdmin(c) || m.HasValidSchedulerToken(c)
}
