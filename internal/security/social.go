package security

import (
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/github"
	gothGoogle "github.com/markbates/goth/providers/google"
)

// initGoth registers the enabled social login providers and points
// gothic at our cookie session store.
func (m *Manager) initGoth() {
	gothic.Store = sessions.NewCookieStore(createSessionKey(m.Settings.Security.SessionSecret))

	security := m.Settings.Security
	var providers []goth.Provider

	if security.GoogleAuth.Enabled {
		providers = append(providers, gothGoogle.New(
			security.GoogleAuth.ClientID,
			security.GoogleAuth.ClientSecret,
			security.GoogleAuth.RedirectURI,
		))
	}
	if security.GithubAuth.Enabled {
		providers = append(providers, github.New(
			security.GithubAuth.ClientID,
			security.GithubAuth.ClientSecret,
			security.GithubAuth.RedirectURI,
		))
	}

	if len(providers) > 0 {
		goth.UseProviders(providers...)
		m.log.Info("Social login providers initialized", "count", len(providers))
	}
}

// BeginSocialLogin redirects the user to the identity provider.
func (m *Manager) BeginSocialLogin(c echo.Context, provider string) {
	req := gothic.GetContextWithProvider(c.Request(), provider)
	gothic.BeginAuthHandler(c.Response(), req)
}

// CompleteSocialLogin finishes the OAuth flow and returns the provider's
// view of the user.
func (m *Manager) CompleteSocialLogin(c echo.Context, provider string) (goth.User, error) {
	req := gothic.GetContextWithProvider(c.Request(), provider)
	return gothic.CompleteUserAuth(c.Response(), req)
}
