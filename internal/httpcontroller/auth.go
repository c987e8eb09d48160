package httpcontroller

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/markbates/goth"

	"github.com/gignote/gignote-go/internal/datastore"
	"github.com/gignote/gignote-go/internal/errors"
	"github.com/gignote/gignote-go/internal/security"
)

// registerRequest is the JSON body for account registration.
type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

// loginRequest is the JSON body for password login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates a local account and logs it in.
func (s *Server) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return s.HandleError(c, err, "Invalid request body", http.StatusBadRequest)
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" || req.FirstName == "" || req.LastName == "" {
		return s.HandleError(c, nil, "Username, email, first and last name are required", http.StatusBadRequest)
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		return s.HandleError(c, err, "Invalid password", statusForError(err))
	}

	user := datastore.User{
		Username:     req.Username,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: hash,
	}
	if err := s.DS.CreateUser(&user); err != nil {
		return s.handleDatastoreError(c, err, "Failed to create account")
	}

	if err := s.Security.LoginUser(c, user.ID, user.IsAdmin); err != nil {
		return s.HandleError(c, err, "Failed to start session", http.StatusInternalServerError)
	}
	return c.JSON(http.StatusCreated, userResponse(&user))
}

// Login checks the password and starts a session.
func (s *Server) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return s.HandleError(c, err, "Invalid request body", http.StatusBadRequest)
	}

	user, err := s.DS.GetUserByUsername(req.Username)
	if err != nil || !security.CheckPassword(user.PasswordHash, req.Password) {
		// Same response for unknown user and wrong password
		return s.HandleError(c, nil, "Invalid username or password", http.StatusUnauthorized)
	}

	if err := s.Security.LoginUser(c, user.ID, user.IsAdmin); err != nil {
		return s.HandleError(c, err, "Failed to start session", http.StatusInternalServerError)
	}
	return c.JSON(http.StatusOK, userResponse(&user))
}

// Logout ends the session.
func (s *Server) Logout(c echo.Context) error {
	if err := s.Security.LogoutUser(c); err != nil {
		return s.HandleError(c, err, "Failed to end session", http.StatusInternalServerError)
	}
	return c.NoContent(http.StatusNoContent)
}

// SocialLogin redirects to the configured identity provider.
func (s *Server) SocialLogin(c echo.Context) error {
	provider := c.Param("provider")
	if !s.socialProviderEnabled(provider) {
		return s.HandleError(c, nil, "Unknown login provider", http.StatusNotFound)
	}
	s.Security.BeginSocialLogin(c, provider)
	return nil
}

// SocialCallback finishes the OAuth flow, provisioning a local account
// on first sign-in.
func (s *Server) SocialCallback(c echo.Context) error {
	provider := c.Param("provider")
	if !s.socialProviderEnabled(provider) {
		return s.HandleError(c, nil, "Unknown login provider", http.StatusNotFound)
	}

	gothUser, err := s.Security.CompleteSocialLogin(c, provider)
	if err != nil {
		return s.HandleError(c, err, "Social login failed", http.StatusUnauthorized)
	}
	if gothUser.Email == "" {
		return s.HandleError(c, nil, "Login provider returned no email address", http.StatusUnauthorized)
	}

	user, err := s.DS.GetUserByEmail(gothUser.Email)
	if err != nil {
		if !errors.HasCategory(err, errors.CategoryNotFound) {
			return s.handleDatastoreError(c, err, "Failed to look up account")
		}
		user, err = s.provisionSocialUser(&gothUser)
		if err != nil {
			return s.handleDatastoreError(c, err, "Failed to create account")
		}
	}

	if err := s.Security.LoginUser(c, user.ID, user.IsAdmin); err != nil {
		return s.HandleError(c, err, "Failed to start session", http.StatusInternalServerError)
	}
	return c.JSON(http.StatusOK, userResponse(&user))
}

// provisionSocialUser creates a local account from the provider's user
// record. The username is the email local part, suffixed on collision.
func (s *Server) provisionSocialUser(gothUser *goth.User) (datastore.User, error) {
	base := gothUser.NickName
	if base == "" {
		base = strings.SplitN(gothUser.Email, "@", 2)[0]
	}

	username := base
	for i := 2; ; i++ {
		_, err := s.DS.GetUserByUsername(username)
		if err != nil {
			if errors.HasCategory(err, errors.CategoryNotFound) {
				break
			}
			return datastore.User{}, err
		}
		username = fmt.Sprintf("%s%d", base, i)
	}

	firstName := gothUser.FirstName
	lastName := gothUser.LastName
	if firstName == "" && gothUser.Name != "" {
		parts := strings.SplitN(gothUser.Name, " ", 2)
		firstName = parts[0]
		if len(parts) > 1 {
			lastName = parts[1]
		}
	}
	if firstName == "" {
		firstName = username
	}
	if lastName == "" {
		lastName = username
	}

	user := datastore.User{
		Username:  username,
		Email:     gothUser.Email,
		FirstName: firstName,
		LastName:  lastName,
	}
	if err := s.DS.CreateUser(&user); err != nil {
		return datastore.User{}, err
	}
	s.webLogger.Info("Provisioned account from social login", "username", username, "provider", gothUser.Provider)
	return user, nil
}

// socialProviderEnabled reports whether provider is configured.
func (s *Server) socialProviderEnabled(provider string) bool {
	switch provider {
	case "google":
		return s.Settings.Security.GoogleAuth.Enabled
	case "github":
		return s.Settings.Security.GithubAuth.Enabled
	default:
		return false
	}
}
