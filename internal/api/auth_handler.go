package api

import (
	"net/http"
	"time"

	"github.com/phrazzld/tasklane-api/internal/api/shared"
	"github.com/phrazzld/tasklane-api/internal/schema"
	"github.com/phrazzld/tasklane-api/internal/service"
)

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	users  service.UserService
	cookie CookieConfig
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(users service.UserService, cookie CookieConfig) *AuthHandler {
	if cookie.Name == "" {
		cookie.Name = "token"
	}
	return &AuthHandler{users: users, cookie: cookie}
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var creds schema.Credentials
	if err := shared.DecodeJSON(w, r, &creds); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	session, err := h.users.Signup(r.Context(), creds)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create user")
		return
	}

	h.setSessionCookie(w, session.Token, session.ExpiresAt)
	shared.RespondWithJSON(w, r, http.StatusCreated, AuthResponse{
		Success: true,
		Message: "User created successfully.",
		Data: AuthUserData{
			ID:        session.User.ID,
			Email:     session.User.Email,
			ExpiresAt: session.ExpiresAt.UTC().Format(time.RFC3339),
		},
	})
}

// Signin handles POST /api/auth/signin.
func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var creds schema.Credentials
	if err := shared.DecodeJSON(w, r, &creds); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	session, err := h.users.Signin(r.Context(), creds)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to authenticate user")
		return
	}

	h.setSessionCookie(w, session.Token, session.ExpiresAt)
	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		Success: true,
		Message: "Login successful.",
		Data: AuthUserData{
			ID:        session.User.ID,
			ExpiresAt: session.ExpiresAt.UTC().Format(time.RFC3339),
		},
	})
}

// Signout handles POST /api/auth/signout by expiring the session cookie.
func (h *AuthHandler) Signout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	})
	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Success: true, Message: "Signed out."})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}
