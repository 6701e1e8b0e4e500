/**
 * @description
 * This file defines the HTTP handlers for authentication. Every successful
 * sign-in/sign-up sets the session cookie; sign-out clears it. The cookie is
 * the only credential carrier; handlers never return the raw token in the
 * response body.
 */
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/horizonbank/horizon-api/internal/app"
	"github.com/horizonbank/horizon-api/internal/domain"
)

// sessionCookieMaxAge matches the identity provider's session lifetime.
const sessionCookieMaxAge = 7 * 24 * time.Hour

// AuthHandler holds the dependencies for authentication handlers.
type AuthHandler struct {
	auth         *app.AuthService
	cookieName   string
	cookieSecure bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *app.AuthService, cookieName string, cookieSecure bool) *AuthHandler {
	return &AuthHandler{auth: auth, cookieName: cookieName, cookieSecure: cookieSecure}
}

// SignUp handles account creation.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var params domain.SignUpParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if params.Email == "" || params.Password == "" || params.FirstName == "" || params.LastName == "" {
		http.Error(w, "Email, password, first name and last name are required", http.StatusBadRequest)
		return
	}

	profile, token, err := h.auth.SignUp(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusCreated, profile)
}

// SignInRequest is the expected JSON body for sign-in.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignIn handles authentication of an existing account.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	profile, token, err := h.auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, profile)
}

// SignOut invalidates the caller's session and clears the cookie. It
// succeeds even when the session is already gone.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	var token string
	if cookie, err := r.Cookie(h.cookieName); err == nil {
		token = cookie.Value
	}

	_ = h.auth.SignOut(r.Context(), token)

	h.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the profile of the authenticated caller.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sessionCookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}
