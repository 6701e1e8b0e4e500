/**
 * @description
 * This file provides the session middleware. The session token travels in a
 * secure, httpOnly cookie; the middleware resolves it to a user profile and
 * stores the profile in the request context. An anonymous caller on a
 * protected route gets 401 without the handler running.
 */
package api

import (
	"context"
	"net/http"

	"github.com/horizonbank/horizon-api/internal/domain"
)

// AuthContextKey is a custom type for the context key to avoid collisions.
type AuthContextKey string

// userKey is the key under which the resolved profile is stored.
const userKey AuthContextKey = "currentUser"

// UserResolver resolves a session token to a profile. Absence is (nil, nil).
type UserResolver interface {
	CurrentUser(ctx context.Context, token string) (*domain.UserProfile, error)
}

// SessionMiddleware reads the session cookie and attaches the resolved user
// profile to the request context.
func SessionMiddleware(resolver UserResolver, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var token string
			if cookie, err := r.Cookie(cookieName); err == nil {
				token = cookie.Value
			}

			user, err := resolver.CurrentUser(r.Context(), token)
			if err != nil {
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}
			if user == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext retrieves the authenticated profile from the request
// context. It returns nil when the request did not pass the middleware.
func UserFromContext(ctx context.Context) *domain.UserProfile {
	user, ok := ctx.Value(userKey).(*domain.UserProfile)
	if !ok {
		return nil
	}
	return user
}
