package authclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/horizonbank/horizon-api/internal/domain"
)

func TestSignIn_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/sign-in/email" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if body["email"] != "a@x.com" {
			t.Fatalf("unexpected email %q", body["email"])
		}
		_ = json.NewEncoder(w).Encode(Session{
			Token: "tok-1",
			User:  AuthUser{ID: "user-1", Email: "a@x.com", Name: "A B"},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	session, err := client.SignIn(context.Background(), "a@x.com", "pw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.Token != "tok-1" || session.User.ID != "user-1" {
		t.Fatalf("unexpected session %+v", session)
	}
}

func TestSignIn_RejectedCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.SignIn(context.Background(), "a@x.com", "wrong")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSignOut_SendsSessionCookie(t *testing.T) {
	var gotCookie string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie("better-auth.session_token"); err == nil {
			gotCookie = cookie.Value
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if err := client.SignOut(context.Background(), "tok-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotCookie != "tok-1" {
		t.Fatalf("expected the session token in the provider cookie, got %q", gotCookie)
	}
}

func TestSignUp_ProviderFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "email already registered", http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if _, err := client.SignUp(context.Background(), "A B", "a@x.com", "pw"); err == nil {
		t.Fatal("expected provider failure to surface")
	}
}
