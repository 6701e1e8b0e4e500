/**
 * @description
 * This file sets up the HTTP router using the `chi` routing library. It
 * defines all the API routes and applies middleware: request logging,
 * recovery, CORS with credentials (the session cookie), and the session
 * middleware on protected routes.
 *
 * @dependencies
 * - github.com/go-chi/chi/v5: The routing library.
 * - github.com/go-chi/cors: CORS middleware.
 */
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/horizonbank/horizon-api/internal/config"
)

// Handlers bundles the handler sets the router wires up.
type Handlers struct {
	Auth         *AuthHandler
	Link         *LinkHandler
	Banks        *BankHandler
	Transactions *TransactionHandler
	Sessions     UserResolver
}

// NewRouter creates and configures a new HTTP router.
func NewRouter(cfg *config.Config, h Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins(),
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/sign-up", h.Auth.SignUp)
		r.Post("/sign-in", h.Auth.SignIn)
		r.Post("/sign-out", h.Auth.SignOut)

		r.Group(func(r chi.Router) {
			r.Use(SessionMiddleware(h.Sessions, cfg.SessionCookieName))
			r.Get("/me", h.Auth.Me)
		})
	})

	// Everything below requires an authenticated session.
	r.Group(func(r chi.Router) {
		r.Use(SessionMiddleware(h.Sessions, cfg.SessionCookieName))

		r.Route("/link", func(r chi.Router) {
			r.Post("/token", h.Link.CreateLinkToken)
			r.Post("/exchange", h.Link.ExchangePublicToken)
		})

		r.Route("/banks", func(r chi.Router) {
			r.Get("/", h.Banks.ListBanks)
			r.Get("/{bankID}/transactions", h.Transactions.ListByBank)
		})

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", h.Banks.GetAccounts)
			r.Get("/{accountID}", h.Banks.GetAccount)
		})

		r.Post("/transactions", h.Transactions.CreateTransfer)
	})

	return r
}
