/**
 * @description
 * This file defines the HTTP handlers for the account-linking flow: link
 * token creation and the public-token exchange that runs the provisioning
 * chain.
 */
package api

import (
	"encoding/json"
	"net/http"

	"github.com/horizonbank/horizon-api/internal/app"
)

// LinkHandler holds the dependencies for account-linking handlers.
type LinkHandler struct {
	linking *app.LinkingService
}

// NewLinkHandler creates a new LinkHandler.
func NewLinkHandler(linking *app.LinkingService) *LinkHandler {
	return &LinkHandler{linking: linking}
}

// CreateLinkToken requests a link token for the authenticated user.
func (h *LinkHandler) CreateLinkToken(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	token, err := h.linking.CreateLinkToken(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"linkToken": token})
}

// ExchangeRequest is the expected JSON body for the public-token exchange.
type ExchangeRequest struct {
	PublicToken string `json:"publicToken"`
}

// ExchangePublicToken runs the provisioning chain for the authenticated
// user's freshly linked account.
func (h *LinkHandler) ExchangePublicToken(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req ExchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.PublicToken == "" {
		http.Error(w, "publicToken is required", http.StatusBadRequest)
		return
	}

	bank, err := h.linking.ExchangePublicToken(r.Context(), req.PublicToken, user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, bank)
}
