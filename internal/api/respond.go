package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/horizonbank/horizon-api/internal/domain"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto HTTP status codes. Provisioning-chain
// failures are upstream faults and surface as 502 with a retry hint, since
// the public link token is single-use and the user must restart linking.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		http.Error(w, "Invalid email or password", http.StatusUnauthorized)
	case errors.Is(err, domain.ErrBankNotFound):
		http.Error(w, "Bank account not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrTokenExchange),
		errors.Is(err, domain.ErrAccountFetch),
		errors.Is(err, domain.ErrProcessorToken),
		errors.Is(err, domain.ErrFundingSource):
		http.Error(w, "Linking failed, please restart account linking", http.StatusBadGateway)
	case errors.Is(err, domain.ErrTransferFailed):
		http.Error(w, "Transfer failed, please try again", http.StatusBadGateway)
	case errors.Is(err, domain.ErrProfileCreation):
		http.Error(w, "Account created but profile setup failed, please sign up again", http.StatusConflict)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
