/**
 * @description
 * This file defines the HTTP handlers for the read side: listing linked
 * banks, the aggregated accounts overview, and a single account with its
 * transaction history.
 */
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/horizonbank/horizon-api/internal/app"
	"github.com/horizonbank/horizon-api/internal/domain"
	"github.com/horizonbank/horizon-api/internal/store"
)

// BankHandler holds the dependencies for bank and account handlers.
type BankHandler struct {
	banks    store.BankRepository
	accounts *app.AccountService
}

// NewBankHandler creates a new BankHandler.
func NewBankHandler(banks store.BankRepository, accounts *app.AccountService) *BankHandler {
	return &BankHandler{banks: banks, accounts: accounts}
}

// ListBanks returns the caller's linked bank records.
func (h *BankHandler) ListBanks(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	banks, err := h.banks.ListByUser(r.Context(), user.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	if banks == nil {
		banks = []domain.BankAccount{}
	}
	writeJSON(w, http.StatusOK, banks)
}

// GetAccounts returns the aggregated overview of the caller's accounts.
func (h *BankHandler) GetAccounts(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	overview, err := h.accounts.GetAccounts(r.Context(), user.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

// AccountResponse is a single account joined with its transactions.
type AccountResponse struct {
	Account      *domain.Account      `json:"account"`
	Transactions []domain.Transaction `json:"transactions"`
}

// GetAccount returns one account with its transaction history. Accounts
// belonging to other users are indistinguishable from unknown ones.
func (h *BankHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	accountID := chi.URLParam(r, "accountID")

	account, transactions, err := h.accounts.GetAccount(r.Context(), user.UserID, accountID)
	if err != nil {
		writeError(w, err)
		return
	}
	if account == nil {
		http.Error(w, "Account not found", http.StatusNotFound)
		return
	}
	if transactions == nil {
		transactions = []domain.Transaction{}
	}
	writeJSON(w, http.StatusOK, AccountResponse{Account: account, Transactions: transactions})
}
