/**
 * @description
 * This file defines the HTTP handlers for funds transfers: creating a
 * transfer and listing a bank's transaction history.
 */
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/horizonbank/horizon-api/internal/app"
	"github.com/horizonbank/horizon-api/internal/domain"
)

// TransactionHandler holds the dependencies for transfer handlers.
type TransactionHandler struct {
	transfers *app.TransferService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transfers *app.TransferService) *TransactionHandler {
	return &TransactionHandler{transfers: transfers}
}

// CreateTransferRequest is the expected JSON body for a funds transfer.
type CreateTransferRequest struct {
	Name                string `json:"name"`
	Amount              string `json:"amount"`
	Email               string `json:"email"`
	SenderAccountID     string `json:"senderAccountId"`
	ReceiverShareableID string `json:"receiverShareableId"`
}

// CreateTransfer moves funds from the caller's bank to the bank behind a
// shareable id and records the transaction.
func (h *TransactionHandler) CreateTransfer(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreateTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.SenderAccountID == "" || req.ReceiverShareableID == "" {
		http.Error(w, "senderAccountId and receiverShareableId are required", http.StatusBadRequest)
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		http.Error(w, "amount must be a positive decimal", http.StatusBadRequest)
		return
	}

	tx, err := h.transfers.CreateTransfer(r.Context(), user, app.TransferInput{
		Name:                req.Name,
		Amount:              amount,
		Email:               req.Email,
		SenderAccountID:     req.SenderAccountID,
		ReceiverShareableID: req.ReceiverShareableID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

// ListByBank returns every transaction where the caller's bank participates
// as sender or receiver.
func (h *TransactionHandler) ListByBank(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	bankID := chi.URLParam(r, "bankID")

	transactions, err := h.transfers.ListByBank(r.Context(), user.UserID, bankID)
	if err != nil {
		writeError(w, err)
		return
	}
	if transactions == nil {
		transactions = []domain.Transaction{}
	}
	writeJSON(w, http.StatusOK, transactions)
}
