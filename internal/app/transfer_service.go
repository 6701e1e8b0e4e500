/**
 * @description
 * This file contains the funds-transfer service. A transfer resolves the
 * sender's bank from the caller's linked accounts, resolves the receiver
 * from a shareable id, moves the money between the two funding sources at
 * the payments processor, and records an immutable transaction referencing
 * both banks by their aggregation item id.
 */
package app

import (
	"context"
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"github.com/horizonbank/horizon-api/internal/domain"
	"github.com/horizonbank/horizon-api/internal/store"
	"github.com/horizonbank/horizon-api/pkg/rabbitmq"
)

// TransferExecutor moves funds between two funding sources.
type TransferExecutor interface {
	CreateTransfer(ctx context.Context, sourceFundingURL, destinationFundingURL string, amount decimal.Decimal) (string, error)
}

// TransferService records transfers between linked bank accounts.
type TransferService struct {
	processor    TransferExecutor
	banks        store.BankRepository
	transactions store.TransactionRepository
	events       rabbitmq.Publisher
}

// NewTransferService creates a new instance of TransferService.
func NewTransferService(processor TransferExecutor, banks store.BankRepository, transactions store.TransactionRepository, events rabbitmq.Publisher) *TransferService {
	return &TransferService{
		processor:    processor,
		banks:        banks,
		transactions: transactions,
		events:       events,
	}
}

// TransferInput is the caller-validated input for a funds transfer.
type TransferInput struct {
	Name                string
	Amount              decimal.Decimal
	Email               string
	SenderAccountID     string
	ReceiverShareableID string
}

// TransactionCreatedEvent is published after a transfer is recorded; the
// notification consumer emails the address on the transaction.
type TransactionCreatedEvent struct {
	TransactionID string `json:"transaction_id"`
	Amount        string `json:"amount"`
	SenderID      string `json:"sender_id"`
	ReceiverID    string `json:"receiver_id"`
	Email         string `json:"email"`
}

// CreateTransfer executes a transfer on behalf of the sender and records it.
func (s *TransferService) CreateTransfer(ctx context.Context, sender *domain.UserProfile, input TransferInput) (*domain.Transaction, error) {
	senderBank, err := s.banks.FindByAccountID(ctx, input.SenderAccountID)
	if err != nil {
		return nil, err
	}
	if senderBank == nil || senderBank.UserID != sender.UserID {
		return nil, fmt.Errorf("%w: sender account %s", domain.ErrBankNotFound, input.SenderAccountID)
	}

	receiverBank, err := s.banks.FindByShareableID(ctx, input.ReceiverShareableID)
	if err != nil {
		return nil, err
	}
	if receiverBank == nil {
		return nil, fmt.Errorf("%w: no bank for shareable id", domain.ErrBankNotFound)
	}

	if _, err := s.processor.CreateTransfer(ctx, senderBank.FundingSourceURL, receiverBank.FundingSourceURL, input.Amount); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTransferFailed, err)
	}

	tx, err := s.transactions.Create(ctx, &domain.Transaction{
		Name:           input.Name,
		Amount:         input.Amount,
		SenderID:       sender.UserID,
		SenderBankID:   senderBank.BankID,
		ReceiverID:     receiverBank.UserID,
		ReceiverBankID: receiverBank.BankID,
		Email:          input.Email,
	})
	if err != nil {
		return nil, err
	}

	event := TransactionCreatedEvent{
		TransactionID: tx.ID.Hex(),
		Amount:        tx.Amount.String(),
		SenderID:      tx.SenderID,
		ReceiverID:    tx.ReceiverID,
		Email:         tx.Email,
	}
	if err := s.events.Publish(ctx, "transaction.created", event); err != nil {
		log.Printf("Failed to publish transaction.created event for %s: %v", tx.ID.Hex(), err)
	}

	return tx, nil
}

// ListByBank returns every transaction where the bank is sender or receiver.
// The bank must belong to the caller; a foreign or unknown bank id surfaces
// as domain.ErrBankNotFound so history never leaks across users.
func (s *TransferService) ListByBank(ctx context.Context, userID, bankID string) ([]domain.Transaction, error) {
	bank, err := s.banks.FindByBankID(ctx, bankID)
	if err != nil {
		return nil, err
	}
	if bank == nil || bank.UserID != userID {
		return nil, fmt.Errorf("%w: bank %s", domain.ErrBankNotFound, bankID)
	}
	return s.transactions.ListByBankID(ctx, bankID)
}
