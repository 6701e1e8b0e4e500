/**
 * @description
 * This file defines the interfaces for the data access layer (repositories).
 * Defining interfaces allows for dependency injection and easy mocking in
 * tests, promoting a loosely coupled architecture.
 *
 * @notes
 * - Any component that needs to interact with the document store should
 *   depend on these interfaces, not on the concrete MongoDB implementations.
 * - Point lookups return (nil, nil) on a miss: absence is a valid result,
 *   not a failure.
 */
package store

import (
	"context"

	"github.com/horizonbank/horizon-api/internal/domain"
)

// UserRepository defines the contract for user profile persistence.
type UserRepository interface {
	// Upsert creates the profile when no document exists for its userId, and
	// otherwise applies the supplied non-empty field values to the existing
	// document. The stored profile is returned in both cases.
	Upsert(ctx context.Context, profile *domain.UserProfile) (*domain.UserProfile, error)
	FindByUserID(ctx context.Context, userID string) (*domain.UserProfile, error)
}

// BankRepository defines the contract for linked bank account persistence.
type BankRepository interface {
	// Upsert inserts the bank record unless one already exists for its
	// accountId, in which case the existing record is returned untouched.
	// The first insert is authoritative.
	Upsert(ctx context.Context, bank *domain.BankAccount) (*domain.BankAccount, error)
	ListByUser(ctx context.Context, userID string) ([]domain.BankAccount, error)
	FindByAccountID(ctx context.Context, accountID string) (*domain.BankAccount, error)
	FindByBankID(ctx context.Context, bankID string) (*domain.BankAccount, error)
	FindByShareableID(ctx context.Context, shareableID string) (*domain.BankAccount, error)
}

// SessionRepository reads the identity provider's session documents. The
// provider owns creation and expiry; this core only resolves and removes them.
type SessionRepository interface {
	FindByToken(ctx context.Context, token string) (*domain.Session, error)
	DeleteByUserID(ctx context.Context, userID string) error
}

// TransactionRepository defines the contract for immutable transfer records.
type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
	// ListByBankID returns every transaction in which the bank participates
	// as sender or receiver, each exactly once, in no particular order.
	ListByBankID(ctx context.Context, bankID string) ([]domain.Transaction, error)
}
