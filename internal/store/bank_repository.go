/**
 * @description
 * This file implements the MongoDB-backed bank account repository. The
 * central operation is the idempotent upsert keyed by the aggregation
 * provider's accountId: the first insert wins, later attempts for the same
 * account return the stored record unchanged.
 */
package store

import (
	"context"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/horizonbank/horizon-api/internal/domain"
)

// MongoBankRepository is the MongoDB implementation of the BankRepository.
type MongoBankRepository struct {
	store *Store
}

// NewMongoBankRepository creates a new instance of MongoBankRepository.
func NewMongoBankRepository(store *Store) *MongoBankRepository {
	return &MongoBankRepository{store: store}
}

// Upsert inserts the bank record unless one already exists for its accountId.
// The existing record's fields are left untouched on conflict. Concurrent
// first-links race on the unique accountId index; the loser re-reads and
// returns the winner's record.
func (r *MongoBankRepository) Upsert(ctx context.Context, bank *domain.BankAccount) (*domain.BankAccount, error) {
	existing, err := r.FindByAccountID(ctx, bank.AccountID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	coll, err := r.store.Collection(ctx, banksCollection)
	if err != nil {
		return nil, err
	}

	res, err := coll.InsertOne(ctx, bank)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Lost the race against a concurrent link of the same account.
			winner, findErr := r.FindByAccountID(ctx, bank.AccountID)
			if findErr != nil {
				return nil, findErr
			}
			if winner != nil {
				return winner, nil
			}
		}
		log.Printf("Error inserting bank account %s: %v", bank.AccountID, err)
		return nil, fmt.Errorf("%w: inserting bank account: %v", domain.ErrPersistence, err)
	}

	inserted := *bank
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		inserted.ID = id
	}
	return &inserted, nil
}

// ListByUser returns every linked bank account for a user.
func (r *MongoBankRepository) ListByUser(ctx context.Context, userID string) ([]domain.BankAccount, error) {
	coll, err := r.store.Collection(ctx, banksCollection)
	if err != nil {
		return nil, err
	}

	cursor, err := coll.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("listing bank accounts for user %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var banks []domain.BankAccount
	if err := cursor.All(ctx, &banks); err != nil {
		return nil, fmt.Errorf("decoding bank accounts for user %s: %w", userID, err)
	}
	return banks, nil
}

// FindByAccountID is a point lookup by the provider's account id.
// A missing record is (nil, nil), not an error.
func (r *MongoBankRepository) FindByAccountID(ctx context.Context, accountID string) (*domain.BankAccount, error) {
	return r.findOne(ctx, bson.M{"accountId": accountID})
}

// FindByBankID is a point lookup by the aggregation provider's item id,
// the id transaction records reference.
func (r *MongoBankRepository) FindByBankID(ctx context.Context, bankID string) (*domain.BankAccount, error) {
	return r.findOne(ctx, bson.M{"bankId": bankID})
}

// FindByShareableID resolves a bank record from the link-safe shareable id,
// used when a transfer recipient is identified by a shared link.
func (r *MongoBankRepository) FindByShareableID(ctx context.Context, shareableID string) (*domain.BankAccount, error) {
	return r.findOne(ctx, bson.M{"shareableId": shareableID})
}

func (r *MongoBankRepository) findOne(ctx context.Context, filter bson.M) (*domain.BankAccount, error) {
	coll, err := r.store.Collection(ctx, banksCollection)
	if err != nil {
		return nil, err
	}

	var bank domain.BankAccount
	err = coll.FindOne(ctx, filter).Decode(&bank)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding bank account: %w", err)
	}
	return &bank, nil
}
