/**
 * @description
 * This file implements the MongoDB-backed transaction repository. Transaction
 * documents are immutable once written; amounts are stored as decimal
 * strings so no precision is lost in the document representation.
 */
package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/horizonbank/horizon-api/internal/domain"
)

// MongoTransactionRepository is the MongoDB implementation of the
// TransactionRepository.
type MongoTransactionRepository struct {
	store *Store
}

// NewMongoTransactionRepository creates a new instance of
// MongoTransactionRepository.
func NewMongoTransactionRepository(store *Store) *MongoTransactionRepository {
	return &MongoTransactionRepository{store: store}
}

// transactionDoc is the document shape for the transactions collection.
// Amount is a decimal string rather than a float.
type transactionDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Name           string             `bson:"name"`
	Amount         string             `bson:"amount"`
	Channel        string             `bson:"channel"`
	Category       string             `bson:"category"`
	SenderID       string             `bson:"senderId"`
	SenderBankID   string             `bson:"senderBankId"`
	ReceiverID     string             `bson:"receiverId"`
	ReceiverBankID string             `bson:"receiverBankId"`
	Email          string             `bson:"email"`
	CreatedAt      time.Time          `bson:"createdAt"`
}

func toTransactionDoc(tx *domain.Transaction, now time.Time) transactionDoc {
	return transactionDoc{
		Name:           tx.Name,
		Amount:         tx.Amount.String(),
		Channel:        domain.TransactionChannel,
		Category:       domain.TransactionCategory,
		SenderID:       tx.SenderID,
		SenderBankID:   tx.SenderBankID,
		ReceiverID:     tx.ReceiverID,
		ReceiverBankID: tx.ReceiverBankID,
		Email:          tx.Email,
		CreatedAt:      now,
	}
}

func (d transactionDoc) toDomain() (domain.Transaction, error) {
	amount, err := decimal.NewFromString(d.Amount)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("decoding transaction amount %q: %w", d.Amount, err)
	}
	return domain.Transaction{
		ID:             d.ID,
		Name:           d.Name,
		Amount:         amount,
		Channel:        d.Channel,
		Category:       d.Category,
		SenderID:       d.SenderID,
		SenderBankID:   d.SenderBankID,
		ReceiverID:     d.ReceiverID,
		ReceiverBankID: d.ReceiverBankID,
		Email:          d.Email,
		CreatedAt:      d.CreatedAt,
	}, nil
}

// Create inserts an immutable transfer record. The channel and category are
// stamped here regardless of caller input; identifiers and amount are
// caller-validated.
func (r *MongoTransactionRepository) Create(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	coll, err := r.store.Collection(ctx, transactionsCollection)
	if err != nil {
		return nil, err
	}

	doc := toTransactionDoc(tx, time.Now().UTC())
	res, err := coll.InsertOne(ctx, doc)
	if err != nil {
		log.Printf("Error inserting transaction from bank %s: %v", tx.SenderBankID, err)
		return nil, fmt.Errorf("%w: inserting transaction: %v", domain.ErrPersistence, err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = id
	}

	stored, err := doc.toDomain()
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// ListByBankID returns the union of transactions where the bank is the sender
// or the receiver, as one unordered slice. Callers sort or split by direction
// themselves.
func (r *MongoTransactionRepository) ListByBankID(ctx context.Context, bankID string) ([]domain.Transaction, error) {
	coll, err := r.store.Collection(ctx, transactionsCollection)
	if err != nil {
		return nil, err
	}

	filter := bson.M{"$or": bson.A{
		bson.M{"senderBankId": bankID},
		bson.M{"receiverBankId": bankID},
	}}
	cursor, err := coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing transactions for bank %s: %w", bankID, err)
	}
	defer cursor.Close(ctx)

	var docs []transactionDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding transactions for bank %s: %w", bankID, err)
	}

	transactions := make([]domain.Transaction, 0, len(docs))
	for _, doc := range docs {
		tx, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	return transactions, nil
}
