package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Fixed classification values for transfers created through this service.
const (
	TransactionChannel  = "Online"
	TransactionCategory = "Transfer"
)

// Transaction is an immutable transfer record. Sender and receiver are
// referenced by their aggregation-provider item id (bankId), not by the bank
// record's store id, so either side of a transfer can be found with a single
// query and no join.
type Transaction struct {
	ID             primitive.ObjectID `json:"id"`
	Name           string             `json:"name"`
	Amount         decimal.Decimal    `json:"amount"`
	Channel        string             `json:"channel"`
	Category       string             `json:"category"`
	SenderID       string             `json:"senderId"`
	SenderBankID   string             `json:"senderBankId"`
	ReceiverID     string             `json:"receiverId"`
	ReceiverBankID string             `json:"receiverBankId"`
	Email          string             `json:"email"`
	CreatedAt      time.Time          `json:"createdAt"`
}
