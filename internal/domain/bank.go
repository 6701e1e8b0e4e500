package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

// BankAccount is a linked external bank account. The natural key is the
// aggregation provider's accountId; the store enforces a unique index on it so
// re-linking the same account can never produce a duplicate record.
type BankAccount struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AccountID        string             `bson:"accountId" json:"accountId"`
	BankID           string             `bson:"bankId" json:"bankId"`
	AccessToken      string             `bson:"accessToken" json:"-"`
	FundingSourceURL string             `bson:"fundingSourceUrl" json:"fundingSourceUrl"`
	ShareableID      string             `bson:"shareableId" json:"shareableId"`
	UserID           string             `bson:"userId" json:"userId"`
}

// Account is the read-model returned to clients for one linked account: the
// stored bank record joined with live metadata from the aggregation provider.
type Account struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	OfficialName   string  `json:"officialName,omitempty"`
	Mask           string  `json:"mask,omitempty"`
	Type           string  `json:"type"`
	Subtype        string  `json:"subtype,omitempty"`
	CurrentBalance float64 `json:"currentBalance"`
	BankID         string  `json:"bankId"`
	ShareableID    string  `json:"shareableId"`
}

// AccountsOverview aggregates every linked account for a user together with
// the combined balance across them.
type AccountsOverview struct {
	Accounts            []Account `json:"accounts"`
	TotalBanks          int       `json:"totalBanks"`
	TotalCurrentBalance float64   `json:"totalCurrentBalance"`
}
