/**
 * @description
 * This file defines the core user-facing domain models: the persisted user
 * profile, the sign-up payload, and the session record owned by the identity
 * provider.
 *
 * @notes
 * - UserProfile is keyed by the identity provider's user id, not by the
 *   document store's own id, so the profile store stays decoupled from the
 *   provider's session store.
 * - The national identifier (SSN) is never serialized into API responses.
 */
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserProfile is the persisted profile document for a signed-up user.
type UserProfile struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UserID            string             `bson:"userId" json:"userId"`
	Email             string             `bson:"email" json:"email"`
	FirstName         string             `bson:"firstName" json:"firstName"`
	LastName          string             `bson:"lastName" json:"lastName"`
	Address1          string             `bson:"address1" json:"address1"`
	City              string             `bson:"city" json:"city"`
	State             string             `bson:"state" json:"state"`
	PostalCode        string             `bson:"postalCode" json:"postalCode"`
	DateOfBirth       string             `bson:"dateOfBirth" json:"dateOfBirth"`
	SSN               string             `bson:"ssn" json:"-"`
	DwollaCustomerURL string             `bson:"dwollaCustomerUrl" json:"dwollaCustomerUrl"`
	DwollaCustomerID  string             `bson:"dwollaCustomerId" json:"dwollaCustomerId"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// SignUpParams carries the fields collected by the sign-up form.
type SignUpParams struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Address1    string `json:"address1"`
	City        string `json:"city"`
	State       string `json:"state"`
	PostalCode  string `json:"postalCode"`
	DateOfBirth string `json:"dateOfBirth"`
	SSN         string `json:"ssn"`
}

// Session is the identity provider's session record. This service only ever
// reads sessions to resolve the caller and deletes them on sign-out; creation
// and expiry are owned by the provider.
type Session struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Token     string             `bson:"token" json:"-"`
	UserID    string             `bson:"userId" json:"userId"`
	ExpiresAt time.Time          `bson:"expiresAt" json:"expiresAt"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
