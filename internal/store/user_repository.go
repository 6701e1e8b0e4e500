/**
 * @description
 * This file implements the MongoDB-backed user profile repository. Profiles
 * are keyed by the identity provider's user id so the profile collection
 * stays independent of the provider's own session storage.
 */
package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/horizonbank/horizon-api/internal/domain"
)

// MongoUserRepository is the MongoDB implementation of the UserRepository.
type MongoUserRepository struct {
	store *Store
}

// NewMongoUserRepository creates a new instance of MongoUserRepository.
func NewMongoUserRepository(store *Store) *MongoUserRepository {
	return &MongoUserRepository{store: store}
}

// Upsert creates or updates the profile document keyed by userId. Only
// non-empty incoming fields are applied on the update path, so a repeat
// sign-up with a new address changes the address and nothing else.
func (r *MongoUserRepository) Upsert(ctx context.Context, profile *domain.UserProfile) (*domain.UserProfile, error) {
	coll, err := r.store.Collection(ctx, usersCollection)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	update := bson.M{
		"$set":         profileSetFields(profile, now),
		"$setOnInsert": bson.M{"userId": profile.UserID, "createdAt": now},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var stored domain.UserProfile
	err = coll.FindOneAndUpdate(ctx, bson.M{"userId": profile.UserID}, update, opts).Decode(&stored)
	if err != nil {
		log.Printf("Error upserting user profile %s: %v", profile.UserID, err)
		return nil, fmt.Errorf("%w: upserting user profile: %v", domain.ErrPersistence, err)
	}
	return &stored, nil
}

// profileSetFields builds the $set document from the non-empty profile
// fields. Empty incoming values never clobber stored ones.
func profileSetFields(profile *domain.UserProfile, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	fields := map[string]string{
		"email":             profile.Email,
		"firstName":         profile.FirstName,
		"lastName":          profile.LastName,
		"address1":          profile.Address1,
		"city":              profile.City,
		"state":             profile.State,
		"postalCode":        profile.PostalCode,
		"dateOfBirth":       profile.DateOfBirth,
		"ssn":               profile.SSN,
		"dwollaCustomerUrl": profile.DwollaCustomerURL,
		"dwollaCustomerId":  profile.DwollaCustomerID,
	}
	for key, value := range fields {
		if value != "" {
			set[key] = value
		}
	}
	return set
}

// FindByUserID looks up a profile by the identity provider's user id.
// A missing profile is (nil, nil), not an error.
func (r *MongoUserRepository) FindByUserID(ctx context.Context, userID string) (*domain.UserProfile, error) {
	coll, err := r.store.Collection(ctx, usersCollection)
	if err != nil {
		return nil, err
	}

	var profile domain.UserProfile
	err = coll.FindOne(ctx, bson.M{"userId": userID}).Decode(&profile)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding user profile %s: %w", userID, err)
	}
	return &profile, nil
}
