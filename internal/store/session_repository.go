package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/horizonbank/horizon-api/internal/domain"
)

// MongoSessionRepository reads the identity provider's session collection.
// Sessions are written by the provider; this repository only resolves tokens
// and removes sessions on sign-out.
type MongoSessionRepository struct {
	store *Store
}

// NewMongoSessionRepository creates a new instance of MongoSessionRepository.
func NewMongoSessionRepository(store *Store) *MongoSessionRepository {
	return &MongoSessionRepository{store: store}
}

// FindByToken resolves a session token. Missing or expired sessions return
// (nil, nil): an anonymous caller is not a failure.
func (r *MongoSessionRepository) FindByToken(ctx context.Context, token string) (*domain.Session, error) {
	coll, err := r.store.Collection(ctx, sessionsCollection)
	if err != nil {
		return nil, err
	}

	var session domain.Session
	err = coll.FindOne(ctx, bson.M{"token": token}).Decode(&session)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding session: %w", err)
	}
	if sessionExpired(session.ExpiresAt, time.Now()) {
		return nil, nil
	}
	return &session, nil
}

// sessionExpired reports whether a session's expiry has passed. A zero expiry
// means the provider did not stamp one and the session is treated as live.
func sessionExpired(expiresAt, now time.Time) bool {
	return !expiresAt.IsZero() && expiresAt.Before(now)
}

// DeleteByUserID removes every session for a user. Deleting an already-gone
// session is not an error.
func (r *MongoSessionRepository) DeleteByUserID(ctx context.Context, userID string) error {
	coll, err := r.store.Collection(ctx, sessionsCollection)
	if err != nil {
		return err
	}
	if _, err := coll.DeleteMany(ctx, bson.M{"userId": userID}); err != nil {
		return fmt.Errorf("deleting sessions for user %s: %w", userID, err)
	}
	return nil
}
