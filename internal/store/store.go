/**
 * @description
 * This file implements the document-store gateway: a single, injected handle
 * to the MongoDB deployment that every repository shares. The underlying
 * client is created lazily on first use; connection pooling is delegated to
 * the driver.
 *
 * Key features:
 * - Lazy initialization, safe for concurrent first use. A failed connect is
 *   not cached: the next caller dials again, so a transient outage at startup
 *   does not wedge the handle until restart.
 * - The dial runs under its own deadline rather than the first caller's
 *   request context.
 * - Named collection accessors for the four collections the core touches.
 * - Ensures the unique index on banks.accountId that the idempotent upsert
 *   depends on.
 *
 * @dependencies
 * - go.mongodb.org/mongo-driver: The MongoDB driver.
 */
package store

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names used by the core. The session collection name follows the
// identity provider's own schema since it owns those documents.
const (
	usersCollection        = "users"
	banksCollection        = "banks"
	sessionsCollection     = "session"
	transactionsCollection = "transactions"
)

// connectTimeout bounds the lazy dial independently of the caller's request
// deadline.
const connectTimeout = 10 * time.Second

// Store is the shared document-store handle. Construct it once in main and
// pass it to every repository.
type Store struct {
	uri      string
	database string

	mu     sync.Mutex
	client *mongo.Client
	db     *mongo.Database
}

// NewStore creates an unconnected store handle. No I/O happens until the
// first collection access.
func NewStore(uri, database string) *Store {
	return &Store{uri: uri, database: database}
}

// connect dials the deployment and ensures indexes. Callers must hold s.mu.
// On failure the handle stays unconnected so a later caller retries.
func (s *Store) connect() error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(s.uri))
	if err != nil {
		return fmt.Errorf("connecting to document store: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return fmt.Errorf("pinging document store: %w", err)
	}
	db := client.Database(s.database)

	if err := ensureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(ctx)
		return err
	}

	s.client = client
	s.db = db
	log.Printf("Document store connection established (database %q)", s.database)
	return nil
}

// ensureIndexes creates the unique index on banks.accountId. Concurrent
// first-links of the same external account race on insert; the index makes
// the store, not the application, the arbiter of which insert wins.
func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(banksCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "accountId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("ensuring unique index on banks.accountId: %w", err)
	}
	return nil
}

// Collection returns the named collection, connecting on first use.
func (s *Store) Collection(ctx context.Context, name string) (*mongo.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		if err := s.connect(); err != nil {
			return nil, err
		}
	}
	return s.db.Collection(name), nil
}

// Close disconnects the underlying client if it was ever connected.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return nil
	}
	err := s.client.Disconnect(ctx)
	s.client = nil
	s.db = nil
	return err
}
