package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoKV stores one document per session in a TTL-indexed collection,
// so carts share the session-scoped lifetime of the Redis backend.
type MongoKV struct {
	collection *mongo.Collection
	sessionTTL time.Duration
}

type sessionCart struct {
	SessionID string    `bson:"session_id"`
	Payload   []byte    `bson:"payload"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func NewMongoKV(db *mongo.Database, sessionTTL time.Duration) *MongoKV {
	if sessionTTL <= 0 {
		sessionTTL = 30 * time.Minute
	}
	return &MongoKV{
		collection: db.Collection("session_carts"),
		sessionTTL: sessionTTL,
	}
}

// ConnectMongo dials MongoDB with the same pool settings the rest of
// the stack uses and verifies the connection with a ping.
func ConnectMongo(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100).
		SetMinPoolSize(10)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}

// EnsureIndexes creates the unique session index and the TTL index that
// expires abandoned carts. Call once at startup.
func (m *MongoKV) EnsureIndexes(ctx context.Context) error {
	_, err := m.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(m.sessionTTL.Seconds())),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (m *MongoKV) Get(ctx context.Context, sessionID string) ([]byte, error) {
	var doc sessionCart
	err := m.collection.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoCart
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return doc.Payload, nil
}

func (m *MongoKV) Set(ctx context.Context, sessionID string, value []byte) error {
	filter := bson.M{"session_id": sessionID}
	update := bson.M{"$set": sessionCart{
		SessionID: sessionID,
		Payload:   value,
		UpdatedAt: time.Now(),
	}}
	opts := options.Update().SetUpsert(true)

	if _, err := m.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert cart: %w", err)
	}
	return nil
}

func (m *MongoKV) Delete(ctx context.Context, sessionID string) error {
	if _, err := m.collection.DeleteOne(ctx, bson.M{"session_id": sessionID}); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}
