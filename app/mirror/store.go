package mirror

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store is the document store the mirror writes to. Documents are keyed by
// the product id in decimal.
type Store interface {
	Upsert(ctx context.Context, id string, doc Document) error
	Delete(ctx context.Context, id string) error
}

// MongoStore keeps one document per product in a MongoDB collection, with
// the product id as _id.
type MongoStore struct {
	client *mongo.Client
	col    *mongo.Collection
}

// Connect dials uri and pings the server before returning.
func Connect(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Client().ApplyURI(uri).
		SetConnectTimeout(5 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(10)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mirror: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mirror: ping: %w", err)
	}

	return &MongoStore{
		client: client,
		col:    client.Database(database).Collection(collection),
	}, nil
}

// Upsert replaces the mirrored fields of id, creating the document if
// needed.
func (m *MongoStore) Upsert(ctx context.Context, id string, doc Document) error {
	_, err := m.col.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: doc}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("mirror: upsert %s: %w", id, err)
	}
	return nil
}

// Delete removes id. A missing document is not an error.
func (m *MongoStore) Delete(ctx context.Context, id string) error {
	if _, err := m.col.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}}); err != nil {
		return fmt.Errorf("mirror: delete %s: %w", id, err)
	}
	return nil
}

// Close disconnects the client.
func (m *MongoStore) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
