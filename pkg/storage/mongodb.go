package storage

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ArchivedEvent is an accepted donation as kept in MongoDB
type ArchivedEvent struct {
	Donator    string    `bson:"donator" json:"donator"`
	Amount     float64   `bson:"amount" json:"amount"`
	AmountRaw  string    `bson:"amount_raw" json:"amount_raw"`
	Message    string    `bson:"message" json:"message"`
	Platform   string    `bson:"platform" json:"platform"`
	RequestID  string    `bson:"request_id" json:"request_id"`
	ReceivedAt time.Time `bson:"received_at" json:"received_at"`
}

// NewArchivedEvent flattens a record into its archived form
func NewArchivedEvent(rec Record) ArchivedEvent {
	score, _ := rec.Event.Score()
	receivedAt := rec.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = time.Now().UTC()
	}
	return ArchivedEvent{
		Donator:    rec.Event.Donator,
		Amount:     score,
		AmountRaw:  rec.Event.Amount.String(),
		Message:    rec.Event.Message,
		Platform:   string(rec.Platform),
		RequestID:  rec.RequestID,
		ReceivedAt: receivedAt,
	}
}

// MongoDBStorage archives accepted donations to MongoDB
type MongoDBStorage struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoDBStorage creates a new MongoDB archive backend
func NewMongoDBStorage(uri string, database string, collection string) (*MongoDBStorage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	coll := client.Database(database).Collection(collection)

	return &MongoDBStorage{
		client:     client,
		collection: coll,
	}, nil
}

// Archive saves an accepted donation to MongoDB
func (m *MongoDBStorage) Archive(ctx context.Context, rec Record) error {
	_, err := m.collection.InsertOne(ctx, NewArchivedEvent(rec))
	if err != nil {
		return fmt.Errorf("failed to insert event to MongoDB: %w", err)
	}

	return nil
}

// Count returns the number of archived donations
func (m *MongoDBStorage) Count(ctx context.Context) (int64, error) {
	count, err := m.collection.EstimatedDocumentCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count MongoDB events: %w", err)
	}
	return count, nil
}

// Close closes the MongoDB connection
func (m *MongoDBStorage) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
