package store

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"redbus_site/models"
)

// FeedbackStore persists feedback form submissions.
type FeedbackStore interface {
	Save(ctx context.Context, f models.Feedback) error
	Recent(ctx context.Context, limit int) ([]models.Feedback, error)
}

// MongoFeedbackStore keeps feedback in a MongoDB collection.
type MongoFeedbackStore struct {
	collection *mongo.Collection
}

func NewMongoFeedbackStore(client *mongo.Client, database, collection string) *MongoFeedbackStore {
	return &MongoFeedbackStore{collection: client.Database(database).Collection(collection)}
}

func (s *MongoFeedbackStore) Save(ctx context.Context, f models.Feedback) error {
	if _, err := s.collection.InsertOne(ctx, f); err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

func (s *MongoFeedbackStore) Recent(ctx context.Context, limit int) ([]models.Feedback, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find feedback: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.Feedback
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode feedback: %w", err)
	}
	return out, nil
}

// MemoryFeedbackStore is used when no MongoDB is configured.
type MemoryFeedbackStore struct {
	mu    sync.Mutex
	items []models.Feedback
}

func NewMemoryFeedbackStore() *MemoryFeedbackStore {
	return &MemoryFeedbackStore{}
}

func (s *MemoryFeedbackStore) Save(_ context.Context, f models.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, f)
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *MemoryFeedbackStore) Recent(_ context.Context, limit int) ([]models.Feedback, error) {
	if limit <= 0 {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Feedback, 0, limit)
	for i := len(s.items) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.items[i])
	}
	return out, nil
}
