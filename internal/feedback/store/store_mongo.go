package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/syedmusab/rvm-backend/internal/feedback/models"
	"github.com/syedmusab/rvm-backend/pkg/platform/sentinel"
)

// FeedbackCollection is the feedback collection name.
const FeedbackCollection = "feedbacks"

// Mongo persists feedback in a MongoDB collection.
type Mongo struct {
	feedbacks *mongo.Collection
}

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{feedbacks: db.Collection(FeedbackCollection)}
}

func (s *Mongo) Insert(ctx context.Context, feedback *models.Feedback) error {
	if feedback.ID == "" {
		feedback.ID = uuid.NewString()
	}
	if _, err := s.feedbacks.InsertOne(ctx, feedback); err != nil {
		return fmt.Errorf("insert feedback: %w", translateMongo(err))
	}
	return nil
}

func (s *Mongo) ListByPhone(ctx context.Context, phoneNumber string) ([]models.Feedback, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.feedbacks.Find(ctx, bson.M{"phoneNumber": phoneNumber}, opts)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", translateMongo(err))
	}
	var out []models.Feedback
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode feedback: %w", translateMongo(err))
	}
	return out, nil
}

func translateMongo(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return fmt.Errorf("%w: %v", sentinel.ErrUnavailable, err)
	}
	return err
}
