package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/syedmusab/rvm-backend/internal/notification/models"
	"github.com/syedmusab/rvm-backend/pkg/platform/sentinel"
)

// NotificationCollection is the bin-full notification collection name.
const NotificationCollection = "binfullnotifications"

// Mongo persists notifications in a MongoDB collection.
type Mongo struct {
	notifications *mongo.Collection
}

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{notifications: db.Collection(NotificationCollection)}
}

func (s *Mongo) Insert(ctx context.Context, notification *models.BinFullNotification) error {
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	if _, err := s.notifications.InsertOne(ctx, notification); err != nil {
		return fmt.Errorf("insert notification: %w", translateMongo(err))
	}
	return nil
}

func (s *Mongo) List(ctx context.Context, filter models.NotificationFilter) ([]models.BinFullNotification, error) {
	query := bson.M{}
	if filter.BinType != "" {
		query["binType"] = filter.BinType
	}
	if filter.MachineID != "" {
		query["machineId"] = filter.MachineID
	}
	opts := options.Find().SetSort(bson.D{{Key: "occurredAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.notifications.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", translateMongo(err))
	}
	var out []models.BinFullNotification
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode notifications: %w", translateMongo(err))
	}
	return out, nil
}

func translateMongo(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return fmt.Errorf("%w: %v", sentinel.ErrUnavailable, err)
	}
	return err
}
