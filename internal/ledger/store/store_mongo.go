package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/syedmusab/rvm-backend/internal/ledger/models"
	"github.com/syedmusab/rvm-backend/pkg/platform/sentinel"
)

// EventCollection is the ledger collection name.
const EventCollection = "recyclingsessions"

// Mongo persists the ledger in a MongoDB collection.
type Mongo struct {
	events *mongo.Collection
}

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{events: db.Collection(EventCollection)}
}

func (s *Mongo) Insert(ctx context.Context, event *models.RecyclingEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if _, err := s.events.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("insert event: %w", translateMongo(err))
	}
	return nil
}

func (s *Mongo) ListByPhone(ctx context.Context, phone string) ([]models.RecyclingEvent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "recordedAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.events.Find(ctx, bson.M{"phoneNumber": phone}, opts)
	if err != nil {
		return nil, fmt.Errorf("list events by phone: %w", translateMongo(err))
	}
	var out []models.RecyclingEvent
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode events: %w", translateMongo(err))
	}
	return out, nil
}

func (s *Mongo) ListAll(ctx context.Context, filter models.EventFilter) ([]models.RecyclingEvent, error) {
	query := bson.M{}
	if filter.MachineID != "" {
		query["machineId"] = filter.MachineID
	}
	cur, err := s.events.Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", translateMongo(err))
	}
	var out []models.RecyclingEvent
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode events: %w", translateMongo(err))
	}
	return out, nil
}

func (s *Mongo) FindLatestByPhone(ctx context.Context, phone string) (*models.RecyclingEvent, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "recordedAt", Value: -1}, {Key: "_id", Value: -1}})
	var e models.RecyclingEvent
	err := s.events.FindOne(ctx, bson.M{"phoneNumber": phone}, opts).Decode(&e)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find latest event: %w", translateMongo(err))
	}
	return &e, nil
}

func (s *Mongo) BackfillUserName(ctx context.Context, phone, userName string) (int64, error) {
	filter := bson.M{
		"phoneNumber": phone,
		"$or": bson.A{
			bson.M{"userName": nil},
			bson.M{"userName": ""},
			bson.M{"userName": bson.M{"$exists": false}},
		},
	}
	res, err := s.events.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"userName": userName}})
	if err != nil {
		return 0, fmt.Errorf("backfill username: %w", translateMongo(err))
	}
	return res.ModifiedCount, nil
}

func (s *Mongo) RenameUserName(ctx context.Context, phone, userName string) (int64, error) {
	filter := bson.M{"phoneNumber": phone, "userName": bson.M{"$ne": userName}}
	res, err := s.events.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"userName": userName}})
	if err != nil {
		return 0, fmt.Errorf("rename username: %w", translateMongo(err))
	}
	return res.ModifiedCount, nil
}

func translateMongo(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return fmt.Errorf("%w: %v", sentinel.ErrUnavailable, err)
	}
	return err
}
