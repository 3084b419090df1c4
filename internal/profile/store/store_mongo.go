package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/syedmusab/rvm-backend/internal/profile/models"
	"github.com/syedmusab/rvm-backend/pkg/platform/sentinel"
)

// ProfileCollection is the profile collection name.
const ProfileCollection = "userprofile"

// Mongo persists profiles in a MongoDB collection.
type Mongo struct {
	profiles *mongo.Collection
}

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{profiles: db.Collection(ProfileCollection)}
}

func (s *Mongo) Create(ctx context.Context, profile *models.UserProfile) error {
	err := s.profiles.FindOne(ctx, bson.M{"phoneNumber": profile.PhoneNumber}).Err()
	if err == nil {
		return sentinel.ErrConflict
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("check profile exists: %w", translateMongo(err))
	}
	if _, err := s.profiles.InsertOne(ctx, profile); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create profile: %w", translateMongo(err))
	}
	return nil
}

func (s *Mongo) Update(ctx context.Context, phoneNumber string, update models.ProfileUpdate) (*models.UserProfile, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if update.UserName != nil {
		set["username"] = *update.UserName
	}
	if update.Age != nil {
		set["age"] = *update.Age
	}
	if update.ProfilePic != nil {
		set["profilePic"] = *update.ProfilePic
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p models.UserProfile
	err := s.profiles.FindOneAndUpdate(ctx, bson.M{"phoneNumber": phoneNumber}, bson.M{"$set": set}, opts).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("update profile: %w", translateMongo(err))
	}
	return &p, nil
}

func (s *Mongo) FindByPhone(ctx context.Context, phoneNumber string) (*models.UserProfile, error) {
	var p models.UserProfile
	err := s.profiles.FindOne(ctx, bson.M{"phoneNumber": phoneNumber}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find profile: %w", translateMongo(err))
	}
	return &p, nil
}

func (s *Mongo) FindByPhones(ctx context.Context, phoneNumbers []string) ([]models.UserProfile, error) {
	cur, err := s.profiles.Find(ctx, bson.M{"phoneNumber": bson.M{"$in": phoneNumbers}})
	if err != nil {
		return nil, fmt.Errorf("find profiles: %w", translateMongo(err))
	}
	var out []models.UserProfile
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", translateMongo(err))
	}
	return out, nil
}

func (s *Mongo) Exists(ctx context.Context, phoneNumber string) (bool, error) {
	err := s.profiles.FindOne(ctx, bson.M{"phoneNumber": phoneNumber}).Err()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	return false, fmt.Errorf("check profile exists: %w", translateMongo(err))
}

func translateMongo(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return fmt.Errorf("%w: %v", sentinel.ErrUnavailable, err)
	}
	return err
}
