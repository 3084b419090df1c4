package otp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/syedmusab/rvm-backend/pkg/platform/sentinel"
)

const challengeKeyPrefix = "otp:password_reset:"

// RedisStore keeps challenges in Redis. The key TTL mirrors the challenge
// expiry, so expired challenges vanish without a sweeper.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Save(ctx context.Context, challenge *Challenge) error {
	payload, err := json.Marshal(challenge)
	if err != nil {
		return fmt.Errorf("marshal challenge: %w", err)
	}
	ttl := time.Until(challenge.ExpiresAt)
	if ttl <= 0 {
		return s.Delete(ctx, challenge.Email)
	}
	if err := s.client.Set(ctx, challengeKey(challenge.Email), payload, ttl).Err(); err != nil {
		return fmt.Errorf("save challenge: %w", translateRedis(err))
	}
	return nil
}

func (s *RedisStore) Find(ctx context.Context, email string) (*Challenge, error) {
	payload, err := s.client.Get(ctx, challengeKey(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find challenge: %w", translateRedis(err))
	}
	var challenge Challenge
	if err := json.Unmarshal(payload, &challenge); err != nil {
		return nil, fmt.Errorf("unmarshal challenge: %w", err)
	}
	return &challenge, nil
}

func (s *RedisStore) Delete(ctx context.Context, email string) error {
	if err := s.client.Del(ctx, challengeKey(email)).Err(); err != nil {
		return fmt.Errorf("delete challenge: %w", translateRedis(err))
	}
	return nil
}

func challengeKey(email string) string {
	return challengeKeyPrefix + email
}

func translateRedis(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", sentinel.ErrUnavailable, err)
	}
	return err
}
