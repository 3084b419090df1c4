package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/syedmusab/rvm-backend/internal/feedback/models"
)

// InMemory is a slice-backed FeedbackStore for tests and local development.
type InMemory struct {
	mu        sync.RWMutex
	feedbacks []models.Feedback
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (m *InMemory) Insert(_ context.Context, feedback *models.Feedback) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if feedback.ID == "" {
		feedback.ID = uuid.NewString()
	}
	m.feedbacks = append(m.feedbacks, *feedback)
	return nil
}

func (m *InMemory) ListByPhone(_ context.Context, phoneNumber string) ([]models.Feedback, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Feedback
	for _, f := range m.feedbacks {
		if f.PhoneNumber == phoneNumber {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}
