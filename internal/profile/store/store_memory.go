package store

import (
	"context"
	"sync"
	"time"

	"github.com/syedmusab/rvm-backend/internal/profile/models"
	"github.com/syedmusab/rvm-backend/pkg/platform/sentinel"
)

// InMemory is a map-backed ProfileStore for tests and local development.
type InMemory struct {
	mu       sync.RWMutex
	profiles map[string]models.UserProfile
}

func NewInMemory() *InMemory {
	return &InMemory{profiles: make(map[string]models.UserProfile)}
}

func (m *InMemory) Create(_ context.Context, profile *models.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.profiles[profile.PhoneNumber]; ok {
		return sentinel.ErrConflict
	}
	m.profiles[profile.PhoneNumber] = *profile
	return nil
}

func (m *InMemory) Update(_ context.Context, phoneNumber string, update models.ProfileUpdate) (*models.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	profile, ok := m.profiles[phoneNumber]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	update.Apply(&profile, time.Now().UTC())
	m.profiles[phoneNumber] = profile
	return &profile, nil
}

func (m *InMemory) FindByPhone(_ context.Context, phoneNumber string) (*models.UserProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	profile, ok := m.profiles[phoneNumber]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &profile, nil
}

func (m *InMemory) FindByPhones(_ context.Context, phoneNumbers []string) ([]models.UserProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.UserProfile, 0, len(phoneNumbers))
	for _, phone := range phoneNumbers {
		if profile, ok := m.profiles[phone]; ok {
			out = append(out, profile)
		}
	}
	return out, nil
}

func (m *InMemory) Exists(_ context.Context, phoneNumber string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.profiles[phoneNumber]
	return ok, nil
}
