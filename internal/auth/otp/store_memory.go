package otp

import (
	"context"
	"sync"
	"time"

	"github.com/syedmusab/rvm-backend/pkg/platform/sentinel"
)

// InMemoryStore is a map-backed ChallengeStore for tests and local
// development. Expiry is enforced lazily on Find.
type InMemoryStore struct {
	mu         sync.Mutex
	challenges map[string]Challenge
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{challenges: make(map[string]Challenge)}
}

func (m *InMemoryStore) Save(_ context.Context, challenge *Challenge) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.challenges[challenge.Email] = *challenge
	return nil
}

func (m *InMemoryStore) Find(_ context.Context, email string) (*Challenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	challenge, ok := m.challenges[email]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if challenge.Expired(time.Now()) {
		delete(m.challenges, email)
		return nil, sentinel.ErrNotFound
	}
	return &challenge, nil
}

func (m *InMemoryStore) Delete(_ context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.challenges, email)
	return nil
}
