package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/syedmusab/rvm-backend/internal/ledger/models"
	"github.com/syedmusab/rvm-backend/pkg/platform/sentinel"
)

// InMemory is the ledger store used in tests and single-process deploys.
type InMemory struct {
	mu     sync.RWMutex
	events []models.RecyclingEvent
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (s *InMemory) Insert(_ context.Context, event *models.RecyclingEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	s.events = append(s.events, *event)
	return nil
}

func (s *InMemory) ListByPhone(_ context.Context, phone string) ([]models.RecyclingEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.RecyclingEvent
	for _, e := range s.events {
		if e.PhoneNumber == phone {
			out = append(out, e)
		}
	}
	// Newest first, deterministic across re-runs.
	sort.Slice(out, func(i, j int) bool {
		return out[j].Before(&out[i])
	})
	return out, nil
}

func (s *InMemory) ListAll(_ context.Context, filter models.EventFilter) ([]models.RecyclingEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.RecyclingEvent, 0, len(s.events))
	for _, e := range s.events {
		if filter.MachineID != "" && e.MachineID != filter.MachineID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *InMemory) FindLatestByPhone(_ context.Context, phone string) (*models.RecyclingEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *models.RecyclingEvent
	for i := range s.events {
		e := &s.events[i]
		if e.PhoneNumber != phone {
			continue
		}
		if latest == nil || latest.Before(e) {
			latest = e
		}
	}
	if latest == nil {
		return nil, sentinel.ErrNotFound
	}
	copied := *latest
	return &copied, nil
}

func (s *InMemory) BackfillUserName(_ context.Context, phone, userName string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var modified int64
	for i := range s.events {
		if s.events[i].PhoneNumber == phone && s.events[i].UserName == "" {
			s.events[i].UserName = userName
			modified++
		}
	}
	return modified, nil
}

func (s *InMemory) RenameUserName(_ context.Context, phone, userName string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var modified int64
	for i := range s.events {
		if s.events[i].PhoneNumber == phone && s.events[i].UserName != userName {
			s.events[i].UserName = userName
			modified++
		}
	}
	return modified, nil
}
