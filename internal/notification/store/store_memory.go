package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/syedmusab/rvm-backend/internal/notification/models"
)

// InMemory is a slice-backed NotificationStore for tests and local
// development.
type InMemory struct {
	mu            sync.RWMutex
	notifications []models.BinFullNotification
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (m *InMemory) Insert(_ context.Context, notification *models.BinFullNotification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	m.notifications = append(m.notifications, *notification)
	return nil
}

func (m *InMemory) List(_ context.Context, filter models.NotificationFilter) ([]models.BinFullNotification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.BinFullNotification, 0, len(m.notifications))
	for _, n := range m.notifications {
		if filter.BinType != "" && n.BinType != filter.BinType {
			continue
		}
		if filter.MachineID != "" && n.MachineID != filter.MachineID {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].OccurredAt.After(out[j].OccurredAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}
