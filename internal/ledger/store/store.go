// Package store provides EventStore implementations over the recycling
// ledger. The ledger is append-only: events are inserted, read, and touched
// by exactly two username mutations; nothing else writes to it.
package store

import (
	"context"

	"github.com/syedmusab/rvm-backend/internal/ledger/models"
)

// EventStore is the ledger capability contract. Implementations return
// sentinel errors (pkg/platform/sentinel) wrapped with call-site context;
// they never retry.
type EventStore interface {
	// Insert appends one event. A store-assigned ID is set on the event if
	// it does not carry one.
	Insert(ctx context.Context, event *models.RecyclingEvent) error

	// ListByPhone returns all events for a phone number, newest first.
	ListByPhone(ctx context.Context, phone string) ([]models.RecyclingEvent, error)

	// ListAll returns every event matching the filter, in no guaranteed
	// order. Aggregation must not rely on the order returned here.
	ListAll(ctx context.Context, filter models.EventFilter) ([]models.RecyclingEvent, error)

	// FindLatestByPhone returns the event with the greatest (recordedAt, id)
	// for the phone number, or sentinel.ErrNotFound.
	FindLatestByPhone(ctx context.Context, phone string) (*models.RecyclingEvent, error)

	// BackfillUserName sets userName on every event for phone whose
	// userName is empty, and reports the number of events modified.
	// Events already carrying a name are left untouched.
	BackfillUserName(ctx context.Context, phone, userName string) (int64, error)

	// RenameUserName overwrites userName on every event for phone,
	// regardless of the current value, and reports the modified count.
	RenameUserName(ctx context.Context, phone, userName string) (int64, error)
}
