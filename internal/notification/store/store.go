package store

import (
	"context"

	"github.com/syedmusab/rvm-backend/internal/notification/models"
)

// NotificationStore persists bin-full notifications.
//
// List returns every matching notification ordered by occurredAt descending
// (ties broken by ID descending); the service layer paginates over that.
// Implementations wrap transient failures in sentinel.ErrUnavailable.
type NotificationStore interface {
	Insert(ctx context.Context, notification *models.BinFullNotification) error
	List(ctx context.Context, filter models.NotificationFilter) ([]models.BinFullNotification, error)
}
