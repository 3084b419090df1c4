package store

import (
	"context"

	"github.com/syedmusab/rvm-backend/internal/feedback/models"
)

// FeedbackStore persists user feedback. ListByPhone returns newest first.
type FeedbackStore interface {
	Insert(ctx context.Context, feedback *models.Feedback) error
	ListByPhone(ctx context.Context, phoneNumber string) ([]models.Feedback, error)
}
