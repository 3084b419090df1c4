package service

import (
	"context"
	"errors"
	"time"

	"github.com/syedmusab/rvm-backend/internal/feedback/models"
	"github.com/syedmusab/rvm-backend/internal/feedback/store"
	dErrors "github.com/syedmusab/rvm-backend/pkg/domain-errors"
	"github.com/syedmusab/rvm-backend/pkg/platform/sentinel"
	"github.com/syedmusab/rvm-backend/pkg/requestcontext"
)

const defaultStoreTimeout = 5 * time.Second

// Service captures and lists user feedback.
type Service struct {
	feedbacks    store.FeedbackStore
	storeTimeout time.Duration
}

type Option func(*Service)

func WithStoreTimeout(d time.Duration) Option {
	return func(s *Service) { s.storeTimeout = d }
}

func New(feedbacks store.FeedbackStore, opts ...Option) *Service {
	s := &Service{feedbacks: feedbacks, storeTimeout: defaultStoreTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores a feedback submission. CreatedAt defaults to request time.
func (s *Service) Create(ctx context.Context, feedback *models.Feedback) (*models.Feedback, error) {
	if err := feedback.Validate(); err != nil {
		return nil, err
	}
	if feedback.CreatedAt.IsZero() {
		feedback.CreatedAt = requestcontext.Now(ctx)
	}

	cctx, cancel := s.bound(ctx)
	defer cancel()
	if err := s.feedbacks.Insert(cctx, feedback); err != nil {
		return nil, s.storeErr(err, "failed to store feedback")
	}
	return feedback, nil
}

// ListByPhone returns a phone number's feedback, newest first. An unknown
// phone yields an empty list, not an error.
func (s *Service) ListByPhone(ctx context.Context, phoneNumber string) ([]models.Feedback, error) {
	if phoneNumber == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "phone number is required")
	}

	cctx, cancel := s.bound(ctx)
	defer cancel()
	out, err := s.feedbacks.ListByPhone(cctx, phoneNumber)
	if err != nil {
		return nil, s.storeErr(err, "failed to list feedback")
	}
	return out, nil
}

func (s *Service) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.storeTimeout)
}

func (s *Service) storeErr(err error, message string) error {
	if errors.Is(err, sentinel.ErrUnavailable) || errors.Is(err, context.DeadlineExceeded) {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, message)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, message)
}
