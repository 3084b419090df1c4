package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/syedmusab/rvm-backend/internal/notification/models"
	"github.com/syedmusab/rvm-backend/internal/notification/store"
	dErrors "github.com/syedmusab/rvm-backend/pkg/domain-errors"
	"github.com/syedmusab/rvm-backend/pkg/platform/sentinel"
	"github.com/syedmusab/rvm-backend/pkg/requestcontext"
)

const (
	defaultStoreTimeout = 5 * time.Second

	// DefaultPageSize applies when a caller asks for a page without
	// specifying its size.
	DefaultPageSize = 100
)

// Service is the bin-full notification rollup.
type Service struct {
	notifications store.NotificationStore
	logger        *slog.Logger
	storeTimeout  time.Duration
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithStoreTimeout(d time.Duration) Option {
	return func(s *Service) { s.storeTimeout = d }
}

func New(notifications store.NotificationStore, opts ...Option) *Service {
	s := &Service{
		notifications: notifications,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		storeTimeout:  defaultStoreTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record stores a machine bin-full report. OccurredAt defaults to the
// request time when the machine supplies none.
func (s *Service) Record(ctx context.Context, notification *models.BinFullNotification) (*models.BinFullNotification, error) {
	if err := notification.Validate(); err != nil {
		return nil, err
	}
	if notification.OccurredAt.IsZero() {
		notification.OccurredAt = requestcontext.Now(ctx)
	}

	cctx, cancel := s.bound(ctx)
	defer cancel()
	if err := s.notifications.Insert(cctx, notification); err != nil {
		return nil, s.storeErr(err, "failed to record notification")
	}
	return notification, nil
}

// List returns one page of notifications, newest first. Pagination is
// computed here over the full matching set; page numbering starts at 1 and
// a page past the end is an empty page, not an error.
func (s *Service) List(ctx context.Context, filter models.NotificationFilter, page, pageSize int) (*models.NotificationPage, error) {
	if page < 1 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "page must be at least 1")
	}
	if pageSize < 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "pageSize must be non-negative")
	}
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}

	cctx, cancel := s.bound(ctx)
	defer cancel()
	all, err := s.notifications.List(cctx, filter)
	if err != nil {
		return nil, s.storeErr(err, "failed to list notifications")
	}

	totalCount := len(all)
	totalPages := (totalCount + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	if start > totalCount {
		start = totalCount
	}
	end := start + pageSize
	if end > totalCount {
		end = totalCount
	}

	return &models.NotificationPage{
		Notifications: all[start:end],
		Page:          page,
		PageSize:      pageSize,
		TotalCount:    totalCount,
		TotalPages:    totalPages,
	}, nil
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
