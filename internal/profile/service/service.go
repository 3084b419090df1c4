package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/syedmusab/rvm-backend/internal/profile/models"
	"github.com/syedmusab/rvm-backend/internal/profile/store"
	dErrors "github.com/syedmusab/rvm-backend/pkg/domain-errors"
	"github.com/syedmusab/rvm-backend/pkg/platform/sentinel"
	"github.com/syedmusab/rvm-backend/pkg/requestcontext"
)

const defaultStoreTimeout = 5 * time.Second

// LedgerReconciler propagates a registered username into historical ledger
// events. Satisfied by the ledger service; kept as a local interface so the
// profile domain does not depend on ledger internals.
type LedgerReconciler interface {
	ReconcileUsername(ctx context.Context, phone, userName string) (int64, error)
	RenameAllSessions(ctx context.Context, phone, userName string) (int64, error)
}

// Service owns profile registration, updates and lookups. Registration and
// username changes trigger the ledger reconciler; reconciler trouble degrades
// to a partial-success warning, never a registration failure.
type Service struct {
	profiles     store.ProfileStore
	ledger       LedgerReconciler
	logger       *slog.Logger
	storeTimeout time.Duration
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithStoreTimeout(d time.Duration) Option {
	return func(s *Service) { s.storeTimeout = d }
}

// New constructs the profile service. ledger may be nil when reconciliation
// is not wanted (e.g. profile-only tooling).
func New(profiles store.ProfileStore, ledger LedgerReconciler, opts ...Option) *Service {
	s := &Service{
		profiles:     profiles,
		ledger:       ledger,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		storeTimeout: defaultStoreTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a new profile and backfills the username onto any ledger
// events recorded before registration. A reconciler failure returns the
// created profile together with a partial-success error; callers must treat
// that combination as success-with-warning.
func (s *Service) Register(ctx context.Context, profile *models.UserProfile) (*models.UserProfile, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	if profile.Gender == "" {
		profile.Gender = "unspecified"
	}
	if profile.ProfilePic == "" {
		profile.ProfilePic = models.DefaultProfilePic
	}
	now := requestcontext.Now(ctx)
	profile.CreatedAt = now
	profile.UpdatedAt = now

	cctx, cancel := s.bound(ctx)
	defer cancel()
	if err := s.profiles.Create(cctx, profile); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "user already exists")
		}
		return nil, s.storeErr(err, "failed to create profile")
	}

	if warn := s.reconcile(ctx, profile.PhoneNumber, profile.UserName); warn != nil {
		return profile, warn
	}
	return profile, nil
}

// Update applies a partial profile update. A username change is propagated
// to unnamed ledger events the same way registration is.
func (s *Service) Update(ctx context.Context, phoneNumber string, update models.ProfileUpdate) (*models.UserProfile, error) {
	if phoneNumber == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "phone number is required")
	}
	if err := update.Validate(); err != nil {
		return nil, err
	}
	if update.Empty() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "no changes detected")
	}

	cctx, cancel := s.bound(ctx)
	defer cancel()
	profile, err := s.profiles.Update(cctx, phoneNumber, update)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, s.storeErr(err, "failed to update profile")
	}

	if update.UserName != nil {
		if warn := s.reconcile(ctx, phoneNumber, *update.UserName); warn != nil {
			return profile, warn
		}
	}
	return profile, nil
}

// Get returns the profile registered for the phone number.
func (s *Service) Get(ctx context.Context, phoneNumber string) (*models.UserProfile, error) {
	if phoneNumber == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "phone number is required")
	}

	cctx, cancel := s.bound(ctx)
	defer cancel()
	profile, err := s.profiles.FindByPhone(cctx, phoneNumber)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, s.storeErr(err, "failed to find profile")
	}
	return profile, nil
}

// Exists reports whether the phone number is registered.
func (s *Service) Exists(ctx context.Context, phoneNumber string) (bool, error) {
	if phoneNumber == "" {
		return false, dErrors.New(dErrors.CodeBadRequest, "phone number is required")
	}

	cctx, cancel := s.bound(ctx)
	defer cancel()
	exists, err := s.profiles.Exists(cctx, phoneNumber)
	if err != nil {
		return false, s.storeErr(err, "failed to check registration")
	}
	return exists, nil
}

// reconcile runs the conditional ledger backfill. Failures are logged and
// reduced to a partial-success error so the profile write stands.
func (s *Service) reconcile(ctx context.Context, phone, userName string) error {
	if s.ledger == nil {
		return nil
	}
	modified, err := s.ledger.ReconcileUsername(ctx, phone, userName)
	if err != nil {
		s.logger.Warn("ledger backfill failed after profile write",
			"phone_number", phone,
			"error", err,
		)
		return dErrors.Wrap(err, dErrors.CodePartial, "profile saved but recycling history was not updated")
	}
	s.logger.Info("ledger backfill applied",
		"phone_number", phone,
		"events_modified", modified,
	)
	return nil
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
