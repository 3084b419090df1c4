// Package service implements the recycling ledger engine: ingestion,
// per-phone aggregation, username reconciliation, and leaderboard ranking.
//
// The ledger is read as a snapshot at query time. Aggregates are recomputed
// on every read rather than incrementally maintained, so callers must treat
// them as eventually consistent: two successive queries may observe
// different totals with no error.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	ledgermetrics "github.com/syedmusab/rvm-backend/internal/ledger/metrics"
	"github.com/syedmusab/rvm-backend/internal/ledger/models"
	"github.com/syedmusab/rvm-backend/internal/ledger/store"
	dErrors "github.com/syedmusab/rvm-backend/pkg/domain-errors"
	"github.com/syedmusab/rvm-backend/pkg/platform/sentinel"
	"github.com/syedmusab/rvm-backend/pkg/requestcontext"
)

// ProfileAttrs carries the profile attributes the ranker joins onto
// aggregates. Kept local so the ledger does not import the profile domain.
type ProfileAttrs struct {
	UserName   string
	Gender     string
	NationalID string
}

// ProfileDirectory resolves profile attributes for a set of phone numbers.
// Phones without a profile are simply absent from the result; that is not
// an error.
type ProfileDirectory interface {
	AttributesByPhone(ctx context.Context, phones []string) (map[string]ProfileAttrs, error)
}

// Service is the ledger engine. All durable state lives in the injected
// stores; the service itself holds no mutable state and is safe for
// concurrent use.
type Service struct {
	events       store.EventStore
	profiles     ProfileDirectory
	logger       *slog.Logger
	metrics      *ledgermetrics.Metrics
	storeTimeout time.Duration
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *ledgermetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithStoreTimeout bounds each store call. On expiry the operation is
// surfaced as a transient failure; the engine never retries.
func WithStoreTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.storeTimeout = d
		}
	}
}

// New constructs the ledger engine. profiles may be nil when ranking is not
// needed (e.g. ingestion-only workers).
func New(events store.EventStore, profiles ProfileDirectory, opts ...Option) *Service {
	s := &Service{
		events:       events,
		profiles:     profiles,
		logger:       slog.Default(),
		storeTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record appends one machine report to the ledger. RecordedAt defaults to
// the request time when the machine did not supply one. No deduplication:
// a retried report becomes a second event.
func (s *Service) Record(ctx context.Context, event *models.RecyclingEvent) (*models.RecyclingEvent, error) {
	if err := event.Validate(); err != nil {
		return nil, err
	}
	if event.RecordedAt.IsZero() {
		event.RecordedAt = requestcontext.Now(ctx)
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()
	if err := s.events.Insert(ctx, event); err != nil {
		return nil, s.storeErr(err, "failed to record event")
	}
	if s.metrics != nil {
		s.metrics.IncrementEventsRecorded()
	}
	return event, nil
}

// History returns the phone number's events newest first. Events that never
// received a username are reported as "Unknown" rather than blank.
func (s *Service) History(ctx context.Context, phone string) ([]models.RecyclingEvent, error) {
	if phone == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "phone number is required")
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()
	events, err := s.events.ListByPhone(ctx, phone)
	if err != nil {
		return nil, s.storeErr(err, "failed to list events")
	}
	for i := range events {
		if events[i].UserName == "" {
			events[i].UserName = "Unknown"
		}
	}
	return events, nil
}

// Latest returns the most recent event for the phone number, or a not-found
// error when the phone has never recycled.
func (s *Service) Latest(ctx context.Context, phone string) (*models.RecyclingEvent, error) {
	if phone == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "phone number is required")
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()
	event, err := s.events.FindLatestByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no recycling sessions for this phone number")
		}
		return nil, s.storeErr(err, "failed to find latest event")
	}
	return event, nil
}

// AggregateByPhone computes per-phone totals over the current ledger
// snapshot, optionally scoped to one machine.
//
// Determinism: nothing here depends on store insertion order. Sums and
// counts are order-free; the latest-event choices key on (recordedAt, id)
// so re-runs over the same data always agree. Events without a phone number
// cannot be attributed to anyone and are skipped entirely. Output is sorted
// by phone number ascending.
func (s *Service) AggregateByPhone(ctx context.Context, filter models.EventFilter) ([]models.UserAggregate, error) {
	start := time.Now()

	ctx, cancel := s.bound(ctx)
	defer cancel()
	events, err := s.events.ListAll(ctx, filter)
	if err != nil {
		return nil, s.storeErr(err, "failed to list events")
	}

	type grouped struct {
		agg         models.UserAggregate
		latest      *models.RecyclingEvent
		latestNamed *models.RecyclingEvent
	}
	groups := make(map[string]*grouped)
	for i := range events {
		e := &events[i]
		if e.PhoneNumber == "" {
			continue
		}
		g, ok := groups[e.PhoneNumber]
		if !ok {
			g = &grouped{agg: models.UserAggregate{PhoneNumber: e.PhoneNumber}}
			groups[e.PhoneNumber] = g
		}
		g.agg.TotalPoints += e.Points
		g.agg.TotalBottles += e.Bottles
		g.agg.TotalCups += e.Cups
		g.agg.SessionCount++
		if g.latest == nil || g.latest.Before(e) {
			g.latest = e
		}
		if e.UserName != "" && (g.latestNamed == nil || g.latestNamed.Before(e)) {
			g.latestNamed = e
		}
	}

	out := make([]models.UserAggregate, 0, len(groups))
	for _, g := range groups {
		g.agg.LatestRecordedAt = g.latest.RecordedAt
		if g.latestNamed != nil {
			g.agg.LatestUserName = g.latestNamed.UserName
		}
		out = append(out, g.agg)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PhoneNumber < out[j].PhoneNumber
	})

	if s.metrics != nil {
		s.metrics.ObserveAggregate(start)
	}
	return out, nil
}

// bound applies the store timeout to a single store call.
func (s *Service) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.storeTimeout)
}

// storeErr translates store failures into coded errors. Transient trouble
// is marked retryable for the caller; the engine itself never retries.
func (s *Service) storeErr(err error, message string) error {
	if errors.Is(err, sentinel.ErrUnavailable) || errors.Is(err, context.DeadlineExceeded) {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, message)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, message)
}
