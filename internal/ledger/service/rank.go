package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/syedmusab/rvm-backend/internal/ledger/models"
	dErrors "github.com/syedmusab/rvm-backend/pkg/domain-errors"
)

// profileLookupBatch caps how many phone numbers a single directory lookup
// carries; batches are fetched concurrently.
const profileLookupBatch = 100

// Rank produces the leaderboard: aggregates with a known username, enriched
// with profile attributes, sorted by total points descending with ties
// broken by phone number ascending for stable output.
//
// A phone number with events but no profile still ranks, since the username
// can come from the events themselves; its profile fields are simply null.
// A phone number whose events are all unnamed never appears.
func (s *Service) Rank(ctx context.Context, filter models.EventFilter, limit int) ([]models.LeaderboardEntry, error) {
	if limit < 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "limit must be non-negative")
	}
	start := time.Now()

	aggregates, err := s.AggregateByPhone(ctx, filter)
	if err != nil {
		return nil, err
	}

	named := aggregates[:0]
	for _, agg := range aggregates {
		if agg.LatestUserName != "" {
			named = append(named, agg)
		}
	}

	phones := make([]string, len(named))
	for i, agg := range named {
		phones[i] = agg.PhoneNumber
	}
	attrs, err := s.lookupProfiles(ctx, phones)
	if err != nil {
		return nil, err
	}

	entries := make([]models.LeaderboardEntry, 0, len(named))
	for _, agg := range named {
		entry := models.LeaderboardEntry{
			PhoneNumber:  agg.PhoneNumber,
			UserName:     agg.LatestUserName,
			TotalPoints:  agg.TotalPoints,
			TotalBottles: agg.TotalBottles,
			TotalCups:    agg.TotalCups,
		}
		if p, ok := attrs[agg.PhoneNumber]; ok {
			if p.Gender != "" {
				gender := p.Gender
				entry.Gender = &gender
			}
			if p.NationalID != "" {
				nationalID := p.NationalID
				entry.NationalID = &nationalID
			}
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalPoints != entries[j].TotalPoints {
			return entries[i].TotalPoints > entries[j].TotalPoints
		}
		return entries[i].PhoneNumber < entries[j].PhoneNumber
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	if s.metrics != nil {
		s.metrics.ObserveRank(start)
	}
	return entries, nil
}

// lookupProfiles fetches profile attributes in concurrent batches. The
// profile store and ledger store are independent; this read joins them at
// query time, so the result reflects two snapshots taken close together,
// not one transaction.
func (s *Service) lookupProfiles(ctx context.Context, phones []string) (map[string]ProfileAttrs, error) {
	if s.profiles == nil || len(phones) == 0 {
		return map[string]ProfileAttrs{}, nil
	}

	var mu sync.Mutex
	merged := make(map[string]ProfileAttrs, len(phones))

	g, gctx := errgroup.WithContext(ctx)
	for from := 0; from < len(phones); from += profileLookupBatch {
		to := min(from+profileLookupBatch, len(phones))
		batch := phones[from:to]
		g.Go(func() error {
			bctx, cancel := s.bound(gctx)
			defer cancel()
			attrs, err := s.profiles.AttributesByPhone(bctx, batch)
			if err != nil {
				return s.storeErr(err, "failed to load profiles")
			}
			mu.Lock()
			for phone, a := range attrs {
				merged[phone] = a
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return merged, nil
}
