package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/syedmusab/rvm-backend/internal/ledger/models"
	"github.com/syedmusab/rvm-backend/internal/ledger/store"
	dErrors "github.com/syedmusab/rvm-backend/pkg/domain-errors"
)

type AggregatorSuite struct {
	suite.Suite
	store   *store.InMemory
	service *Service
	ctx     context.Context
}

func TestAggregatorSuite(t *testing.T) {
	suite.Run(t, new(AggregatorSuite))
}

func (s *AggregatorSuite) SetupTest() {
	s.store = store.NewInMemory()
	s.service = New(s.store, nil)
	s.ctx = context.Background()
}

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func (s *AggregatorSuite) insert(phone, name string, bottles, cups, points int, machineID string, at time.Time) *models.RecyclingEvent {
	e := &models.RecyclingEvent{
		PhoneNumber: phone,
		UserName:    name,
		Bottles:     bottles,
		Cups:        cups,
		Points:      points,
		MachineID:   machineID,
		RecordedAt:  at,
	}
	s.Require().NoError(s.store.Insert(s.ctx, e))
	return e
}

func (s *AggregatorSuite) TestRecord() {
	s.Run("rejects missing phone number", func() {
		_, err := s.service.Record(s.ctx, &models.RecyclingEvent{Points: 5})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("rejects negative counts", func() {
		_, err := s.service.Record(s.ctx, &models.RecyclingEvent{PhoneNumber: "555", Bottles: -1})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("defaults recordedAt to now", func() {
		event, err := s.service.Record(s.ctx, &models.RecyclingEvent{PhoneNumber: "555", Points: 10})
		s.Require().NoError(err)
		s.False(event.RecordedAt.IsZero())
		s.NotEmpty(event.ID)
	})
}

func (s *AggregatorSuite) TestAggregateByPhone() {
	s.Run("sums totals and picks latest named username", func() {
		// The two-event scenario: unnamed first event, named later event.
		s.insert("555", "", 2, 0, 10, "", baseTime)
		s.insert("555", "Ana", 1, 1, 5, "", baseTime.Add(time.Hour))

		aggs, err := s.service.AggregateByPhone(s.ctx, models.EventFilter{})
		s.Require().NoError(err)
		s.Require().Len(aggs, 1)

		agg := aggs[0]
		s.Equal("555", agg.PhoneNumber)
		s.Equal(15, agg.TotalPoints)
		s.Equal(3, agg.TotalBottles)
		s.Equal(1, agg.TotalCups)
		s.Equal(2, agg.SessionCount)
		s.Equal("Ana", agg.LatestUserName)
		s.Equal(baseTime.Add(time.Hour), agg.LatestRecordedAt)
	})

	s.Run("latest username ignores unnamed newer events", func() {
		s.insert("777", "Omar", 1, 0, 5, "", baseTime)
		s.insert("777", "", 1, 0, 5, "", baseTime.Add(2*time.Hour))

		aggs, err := s.service.AggregateByPhone(s.ctx, models.EventFilter{})
		s.Require().NoError(err)
		agg := findAggregate(s.T(), aggs, "777")
		s.Equal("Omar", agg.LatestUserName)
		s.Equal(baseTime.Add(2*time.Hour), agg.LatestRecordedAt)
	})

	s.Run("all events unnamed leaves username empty", func() {
		s.insert("888", "", 1, 0, 5, "", baseTime)

		aggs, err := s.service.AggregateByPhone(s.ctx, models.EventFilter{})
		s.Require().NoError(err)
		agg := findAggregate(s.T(), aggs, "888")
		s.Empty(agg.LatestUserName)
	})

	s.Run("skips events without a phone number", func() {
		s.insert("", "Ghost", 9, 9, 99, "", baseTime)

		aggs, err := s.service.AggregateByPhone(s.ctx, models.EventFilter{})
		s.Require().NoError(err)
		for _, agg := range aggs {
			s.NotEmpty(agg.PhoneNumber)
		}
	})

	s.Run("filters by machine", func() {
		s.insert("111", "Lin", 1, 0, 5, "m1", baseTime)
		s.insert("111", "Lin", 1, 0, 7, "m2", baseTime.Add(time.Minute))

		aggs, err := s.service.AggregateByPhone(s.ctx, models.EventFilter{MachineID: "m1"})
		s.Require().NoError(err)
		agg := findAggregate(s.T(), aggs, "111")
		s.Equal(5, agg.TotalPoints)
		s.Equal(1, agg.SessionCount)
	})

	s.Run("empty ledger returns empty result, not an error", func() {
		fresh := New(store.NewInMemory(), nil)
		aggs, err := fresh.AggregateByPhone(s.ctx, models.EventFilter{})
		s.Require().NoError(err)
		s.Empty(aggs)
	})
}

// TestAggregateTieBreak verifies that two events sharing a recordedAt are
// ordered by event ID ascending, keeping the latest-username choice
// reproducible across re-runs.
func (s *AggregatorSuite) TestAggregateTieBreak() {
	first := s.insert("555", "First", 1, 0, 5, "", baseTime)
	second := s.insert("555", "Second", 1, 0, 5, "", baseTime)

	want := "First"
	if first.ID < second.ID {
		want = "Second"
	}

	for range 3 {
		aggs, err := s.service.AggregateByPhone(s.ctx, models.EventFilter{})
		s.Require().NoError(err)
		agg := findAggregate(s.T(), aggs, "555")
		s.Equal(want, agg.LatestUserName)
	}
}

// TestAggregateMonotonicity verifies that inserting more events never
// decreases any phone number's totals.
func (s *AggregatorSuite) TestAggregateMonotonicity() {
	s.insert("555", "Ana", 2, 1, 10, "", baseTime)

	before, err := s.service.AggregateByPhone(s.ctx, models.EventFilter{})
	s.Require().NoError(err)

	s.insert("555", "", 1, 0, 5, "", baseTime.Add(time.Minute))
	s.insert("666", "Bo", 4, 0, 20, "", baseTime.Add(2*time.Minute))

	after, err := s.service.AggregateByPhone(s.ctx, models.EventFilter{})
	s.Require().NoError(err)

	for _, prev := range before {
		next := findAggregate(s.T(), after, prev.PhoneNumber)
		s.GreaterOrEqual(next.TotalPoints, prev.TotalPoints)
		s.GreaterOrEqual(next.TotalBottles, prev.TotalBottles)
		s.GreaterOrEqual(next.TotalCups, prev.TotalCups)
		s.GreaterOrEqual(next.SessionCount, prev.SessionCount)
	}
}

func (s *AggregatorSuite) TestHistory() {
	s.Run("newest first with unknown fallback", func() {
		s.insert("555", "", 2, 0, 10, "", baseTime)
		s.insert("555", "Ana", 1, 1, 5, "", baseTime.Add(time.Hour))

		events, err := s.service.History(s.ctx, "555")
		s.Require().NoError(err)
		s.Require().Len(events, 2)
		s.Equal("Ana", events[0].UserName)
		s.Equal("Unknown", events[1].UserName)
	})

	s.Run("unknown phone yields empty history", func() {
		events, err := s.service.History(s.ctx, "000")
		s.Require().NoError(err)
		s.Empty(events)
	})

	s.Run("empty phone is a validation error", func() {
		_, err := s.service.History(s.ctx, "")
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func (s *AggregatorSuite) TestLatest() {
	s.Run("returns most recent event", func() {
		s.insert("555", "", 2, 0, 10, "", baseTime)
		want := s.insert("555", "Ana", 1, 1, 5, "", baseTime.Add(time.Hour))

		got, err := s.service.Latest(s.ctx, "555")
		s.Require().NoError(err)
		s.Equal(want.ID, got.ID)
	})

	s.Run("unknown phone is not found", func() {
		_, err := s.service.Latest(s.ctx, "000")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func findAggregate(t *testing.T, aggs []models.UserAggregate, phone string) models.UserAggregate {
	t.Helper()
	for _, agg := range aggs {
		if agg.PhoneNumber == phone {
			return agg
		}
	}
	t.Fatalf("no aggregate for phone %s", phone)
	return models.UserAggregate{}
}
