package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/syedmusab/rvm-backend/internal/feedback/models"
	"github.com/syedmusab/rvm-backend/internal/feedback/store"
	dErrors "github.com/syedmusab/rvm-backend/pkg/domain-errors"
	"github.com/syedmusab/rvm-backend/pkg/requestcontext"
)

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type FeedbackServiceSuite struct {
	suite.Suite
	svc *Service
	ctx context.Context
}

func TestFeedbackServiceSuite(t *testing.T) {
	suite.Run(t, new(FeedbackServiceSuite))
}

func (s *FeedbackServiceSuite) SetupTest() {
	s.svc = New(store.NewInMemory())
	s.ctx = requestcontext.WithTime(context.Background(), baseTime)
}

func (s *FeedbackServiceSuite) TestCreate() {
	s.Run("stores valid feedback with request-time default", func() {
		f, err := s.svc.Create(s.ctx, &models.Feedback{PhoneNumber: "555", Feedback: "more machines please"})
		s.Require().NoError(err)
		s.NotEmpty(f.ID)
		s.Equal(baseTime, f.CreatedAt)
	})

	s.Run("rejects empty text", func() {
		_, err := s.svc.Create(s.ctx, &models.Feedback{PhoneNumber: "555"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func (s *FeedbackServiceSuite) TestListByPhone() {
	for i, text := range []string{"first", "second"} {
		_, err := s.svc.Create(s.ctx, &models.Feedback{
			PhoneNumber: "555",
			Feedback:    text,
			CreatedAt:   baseTime.Add(time.Duration(i) * time.Minute),
		})
		s.Require().NoError(err)
	}

	out, err := s.svc.ListByPhone(s.ctx, "555")
	s.Require().NoError(err)
	s.Require().Len(out, 2)
	s.Equal("second", out[0].Feedback)

	empty, err := s.svc.ListByPhone(s.ctx, "000")
	s.Require().NoError(err)
	s.Empty(empty)
}
