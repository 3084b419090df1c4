package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/syedmusab/rvm-backend/internal/profile/models"
	"github.com/syedmusab/rvm-backend/internal/profile/store"
	dErrors "github.com/syedmusab/rvm-backend/pkg/domain-errors"
	"github.com/syedmusab/rvm-backend/pkg/requestcontext"
)

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// stubReconciler records backfill calls and optionally fails them.
type stubReconciler struct {
	backfills []string
	renames   []string
	modified  int64
	err       error
}

func (r *stubReconciler) ReconcileUsername(_ context.Context, phone, userName string) (int64, error) {
	r.backfills = append(r.backfills, phone+":"+userName)
	return r.modified, r.err
}

func (r *stubReconciler) RenameAllSessions(_ context.Context, phone, userName string) (int64, error) {
	r.renames = append(r.renames, phone+":"+userName)
	return r.modified, r.err
}

type ProfileServiceSuite struct {
	suite.Suite
	store      *store.InMemory
	reconciler *stubReconciler
	svc        *Service
	ctx        context.Context
}

func TestProfileServiceSuite(t *testing.T) {
	suite.Run(t, new(ProfileServiceSuite))
}

func (s *ProfileServiceSuite) SetupTest() {
	s.store = store.NewInMemory()
	s.reconciler = &stubReconciler{modified: 2}
	s.svc = New(s.store, s.reconciler)
	s.ctx = requestcontext.WithTime(context.Background(), baseTime)
}

func (s *ProfileServiceSuite) newProfile(phone, name string) *models.UserProfile {
	return &models.UserProfile{PhoneNumber: phone, UserName: name}
}

func (s *ProfileServiceSuite) TestRegister() {
	s.Run("creates profile with defaults and triggers backfill", func() {
		created, err := s.svc.Register(s.ctx, s.newProfile("555", "Ana"))
		s.Require().NoError(err)
		s.Equal("unspecified", created.Gender)
		s.Equal(models.DefaultProfilePic, created.ProfilePic)
		s.Equal(baseTime, created.CreatedAt)
		s.Equal([]string{"555:Ana"}, s.reconciler.backfills)
	})

	s.Run("duplicate phone number conflicts", func() {
		_, err := s.svc.Register(s.ctx, s.newProfile("555", "Other"))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("missing username is rejected before any store call", func() {
		_, err := s.svc.Register(s.ctx, s.newProfile("777", ""))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("negative age is rejected", func() {
		p := s.newProfile("777", "Bo")
		age := -1
		p.Age = &age
		_, err := s.svc.Register(s.ctx, p)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func (s *ProfileServiceSuite) TestRegisterBackfillFailure() {
	s.reconciler.err = errors.New("ledger down")

	created, err := s.svc.Register(s.ctx, s.newProfile("555", "Ana"))

	// The profile write stands; the failure degrades to a warning.
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodePartial))
	s.Require().NotNil(created)

	stored, getErr := s.svc.Get(s.ctx, "555")
	s.Require().NoError(getErr)
	s.Equal("Ana", stored.UserName)
}

func (s *ProfileServiceSuite) TestUpdate() {
	_, err := s.svc.Register(s.ctx, s.newProfile("555", "Ana"))
	s.Require().NoError(err)
	s.reconciler.backfills = nil

	s.Run("partial update keeps untouched fields", func() {
		age := 30
		updated, err := s.svc.Update(s.ctx, "555", models.ProfileUpdate{Age: &age})
		s.Require().NoError(err)
		s.Equal("Ana", updated.UserName)
		s.Require().NotNil(updated.Age)
		s.Equal(30, *updated.Age)
		s.Empty(s.reconciler.backfills, "no username change, no backfill")
	})

	s.Run("username change triggers backfill", func() {
		name := "Anabel"
		updated, err := s.svc.Update(s.ctx, "555", models.ProfileUpdate{UserName: &name})
		s.Require().NoError(err)
		s.Equal("Anabel", updated.UserName)
		s.Equal([]string{"555:Anabel"}, s.reconciler.backfills)
	})

	s.Run("empty update is rejected", func() {
		_, err := s.svc.Update(s.ctx, "555", models.ProfileUpdate{})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("unknown phone is not found", func() {
		name := "X"
		_, err := s.svc.Update(s.ctx, "000", models.ProfileUpdate{UserName: &name})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ProfileServiceSuite) TestGet() {
	_, err := s.svc.Register(s.ctx, s.newProfile("555", "Ana"))
	s.Require().NoError(err)

	s.Run("returns registered profile", func() {
		p, err := s.svc.Get(s.ctx, "555")
		s.Require().NoError(err)
		s.Equal("Ana", p.UserName)
	})

	s.Run("unknown phone is not found", func() {
		_, err := s.svc.Get(s.ctx, "000")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ProfileServiceSuite) TestExists() {
	_, err := s.svc.Register(s.ctx, s.newProfile("555", "Ana"))
	s.Require().NoError(err)

	exists, err := s.svc.Exists(s.ctx, "555")
	s.Require().NoError(err)
	s.True(exists)

	exists, err = s.svc.Exists(s.ctx, "000")
	s.Require().NoError(err)
	s.False(exists)
}

func (s *ProfileServiceSuite) TestNilReconciler() {
	svc := New(s.store, nil)
	created, err := svc.Register(s.ctx, s.newProfile("555", "Ana"))
	s.Require().NoError(err)
	s.NotNil(created)
}

func (s *ProfileServiceSuite) TestDirectory() {
	_, err := s.svc.Register(s.ctx, s.newProfile("555", "Ana"))
	s.Require().NoError(err)

	dir := NewDirectory(s.store)
	attrs, err := dir.AttributesByPhone(s.ctx, []string{"555", "000"})
	s.Require().NoError(err)
	s.Require().Len(attrs, 1)
	s.Equal("Ana", attrs["555"].UserName)
}
