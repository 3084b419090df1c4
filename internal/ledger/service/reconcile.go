package service

import (
	"context"

	dErrors "github.com/syedmusab/rvm-backend/pkg/domain-errors"
)

// ReconcileUsername fills the username onto every ledger event for the
// phone number that does not yet carry one. Events that already bear a name
// (for example, entered at the machine) are left untouched; first writer
// of the name wins per event, not per user. Idempotent: a second run with
// the same name reports zero modified events.
//
// Callers must not fail their surrounding flow on an error here; a profile
// write that cannot immediately backfill leaves a consistency window that
// RenameAllSessions can close later.
func (s *Service) ReconcileUsername(ctx context.Context, phone, userName string) (int64, error) {
	if err := validateRename(phone, userName); err != nil {
		return 0, err
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()
	modified, err := s.events.BackfillUserName(ctx, phone, userName)
	if err != nil {
		return 0, s.storeErr(err, "failed to backfill username")
	}
	if s.metrics != nil {
		s.metrics.AddBackfillEventsUpdated(modified)
	}
	s.logger.InfoContext(ctx, "username backfill applied",
		"phone_number", phone,
		"modified", modified,
	)
	return modified, nil
}

// RenameAllSessions overwrites the username on every ledger event for the
// phone number, regardless of current value. This is the explicit
// correction path; registration flows should use ReconcileUsername instead.
// Idempotent: repeated application with the same name reports zero further
// modifications.
func (s *Service) RenameAllSessions(ctx context.Context, phone, userName string) (int64, error) {
	if err := validateRename(phone, userName); err != nil {
		return 0, err
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()
	modified, err := s.events.RenameUserName(ctx, phone, userName)
	if err != nil {
		return 0, s.storeErr(err, "failed to rename sessions")
	}
	if s.metrics != nil {
		s.metrics.AddBackfillEventsUpdated(modified)
	}
	s.logger.InfoContext(ctx, "username rename applied",
		"phone_number", phone,
		"modified", modified,
	)
	return modified, nil
}

func validateRename(phone, userName string) error {
	if phone == "" {
		return dErrors.New(dErrors.CodeBadRequest, "phone number is required")
	}
	if userName == "" {
		return dErrors.New(dErrors.CodeBadRequest, "username is required")
	}
	return nil
}
