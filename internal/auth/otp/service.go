package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"time"

	"github.com/asaskevich/govalidator"
	"golang.org/x/crypto/bcrypt"

	dErrors "github.com/syedmusab/rvm-backend/pkg/domain-errors"
	"github.com/syedmusab/rvm-backend/pkg/email"
	"github.com/syedmusab/rvm-backend/pkg/platform/sentinel"
	"github.com/syedmusab/rvm-backend/pkg/requestcontext"
)

const (
	// Codes are four digits, 1000-9999, matching what the machines' UI
	// expects users to type.
	codeMin = 1000
	codeMax = 9999

	challengeTTL   = 10 * time.Minute
	resendCooldown = time.Minute
	maxAttempts    = 5
)

// Service issues and verifies password-reset codes sent by email.
type Service struct {
	challenges ChallengeStore
	sender     email.Sender
	logger     *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(challenges ChallengeStore, sender email.Sender, opts ...Option) *Service {
	s := &Service{
		challenges: challenges,
		sender:     sender,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue generates a fresh code for the email and sends it. A challenge
// issued less than a minute ago blocks reissue; anything older is replaced.
func (s *Service) Issue(ctx context.Context, emailAddr string) error {
	if !govalidator.IsEmail(emailAddr) {
		return dErrors.New(dErrors.CodeBadRequest, "a valid email address is required")
	}

	now := requestcontext.Now(ctx)
	if existing, err := s.challenges.Find(ctx, emailAddr); err == nil {
		if now.Sub(existing.IssuedAt) < resendCooldown {
			return dErrors.New(dErrors.CodeConflict, "a reset code was sent recently, please wait before requesting another")
		}
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return s.storeErr(err, "failed to check for existing reset code")
	}

	code, err := generateCode()
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate reset code")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash reset code")
	}

	challenge := &Challenge{
		Email:     emailAddr,
		CodeHash:  hash,
		IssuedAt:  now,
		ExpiresAt: now.Add(challengeTTL),
	}
	if err := s.challenges.Save(ctx, challenge); err != nil {
		return s.storeErr(err, "failed to store reset code")
	}

	if err := s.sender.Send(ctx, emailAddr, email.PasswordResetSubject, email.PasswordResetBody(code)); err != nil {
		// The challenge stays valid; the user can retry delivery after
		// the cooldown.
		s.logger.Error("reset code email failed",
			"email", emailAddr,
			"error", err,
		)
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to send reset code email")
	}

	s.logger.Info("reset code issued", "email", emailAddr)
	return nil
}

// Verify checks a submitted code. A correct code consumes the challenge;
// a wrong one burns an attempt, up to maxAttempts.
func (s *Service) Verify(ctx context.Context, emailAddr, code string) error {
	if !govalidator.IsEmail(emailAddr) {
		return dErrors.New(dErrors.CodeBadRequest, "a valid email address is required")
	}
	if len(code) != 4 || !govalidator.IsNumeric(code) {
		return dErrors.New(dErrors.CodeBadRequest, "code must be four digits")
	}

	challenge, err := s.challenges.Find(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "no reset code found for this email")
		}
		return s.storeErr(err, "failed to load reset code")
	}

	now := requestcontext.Now(ctx)
	switch {
	case challenge.Used:
		return dErrors.New(dErrors.CodeUnauthorized, "code has already been used")
	case challenge.Expired(now):
		return dErrors.New(dErrors.CodeUnauthorized, "code has expired")
	case challenge.Attempts >= maxAttempts:
		return dErrors.New(dErrors.CodeUnauthorized, "too many incorrect attempts")
	}

	if bcrypt.CompareHashAndPassword(challenge.CodeHash, []byte(code)) != nil {
		challenge.Attempts++
		if err := s.challenges.Save(ctx, challenge); err != nil {
			return s.storeErr(err, "failed to record failed attempt")
		}
		return dErrors.New(dErrors.CodeUnauthorized, "incorrect code")
	}

	challenge.Used = true
	if err := s.challenges.Save(ctx, challenge); err != nil {
		return s.storeErr(err, "failed to consume reset code")
	}

	s.logger.Info("reset code verified", "email", emailAddr)
	return nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d", codeMin+n.Int64()), nil
}

func (s *Service) storeErr(err error, message string) error {
	if errors.Is(err, sentinel.ErrUnavailable) || errors.Is(err, context.DeadlineExceeded) {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, message)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, message)
}
