package otp

import (
	"context"
	"time"
)

// Challenge is one outstanding password-reset code. Only the bcrypt hash of
// the code is ever stored.
type Challenge struct {
	Email     string    `json:"email"`
	CodeHash  []byte    `json:"codeHash"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	Attempts  int       `json:"attempts"`
	Used      bool      `json:"used"`
}

// Expired reports whether the challenge is past its expiry at the given time.
func (c *Challenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// ChallengeStore keeps at most one live challenge per email. Save replaces
// any existing challenge and bounds its lifetime by ExpiresAt; Find returns
// sentinel.ErrNotFound for unknown or expired-and-evicted emails.
type ChallengeStore interface {
	Save(ctx context.Context, challenge *Challenge) error
	Find(ctx context.Context, email string) (*Challenge, error)
	Delete(ctx context.Context, email string) error
}
