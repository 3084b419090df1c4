package store

import (
	"context"

	"github.com/syedmusab/rvm-backend/internal/profile/models"
)

// ProfileStore persists user profiles keyed by phone number.
//
// Implementations return sentinel errors for infrastructure conditions:
// sentinel.ErrConflict when a create hits an existing phone number,
// sentinel.ErrNotFound when a lookup or update misses, and
// sentinel.ErrUnavailable for transient backend failures. Services translate
// these into coded domain errors.
type ProfileStore interface {
	// Create stores a new profile. Fails with sentinel.ErrConflict when the
	// phone number is already registered.
	Create(ctx context.Context, profile *models.UserProfile) error

	// Update applies the partial update and returns the resulting profile.
	Update(ctx context.Context, phoneNumber string, update models.ProfileUpdate) (*models.UserProfile, error)

	// FindByPhone returns the profile for one phone number.
	FindByPhone(ctx context.Context, phoneNumber string) (*models.UserProfile, error)

	// FindByPhones returns profiles for the given phone numbers. Phones
	// without a profile are simply absent from the result.
	FindByPhones(ctx context.Context, phoneNumbers []string) ([]models.UserProfile, error)

	// Exists reports whether the phone number has a registered profile.
	Exists(ctx context.Context, phoneNumber string) (bool, error)
}
