package models

import (
	"time"

	dErrors "github.com/syedmusab/rvm-backend/pkg/domain-errors"
)

// DefaultProfilePic is assigned at registration when the caller supplies no
// picture path.
const DefaultProfilePic = "../assets/images/male-avatar.png"

// UserProfile is the registered owner of a phone number. The phone number is
// the identity key across the whole system; recycling events reference it,
// never a profile ID.
type UserProfile struct {
	PhoneNumber string    `json:"phoneNumber" bson:"phoneNumber"`
	UserName    string    `json:"username" bson:"username"`
	Age         *int      `json:"age" bson:"age"`
	Gender      string    `json:"gender" bson:"gender"`
	NationalID  string    `json:"nationalId,omitempty" bson:"nationalId,omitempty"`
	ProfilePic  string    `json:"profilePic" bson:"profilePic"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

// Validate checks a profile before registration.
func (p *UserProfile) Validate() error {
	if p.PhoneNumber == "" {
		return dErrors.New(dErrors.CodeBadRequest, "phone number is required")
	}
	if p.UserName == "" {
		return dErrors.New(dErrors.CodeBadRequest, "username is required")
	}
	if p.Age != nil && *p.Age < 0 {
		return dErrors.New(dErrors.CodeBadRequest, "age must be non-negative")
	}
	return nil
}

// ProfileUpdate carries the mutable profile fields. Nil fields are left
// untouched; the phone number itself is never updatable.
type ProfileUpdate struct {
	UserName   *string
	Age        *int
	ProfilePic *string
}

// Empty reports whether the update would change nothing.
func (u ProfileUpdate) Empty() bool {
	return u.UserName == nil && u.Age == nil && u.ProfilePic == nil
}

// Validate checks the update before it touches any store.
func (u ProfileUpdate) Validate() error {
	if u.UserName != nil && *u.UserName == "" {
		return dErrors.New(dErrors.CodeBadRequest, "username must not be empty")
	}
	if u.Age != nil && *u.Age < 0 {
		return dErrors.New(dErrors.CodeBadRequest, "age must be non-negative")
	}
	return nil
}

// Apply folds the update into p and stamps UpdatedAt.
func (u ProfileUpdate) Apply(p *UserProfile, now time.Time) {
	if u.UserName != nil {
		p.UserName = *u.UserName
	}
	if u.Age != nil {
		p.Age = u.Age
	}
	if u.ProfilePic != nil {
		p.ProfilePic = *u.ProfilePic
	}
	p.UpdatedAt = now
}
