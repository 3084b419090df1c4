package handler

import (
	"strings"

	"github.com/syedmusab/rvm-backend/internal/profile/models"
	dErrors "github.com/syedmusab/rvm-backend/pkg/domain-errors"
)

// RegisterRequest is the HTTP request body for POST /register.
type RegisterRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	UserName    string `json:"username"`
	Age         *int   `json:"age"`
	Gender      string `json:"gender"`
	NationalID  string `json:"nationalId"`
	ProfilePic  string `json:"profilePicPath"`
}

// Validate validates the registration request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *RegisterRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.PhoneNumber = strings.TrimSpace(r.PhoneNumber)
	r.UserName = strings.TrimSpace(r.UserName)
	if r.PhoneNumber == "" || r.UserName == "" {
		return dErrors.New(dErrors.CodeBadRequest, "phone number and username are required")
	}
	if r.Age != nil && *r.Age < 0 {
		return dErrors.New(dErrors.CodeBadRequest, "age must be non-negative")
	}
	return nil
}

// ToProfile builds the domain profile.
func (r *RegisterRequest) ToProfile() *models.UserProfile {
	return &models.UserProfile{
		PhoneNumber: r.PhoneNumber,
		UserName:    r.UserName,
		Age:         r.Age,
		Gender:      strings.TrimSpace(r.Gender),
		NationalID:  strings.TrimSpace(r.NationalID),
		ProfilePic:  strings.TrimSpace(r.ProfilePic),
	}
}

// UpdateProfileRequest is the HTTP request body for
// PUT /update-profile/{phoneNumber}. Absent fields are left untouched.
type UpdateProfileRequest struct {
	UserName   *string `json:"username"`
	Age        *int    `json:"age"`
	ProfilePic *string `json:"profilePic"`
}

// Validate validates the update request.
func (r *UpdateProfileRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.UserName != nil {
		trimmed := strings.TrimSpace(*r.UserName)
		if trimmed == "" {
			return dErrors.New(dErrors.CodeBadRequest, "username must not be empty")
		}
		r.UserName = &trimmed
	}
	if r.Age != nil && *r.Age < 0 {
		return dErrors.New(dErrors.CodeBadRequest, "age must be non-negative")
	}
	return nil
}

// ToUpdate builds the domain update.
func (r *UpdateProfileRequest) ToUpdate() models.ProfileUpdate {
	return models.ProfileUpdate{
		UserName:   r.UserName,
		Age:        r.Age,
		ProfilePic: r.ProfilePic,
	}
}
