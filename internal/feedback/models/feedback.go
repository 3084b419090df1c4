package models

import (
	"time"

	dErrors "github.com/syedmusab/rvm-backend/pkg/domain-errors"
)

// Feedback is one free-text user submission tied to a phone number.
type Feedback struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	PhoneNumber string    `json:"phoneNumber" bson:"phoneNumber"`
	Feedback    string    `json:"feedback" bson:"feedback"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}

// Validate checks the submission before it touches any store.
func (f *Feedback) Validate() error {
	if f.PhoneNumber == "" {
		return dErrors.New(dErrors.CodeBadRequest, "phone number is required")
	}
	if f.Feedback == "" {
		return dErrors.New(dErrors.CodeBadRequest, "feedback text is required")
	}
	return nil
}
