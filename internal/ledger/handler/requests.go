package handler

import (
	"strings"
	"time"

	"github.com/syedmusab/rvm-backend/internal/ledger/models"
	dErrors "github.com/syedmusab/rvm-backend/pkg/domain-errors"
)

// RecordEventRequest is the HTTP request body for POST /users, the machine
// report ingestion endpoint.
type RecordEventRequest struct {
	PhoneNumber string     `json:"phoneNumber"`
	UserName    string     `json:"userName"`
	Bottles     int        `json:"bottles"`
	Cups        int        `json:"cups"`
	Points      int        `json:"points"`
	MachineID   string     `json:"machineId"`
	RecordedAt  *time.Time `json:"recordedAt"`
}

// Validate validates the machine report.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *RecordEventRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.PhoneNumber = strings.TrimSpace(r.PhoneNumber)
	if r.PhoneNumber == "" {
		return dErrors.New(dErrors.CodeBadRequest, "phoneNumber is required")
	}
	if r.Bottles < 0 || r.Cups < 0 || r.Points < 0 {
		return dErrors.New(dErrors.CodeBadRequest, "bottles, cups and points must be non-negative")
	}
	return nil
}

// ToEvent builds the domain event.
func (r *RecordEventRequest) ToEvent() *models.RecyclingEvent {
	event := &models.RecyclingEvent{
		PhoneNumber: r.PhoneNumber,
		UserName:    strings.TrimSpace(r.UserName),
		Bottles:     r.Bottles,
		Cups:        r.Cups,
		Points:      r.Points,
		MachineID:   strings.TrimSpace(r.MachineID),
	}
	if r.RecordedAt != nil {
		event.RecordedAt = *r.RecordedAt
	}
	return event
}

// UpdateUserRequest is the HTTP request body for POST /updateUser, the
// unconditional username correction endpoint.
type UpdateUserRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	UserName    string `json:"userName"`
}

// Validate validates the correction request.
func (r *UpdateUserRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.PhoneNumber = strings.TrimSpace(r.PhoneNumber)
	r.UserName = strings.TrimSpace(r.UserName)
	if r.PhoneNumber == "" {
		return dErrors.New(dErrors.CodeBadRequest, "phoneNumber is required")
	}
	if r.UserName == "" {
		return dErrors.New(dErrors.CodeBadRequest, "userName is required")
	}
	return nil
}
