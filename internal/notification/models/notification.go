package models

import (
	"time"

	dErrors "github.com/syedmusab/rvm-backend/pkg/domain-errors"
)

// Bin categories a machine can report full.
const (
	BinTypeCup    = "cup"
	BinTypeBottle = "bottle"
)

// BinFullNotification is one machine-reported bin-full event.
type BinFullNotification struct {
	ID         string    `json:"id" bson:"_id,omitempty"`
	BinType    string    `json:"binType" bson:"binType"`
	MachineID  string    `json:"machineId,omitempty" bson:"machineId,omitempty"`
	OccurredAt time.Time `json:"occurredAt" bson:"occurredAt"`
}

// Validate checks the notification before it touches any store.
func (n *BinFullNotification) Validate() error {
	if n.BinType != BinTypeCup && n.BinType != BinTypeBottle {
		return dErrors.Newf(dErrors.CodeBadRequest, "binType must be %q or %q", BinTypeCup, BinTypeBottle)
	}
	return nil
}

// NotificationFilter scopes listings. Zero value matches everything.
type NotificationFilter struct {
	BinType   string
	MachineID string
}

// NotificationPage is one page of notifications, newest first.
type NotificationPage struct {
	Notifications []BinFullNotification `json:"notifications"`
	Page          int                   `json:"page"`
	PageSize      int                   `json:"pageSize"`
	TotalCount    int                   `json:"totalCount"`
	TotalPages    int                   `json:"totalPages"`
}
