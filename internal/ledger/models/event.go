package models

import (
	"time"

	dErrors "github.com/syedmusab/rvm-backend/pkg/domain-errors"
)

// RecyclingEvent is one machine-reported recycling action.
//
// Invariants:
//   - PhoneNumber, Bottles, Cups, Points, MachineID and RecordedAt are
//     immutable once written.
//   - UserName may transition exactly once from empty to a value via the
//     conditional backfill; the unconditional rename is a separate, explicit
//     correction path.
//   - Events are never deleted.
//
// Machines may retry reports; each stored event is treated as a distinct
// recycling act. Callers needing idempotent ingestion must supply their own
// dedup key upstream.
type RecyclingEvent struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	PhoneNumber string    `json:"phoneNumber" bson:"phoneNumber"`
	UserName    string    `json:"userName,omitempty" bson:"userName,omitempty"`
	Bottles     int       `json:"bottles" bson:"bottles"`
	Cups        int       `json:"cups" bson:"cups"`
	Points      int       `json:"points" bson:"points"`
	MachineID   string    `json:"machineId,omitempty" bson:"machineId,omitempty"`
	RecordedAt  time.Time `json:"recordedAt" bson:"recordedAt"`
}

// Validate checks the event before it touches any store.
func (e *RecyclingEvent) Validate() error {
	if e.PhoneNumber == "" {
		return dErrors.New(dErrors.CodeBadRequest, "phone number is required")
	}
	if e.Bottles < 0 || e.Cups < 0 || e.Points < 0 {
		return dErrors.New(dErrors.CodeBadRequest, "bottles, cups and points must be non-negative")
	}
	return nil
}

// Before reports whether e sorts before other in the deterministic event
// order: recordedAt ascending, ties broken by event ID ascending. All
// ordering-sensitive aggregation keys on this, never on insertion order.
func (e *RecyclingEvent) Before(other *RecyclingEvent) bool {
	if !e.RecordedAt.Equal(other.RecordedAt) {
		return e.RecordedAt.Before(other.RecordedAt)
	}
	return e.ID < other.ID
}

// EventFilter scopes ledger reads. Zero value matches everything.
type EventFilter struct {
	MachineID string
}

// UserAggregate is the derived per-phone total set. It is computed fresh on
// each query; two successive reads may legally differ.
type UserAggregate struct {
	PhoneNumber      string    `json:"phoneNumber"`
	TotalPoints      int       `json:"totalPoints"`
	TotalBottles     int       `json:"totalBottles"`
	TotalCups        int       `json:"totalCups"`
	SessionCount     int       `json:"sessionCount"`
	LatestUserName   string    `json:"latestUserName,omitempty"`
	LatestRecordedAt time.Time `json:"latestRecordedAt"`
}

// LeaderboardEntry is one ranked row: an aggregate enriched with profile
// attributes. Gender and NationalID are nil when the phone number has no
// profile; such entries still rank as long as some event carried a name.
type LeaderboardEntry struct {
	PhoneNumber  string  `json:"phoneNumber"`
	UserName     string  `json:"userName"`
	TotalPoints  int     `json:"totalPoints"`
	TotalBottles int     `json:"totalBottles"`
	TotalCups    int     `json:"totalCups"`
	Gender       *string `json:"gender"`
	NationalID   *string `json:"nationalId"`
}
