package handler

import (
	"time"

	"github.com/syedmusab/rvm-backend/internal/ledger/models"
)

// HistoryEntry is one recycling session in the history response. Unnamed
// events report the username as "Unknown", matching what the mobile app
// renders.
type HistoryEntry struct {
	PhoneNumber string    `json:"phoneNumber"`
	UserName    string    `json:"userName"`
	Bottles     int       `json:"bottles"`
	Cups        int       `json:"cups"`
	Points      int       `json:"points"`
	MachineID   string    `json:"machineId,omitempty"`
	RecordedAt  time.Time `json:"recordedAt"`
}

// HistoryResponse is the HTTP response for GET /newgethistory/{phoneNumber}.
type HistoryResponse struct {
	PhoneNumber string         `json:"phoneNumber"`
	Sessions    []HistoryEntry `json:"sessions"`
}

// FromEvents converts domain events to the history response.
func FromEvents(phone string, events []models.RecyclingEvent) *HistoryResponse {
	sessions := make([]HistoryEntry, 0, len(events))
	for _, e := range events {
		name := e.UserName
		if name == "" {
			name = "Unknown"
		}
		sessions = append(sessions, HistoryEntry{
			PhoneNumber: e.PhoneNumber,
			UserName:    name,
			Bottles:     e.Bottles,
			Cups:        e.Cups,
			Points:      e.Points,
			MachineID:   e.MachineID,
			RecordedAt:  e.RecordedAt,
		})
	}
	return &HistoryResponse{PhoneNumber: phone, Sessions: sessions}
}

// LeaderboardResponse is the HTTP response for GET /registeredusers.
type LeaderboardResponse struct {
	Message string                    `json:"message"`
	Users   []models.LeaderboardEntry `json:"users"`
}

// UpdateUserResponse is the HTTP response for POST /updateUser.
type UpdateUserResponse struct {
	Message      string `json:"message"`
	UpdatedCount int64  `json:"updatedCount"`
}

// AggregatesResponse is the HTTP response for GET /aggregates.
type AggregatesResponse struct {
	Aggregates []models.UserAggregate `json:"aggregates"`
}
