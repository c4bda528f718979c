// Package models defines the records exchanged with the Bill Board API.
package models

import (
	"fmt"
	"strings"
)

// Bill is a legislative bill as returned by search, recommendations and the
// saved-bills endpoints. Score is only set on ranked results.
type Bill struct {
	ID      int64    `json:"bill_id"`
	Number  *string  `json:"bill_number,omitempty"`
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Score   *float64 `json:"score,omitempty"`
}

// Label returns the bill number when known, otherwise "#<id>".
func (b Bill) Label() string {
	if b.Number != nil && strings.TrimSpace(*b.Number) != "" {
		return *b.Number
	}
	return fmt.Sprintf("#%d", b.ID)
}

func (b Bill) String() string {
	if b.Score != nil {
		return fmt.Sprintf("%-10s %s (%.3f)", b.Label(), b.Title, *b.Score)
	}
	return fmt.Sprintf("%-10s %s", b.Label(), b.Title)
}

// RecommendationResponse wraps ranked bills.
type RecommendationResponse struct {
	Recommendations []Bill `json:"recommendations"`
}

// SaveBillRequest is the body of POST /api/me/saved.
type SaveBillRequest struct {
	BillID int64 `json:"bill_id"`
}

// Health is the /health payload; Status is "ok" or "degraded".
type Health struct {
	Status string                 `json:"status"`
	Checks map[string]HealthCheck `json:"checks,omitempty"`
}

type HealthCheck struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}
