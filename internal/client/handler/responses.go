package handler

import (
	"time"

	"amlgate/internal/client"
	"amlgate/internal/screening"
)

// ClientResponse is the HTTP projection of a client.
type ClientResponse struct {
	ID              string     `json:"id"`
	LegalID         string     `json:"legal_id"`
	FullName        string     `json:"full_name"`
	PersonType      string     `json:"person_type"`
	Sector          string     `json:"sector,omitempty"`
	SourceOfFunds   string     `json:"source_of_funds,omitempty"`
	Activity        string     `json:"activity,omitempty"`
	ActivityLocked  bool       `json:"activity_locked"`
	State           string     `json:"state"`
	RiskLevel       string     `json:"risk_level"`
	RiskScore       float64    `json:"risk_score"`
	LastScreeningAt *time.Time `json:"last_screening_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// FromClient converts a domain client to an HTTP response.
func FromClient(c client.Client) *ClientResponse {
	return &ClientResponse{
		ID:              c.ID.String(),
		LegalID:         c.LegalID,
		FullName:        c.FullName,
		PersonType:      string(c.PersonType),
		Sector:          c.Sector,
		SourceOfFunds:   c.SourceOfFunds,
		Activity:        string(c.Activity),
		ActivityLocked:  c.ActivityLocked,
		State:           string(c.State),
		RiskLevel:       string(c.RiskLevel),
		RiskScore:       c.RiskScore,
		LastScreeningAt: c.LastScreeningAt,
		CreatedAt:       c.CreatedAt,
	}
}

// RiskResponse is the current-risk projection of a screening snapshot.
type RiskResponse struct {
	ScreeningID string                            `json:"screening_id"`
	ClientID    string                            `json:"client_id"`
	Score       float64                           `json:"score"`
	Level       string                            `json:"level"`
	Approved    bool                              `json:"approved"`
	Sources     map[string]screening.SourceResult `json:"sources"`
	Alerts      []string                          `json:"alerts,omitempty"`
	ScreenedAt  time.Time                         `json:"screened_at"`
}

// FromScreening converts a screening snapshot to an HTTP response.
func FromScreening(r *screening.Result) *RiskResponse {
	return &RiskResponse{
		ScreeningID: r.ID.String(),
		ClientID:    r.ClientID.String(),
		Score:       r.Score,
		Level:       string(r.Level),
		Approved:    r.Approved,
		Sources:     r.Sources,
		Alerts:      r.Alerts,
		ScreenedAt:  r.Timestamp,
	}
}
