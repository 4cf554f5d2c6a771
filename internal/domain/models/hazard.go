package models

import (
	"time"

	"tripplanner/internal/domain"
)

// HazardSignal is a current-condition alert for a region.
type HazardSignal struct {
	ID          int64             `json:"id"`
	Region      string            `json:"region"`
	Type        domain.HazardType `json:"type"`
	Severity    domain.Severity   `json:"severity"`
	Active      bool              `json:"active"`
	Description string            `json:"description"`
	ObservedAt  time.Time         `json:"observed_at"`
	ExpiresAt   *time.Time        `json:"expires_at,omitempty"`
	Provider    string            `json:"provider,omitempty"`
}

// InEffect reports whether the signal still counts at the given time.
func (h HazardSignal) InEffect(now time.Time) bool {
	if !h.Active {
		return false
	}
	if h.ExpiresAt != nil && !h.ExpiresAt.After(now) {
		return false
	}
	return true
}

// SafetyAssessment is the scorer output for one region and base score.
type SafetyAssessment struct {
	Region          string          `json:"region"`
	BaseScore       int             `json:"base_score"`
	Score           int             `json:"score"`
	Tier            domain.RiskTier `json:"tier"`
	Warnings        []string        `json:"warnings"`
	AltitudeWarning string          `json:"altitude_warning,omitempty"`
	Advice          []string        `json:"advice,omitempty"`
	Uncertain       bool            `json:"uncertain"`
	UncertaintyNote string          `json:"uncertainty_note,omitempty"`
}
