package models

import (
	"time"

	"tripplanner/internal/domain"
)

// RouteFact answers distance, time and fare for an ordered place pair.
type RouteFact struct {
	Origin          string             `json:"origin"`
	Destination     string             `json:"destination"`
	DistanceKM      float64            `json:"distance_km"`
	TimeHours       float64            `json:"time_hours"`
	FarePKR         int64              `json:"fare_pkr"`
	BaseSafetyScore int                `json:"base_safety_score"`
	RiskTier        domain.RiskTier    `json:"risk_tier"`
	Source          domain.RouteSource `json:"source"`
	FetchedAt       time.Time          `json:"fetched_at"`
	Stale           bool               `json:"stale,omitempty"`
}

// Reversed returns the fact with its endpoints swapped.
func (f RouteFact) Reversed() RouteFact {
	f.Origin, f.Destination = f.Destination, f.Origin
	return f
}
