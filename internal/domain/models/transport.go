package models

import "tripplanner/internal/domain"

// TransportOption is a per-mode estimate for travelling one leg.
type TransportOption struct {
	Mode         string          `json:"mode"`
	FarePKR      int64           `json:"estimated_fare_pkr"`
	FareMinPKR   int64           `json:"fare_min_pkr"`
	FareMaxPKR   int64           `json:"fare_max_pkr"`
	TimeHours    float64         `json:"estimated_time_hours"`
	Availability string          `json:"availability"`
	SafetyNotes  string          `json:"safety_notes"`
	RiskTier     domain.RiskTier `json:"risk_level"`
}

// EmergencyInfo carries the contacts for a region alongside the nationwide
// numbers. Region is empty when every region is listed.
type EmergencyInfo struct {
	Region     string                       `json:"region,omitempty"`
	Contacts   map[string]string            `json:"contacts,omitempty"`
	General    map[string]string            `json:"general"`
	AllRegions map[string]map[string]string `json:"all_regions,omitempty"`
	Tips       []string                     `json:"tips"`
}
