package models

import (
	"time"

	"tripplanner/internal/domain"
)

// TripRequest is the structured planning input.
type TripRequest struct {
	Destination    string `json:"destination"`
	Origin         string `json:"origin"`
	DurationDays   int    `json:"duration_days"`
	NumPeople      int    `json:"num_people"`
	TravelType     string `json:"travel_type"`
	BudgetPKR      int64  `json:"budget_pkr"`
	Style          string `json:"style"`
	TravelerGender string `json:"traveler_gender,omitempty"`
}

// Leg is a directed travel segment of a single day.
type Leg struct {
	Origin      Place `json:"origin"`
	Destination Place `json:"destination"`
}

// Stay reports whether the leg starts and ends at the same place.
func (l Leg) Stay() bool {
	return l.Origin.ID == l.Destination.ID
}

type DayPlan struct {
	Day             int              `json:"day"`
	Kind            domain.DayKind   `json:"kind"`
	Title           string           `json:"title"`
	Leg             Leg              `json:"leg"`
	Region          string           `json:"region"`
	Route           *RouteFact       `json:"route,omitempty"`
	TransportMode   string           `json:"transport_mode"`
	TransportCost   int64            `json:"transport_cost"`
	DepartureTime   string           `json:"departure_time,omitempty"`
	Hotel           string           `json:"hotel,omitempty"`
	HotelCost       int64            `json:"hotel_cost"`
	MealCost        int64            `json:"meal_cost"`
	Activities      []string         `json:"activities"`
	ActivityCost    int64            `json:"activity_cost"`
	Safety          SafetyAssessment `json:"safety"`
	SafetyNotes     []string         `json:"safety_notes"`
	AltitudeWarning string           `json:"altitude_warning,omitempty"`
	IsRestDay       bool             `json:"is_rest_day"`
	RestReason      string           `json:"rest_reason,omitempty"`
	Stage           domain.DayStage  `json:"stage"`
	Tips            []string         `json:"tips,omitempty"`
}

// Total is the sum of the day's costs.
func (d DayPlan) Total() int64 {
	return d.TransportCost + d.HotelCost + d.MealCost + d.ActivityCost
}

type CostBreakdown struct {
	Transport     int64 `json:"transport"`
	Accommodation int64 `json:"accommodation"`
	Food          int64 `json:"food"`
	Activities    int64 `json:"activities"`
	Buffer        int64 `json:"buffer"`
	Total         int64 `json:"total"`
	PerPerson     int64 `json:"per_person"`
}

// DataFreshness counts legs by the cascade tier that answered them.
type DataFreshness struct {
	Live      int `json:"live"`
	Persisted int `json:"persisted"`
	Fallback  int `json:"fallback"`
	Stale     int `json:"stale"`
}

type NarrativeDay struct {
	Day           int      `json:"day"`
	Title         string   `json:"title"`
	Tips          []string `json:"tips,omitempty"`
	ActivityNotes []string `json:"activity_notes,omitempty"`
}

// Narrative is generated prose attached to a plan. It never carries numbers
// that override the plan's own.
type Narrative struct {
	Title   string         `json:"title"`
	Summary string         `json:"summary"`
	Days    []NarrativeDay `json:"days"`
}

type PackingItem struct {
	Item      string `json:"item" yaml:"item"`
	Category  string `json:"category" yaml:"category"`
	Essential bool   `json:"essential" yaml:"essential"`
	Notes     string `json:"notes,omitempty" yaml:"notes"`
}

type TripPlan struct {
	ID                      string           `json:"id"`
	Request                 TripRequest      `json:"request"`
	Origin                  Place            `json:"origin"`
	Destination             Place            `json:"destination"`
	Days                    []DayPlan        `json:"days"`
	Costs                   CostBreakdown    `json:"cost_breakdown"`
	Allocation              BudgetAllocation `json:"allocation"`
	MarketTransportEstimate int64            `json:"market_transport_estimate"`
	BudgetStatus            string           `json:"budget_status"`
	CostNotes               []string         `json:"cost_notes,omitempty"`
	SafetyTier              domain.RiskTier  `json:"safety_tier"`
	SafetyNotes             []string         `json:"safety_notes"`
	AltitudeWarnings        []string         `json:"altitude_warnings"`
	PackingChecklist        []PackingItem    `json:"packing_checklist"`
	UncertaintyNotes        []string         `json:"uncertainty_notes,omitempty"`
	Degraded                bool             `json:"degraded"`
	DataFreshness           DataFreshness    `json:"data_freshness"`
	Narrative               *Narrative       `json:"narrative,omitempty"`
	CreatedAt               time.Time        `json:"created_at"`
}
