package domain

import "strings"

// RouteSource names the cascade tier that answered a route query.
type RouteSource string

const (
	SourceLive      RouteSource = "live"
	SourcePersisted RouteSource = "persisted"
	SourceFallback  RouteSource = "fallback"
)

// RiskTier is the discrete classification of a safety score.
type RiskTier string

const (
	TierRecommended RiskTier = "recommended"
	TierCaution     RiskTier = "caution"
	TierAvoid       RiskTier = "avoid"
)

// Rank orders tiers from safest (0) to riskiest (2).
func (t RiskTier) Rank() int {
	switch t {
	case TierAvoid:
		return 2
	case TierCaution:
		return 1
	default:
		return 0
	}
}

// WorseTier returns the riskier of two tiers.
func WorseTier(a, b RiskTier) RiskTier {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

type HazardType string

const (
	HazardFlood   HazardType = "flood"
	HazardFog     HazardType = "fog"
	HazardSnow    HazardType = "snow"
	HazardClosure HazardType = "closure"
	HazardOther   HazardType = "other"
)

// ParseHazardType maps loose alert labels (landslide, road_closure, wind…) onto
// the supported hazard types.
func ParseHazardType(s string) HazardType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "flood", "rain":
		return HazardFlood
	case "fog":
		return HazardFog
	case "snow", "landslide":
		return HazardSnow
	case "closure", "road_closure", "road-closure":
		return HazardClosure
	default:
		return HazardOther
	}
}

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func ParseSeverity(s string) (Severity, bool) {
	switch Severity(strings.ToLower(strings.TrimSpace(s))) {
	case SeverityLow:
		return SeverityLow, true
	case SeverityMedium:
		return SeverityMedium, true
	case SeverityHigh:
		return SeverityHigh, true
	case SeverityCritical:
		return SeverityCritical, true
	}
	return "", false
}

// Category is a budget envelope category.
type Category string

const (
	CategoryTransport     Category = "transport"
	CategoryAccommodation Category = "accommodation"
	CategoryFood          Category = "food"
	CategoryActivities    Category = "activities"
	CategoryBuffer        Category = "buffer"
)

// SpendCategories are the envelope categories apart from the buffer, in
// allocation order.
var SpendCategories = []Category{CategoryTransport, CategoryAccommodation, CategoryFood, CategoryActivities}

type Style string

const (
	StyleBudget    Style = "budget"
	StyleComfort   Style = "comfort"
	StyleAdventure Style = "adventure"
	StyleLuxury    Style = "luxury"
)

func ParseStyle(s string) (Style, bool) {
	switch Style(strings.ToLower(strings.TrimSpace(s))) {
	case StyleBudget:
		return StyleBudget, true
	case StyleComfort, "":
		return StyleComfort, true
	case StyleAdventure:
		return StyleAdventure, true
	case StyleLuxury:
		return StyleLuxury, true
	}
	return "", false
}

type TravelType string

const (
	TravelSolo   TravelType = "solo"
	TravelCouple TravelType = "couple"
	TravelFamily TravelType = "family"
	TravelGroup  TravelType = "group"
)

func ParseTravelType(s string) (TravelType, bool) {
	switch TravelType(strings.ToLower(strings.TrimSpace(s))) {
	case TravelSolo:
		return TravelSolo, true
	case TravelCouple:
		return TravelCouple, true
	case TravelFamily:
		return TravelFamily, true
	case TravelGroup:
		return TravelGroup, true
	}
	return "", false
}

// DayKind classifies a day of the itinerary.
type DayKind string

const (
	DayArrival   DayKind = "arrival"
	DayExcursion DayKind = "excursion"
	DayLocal     DayKind = "local"
	DayDeparture DayKind = "departure"
	DayRest      DayKind = "rest"
)

// IsTravel reports whether the day moves between the origin city and the hub.
func (k DayKind) IsTravel() bool {
	return k == DayArrival || k == DayDeparture
}

// DayStage tracks a day through assembly.
type DayStage string

const (
	StageSkeleton       DayStage = "skeleton"
	StageRouted         DayStage = "routed"
	StageCosted         DayStage = "costed"
	StagePolicyAdjusted DayStage = "policy-adjusted"
	StageFinalized      DayStage = "finalized"
)
