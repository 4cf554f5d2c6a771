package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tripplanner/internal/catalog"
	"tripplanner/internal/domain"
	"tripplanner/internal/domain/models"
	"tripplanner/internal/metrics"
	"tripplanner/internal/utils"
)

const (
	AdviceAvoidPostpone   = "Consider postponing this trip or finding alternative routes"
	AdviceAvoidConditions = "Check weather conditions and road closures before traveling"
	AdviceCaution         = "Travel with caution - monitor conditions closely"
	AdviceCautionInform   = "Inform someone about your travel plans"
	AdviceRecommended     = "Route appears safe, but always stay alert"
	AdviceFamily          = "For families: Plan rest stops and keep emergency contacts ready"
)

// AdviceSoloFemale is added for a woman travelling alone.
var AdviceSoloFemale = []string{
	"For solo female travelers: Share live location with trusted contacts",
	"Prefer daytime travel and well-lit routes",
	"Use reputable transport services",
}

type HazardProvider interface {
	ActiveHazards(ctx context.Context, region string) ([]models.HazardSignal, error)
}

var severityPenalty = map[domain.Severity]int{
	domain.SeverityLow:      5,
	domain.SeverityMedium:   15,
	domain.SeverityHigh:     30,
	domain.SeverityCritical: 50,
}

// TierFor classifies a score.
func TierFor(score int) domain.RiskTier {
	switch {
	case score >= 70:
		return domain.TierRecommended
	case score >= 40:
		return domain.TierCaution
	default:
		return domain.TierAvoid
	}
}

type SafetyScorer struct {
	Hazards HazardProvider
	Policy  catalog.Policy
}

// Score fetches the region's hazards and assesses the base score against them.
// A hazard lookup failure never fails the call.
func (s SafetyScorer) Score(ctx context.Context, region string, baseScore, altitudeM int) models.SafetyAssessment {
	hazards, err := s.FetchHazards(ctx, region)
	return s.Assess(region, baseScore, altitudeM, hazards, err)
}

// FetchHazards reads the active hazards of a region, recording the outcome.
func (s SafetyScorer) FetchHazards(ctx context.Context, region string) ([]models.HazardSignal, error) {
	if s.Hazards == nil {
		metrics.HazardFetches.WithLabelValues("uncertain").Inc()
		return nil, errors.New("no hazard source configured")
	}
	hazards, err := s.Hazards.ActiveHazards(ctx, region)
	if err != nil {
		metrics.HazardFetches.WithLabelValues("uncertain").Inc()
		utils.LogEventCtx(ctx, "safety", "hazards_unavailable", fmt.Sprintf("region=%s err=%v", region, err))
		return nil, err
	}
	metrics.HazardFetches.WithLabelValues("ok").Inc()
	return hazards, nil
}

// Assess is the pure scoring rule.
func (s SafetyScorer) Assess(region string, baseScore, altitudeM int, hazards []models.HazardSignal, hazardErr error) models.SafetyAssessment {
	out := models.SafetyAssessment{
		Region:    region,
		BaseScore: baseScore,
		Warnings:  []string{},
	}

	score := baseScore
	if hazardErr != nil {
		out.Uncertain = true
		out.UncertaintyNote = fmt.Sprintf("Hazard data unavailable for %s; score reflects route history only", region)
	} else {
		warned := map[domain.HazardType]bool{}
		for _, h := range hazards {
			if !h.Active {
				continue
			}
			score -= severityPenalty[h.Severity]
			if warned[h.Type] {
				continue
			}
			warned[h.Type] = true
			out.Warnings = append(out.Warnings, hazardWarning(h))
		}
	}
	score = clamp(score, 0, 100)
	out.Score = score
	out.Tier = TierFor(score)

	warnAt, capAt := s.altitudeThresholds()
	if altitudeM > warnAt {
		out.AltitudeWarning = fmt.Sprintf("High altitude (%d m): ascend gradually and watch for signs of altitude sickness", altitudeM)
	}
	if altitudeM > capAt && out.Tier == domain.TierRecommended {
		out.Tier = domain.TierCaution
	}

	out.Advice = TierAdvice(out.Tier)
	return out
}

// TierAdvice is the general guidance attached to a tier.
func TierAdvice(t domain.RiskTier) []string {
	switch t {
	case domain.TierAvoid:
		return []string{AdviceAvoidPostpone, AdviceAvoidConditions}
	case domain.TierCaution:
		return []string{AdviceCaution, AdviceCautionInform}
	default:
		return []string{AdviceRecommended}
	}
}

// ProfileAdvice is the guidance specific to who is travelling.
func ProfileAdvice(travelType domain.TravelType, gender string) []string {
	var out []string
	if travelType == domain.TravelSolo && strings.EqualFold(gender, "female") {
		out = append(out, AdviceSoloFemale...)
	}
	if travelType == domain.TravelFamily {
		out = append(out, AdviceFamily)
	}
	return out
}

func (s SafetyScorer) altitudeThresholds() (int, int) {
	warnAt, capAt := s.Policy.AltitudeWarningM, s.Policy.AltitudeCapM
	if warnAt <= 0 {
		warnAt = 2500
	}
	if capAt <= 0 {
		capAt = 3500
	}
	return warnAt, capAt
}

func hazardWarning(h models.HazardSignal) string {
	t := string(h.Type)
	if t == "" {
		t = string(domain.HazardOther)
	}
	label := strings.ToUpper(t[:1]) + t[1:]
	if h.Description == "" {
		return fmt.Sprintf("%s alert (%s) in %s", label, h.Severity, h.Region)
	}
	return fmt.Sprintf("%s alert (%s): %s", label, h.Severity, h.Description)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
