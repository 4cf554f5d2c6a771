package services

import (
	"context"
	"errors"
	"testing"

	"tripplanner/internal/catalog"
	"tripplanner/internal/domain"
	"tripplanner/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierFor(t *testing.T) {
	cases := map[int]domain.RiskTier{
		100: domain.TierRecommended,
		70:  domain.TierRecommended,
		69:  domain.TierCaution,
		40:  domain.TierCaution,
		39:  domain.TierAvoid,
		0:   domain.TierAvoid,
	}
	for score, want := range cases {
		assert.Equalf(t, want, TierFor(score), "score %d", score)
	}
}

func TestScoreCriticalFloodIsAvoid(t *testing.T) {
	s := SafetyScorer{
		Hazards: fakeHazards{byRegion: map[string][]models.HazardSignal{
			"punjab": {hazard("punjab", domain.HazardFlood, domain.SeverityCritical)},
		}},
		Policy: catalog.MustDefault().Policy,
	}
	got := s.Score(context.Background(), "punjab", 80, 500)
	assert.Equal(t, 30, got.Score)
	assert.Equal(t, domain.TierAvoid, got.Tier)
	assert.Len(t, got.Warnings, 1)
	assert.Equal(t, []string{AdviceAvoidPostpone, AdviceAvoidConditions}, got.Advice)
	assert.False(t, got.Uncertain)
}

func TestAssessOneWarningPerHazardType(t *testing.T) {
	s := SafetyScorer{Policy: catalog.MustDefault().Policy}
	hs := []models.HazardSignal{
		hazard("kpk", domain.HazardFlood, domain.SeverityLow),
		hazard("kpk", domain.HazardFlood, domain.SeverityMedium),
		hazard("kpk", domain.HazardFog, domain.SeverityLow),
	}
	inactive := hazard("kpk", domain.HazardSnow, domain.SeverityCritical)
	inactive.Active = false
	hs = append(hs, inactive)

	got := s.Assess("kpk", 90, 1000, hs, nil)
	assert.Equal(t, 65, got.Score)
	assert.Equal(t, domain.TierCaution, got.Tier)
	assert.Len(t, got.Warnings, 2)
}

func TestAssessClampsScore(t *testing.T) {
	s := SafetyScorer{}
	hs := []models.HazardSignal{
		hazard("balochistan", domain.HazardClosure, domain.SeverityCritical),
		hazard("balochistan", domain.HazardFlood, domain.SeverityHigh),
	}
	assert.Equal(t, 0, s.Assess("balochistan", 60, 0, hs, nil).Score)
	assert.Equal(t, 100, s.Assess("punjab", 130, 0, nil, nil).Score)
}

func TestAssessAltitude(t *testing.T) {
	s := SafetyScorer{Policy: catalog.MustDefault().Policy}

	at2500 := s.Assess("northern-areas", 90, 2500, nil, nil)
	assert.Empty(t, at2500.AltitudeWarning)
	assert.Equal(t, domain.TierRecommended, at2500.Tier)

	at2600 := s.Assess("northern-areas", 90, 2600, nil, nil)
	assert.NotEmpty(t, at2600.AltitudeWarning)
	assert.Equal(t, domain.TierRecommended, at2600.Tier)

	khunjerab := s.Assess("northern-areas", 90, 4693, nil, nil)
	assert.Contains(t, khunjerab.AltitudeWarning, "4693")
	assert.Equal(t, domain.TierCaution, khunjerab.Tier)
	assert.Equal(t, 90, khunjerab.Score)
}

func TestScoreDegradesWhenHazardsUnavailable(t *testing.T) {
	s := SafetyScorer{Hazards: fakeHazards{err: errors.New("timeout")}}
	got := s.Score(context.Background(), "kpk", 72, 0)
	assert.Equal(t, 72, got.Score)
	assert.Equal(t, domain.TierRecommended, got.Tier)
	assert.True(t, got.Uncertain)
	assert.NotEmpty(t, got.UncertaintyNote)

	none := SafetyScorer{}.Score(context.Background(), "kpk", 50, 0)
	assert.True(t, none.Uncertain)
}

func TestCompositeHazards(t *testing.T) {
	flood := hazard("kpk", domain.HazardFlood, domain.SeverityHigh)
	ok := fakeHazards{byRegion: map[string][]models.HazardSignal{"kpk": {flood}}}
	down := fakeHazards{err: errors.New("down")}

	got, err := CompositeHazards{Sources: []HazardProvider{down, ok, ok}}.ActiveHazards(context.Background(), "kpk")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = CompositeHazards{Sources: []HazardProvider{down, down}}.ActiveHazards(context.Background(), "kpk")
	assert.Error(t, err)
}

func tierRank(t domain.RiskTier) int {
	switch t {
	case domain.TierRecommended:
		return 0
	case domain.TierCaution:
		return 1
	default:
		return 2
	}
}

func TestScoreNeverRisesWithSeverity(t *testing.T) {
	s := SafetyScorer{Policy: catalog.MustDefault().Policy}
	severities := []domain.Severity{domain.SeverityLow, domain.SeverityMedium, domain.SeverityHigh, domain.SeverityCritical}
	for _, base := range []int{100, 85, 70, 55, 40, 20, 0} {
		for _, altitude := range []int{500, 2500, 3501, 4000, 8611} {
			calm := s.Assess("gb", base, altitude, nil, nil)
			prevScore, prevRank := calm.Score, tierRank(calm.Tier)
			var stacked []models.HazardSignal
			for _, sev := range severities {
				single := s.Assess("gb", base, altitude, []models.HazardSignal{hazard("gb", domain.HazardClosure, sev)}, nil)
				assert.LessOrEqualf(t, single.Score, prevScore, "base %d alt %d sev %s", base, altitude, sev)
				assert.GreaterOrEqualf(t, tierRank(single.Tier), prevRank, "base %d alt %d sev %s", base, altitude, sev)
				prevScore, prevRank = single.Score, tierRank(single.Tier)

				before := s.Assess("gb", base, altitude, stacked, nil)
				stacked = append(stacked, hazard("gb", domain.HazardSnow, sev))
				after := s.Assess("gb", base, altitude, stacked, nil)
				assert.LessOrEqualf(t, after.Score, before.Score, "stacked base %d sev %s", base, sev)

				if altitude > 3500 {
					assert.NotEqualf(t, domain.TierRecommended, single.Tier, "base %d alt %d", base, altitude)
					assert.NotEqual(t, domain.TierRecommended, after.Tier)
				}
			}
			if altitude > 3500 {
				assert.NotEqualf(t, domain.TierRecommended, calm.Tier, "clear base %d alt %d", base, altitude)
			}
		}
	}
}

func TestProfileAdvice(t *testing.T) {
	assert.Equal(t, AdviceSoloFemale, ProfileAdvice(domain.TravelSolo, "Female"))
	assert.Empty(t, ProfileAdvice(domain.TravelSolo, "male"))
	assert.Empty(t, ProfileAdvice(domain.TravelCouple, "female"))
	assert.Equal(t, []string{AdviceFamily}, ProfileAdvice(domain.TravelFamily, "female"))
}
