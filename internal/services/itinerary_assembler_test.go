package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"tripplanner/internal/catalog"
	"tripplanner/internal/domain"
	"tripplanner/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAssembler(t *testing.T, hazards HazardProvider) ItineraryAssembler {
	t.Helper()
	cat := catalog.MustDefault()
	a := NewItineraryAssembler(cat, NewRouteResolver(cat, nil, nil, time.Hour), hazards)
	a.Now = func() time.Time { return time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC) }
	a.NewID = func() string { return "11111111-2222-3333-4444-555555555555" }
	return a
}

func noHazards() HazardProvider {
	return fakeHazards{byRegion: map[string][]models.HazardSignal{}}
}

func assertPlanInvariants(t *testing.T, req models.TripRequest, plan models.TripPlan) {
	t.Helper()
	require.Len(t, plan.Days, req.DurationDays)
	var sum int64
	for i, d := range plan.Days {
		assert.Equal(t, i+1, d.Day)
		assert.Equal(t, domain.StageFinalized, d.Stage)
		sum += d.Total()
	}
	assert.Equal(t, req.BudgetPKR, plan.Costs.Total)
	assert.Equal(t, plan.Costs.Total, sum+plan.Costs.Buffer)
	assert.GreaterOrEqual(t, plan.Costs.Buffer*10, plan.Costs.Total)
	for _, cat := range domain.SpendCategories {
		var spent int64
		switch cat {
		case domain.CategoryTransport:
			spent = plan.Costs.Transport
		case domain.CategoryAccommodation:
			spent = plan.Costs.Accommodation
		case domain.CategoryFood:
			spent = plan.Costs.Food
		case domain.CategoryActivities:
			spent = plan.Costs.Activities
		}
		assert.LessOrEqual(t, spent, plan.Allocation.Amount(cat), "%s", cat)
	}
}

func nightDepartures(t *testing.T, plan models.TripPlan) []int {
	t.Helper()
	pol := catalog.MustDefault().Policy
	var out []int
	for _, d := range plan.Days {
		if d.DepartureTime == "" {
			continue
		}
		m, err := catalog.ParseClock(d.DepartureTime)
		require.NoError(t, err)
		if pol.IsNight(m) {
			out = append(out, d.Day)
		}
	}
	return out
}

func restDays(plan models.TripPlan) []int {
	var out []int
	for _, d := range plan.Days {
		if d.IsRestDay {
			out = append(out, d.Day)
		}
	}
	return out
}

func TestAssembleHunzaFamily(t *testing.T) {
	req := models.TripRequest{
		Destination:  "Hunza",
		DurationDays: 6,
		TravelType:   "family",
		NumPeople:    4,
		BudgetPKR:    180_000,
		Style:        "comfort",
	}
	plan, err := newTestAssembler(t, noHazards()).Assemble(context.Background(), req)
	require.NoError(t, err)
	assertPlanInvariants(t, req, plan)

	rest := restDays(plan)
	require.Len(t, rest, 1)
	assert.LessOrEqual(t, rest[0], 3)
	assert.Equal(t, 2, rest[0])
	assert.Contains(t, plan.Days[1].RestReason, "Family rest")
	assert.Nil(t, plan.Days[1].Route)
	assert.Empty(t, plan.Days[1].TransportMode)

	assert.Empty(t, nightDepartures(t, plan))
	assert.LessOrEqual(t, plan.Costs.Total, int64(180_000))

	first := plan.Days[0]
	assert.Equal(t, domain.DayArrival, first.Kind)
	assert.Equal(t, "islamabad", first.Leg.Origin.ID)
	assert.Equal(t, "07:00", first.DepartureTime)
	assert.Equal(t, "Toyota Hiace", first.TransportMode)
	assert.Contains(t, strings.Join(first.SafetyNotes, "|"), "Chilas")

	last := plan.Days[5]
	assert.Equal(t, domain.DayDeparture, last.Kind)
	assert.Empty(t, last.Hotel)
	assert.Zero(t, last.HotelCost)

	assert.Equal(t, "hunza", plan.Request.Destination)
	assert.Equal(t, "islamabad", plan.Request.Origin)
	assert.Equal(t, domain.TierCaution, plan.SafetyTier)
	assert.Contains(t, plan.SafetyNotes, AdviceFamily)
	assert.NotEmpty(t, plan.PackingChecklist)
	assert.Equal(t, "11111111-2222-3333-4444-555555555555", plan.ID)
	assert.Equal(t, int64(45_000), plan.Costs.PerPerson)
}

func TestAssembleBudgetBelowFloor(t *testing.T) {
	req := models.TripRequest{Destination: "Hunza", DurationDays: 6, TravelType: "family", NumPeople: 4, BudgetPKR: 20_000, Style: "comfort"}
	plan, err := newTestAssembler(t, noHazards()).Assemble(context.Background(), req)
	v, ok := domain.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "budget_pkr", v.Field)
	assert.Equal(t, int64(144_000), v.Suggestion)
	assert.Empty(t, plan.Days)
}

func TestAssembleAllFallbackIsDegraded(t *testing.T) {
	cat := catalog.MustDefault()
	store := newMemRouteStore()
	resolver := NewRouteResolver(cat, store, &fakeProvider{err: errProviderDown}, time.Hour)
	a := NewItineraryAssembler(cat, resolver, noHazards())

	req := models.TripRequest{Destination: "hunza", DurationDays: 5, TravelType: "solo", NumPeople: 1, BudgetPKR: 100_000}
	plan, err := a.Assemble(context.Background(), req)
	require.NoError(t, err)
	assertPlanInvariants(t, req, plan)

	for _, d := range plan.Days {
		require.NotNil(t, d.Route, "day %d", d.Day)
		assert.Equal(t, domain.SourceFallback, d.Route.Source)
	}
	assert.True(t, plan.Degraded)
	assert.Equal(t, 5, plan.DataFreshness.Fallback)
	assert.NotEmpty(t, plan.UncertaintyNotes)
	assert.Equal(t, 0, store.upserts)
}

func TestAssembleCriticalFloodIsAvoid(t *testing.T) {
	hz := fakeHazards{byRegion: map[string][]models.HazardSignal{
		"punjab": {hazard("punjab", domain.HazardFlood, domain.SeverityCritical)},
	}}
	req := models.TripRequest{Destination: "murree", DurationDays: 2, TravelType: "couple", NumPeople: 2, BudgetPKR: 60_000}
	plan, err := newTestAssembler(t, hz).Assemble(context.Background(), req)
	require.NoError(t, err)
	assertPlanInvariants(t, req, plan)

	assert.Equal(t, 30, plan.Days[0].Safety.Score)
	assert.Equal(t, domain.TierAvoid, plan.Days[0].Safety.Tier)
	assert.Equal(t, domain.TierAvoid, plan.SafetyTier)
	require.NotEmpty(t, plan.SafetyNotes)
	assert.Contains(t, plan.SafetyNotes[0], "avoid")
	assert.Contains(t, plan.SafetyNotes, AdviceAvoidPostpone)
}

func TestAssembleHazardOutageMarksUncertain(t *testing.T) {
	req := models.TripRequest{Destination: "swat", DurationDays: 3, NumPeople: 2, BudgetPKR: 60_000}
	plan, err := newTestAssembler(t, fakeHazards{err: errors.New("weather timeout")}).Assemble(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, plan.Degraded)
	for _, d := range plan.Days {
		assert.True(t, d.Safety.Uncertain)
	}
	assert.Equal(t, "couple", plan.Request.TravelType)
}

func TestAssembleAcclimatization(t *testing.T) {
	req := models.TripRequest{Destination: "Fairy Meadows", DurationDays: 5, TravelType: "solo", NumPeople: 1, BudgetPKR: 120_000}
	plan, err := newTestAssembler(t, noHazards()).Assemble(context.Background(), req)
	require.NoError(t, err)
	assertPlanInvariants(t, req, plan)

	rest := restDays(plan)
	require.Equal(t, []int{2}, rest)
	assert.Contains(t, plan.Days[1].RestReason, "Acclimatization")
	assert.Equal(t, "fairy-meadows", plan.Days[1].Leg.Destination.ID)
	assert.NotEmpty(t, plan.AltitudeWarnings)
}

func TestAssembleAcclimatizationAndFamilyRestAreDistinct(t *testing.T) {
	req := models.TripRequest{Destination: "fairy-meadows", DurationDays: 6, TravelType: "family", NumPeople: 4, BudgetPKR: 300_000}
	plan, err := newTestAssembler(t, noHazards()).Assemble(context.Background(), req)
	require.NoError(t, err)
	assertPlanInvariants(t, req, plan)

	rest := restDays(plan)
	require.Equal(t, []int{2, 4}, rest)
	assert.Contains(t, plan.Days[1].RestReason, "Acclimatization")
	assert.Contains(t, plan.Days[3].RestReason, "Family rest")
}

func TestAssembleLargeBudgetGroupAvoidsNightTravel(t *testing.T) {
	req := models.TripRequest{Destination: "hunza", Origin: "Lahore", DurationDays: 6, TravelType: "group", NumPeople: 10, BudgetPKR: 400_000, Style: "budget"}
	plan, err := newTestAssembler(t, noHazards()).Assemble(context.Background(), req)
	require.NoError(t, err)
	assertPlanInvariants(t, req, plan)

	assert.Empty(t, nightDepartures(t, plan))
	first := plan.Days[0]
	assert.Equal(t, "06:00", first.DepartureTime)
	assert.Equal(t, "Toyota Coaster", first.TransportMode)
	assert.Contains(t, first.Activities, "Extended daytime stop along the way")
	assert.NotContains(t, first.Tips, overnightTip)
	assert.Contains(t, strings.Join(first.SafetyNotes, "|"), "Chilas")
	assert.Empty(t, restDays(plan))
}

func TestAssembleSoloBudgetTakesOvernightCoach(t *testing.T) {
	req := models.TripRequest{Destination: "hunza", Origin: "lahore", DurationDays: 5, NumPeople: 1, BudgetPKR: 60_000, Style: "budget"}
	plan, err := newTestAssembler(t, noHazards()).Assemble(context.Background(), req)
	require.NoError(t, err)

	first := plan.Days[0]
	assert.Equal(t, "20:00", first.DepartureTime)
	assert.Equal(t, "Overnight Shared coach", first.TransportMode)
	assert.Contains(t, first.Tips, overnightTip)
	assert.Equal(t, "Shared jeep", plan.Days[1].TransportMode)
}

func TestAssembleSoloFemaleAdvice(t *testing.T) {
	a := newTestAssembler(t, noHazards())
	req := models.TripRequest{Destination: "murree", DurationDays: 2, NumPeople: 1, BudgetPKR: 40_000, TravelerGender: " Female "}
	plan, err := a.Assemble(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "female", plan.Request.TravelerGender)
	assert.Equal(t, string(domain.TravelSolo), plan.Request.TravelType)
	for _, advice := range AdviceSoloFemale {
		assert.Contains(t, plan.SafetyNotes, advice)
	}
	for _, d := range plan.Days {
		assert.Contains(t, d.Safety.Advice, AdviceSoloFemale[0], "day %d", d.Day)
	}

	req.NumPeople = 2
	req.TravelType = "couple"
	plan, err = a.Assemble(context.Background(), req)
	require.NoError(t, err)
	assert.NotContains(t, plan.SafetyNotes, AdviceSoloFemale[0])
}

func TestAssembleLegErrorNamesTheLeg(t *testing.T) {
	cat := catalog.MustDefault()
	a := NewItineraryAssembler(cat, failingRoutes{from: "hunza", to: "passu"}, noHazards())
	req := models.TripRequest{Destination: "hunza", DurationDays: 6, NumPeople: 1, BudgetPKR: 100_000}

	_, err := a.Assemble(context.Background(), req)
	var legErr domain.LegError
	require.True(t, errors.As(err, &legErr))
	assert.Equal(t, 3, legErr.Day)
	assert.Equal(t, "hunza", legErr.Origin)
	assert.Equal(t, "passu", legErr.Destination)
}

type failingRoutes struct {
	from, to string
}

func (f failingRoutes) Resolve(_ context.Context, origin, destination string) (models.RouteFact, error) {
	if origin == f.from && destination == f.to {
		return models.RouteFact{}, errors.New("road washed out")
	}
	fact, _ := catalog.MustDefault().FallbackFact(origin, destination)
	return fact, nil
}

func TestAssembleValidation(t *testing.T) {
	a := newTestAssembler(t, noHazards())
	base := models.TripRequest{Destination: "hunza", DurationDays: 6, NumPeople: 2, BudgetPKR: 200_000}

	cases := []struct {
		name  string
		edit  func(r *models.TripRequest)
		field string
	}{
		{"unknown destination", func(r *models.TripRequest) { r.Destination = "Paris" }, "destination"},
		{"empty destination", func(r *models.TripRequest) { r.Destination = " " }, "destination"},
		{"unknown origin", func(r *models.TripRequest) { r.Origin = "Tokyo" }, "origin"},
		{"too short", func(r *models.TripRequest) { r.DurationDays = 3 }, "duration_days"},
		{"too long", func(r *models.TripRequest) { r.DurationDays = 31 }, "duration_days"},
		{"no people", func(r *models.TripRequest) { r.NumPeople = 0 }, "num_people"},
		{"too many people", func(r *models.TripRequest) { r.NumPeople = 51 }, "num_people"},
		{"bad travel type", func(r *models.TripRequest) { r.TravelType = "business" }, "travel_type"},
		{"bad style", func(r *models.TripRequest) { r.Style = "backpacker" }, "style"},
		{"bad traveler gender", func(r *models.TripRequest) { r.TravelerGender = "robot" }, "traveler_gender"},
		{"budget above ceiling", func(r *models.TripRequest) { r.BudgetPKR = MaxBudgetPKR + 1 }, "budget_pkr"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := base
			tc.edit(&req)
			_, err := a.Assemble(context.Background(), req)
			v, ok := domain.AsValidation(err)
			require.True(t, ok, "got %v", err)
			assert.Equal(t, tc.field, v.Field)
		})
	}

	short := base
	short.DurationDays = 3
	_, err := a.Assemble(context.Background(), short)
	v, _ := domain.AsValidation(err)
	assert.Equal(t, 5, v.Suggestion)
}

func TestPoliciesArePure(t *testing.T) {
	a := newTestAssembler(t, noHazards())
	req := models.TripRequest{Destination: "hunza", DurationDays: 6, TravelType: "family", NumPeople: 4, BudgetPKR: 180_000}
	pc, err := a.prepare(req)
	require.NoError(t, err)
	days := a.skeleton(pc)
	days, err = a.route(context.Background(), &pc, days)
	require.NoError(t, err)
	days = a.cost(pc, days)

	before := cloneDays(days)
	adjusted := applyPolicies(pc, days)
	assert.Equal(t, before, days)
	assert.Equal(t, adjusted, applyPolicies(pc, days))
	assert.Equal(t, domain.DayRest, adjusted[1].Kind)
}
