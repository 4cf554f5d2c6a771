package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"tripplanner/internal/catalog"
	"tripplanner/internal/domain"
	"tripplanner/internal/domain/models"
	"tripplanner/internal/metrics"
	"tripplanner/internal/utils"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	defaultOrigin = "islamabad"
	fanOutLimit   = 4
)

type RouteResolving interface {
	Resolve(ctx context.Context, origin, destination string) (models.RouteFact, error)
}

// ItineraryAssembler turns a trip request into a finalized plan. Days move
// through skeleton, routed, costed, policy-adjusted and finalized stages; a
// plan that fails its aggregate checks is never returned.
type ItineraryAssembler struct {
	Catalog   *catalog.Catalog
	Routes    RouteResolving
	Scorer    SafetyScorer
	Budget    BudgetAllocator
	RequestID string
	Now       func() time.Time
	NewID     func() string
}

func NewItineraryAssembler(cat *catalog.Catalog, routes RouteResolving, hazards HazardProvider) ItineraryAssembler {
	return ItineraryAssembler{
		Catalog: cat,
		Routes:  routes,
		Scorer:  SafetyScorer{Hazards: hazards, Policy: cat.Policy},
		Budget:  BudgetAllocator{Catalog: cat},
	}
}

type regionHazards struct {
	signals []models.HazardSignal
	err     error
}

// planContext is the validated request plus everything resolved for it.
type planContext struct {
	req        models.TripRequest
	cat        *catalog.Catalog
	policy     catalog.Policy
	pricing    catalog.Pricing
	dest       catalog.Destination
	origin     models.Place
	hub        models.Place
	style      domain.Style
	travelType domain.TravelType
	people     int
	days       int
	alloc      models.BudgetAllocation
	hazards    map[string]regionHazards
	hubSafety  models.SafetyAssessment
}

// protectedGroup is true for travelers that must not move at night.
func (pc planContext) protectedGroup() bool {
	return pc.travelType == domain.TravelFamily || pc.people >= pc.policy.LargeGroupSize
}

func (a ItineraryAssembler) Assemble(ctx context.Context, req models.TripRequest) (models.TripPlan, error) {
	if a.RequestID != "" && utils.RequestIDFrom(ctx) == "" {
		ctx = utils.WithRequestID(ctx, a.RequestID)
	}

	pc, err := a.prepare(req)
	if err != nil {
		metrics.PlansAssembled.WithLabelValues("invalid").Inc()
		utils.LogEventCtx(ctx, "planner", "rejected", err.Error())
		return models.TripPlan{}, err
	}
	utils.LogEventCtx(ctx, "planner", "assemble", fmt.Sprintf("origin=%s destination=%s days=%d people=%d style=%s type=%s",
		pc.origin.ID, pc.hub.ID, pc.days, pc.people, pc.style, pc.travelType))

	days := a.skeleton(pc)
	days, err = a.route(ctx, &pc, days)
	if err != nil {
		metrics.PlansAssembled.WithLabelValues("leg_error").Inc()
		utils.LogEventCtx(ctx, "planner", "route_failed", err.Error())
		return models.TripPlan{}, err
	}
	days = a.cost(pc, days)
	days = applyPolicies(pc, days)

	plan, err := a.finalize(pc, days)
	if err != nil {
		metrics.PlansAssembled.WithLabelValues("error").Inc()
		utils.LogEventCtx(ctx, "planner", "finalize_failed", err.Error())
		return models.TripPlan{}, err
	}
	metrics.PlansAssembled.WithLabelValues("ok").Inc()
	utils.LogEventCtx(ctx, "planner", "assembled", fmt.Sprintf("plan_id=%s tier=%s degraded=%t", plan.ID, plan.SafetyTier, plan.Degraded))
	return plan, nil
}

func (a ItineraryAssembler) prepare(req models.TripRequest) (planContext, error) {
	cat := a.Catalog
	pol := cat.Policy

	destID := catalog.NormalizeID(req.Destination)
	if destID == "" {
		return planContext{}, domain.ValidationError{Field: "destination", Msg: "is required"}
	}
	dest, ok := cat.Destination(destID)
	if !ok {
		return planContext{}, domain.ValidationError{
			Field:      "destination",
			Msg:        fmt.Sprintf("unsupported destination %q", req.Destination),
			Suggestion: destinationIDs(cat),
		}
	}
	hub, _ := cat.Place(dest.ID)

	originID := catalog.NormalizeID(req.Origin)
	if originID == "" {
		originID = defaultOrigin
	}
	if !cat.IsOrigin(originID) {
		return planContext{}, domain.ValidationError{
			Field:      "origin",
			Msg:        fmt.Sprintf("unsupported origin %q", req.Origin),
			Suggestion: cat.Origins,
		}
	}
	origin, _ := cat.Place(originID)

	if req.DurationDays < dest.MinDays {
		return planContext{}, domain.ValidationError{
			Field:      "duration_days",
			Msg:        fmt.Sprintf("%s needs at least %d days", hub.Name, dest.MinDays),
			Suggestion: dest.MinDays,
		}
	}
	if req.DurationDays > pol.MaxDurationDays {
		return planContext{}, domain.ValidationError{
			Field:      "duration_days",
			Msg:        fmt.Sprintf("must be at most %d days", pol.MaxDurationDays),
			Suggestion: pol.MaxDurationDays,
		}
	}
	if req.NumPeople < 1 || req.NumPeople > pol.MaxPeople {
		return planContext{}, domain.ValidationError{Field: "num_people", Msg: fmt.Sprintf("must be between 1 and %d", pol.MaxPeople)}
	}

	travelType, ok := parseTravelType(req.TravelType, req.NumPeople)
	if !ok {
		return planContext{}, domain.ValidationError{Field: "travel_type", Msg: "must be one of solo, couple, family, group"}
	}
	style, ok := domain.ParseStyle(req.Style)
	if !ok {
		return planContext{}, domain.ValidationError{Field: "style", Msg: "must be one of budget, comfort, adventure, luxury"}
	}
	gender := strings.ToLower(strings.TrimSpace(req.TravelerGender))
	switch gender {
	case "", "female", "male", "other":
	default:
		return planContext{}, domain.ValidationError{Field: "traveler_gender", Msg: "must be one of female, male, other"}
	}

	alloc, err := a.Budget.Allocate(req.BudgetPKR, req.NumPeople, req.DurationDays, style, dest.ID)
	if err != nil {
		return planContext{}, err
	}

	echo := req
	echo.Destination = dest.ID
	echo.Origin = origin.ID
	echo.TravelType = string(travelType)
	echo.Style = string(style)
	echo.TravelerGender = gender

	return planContext{
		req:        echo,
		cat:        cat,
		policy:     pol,
		pricing:    cat.Pricing,
		dest:       dest,
		origin:     origin,
		hub:        hub,
		style:      style,
		travelType: travelType,
		people:     req.NumPeople,
		days:       req.DurationDays,
		alloc:      alloc,
	}, nil
}

// parseTravelType defaults an empty value from the head count.
func parseTravelType(raw string, people int) (domain.TravelType, bool) {
	if strings.TrimSpace(raw) != "" {
		return domain.ParseTravelType(raw)
	}
	switch people {
	case 1:
		return domain.TravelSolo, true
	case 2:
		return domain.TravelCouple, true
	default:
		return domain.TravelGroup, true
	}
}

func destinationIDs(cat *catalog.Catalog) []string {
	var ids []string
	for _, p := range cat.SupportedDestinations() {
		ids = append(ids, p.ID)
	}
	return ids
}

// skeleton lays out the days: arrival at the hub, the destination's
// templates in rotation, then the return.
func (a ItineraryAssembler) skeleton(pc planContext) []models.DayPlan {
	n := pc.days
	out := make([]models.DayPlan, 0, n)

	arrival := []string{fmt.Sprintf("Check in at %s", pc.cat.HotelName(pc.hub, pc.style))}
	if len(pc.dest.Highlights) > 0 {
		arrival = append(arrival, "Evening at "+pc.dest.Highlights[0])
	}
	out = append(out, models.DayPlan{
		Day:        1,
		Kind:       domain.DayArrival,
		Title:      fmt.Sprintf("Travel from %s to %s", pc.origin.Name, pc.hub.Name),
		Leg:        models.Leg{Origin: pc.origin, Destination: pc.hub},
		Region:     pc.hub.Region,
		Activities: arrival,
		Stage:      domain.StageSkeleton,
	})

	for day := 2; day < n; day++ {
		t := pc.dest.Days[(day-2)%len(pc.dest.Days)]
		place, _ := pc.cat.Place(t.Place)
		out = append(out, models.DayPlan{
			Day:        day,
			Kind:       t.Kind,
			Title:      t.Title,
			Leg:        models.Leg{Origin: pc.hub, Destination: place},
			Region:     place.Region,
			Activities: append([]string(nil), t.Activities...),
			Stage:      domain.StageSkeleton,
		})
	}

	out = append(out, models.DayPlan{
		Day:        n,
		Kind:       domain.DayDeparture,
		Title:      fmt.Sprintf("Return from %s to %s", pc.hub.Name, pc.origin.Name),
		Leg:        models.Leg{Origin: pc.hub, Destination: pc.origin},
		Region:     pc.hub.Region,
		Activities: []string{"Check out", fmt.Sprintf("Drive back to %s", pc.origin.Name)},
		Stage:      domain.StageSkeleton,
	})
	return out
}

// dayAltitude is the altitude of the day's trip-side endpoint.
func dayAltitude(d models.DayPlan) int {
	if d.Kind == domain.DayDeparture {
		return d.Leg.Origin.AltitudeM
	}
	return d.Leg.Destination.AltitudeM
}

type legKey struct {
	from string
	to   string
}

// route resolves every distinct leg and fetches hazards once per region,
// both fanned out. Any unroutable leg aborts the plan.
func (a ItineraryAssembler) route(ctx context.Context, pc *planContext, days []models.DayPlan) ([]models.DayPlan, error) {
	firstDay := map[legKey]int{}
	var keys []legKey
	for _, d := range days {
		k := legKey{d.Leg.Origin.ID, d.Leg.Destination.ID}
		if _, ok := firstDay[k]; !ok {
			firstDay[k] = d.Day
			keys = append(keys, k)
		}
	}

	facts := make([]models.RouteFact, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanOutLimit)
	for i, k := range keys {
		i, k := i, k
		g.Go(func() error {
			f, err := a.Routes.Resolve(gctx, k.from, k.to)
			if err != nil {
				return domain.LegError{Day: firstDay[k], Origin: k.from, Destination: k.to, Err: err}
			}
			facts[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	byKey := make(map[legKey]models.RouteFact, len(keys))
	for i, k := range keys {
		byKey[k] = facts[i]
	}

	regions := []string{pc.hub.Region}
	for _, d := range days {
		regions = utils.AppendUnique(regions, d.Region)
	}
	results := make([]regionHazards, len(regions))
	hg, hctx := errgroup.WithContext(ctx)
	hg.SetLimit(fanOutLimit)
	for i, r := range regions {
		i, r := i, r
		hg.Go(func() error {
			hs, err := a.Scorer.FetchHazards(hctx, r)
			results[i] = regionHazards{signals: hs, err: err}
			return nil
		})
	}
	_ = hg.Wait()
	pc.hazards = make(map[string]regionHazards, len(regions))
	for i, r := range regions {
		pc.hazards[r] = results[i]
	}

	out := make([]models.DayPlan, len(days))
	for i, d := range days {
		f := byKey[legKey{d.Leg.Origin.ID, d.Leg.Destination.ID}]
		d.Route = &f
		d.Safety = a.assess(*pc, d.Region, f.BaseSafetyScore, dayAltitude(d))
		d.AltitudeWarning = d.Safety.AltitudeWarning
		d.Stage = domain.StageRouted
		out[i] = d
	}
	pc.hubSafety = a.assess(*pc, pc.hub.Region, pc.cat.RegionSafety(pc.hub.ID, pc.hub.ID), pc.hub.AltitudeM)
	return out, nil
}

func (a ItineraryAssembler) assess(pc planContext, region string, base, altitudeM int) models.SafetyAssessment {
	hz := pc.hazards[region]
	s := a.Scorer.Assess(region, base, altitudeM, hz.signals, hz.err)
	s.Advice = append(s.Advice, ProfileAdvice(pc.travelType, pc.req.TravelerGender)...)
	return s
}

func (a ItineraryAssembler) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return utils.NowUTC()
}

func (a ItineraryAssembler) newID() string {
	if a.NewID != nil {
		return a.NewID()
	}
	return uuid.NewString()
}

// finalize recosts the final day kinds, attaches safety and cost annotations
// and checks the aggregate invariants.
func (a ItineraryAssembler) finalize(pc planContext, days []models.DayPlan) (models.TripPlan, error) {
	days = cloneDays(days)
	distributeEnvelopes(pc, days)

	plan := models.TripPlan{
		ID:               a.newID(),
		Request:          pc.req,
		Origin:           pc.origin,
		Destination:      pc.hub,
		Allocation:       pc.alloc,
		SafetyTier:       domain.TierRecommended,
		SafetyNotes:      []string{},
		AltitudeWarnings: []string{},
		CreatedAt:        a.now(),
	}

	capAt := pc.policy.AltitudeCapM
	for i := range days {
		d := &days[i]
		d.SafetyNotes = utils.AppendUnique(d.SafetyNotes, d.Safety.Warnings...)
		if d.Safety.Uncertain {
			d.SafetyNotes = utils.AppendUnique(d.SafetyNotes, d.Safety.UncertaintyNote)
			plan.UncertaintyNotes = utils.AppendUnique(plan.UncertaintyNotes, d.Safety.UncertaintyNote)
		}
		if d.AltitudeWarning != "" {
			plan.AltitudeWarnings = append(plan.AltitudeWarnings, fmt.Sprintf("Day %d (%s): %s", d.Day, d.Leg.Destination.Name, d.AltitudeWarning))
		}
		if capAt > 0 && dayAltitude(*d) > capAt && !d.IsRestDay {
			d.Tips = utils.AppendUnique(d.Tips, "Start early and turn back if anyone shows altitude symptoms")
		}
		for _, w := range d.Safety.Warnings {
			plan.SafetyNotes = utils.AppendUnique(plan.SafetyNotes, fmt.Sprintf("Day %d: %s", d.Day, w))
		}
		plan.SafetyTier = domain.WorseTier(plan.SafetyTier, d.Safety.Tier)

		if d.Route != nil {
			switch d.Route.Source {
			case domain.SourceLive:
				plan.DataFreshness.Live++
			case domain.SourcePersisted:
				plan.DataFreshness.Persisted++
			case domain.SourceFallback:
				plan.DataFreshness.Fallback++
			}
			if d.Route.Stale {
				plan.DataFreshness.Stale++
			}
		}
		d.Stage = domain.StageFinalized
	}
	plan.SafetyNotes = append(tripSafetyNotes(pc, plan.SafetyTier), plan.SafetyNotes...)

	if n := plan.DataFreshness.Fallback; n > 0 {
		plan.UncertaintyNotes = append(plan.UncertaintyNotes,
			fmt.Sprintf("%d leg(s) use the curated fallback route table; distances and times are estimates", n))
	}
	if n := plan.DataFreshness.Stale; n > 0 {
		plan.UncertaintyNotes = append(plan.UncertaintyNotes,
			fmt.Sprintf("%d leg(s) use stored route data older than the freshness window", n))
	}
	plan.Degraded = len(plan.UncertaintyNotes) > 0

	for _, d := range days {
		plan.Costs.Transport += d.TransportCost
		plan.Costs.Accommodation += d.HotelCost
		plan.Costs.Food += d.MealCost
		plan.Costs.Activities += d.ActivityCost
	}
	plan.Costs.Total = pc.alloc.Total
	plan.Costs.Buffer = plan.Costs.Total - plan.Costs.Transport - plan.Costs.Accommodation - plan.Costs.Food - plan.Costs.Activities
	plan.Costs.PerPerson = plan.Costs.Total / int64(pc.people)

	plan.MarketTransportEstimate = marketTransportEstimate(pc, days)
	envelope := pc.alloc.Amount(domain.CategoryTransport)
	if plan.MarketTransportEstimate > envelope {
		plan.BudgetStatus = "over_budget"
		plan.CostNotes = append(plan.CostNotes, fmt.Sprintf(
			"Market transport estimate %s exceeds the transport envelope %s; consider shared transport or a longer booking discount",
			utils.FormatPKR(plan.MarketTransportEstimate), utils.FormatPKR(envelope)))
	} else {
		plan.BudgetStatus = "under_budget"
	}

	plan.PackingChecklist = pc.cat.PackingChecklist(pc.hub.ID, pc.travelType, pc.days)
	plan.Days = days

	if err := verifyPlan(pc, plan); err != nil {
		return models.TripPlan{}, domain.InternalError{Msg: "plan failed consistency checks", Err: err}
	}
	return plan, nil
}

func tripSafetyNotes(pc planContext, tier domain.RiskTier) []string {
	var notes []string
	switch tier {
	case domain.TierAvoid:
		notes = append(notes, "Overall safety: avoid. At least one day of this trip is rated avoid under current conditions")
	case domain.TierCaution:
		notes = append(notes, "Overall safety: caution. Some days need extra care under current conditions")
	default:
		notes = append(notes, "Overall safety: recommended")
	}
	notes = append(notes, TierAdvice(tier)...)
	return append(notes, ProfileAdvice(pc.travelType, pc.req.TravelerGender)...)
}

// verifyPlan checks the invariants every returned plan must hold.
func verifyPlan(pc planContext, plan models.TripPlan) error {
	var problems []string
	if len(plan.Days) != pc.days {
		problems = append(problems, fmt.Sprintf("day count %d, requested %d", len(plan.Days), pc.days))
	}
	for i, d := range plan.Days {
		if d.Day != i+1 {
			problems = append(problems, fmt.Sprintf("day %d out of order", d.Day))
		}
		if d.Stage != domain.StageFinalized {
			problems = append(problems, fmt.Sprintf("day %d at stage %s", d.Day, d.Stage))
		}
		if pc.protectedGroup() && d.DepartureTime != "" {
			if m, err := catalog.ParseClock(d.DepartureTime); err == nil && pc.policy.IsNight(m) {
				problems = append(problems, fmt.Sprintf("day %d departs at night", d.Day))
			}
		}
	}

	sums := map[domain.Category]int64{
		domain.CategoryTransport:     plan.Costs.Transport,
		domain.CategoryAccommodation: plan.Costs.Accommodation,
		domain.CategoryFood:          plan.Costs.Food,
		domain.CategoryActivities:    plan.Costs.Activities,
	}
	cats := make([]string, 0, len(sums))
	for c := range sums {
		cats = append(cats, string(c))
	}
	sort.Strings(cats)
	for _, c := range cats {
		cat := domain.Category(c)
		if sums[cat] > pc.alloc.Amount(cat) {
			problems = append(problems, fmt.Sprintf("%s spend %d over envelope %d", cat, sums[cat], pc.alloc.Amount(cat)))
		}
	}
	if plan.Costs.Total != pc.alloc.Total {
		problems = append(problems, "total differs from budget")
	}
	if plan.Costs.Buffer*10 < plan.Costs.Total {
		problems = append(problems, "buffer below 10% of total")
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
