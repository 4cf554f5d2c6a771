package services

import (
	"fmt"

	"tripplanner/internal/catalog"
	"tripplanner/internal/domain"
	"tripplanner/internal/domain/models"
	"tripplanner/internal/utils"
)

// dayRule is a pure transformation of the day list.
type dayRule func(pc planContext, days []models.DayPlan) []models.DayPlan

// dayRules run in order; later rules see the earlier rules' output.
var dayRules = []dayRule{
	groupVehicleRule,
	nightDepartureRule,
	acclimatizationRule,
	familyRestRule,
}

func applyPolicies(pc planContext, days []models.DayPlan) []models.DayPlan {
	out := cloneDays(days)
	for _, rule := range dayRules {
		out = rule(pc, out)
	}
	for i := range out {
		out[i].Stage = domain.StagePolicyAdjusted
	}
	return out
}

// groupVehicleRule sizes private vehicles to the head count for families and
// large groups.
func groupVehicleRule(pc planContext, days []models.DayPlan) []models.DayPlan {
	if !pc.protectedGroup() {
		return days
	}
	out := cloneDays(days)
	for i := range out {
		if out[i].Kind == domain.DayRest {
			continue
		}
		out[i].TransportMode = pc.transportFor(out[i].Kind, true).Label
	}
	return out
}

// nightDepartureRule keeps families and large groups off the road at night.
// Night departures move to the early slot and gain a daytime stop; travel
// days that would still arrive after dark get a halt recommendation.
func nightDepartureRule(pc planContext, days []models.DayPlan) []models.DayPlan {
	if !pc.protectedGroup() {
		return days
	}
	out := cloneDays(days)
	nightStart := pc.policy.NightStartHour * 60
	for i := range out {
		d := &out[i]
		if d.DepartureTime == "" {
			continue
		}
		dep, err := catalog.ParseClock(d.DepartureTime)
		if err != nil {
			continue
		}
		if pc.policy.IsNight(dep) {
			d.DepartureTime = pc.policy.EarlyDeparture
			dep, _ = catalog.ParseClock(d.DepartureTime)
			d.TransportMode = pc.transportFor(d.Kind, true).Label
			d.Tips = removeString(d.Tips, overnightTip)
			d.Activities = utils.AppendUnique(d.Activities, "Extended daytime stop along the way")
			d.Tips = utils.AppendUnique(d.Tips, fmt.Sprintf("Departure moved to %s: no night driving for this group", d.DepartureTime))
		}
		if !d.Kind.IsTravel() || d.Route == nil {
			continue
		}
		arrival := dep + int(d.Route.TimeHours*60+0.5)
		if arrival <= nightStart {
			continue
		}
		d.SafetyNotes = utils.AppendUnique(d.SafetyNotes, haltNote(pc))
	}
	return out
}

func haltNote(pc planContext) string {
	if town, ok := pc.cat.Place(pc.dest.HaltTown); ok && pc.dest.HaltTown != "" {
		return fmt.Sprintf("Arrival would be after dark: break the journey overnight at %s", town.Name)
	}
	return "Arrival would be after dark: plan an overnight halt on the way"
}

// acclimatizationRule converts a first-half day into a rest day at the hub
// when the destination is high and no rest day exists yet.
func acclimatizationRule(pc planContext, days []models.DayPlan) []models.DayPlan {
	if pc.hub.AltitudeM <= pc.policy.AcclimatizationAltitudeM {
		return days
	}
	half := firstHalf(len(days))
	for _, d := range days[:half] {
		if d.IsRestDay {
			return days
		}
	}
	idx := pickRestDay(days, 0, half)
	if idx < 0 {
		idx = pickRestDay(days, 0, len(days))
	}
	if idx < 0 {
		return days
	}
	out := cloneDays(days)
	out[idx] = pc.restDay(out[idx], fmt.Sprintf("Acclimatization at %s (%d m) before going higher", pc.hub.Name, pc.hub.AltitudeM))
	return out
}

// familyRestRule gives families a slower day on longer trips. It never reuses
// an existing rest day; when the first half already has one it looks in the
// second half.
func familyRestRule(pc planContext, days []models.DayPlan) []models.DayPlan {
	if pc.travelType != domain.TravelFamily || len(days) < pc.policy.FamilyRestMinDays {
		return days
	}
	half := firstHalf(len(days))
	idx := -1
	hasRest := false
	for _, d := range days[:half] {
		hasRest = hasRest || d.IsRestDay
	}
	if !hasRest {
		idx = pickRestDay(days, 0, half)
	}
	if idx < 0 {
		idx = pickRestDay(days, half, len(days))
	}
	if idx < 0 {
		idx = pickRestDay(days, 0, len(days))
	}
	if idx < 0 {
		return days
	}
	out := cloneDays(days)
	out[idx] = pc.restDay(out[idx], fmt.Sprintf("Family rest day: a slower day at %s between excursions", pc.hub.Name))
	return out
}

func removeString(list []string, v string) []string {
	out := list[:0:0]
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}

func firstHalf(n int) int {
	return (n + 1) / 2
}

// pickRestDay returns the index in [from, to) of the least activity-dense day
// that is neither a travel day nor already a rest day; earliest on ties.
func pickRestDay(days []models.DayPlan, from, to int) int {
	best := -1
	for i := from; i < to && i < len(days); i++ {
		d := days[i]
		if d.Kind.IsTravel() || d.IsRestDay {
			continue
		}
		if best < 0 || len(d.Activities) < len(days[best].Activities) {
			best = i
		}
	}
	return best
}

// restDay turns a day into a stay at the hub.
func (pc planContext) restDay(d models.DayPlan, reason string) models.DayPlan {
	d.Kind = domain.DayRest
	d.IsRestDay = true
	d.RestReason = reason
	d.Title = fmt.Sprintf("Rest day in %s", pc.hub.Name)
	d.Leg = models.Leg{Origin: pc.hub, Destination: pc.hub}
	d.Region = pc.hub.Region
	d.Route = nil
	d.TransportMode = ""
	d.DepartureTime = ""
	d.Activities = []string{fmt.Sprintf("Leisurely walk around %s", pc.hub.Name), "Rest and stay hydrated"}
	d.Safety = pc.hubSafety
	d.AltitudeWarning = pc.hubSafety.AltitudeWarning
	d.SafetyNotes = nil
	d.Tips = nil
	return d
}
