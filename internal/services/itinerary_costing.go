package services

import (
	"fmt"
	"math"

	"tripplanner/internal/domain"
	"tripplanner/internal/domain/models"
	"tripplanner/internal/utils"
)

const overnightTip = "Overnight coach: sleep on board and keep valuables close"

// transportChoice is the means of transport for one day.
type transportChoice struct {
	Vehicle string
	Shared  string
	Label   string
	Count   int
}

// transportFor picks the mode for a day kind. grouped forces vehicle sizing
// by head count.
func (pc planContext) transportFor(kind domain.DayKind, grouped bool) transportChoice {
	if kind == domain.DayRest {
		return transportChoice{}
	}
	if grouped {
		return pc.sizedVehicle()
	}
	switch pc.style {
	case domain.StyleLuxury:
		return pc.vehicle("suv")
	case domain.StyleBudget:
		if kind.IsTravel() {
			return pc.shared("coach")
		}
		return pc.shared("jeep")
	default:
		return pc.sizedVehicle()
	}
}

// sizedVehicle is a car up to its seats, a Hiace up to its seats, a Coaster
// beyond.
func (pc planContext) sizedVehicle() transportChoice {
	switch {
	case pc.people <= pc.pricing.Vehicles["car"].Seats:
		return pc.vehicle("car")
	case pc.people <= pc.pricing.Vehicles["hiace"].Seats:
		return pc.vehicle("hiace")
	default:
		return pc.vehicle("coaster")
	}
}

func (pc planContext) vehicle(key string) transportChoice {
	v := pc.pricing.Vehicles[key]
	seats := max(v.Seats, 1)
	count := (pc.people + seats - 1) / seats
	label := v.Label
	if count > 1 {
		label = fmt.Sprintf("%d x %s", count, v.Label)
	}
	return transportChoice{Vehicle: key, Label: label, Count: count}
}

func (pc planContext) shared(key string) transportChoice {
	label := pc.pricing.Shared[key]
	if label == "" {
		label = "Shared transport"
	}
	return transportChoice{Shared: key, Label: label, Count: 1}
}

// cost sets modes, departure times and hotels, then spreads the envelopes.
func (a ItineraryAssembler) cost(pc planContext, days []models.DayPlan) []models.DayPlan {
	out := cloneDays(days)
	daylight := pc.policy.DaylightHours()
	for i := range out {
		d := &out[i]
		choice := pc.transportFor(d.Kind, false)
		d.TransportMode = choice.Label
		if d.Kind != domain.DayRest {
			d.DepartureTime = pc.policy.DefaultDeparture
		}
		if pc.style == domain.StyleBudget && d.Kind.IsTravel() && d.Route != nil && d.Route.TimeHours > daylight {
			d.DepartureTime = pc.policy.OvernightDeparture
			d.TransportMode = "Overnight " + choice.Label
			d.Tips = utils.AppendUnique(d.Tips, overnightTip)
		}
		if d.Day < pc.days {
			d.Hotel = pc.cat.HotelName(pc.hub, pc.style)
		}
		d.Stage = domain.StageCosted
	}
	distributeEnvelopes(pc, out)
	return out
}

var (
	transportKindWeight = map[domain.DayKind]int64{
		domain.DayArrival:   8,
		domain.DayDeparture: 8,
		domain.DayExcursion: 3,
		domain.DayLocal:     1,
	}
	activityKindWeight = map[domain.DayKind]int64{
		domain.DayArrival:   1,
		domain.DayDeparture: 1,
		domain.DayExcursion: 6,
		domain.DayLocal:     4,
		domain.DayRest:      1,
	}
)

// dayKM is the distance driven on a day; excursions are round trips.
func dayKM(d models.DayPlan) float64 {
	if d.Route == nil {
		return 0
	}
	if d.Kind == domain.DayExcursion || d.Kind == domain.DayLocal {
		return 2 * d.Route.DistanceKM
	}
	return d.Route.DistanceKM
}

func transportWeight(d models.DayPlan) int64 {
	if d.Route == nil {
		return 0
	}
	return transportKindWeight[d.Kind] * (100 + int64(math.Round(dayKM(d))))
}

// distributeEnvelopes splits each envelope over the days by floor division.
// Whatever the floors leave over stays with the buffer.
func distributeEnvelopes(pc planContext, days []models.DayPlan) {
	n := int64(len(days))
	if n == 0 {
		return
	}
	transport := pc.alloc.Amount(domain.CategoryTransport)
	accommodation := pc.alloc.Amount(domain.CategoryAccommodation)
	food := pc.alloc.Amount(domain.CategoryFood)
	activities := pc.alloc.Amount(domain.CategoryActivities)

	var tSum, aSum int64
	for _, d := range days {
		tSum += transportWeight(d)
		aSum += activityKindWeight[d.Kind]
	}
	nights := n - 1

	for i := range days {
		d := &days[i]
		d.TransportCost = share(transport, transportWeight(*d), tSum)
		d.HotelCost = 0
		if int64(d.Day) < n && nights > 0 {
			d.HotelCost = accommodation / nights
		}
		d.MealCost = food / n
		d.ActivityCost = share(activities, activityKindWeight[d.Kind], aSum)
	}
}

func share(total, weight, sum int64) int64 {
	if sum <= 0 || weight <= 0 {
		return 0
	}
	return total * weight / sum
}

// marketTransportEstimate prices the days at market rates: vehicle day rates
// or per-seat shared fares.
func marketTransportEstimate(pc planContext, days []models.DayPlan) int64 {
	var total int64
	for _, d := range days {
		if d.Route == nil {
			continue
		}
		choice := pc.transportFor(d.Kind, pc.protectedGroup())
		switch {
		case choice.Vehicle != "":
			total += pc.pricing.Vehicles[choice.Vehicle].DayRate * int64(choice.Count)
		case choice.Shared != "":
			total += pc.pricing.Fare(dayKM(d)) * int64(pc.people)
		}
	}
	return total
}

func cloneDays(days []models.DayPlan) []models.DayPlan {
	out := make([]models.DayPlan, len(days))
	for i, d := range days {
		d.Activities = append([]string(nil), d.Activities...)
		d.SafetyNotes = append([]string(nil), d.SafetyNotes...)
		d.Tips = append([]string(nil), d.Tips...)
		if d.Route != nil {
			r := *d.Route
			d.Route = &r
		}
		out[i] = d
	}
	return out
}

