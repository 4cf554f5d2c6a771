// Package catalog holds the curated reference data the planner works from:
// places, regions, destination day templates, the static fallback route table,
// budget guardrails and policy thresholds.
package catalog

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"tripplanner/internal/domain"
	"tripplanner/internal/domain/models"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embedded []byte

type Region struct {
	ID            string   `yaml:"id"`
	Name          string   `yaml:"name"`
	SpeedKMH      float64  `yaml:"speed_kmh"`
	DefaultSafety int      `yaml:"default_safety"`
	WeatherCities []string `yaml:"weather_cities"`
}

// DayTemplate describes one middle day of a destination skeleton.
type DayTemplate struct {
	Place      string         `yaml:"place"`
	Kind       domain.DayKind `yaml:"kind"`
	Title      string         `yaml:"title"`
	Activities []string       `yaml:"activities"`
}

type Destination struct {
	ID            string        `yaml:"id"`
	MinDays       int           `yaml:"min_days"`
	CostFactorPct int           `yaml:"cost_factor_pct"`
	HaltTown      string        `yaml:"halt_town"`
	Highlights    []string      `yaml:"highlights"`
	Days          []DayTemplate `yaml:"days"`
}

// FallbackLeg is one curated row of the static route table.
type FallbackLeg struct {
	From   string  `yaml:"from"`
	To     string  `yaml:"to"`
	KM     float64 `yaml:"km"`
	Hours  float64 `yaml:"hours"`
	Safety int     `yaml:"safety"`
}

// Guardrail is an inclusive range in basis points of the trip total.
type Guardrail struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

type Budget struct {
	Guardrails      map[domain.Category]Guardrail               `yaml:"guardrails"`
	StylePositions  map[domain.Style]map[domain.Category]string `yaml:"style_positions"`
	PerPersonPerDay map[domain.Style]int64                      `yaml:"per_person_per_day"`
}

type Vehicle struct {
	Label   string `yaml:"label"`
	DayRate int64  `yaml:"day_rate"`
	Seats   int    `yaml:"seats"`
}

// FareRate is a linear fare: Base plus PerKM for every kilometre.
type FareRate struct {
	Base  float64 `yaml:"base"`
	PerKM float64 `yaml:"per_km"`
}

func (r FareRate) At(km float64) int64 {
	return int64(math.Round(r.Base + r.PerKM*km))
}

type TransportMode struct {
	Mode          string   `yaml:"mode"`
	MinKM         float64  `yaml:"min_km"`
	MaxKM         float64  `yaml:"max_km"`
	SpeedKMH      float64  `yaml:"speed_kmh"`
	Fare          FareRate `yaml:"fare"`
	Low           FareRate `yaml:"low"`
	High          FareRate `yaml:"high"`
	Availability  string   `yaml:"availability"`
	Notes         string   `yaml:"notes"`
	CautionOverKM float64  `yaml:"caution_over_km"`
}

// Offered reports whether the mode serves a leg of this length.
func (m TransportMode) Offered(km float64) bool {
	if m.MinKM > 0 && km <= m.MinKM {
		return false
	}
	if m.MaxKM > 0 && km >= m.MaxKM {
		return false
	}
	return true
}

type Pricing struct {
	BaseFare       float64                 `yaml:"base_fare"`
	FarePerKM      float64                 `yaml:"fare_per_km"`
	Vehicles       map[string]Vehicle      `yaml:"vehicles"`
	Shared         map[string]string       `yaml:"shared"`
	HotelClasses   map[domain.Style]string `yaml:"hotel_classes"`
	TransportModes []TransportMode         `yaml:"transport_modes"`
}

// Fare is the per-seat shared transport estimate for a distance.
func (p Pricing) Fare(km float64) int64 {
	return int64(math.Round(p.BaseFare + p.FarePerKM*km))
}

// TransportOptions estimates every mode that serves a leg, in catalog order.
func (p Pricing) TransportOptions(km float64) []models.TransportOption {
	out := []models.TransportOption{}
	for _, m := range p.TransportModes {
		if !m.Offered(km) {
			continue
		}
		tier := domain.TierRecommended
		if m.CautionOverKM > 0 && km > m.CautionOverKM {
			tier = domain.TierCaution
		}
		out = append(out, models.TransportOption{
			Mode:         m.Mode,
			FarePKR:      m.Fare.At(km),
			FareMinPKR:   m.Low.At(km),
			FareMaxPKR:   m.High.At(km),
			TimeHours:    math.Round(km/m.SpeedKMH*10) / 10,
			Availability: m.Availability,
			SafetyNotes:  m.Notes,
			RiskTier:     tier,
		})
	}
	return out
}

type Emergency struct {
	General map[string]string            `yaml:"general"`
	Regions map[string]map[string]string `yaml:"regions"`
	Tips    []string                     `yaml:"tips"`
}

type Policy struct {
	NightStartHour           int    `yaml:"night_start_hour"`
	NightEndHour             int    `yaml:"night_end_hour"`
	DefaultDeparture         string `yaml:"default_departure"`
	EarlyDeparture           string `yaml:"early_departure"`
	OvernightDeparture       string `yaml:"overnight_departure"`
	AcclimatizationAltitudeM int    `yaml:"acclimatization_altitude_m"`
	AltitudeWarningM         int    `yaml:"altitude_warning_m"`
	AltitudeCapM             int    `yaml:"altitude_cap_m"`
	FamilyRestMinDays        int    `yaml:"family_rest_min_days"`
	LargeGroupSize           int    `yaml:"large_group_size"`
	MaxDurationDays          int    `yaml:"max_duration_days"`
	MaxPeople                int    `yaml:"max_people"`
}

// IsNight reports whether a clock time (minutes since midnight) falls in the
// night window. The window wraps midnight.
func (p Policy) IsNight(minutes int) bool {
	start := p.NightStartHour * 60
	end := p.NightEndHour * 60
	if start > end {
		return minutes >= start || minutes < end
	}
	return minutes >= start && minutes < end
}

// DaylightHours is the time from the default departure to nightfall.
func (p Policy) DaylightHours() float64 {
	dep, err := ParseClock(p.DefaultDeparture)
	if err != nil {
		return float64(p.NightStartHour)
	}
	return float64(p.NightStartHour*60-dep) / 60
}

type PackingRule struct {
	Destinations []string             `yaml:"destinations"`
	TravelTypes  []string             `yaml:"travel_types"`
	MinDays      int                  `yaml:"min_days"`
	Items        []models.PackingItem `yaml:"items"`
}

type Catalog struct {
	Regions                []Region       `yaml:"regions"`
	Places                 []models.Place `yaml:"places"`
	Origins                []string       `yaml:"origins"`
	LiveRoutingUnsupported []string       `yaml:"live_routing_unsupported"`
	Destinations           []Destination  `yaml:"destinations"`
	Fallback               []FallbackLeg  `yaml:"fallback"`
	Budget                 Budget         `yaml:"budget"`
	Pricing                Pricing        `yaml:"pricing"`
	Emergency              Emergency      `yaml:"emergency"`
	Policy                 Policy         `yaml:"policy"`
	Packing                []PackingRule  `yaml:"packing"`

	places       map[string]models.Place
	regions      map[string]Region
	destinations map[string]Destination
	origins      map[string]bool
	fallback     map[[2]string]FallbackLeg
	unsupported  map[string]bool
}

// Default parses the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(embedded)
}

// Load reads an override file when path is set, otherwise the embedded
// catalog. The result is validated.
func Load(path string) (*Catalog, error) {
	raw := embedded
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading catalog %s: %w", path, err)
		}
		raw = b
	}
	c, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// MustDefault is for tests and tools that rely on the embedded catalog.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

func Parse(raw []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	c.index()
	return &c, nil
}

func (c *Catalog) index() {
	c.places = make(map[string]models.Place, len(c.Places))
	for _, p := range c.Places {
		c.places[p.ID] = p
	}
	c.regions = make(map[string]Region, len(c.Regions))
	for _, r := range c.Regions {
		c.regions[r.ID] = r
	}
	c.destinations = make(map[string]Destination, len(c.Destinations))
	for _, d := range c.Destinations {
		c.destinations[d.ID] = d
	}
	c.origins = make(map[string]bool, len(c.Origins))
	for _, o := range c.Origins {
		c.origins[o] = true
	}
	c.fallback = make(map[[2]string]FallbackLeg, len(c.Fallback))
	for _, l := range c.Fallback {
		c.fallback[[2]string{l.From, l.To}] = l
	}
	c.unsupported = make(map[string]bool, len(c.LiveRoutingUnsupported))
	for _, id := range c.LiveRoutingUnsupported {
		c.unsupported[id] = true
	}
}

// NormalizeID turns display input ("Fairy Meadows") into a catalog id.
func NormalizeID(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '_' || r == '-'
	}), "-")
}

func (c *Catalog) Place(id string) (models.Place, bool) {
	p, ok := c.places[NormalizeID(id)]
	return p, ok
}

func (c *Catalog) Region(id string) (Region, bool) {
	r, ok := c.regions[id]
	return r, ok
}

func (c *Catalog) Destination(id string) (Destination, bool) {
	d, ok := c.destinations[NormalizeID(id)]
	return d, ok
}

func (c *Catalog) IsOrigin(id string) bool {
	return c.origins[NormalizeID(id)]
}

// LiveRoutable reports whether the live provider has road data for a place.
func (c *Catalog) LiveRoutable(id string) bool {
	return !c.unsupported[id]
}

// FallbackFact looks up the curated table, ordered pair first then reversed.
// The returned fact always names the requested direction.
func (c *Catalog) FallbackFact(origin, destination string) (models.RouteFact, bool) {
	leg, ok := c.fallback[[2]string{origin, destination}]
	if !ok {
		leg, ok = c.fallback[[2]string{destination, origin}]
	}
	if !ok {
		return models.RouteFact{}, false
	}
	hours := leg.Hours
	if hours <= 0 {
		hours = c.estimateHours(leg.KM, origin, destination)
	}
	safety := leg.Safety
	if safety <= 0 {
		safety = c.RegionSafety(origin, destination)
	}
	return models.RouteFact{
		Origin:          origin,
		Destination:     destination,
		DistanceKM:      leg.KM,
		TimeHours:       hours,
		FarePKR:         c.Pricing.Fare(leg.KM),
		BaseSafetyScore: safety,
		Source:          domain.SourceFallback,
	}, true
}

// CuratedSafety is the base safety score for a pair: the table value when the
// pair is curated, the region default otherwise.
func (c *Catalog) CuratedSafety(origin, destination string) int {
	if leg, ok := c.fallback[[2]string{origin, destination}]; ok && leg.Safety > 0 {
		return leg.Safety
	}
	if leg, ok := c.fallback[[2]string{destination, origin}]; ok && leg.Safety > 0 {
		return leg.Safety
	}
	return c.RegionSafety(origin, destination)
}

// RegionSafety returns the lower default safety of the two endpoints' regions.
func (c *Catalog) RegionSafety(origin, destination string) int {
	score := 0
	for _, id := range []string{origin, destination} {
		p, ok := c.places[id]
		if !ok {
			continue
		}
		r, ok := c.regions[p.Region]
		if !ok {
			continue
		}
		if score == 0 || r.DefaultSafety < score {
			score = r.DefaultSafety
		}
	}
	if score == 0 {
		return 75
	}
	return score
}

func (c *Catalog) estimateHours(km float64, origin, destination string) float64 {
	speed := 0.0
	for _, id := range []string{destination, origin} {
		p, ok := c.places[id]
		if !ok {
			continue
		}
		if r, ok := c.regions[p.Region]; ok && r.SpeedKMH > 0 {
			if speed == 0 || r.SpeedKMH < speed {
				speed = r.SpeedKMH
			}
		}
	}
	if speed == 0 {
		speed = 60
	}
	return math.Round(km/speed*10) / 10
}

// SupportedDestinations returns destination places sorted by id.
func (c *Catalog) SupportedDestinations() []models.Place {
	out := make([]models.Place, 0, len(c.Destinations))
	for _, d := range c.Destinations {
		if p, ok := c.places[d.ID]; ok {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// HotelName is the display name of the stay at a hub for a style.
func (c *Catalog) HotelName(hub models.Place, style domain.Style) string {
	class := c.Pricing.HotelClasses[style]
	if class == "" {
		class = "hotel"
	}
	return hub.Name + " " + class
}

// PackingChecklist applies every matching rule in order, skipping duplicates.
func (c *Catalog) PackingChecklist(destination string, travelType domain.TravelType, days int) []models.PackingItem {
	dest := NormalizeID(destination)
	seen := map[string]bool{}
	out := []models.PackingItem{}
	for _, rule := range c.Packing {
		if len(rule.Destinations) > 0 && !contains(rule.Destinations, dest) {
			continue
		}
		if len(rule.TravelTypes) > 0 && !contains(rule.TravelTypes, string(travelType)) {
			continue
		}
		if rule.MinDays > 0 && days < rule.MinDays {
			continue
		}
		for _, it := range rule.Items {
			if seen[it.Item] {
				continue
			}
			seen[it.Item] = true
			out = append(out, it)
		}
	}
	return out
}

// EmergencyInfo returns the contacts for one region, or for every region when
// region is empty. Regions without local contacts still get the general list.
func (c *Catalog) EmergencyInfo(region string) (models.EmergencyInfo, bool) {
	out := models.EmergencyInfo{
		General: c.Emergency.General,
		Tips:    append([]string(nil), c.Emergency.Tips...),
	}
	if region == "" {
		out.AllRegions = make(map[string]map[string]string, len(c.Emergency.Regions))
		for id, contacts := range c.Emergency.Regions {
			out.AllRegions[id] = contacts
		}
		return out, true
	}
	if _, ok := c.regions[region]; !ok {
		return models.EmergencyInfo{}, false
	}
	out.Region = region
	out.Contacts = c.Emergency.Regions[region]
	if out.Contacts == nil {
		out.Contacts = map[string]string{}
	}
	return out, true
}

// WeatherCities lists every configured city with the region it reports for.
func (c *Catalog) WeatherCities() map[string][]string {
	out := make(map[string][]string, len(c.Regions))
	for _, r := range c.Regions {
		out[r.ID] = append([]string(nil), r.WeatherCities...)
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// ParseClock parses "HH:MM" into minutes since midnight.
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid clock %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid clock %q", s)
	}
	return h*60 + m, nil
}

// FormatClock renders minutes since midnight as "HH:MM", wrapping past 24h.
func FormatClock(minutes int) string {
	minutes = ((minutes % (24 * 60)) + 24*60) % (24 * 60)
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
