package catalog

import (
	"errors"
	"fmt"
	"strings"

	"tripplanner/internal/domain"
)

// Validate checks referential integrity and proves the fallback table covers
// every leg a skeleton can produce. Any problem is a configuration bug.
func (c *Catalog) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	for _, p := range c.Places {
		if _, ok := c.regions[p.Region]; !ok {
			add("place %s: unknown region %q", p.ID, p.Region)
		}
	}
	for _, o := range c.Origins {
		if _, ok := c.places[o]; !ok {
			add("origin %s: unknown place", o)
		}
	}

	for _, d := range c.Destinations {
		hub, ok := c.places[d.ID]
		if !ok {
			add("destination %s: unknown place", d.ID)
			continue
		}
		if d.MinDays < 2 || d.MinDays > c.Policy.MaxDurationDays {
			add("destination %s: min_days %d out of range", d.ID, d.MinDays)
		}
		if d.CostFactorPct <= 0 {
			add("destination %s: cost_factor_pct must be positive", d.ID)
		}
		if len(d.Days) == 0 {
			add("destination %s: no day templates", d.ID)
		}
		if d.HaltTown != "" {
			if _, ok := c.places[d.HaltTown]; !ok {
				add("destination %s: unknown halt town %s", d.ID, d.HaltTown)
			}
		}
		for _, o := range c.Origins {
			if _, ok := c.FallbackFact(o, hub.ID); !ok {
				add("fallback: missing leg %s -> %s", o, hub.ID)
			}
		}
		for _, t := range d.Days {
			if _, ok := c.places[t.Place]; !ok {
				add("destination %s: unknown template place %s", d.ID, t.Place)
				continue
			}
			if t.Kind != domain.DayExcursion && t.Kind != domain.DayLocal {
				add("destination %s: template %s has kind %q", d.ID, t.Place, t.Kind)
			}
			if _, ok := c.FallbackFact(hub.ID, t.Place); !ok {
				add("fallback: missing leg %s -> %s", hub.ID, t.Place)
			}
		}
	}

	for _, l := range c.Fallback {
		if _, ok := c.places[l.From]; !ok {
			add("fallback: unknown place %s", l.From)
		}
		if _, ok := c.places[l.To]; !ok {
			add("fallback: unknown place %s", l.To)
		}
		if l.KM <= 0 {
			add("fallback: %s -> %s has no distance", l.From, l.To)
		}
	}

	if err := c.validateBudget(); err != nil {
		add("%v", err)
	}
	if err := c.validatePolicy(); err != nil {
		add("%v", err)
	}

	for i, m := range c.Pricing.TransportModes {
		if m.Mode == "" {
			add("transport mode %d: missing name", i)
			continue
		}
		if m.SpeedKMH <= 0 {
			add("transport mode %s: speed_kmh must be positive", m.Mode)
		}
		if m.MaxKM > 0 && m.MaxKM <= m.MinKM {
			add("transport mode %s: max_km must exceed min_km", m.Mode)
		}
		if m.Low.Base > m.High.Base || m.Low.PerKM > m.High.PerKM {
			add("transport mode %s: low fare above high fare", m.Mode)
		}
	}

	if len(c.Emergency.General) == 0 {
		add("emergency: general contacts missing")
	}
	for id := range c.Emergency.Regions {
		if _, ok := c.regions[id]; !ok {
			add("emergency: unknown region %q", id)
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("catalog invalid: %s", strings.Join(problems, "; "))
	}
	return nil
}

var allStyles = []domain.Style{domain.StyleBudget, domain.StyleComfort, domain.StyleAdventure, domain.StyleLuxury}

func (c *Catalog) validateBudget() error {
	cats := append(append([]domain.Category{}, domain.SpendCategories...), domain.CategoryBuffer)
	for _, cat := range cats {
		g, ok := c.Budget.Guardrails[cat]
		if !ok {
			return fmt.Errorf("budget: missing guardrail for %s", cat)
		}
		if g.Min < 0 || g.Min > g.Max || g.Max > 10000 {
			return fmt.Errorf("budget: guardrail for %s is invalid", cat)
		}
	}
	if c.Budget.Guardrails[domain.CategoryBuffer].Min <= 0 {
		return errors.New("budget: buffer minimum must be positive")
	}
	for _, s := range allStyles {
		pos, ok := c.Budget.StylePositions[s]
		if !ok {
			return fmt.Errorf("budget: missing style positions for %s", s)
		}
		for _, cat := range domain.SpendCategories {
			switch pos[cat] {
			case "low", "mid", "high":
			default:
				return fmt.Errorf("budget: style %s has invalid position %q for %s", s, pos[cat], cat)
			}
		}
		if c.Budget.PerPersonPerDay[s] <= 0 {
			return fmt.Errorf("budget: missing per-person-per-day floor for %s", s)
		}
	}
	return nil
}

func (c *Catalog) validatePolicy() error {
	p := c.Policy
	for _, clock := range []string{p.DefaultDeparture, p.EarlyDeparture, p.OvernightDeparture} {
		if _, err := ParseClock(clock); err != nil {
			return fmt.Errorf("policy: %w", err)
		}
	}
	if early, _ := ParseClock(p.EarlyDeparture); p.IsNight(early) {
		return errors.New("policy: early departure falls in the night window")
	}
	if def, _ := ParseClock(p.DefaultDeparture); p.IsNight(def) {
		return errors.New("policy: default departure falls in the night window")
	}
	if p.MaxDurationDays <= 0 || p.MaxPeople <= 0 || p.LargeGroupSize <= 0 {
		return errors.New("policy: limits must be positive")
	}
	for _, key := range []string{"car", "hiace", "coaster", "suv"} {
		v, ok := c.Pricing.Vehicles[key]
		if !ok || v.Seats <= 0 {
			return fmt.Errorf("pricing: vehicle %s missing or without seats", key)
		}
	}
	return nil
}
