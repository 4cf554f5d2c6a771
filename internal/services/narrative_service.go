package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"tripplanner/internal/domain"
	"tripplanner/internal/domain/models"
	"tripplanner/internal/llm"
	"tripplanner/internal/metrics"
	"tripplanner/internal/utils"
)

const defaultNarrativeTimeout = 30 * time.Second

// NarrativeService asks the text generator for prose around a finished plan.
// The plan's own numbers always win; a bad reply is dropped.
type NarrativeService struct {
	Generator llm.Generator
	Timeout   time.Duration
	RequestID string
}

type narrativeFactDay struct {
	Day           int      `json:"day"`
	Kind          string   `json:"kind"`
	Title         string   `json:"title"`
	From          string   `json:"from"`
	To            string   `json:"to"`
	DistanceKM    float64  `json:"distance_km,omitempty"`
	TimeHours     float64  `json:"time_hours,omitempty"`
	DepartureTime string   `json:"departure_time,omitempty"`
	Activities    []string `json:"activities"`
	SafetyTier    string   `json:"safety_tier"`
	Warnings      []string `json:"warnings,omitempty"`
	RestReason    string   `json:"rest_reason,omitempty"`
}

type narrativeFacts struct {
	Origin      string             `json:"origin"`
	Destination string             `json:"destination"`
	People      int                `json:"num_people"`
	TravelType  string             `json:"travel_type"`
	Style       string             `json:"style"`
	BudgetPKR   int64              `json:"budget_pkr"`
	Envelopes   map[string]int64   `json:"envelopes_pkr"`
	SafetyTier  string             `json:"safety_tier"`
	SafetyNotes []string           `json:"safety_notes"`
	Days        []narrativeFactDay `json:"days"`
}

type narrativeReply struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Days    []struct {
		Title         string   `json:"title"`
		Tips          []string `json:"tips"`
		ActivityNotes []string `json:"activity_notes"`
	} `json:"days"`
}

// Enrich attaches a narrative to the plan. Any failure leaves the plan as it
// was plus an uncertainty note.
func (s NarrativeService) Enrich(ctx context.Context, plan models.TripPlan) models.TripPlan {
	if s.Generator == nil {
		return s.unavailable(plan, "unavailable", errors.New("text generation is not configured"))
	}
	prompt, err := buildNarrativePrompt(plan)
	if err != nil {
		return s.unavailable(plan, "error", err)
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = defaultNarrativeTimeout
	}
	gctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	raw, err := s.Generator.Generate(gctx, prompt)
	if err != nil {
		return s.unavailable(plan, "unavailable", err)
	}
	n, err := parseNarrative(raw, len(plan.Days))
	if err != nil {
		return s.unavailable(plan, "rejected", err)
	}

	plan.Narrative = n
	metrics.NarrativeRequests.WithLabelValues("ok").Inc()
	utils.LogEvent(s.RequestID, "narrative", "attached", fmt.Sprintf("plan_id=%s days=%d", plan.ID, len(n.Days)))
	return plan
}

func (s NarrativeService) unavailable(plan models.TripPlan, outcome string, err error) models.TripPlan {
	metrics.NarrativeRequests.WithLabelValues(outcome).Inc()
	utils.LogEvent(s.RequestID, "narrative", outcome, err.Error())
	plan.UncertaintyNotes = utils.AppendUnique(plan.UncertaintyNotes, "Narrative unavailable; the itinerary above is complete without it")
	return plan
}

func buildNarrativePrompt(plan models.TripPlan) (string, error) {
	facts := narrativeFacts{
		Origin:      plan.Origin.Name,
		Destination: plan.Destination.Name,
		People:      plan.Request.NumPeople,
		TravelType:  plan.Request.TravelType,
		Style:       plan.Request.Style,
		BudgetPKR:   plan.Costs.Total,
		Envelopes:   map[string]int64{},
		SafetyTier:  string(plan.SafetyTier),
		SafetyNotes: plan.SafetyNotes,
	}
	for _, e := range plan.Allocation.Envelopes {
		facts.Envelopes[string(e.Category)] = e.Amount
	}
	for _, d := range plan.Days {
		fd := narrativeFactDay{
			Day:           d.Day,
			Kind:          string(d.Kind),
			Title:         d.Title,
			From:          d.Leg.Origin.Name,
			To:            d.Leg.Destination.Name,
			DepartureTime: d.DepartureTime,
			Activities:    d.Activities,
			SafetyTier:    string(d.Safety.Tier),
			Warnings:      d.Safety.Warnings,
			RestReason:    d.RestReason,
		}
		if d.Route != nil {
			fd.DistanceKM = d.Route.DistanceKM
			fd.TimeHours = d.Route.TimeHours
		}
		facts.Days = append(facts.Days, fd)
	}
	raw, err := json.MarshalIndent(facts, "", "  ")
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("You are writing a short travel narrative for a trip in Pakistan.\n")
	b.WriteString("Use only the facts below. Do not change days, places, times, distances or costs.\n")
	fmt.Fprintf(&b, "Reply with JSON only, exactly %d entries in \"days\", in order:\n", len(plan.Days))
	b.WriteString(`{"title": "...", "summary": "...", "days": [{"title": "...", "tips": ["..."], "activity_notes": ["..."]}]}`)
	b.WriteString("\n\nFacts:\n")
	b.Write(raw)
	return b.String(), nil
}

// parseNarrative reads the reply and keeps its text only. Day numbers come
// from the plan.
func parseNarrative(raw string, wantDays int) (*models.Narrative, error) {
	var reply narrativeReply
	if err := json.Unmarshal([]byte(llm.StripFences(raw)), &reply); err != nil {
		return nil, domain.ValidationError{Field: "narrative", Msg: "reply is not valid JSON", Err: err}
	}
	if len(reply.Days) != wantDays {
		return nil, domain.ValidationError{Field: "narrative", Msg: fmt.Sprintf("reply has %d days, plan has %d", len(reply.Days), wantDays)}
	}
	n := &models.Narrative{
		Title:   utils.NormalizeSpace(reply.Title),
		Summary: strings.TrimSpace(reply.Summary),
		Days:    make([]models.NarrativeDay, 0, wantDays),
	}
	for i, d := range reply.Days {
		n.Days = append(n.Days, models.NarrativeDay{
			Day:           i + 1,
			Title:         utils.NormalizeSpace(d.Title),
			Tips:          utils.AppendUnique(nil, d.Tips...),
			ActivityNotes: utils.AppendUnique(nil, d.ActivityNotes...),
		})
	}
	return n, nil
}
