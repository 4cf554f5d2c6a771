package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"tripplanner/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	reply  string
	err    error
	prompt string
}

func (g *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompt = prompt
	return g.reply, g.err
}

func murrePlan(t *testing.T) models.TripPlan {
	t.Helper()
	req := models.TripRequest{Destination: "murree", DurationDays: 2, NumPeople: 2, BudgetPKR: 60_000}
	plan, err := newTestAssembler(t, noHazards()).Assemble(context.Background(), req)
	require.NoError(t, err)
	return plan
}

func TestEnrichAttachesTextOnly(t *testing.T) {
	plan := murrePlan(t)
	g := &stubGenerator{reply: "```json\n" + `{
		"title": "A  weekend in Murree",
		"summary": "Pine forests and cool air.",
		"total_cost": 1,
		"days": [
			{"day": 7, "title": "Up the hills", "tips": ["Carry a jacket", "Carry a jacket"], "activity_notes": ["Mall Road at dusk"], "cost": 5},
			{"title": "Back home", "tips": []}
		]
	}` + "\n```"}

	out := NarrativeService{Generator: g}.Enrich(context.Background(), plan)
	require.NotNil(t, out.Narrative)
	assert.Equal(t, "A weekend in Murree", out.Narrative.Title)
	require.Len(t, out.Narrative.Days, 2)
	assert.Equal(t, 1, out.Narrative.Days[0].Day)
	assert.Equal(t, []string{"Carry a jacket"}, out.Narrative.Days[0].Tips)
	assert.Equal(t, plan.Costs, out.Costs)
	assert.Equal(t, plan.Days, out.Days)

	assert.Contains(t, g.prompt, `"destination": "Murree"`)
	assert.Contains(t, g.prompt, "exactly 2 entries")
}

func TestEnrichRejectsDayCountMismatch(t *testing.T) {
	plan := murrePlan(t)
	g := &stubGenerator{reply: `{"title": "x", "summary": "y", "days": [{"title": "only one"}]}`}

	out := NarrativeService{Generator: g}.Enrich(context.Background(), plan)
	assert.Nil(t, out.Narrative)
	assert.True(t, hasNote(out.UncertaintyNotes, "Narrative unavailable"))
	assert.Equal(t, plan.Days, out.Days)
}

func TestEnrichSurvivesGeneratorFailure(t *testing.T) {
	plan := murrePlan(t)

	out := NarrativeService{Generator: &stubGenerator{err: errors.New("429")}}.Enrich(context.Background(), plan)
	assert.Nil(t, out.Narrative)
	assert.True(t, hasNote(out.UncertaintyNotes, "Narrative unavailable"))

	out = NarrativeService{Generator: &stubGenerator{reply: "Sure! Here is your trip..."}}.Enrich(context.Background(), plan)
	assert.Nil(t, out.Narrative)

	out = NarrativeService{}.Enrich(context.Background(), plan)
	assert.Nil(t, out.Narrative)
	assert.True(t, hasNote(out.UncertaintyNotes, "Narrative unavailable"))
}

func hasNote(notes []string, prefix string) bool {
	for _, n := range notes {
		if strings.HasPrefix(n, prefix) {
			return true
		}
	}
	return false
}
