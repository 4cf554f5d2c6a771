package services

import (
	"bytes"
	"fmt"
	"strings"

	"tripplanner/internal/domain/models"
	"tripplanner/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// DocsService renders finalized plans as PDF documents.
type DocsService struct {
	RequestID string
}

func (s DocsService) GeneratePlanPDF(plan models.TripPlan) ([]byte, string, error) {
	if len(plan.Days) == 0 {
		return nil, "", fmt.Errorf("plan has no days")
	}
	utils.LogEvent(s.RequestID, "docs", "generate_plan_pdf", fmt.Sprintf("plan_id=%s days=%d", plan.ID, len(plan.Days)))
	return buildPlanPDF(plan)
}

func buildPlanPDF(p models.TripPlan) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Trip Plan", false)
	pdf.AddPage()

	title := fmt.Sprintf("%s to %s", safe(p.Origin.Name, "-"), safe(p.Destination.Name, "-"))
	if p.Narrative != nil && strings.TrimSpace(p.Narrative.Title) != "" {
		title = p.Narrative.Title
	}
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, title)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	header := []string{
		fmt.Sprintf("Plan ID      : %s", safe(p.ID, "-")),
		fmt.Sprintf("Created      : %s", utils.FormatDateTime(p.CreatedAt)),
		fmt.Sprintf("Travelers    : %d (%s)", p.Request.NumPeople, safe(p.Request.TravelType, "-")),
		fmt.Sprintf("Duration     : %d days", len(p.Days)),
		fmt.Sprintf("Style        : %s", safe(p.Request.Style, "-")),
		fmt.Sprintf("Safety tier  : %s", safe(string(p.SafetyTier), "-")),
	}
	for _, s := range header {
		pdf.Cell(0, 6, s)
		pdf.Ln(6)
	}
	if p.Narrative != nil && strings.TrimSpace(p.Narrative.Summary) != "" {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, 5, p.Narrative.Summary, "", "", false)
	}

	section(pdf, "Itinerary")
	for _, d := range p.Days {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.MultiCell(0, 6, fmt.Sprintf("Day %d - %s", d.Day, safe(d.Title, string(d.Kind))), "", "", false)
		pdf.SetFont("Helvetica", "", 10)
		var lines []string
		if d.Route != nil {
			lines = append(lines, fmt.Sprintf("%s -> %s, %.0f km, %.1f h (%s)",
				d.Leg.Origin.Name, d.Leg.Destination.Name, d.Route.DistanceKM, d.Route.TimeHours, d.Route.Source))
		}
		if d.TransportMode != "" {
			lines = append(lines, fmt.Sprintf("Transport: %s, departs %s", d.TransportMode, safe(d.DepartureTime, "-")))
		}
		if d.Hotel != "" {
			lines = append(lines, "Stay: "+d.Hotel)
		}
		if d.IsRestDay {
			lines = append(lines, "Rest day: "+d.RestReason)
		}
		if len(d.Activities) > 0 {
			lines = append(lines, "Activities: "+strings.Join(d.Activities, "; "))
		}
		lines = append(lines, fmt.Sprintf("Day cost: %s  |  Safety: %s (%d)", utils.FormatPKR(d.Total()), d.Safety.Tier, d.Safety.Score))
		for _, n := range d.SafetyNotes {
			lines = append(lines, "! "+n)
		}
		for _, l := range lines {
			pdf.MultiCell(0, 5, l, "", "", false)
		}
		pdf.Ln(2)
	}

	section(pdf, "Costs")
	pdf.SetFont("Helvetica", "", 11)
	costs := [][2]string{
		{"Transport", utils.FormatPKR(p.Costs.Transport)},
		{"Accommodation", utils.FormatPKR(p.Costs.Accommodation)},
		{"Food", utils.FormatPKR(p.Costs.Food)},
		{"Activities", utils.FormatPKR(p.Costs.Activities)},
		{"Buffer", utils.FormatPKR(p.Costs.Buffer)},
	}
	for _, c := range costs {
		pdf.Cell(50, 6, c[0])
		pdf.Cell(0, 6, c[1])
		pdf.Ln(6)
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(50, 7, "Total")
	pdf.Cell(0, 7, fmt.Sprintf("%s (%s per person)", utils.FormatPKR(p.Costs.Total), utils.FormatPKR(p.Costs.PerPerson)))
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	for _, e := range p.Allocation.Envelopes {
		pdf.Cell(50, 5, "Envelope "+string(e.Category))
		pdf.Cell(0, 5, fmt.Sprintf("%s (%s)", utils.FormatPKR(e.Amount), utils.Percent(e.BasisPoints)))
		pdf.Ln(5)
	}
	for _, n := range p.CostNotes {
		pdf.MultiCell(0, 5, n, "", "", false)
	}

	notes := append(append([]string{}, p.SafetyNotes...), p.AltitudeWarnings...)
	if len(notes) > 0 {
		section(pdf, "Safety")
		pdf.SetFont("Helvetica", "", 10)
		for _, n := range notes {
			pdf.MultiCell(0, 5, "- "+n, "", "", false)
		}
	}

	if len(p.PackingChecklist) > 0 {
		section(pdf, "Packing checklist")
		pdf.SetFont("Helvetica", "", 10)
		for _, it := range p.PackingChecklist {
			mark := " "
			if it.Essential {
				mark = "*"
			}
			pdf.Cell(0, 5, fmt.Sprintf("[%s] %s (%s)", mark, it.Item, it.Category))
			pdf.Ln(5)
		}
	}

	if len(p.UncertaintyNotes) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "I", 9)
		for _, n := range p.UncertaintyNotes {
			pdf.MultiCell(0, 5, "Note: "+n, "", "", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("TRIP_%s_%dD_%s.pdf",
		utils.SafeFilenamePart(strings.ToUpper(p.Destination.ID)), len(p.Days), utils.SafeFilenamePart(shortID(p.ID)))
	return buf.Bytes(), filename, nil
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, title)
	pdf.Ln(9)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return safe(id, "NA")
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}
