package services

import (
	"bytes"
	"strings"
	"testing"

	"tripplanner/internal/domain/models"
)

func TestDocsServiceGeneratePlanPDF(t *testing.T) {
	plan := murrePlan(t)
	plan.Narrative = &models.Narrative{Title: "Murree weekend", Summary: "Two days in the hills."}

	pdf, filename, err := DocsService{}.GeneratePlanPDF(plan)
	if err != nil {
		t.Fatalf("GeneratePlanPDF returned error: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("GeneratePlanPDF did not return a PDF")
	}
	if !strings.HasPrefix(filename, "TRIP_MURREE_2D_") || !strings.HasSuffix(filename, ".pdf") {
		t.Fatalf("unexpected filename %q", filename)
	}
}

func TestDocsServiceRejectsEmptyPlan(t *testing.T) {
	if _, _, err := (DocsService{}).GeneratePlanPDF(models.TripPlan{}); err == nil {
		t.Fatalf("expected error for empty plan")
	}
}
