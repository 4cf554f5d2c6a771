package handlers

import (
	"net/http"
	"strings"

	"tripplanner/internal/catalog"
	"tripplanner/internal/domain"
	"tripplanner/internal/domain/models"
	"tripplanner/internal/http/middleware"
	"tripplanner/internal/services"

	"github.com/gin-gonic/gin"
)

// planFor assembles the request and, when asked, attaches the narrative.
func planFor(c *gin.Context, req models.TripRequest) (models.TripPlan, bool) {
	svc := current()
	reqID := middleware.GetRequestID(c)

	assembler := svc.Assembler
	assembler.RequestID = reqID
	plan, err := assembler.Assemble(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return models.TripPlan{}, false
	}
	if queryFlag(c, "narrative") {
		narrative := svc.Narrative
		narrative.RequestID = reqID
		plan = narrative.Enrich(c.Request.Context(), plan)
	}
	return plan, true
}

// POST /api/trip/plan
func PlanTrip(c *gin.Context) {
	var req models.TripRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	plan, ok := planFor(c, req)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, plan)
}

// POST /api/trip/plan/pdf
func PlanTripPDF(c *gin.Context) {
	var req models.TripRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	plan, ok := planFor(c, req)
	if !ok {
		return
	}
	pdfBytes, filename, err := services.DocsService{RequestID: middleware.GetRequestID(c)}.GeneratePlanPDF(plan)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "pdf_failed", "could not render plan")
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

type destinationDTO struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Region     string   `json:"region"`
	AltitudeM  int      `json:"altitude_m"`
	MinDays    int      `json:"min_days"`
	Highlights []string `json:"highlights"`
}

// GET /api/trip/destinations
func GetDestinations(c *gin.Context) {
	cat := current().Catalog
	places := cat.SupportedDestinations()
	out := make([]destinationDTO, 0, len(places))
	for _, p := range places {
		d, _ := cat.Destination(p.ID)
		out = append(out, destinationDTO{
			ID:         p.ID,
			Name:       p.Name,
			Region:     p.Region,
			AltitudeM:  p.AltitudeM,
			MinDays:    d.MinDays,
			Highlights: d.Highlights,
		})
	}
	c.JSON(http.StatusOK, gin.H{"destinations": out, "origins": cat.Origins})
}

// GET /api/trip/packing-checklist?destination=hunza&travel_type=family&days=6
func GetPackingChecklist(c *gin.Context) {
	cat := current().Catalog
	dest, ok := cat.Destination(c.Query("destination"))
	if !ok {
		RespondDomainError(c, domain.ValidationError{Field: "destination", Msg: "unsupported destination"})
		return
	}

	travelType := domain.TravelSolo
	if raw := strings.TrimSpace(c.Query("travel_type")); raw != "" {
		tt, ok := domain.ParseTravelType(raw)
		if !ok {
			RespondDomainError(c, domain.ValidationError{Field: "travel_type", Msg: "must be one of solo, couple, family, group"})
			return
		}
		travelType = tt
	}

	days, ok := queryInt(c, "days", dest.MinDays)
	if !ok {
		return
	}
	if days < 1 || days > cat.Policy.MaxDurationDays {
		RespondDomainError(c, domain.ValidationError{Field: "days", Msg: "out of range", Suggestion: dest.MinDays})
		return
	}

	items := cat.PackingChecklist(dest.ID, travelType, days)
	c.JSON(http.StatusOK, gin.H{
		"destination": dest.ID,
		"travel_type": travelType,
		"days":        days,
		"items":       items,
	})
}

// GET /api/route-facts/:origin/:destination
func GetRouteFact(c *gin.Context) {
	svc := current()
	fact, err := svc.Routes.Resolve(c.Request.Context(), catalog.NormalizeID(c.Param("origin")), catalog.NormalizeID(c.Param("destination")))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, fact)
}

// GET /api/trip/emergency-info?region=kpk
// A destination (?destination=swat) selects its region. Without either, every
// region is listed.
func GetEmergencyInfo(c *gin.Context) {
	cat := current().Catalog
	region := catalog.NormalizeID(c.Query("region"))
	if raw := strings.TrimSpace(c.Query("destination")); raw != "" {
		place, ok := cat.Place(raw)
		if !ok {
			RespondDomainError(c, domain.ValidationError{Field: "destination", Msg: "unknown place"})
			return
		}
		region = place.Region
	}

	info, ok := cat.EmergencyInfo(region)
	if !ok {
		ids := make([]string, 0, len(cat.Regions))
		for _, r := range cat.Regions {
			ids = append(ids, r.ID)
		}
		RespondDomainError(c, domain.ValidationError{Field: "region", Msg: "unknown region", Suggestion: ids})
		return
	}
	c.JSON(http.StatusOK, info)
}
