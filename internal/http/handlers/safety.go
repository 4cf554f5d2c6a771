package handlers

import (
	"net/http"

	"tripplanner/internal/catalog"
	"tripplanner/internal/domain"
	"tripplanner/internal/http/middleware"
	"tripplanner/internal/services"

	"github.com/gin-gonic/gin"
)

// GET /api/safety/score?origin=islamabad&destination=hunza
// Optional travel_type and traveler_gender add profile advice.
func GetSafetyScore(c *gin.Context) {
	svc := current()
	ctx := c.Request.Context()
	origin := catalog.NormalizeID(c.DefaultQuery("origin", "islamabad"))
	destination := catalog.NormalizeID(c.Query("destination"))

	fact, err := svc.Routes.Resolve(ctx, origin, destination)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	place, _ := svc.Catalog.Place(destination)
	assessment := svc.Assembler.Scorer.Score(ctx, place.Region, fact.BaseSafetyScore, place.AltitudeM)
	if raw := c.Query("travel_type"); raw != "" {
		tt, ok := domain.ParseTravelType(raw)
		if !ok {
			RespondDomainError(c, domain.ValidationError{Field: "travel_type", Msg: "must be one of solo, couple, family, group"})
			return
		}
		assessment.Advice = append(assessment.Advice, services.ProfileAdvice(tt, c.Query("traveler_gender"))...)
	}
	c.JSON(http.StatusOK, gin.H{
		"route":      fact,
		"assessment": assessment,
	})
}

// GET /api/safety/alerts?region=northern-areas
func GetSafetyAlerts(c *gin.Context) {
	hazards := current().Hazards
	hazards.RequestID = middleware.GetRequestID(c)
	items, err := hazards.List(c.Request.Context(), c.Query("region"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": items})
}
