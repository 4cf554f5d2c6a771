package handlers

import (
	"net/http"

	"tripplanner/internal/catalog"

	"github.com/gin-gonic/gin"
)

// GET /api/transport-options?origin=islamabad&destination=swat
func GetTransportOptions(c *gin.Context) {
	svc := current()
	origin := catalog.NormalizeID(c.DefaultQuery("origin", "islamabad"))
	destination := catalog.NormalizeID(c.Query("destination"))

	fact, err := svc.Routes.Resolve(c.Request.Context(), origin, destination)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"route":   fact,
		"options": svc.Catalog.Pricing.TransportOptions(fact.DistanceKM),
	})
}
