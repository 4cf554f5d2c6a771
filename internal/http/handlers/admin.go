package handlers

import (
	"net/http"
	"strconv"

	"tripplanner/internal/http/middleware"
	"tripplanner/internal/services"

	"github.com/gin-gonic/gin"
)

func adminHazards(c *gin.Context) services.HazardService {
	hazards := current().Hazards
	hazards.RequestID = middleware.GetRequestID(c)
	return hazards
}

// POST /api/admin/alerts
func CreateAlert(c *gin.Context) {
	var in services.AlertInput
	if !BindJSONOrError(c, &in) {
		return
	}
	alert, err := adminHazards(c).Create(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, alert)
}

// DELETE /api/admin/alerts/:id
func DeactivateAlert(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_alert_id", "alert id must be an integer")
		return
	}
	if err := adminHazards(c).Deactivate(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "alert deactivated", "id": id})
}

// POST /api/admin/alerts/refresh
func RefreshAlerts(c *gin.Context) {
	n, err := adminHazards(c).Refresh(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "weather alerts refreshed", "alerts": n})
}
