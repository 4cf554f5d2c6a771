package api

import (
	"log"
	stdhttp "net/http"

	intconfig "tripplanner/internal/config"
	h "tripplanner/internal/http/handlers"
	"tripplanner/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

func NewRouter(env intconfig.Env, svc h.Services) *gin.Engine {
	if len(svc.JWTSecret) == 0 {
		svc.JWTSecret = []byte(env.JWTSecret)
	}
	if svc.AdminPasswordHash == "" {
		svc.AdminPasswordHash = env.AdminPasswordHash
	}
	if len(svc.JWTSecret) == 0 {
		log.Printf("warning: JWT_SECRET not set, admin endpoints disabled")
	}
	h.SetServices(svc)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(env.CORSAllowedOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.OPTIONS("/*path", func(c *gin.Context) { c.AbortWithStatus(stdhttp.StatusNoContent) })

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":      "route not found",
			"code":       "not_found",
			"path":       c.Request.URL.Path,
			"method":     c.Request.Method,
			"request_id": middleware.GetRequestID(c),
		})
	})

	r.GET("/metrics", h.Metrics())

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)
		api.GET("/routes", h.Routes)

		// Trip planning
		trip := api.Group("/trip")
		trip.POST("/plan", h.PlanTrip)
		trip.POST("/plan/pdf", h.PlanTripPDF)
		trip.GET("/destinations", h.GetDestinations)
		trip.GET("/packing-checklist", h.GetPackingChecklist)
		trip.GET("/emergency-info", h.GetEmergencyInfo)

		api.GET("/route-facts/:origin/:destination", h.GetRouteFact)
		api.GET("/transport-options", h.GetTransportOptions)
		api.POST("/budget/allocate", h.AllocateBudget)

		// Safety
		safety := api.Group("/safety")
		safety.GET("/score", h.GetSafetyScore)
		safety.GET("/alerts", h.GetSafetyAlerts)

		// Admin
		api.POST("/admin/token", h.AdminToken)
		admin := api.Group("/admin", middleware.RequireAdmin(svc.JWTSecret))
		admin.POST("/alerts", h.CreateAlert)
		admin.DELETE("/alerts/:id", h.DeactivateAlert)
		admin.POST("/alerts/refresh", h.RefreshAlerts)
	}

	h.SetRouter(r)
	return r
}
