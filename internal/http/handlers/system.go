package handlers

import (
	"net/http"
	"sync"

	"tripplanner/internal/metrics"
	"tripplanner/internal/utils"

	"github.com/gin-gonic/gin"
)

var (
	routerMu sync.RWMutex
	router   *gin.Engine
)

// SetRouter stores the active gin engine for later inspection (e.g., /api/routes).
func SetRouter(r *gin.Engine) {
	routerMu.Lock()
	defer routerMu.Unlock()
	router = r
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "trip planner running"})
}

func DBCheck(c *gin.Context) {
	store := current().Store
	if store == nil {
		respondError(c, http.StatusInternalServerError, "db_unavailable", "database not connected")
		return
	}
	count, err := store.Count(c.Request.Context())
	if err != nil {
		utils.LogEventCtx(c.Request.Context(), "system", "db_check_failed", err.Error())
		respondError(c, http.StatusInternalServerError, "db_unavailable", "database query failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "database OK", "route_facts": count})
}

func Routes(c *gin.Context) {
	routerMu.RLock()
	r := router
	routerMu.RUnlock()
	if r == nil {
		respondError(c, http.StatusServiceUnavailable, "router_not_ready", "router not ready")
		return
	}

	routes := r.Routes()
	out := make([]gin.H, 0, len(routes))
	for _, rt := range routes {
		out = append(out, gin.H{
			"method":  rt.Method,
			"path":    rt.Path,
			"handler": rt.Handler,
		})
	}
	c.JSON(http.StatusOK, gin.H{"routes": out})
}

// Metrics exposes the Prometheus registry.
func Metrics() gin.HandlerFunc {
	return gin.WrapH(metrics.Handler())
}
