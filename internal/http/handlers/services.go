package handlers

import (
	"context"
	"sync"
	"time"

	"tripplanner/internal/catalog"
	"tripplanner/internal/services"
)

// RouteCounter reports stored route facts for the db-check endpoint.
type RouteCounter interface {
	Count(ctx context.Context) (int, error)
}

// Services bundles what the handlers call into. Per-request copies get the
// request id before use.
type Services struct {
	Catalog   *catalog.Catalog
	Routes    services.RouteResolving
	Assembler services.ItineraryAssembler
	Hazards   services.HazardService
	Narrative services.NarrativeService
	Store     RouteCounter

	JWTSecret         []byte
	AdminPasswordHash string
	TokenTTL          time.Duration
}

var (
	servicesMu sync.RWMutex
	active     Services
)

// SetServices installs the services used by every handler.
func SetServices(s Services) {
	servicesMu.Lock()
	defer servicesMu.Unlock()
	active = s
}

func current() Services {
	servicesMu.RLock()
	defer servicesMu.RUnlock()
	return active
}
