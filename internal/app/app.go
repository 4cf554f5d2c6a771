// Package app wires configuration, stores and providers into the services
// the HTTP API and CLI share.
package app

import (
	"context"
	"database/sql"
	"fmt"

	"tripplanner/internal/catalog"
	intconfig "tripplanner/internal/config"
	"tripplanner/internal/db"
	h "tripplanner/internal/http/handlers"
	"tripplanner/internal/llm"
	"tripplanner/internal/providers/ors"
	"tripplanner/internal/providers/weather"
	"tripplanner/internal/repositories"
	"tripplanner/internal/services"
	"tripplanner/internal/utils"
)

// Options tune what Build connects.
type Options struct {
	// WithoutDB skips the database; the cascade then runs live and fallback only.
	WithoutDB bool
}

type App struct {
	Env      intconfig.Env
	Catalog  *catalog.Catalog
	DB       *sql.DB
	Services h.Services
}

// LoadCatalog reads CATALOG_PATH when set, otherwise the embedded catalog.
// catalog.Load validates the result.
func LoadCatalog(env intconfig.Env) (*catalog.Catalog, error) {
	return catalog.Load(env.CatalogPath)
}

func Build(ctx context.Context, env intconfig.Env, opts Options) (*App, error) {
	cat, err := LoadCatalog(env)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	a := &App{Env: env, Catalog: cat}

	var (
		routeStore  services.RouteStore
		hazardStore services.HazardStore
		sources     []services.HazardProvider
		counter     h.RouteCounter
	)
	if !opts.WithoutDB {
		conn, err := intconfig.ConnectDB(env)
		if err != nil {
			return nil, fmt.Errorf("database: %w", err)
		}
		dialect := db.ParseDialect(env.DBDriver)
		if err := db.EnsureSchema(ctx, conn, dialect); err != nil {
			return nil, err
		}
		a.DB = conn
		routes := repositories.RouteRepository{DB: conn, Dialect: dialect}
		hazards := repositories.HazardRepository{DB: conn}
		routeStore, hazardStore, counter = routes, hazards, routes
		sources = append(sources, hazards)
	}

	var provider services.RouteProvider
	if env.ORSAPIKey != "" {
		client := ors.New(env.ORSBaseURL, env.ORSAPIKey, env.ORSTimeout, env.ORSRatePerMinute)
		client.Routable = cat.LiveRoutable
		provider = client
	}

	var weatherSource services.WeatherSource
	if env.WeatherAPIKey != "" {
		client := weather.New(env.WeatherBaseURL, env.WeatherAPIKey, env.WeatherTimeout)
		weatherSource = client
		sources = append(sources, services.WeatherHazards{Client: client, Catalog: cat})
	}

	var hazardProvider services.HazardProvider
	if len(sources) > 0 {
		hazardProvider = services.CompositeHazards{Sources: sources}
	}

	var generator llm.Generator
	if env.OpenAIAPIKey != "" {
		g, err := llm.NewOpenAI(llm.Config{APIKey: env.OpenAIAPIKey, Model: env.LLMModel, BaseURL: env.LLMBaseURL})
		if err != nil {
			return nil, fmt.Errorf("llm: %w", err)
		}
		generator = g
	}

	resolver := services.NewRouteResolver(cat, routeStore, provider, env.RouteFreshness)
	a.Services = h.Services{
		Catalog:           cat,
		Routes:            resolver,
		Assembler:         services.NewItineraryAssembler(cat, resolver, hazardProvider),
		Hazards:           services.HazardService{Store: hazardStore, Weather: weatherSource, Catalog: cat},
		Narrative:         services.NarrativeService{Generator: generator, Timeout: env.LLMTimeout},
		Store:             counter,
		JWTSecret:         []byte(env.JWTSecret),
		AdminPasswordHash: env.AdminPasswordHash,
	}

	utils.LogEvent("", "app", "built", fmt.Sprintf("db=%t live_routing=%t weather=%t narrative=%t",
		a.DB != nil, provider != nil, weatherSource != nil, generator != nil))
	return a, nil
}

func (a *App) Close() {
	if a.DB != nil {
		intconfig.CloseDB()
		a.DB = nil
	}
}
