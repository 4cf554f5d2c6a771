package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tripplanner/internal/catalog"
	"tripplanner/internal/domain"
	"tripplanner/internal/domain/models"
	"tripplanner/internal/metrics"
	"tripplanner/internal/providers/ors"
	"tripplanner/internal/utils"
)

// errTierMiss means a tier has no answer and the next one should be asked.
var errTierMiss = errors.New("tier has no answer")

// RouteTier is one step of the resolution cascade.
type RouteTier interface {
	Name() string
	Lookup(ctx context.Context, origin, destination models.Place) (models.RouteFact, error)
}

type RouteStore interface {
	Get(ctx context.Context, origin, destination string) (models.RouteFact, error)
	Upsert(ctx context.Context, f models.RouteFact) error
}

type RouteProvider interface {
	Route(ctx context.Context, from, to models.Place) (ors.Directions, error)
}

// RouteResolver answers distance, time, fare and base safety for a place pair
// by walking its tiers in order. The first tier with an answer wins.
type RouteResolver struct {
	Catalog     *catalog.Catalog
	Tiers       []RouteTier
	TierTimeout time.Duration
	Now         func() time.Time
}

const defaultTierTimeout = 10 * time.Second

// NewRouteResolver builds the standard cascade: fresh persisted, live,
// persisted of any age, static fallback. A nil store or provider drops the
// tiers that need it.
func NewRouteResolver(cat *catalog.Catalog, store RouteStore, provider RouteProvider, freshness time.Duration) RouteResolver {
	now := func() time.Time { return time.Now().UTC() }
	var tiers []RouteTier
	if store != nil {
		tiers = append(tiers, FreshStoreTier{Store: store, Freshness: freshness, Now: now})
	}
	if provider != nil {
		tiers = append(tiers, LiveTier{Provider: provider, Store: store, Catalog: cat, Now: now})
	}
	if store != nil {
		tiers = append(tiers, StoreTier{Store: store, Freshness: freshness, Now: now})
	}
	tiers = append(tiers, FallbackTier{Catalog: cat})
	return RouteResolver{Catalog: cat, Tiers: tiers, TierTimeout: defaultTierTimeout, Now: now}
}

// Resolve returns the route fact for an ordered pair of catalog place ids.
func (r RouteResolver) Resolve(ctx context.Context, origin, destination string) (models.RouteFact, error) {
	from, ok := r.Catalog.Place(origin)
	if !ok {
		return models.RouteFact{}, domain.ValidationError{Field: "origin", Msg: fmt.Sprintf("unsupported place %q", origin)}
	}
	to, ok := r.Catalog.Place(destination)
	if !ok {
		return models.RouteFact{}, domain.ValidationError{Field: "destination", Msg: fmt.Sprintf("unsupported place %q", destination)}
	}
	if from.ID == to.ID {
		return models.RouteFact{}, domain.ValidationError{Field: "destination", Msg: "origin and destination are the same place"}
	}

	timeout := r.TierTimeout
	if timeout <= 0 {
		timeout = defaultTierTimeout
	}
	pair := from.ID + "->" + to.ID
	for _, tier := range r.Tiers {
		tctx, cancel := context.WithTimeout(ctx, timeout)
		fact, err := tier.Lookup(tctx, from, to)
		cancel()
		if err != nil {
			if !errors.Is(err, errTierMiss) {
				utils.LogEventCtx(ctx, "route", "tier_failed", fmt.Sprintf("tier=%s pair=%s err=%v", tier.Name(), pair, err))
			}
			continue
		}
		fact.RiskTier = TierFor(fact.BaseSafetyScore)
		metrics.RouteLookups.WithLabelValues(string(fact.Source)).Inc()
		utils.LogEventCtx(ctx, "route", "resolved", fmt.Sprintf("pair=%s source=%s stale=%t km=%.1f", pair, fact.Source, fact.Stale, fact.DistanceKM))
		return fact, nil
	}

	return models.RouteFact{}, domain.InternalError{Msg: fmt.Sprintf("no route data for %s", pair)}
}

// FreshStoreTier serves stored facts younger than the freshness window so
// repeated requests do not spend live quota.
type FreshStoreTier struct {
	Store     RouteStore
	Freshness time.Duration
	Now       func() time.Time
}

func (t FreshStoreTier) Name() string { return "persisted-fresh" }

func (t FreshStoreTier) Lookup(ctx context.Context, origin, destination models.Place) (models.RouteFact, error) {
	f, err := t.Store.Get(ctx, origin.ID, destination.ID)
	if err != nil {
		if domain.IsNotFound(err) {
			return models.RouteFact{}, errTierMiss
		}
		return models.RouteFact{}, err
	}
	if t.Freshness > 0 && utils.Age(t.Now(), f.FetchedAt) > t.Freshness {
		return models.RouteFact{}, errTierMiss
	}
	f.Source = domain.SourcePersisted
	f.Stale = false
	return f, nil
}

// LiveTier asks the routing provider and writes the answer through to the
// store. A failed write is logged only.
type LiveTier struct {
	Provider RouteProvider
	Store    RouteStore
	Catalog  *catalog.Catalog
	Now      func() time.Time
}

func (t LiveTier) Name() string { return "live" }

func (t LiveTier) Lookup(ctx context.Context, origin, destination models.Place) (models.RouteFact, error) {
	d, err := t.Provider.Route(ctx, origin, destination)
	if err != nil {
		if errors.Is(err, ors.ErrNotConfigured) || errors.Is(err, ors.ErrUnsupportedArea) {
			return models.RouteFact{}, errTierMiss
		}
		return models.RouteFact{}, err
	}
	f := models.RouteFact{
		Origin:          origin.ID,
		Destination:     destination.ID,
		DistanceKM:      roundTenth(d.DistanceKM),
		TimeHours:       roundTenth(d.Hours),
		FarePKR:         t.Catalog.Pricing.Fare(d.DistanceKM),
		BaseSafetyScore: t.Catalog.CuratedSafety(origin.ID, destination.ID),
		Source:          domain.SourceLive,
		FetchedAt:       t.Now(),
	}
	if t.Store != nil {
		// the write is not bound to the tier deadline
		if werr := t.Store.Upsert(context.WithoutCancel(ctx), f); werr != nil {
			utils.LogEventCtx(ctx, "route", "write_through_failed", fmt.Sprintf("pair=%s->%s err=%v", origin.ID, destination.ID, werr))
		}
	}
	return f, nil
}

// StoreTier serves any stored fact, ordered pair first, flagging it stale
// when older than the freshness window.
type StoreTier struct {
	Store     RouteStore
	Freshness time.Duration
	Now       func() time.Time
}

func (t StoreTier) Name() string { return "persisted" }

func (t StoreTier) Lookup(ctx context.Context, origin, destination models.Place) (models.RouteFact, error) {
	f, err := t.Store.Get(ctx, origin.ID, destination.ID)
	if domain.IsNotFound(err) {
		f, err = t.Store.Get(ctx, destination.ID, origin.ID)
		if err == nil {
			f = f.Reversed()
		}
	}
	if err != nil {
		if domain.IsNotFound(err) {
			return models.RouteFact{}, errTierMiss
		}
		return models.RouteFact{}, err
	}
	f.Source = domain.SourcePersisted
	f.Stale = t.Freshness > 0 && utils.Age(t.Now(), f.FetchedAt) > t.Freshness
	return f, nil
}

// FallbackTier reads the curated static table.
type FallbackTier struct {
	Catalog *catalog.Catalog
}

func (t FallbackTier) Name() string { return "fallback" }

func (t FallbackTier) Lookup(_ context.Context, origin, destination models.Place) (models.RouteFact, error) {
	f, ok := t.Catalog.FallbackFact(origin.ID, destination.ID)
	if !ok {
		return models.RouteFact{}, errTierMiss
	}
	return f, nil
}

func roundTenth(v float64) float64 {
	return float64(int64(v*10+0.5)) / 10
}
