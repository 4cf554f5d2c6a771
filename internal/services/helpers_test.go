package services

import (
	"context"
	"errors"
	"sync"

	"tripplanner/internal/domain"
	"tripplanner/internal/domain/models"
	"tripplanner/internal/providers/ors"
)

type memRouteStore struct {
	mu         sync.Mutex
	facts      map[[2]string]models.RouteFact
	upserts    int
	failUpsert error
}

func newMemRouteStore() *memRouteStore {
	return &memRouteStore{facts: map[[2]string]models.RouteFact{}}
}

func (s *memRouteStore) Get(_ context.Context, origin, destination string) (models.RouteFact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.facts[[2]string{origin, destination}]
	if !ok {
		return models.RouteFact{}, domain.NotFoundError{Resource: "route fact"}
	}
	return f, nil
}

func (s *memRouteStore) Upsert(_ context.Context, f models.RouteFact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUpsert != nil {
		return s.failUpsert
	}
	s.upserts++
	s.facts[[2]string{f.Origin, f.Destination}] = f
	return nil
}

type fakeProvider struct {
	mu    sync.Mutex
	calls int
	dir   ors.Directions
	err   error
	block bool
}

func (p *fakeProvider) Route(ctx context.Context, _, _ models.Place) (ors.Directions, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	if p.block {
		<-ctx.Done()
		return ors.Directions{}, ctx.Err()
	}
	if p.err != nil {
		return ors.Directions{}, p.err
	}
	return p.dir, nil
}

func (p *fakeProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

type fakeHazards struct {
	byRegion map[string][]models.HazardSignal
	err      error
}

func (h fakeHazards) ActiveHazards(_ context.Context, region string) ([]models.HazardSignal, error) {
	if h.err != nil {
		return nil, h.err
	}
	return h.byRegion[region], nil
}

var errProviderDown = errors.New("provider down")

func hazard(region string, t domain.HazardType, sev domain.Severity) models.HazardSignal {
	return models.HazardSignal{Region: region, Type: t, Severity: sev, Active: true, Description: string(t) + " reported", Provider: "admin"}
}
