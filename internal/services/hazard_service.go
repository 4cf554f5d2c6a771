package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tripplanner/internal/catalog"
	"tripplanner/internal/domain"
	"tripplanner/internal/domain/models"
	"tripplanner/internal/providers/weather"
	"tripplanner/internal/utils"
)

// CompositeHazards merges several hazard sources. It fails only when every
// source fails; duplicates across sources are dropped.
type CompositeHazards struct {
	Sources []HazardProvider
}

func (c CompositeHazards) ActiveHazards(ctx context.Context, region string) ([]models.HazardSignal, error) {
	if len(c.Sources) == 0 {
		return nil, errors.New("no hazard sources")
	}
	var (
		out  []models.HazardSignal
		errs []error
		seen = map[string]bool{}
	)
	for _, src := range c.Sources {
		hs, err := src.ActiveHazards(ctx, region)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, h := range hs {
			key := h.Provider + "|" + string(h.Type) + "|" + h.Description
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, h)
		}
	}
	if len(errs) == len(c.Sources) {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

type WeatherSource interface {
	RegionSignals(ctx context.Context, region string, cities []string) ([]models.HazardSignal, error)
}

// WeatherHazards reads live conditions for the cities configured on a region.
type WeatherHazards struct {
	Client  WeatherSource
	Catalog *catalog.Catalog
}

func (w WeatherHazards) ActiveHazards(ctx context.Context, region string) ([]models.HazardSignal, error) {
	r, ok := w.Catalog.Region(region)
	if !ok || len(r.WeatherCities) == 0 {
		return nil, nil
	}
	return w.Client.RegionSignals(ctx, region, r.WeatherCities)
}

type HazardStore interface {
	ListActive(ctx context.Context, region string) ([]models.HazardSignal, error)
	Create(ctx context.Context, h models.HazardSignal) (models.HazardSignal, error)
	Deactivate(ctx context.Context, id int64) error
	ReplaceProvider(ctx context.Context, provider string, signals []models.HazardSignal) error
}

// AlertInput is the admin payload for a manual alert.
type AlertInput struct {
	Region      string `json:"region"`
	Type        string `json:"hazard_type"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
	ExpiresAt   string `json:"expires_at"`
}

// HazardService manages the persisted safety alerts.
type HazardService struct {
	Store     HazardStore
	Weather   WeatherSource
	Catalog   *catalog.Catalog
	RequestID string
	Now       func() time.Time
}

func (s HazardService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utils.NowUTC()
}

var errNoAlertStore = domain.InternalError{Msg: "alert store not configured"}

func (s HazardService) List(ctx context.Context, region string) ([]models.HazardSignal, error) {
	if s.Store == nil {
		return nil, errNoAlertStore
	}
	region = strings.TrimSpace(region)
	if region != "" {
		if _, ok := s.Catalog.Region(region); !ok {
			return nil, domain.ValidationError{Field: "region", Msg: fmt.Sprintf("unknown region %q", region)}
		}
	}
	return s.Store.ListActive(ctx, region)
}

func (s HazardService) Create(ctx context.Context, in AlertInput) (models.HazardSignal, error) {
	if s.Store == nil {
		return models.HazardSignal{}, errNoAlertStore
	}
	region := strings.TrimSpace(in.Region)
	if _, ok := s.Catalog.Region(region); !ok {
		return models.HazardSignal{}, domain.ValidationError{Field: "region", Msg: fmt.Sprintf("unknown region %q", in.Region)}
	}
	sev, ok := domain.ParseSeverity(in.Severity)
	if !ok {
		return models.HazardSignal{}, domain.ValidationError{Field: "severity", Msg: "must be one of low, medium, high, critical"}
	}
	h := models.HazardSignal{
		Region:      region,
		Type:        domain.ParseHazardType(in.Type),
		Severity:    sev,
		Active:      true,
		Description: utils.NormalizeSpace(in.Description),
		ObservedAt:  s.now(),
		Provider:    "admin",
	}
	if raw := strings.TrimSpace(in.ExpiresAt); raw != "" {
		exp, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return models.HazardSignal{}, domain.ValidationError{Field: "expires_at", Msg: "must be RFC3339"}
		}
		if !exp.After(h.ObservedAt) {
			return models.HazardSignal{}, domain.ValidationError{Field: "expires_at", Msg: "must be in the future"}
		}
		exp = exp.UTC()
		h.ExpiresAt = &exp
	}
	created, err := s.Store.Create(ctx, h)
	if err != nil {
		return models.HazardSignal{}, err
	}
	utils.LogEvent(s.RequestID, "safety", "alert_created", fmt.Sprintf("id=%d region=%s type=%s severity=%s", created.ID, created.Region, created.Type, created.Severity))
	return created, nil
}

func (s HazardService) Deactivate(ctx context.Context, id int64) error {
	if id <= 0 {
		return domain.ValidationError{Field: "id", Msg: "must be positive"}
	}
	if s.Store == nil {
		return errNoAlertStore
	}
	if err := s.Store.Deactivate(ctx, id); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "safety", "alert_deactivated", fmt.Sprintf("id=%d", id))
	return nil
}

// Refresh replaces the weather-provided alerts with current conditions for
// every configured city. Regions whose cities could not be read keep nothing;
// the refresh fails only when no region could be read.
func (s HazardService) Refresh(ctx context.Context) (int, error) {
	if s.Weather == nil {
		return 0, domain.ValidationError{Field: "weather", Msg: "weather provider not configured"}
	}
	if s.Store == nil {
		return 0, errNoAlertStore
	}
	var (
		signals []models.HazardSignal
		read    int
		lastErr error
	)
	for region, cities := range s.Catalog.WeatherCities() {
		if len(cities) == 0 {
			continue
		}
		hs, err := s.Weather.RegionSignals(ctx, region, cities)
		if err != nil {
			lastErr = err
			utils.LogEvent(s.RequestID, "safety", "refresh_region_failed", fmt.Sprintf("region=%s err=%v", region, err))
			continue
		}
		read++
		signals = append(signals, hs...)
	}
	if read == 0 && lastErr != nil {
		return 0, domain.InternalError{Msg: "weather refresh failed", Err: lastErr}
	}
	if err := s.Store.ReplaceProvider(ctx, weather.Provider, signals); err != nil {
		return 0, err
	}
	utils.LogEvent(s.RequestID, "safety", "alerts_refreshed", fmt.Sprintf("regions=%d alerts=%d", read, len(signals)))
	return len(signals), nil
}
