// Package weather reads current conditions from OpenWeatherMap and turns them
// into hazard signals.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tripplanner/internal/domain"
	"tripplanner/internal/domain/models"
)

const Provider = "openweathermap"

var (
	ErrNotConfigured = errors.New("weather: api key not configured")
	ErrMalformed     = errors.New("weather: malformed response")
)

type StatusError struct {
	Code int
	City string
}

func (e StatusError) Error() string {
	return fmt.Sprintf("weather: status %d for %s", e.Code, e.City)
}

// Conditions is the subset of the current-weather payload the planner reads.
type Conditions struct {
	City     string
	Main     string
	Rain1hMM float64
	WindMS   float64
	TempC    float64
	Observed time.Time
}

type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
	Now     func() time.Time
}

func New(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now().UTC()
}

type currentResponse struct {
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Rain struct {
		OneHour float64 `json:"1h"`
	} `json:"rain"`
	Dt int64 `json:"dt"`
}

// Current fetches the current conditions of a Pakistani city.
func (c *Client) Current(ctx context.Context, city string) (Conditions, error) {
	if c == nil || strings.TrimSpace(c.APIKey) == "" {
		return Conditions{}, ErrNotConfigured
	}
	q := url.Values{}
	q.Set("q", city+",PK")
	q.Set("appid", c.APIKey)
	q.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/data/2.5/weather?"+q.Encode(), nil)
	if err != nil {
		return Conditions{}, err
	}
	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return Conditions{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 512))
		return Conditions{}, StatusError{Code: resp.StatusCode, City: city}
	}

	var payload currentResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&payload); err != nil {
		return Conditions{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	out := Conditions{
		City:     city,
		Rain1hMM: payload.Rain.OneHour,
		WindMS:   payload.Wind.Speed,
		TempC:    payload.Main.Temp,
		Observed: c.now(),
	}
	if len(payload.Weather) > 0 {
		out.Main = payload.Weather[0].Main
	}
	if payload.Dt > 0 {
		out.Observed = time.Unix(payload.Dt, 0).UTC()
	}
	return out, nil
}

// Signals converts conditions into hazard signals for a region. Clear weather
// yields none.
func Signals(region string, cond Conditions) []models.HazardSignal {
	var out []models.HazardSignal
	add := func(t domain.HazardType, sev domain.Severity, desc string) {
		out = append(out, models.HazardSignal{
			Region:      region,
			Type:        t,
			Severity:    sev,
			Active:      true,
			Description: desc,
			ObservedAt:  cond.Observed,
			Provider:    Provider,
		})
	}

	switch {
	case cond.Rain1hMM > 10:
		add(domain.HazardFlood, domain.SeverityHigh, fmt.Sprintf("Heavy rain in %s (%.1f mm/h)", cond.City, cond.Rain1hMM))
	case cond.Rain1hMM > 5:
		add(domain.HazardFlood, domain.SeverityMedium, fmt.Sprintf("Moderate rain in %s (%.1f mm/h)", cond.City, cond.Rain1hMM))
	}
	switch strings.ToLower(cond.Main) {
	case "fog", "mist", "haze":
		add(domain.HazardFog, domain.SeverityMedium, fmt.Sprintf("Low visibility in %s", cond.City))
	case "snow":
		add(domain.HazardSnow, domain.SeverityHigh, fmt.Sprintf("Snowfall in %s", cond.City))
	}
	if cond.WindMS > 20 {
		add(domain.HazardOther, domain.SeverityMedium, fmt.Sprintf("Strong winds in %s (%.0f m/s)", cond.City, cond.WindMS))
	}
	return out
}

// RegionSignals fetches every city of a region and merges the signals. It
// fails only when no city could be read.
func (c *Client) RegionSignals(ctx context.Context, region string, cities []string) ([]models.HazardSignal, error) {
	var (
		out     []models.HazardSignal
		lastErr error
		read    int
	)
	for _, city := range cities {
		cond, err := c.Current(ctx, city)
		if err != nil {
			lastErr = err
			continue
		}
		read++
		out = append(out, Signals(region, cond)...)
	}
	if read == 0 && lastErr != nil {
		return nil, lastErr
	}
	return out, nil
}
