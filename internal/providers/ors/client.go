// Package ors is a minimal OpenRouteService directions client.
package ors

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

	"tripplanner/internal/domain/models"

	"golang.org/x/time/rate"
)

var (
	ErrNotConfigured   = errors.New("ors: api key not configured")
	ErrRateLimited     = errors.New("ors: local quota exhausted")
	ErrUnsupportedArea = errors.New("ors: no road data for area")
	ErrMalformed       = errors.New("ors: malformed response")
)

// StatusError is a non-2xx answer from the API.
type StatusError struct {
	Code int
	Body string
}

func (e StatusError) Error() string {
	return fmt.Sprintf("ors: status %d: %s", e.Code, e.Body)
}

// Directions is the driving summary between two points.
type Directions struct {
	DistanceKM float64
	Hours      float64
}

type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
	Limiter *rate.Limiter
	// Routable reports whether the provider has road data for a place id.
	Routable func(placeID string) bool
}

// New builds a client with a per-minute token bucket.
func New(baseURL, apiKey string, timeout time.Duration, perMinute int) *Client {
	if perMinute <= 0 {
		perMinute = 40
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: timeout},
		Limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
	}
}

type directionsResponse struct {
	Features []struct {
		Properties struct {
			Summary struct {
				Distance *float64 `json:"distance"`
				Duration *float64 `json:"duration"`
			} `json:"summary"`
		} `json:"properties"`
	} `json:"features"`
}

// Route asks for driving directions. Unsupported places and an exhausted
// quota fail fast without a network call.
func (c *Client) Route(ctx context.Context, from, to models.Place) (Directions, error) {
	if c == nil || strings.TrimSpace(c.APIKey) == "" {
		return Directions{}, ErrNotConfigured
	}
	if c.Routable != nil && (!c.Routable(from.ID) || !c.Routable(to.ID)) {
		return Directions{}, ErrUnsupportedArea
	}
	if c.Limiter != nil && !c.Limiter.Allow() {
		return Directions{}, ErrRateLimited
	}

	q := url.Values{}
	q.Set("api_key", c.APIKey)
	q.Set("start", fmt.Sprintf("%.4f,%.4f", from.Lon, from.Lat))
	q.Set("end", fmt.Sprintf("%.4f,%.4f", to.Lon, to.Lat))
	endpoint := c.BaseURL + "/v2/directions/driving-car?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Directions{}, err
	}
	req.Header.Set("Accept", "application/json, application/geo+json")

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return Directions{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Directions{}, StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var payload directionsResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(&payload); err != nil {
		return Directions{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(payload.Features) == 0 {
		return Directions{}, fmt.Errorf("%w: no features", ErrMalformed)
	}
	sum := payload.Features[0].Properties.Summary
	if sum.Distance == nil || sum.Duration == nil || *sum.Distance <= 0 {
		return Directions{}, fmt.Errorf("%w: missing summary", ErrMalformed)
	}
	return Directions{
		DistanceKM: *sum.Distance / 1000,
		Hours:      *sum.Duration / 3600,
	}, nil
}
