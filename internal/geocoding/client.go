// Package geocoding resolves free-text addresses against a Photon-style
// geocoder and turns the first candidate into a validity verdict.
package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/stwalsh4118/acquire/internal/cache"
	"github.com/stwalsh4118/acquire/internal/config"
	"github.com/stwalsh4118/acquire/internal/logger"
)

// FeatureProperties are the address parts of a geocoder candidate.
type FeatureProperties struct {
	Name        string `json:"name"`
	Street      string `json:"street"`
	HouseNumber string `json:"housenumber"`
	District    string `json:"district"`
	City        string `json:"city"`
	State       string `json:"state"`
	Country     string `json:"country"`
}

// Feature is one geocoder candidate. Coordinates are [lng, lat].
type Feature struct {
	Properties FeatureProperties `json:"properties"`
	Geometry   struct {
		Coordinates []float64 `json:"coordinates"`
	} `json:"geometry"`
}

type featureCollection struct {
	Features []Feature `json:"features"`
}

// Geocoder looks up candidates for a free-text query.
type Geocoder interface {
	Search(ctx context.Context, query string) ([]Feature, error)
}

// Client is an HTTP Geocoder for Photon-compatible APIs.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cache      cache.Cache
	log        *logger.Logger
}

// NewClient creates a geocoder client. A nil cache disables caching.
func NewClient(cfg config.GeocoderConfig, c cache.Cache, log *logger.Logger) *Client {
	if c == nil {
		c = cache.Nop{}
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.URL,
		cache:      c,
		log:        log.WithComponent("geocoder"),
	}
}

// Search returns at most one candidate for query.
func (c *Client) Search(ctx context.Context, query string) ([]Feature, error) {
	key := cache.Key("geocode", query)

	var cached []Feature
	found, err := c.cache.Get(ctx, key, &cached)
	if err != nil {
		c.log.Warn("Geocode cache read failed", logger.Fields{"error": err.Error()})
	}
	if found {
		return cached, nil
	}

	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid geocoder url: %w", err)
	}
	params := endpoint.Query()
	params.Set("q", query)
	params.Set("limit", "1")
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocoder request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoder request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	var fc featureCollection
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		return nil, fmt.Errorf("failed to decode geocoder response: %w", err)
	}

	if err := c.cache.Set(ctx, key, fc.Features); err != nil {
		c.log.Warn("Geocode cache write failed", logger.Fields{"error": err.Error()})
	}
	return fc.Features, nil
}

// ComposeDisplay joins the non-empty parts of (street or name, house
// number, district or city, state or country) with ", ".
func ComposeDisplay(p FeatureProperties) string {
	parts := []string{
		firstNonEmpty(p.Street, p.Name),
		strings.TrimSpace(p.HouseNumber),
		firstNonEmpty(p.District, p.City),
		firstNonEmpty(p.State, p.Country),
	}

	kept := parts[:0]
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, ", ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
