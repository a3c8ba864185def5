// Package metadata resolves a listing URL into a best-effort title and
// screenshot.
package metadata

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

// Metadata is what is known about a listing page. Fallback is set when the
// preview service could not be used and Screenshot is the generated one.
type Metadata struct {
	Title       string `json:"title"`
	Screenshot  string `json:"screenshot"`
	Description string `json:"description,omitempty"`
	Publisher   string `json:"publisher,omitempty"`
	Fallback    bool   `json:"fallback"`
}

type previewResponse struct {
	Status string `json:"status"`
	Data   struct {
		Title      string `json:"title"`
		Screenshot struct {
			URL string `json:"url"`
		} `json:"screenshot"`
		Image struct {
			URL string `json:"url"`
		} `json:"image"`
		Description string `json:"description"`
		Publisher   string `json:"publisher"`
	} `json:"data"`
}

// Fetcher queries a preview API and falls back to a generated screenshot.
type Fetcher struct {
	httpClient *http.Client
	previewURL string
	mshotsHost string
	width      int
	cache      cache.Cache
	log        *logger.Logger
}

// NewFetcher creates a Fetcher. A nil cache disables caching.
func NewFetcher(cfg config.MetadataConfig, c cache.Cache, log *logger.Logger) *Fetcher {
	if c == nil {
		c = cache.Nop{}
	}
	return &Fetcher{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		previewURL: cfg.PreviewURL,
		mshotsHost: cfg.MshotsHost,
		width:      cfg.ScreenshotWidth,
		cache:      c,
		log:        log.WithComponent("metadata_fetcher"),
	}
}

// FallbackScreenshot returns the generated screenshot URL for pageURL.
// It depends on nothing but its input.
func (f *Fetcher) FallbackScreenshot(pageURL string) string {
	return FallbackScreenshot(f.mshotsHost, f.width, pageURL)
}

// FallbackScreenshot builds https://<host>/mshots/v1/<escaped url>?w=<width>.
func FallbackScreenshot(host string, width int, pageURL string) string {
	return fmt.Sprintf("https://%s/mshots/v1/%s?w=%d", host, url.QueryEscape(pageURL), width)
}

// Fetch never fails: any problem with the preview service yields the
// fallback screenshot and an empty title.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) Metadata {
	key := cache.Key("preview", pageURL)

	var cached Metadata
	found, err := f.cache.Get(ctx, key, &cached)
	if err != nil {
		f.log.Warn("Preview cache read failed", logger.Fields{"error": err.Error()})
	}
	if found {
		return cached
	}

	md, err := f.preview(ctx, pageURL)
	if err != nil {
		f.log.Warn("Preview fetch failed, using fallback screenshot", logger.Fields{
			"url":   pageURL,
			"error": err.Error(),
		})
		return Metadata{Screenshot: f.FallbackScreenshot(pageURL), Fallback: true}
	}

	if err := f.cache.Set(ctx, key, md); err != nil {
		f.log.Warn("Preview cache write failed", logger.Fields{"error": err.Error()})
	}
	return md
}

func (f *Fetcher) preview(ctx context.Context, pageURL string) (Metadata, error) {
	if f.previewURL == "" {
		return Metadata{}, fmt.Errorf("preview service not configured")
	}

	endpoint, err := url.Parse(f.previewURL)
	if err != nil {
		return Metadata{}, fmt.Errorf("invalid preview url: %w", err)
	}
	params := endpoint.Query()
	params.Set("url", pageURL)
	params.Set("screenshot", "true")
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to build preview request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return Metadata{}, fmt.Errorf("preview request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Metadata{}, fmt.Errorf("preview service returned status %d", resp.StatusCode)
	}

	var body previewResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Metadata{}, fmt.Errorf("failed to decode preview response: %w", err)
	}
	if body.Status != "success" {
		return Metadata{}, fmt.Errorf("preview service reported status %q", body.Status)
	}

	md := Metadata{
		Title:       strings.TrimSpace(body.Data.Title),
		Screenshot:  body.Data.Screenshot.URL,
		Description: body.Data.Description,
		Publisher:   body.Data.Publisher,
	}
	if md.Screenshot == "" {
		md.Screenshot = body.Data.Image.URL
	}
	if md.Screenshot == "" {
		md.Screenshot = f.FallbackScreenshot(pageURL)
		md.Fallback = true
	}
	return md, nil
}
