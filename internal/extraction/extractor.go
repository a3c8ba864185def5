// Package extraction asks a language model to turn a listing URL into
// structured property fields.
package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/stwalsh4118/acquire/internal/config"
	"github.com/stwalsh4118/acquire/internal/logger"
)

var (
	// ErrExtractionFailed covers transport errors and unusable responses.
	ErrExtractionFailed = errors.New("listing extraction failed")

	// ErrExtractionDisabled is returned when no API key is configured.
	ErrExtractionDisabled = errors.New("listing extraction disabled")
)

const systemPrompt = `You extract real-estate listing data. Return ONLY a JSON object with keys:
title (string), price (number), rooms (number), bathrooms (number), location (string),
sqft (number), dealScore (number 0-100),
analysis (object with pros (array of strings), cons (array of strings), strategy (string)).
Use 0 or "" for anything you cannot determine. No prose, no markdown.`

// Analysis is the model's qualitative take on the listing.
type Analysis struct {
	Pros     []string `json:"pros"`
	Cons     []string `json:"cons"`
	Strategy string   `json:"strategy"`
}

// Listing is the structured candidate returned by the model. Missing
// fields are zero.
type Listing struct {
	Title     string   `json:"title"`
	Location  string   `json:"location"`
	Analysis  Analysis `json:"analysis"`
	Price     Number   `json:"price"`
	Rooms     Number   `json:"rooms"`
	Bathrooms Number   `json:"bathrooms"`
	Sqft      Number   `json:"sqft"`
	DealScore Number   `json:"dealScore"`
}

// Empty reports whether the model returned nothing usable.
func (l *Listing) Empty() bool {
	return l.Title == "" && l.Location == "" &&
		l.Price == 0 && l.Rooms == 0 && l.Bathrooms == 0 && l.Sqft == 0 &&
		len(l.Analysis.Pros) == 0 && len(l.Analysis.Cons) == 0 && l.Analysis.Strategy == ""
}

// Number accepts JSON numbers and numeric strings such as "USD 120,000"
// or "USD 1.200.000". More than one dot marks thousands separators.
// Anything unparseable decodes as 0.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*n = Number(f)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*n = 0
		return nil
	}
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)
	if strings.Count(cleaned, ".") > 1 {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		f = 0
	}
	*n = Number(f)
	return nil
}

// Completer sends one system+user exchange to a chat model.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

type openAICompleter struct {
	client openai.Client
	model  string
}

func (c *openAICompleter) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(0.2),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion")
	}
	return resp.Choices[0].Message.Content, nil
}

// Extractor turns listing URLs into Listings.
type Extractor struct {
	completer Completer
	timeout   time.Duration
	log       *logger.Logger
}

// New builds an Extractor from config. Without an API key the extractor
// is disabled.
func New(cfg config.ExtractionConfig, log *logger.Logger) *Extractor {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return NewWithCompleter(nil, cfg.Timeout, log)
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	completer := &openAICompleter{client: openai.NewClient(opts...), model: cfg.Model}
	return NewWithCompleter(completer, cfg.Timeout, log)
}

// NewWithCompleter builds an Extractor over any Completer. A nil completer
// yields a disabled extractor.
func NewWithCompleter(c Completer, timeout time.Duration, log *logger.Logger) *Extractor {
	return &Extractor{completer: c, timeout: timeout, log: log.WithComponent("listing_extractor")}
}

// Enabled reports whether a model is configured.
func (e *Extractor) Enabled() bool {
	return e.completer != nil
}

// Extract asks the model for the listing at url. description is optional
// pasted listing text.
func (e *Extractor) Extract(ctx context.Context, url, description string) (*Listing, error) {
	if e.completer == nil {
		return nil, ErrExtractionDisabled
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	raw, err := e.completer.Complete(ctx, systemPrompt, buildPrompt(url, description))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	listing, err := parseListing(raw)
	if err != nil {
		e.log.Debug("Unusable extraction response", logger.Fields{"url": url, "error": err.Error()})
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	return listing, nil
}

func buildPrompt(url, description string) string {
	var b strings.Builder
	b.WriteString("Listing URL: ")
	b.WriteString(url)
	if d := strings.TrimSpace(description); d != "" {
		b.WriteString("\n\nListing text:\n")
		b.WriteString(d)
	}
	return b.String()
}

func parseListing(raw string) (*Listing, error) {
	text := stripFences(raw)
	if text == "" {
		return nil, fmt.Errorf("empty response")
	}

	// Models sometimes wrap the object in prose; keep the outermost braces.
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in response")
	}

	var listing Listing
	if err := json.Unmarshal([]byte(text[start:end+1]), &listing); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	listing.Title = strings.TrimSpace(listing.Title)
	listing.Location = strings.TrimSpace(listing.Location)
	if listing.Empty() {
		return nil, fmt.Errorf("empty object")
	}
	return &listing, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
