package geocoding

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/stwalsh4118/acquire/internal/logger"
	"github.com/stwalsh4118/acquire/internal/models"
)

// Status is the verdict of an address validation.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusValidating Status = "validating"
	StatusValid      Status = "valid"
	StatusInvalid    Status = "invalid"
)

// MinQueryLength is the shortest trimmed input that triggers a lookup.
const MinQueryLength = 4

// minDisplayLength is the shortest composed display accepted as valid.
const minDisplayLength = 4

// Result is the outcome of validating one address.
type Result struct {
	Status            Status           `json:"status"`
	NormalizedDisplay string           `json:"normalizedDisplay,omitempty"`
	Location          *models.GeoPoint `json:"location,omitempty"`
}

// Checker validates a single address.
type Checker interface {
	Validate(ctx context.Context, address string) Result
}

// Validator turns geocoder candidates into verdicts.
type Validator struct {
	geocoder Geocoder
	log      *logger.Logger
}

// NewValidator creates a Validator over the given geocoder.
func NewValidator(g Geocoder, log *logger.Logger) *Validator {
	return &Validator{geocoder: g, log: log.WithComponent("address_validator")}
}

// IsIdle reports whether address is too short to be looked up.
func IsIdle(address string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(address)) < MinQueryLength
}

// Validate looks the address up and returns a verdict. Lookup failures
// yield StatusInvalid.
func (v *Validator) Validate(ctx context.Context, address string) Result {
	if IsIdle(address) {
		return Result{Status: StatusIdle}
	}

	features, err := v.geocoder.Search(ctx, address)
	if err != nil {
		v.log.Warn("Address lookup failed", logger.Fields{"error": err.Error()})
		return Result{Status: StatusInvalid}
	}
	if len(features) == 0 {
		return Result{Status: StatusInvalid}
	}

	first := features[0]
	display := ComposeDisplay(first.Properties)
	if utf8.RuneCountInString(display) < minDisplayLength {
		return Result{Status: StatusInvalid}
	}

	result := Result{Status: StatusValid, NormalizedDisplay: display}
	if coords := first.Geometry.Coordinates; len(coords) >= 2 {
		point := models.GeoPoint{Lng: coords[0], Lat: coords[1]}
		if point.Valid() {
			result.Location = &point
		}
	}
	return result
}
