package models

import "time"

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// Property is a single real-estate listing tracked through the acquisition
// lifecycle. Images[0] is the cover image.
type Property struct {
	CreatedAt       time.Time        `json:"createdAt"`
	ExactAddress    *string          `json:"exactAddress"`
	Location        *GeoPoint        `json:"location,omitempty"`
	ID              string           `json:"id"`
	FolderID        string           `json:"folderId"`
	Title           string           `json:"title"`
	URL             string           `json:"url"`
	Address         string           `json:"address"`
	Status          PropertyStatus   `json:"status"`
	Floor           string           `json:"floor"`
	Notes           string           `json:"notes"`
	Images          []string         `json:"images"`
	RenovationCosts []RenovationItem `json:"renovationCosts"`
	Price           float64          `json:"price"`
	Fees            float64          `json:"fees"`
	Sqft            float64          `json:"sqft"`
	CoveredSqft     float64          `json:"coveredSqft"`
	UncoveredSqft   float64          `json:"uncoveredSqft"`
	Environments    int              `json:"environments"`
	Rooms           int              `json:"rooms"`
	Bathrooms       int              `json:"bathrooms"`
	Toilets         int              `json:"toilets"`
	Parking         int              `json:"parking"`
	Age             int              `json:"age"`
	Rating          int              `json:"rating"`
}

// RenovationItem is an estimated renovation cost owned by one property.
type RenovationItem struct {
	ID            string  `json:"id"`
	PropertyID    string  `json:"propertyId"`
	Category      string  `json:"category"`
	Description   string  `json:"description"`
	EstimatedCost float64 `json:"estimatedCost"`
}

// ClampRating forces r into the 1..5 range.
func ClampRating(r int) int {
	if r < MinRating {
		return MinRating
	}
	if r > MaxRating {
		return MaxRating
	}
	return r
}

// CoverImage returns the first image, or "" when there are none.
func (p *Property) CoverImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// RenovationTotal sums the estimated renovation costs.
func (p *Property) RenovationTotal() float64 {
	var total float64
	for _, item := range p.RenovationCosts {
		total += item.EstimatedCost
	}
	return total
}

// HasExactAddress reports whether a non-empty exact address is set.
func (p *Property) HasExactAddress() bool {
	return p.ExactAddress != nil && *p.ExactAddress != ""
}
