// Package filter narrows and orders a property list for dashboard views.
// Everything here is pure: the input slice is never modified.
package filter

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/stwalsh4118/acquire/internal/models"
)

// SortKey selects the ordering of the filtered list.
type SortKey string

const (
	SortNewest     SortKey = "newest"
	SortOldest     SortKey = "oldest"
	SortPriceAsc   SortKey = "price-asc"
	SortPriceDesc  SortKey = "price-desc"
	SortSqftDesc   SortKey = "sqft-desc"
	SortRatingDesc SortKey = "rating-desc"
)

// Valid reports whether k is a known sort key.
func (k SortKey) Valid() bool {
	switch k {
	case SortNewest, SortOldest, SortPriceAsc, SortPriceDesc, SortSqftDesc, SortRatingDesc:
		return true
	}
	return false
}

// Filters are the structured filters. A nil numeric filter is unset, so
// zero is a usable threshold.
type Filters struct {
	MaxPrice        *float64              `json:"maxPrice,omitempty"`
	MinSqft         *float64              `json:"minSqft,omitempty"`
	MinRooms        *float64              `json:"minRooms,omitempty"`
	MinBathrooms    *float64              `json:"minBathrooms,omitempty"`
	MinEnvironments *float64              `json:"minEnvironments,omitempty"`
	MinParking      *float64              `json:"minParking,omitempty"`
	Status          models.PropertyStatus `json:"status,omitempty"`
	MinRating       int                   `json:"minRating,omitempty"`
}

// Query is everything that shapes one view.
type Query struct {
	ActiveFolderID string  `json:"activeFolderId,omitempty"`
	Text           string  `json:"text,omitempty"`
	Filters        Filters `json:"filters"`
	Sort           SortKey `json:"sort,omitempty"`
}

// Apply returns the properties matching q in the requested order. Ties keep
// their input order. An empty sort key means newest first.
func Apply(props []models.Property, q Query) []models.Property {
	text := strings.ToLower(strings.TrimSpace(q.Text))

	out := make([]models.Property, 0, len(props))
	for _, p := range props {
		if q.ActiveFolderID != "" && p.FolderID != q.ActiveFolderID {
			continue
		}
		if text != "" && !matchesText(p, text) {
			continue
		}
		if !q.Filters.matchNumeric(p) {
			continue
		}
		if q.Filters.Status != "" && p.Status != q.Filters.Status {
			continue
		}
		if q.Filters.MinRating > 0 && p.Rating < q.Filters.MinRating {
			continue
		}
		out = append(out, p)
	}

	if less := lessFor(q.Sort); less != nil {
		sort.SliceStable(out, func(i, j int) bool { return less(&out[i], &out[j]) })
	}
	return out
}

func matchesText(p models.Property, text string) bool {
	return strings.Contains(strings.ToLower(p.Title), text) ||
		strings.Contains(strings.ToLower(p.Address), text) ||
		strings.Contains(strings.ToLower(p.Notes), text)
}

func (f Filters) matchNumeric(p models.Property) bool {
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	minimums := []struct {
		min   *float64
		value float64
	}{
		{f.MinSqft, p.Sqft},
		{f.MinRooms, float64(p.Rooms)},
		{f.MinBathrooms, float64(p.Bathrooms)},
		{f.MinEnvironments, float64(p.Environments)},
		{f.MinParking, float64(p.Parking)},
	}
	for _, m := range minimums {
		if m.min != nil && m.value < *m.min {
			return false
		}
	}
	return true
}

func lessFor(key SortKey) func(a, b *models.Property) bool {
	switch key {
	case SortNewest, "":
		return func(a, b *models.Property) bool { return a.CreatedAt.After(b.CreatedAt) }
	case SortOldest:
		return func(a, b *models.Property) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case SortPriceAsc:
		return func(a, b *models.Property) bool { return a.Price < b.Price }
	case SortPriceDesc:
		return func(a, b *models.Property) bool { return a.Price > b.Price }
	case SortSqftDesc:
		return func(a, b *models.Property) bool { return a.Sqft > b.Sqft }
	case SortRatingDesc:
		return func(a, b *models.Property) bool { return a.Rating > b.Rating }
	}
	return nil
}

// ActiveCount is the number of structured filters that are set.
func ActiveCount(f Filters) int {
	n := 0
	for _, v := range []*float64{f.MaxPrice, f.MinSqft, f.MinRooms, f.MinBathrooms, f.MinEnvironments, f.MinParking} {
		if v != nil {
			n++
		}
	}
	if f.Status != "" {
		n++
	}
	if f.MinRating > 0 {
		n++
	}
	return n
}

// FromValues reads a Query from URL query parameters. Blank parameters are
// unset.
func FromValues(v url.Values) (Query, error) {
	q := Query{
		ActiveFolderID: strings.TrimSpace(v.Get("folderId")),
		Text:           v.Get("q"),
		Sort:           SortKey(strings.TrimSpace(v.Get("sort"))),
	}
	if q.Sort != "" && !q.Sort.Valid() {
		return Query{}, fmt.Errorf("unknown sort %q", q.Sort)
	}

	numeric := []struct {
		name string
		dest **float64
	}{
		{"maxPrice", &q.Filters.MaxPrice},
		{"minSqft", &q.Filters.MinSqft},
		{"minRooms", &q.Filters.MinRooms},
		{"minBathrooms", &q.Filters.MinBathrooms},
		{"minEnvironments", &q.Filters.MinEnvironments},
		{"minParking", &q.Filters.MinParking},
	}
	for _, n := range numeric {
		raw := strings.TrimSpace(v.Get(n.name))
		if raw == "" {
			continue
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Query{}, fmt.Errorf("%s must be a number", n.name)
		}
		*n.dest = &f
	}

	if status := strings.TrimSpace(v.Get("status")); status != "" {
		q.Filters.Status = models.PropertyStatus(status)
		if !q.Filters.Status.Valid() {
			return Query{}, fmt.Errorf("unknown status %q", status)
		}
	}
	if raw := strings.TrimSpace(v.Get("minRating")); raw != "" {
		r, err := strconv.Atoi(raw)
		if err != nil || r < 0 || r > models.MaxRating {
			return Query{}, fmt.Errorf("minRating must be between 0 and %d", models.MaxRating)
		}
		q.Filters.MinRating = r
	}
	return q, nil
}
