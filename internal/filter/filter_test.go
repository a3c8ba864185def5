package filter

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/acquire/internal/models"
)

var t0 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func ptr(f float64) *float64 { return &f }

func sample() []models.Property {
	return []models.Property{
		{ID: "p1", FolderID: "A", Title: "PH Palermo", Address: "Gorriti 4000", Price: 120000, Sqft: 80, Rooms: 3, Rating: 4, Status: models.PropertyWishlist, CreatedAt: t0},
		{ID: "p2", FolderID: "A", Title: "Monoambiente", Address: "Caballito", Notes: "needs roof work", Price: 60000, Sqft: 30, Rooms: 0, Rating: 2, Status: models.PropertyContacted, CreatedAt: t0.Add(time.Hour)},
		{ID: "p3", FolderID: "B", Title: "Casa con jardín", Address: "Vicente López", Price: 250000, Sqft: 200, Rooms: 5, Rating: 5, Status: models.PropertyVisited, CreatedAt: t0.Add(2 * time.Hour)},
		{ID: "p4", FolderID: "B", Title: "Depto 2 amb", Address: "Palermo Hollywood", Price: 120000, Sqft: 50, Rooms: 2, Rating: 4, Status: models.PropertyWishlist, CreatedAt: t0.Add(3 * time.Hour)},
	}
}

func ids(props []models.Property) []string {
	out := make([]string, len(props))
	for i, p := range props {
		out[i] = p.ID
	}
	return out
}

func TestApply(t *testing.T) {
	tests := []struct {
		name string
		q    Query
		want []string
	}{
		{name: "no query sorts newest first", q: Query{}, want: []string{"p4", "p3", "p2", "p1"}},
		{name: "active folder", q: Query{ActiveFolderID: "A", Sort: SortOldest}, want: []string{"p1", "p2"}},
		{name: "text matches title or address case-insensitively", q: Query{Text: "PALERMO", Sort: SortOldest}, want: []string{"p1", "p4"}},
		{name: "text matches notes", q: Query{Text: "roof"}, want: []string{"p2"}},
		{name: "max price", q: Query{Filters: Filters{MaxPrice: ptr(120000)}, Sort: SortOldest}, want: []string{"p1", "p2", "p4"}},
		{name: "zero minimum keeps zero-room listings", q: Query{Filters: Filters{MinRooms: ptr(0)}, Sort: SortOldest}, want: []string{"p1", "p2", "p3", "p4"}},
		{name: "min rooms", q: Query{Filters: Filters{MinRooms: ptr(3)}, Sort: SortOldest}, want: []string{"p1", "p3"}},
		{name: "status exact match", q: Query{Filters: Filters{Status: models.PropertyWishlist}, Sort: SortOldest}, want: []string{"p1", "p4"}},
		{name: "min rating", q: Query{Filters: Filters{MinRating: 5}}, want: []string{"p3"}},
		{name: "price ascending is stable on ties", q: Query{Sort: SortPriceAsc}, want: []string{"p2", "p1", "p4", "p3"}},
		{name: "price descending is stable on ties", q: Query{Sort: SortPriceDesc}, want: []string{"p3", "p1", "p4", "p2"}},
		{name: "sqft descending", q: Query{Sort: SortSqftDesc}, want: []string{"p3", "p1", "p4", "p2"}},
		{name: "rating descending", q: Query{Sort: SortRatingDesc}, want: []string{"p3", "p1", "p4", "p2"}},
		{name: "combined", q: Query{ActiveFolderID: "B", Text: "palermo", Filters: Filters{MinSqft: ptr(40)}}, want: []string{"p4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Apply(sample(), tt.q)))
		})
	}
}

func TestApply_SubsetAndIdempotent(t *testing.T) {
	queries := []Query{
		{},
		{Text: "a", Sort: SortPriceAsc},
		{ActiveFolderID: "B", Filters: Filters{MinSqft: ptr(10), MinRating: 3}, Sort: SortRatingDesc},
		{Filters: Filters{MaxPrice: ptr(1)}},
		{Text: "zzz-no-match"},
	}
	input := sample()
	byID := map[string]models.Property{}
	for _, p := range input {
		byID[p.ID] = p
	}

	for _, q := range queries {
		once := Apply(input, q)
		for _, p := range once {
			original, ok := byID[p.ID]
			require.True(t, ok, "invented record %s", p.ID)
			assert.Equal(t, original.Title, p.Title)
		}
		assert.Equal(t, ids(once), ids(Apply(once, q)))
	}
}

func TestApply_DoesNotModifyInput(t *testing.T) {
	input := sample()
	before := ids(input)
	Apply(input, Query{Sort: SortPriceDesc})
	assert.Equal(t, before, ids(input))
}

func TestActiveCount(t *testing.T) {
	assert.Equal(t, 0, ActiveCount(Filters{}))
	assert.Equal(t, 1, ActiveCount(Filters{MinRooms: ptr(0)}))
	assert.Equal(t, 4, ActiveCount(Filters{
		MaxPrice:  ptr(100),
		MinSqft:   ptr(20),
		Status:    models.PropertyOffered,
		MinRating: 3,
	}))
}

func TestFromValues(t *testing.T) {
	v := url.Values{}
	v.Set("folderId", "A")
	v.Set("q", "palermo")
	v.Set("sort", "price-asc")
	v.Set("maxPrice", "150000")
	v.Set("minRooms", "0")
	v.Set("minSqft", "")
	v.Set("status", "Visited")
	v.Set("minRating", "3")

	q, err := FromValues(v)
	require.NoError(t, err)
	assert.Equal(t, "A", q.ActiveFolderID)
	assert.Equal(t, SortPriceAsc, q.Sort)
	require.NotNil(t, q.Filters.MaxPrice)
	assert.Equal(t, 150000.0, *q.Filters.MaxPrice)
	require.NotNil(t, q.Filters.MinRooms)
	assert.Equal(t, 0.0, *q.Filters.MinRooms)
	assert.Nil(t, q.Filters.MinSqft)
	assert.Equal(t, models.PropertyVisited, q.Filters.Status)
	assert.Equal(t, 3, q.Filters.MinRating)
	assert.Equal(t, 4, ActiveCount(q.Filters))
}

func TestFromValues_Rejects(t *testing.T) {
	for _, bad := range []url.Values{
		{"sort": {"cheapest"}},
		{"maxPrice": {"lots"}},
		{"status": {"Sold"}},
		{"minRating": {"9"}},
	} {
		_, err := FromValues(bad)
		assert.Error(t, err, "%v", bad)
	}
}
