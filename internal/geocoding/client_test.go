package geocoding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/acquire/internal/config"
	"github.com/stwalsh4118/acquire/internal/logger"
)

const photonResponse = `{
	"features": [{
		"properties": {"name": "Edificio Sol", "street": "Avenida Santa Fe", "housenumber": "1234",
			"district": "Palermo", "city": "Buenos Aires", "state": "CABA", "country": "Argentina"},
		"geometry": {"coordinates": [-58.41, -34.59]}
	}]
}`

// memCache is an in-process cache.Cache for tests.
type memCache struct {
	data map[string][]byte
}

func (m *memCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (m *memCache) Set(_ context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	return nil
}

func TestClient_SearchSendsQueryAndLimit(t *testing.T) {
	var gotQuery, gotLimit string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotLimit = r.URL.Query().Get("limit")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(photonResponse))
	}))
	defer server.Close()

	client := NewClient(config.GeocoderConfig{URL: server.URL, Timeout: time.Second}, nil, logger.Nop())

	features, err := client.Search(context.Background(), "Santa Fe 1234")
	require.NoError(t, err)
	require.Len(t, features, 1)
	assert.Equal(t, "Santa Fe 1234", gotQuery)
	assert.Equal(t, "1", gotLimit)
	assert.Equal(t, "Avenida Santa Fe", features[0].Properties.Street)
	assert.Equal(t, []float64{-58.41, -34.59}, features[0].Geometry.Coordinates)
}

func TestClient_SearchNon2xxIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(config.GeocoderConfig{URL: server.URL, Timeout: time.Second}, nil, logger.Nop())

	_, err := client.Search(context.Background(), "Santa Fe 1234")
	assert.Error(t, err)
}

func TestClient_SearchMalformedBodyIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	}))
	defer server.Close()

	client := NewClient(config.GeocoderConfig{URL: server.URL, Timeout: time.Second}, nil, logger.Nop())

	_, err := client.Search(context.Background(), "Santa Fe 1234")
	assert.Error(t, err)
}

func TestClient_SearchUsesCache(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte(photonResponse))
	}))
	defer server.Close()

	c := &memCache{data: map[string][]byte{}}
	client := NewClient(config.GeocoderConfig{URL: server.URL, Timeout: time.Second}, c, logger.Nop())

	for i := 0; i < 3; i++ {
		features, err := client.Search(context.Background(), "Santa Fe 1234")
		require.NoError(t, err)
		require.Len(t, features, 1)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestComposeDisplay(t *testing.T) {
	tests := []struct {
		name  string
		props FeatureProperties
		want  string
	}{
		{
			name:  "street preferred over name, district over city, state over country",
			props: FeatureProperties{Name: "Edificio", Street: "Santa Fe", HouseNumber: "1234", District: "Palermo", City: "CABA", State: "Buenos Aires", Country: "AR"},
			want:  "Santa Fe, 1234, Palermo, Buenos Aires",
		},
		{
			name:  "fallbacks used when primaries are empty",
			props: FeatureProperties{Name: "Obelisco", City: "Buenos Aires", Country: "Argentina"},
			want:  "Obelisco, Buenos Aires, Argentina",
		},
		{
			name:  "empty parts are skipped",
			props: FeatureProperties{Country: "AR"},
			want:  "AR",
		},
		{
			name:  "nothing at all",
			props: FeatureProperties{},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComposeDisplay(tt.props))
		})
	}
}
