package models

import (
	"database/sql/driver"
	"encoding/json"
	"testing"
)

func TestGeoPointImplementsInterfaces(t *testing.T) {
	var _ driver.Valuer = GeoPoint{}

	var p GeoPoint
	var scanner interface{} = &p
	if _, ok := scanner.(interface{ Scan(interface{}) error }); !ok {
		t.Error("GeoPoint does not implement sql.Scanner interface")
	}
}

func TestGeoPointValue(t *testing.T) {
	val, err := GeoPoint{Lng: -58.38, Lat: -34.6}.Value()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var geom map[string]interface{}
	if err := json.Unmarshal([]byte(val.(string)), &geom); err != nil {
		t.Fatalf("Value() did not return valid JSON: %v", err)
	}
	if geom["type"] != "Point" {
		t.Errorf("expected type=Point, got %v", geom["type"])
	}
	coords := geom["coordinates"].([]interface{})
	if coords[0].(float64) != -58.38 {
		t.Errorf("expected longitude first, got %v", coords)
	}
}

func TestGeoPointScan(t *testing.T) {
	tests := []struct {
		name      string
		input     interface{}
		wantError bool
		wantLat   float64
	}{
		{name: "nil value", input: nil},
		{name: "bytes", input: []byte(`{"type":"Point","coordinates":[-58.38,-34.6]}`), wantLat: -34.6},
		{name: "string", input: `{"type":"Point","coordinates":[2.35,48.85]}`, wantLat: 48.85},
		{name: "invalid JSON", input: []byte(`{invalid}`), wantError: true},
		{name: "wrong type", input: []byte(`{"type":"Polygon","coordinates":[0,0]}`), wantError: true},
		{name: "unsupported input type", input: 42, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p GeoPoint
			err := p.Scan(tt.input)

			if tt.wantError && err == nil {
				t.Error("expected error but got none")
			}
			if !tt.wantError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.wantError && p.Lat != tt.wantLat {
				t.Errorf("expected lat %v, got %v", tt.wantLat, p.Lat)
			}
		})
	}
}

func TestGeoPointValid(t *testing.T) {
	if !(GeoPoint{Lng: 180, Lat: -90}).Valid() {
		t.Error("expected boundary point to be valid")
	}
	if (GeoPoint{Lng: 181, Lat: 0}).Valid() {
		t.Error("expected out of range longitude to be invalid")
	}
}
