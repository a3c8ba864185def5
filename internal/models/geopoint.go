package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// GeoPoint is a WGS84 position stored as a GeoJSON Point in a jsonb column.
// Coordinates follow GeoJSON order: longitude first.
type GeoPoint struct {
	Lng float64
	Lat float64
}

type geoJSONPoint struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// Valid reports whether the point is inside WGS84 bounds.
func (p GeoPoint) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Scan implements sql.Scanner for reading the jsonb column.
func (p *GeoPoint) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("failed to scan GeoPoint: expected []byte or string, got %T", value)
	}

	return p.UnmarshalJSON(raw)
}

// Value implements driver.Valuer, writing GeoJSON text.
func (p GeoPoint) Value() (driver.Value, error) {
	data, err := p.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// MarshalJSON implements json.Marshaler as a GeoJSON Point.
func (p GeoPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(geoJSONPoint{
		Type:        "Point",
		Coordinates: [2]float64{p.Lng, p.Lat},
	})
}

// UnmarshalJSON implements json.Unmarshaler for GeoJSON Point input.
func (p *GeoPoint) UnmarshalJSON(data []byte) error {
	var geom geoJSONPoint
	if err := json.Unmarshal(data, &geom); err != nil {
		return fmt.Errorf("failed to unmarshal point: %w", err)
	}
	if geom.Type != "" && geom.Type != "Point" {
		return fmt.Errorf("expected Point type, got %s", geom.Type)
	}

	p.Lng = geom.Coordinates[0]
	p.Lat = geom.Coordinates[1]
	return nil
}
