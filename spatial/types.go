// Copyright 2026 The BranchGeo Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Placeholder is rendered in place of any value that could not be resolved.
const Placeholder = "—"

// Point represents a geographical point with latitude and longitude.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String returns a string representation of the Point.
func (p Point) String() string {
	return fmt.Sprintf("POINT(%f %f)", p.Lng, p.Lat)
}

// Valid reports whether the point lies within the WGS84 bounds.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Coordinate is a single latitude or longitude that may be unknown. Unknown
// coordinates are encoded as the Placeholder string in JSON.
type Coordinate struct {
	Value float64
	Valid bool
}

// NewCoordinate returns a known coordinate.
func NewCoordinate(v float64) Coordinate {
	return Coordinate{Value: v, Valid: true}
}

// String returns the coordinate with 7 decimals, or the Placeholder.
func (c Coordinate) String() string {
	if !c.Valid {
		return Placeholder
	}

	return strconv.FormatFloat(c.Value, 'f', 7, 64)
}

// MarshalJSON implements json.Marshaler.
func (c Coordinate) MarshalJSON() ([]byte, error) {
	if !c.Valid {
		return json.Marshal(Placeholder)
	}

	return json.Marshal(c.Value)
}

// UnmarshalJSON implements json.Unmarshaler. Any string, including the
// Placeholder, and null decode as unknown.
func (c *Coordinate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] == '"' || bytes.Equal(data, []byte("null")) {
		*c = Coordinate{}

		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("spatial: invalid coordinate %s: %w", data, err)
	}

	*c = NewCoordinate(v)

	return nil
}

// Coordinates splits p into its latitude and longitude.
func Coordinates(p *Point) (lat, lng Coordinate) {
	if p == nil || !p.Valid() {
		return Coordinate{}, Coordinate{}
	}

	return NewCoordinate(p.Lat), NewCoordinate(p.Lng)
}
