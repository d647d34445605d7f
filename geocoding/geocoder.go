// Copyright 2026 The BranchGeo Authors
// SPDX-License-Identifier: Apache-2.0

// Package geocoding turns postal addresses into coordinates.
package geocoding

import (
	"context"
	"errors"

	"github.com/jcodagnone/branchgeo/spatial"
)

// ErrNotFound is returned when the provider has no result for an address.
var ErrNotFound = errors.New("address not found")

// Confidence levels reported by the providers.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// Result represents a geocoding result from any provider.
type Result struct {
	spatial.Point
	Confidence  string // high, medium, low
	Provider    string
	DisplayName string
}

// Geocoder interface for different geocoding providers.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*Result, error)
}
