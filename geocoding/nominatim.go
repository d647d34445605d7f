// Copyright 2026 The BranchGeo Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultNominatimURL is the public OpenStreetMap instance.
	DefaultNominatimURL = "https://nominatim.openstreetmap.org"

	// NominatimUserAgent identifies the application, as the Nominatim usage
	// policy requires.
	NominatimUserAgent = "branchgeo/1.0 (+https://github.com/jcodagnone/branchgeo)"
)

// NominatimGeocoder uses the OpenStreetMap Nominatim search API.
type NominatimGeocoder struct {
	endpoint   string
	userAgent  string
	httpClient *http.Client
}

// NewNominatimGeocoder creates a geocoder for the Nominatim instance at
// endpoint. An empty endpoint means DefaultNominatimURL and a nil client means
// a plain client with a 10 second timeout.
func NewNominatimGeocoder(endpoint string, httpClient *http.Client) *NominatimGeocoder {
	if endpoint == "" {
		endpoint = DefaultNominatimURL
	}

	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	return &NominatimGeocoder{
		endpoint:   strings.TrimRight(endpoint, "/"),
		userAgent:  NominatimUserAgent,
		httpClient: httpClient,
	}
}

type nominatimResponse []struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Class       string `json:"class"`
	Type        string `json:"type"`
	AddressType string `json:"addresstype"`
	DisplayName string `json:"display_name"`
}

func (g *NominatimGeocoder) Geocode(ctx context.Context, address string) (*Result, error) {
	params := url.Values{}
	params.Set("q", address)
	params.Set("format", "json")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, &GeocodingError{Type: ErrorTypeInvalidRequest, Message: "building nominatim request", Err: err}
	}

	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ClassifyHTTPError(resp.StatusCode)
	}

	var results nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("decoding nominatim response: %w", err)
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("nominatim %q: %w", address, ErrNotFound)
	}

	first := results[0]

	lat, err := strconv.ParseFloat(first.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing latitude %q: %w", first.Lat, err)
	}

	lng, err := strconv.ParseFloat(first.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing longitude %q: %w", first.Lon, err)
	}

	ret := &Result{
		Confidence:  ConfidenceLow,
		Provider:    "nominatim",
		DisplayName: first.DisplayName,
	}
	ret.Lat, ret.Lng = lat, lng

	switch first.AddressType {
	case "house", "building", "amenity", "office", "shop":
		ret.Confidence = ConfidenceHigh
	case "road", "place":
		ret.Confidence = ConfidenceMedium
	}

	return ret, nil
}
