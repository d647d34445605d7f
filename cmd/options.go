// Copyright 2026 The BranchGeo Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jcodagnone/branchgeo/branches"
	"github.com/jcodagnone/branchgeo/geocoding"
	"github.com/jcodagnone/branchgeo/scraper"
	"github.com/jcodagnone/branchgeo/utils/httputils"
)

const (
	providerNominatim = "nominatim"
	providerGoogle    = "google"
)

// pipelineOptions are shared by every command that fetches or geocodes.
type pipelineOptions struct {
	Geocoder       string
	NominatimURL   string
	GeocodeDelay   time.Duration
	GeocodeTimeout time.Duration
	FetchTimeout   time.Duration
	UserAgent      string
	HTTPTrace      bool
	HTTPBodyTrace  bool
}

var pipeline pipelineOptions

func (o *pipelineOptions) traceWriter() io.Writer {
	if o.HTTPTrace || o.HTTPBodyTrace {
		return os.Stderr
	}

	return nil
}

// newGeocoder builds the configured provider, throttled.
func (o *pipelineOptions) newGeocoder(ctx context.Context) (geocoding.Geocoder, error) {
	client := httputils.NewClient(o.GeocodeTimeout, nil, o.traceWriter(), o.HTTPBodyTrace)

	var g geocoding.Geocoder

	switch o.Geocoder {
	case providerNominatim:
		g = geocoding.NewNominatimGeocoder(o.NominatimURL, client)
	case providerGoogle:
		key, err := geocoding.GoogleMapsAPIKey(ctx)
		if err != nil {
			return nil, err
		}

		g = geocoding.NewGoogleMapsGeocoder(key, client)
	default:
		return nil, fmt.Errorf("unknown geocoder %q, expected %s or %s", o.Geocoder, providerNominatim, providerGoogle)
	}

	return geocoding.NewThrottled(g, o.GeocodeDelay, o.GeocodeTimeout), nil
}

func (o *pipelineOptions) newFetcher() *scraper.Client {
	return scraper.NewClient(&scraper.ClientOptions{
		UserAgent:           o.UserAgent,
		Timeout:             o.FetchTimeout,
		EnableHTTPTrace:     o.HTTPTrace,
		EnableHTTPBodyTrace: o.HTTPBodyTrace,
	})
}

func (o *pipelineOptions) newService(ctx context.Context) (*branches.Service, error) {
	g, err := o.newGeocoder(ctx)
	if err != nil {
		return nil, err
	}

	return branches.NewService(o.newFetcher(), g), nil
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(
		&pipeline.Geocoder,
		"geocoder",
		providerNominatim,
		"Geocoding provider: nominatim or google (GOOGLE_MAPS_API_KEY or ADC)",
	)
	flags.StringVar(
		&pipeline.NominatimURL,
		"nominatim-url",
		geocoding.DefaultNominatimURL,
		"Base URL of the Nominatim instance",
	)
	flags.DurationVar(
		&pipeline.GeocodeDelay,
		"geocode-delay",
		geocoding.DefaultMinDelay,
		"Minimum delay between two geocoding requests",
	)
	flags.DurationVar(
		&pipeline.GeocodeTimeout,
		"geocode-timeout",
		geocoding.DefaultTimeout,
		"Timeout of every geocoding request",
	)
	flags.DurationVar(
		&pipeline.FetchTimeout,
		"fetch-timeout",
		15*time.Second,
		"Timeout for downloading the branches page",
	)
	flags.StringVar(
		&pipeline.UserAgent,
		"user-agent",
		scraper.DefaultUserAgent,
		"User-Agent sent when downloading the branches page",
	)
	flags.BoolVar(
		&pipeline.HTTPTrace,
		"http-trace",
		false,
		"Trace HTTP requests and responses to stderr",
	)
	flags.BoolVar(
		&pipeline.HTTPBodyTrace,
		"http-body-trace",
		false,
		"Trace HTTP bodies too",
	)
}
