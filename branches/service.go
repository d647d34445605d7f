// Copyright 2026 The BranchGeo Authors
// SPDX-License-Identifier: Apache-2.0

// Package branches resolves the address and coordinates of every requested
// branch listed on a single page.
package branches

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/jcodagnone/branchgeo/geocoding"
	"github.com/jcodagnone/branchgeo/matcher"
	"github.com/jcodagnone/branchgeo/utils/textutils"
	"golang.org/x/net/html"
)

// Fetcher retrieves and parses a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*html.Node, error)
}

// ProgressFunc is called after each branch is resolved.
type ProgressFunc func(done, total int, r Result)

// Service fetches a page once and resolves every name against it.
type Service struct {
	fetcher  Fetcher
	geocoder geocoding.Geocoder
}

// NewService creates a service. The geocoder is expected to be throttled
// already; see geocoding.NewThrottled.
func NewService(fetcher Fetcher, geocoder geocoding.Geocoder) *Service {
	return &Service{fetcher: fetcher, geocoder: geocoder}
}

// ParseNames splits a comma separated list of branch names, dropping blanks.
func ParseNames(input string) []string {
	return textutils.SplitList(input)
}

// Scrape returns one Result per name, in order. Only a failure to fetch the
// page is an error; names that cannot be matched or geocoded get placeholder
// values.
func (s *Service) Scrape(ctx context.Context, url string, names []string) ([]Result, error) {
	return s.ScrapeWithProgress(ctx, url, names, nil)
}

// ScrapeWithProgress is Scrape with a callback invoked after every name.
func (s *Service) ScrapeWithProgress(ctx context.Context, url string, names []string, progress ProgressFunc) ([]Result, error) {
	if len(names) == 0 {
		return nil, nil
	}

	doc, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	ret := make([]Result, 0, len(names))

	for i, name := range names {
		if err := ctx.Err(); err != nil {
			return ret, err
		}

		m := matcher.Find(doc, name)

		var geo *geocoding.Result
		if m.Found() {
			geo = s.geocode(ctx, name, m.Address)
		} else {
			log.Printf("No address found for %q", name)
		}

		r := newResult(name, m, geo)
		ret = append(ret, r)

		if progress != nil {
			progress(i+1, len(names), r)
		}
	}

	log.Printf("Resolved %d branches from %s in %v", len(ret), url, time.Since(start))

	return ret, nil
}

func (s *Service) geocode(ctx context.Context, name, address string) *geocoding.Result {
	if s.geocoder == nil {
		return nil
	}

	geo, err := s.geocoder.Geocode(ctx, address)

	switch {
	case err == nil:
		return geo
	case errors.Is(err, geocoding.ErrNotFound):
		log.Printf("Geocoder has no result for %q (%s)", name, address)
	case geocoding.IsRateLimitError(err), geocoding.IsQuotaExceededError(err):
		log.Printf("Geocoder refused %q: %v", name, err)
	default:
		log.Printf("Geocoding %q (%s) failed: %v", name, address, err)
	}

	return nil
}
