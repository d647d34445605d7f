// Copyright 2026 The BranchGeo Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultMinDelay is the minimum spacing between two calls. Nominatim
	// allows one request per second.
	DefaultMinDelay = time.Second

	// DefaultTimeout bounds every single call.
	DefaultTimeout = 10 * time.Second
)

var _ Geocoder = (*Throttled)(nil)

// Throttled spaces the calls to another Geocoder and bounds each of them with
// a timeout. A call starts at least minDelay after the previous one returned,
// and calls are spaced even when they fail.
type Throttled struct {
	geocoder Geocoder
	limiter  *rate.Limiter
	minDelay time.Duration
	timeout  time.Duration

	// slot serializes the calls and guards last.
	slot chan struct{}
	last time.Time
}

// NewThrottled wraps g. Zero values mean DefaultMinDelay and DefaultTimeout.
func NewThrottled(g Geocoder, minDelay, timeout time.Duration) *Throttled {
	if minDelay <= 0 {
		minDelay = DefaultMinDelay
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Throttled{
		geocoder: g,
		limiter:  rate.NewLimiter(rate.Every(minDelay), 1),
		minDelay: minDelay,
		timeout:  timeout,
		slot:     make(chan struct{}, 1),
	}
}

func (t *Throttled) Geocode(ctx context.Context, address string) (*Result, error) {
	select {
	case t.slot <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for geocoding slot: %w", ctx.Err())
	}

	defer func() { <-t.slot }()

	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for geocoding slot: %w", err)
	}

	// the limiter counts from reservations, a late wake up would let the
	// next call through early.
	if err := sleepUntil(ctx, t.last.Add(t.minDelay)); err != nil {
		return nil, fmt.Errorf("waiting for geocoding slot: %w", err)
	}

	defer func() { t.last = time.Now() }()

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	return t.geocoder.Geocode(ctx, address)
}

func sleepUntil(ctx context.Context, deadline time.Time) error {
	for {
		wait := time.Until(deadline)
		if wait <= 0 {
			return nil
		}

		timer := time.NewTimer(wait)

		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()

			return ctx.Err()
		}
	}
}
