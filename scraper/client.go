// Copyright 2026 The BranchGeo Authors
// SPDX-License-Identifier: Apache-2.0

// Package scraper downloads the page that lists the branches.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jcodagnone/branchgeo/utils/htmlutils"
	"github.com/jcodagnone/branchgeo/utils/httputils"
	"golang.org/x/net/html"
)

// DefaultUserAgent is a regular desktop browser; plenty of branch locators
// refuse to answer anything else.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"

const defaultTimeout = 15 * time.Second

// ErrEmptyURL is returned when there is nothing to fetch.
var ErrEmptyURL = errors.New("empty URL")

// FetchError describes why a page could not be retrieved.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	}

	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ClientOptions configuration for Client.
type ClientOptions struct {
	// UserAgent is the User-Agent header to use in HTTP requests
	UserAgent string

	// Timeout for the whole exchange, including reading the body
	Timeout time.Duration

	// Enables light tracing of HTTP requests and responses
	EnableHTTPTrace bool

	// Enables full HTTP body tracing
	EnableHTTPBodyTrace bool
}

// Client fetches and parses HTML pages.
type Client struct {
	client *http.Client
}

// NewClient creates a new client with the provided options.
func NewClient(options *ClientOptions) *Client {
	if options == nil {
		options = &ClientOptions{}
	}

	var httpLogWriter io.Writer
	if options.EnableHTTPTrace || options.EnableHTTPBodyTrace {
		httpLogWriter = os.Stderr
	}

	userAgent := DefaultUserAgent
	if options.UserAgent != "" {
		userAgent = options.UserAgent
	}

	timeout := defaultTimeout
	if options.Timeout > 0 {
		timeout = options.Timeout
	}

	return &Client{
		client: httputils.NewClient(
			timeout,
			map[string]string{
				"User-Agent":      userAgent,
				"Accept":          "text/html,application/xhtml+xml,*/*;q=0.8",
				"Accept-Language": "en-US,en;q=0.9",
			},
			httpLogWriter,
			options.EnableHTTPBodyTrace,
		),
	}
}

// NewClientWithHTTP wraps an existing *http.Client.
func NewClientWithHTTP(client *http.Client) *Client {
	return &Client{client: client}
}

// NormalizeURL trims the user supplied URL and defaults to https when no
// scheme was given.
func NormalizeURL(raw string) string {
	u := strings.TrimSpace(raw)
	if u == "" {
		return ""
	}

	lower := strings.ToLower(u)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		u = "https://" + u
	}

	return u
}

// Fetch downloads url and returns its parsed document. Every failure is
// reported as a *FetchError.
func (c *Client) Fetch(ctx context.Context, url string) (*html.Node, error) {
	if url == "" {
		return nil, &FetchError{Err: ErrEmptyURL}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	start := time.Now()

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("status %d", resp.StatusCode),
		}
	}

	r, err := htmlutils.AsReader(resp)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	n, err := htmlutils.AsNode(r)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	log.Printf("Fetched %s in %v", url, time.Since(start).Round(time.Millisecond))

	return n, nil
}
