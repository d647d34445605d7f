// Copyright 2026 The BranchGeo Authors
// SPDX-License-Identifier: Apache-2.0

package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jcodagnone/branchgeo/branches"
	"github.com/jcodagnone/branchgeo/geocoding"
	"github.com/jcodagnone/branchgeo/scraper"
	"github.com/jcodagnone/branchgeo/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const locationsPage = `<html><body>
<ul>
  <li>Main Branch — 123 Main St</li>
  <li>West Branch — 9 Elm Road</li>
</ul>
</body></html>`

type fakeGeocoder struct{}

func (fakeGeocoder) Geocode(_ context.Context, address string) (*geocoding.Result, error) {
	if address == "123 Main St" {
		return &geocoding.Result{Point: spatial.Point{Lat: 40.7128, Lng: -74.006}}, nil
	}

	return nil, geocoding.ErrNotFound
}

// setupServerTest starts an upstream page and returns a router wired to it.
func setupServerTest(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/locations" {
			http.NotFound(w, r)

			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(locationsPage))
	}))
	t.Cleanup(upstream.Close)

	svc := branches.NewService(scraper.NewClientWithHTTP(upstream.Client()), fakeGeocoder{})

	return NewServer(svc).Router(), upstream.URL
}

func postJSON(t *testing.T, router http.Handler, body any) *httptest.ResponseRecorder {
	t.Helper()

	b, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/scrape", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func TestScrapeAPI(t *testing.T) {
	router, upstream := setupServerTest(t)

	w := postJSON(t, router, ScrapeRequest{
		URL:         upstream + "/locations",
		BranchNames: "Main Branch, Airport Branch",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 2)

	assert.Equal(t, "Main Branch", got[0]["name"])
	assert.Contains(t, got[0]["address"], "123 Main St")
	assert.InDelta(t, 40.7128, got[0]["latitude"], 1e-9)
	assert.InDelta(t, -74.006, got[0]["longitude"], 1e-9)

	assert.Equal(t, "Airport Branch", got[1]["name"])
	assert.Equal(t, "—", got[1]["address"])
	assert.Equal(t, "—", got[1]["latitude"])
	assert.Equal(t, "—", got[1]["longitude"])
}

func TestScrapeAPIForm(t *testing.T) {
	router, upstream := setupServerTest(t)

	form := url.Values{}
	form.Set("url", upstream+"/locations")
	form.Set("branch_names", "West Branch")

	req := httptest.NewRequest(http.MethodPost, "/scrape", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "9 Elm Road")
}

func TestScrapeAPIValidation(t *testing.T) {
	router, upstream := setupServerTest(t)

	tests := []struct {
		name     string
		body     any
		expected string
	}{
		{"missing url", ScrapeRequest{BranchNames: "Main Branch"}, errMissingURL},
		{"blank url", ScrapeRequest{URL: "   ", BranchNames: "Main Branch"}, errMissingURL},
		{"missing names", ScrapeRequest{URL: upstream}, errMissingNames},
		{"only commas", ScrapeRequest{URL: upstream, BranchNames: " , ,"}, errMissingNames},
		{"empty object", map[string]string{}, errMissingURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, router, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"error":"`+tt.expected+`"}`, w.Body.String())
		})
	}
}

func TestScrapeAPIEmptyBody(t *testing.T) {
	router, _ := setupServerTest(t)

	req := httptest.NewRequest(http.MethodPost, "/scrape", http.NoBody)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"`+errMissingURL+`"}`, w.Body.String())
}

func TestScrapeAPIFetchFailure(t *testing.T) {
	router, upstream := setupServerTest(t)

	w := postJSON(t, router, ScrapeRequest{
		URL:         upstream + "/missing",
		BranchNames: "Main Branch",
	})

	assert.Equal(t, http.StatusBadGateway, w.Code)

	var got map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Contains(t, got["error"], "404")
}

func TestScrapeAPIClientGone(t *testing.T) {
	router, upstream := setupServerTest(t)

	b, err := json.Marshal(ScrapeRequest{URL: upstream + "/locations", BranchNames: "Main Branch"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := httptest.NewRequest(http.MethodPost, "/scrape", bytes.NewReader(b)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, statusClientClosedRequest, w.Code)
	assert.NotContains(t, w.Body.String(), "fetching")
}

func TestIndexView(t *testing.T) {
	router, _ := setupServerTest(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `id="scrape-form"`)
	assert.Contains(t, w.Body.String(), `name="branch_names"`)
}

func TestRequestID(t *testing.T) {
	router, _ := setupServerTest(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Len(t, w.Header().Get(requestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
}

func TestRunStopsWithContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- NewServer(nil).Run(ctx, "127.0.0.1:0")
	}()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestHealthz(t *testing.T) {
	router, _ := setupServerTest(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}
