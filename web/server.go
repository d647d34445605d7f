// Copyright 2026 The BranchGeo Authors
// SPDX-License-Identifier: Apache-2.0

// Package web serves the branch lookup form and its JSON endpoint.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jcodagnone/branchgeo/branches"
	"github.com/jcodagnone/branchgeo/scraper"
	"golang.org/x/sync/errgroup"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"

	shutdownTimeout = 10 * time.Second

	// nginx convention for a client that went away before the response.
	statusClientClosedRequest = 499

	errMissingURL   = "Please enter a website URL."
	errMissingNames = "Please enter at least one branch name (comma-separated)."
)

//go:embed templates/*.html
var templates embed.FS

// Scraper resolves branch names against a page.
type Scraper interface {
	Scrape(ctx context.Context, url string, names []string) ([]branches.Result, error)
}

type Server struct {
	scraper Scraper
}

func NewServer(s Scraper) *Server {
	return &Server{scraper: s}
}

// Router returns the engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()
	r.Use(requestID())
	r.SetHTMLTemplate(template.Must(template.New("").ParseFS(templates, "templates/*.html")))

	r.GET("/", s.indexView)
	r.GET("/healthz", s.healthz)
	r.POST("/scrape", s.scrape)

	return r
}

// Run serves on addr until ctx is done, then waits for in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("Listening on http://%s", addr)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// requestID tags every request with an id, reusing the caller's when present.
func requestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}

		ctx.Set(requestIDKey, id)
		ctx.Header(requestIDHeader, id)
		ctx.Next()
	}
}

func (s *Server) indexView(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "index.html", nil)
}

func (s *Server) healthz(ctx *gin.Context) {
	ctx.String(http.StatusOK, "ok")
}

// ScrapeRequest is the body of POST /scrape, either JSON or a form.
type ScrapeRequest struct {
	URL         string `json:"url"          form:"url"`
	BranchNames string `json:"branch_names" form:"branch_names"`
}

func (s *Server) scrape(ctx *gin.Context) {
	var req ScrapeRequest
	// an empty JSON body is a request with no fields.
	if err := ctx.ShouldBind(&req); err != nil && !errors.Is(err, io.EOF) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})

		return
	}

	url := strings.TrimSpace(req.URL)
	if url == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": errMissingURL})

		return
	}

	names := branches.ParseNames(req.BranchNames)
	if len(names) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": errMissingNames})

		return
	}

	id := ctx.GetString(requestIDKey)
	log.Printf("[%s] Scraping %d branches from %s", id, len(names), url)

	results, err := s.scraper.Scrape(ctx.Request.Context(), scraper.NormalizeURL(url), names)
	if err != nil {
		if ctx.Request.Context().Err() != nil {
			log.Printf("[%s] Client went away while scraping %s: %v", id, url, err)
			ctx.AbortWithStatus(statusClientClosedRequest)

			return
		}

		var fetchErr *scraper.FetchError
		if errors.As(err, &fetchErr) || errors.Is(err, scraper.ErrEmptyURL) {
			ctx.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})

			return
		}

		log.Printf("[%s] Scraping %s failed: %v", id, url, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, results)
}
