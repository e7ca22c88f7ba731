// Package scrape runs one sold-listing search end to end: validate the
// request, fetch every page, aggregate the records.
package scrape

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/law-makers/soldscrape/internal/engine"
	"github.com/law-makers/soldscrape/internal/reqctx"
	"github.com/law-makers/soldscrape/pkg/models"
	"github.com/rs/zerolog/log"
)

const (
	DefaultPages    = 3
	DefaultMaxPages = 20
)

// PageFetcher is the slice of the orchestrator the service depends on
type PageFetcher interface {
	FetchPages(ctx context.Context, searchTerm string, pages []int) []models.PageOutcome
}

// Limits bounds what a caller may ask for
type Limits struct {
	DefaultPages int
	MaxPages     int
}

// Service is stateless across calls; concurrent Scrape calls are independent.
type Service struct {
	pages  PageFetcher
	limits Limits
}

// NewService creates a Service. Zero limits fall back to the defaults.
func NewService(pages PageFetcher, limits Limits) *Service {
	if limits.DefaultPages <= 0 {
		limits.DefaultPages = DefaultPages
	}
	if limits.MaxPages <= 0 {
		limits.MaxPages = DefaultMaxPages
	}
	return &Service{pages: pages, limits: limits}
}

// Normalize trims the term and applies defaults. It returns a VALIDATION
// EngineError for input that cannot be served.
func (s *Service) Normalize(req models.ScrapeRequest) (models.ScrapeRequest, error) {
	req.SearchTerm = strings.TrimSpace(req.SearchTerm)
	if req.SearchTerm == "" {
		return req, engine.NewEngineError(engine.ErrCodeValidation, "Search term is required", engine.ErrInvalidRequest)
	}
	if req.Pages == 0 {
		req.Pages = s.limits.DefaultPages
	}
	if req.StartPage == 0 {
		req.StartPage = 1
	}
	if req.Pages < 1 {
		return req, engine.NewEngineError(engine.ErrCodeValidation, "pages must be at least 1", engine.ErrInvalidRequest).
			WithDetail("pages", req.Pages)
	}
	if req.Pages > s.limits.MaxPages {
		return req, engine.NewEngineError(engine.ErrCodeValidation, fmt.Sprintf("pages must be at most %d", s.limits.MaxPages), engine.ErrInvalidRequest).
			WithDetail("pages", req.Pages)
	}
	if req.StartPage < 1 {
		return req, engine.NewEngineError(engine.ErrCodeValidation, "startPage must be at least 1", engine.ErrInvalidRequest).
			WithDetail("startPage", req.StartPage)
	}
	return req, nil
}

// Scrape validates req, fetches its pages and aggregates the result. Page
// failures are absorbed; only validation and unexpected errors are returned.
func (s *Service) Scrape(ctx context.Context, req models.ScrapeRequest) (resp *models.ScrapeResponse, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("request_id", reqctx.GetRequestContext(ctx).RequestID).
				Interface("panic", r).
				Msg("Scrape aborted")
			resp = nil
			err = reqctx.NewRequestError(ctx,
				engine.NewEngineError(engine.ErrCodeInternal, fmt.Sprint(r), engine.ErrInternal))
		}
	}()

	req, err = s.Normalize(req)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("request_id", reqctx.GetRequestContext(ctx).RequestID).
		Str("search_term", req.SearchTerm).
		Int("pages", req.Pages).
		Int("start_page", req.StartPage).
		Msg("Scrape started")

	outcomes := s.pages.FetchPages(ctx, req.SearchTerm, PageNumbers(req))
	resp = Aggregate(req, outcomes, time.Since(start))

	log.Info().
		Str("request_id", reqctx.GetRequestContext(ctx).RequestID).
		Int("total_items", resp.TotalItems).
		Float64("duration_seconds", resp.DurationSeconds).
		Msg("Scrape completed")

	return resp, nil
}
