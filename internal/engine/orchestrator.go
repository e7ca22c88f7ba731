package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/law-makers/soldscrape/internal/engine/static"
	"github.com/law-makers/soldscrape/internal/extract"
	"github.com/law-makers/soldscrape/internal/query"
	"github.com/law-makers/soldscrape/internal/ratelimit"
	"github.com/law-makers/soldscrape/internal/reqctx"
	"github.com/law-makers/soldscrape/pkg/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Options tunes an Orchestrator
type Options struct {
	Jitter Jitter
	// OnPageDone is called once per page as soon as it settles, from the page's goroutine
	OnPageDone func(models.PageOutcome)
}

// Orchestrator fetches and extracts result pages concurrently. A failing page
// yields an empty outcome and never affects its siblings.
type Orchestrator struct {
	fetcher    Fetcher
	limiter    ratelimit.RateLimiter
	builder    *query.Builder
	extractor  *extract.Extractor
	jitter     Jitter
	onPageDone func(models.PageOutcome)
}

// NewOrchestrator creates an Orchestrator with dependency injection. limiter may be nil.
func NewOrchestrator(f Fetcher, lim ratelimit.RateLimiter, b *query.Builder, ex *extract.Extractor, opts Options) *Orchestrator {
	if b == nil {
		b = query.NewBuilder("")
	}
	if ex == nil {
		ex = extract.New(extract.Locators{}, extract.DefaultPolicy(), query.DefaultBaseURL)
	}
	return &Orchestrator{
		fetcher:    f,
		limiter:    lim,
		builder:    b,
		extractor:  ex,
		jitter:     opts.Jitter,
		onPageDone: opts.OnPageDone,
	}
}

// WithOnPageDone returns a copy of o that reports settled pages to fn
func (o *Orchestrator) WithOnPageDone(fn func(models.PageOutcome)) *Orchestrator {
	cp := *o
	cp.onPageDone = fn
	return &cp
}

// FetchPages dispatches every page at once and waits for all of them.
// The result has one outcome per requested page, in request order.
func (o *Orchestrator) FetchPages(ctx context.Context, searchTerm string, pages []int) []models.PageOutcome {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	outcomes := make([]models.PageOutcome, len(pages))

	// Tasks always return nil so one failed page never cancels the rest.
	var g errgroup.Group
	for i, page := range pages {
		g.Go(func() error {
			outcomes[i] = o.fetchPage(ctx, searchTerm, page)
			return nil
		})
	}
	_ = g.Wait()

	failed, items := 0, 0
	for _, out := range outcomes {
		if out.Failed() {
			failed++
		}
		items += len(out.Records)
	}
	log.Info().
		Str("request_id", reqctx.GetRequestContext(ctx).RequestID).
		Str("search_term", searchTerm).
		Int("pages", len(pages)).
		Int("failed_pages", failed).
		Int("items", items).
		Dur("elapsed", time.Since(start)).
		Msg("Batch completed")

	return outcomes
}

func (o *Orchestrator) fetchPage(ctx context.Context, searchTerm string, page int) (out models.PageOutcome) {
	start := time.Now()
	out = models.PageOutcome{Page: page, Records: []models.ListingRecord{}}

	logger := log.With().
		Str("request_id", reqctx.GetRequestContext(ctx).RequestID).
		Int("page", page).
		Logger()

	defer func() {
		if r := recover(); r != nil {
			out.Records = []models.ListingRecord{}
			out.Err = NewEngineError(ErrCodeInternal, "page task panicked", fmt.Errorf("%w: %v", ErrInternal, r))
		}
		out.Elapsed = time.Since(start)
		if out.Err != nil {
			logPageFailure(logger, out)
		}
		if o.onPageDone != nil {
			o.onPageDone(out)
		}
	}()

	out.URL = o.builder.Build(searchTerm, page)

	if err := o.jitter.Wait(ctx); err != nil {
		out.Err = NewEngineError(ErrCodeCancelled, "cancelled before fetch", errors.Join(ErrCancelled, err))
		return out
	}
	if o.limiter != nil {
		if err := o.limiter.Wait(ctx, out.URL); err != nil {
			out.Err = NewEngineError(ErrCodeCancelled, "cancelled waiting for rate limiter", errors.Join(ErrCancelled, err))
			return out
		}
	}

	resp, err := o.fetcher.Fetch(ctx, out.URL)
	if resp != nil {
		out.StatusCode = resp.StatusCode
	}
	if err != nil {
		out.Err = classifyFetchError(err)
		return out
	}

	records, err := o.extractor.ExtractHTML(bytes.NewReader(resp.Body))
	if err != nil {
		out.Err = NewEngineError(ErrCodeParseError, "failed to parse results page", errors.Join(ErrParseError, err))
		return out
	}
	out.Records = records

	logger.Info().
		Int("status", out.StatusCode).
		Int("items", len(records)).
		Dur("elapsed", time.Since(start)).
		Msg("Page scraped")

	return out
}

func classifyFetchError(err error) *EngineError {
	var se *static.StatusError
	if errors.As(err, &se) {
		return NewEngineError(ErrCodeHTTPStatus, "results page returned an error status", errors.Join(ErrBadStatus, err)).
			WithDetail("status", se.StatusCode)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return NewEngineError(ErrCodeCancelled, "fetch cancelled", errors.Join(ErrCancelled, err))
	}
	return NewEngineError(ErrCodeNetworkError, "failed to fetch results page", errors.Join(ErrNetworkError, err))
}

func logPageFailure(logger zerolog.Logger, out models.PageOutcome) {
	var ev *zerolog.Event
	if CodeOf(out.Err) == ErrCodeCancelled {
		ev = logger.Warn()
	} else {
		ev = logger.Error()
	}
	ev.Err(out.Err).
		Str("code", string(CodeOf(out.Err))).
		Int("status", out.StatusCode).
		Dur("elapsed", out.Elapsed).
		Msg("Page failed")
}
