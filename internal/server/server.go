// Package server exposes the scrape service over HTTP.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/law-makers/soldscrape/internal/reqctx"
	"github.com/law-makers/soldscrape/pkg/models"
	"github.com/rs/zerolog/log"
)

// ScrapePath is the single scrape endpoint
const ScrapePath = "/api/scrape-ebay"

// Scraper is what the handler needs from the scrape service
type Scraper interface {
	Scrape(ctx context.Context, req models.ScrapeRequest) (*models.ScrapeResponse, error)
}

// Server wraps an http.Server around the scrape handler
type Server struct {
	srv             *http.Server
	shutdownTimeout time.Duration
}

// New creates a Server listening on addr
func New(svc Scraper, addr string, shutdownTimeout time.Duration) *Server {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 15 * time.Second
	}
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           Handler(svc),
			ReadHeaderTimeout: 10 * time.Second,
		},
		shutdownTimeout: shutdownTimeout,
	}
}

// Handler builds the routed handler with request-ID and access logging applied
func Handler(svc Scraper) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(ScrapePath, &scrapeHandler{svc: svc})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return withRequestID(mux)
}

// ListenAndServe serves until ctx is cancelled, then drains in-flight
// requests for up to the shutdown timeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.srv.BaseContext = func(net.Listener) context.Context { return ctx }

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", ln.Addr().String()).Msg("HTTP server listening")
		errCh <- s.srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Dur("timeout", s.shutdownTimeout).Msg("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := reqctx.WithRequestID(r.Context(), r.Header.Get(reqctx.HeaderName))
		rc := reqctx.GetRequestContext(ctx)
		w.Header().Set(reqctx.HeaderName, rc.RequestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		log.Debug().
			Str("request_id", rc.RequestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("elapsed", rc.Elapsed()).
			Msg("HTTP request")
	})
}
