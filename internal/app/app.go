// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/law-makers/soldscrape/internal/config"
	"github.com/law-makers/soldscrape/internal/engine"
	"github.com/law-makers/soldscrape/internal/engine/static"
	"github.com/law-makers/soldscrape/internal/extract"
	"github.com/law-makers/soldscrape/internal/proxy"
	"github.com/law-makers/soldscrape/internal/query"
	"github.com/law-makers/soldscrape/internal/ratelimit"
	"github.com/law-makers/soldscrape/internal/scrape"
	"github.com/law-makers/soldscrape/pkg/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once at startup and shared across all CLI commands.
// Use Close() to ensure proper resource cleanup on shutdown.
type Application struct {
	Config       *config.Config
	Logger       *zerolog.Logger
	Proxies      *proxy.ProxyPool
	RateLimiter  ratelimit.RateLimiter
	HTTPClient   *http.Client
	Fetcher      *static.Client
	Extractor    *extract.Extractor
	Builder      *query.Builder
	Orchestrator *engine.Orchestrator
	Service      *scrape.Service
	logFile      io.Closer
	startTime    time.Time
}

// New creates and initializes a new Application with all dependencies.
//
// It performs the following initialization steps:
//   - Configures logging based on the provided config
//   - Loads the locator table and builds the listing extractor
//   - Creates the proxy pool and the per-host rate limiter
//   - Initializes the HTTP client with a per-request proxy transport
//   - Wires the orchestrator and the scrape service
//
// If any step fails, an error is returned and no resources are allocated.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger, logFile := newLogger(cfg)

	locs := extract.DefaultLocators()
	if cfg.LocatorsFile != "" {
		loaded, err := extract.LoadLocators(cfg.LocatorsFile)
		if err != nil {
			if logFile != nil {
				logFile.Close()
			}
			return nil, fmt.Errorf("failed to load locators: %w", err)
		}
		locs = loaded
		logger.Debug().Str("path", cfg.LocatorsFile).Msg("Locator table loaded")
	}

	extractor := extract.New(locs, extract.Policy{
		MinNameLength: cfg.MinNameLength,
		MaxNameLength: cfg.MaxNameLength,
	}, cfg.SearchBaseURL)

	proxies := proxy.NewProxyPool(cfg.Proxies)
	proxies.SetFailureWindow(cfg.ProxyFailureWindow)
	logger.Debug().
		Int("proxies", proxies.Size()).
		Dur("failure_window", cfg.ProxyFailureWindow).
		Msg("Proxy pool initialized")
	warnIfUnproxied(logger, proxies)

	rateLimiter := ratelimit.NewDomainLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	logger.Debug().
		Float64("rps", cfg.RateLimitRPS).
		Int("burst", cfg.RateLimitBurst).
		Msg("Rate limiter initialized")

	httpClient := &http.Client{
		Timeout:   cfg.HTTPTimeout,
		Transport: static.NewTransport(),
	}
	logger.Debug().
		Dur("timeout", cfg.HTTPTimeout).
		Msg("HTTP client initialized")

	fetcher := static.New(httpClient, proxies, cfg.ExtraHeaders)
	fetcher.SetMaxBodyBytes(cfg.MaxBodyBytes)

	builder := query.NewBuilder(cfg.SearchBaseURL)
	orchestrator := engine.NewOrchestrator(fetcher, rateLimiter, builder, extractor, engine.Options{
		Jitter: engine.Jitter{Min: cfg.JitterMin, Max: cfg.JitterMax},
	})

	app := &Application{
		Config:       cfg,
		Logger:       &logger,
		Proxies:      proxies,
		RateLimiter:  rateLimiter,
		HTTPClient:   httpClient,
		Fetcher:      fetcher,
		Extractor:    extractor,
		Builder:      builder,
		Orchestrator: orchestrator,
		Service:      scrape.NewService(orchestrator, serviceLimits(cfg)),
		logFile:      logFile,
		startTime:    time.Now(),
	}

	logger.Info().Msg("Application initialized successfully")
	return app, nil
}

// ServiceWithProgress returns a scrape service that reports every settled page to fn
func (a *Application) ServiceWithProgress(fn func(models.PageOutcome)) *scrape.Service {
	return scrape.NewService(a.Orchestrator.WithOnPageDone(fn), serviceLimits(a.Config))
}

// warnIfUnproxied logs once when requests will leave without a proxy.
// It reports whether the warning was emitted.
func warnIfUnproxied(logger zerolog.Logger, proxies *proxy.ProxyPool) bool {
	if proxies != nil && proxies.Size() > 0 {
		return false
	}
	logger.Warn().Msg("No proxy configured, requests will connect directly (set SOLDSCRAPE_PROXY or --proxy)")
	return true
}

func serviceLimits(cfg *config.Config) scrape.Limits {
	return scrape.Limits{DefaultPages: cfg.DefaultPages, MaxPages: cfg.MaxPages}
}

// newLogger configures the global zerolog logger. When a log file is set,
// output is duplicated into a rotating file.
func newLogger(cfg *config.Config) (zerolog.Logger, io.Closer) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var logWriter io.Writer
	if cfg.JSONLog {
		// JSON logs to stderr
		logWriter = os.Stderr
	} else {
		// Human-friendly console output otherwise
		logWriter = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}

	var closer io.Closer
	if cfg.LogFile != "" {
		rotating := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.LogMaxSizeMB,
			MaxBackups: cfg.LogMaxBackups,
			MaxAge:     cfg.LogMaxAgeDays,
			Compress:   true,
		}
		logWriter = zerolog.MultiLevelWriter(logWriter, rotating)
		closer = rotating
	}

	logger := zerolog.New(logWriter).With().Timestamp().Logger()
	log.Logger = logger

	logger.Debug().
		Str("level", level.String()).
		Bool("json", cfg.JSONLog).
		Str("file", cfg.LogFile).
		Msg("Logger initialized")

	return logger, closer
}

// Close gracefully shuts down the application and all its resources.
//
// It releases idle HTTP connections and flushes the rotating log file.
// Any errors during shutdown are logged but do not prevent other shutdown steps.
func (a *Application) Close(ctx context.Context) error {
	a.Logger.Info().Msg("Shutting down application")

	if a.Fetcher != nil {
		a.Fetcher.CloseIdleConnections()
	}

	uptime := time.Since(a.startTime)
	a.Logger.Info().Dur("uptime", uptime).Msg("Application shutdown complete")

	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil {
			return fmt.Errorf("failed to close log file: %w", err)
		}
	}
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}
