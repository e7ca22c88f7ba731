// internal/ratelimit/limiter.go
package ratelimit

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter throttles outbound page requests per host.
type RateLimiter interface {
	// Wait blocks until a request for the given URL can proceed.
	// If the context is cancelled first, an error is returned.
	Wait(ctx context.Context, urlStr string) error

	// Allow reports whether a request for the given URL can proceed immediately.
	Allow(urlStr string) bool
}

// DomainLimiter keeps one token bucket per host, so concurrent page fetches
// against the marketplace share a budget.
type DomainLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	perHost  rate.Limit
	burst    int
}

// NewDomainLimiter creates a limiter with the given per-host rate.
// A non-positive rate disables limiting.
func NewDomainLimiter(requestsPerSecond float64, burst int) *DomainLimiter {
	limit := rate.Limit(requestsPerSecond)
	if requestsPerSecond <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}

	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		perHost:  limit,
		burst:    burst,
	}
}

// Wait blocks until the request for the given URL can proceed
func (dl *DomainLimiter) Wait(ctx context.Context, urlStr string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	host := hostKey(urlStr)
	if host == "" {
		// unparseable URLs fail later in the fetch
		return nil
	}
	return dl.getLimiter(host).Wait(ctx)
}

// Allow checks if a request can proceed immediately without blocking
func (dl *DomainLimiter) Allow(urlStr string) bool {
	host := hostKey(urlStr)
	if host == "" {
		return true
	}
	return dl.getLimiter(host).Allow()
}

// Hosts returns how many hosts currently have a bucket
func (dl *DomainLimiter) Hosts() int {
	dl.mu.RLock()
	defer dl.mu.RUnlock()
	return len(dl.limiters)
}

func (dl *DomainLimiter) getLimiter(host string) *rate.Limiter {
	dl.mu.RLock()
	limiter, exists := dl.limiters[host]
	dl.mu.RUnlock()

	if exists {
		return limiter
	}

	dl.mu.Lock()
	defer dl.mu.Unlock()

	if limiter, exists := dl.limiters[host]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(dl.perHost, dl.burst)
	dl.limiters[host] = limiter
	return limiter
}

// hostKey folds case and a leading "www." so ebay.com and www.ebay.com share a bucket
func hostKey(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}
