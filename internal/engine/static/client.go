// Package static fetches server-rendered result pages over plain HTTP,
// optionally through a rotating forward proxy.
package static

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/law-makers/soldscrape/internal/proxy"
	"github.com/rs/zerolog/log"
)

// Response is a fetched page with its body already decoded
type Response struct {
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
	Proxy      string // redacted
	Elapsed    time.Duration
}

// StatusError is returned for non-2xx responses
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Status)
}

// GetStatusCode returns the HTTP status of the failed response
func (e *StatusError) GetStatusCode() int {
	return e.StatusCode
}

type proxyKey struct{}

// ProxyFromContext is an http.Transport Proxy func that routes each request
// through the proxy attached to its context, or directly when none is set.
func ProxyFromContext(req *http.Request) (*url.URL, error) {
	if u, ok := req.Context().Value(proxyKey{}).(*url.URL); ok && u != nil {
		return u, nil
	}
	return nil, nil
}

// WithProxy attaches a proxy endpoint to ctx for ProxyFromContext
func WithProxy(ctx context.Context, u *url.URL) context.Context {
	return context.WithValue(ctx, proxyKey{}, u)
}

// NewTransport returns a pooled transport that honours per-request proxies
func NewTransport() *http.Transport {
	return &http.Transport{
		Proxy:               ProxyFromContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DisableKeepAlives:   false,
	}
}

// Client fetches pages with randomized browser headers
type Client struct {
	client  *http.Client
	proxies *proxy.ProxyPool
	extra   map[string]string
	maxBody int64
}

// New creates a Client with dependency injection. httpClient should use a
// transport built by NewTransport for proxies to take effect. proxies may be nil.
func New(httpClient *http.Client, proxies *proxy.ProxyPool, extraHeaders map[string]string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Transport: NewTransport(), Timeout: 30 * time.Second}
	}
	return &Client{
		client:  httpClient,
		proxies: proxies,
		extra:   extraHeaders,
		maxBody: DefaultMaxBodyBytes,
	}
}

// Name returns the name of this fetcher
func (c *Client) Name() string {
	return "StaticClient"
}

// SetMaxBodyBytes overrides the response size cap
func (c *Client) SetMaxBodyBytes(n int64) {
	if n > 0 {
		c.maxBody = n
	}
}

// Fetch performs a single GET. It never retries. Non-2xx responses return the
// Response together with a *StatusError.
func (c *Client) Fetch(ctx context.Context, pageURL string) (*Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()

	proxyRaw, proxyURL, err := c.nextProxy()
	if err != nil {
		return nil, err
	}
	if proxyURL != nil {
		ctx = WithProxy(ctx, proxyURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header = BrowserHeaders()
	for key, value := range c.extra {
		req.Header.Set(key, value)
	}

	redacted := ""
	if proxyURL != nil {
		redacted = proxyURL.Redacted()
	}

	log.Debug().
		Str("url", pageURL).
		Str("proxy", redacted).
		Str("user_agent", req.Header.Get("User-Agent")).
		Msg("Starting fetch")

	resp, err := c.client.Do(req)
	if err != nil {
		if proxyRaw != "" && ctx.Err() == nil {
			c.proxies.MarkFailed(proxyRaw)
		}
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusProxyAuthRequired && proxyRaw != "" {
		c.proxies.MarkFailed(proxyRaw)
	} else if proxyRaw != "" {
		c.proxies.MarkHealthy(proxyRaw)
	}

	out := &Response{
		URL:        pageURL,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Proxy:      redacted,
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		out.Elapsed = time.Since(start)
		return out, &StatusError{URL: pageURL, StatusCode: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
	}

	body, err := readBody(resp.Body, resp.Header.Get("Content-Encoding"), c.maxBody)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	out.Body = body
	out.Elapsed = time.Since(start)

	log.Debug().
		Str("url", pageURL).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("elapsed", out.Elapsed).
		Msg("Fetch completed")

	return out, nil
}

func (c *Client) nextProxy() (string, *url.URL, error) {
	if c.proxies == nil {
		return "", nil, nil
	}
	raw := c.proxies.GetNext()
	if raw == "" {
		return "", nil, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		// the parse error echoes the raw URL, credentials included
		return raw, nil, fmt.Errorf("invalid proxy URL")
	}
	return raw, u, nil
}

// CloseIdleConnections releases pooled connections
func (c *Client) CloseIdleConnections() {
	c.client.CloseIdleConnections()
}
