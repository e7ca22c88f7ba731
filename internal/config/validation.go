package config

import (
	"fmt"
	"net/url"

	urlutil "github.com/law-makers/soldscrape/internal/utils/url"
)

func validate(c *Config) error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log level must be one of debug, info, warn, error; got %q", c.LogLevel)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be > 0")
	}
	if err := urlutil.ValidateURL(c.SearchBaseURL); err != nil {
		return fmt.Errorf("search url: %w", err)
	}
	for i, p := range c.Proxies {
		if err := validateProxy(p); err != nil {
			return fmt.Errorf("proxy #%d: %w", i+1, err)
		}
	}
	if c.DefaultPages < 1 {
		return fmt.Errorf("default pages must be >= 1")
	}
	if c.MaxPages < c.DefaultPages {
		return fmt.Errorf("max pages (%d) must be >= default pages (%d)", c.MaxPages, c.DefaultPages)
	}
	if c.JitterMin < 0 || c.JitterMax < c.JitterMin {
		return fmt.Errorf("jitter range must satisfy 0 <= min <= max")
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("rate limit must be >= 0")
	}
	if c.MinNameLength < 0 {
		return fmt.Errorf("min name length must be >= 0")
	}
	if c.MaxNameLength < 1 {
		return fmt.Errorf("max name length must be >= 1")
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("max body bytes must be > 0")
	}
	return nil
}

// validateProxy checks a proxy URL without echoing it, since it may carry a password
func validateProxy(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("not a valid URL")
	}
	switch u.Scheme {
	case "http", "https", "socks5", "socks5h":
	default:
		return fmt.Errorf("unsupported proxy scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing proxy host")
	}
	return nil
}
