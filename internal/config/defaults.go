package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel           = "info"
	DefaultJSONLog            = false
	DefaultLogMaxSizeMB       = 50
	DefaultLogMaxBackups      = 3
	DefaultLogMaxAgeDays      = 14
	DefaultHTTPTimeout        = 30 * time.Second
	DefaultProxyFailureWindow = 5 * time.Minute
	DefaultMaxBodyBytes       = 8 << 20 // 8MB
	DefaultSearchBaseURL      = "https://www.ebay.com/sch/i.html"
	DefaultPages              = 3
	DefaultMaxPages           = 20
	DefaultJitterMin          = 200 * time.Millisecond
	DefaultJitterMax          = 1500 * time.Millisecond
	DefaultRateLimitRPS       = 5.0
	DefaultRateLimitBurst     = 10
	DefaultMinNameLength      = 5
	DefaultMaxNameLength      = 80
	DefaultListenAddr         = ":8080"
	DefaultShutdownTimeout    = 15 * time.Second
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "SOLDSCRAPE_"
