package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/law-makers/soldscrape/internal/utils/headers"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel      string `yaml:"log_level"`
	JSONLog       bool   `yaml:"json_log"`
	LogFile       string `yaml:"log_file"`
	LogMaxSizeMB  int    `yaml:"log_max_size_mb"`
	LogMaxBackups int    `yaml:"log_max_backups"`
	LogMaxAgeDays int    `yaml:"log_max_age_days"`

	// HTTP / proxy
	HTTPTimeout        time.Duration     `yaml:"http_timeout"`
	Proxies            []string          `yaml:"proxies"`
	ProxyFailureWindow time.Duration     `yaml:"proxy_failure_window"`
	ExtraHeaders       map[string]string `yaml:"headers"`
	MaxBodyBytes       int64             `yaml:"max_body_bytes"`

	// Search
	SearchBaseURL  string        `yaml:"search_url"`
	DefaultPages   int           `yaml:"default_pages"`
	MaxPages       int           `yaml:"max_pages"`
	JitterMin      time.Duration `yaml:"jitter_min"`
	JitterMax      time.Duration `yaml:"jitter_max"`
	RateLimitRPS   float64       `yaml:"rate_limit_rps"`
	RateLimitBurst int           `yaml:"rate_limit_burst"`

	// Extraction
	MinNameLength int    `yaml:"min_name_length"`
	MaxNameLength int    `yaml:"max_name_length"`
	LocatorsFile  string `yaml:"locators_file"`

	// Server
	ListenAddr      string        `yaml:"listen_addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Defaults returns a Config populated with default values
func Defaults() *Config {
	return &Config{
		LogLevel:           DefaultLogLevel,
		JSONLog:            DefaultJSONLog,
		LogMaxSizeMB:       DefaultLogMaxSizeMB,
		LogMaxBackups:      DefaultLogMaxBackups,
		LogMaxAgeDays:      DefaultLogMaxAgeDays,
		HTTPTimeout:        DefaultHTTPTimeout,
		ProxyFailureWindow: DefaultProxyFailureWindow,
		MaxBodyBytes:       DefaultMaxBodyBytes,
		SearchBaseURL:      DefaultSearchBaseURL,
		DefaultPages:       DefaultPages,
		MaxPages:           DefaultMaxPages,
		JitterMin:          DefaultJitterMin,
		JitterMax:          DefaultJitterMax,
		RateLimitRPS:       DefaultRateLimitRPS,
		RateLimitBurst:     DefaultRateLimitBurst,
		MinNameLength:      DefaultMinNameLength,
		MaxNameLength:      DefaultMaxNameLength,
		ListenAddr:         DefaultListenAddr,
		ShutdownTimeout:    DefaultShutdownTimeout,
	}
}

// Load builds a Config by layering defaults, an optional YAML file,
// SOLDSCRAPE_* environment variables and CLI flags, in that order.
// Caller should pass the root *cobra.Command so flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := Defaults()

	path := os.Getenv(EnvPrefix + "CONFIG")
	if cmd != nil {
		if f := cmd.Flags().Lookup("config"); f != nil && f.Value.String() != "" {
			path = f.Value.String()
		}
	}
	if path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}

	if cmd != nil {
		if err := applyFlags(cfg, cmd); err != nil {
			return nil, err
		}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	env := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}

	if v, ok := env("LOG_LEVEL"); ok {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v, ok := env("LOG_FILE"); ok {
		cfg.LogFile = v
	}
	if v, ok := env("JSON_LOG"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sJSON_LOG: %w", EnvPrefix, err)
		}
		cfg.JSONLog = b
	}
	// comma-separated so several proxies can rotate
	if v, ok := env("PROXY"); ok {
		cfg.Proxies = splitList(v)
	}
	if v, ok := env("TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sTIMEOUT: %w", EnvPrefix, err)
		}
		cfg.HTTPTimeout = d
	}
	if v, ok := env("SEARCH_URL"); ok {
		cfg.SearchBaseURL = v
	}
	if v, ok := env("LOCATORS"); ok {
		cfg.LocatorsFile = v
	}
	if v, ok := env("ADDR"); ok {
		cfg.ListenAddr = v
	}
	if v, ok := env("MAX_PAGES"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sMAX_PAGES: %w", EnvPrefix, err)
		}
		cfg.MaxPages = n
	}
	return nil
}

func applyFlags(cfg *Config, cmd *cobra.Command) error {
	flags := cmd.Flags()
	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}

	if changed("verbose") {
		if v, _ := flags.GetBool("verbose"); v {
			cfg.LogLevel = "debug"
		}
	}
	if changed("quiet") {
		if v, _ := flags.GetBool("quiet"); v {
			cfg.LogLevel = "error"
		}
	}
	if changed("json") {
		cfg.JSONLog, _ = flags.GetBool("json")
	}
	if changed("log-file") {
		cfg.LogFile, _ = flags.GetString("log-file")
	}
	if changed("proxy") {
		v, _ := flags.GetStringSlice("proxy")
		cfg.Proxies = v
	}
	if changed("timeout") {
		s, _ := flags.GetString("timeout")
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid --timeout: %w", err)
		}
		cfg.HTTPTimeout = d
	}
	if changed("search-url") {
		cfg.SearchBaseURL, _ = flags.GetString("search-url")
	}
	if changed("locators") {
		cfg.LocatorsFile, _ = flags.GetString("locators")
	}
	if changed("header") {
		h, _ := flags.GetStringArray("header")
		if cfg.ExtraHeaders == nil {
			cfg.ExtraHeaders = make(map[string]string)
		}
		for k, v := range headers.ParseHeaders(h) {
			cfg.ExtraHeaders[k] = v
		}
	}
	if changed("jitter-min") {
		cfg.JitterMin, _ = flags.GetDuration("jitter-min")
	}
	if changed("jitter-max") {
		cfg.JitterMax, _ = flags.GetDuration("jitter-max")
	}
	if changed("rate-limit") {
		cfg.RateLimitRPS, _ = flags.GetFloat64("rate-limit")
	}
	if changed("min-name-length") {
		cfg.MinNameLength, _ = flags.GetInt("min-name-length")
	}
	if changed("max-name-length") {
		cfg.MaxNameLength, _ = flags.GetInt("max-name-length")
	}
	if changed("max-pages") {
		cfg.MaxPages, _ = flags.GetInt("max-pages")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
