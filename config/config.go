// Package config resolves the process-wide settings of the storefront client:
// the base URL of each backend plus a handful of transport and logging knobs.
// Values are read once, at startup, and passed to client.New explicitly.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
)

// EnvPrefix is the envconfig prefix, e.g. STOREFRONT_DEBUG.
const EnvPrefix = "STOREFRONT"

// Config holds the storefront client configuration.
type Config struct {
	// Debug installs the request/response dump transport.
	Debug bool `envconfig:"DEBUG" default:"false"`

	// SameOrigin makes every backend resolve to "" so paths are joined onto
	// Origin instead (reverse-proxy deployments).
	SameOrigin bool   `envconfig:"SAME_ORIGIN" default:"false"`
	Origin     string `envconfig:"ORIGIN" default:""`

	// HTTPTimeout bounds a whole request. Zero keeps requests unbounded;
	// callers are expected to cancel through their context instead.
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"0s"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Resolved base URLs, filled by Load via ResolveBaseURL.
	UsersBaseURL    string `envconfig:"-"`
	ProductsBaseURL string `envconfig:"-"`
	SearchBaseURL   string `envconfig:"-"`
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	return LoadWith(nil)
}

// LoadWith is Load with an injectable lookup for the base-URL probes. A nil
// lookup falls back to os.LookupEnv.
func LoadWith(lookup LookupFunc) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	cfg.ResolveBaseURLs(lookup)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Defaults returns a Config pointing at the local default ports without
// consulting the environment.
func Defaults() *Config {
	return &Config{
		LogLevel:        "info",
		UsersBaseURL:    DefaultUsersBaseURL,
		ProductsBaseURL: DefaultProductsBaseURL,
		SearchBaseURL:   DefaultSearchBaseURL,
	}
}

// ResolveBaseURLs fills the per-service base URLs.
func (c *Config) ResolveBaseURLs(lookup LookupFunc) {
	for _, svc := range Services {
		url := ""
		if !c.SameOrigin {
			t := Targets[svc]
			url = ResolveBaseURL(lookup, t.Keys, t.Fallback)
		}
		c.SetBaseURL(svc, url)
	}
	c.Origin = strings.TrimRight(strings.TrimSpace(c.Origin), "/")
}

// BaseURL returns the resolved base URL of svc.
func (c *Config) BaseURL(svc Service) string {
	switch svc {
	case ServiceUsers:
		return c.UsersBaseURL
	case ServiceProducts:
		return c.ProductsBaseURL
	case ServiceSearch:
		return c.SearchBaseURL
	default:
		return ""
	}
}

// SetBaseURL overrides the base URL of svc.
func (c *Config) SetBaseURL(svc Service, url string) {
	switch svc {
	case ServiceUsers:
		c.UsersBaseURL = url
	case ServiceProducts:
		c.ProductsBaseURL = url
	case ServiceSearch:
		c.SearchBaseURL = url
	}
}

// Validate rejects values envconfig accepts but the client cannot use.
func (c *Config) Validate() error {
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be >= 0, got %s", c.HTTPTimeout)
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("unsupported LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return nil
}

// Level returns the configured zerolog level, defaulting to info.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// MarshalZerologObject lets the resolved configuration be logged with
// log.Info().EmbedObject(cfg).
func (c *Config) MarshalZerologObject(e *zerolog.Event) {
	e.Str("users_base_url", c.UsersBaseURL).
		Str("products_base_url", c.ProductsBaseURL).
		Str("search_base_url", c.SearchBaseURL).
		Bool("same_origin", c.SameOrigin).
		Str("origin", c.Origin).
		Dur("http_timeout", c.HTTPTimeout).
		Bool("debug", c.Debug)
}
