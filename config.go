package pciids

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/exodus-project/pciids/fetch"
)

// Config represents a pciids configuration file.
type Config struct {
	// SourceURL is the remote location of the pci.ids file.
	// Default: fetch.DefaultURL.
	SourceURL string `yaml:"source_url,omitempty"`

	// RequestTimeout bounds the HTTP request of a remote load.
	// Format: Go duration string (e.g., "30s", "2m"). Default: 30s.
	RequestTimeout string `yaml:"request_timeout,omitempty"`

	// Cache configures the optional Redis byte cache for fetched files.
	Cache *CacheConfig `yaml:"cache,omitempty"`
}

// CacheConfig configures the Redis cache in front of the mirror.
type CacheConfig struct {
	// URL is the Redis connection string (e.g., "redis://localhost:6379").
	URL string `yaml:"url"`

	// TTL is how long a cached copy stays valid.
	// Format: Go duration string (e.g., "24h"). Default: 24h.
	TTL string `yaml:"ttl,omitempty"`
}

// GetSourceURL returns the configured source URL or the default.
func (c *Config) GetSourceURL() string {
	if c == nil || c.SourceURL == "" {
		return fetch.DefaultURL
	}
	return c.SourceURL
}

// GetRequestTimeout parses the request timeout and returns it. Returns the
// default value if not set or invalid.
func (c *Config) GetRequestTimeout() time.Duration {
	if c == nil || c.RequestTimeout == "" {
		return 30 * time.Second
	}
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetTTL parses the cache TTL and returns it. Returns the default value if
// not set or invalid.
func (cc *CacheConfig) GetTTL() time.Duration {
	if cc == nil || cc.TTL == "" {
		return 24 * time.Hour
	}
	d, err := time.ParseDuration(cc.TTL)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// LoadConfig reads and parses a yaml configuration file from the given path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// configOptions maps a Config onto Database options. A cache section causes
// a Redis connection attempt; its failure is returned rather than degraded,
// since an explicitly configured cache that never works is a configuration
// error.
func configOptions(cfg *Config) ([]Option, error) {
	opts := []Option{
		WithSourceURL(cfg.GetSourceURL()),
		WithHTTPClient(&http.Client{Timeout: cfg.GetRequestTimeout()}),
	}

	if cfg.Cache != nil {
		cache, err := fetch.NewCache(fetch.CacheOptions{
			URL: cfg.Cache.URL,
			TTL: cfg.Cache.GetTTL(),
		})
		if err != nil {
			return nil, &DBError{Op: "NewFromConfig", Kind: KindConfiguration, Err: err}
		}
		opts = append(opts, WithCache(cache))
	}

	return opts, nil
}
