package pciids

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/exodus-project/pciids/fetch"
)

// Option configures a Database.
type Option func(*dbConfig)

// dbConfig holds configuration for a Database instance.
type dbConfig struct {
	logger     *slog.Logger
	tracer     trace.Tracer
	meter      metric.Meter
	httpClient *http.Client
	sourceURL  string
	cache      *fetch.Cache
}

// WithLogger sets a custom logger. If not provided, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(c *dbConfig) {
		c.logger = logger
	}
}

// WithTracer sets an OpenTelemetry tracer. When set, every load runs inside
// a span that records the outcome.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *dbConfig) {
		c.tracer = tracer
	}
}

// WithMeter sets an OpenTelemetry meter. When set, load duration and query
// counts are recorded.
func WithMeter(meter metric.Meter) Option {
	return func(c *dbConfig) {
		c.meter = meter
	}
}

// WithHTTPClient sets the HTTP client used by LoadRemote.
func WithHTTPClient(client *http.Client) Option {
	return func(c *dbConfig) {
		c.httpClient = client
	}
}

// WithSourceURL overrides the remote location of the pci.ids file used by
// LoadRemote. Defaults to fetch.DefaultURL.
func WithSourceURL(url string) Option {
	return func(c *dbConfig) {
		c.sourceURL = url
	}
}

// WithCache attaches a byte cache consulted by LoadRemote before the mirror.
func WithCache(cache *fetch.Cache) Option {
	return func(c *dbConfig) {
		c.cache = cache
	}
}
