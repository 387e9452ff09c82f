package pciids

import (
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/exodus-project/pciids/fetch"
)

func TestOptionsApply(t *testing.T) {
	logger := slog.Default()
	tracer := sdktrace.NewTracerProvider().Tracer("test")
	meter := noop.NewMeterProvider().Meter("test")
	client := &http.Client{Timeout: time.Second}

	cfg := &dbConfig{}
	for _, opt := range []Option{
		WithLogger(logger),
		WithTracer(tracer),
		WithMeter(meter),
		WithHTTPClient(client),
		WithSourceURL("https://mirror.example.com/pci.ids"),
	} {
		opt(cfg)
	}

	assert.Same(t, logger, cfg.logger)
	assert.NotNil(t, cfg.tracer)
	assert.NotNil(t, cfg.meter)
	assert.Same(t, client, cfg.httpClient)
	assert.Equal(t, "https://mirror.example.com/pci.ids", cfg.sourceURL)
}

func TestWithCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cache, err := fetch.NewCache(fetch.CacheOptions{URL: "redis://" + mr.Addr()})
	require.NoError(t, err)
	defer cache.Close()

	cfg := &dbConfig{}
	WithCache(cache)(cfg)
	assert.Same(t, cache, cfg.cache)
}

func TestNewDefaults(t *testing.T) {
	db, err := New()
	require.NoError(t, err)
	assert.False(t, db.Ready())
	assert.Equal(t, Stats{}, db.Stats())
}
