package pciids

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exodus-project/pciids/fetch"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pciids.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfigFile(t, `
source_url: https://mirror.example.com/pci.ids
request_timeout: 5s
cache:
  url: redis://localhost:6379
  ttl: 1h
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://mirror.example.com/pci.ids", cfg.GetSourceURL())
	assert.Equal(t, 5*time.Second, cfg.GetRequestTimeout())
	require.NotNil(t, cfg.Cache)
	assert.Equal(t, time.Hour, cfg.Cache.GetTTL())
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := writeConfigFile(t, "source_url: [unterminated")
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestConfigDefaults(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, fetch.DefaultURL, cfg.GetSourceURL())
	assert.Equal(t, 30*time.Second, cfg.GetRequestTimeout())

	var cc *CacheConfig
	assert.Equal(t, 24*time.Hour, cc.GetTTL())
}

func TestConfigInvalidDurationFallsBack(t *testing.T) {
	cfg := &Config{RequestTimeout: "soon"}
	assert.Equal(t, 30*time.Second, cfg.GetRequestTimeout())

	cc := &CacheConfig{TTL: "later"}
	assert.Equal(t, 24*time.Hour, cc.GetTTL())
}

func TestNewFromConfig(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleIDs))
	}))
	defer srv.Close()

	cfg := &Config{SourceURL: srv.URL, RequestTimeout: "10s"}
	db, err := NewFromConfig(cfg)
	require.NoError(t, err)

	require.NoError(t, db.LoadRemote(context.Background()))
	assert.True(t, db.Ready())
}

func TestNewFromConfigWithCache(t *testing.T) {
	mr := miniredis.RunT(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleIDs))
	}))
	defer srv.Close()

	cfg := &Config{
		SourceURL: srv.URL,
		Cache:     &CacheConfig{URL: "redis://" + mr.Addr()},
	}
	db, err := NewFromConfig(cfg)
	require.NoError(t, err)

	require.NoError(t, db.LoadRemote(context.Background()))
	assert.True(t, db.Ready())
}

func TestNewFromConfigBadCacheURL(t *testing.T) {
	cfg := &Config{
		Cache: &CacheConfig{URL: "not a redis url"},
	}
	_, err := NewFromConfig(cfg)
	require.Error(t, err)

	var dbErr *DBError
	require.True(t, errors.As(err, &dbErr))
	assert.Equal(t, KindConfiguration, dbErr.Kind)
}
