package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// DefaultURL is the canonical location of the pci.ids file.
const DefaultURL = "https://pci-ids.ucw.cz/v2.2/pci.ids"

// Options configures a Fetcher. The zero value is usable and fetches the
// default mirror with a default client.
type Options struct {
	// URL is the location of the pci.ids file. Defaults to DefaultURL.
	URL string

	// Client is the HTTP client used for retrieval. Defaults to a client
	// with a 30 second timeout.
	Client *http.Client

	// Cache is an optional byte cache consulted before the mirror and
	// updated after a successful fetch. May be nil.
	Cache *Cache

	// Logger receives debug and degradation messages. Defaults to
	// slog.Default().
	Logger *slog.Logger
}

// Fetcher retrieves the pci.ids file contents. It is safe for concurrent use
// as long as the underlying http.Client is.
type Fetcher struct {
	url    string
	client *http.Client
	cache  *Cache
	logger *slog.Logger
}

// New creates a Fetcher from the given options, filling in defaults for
// unset fields.
func New(opts Options) *Fetcher {
	if opts.URL == "" {
		opts.URL = DefaultURL
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Fetcher{
		url:    opts.URL,
		client: opts.Client,
		cache:  opts.Cache,
		logger: opts.Logger,
	}
}

// URL returns the configured source URL.
func (f *Fetcher) URL() string {
	return f.url
}

// Fetch returns the raw pci.ids bytes. The cache, if configured, is tried
// first; on a miss or cache failure the mirror is fetched directly and the
// cache is refreshed best-effort.
func (f *Fetcher) Fetch(ctx context.Context) ([]byte, error) {
	if f.cache != nil {
		data, ok, err := f.cache.Get(ctx, f.url)
		if err != nil {
			f.logger.Warn("pci.ids cache lookup failed, fetching directly", "url", f.url, "error", err)
		} else if ok {
			f.logger.Debug("pci.ids served from cache", "url", f.url, "bytes", len(data))
			return data, nil
		}
	}

	data, err := f.fetchRemote(ctx)
	if err != nil {
		return nil, err
	}

	if f.cache != nil {
		if err := f.cache.Set(ctx, f.url, data); err != nil {
			f.logger.Warn("pci.ids cache update failed", "url", f.url, "error", err)
		}
	}

	return data, nil
}

func (f *Fetcher) fetchRemote(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build pci.ids request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch pci.ids from %s: %w", f.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch pci.ids from %s: unexpected status %s", f.url, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read pci.ids response: %w", err)
	}

	f.logger.Debug("pci.ids fetched", "url", f.url, "bytes", len(data))
	return data, nil
}
