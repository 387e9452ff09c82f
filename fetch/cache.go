package fetch

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheOptions configures the Redis connection backing a Cache.
type CacheOptions struct {
	// URL is the Redis connection string (e.g., "redis://localhost:6379").
	URL string

	// TLS configuration for secure connections.
	TLS *tls.Config

	// ConnectTimeout is the maximum time to wait for connection
	// establishment. Defaults to 5s.
	ConnectTimeout time.Duration

	// TTL is how long a cached pci.ids copy stays valid. Defaults to 24h.
	TTL time.Duration

	// KeyPrefix namespaces the cache keys. Defaults to "pciids".
	KeyPrefix string
}

// Cache is a Redis-backed byte cache for fetched pci.ids files, keyed by
// source URL.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewCache creates a Cache and verifies connectivity with a ping.
func NewCache(opts CacheOptions) (*Cache, error) {
	if opts.URL == "" {
		opts.URL = "redis://localhost:6379"
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 5 * time.Second
	}
	if opts.TTL == 0 {
		opts.TTL = 24 * time.Hour
	}
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = "pciids"
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	redisOpts.TLSConfig = opts.TLS
	redisOpts.DialTimeout = opts.ConnectTimeout

	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Cache{
		client: client,
		ttl:    opts.TTL,
		prefix: opts.KeyPrefix,
	}, nil
}

// Get returns the cached bytes for the given source URL. The second return
// value reports whether the key was present; a missing key is not an error.
func (c *Cache) Get(ctx context.Context, source string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, c.key(source)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache get %s: %w", source, err)
	}
	return data, true, nil
}

// Set stores the bytes for the given source URL with the configured TTL.
func (c *Cache) Set(ctx context.Context, source string, data []byte) error {
	if err := c.client.Set(ctx, c.key(source), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", source, err)
	}
	return nil
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}

func (c *Cache) key(source string) string {
	return fmt.Sprintf("%s:file:%s", c.prefix, source)
}
