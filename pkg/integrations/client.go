package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/protocomposer/pkg/cache"
	"github.com/matzehuels/protocomposer/pkg/errors"
	"github.com/matzehuels/protocomposer/pkg/observability"
)

// Client provides shared HTTP functionality for remote tag sources.
// It handles caching, retry logic, and common request headers.
type Client struct {
	http    *http.Client
	cache   cache.Cache
	prefix  string
	ttl     time.Duration
	headers map[string]string
}

// NewClient creates a Client with the given cache and default headers.
// Cache keys passed to [Client.Cached] are prefixed with prefix and stored
// for ttl. Headers are applied to all requests made through this client.
// Pass nil for headers if no default headers are needed.
func NewClient(c cache.Cache, prefix string, ttl time.Duration, headers map[string]string) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Client{
		http:    NewHTTPClient(),
		cache:   c,
		prefix:  prefix,
		ttl:     ttl,
		headers: headers,
	}
}

// Cached retrieves a value from cache or executes fetch and caches the result.
// If refresh is true, the cache is bypassed and fetch is always called.
// The fetch function should populate v; on success, v is stored in the cache.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	return Cached(ctx, c.cache, c.prefix+key, c.ttl, refresh, v, fetch)
}

// Cached is the cache-or-fetch routine behind [Client.Cached], usable by
// sources that do not speak HTTP (such as the git transport).
// Corrupt cache payloads are treated as misses.
func Cached(ctx context.Context, c cache.Cache, key string, ttl time.Duration, refresh bool, v any, fetch func() error) error {
	hooks := observability.Cache()
	if !refresh {
		if data, ok, err := c.Get(ctx, key); err == nil && ok {
			if json.Unmarshal(data, v) == nil {
				hooks.OnCacheHit(ctx, keyType(key))
				return nil
			}
		}
		hooks.OnCacheMiss(ctx, keyType(key))
	}
	if err := cache.RetryWithBackoff(ctx, fetch); err != nil {
		return err
	}
	if data, err := json.Marshal(v); err == nil {
		if c.Set(ctx, key, data, ttl) == nil {
			hooks.OnCacheSet(ctx, keyType(key), len(data))
		}
	}
	return nil
}

// keyType reports the coarse category of a cache key for hooks.
func keyType(key string) string {
	for _, part := range strings.Split(key, ":") {
		switch part {
		case "tags", "http":
			return part
		}
	}
	return "other"
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
// It uses the client's default headers.
func (c *Client) Get(ctx context.Context, url string, v any) error {
	return c.GetWithHeaders(ctx, url, nil, v)
}

// GetWithHeaders performs an HTTP GET with additional headers merged with defaults.
// Request-specific headers override client defaults for the same key.
func (c *Client) GetWithHeaders(ctx context.Context, url string, headers map[string]string, v any) error {
	resp, err := c.doRequest(ctx, url, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(v)
}

// GetPage performs an HTTP GET, decodes the JSON body into v and returns the
// URL of the next page advertised in the Link header, or "" on the last page.
func (c *Client) GetPage(ctx context.Context, url string, v any) (string, error) {
	resp, err := c.doRequest(ctx, url, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return "", err
	}
	return NextPageURL(resp.Header.Get("Link")), nil
}

func (c *Client) doRequest(ctx context.Context, url string, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, req.URL.Host, req.URL.Path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, req.URL.Host, req.URL.Path, err)
		return nil, cache.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	hooks.OnResponse(ctx, req.Method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

func checkStatus(resp *http.Response) error {
	code := resp.StatusCode
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusTooManyRequests,
		code == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0":
		return &errors.RateLimitedError{RetryAfter: retryAfter(resp.Header)}
	case code >= 500:
		return cache.Retryable(fmt.Errorf("%w: status %d", ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}

// retryAfter reads the wait time from Retry-After, or from GitHub's
// X-RateLimit-Reset epoch. Zero means unknown.
func retryAfter(h http.Header) int {
	if secs, err := strconv.Atoi(h.Get("Retry-After")); err == nil && secs > 0 {
		return secs
	}
	if reset, err := strconv.ParseInt(h.Get("X-RateLimit-Reset"), 10, 64); err == nil {
		if wait := time.Until(time.Unix(reset, 0)); wait > 0 {
			return int(wait.Round(time.Second).Seconds())
		}
	}
	return 0
}
