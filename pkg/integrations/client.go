// Package integrations provides the shared HTTP plumbing for all
// distributor API clients: identity rotation, bounded concurrency,
// retry with backoff, and response caching.
package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/partstack/partstack/pkg/cache"
	"github.com/partstack/partstack/pkg/errors"
	"github.com/partstack/partstack/pkg/httputil"
)

// Client provides shared HTTP functionality for distributor API
// clients. Each request attempt after a failure acquires a fresh
// identity from the pool to reduce correlated failures.
type Client struct {
	pool    *httputil.Pool
	sem     *httputil.Semaphore
	cache   cache.Cache
	prefix  string
	ttl     time.Duration
	headers map[string]string
}

// Options configures a Client. Zero values select sane defaults.
type Options struct {
	Cache         cache.Cache
	CachePrefix   string
	CacheTTL      time.Duration
	MaxConcurrent int
	Headers       map[string]string
	Timeout       time.Duration
}

// NewClient creates a Client backed by an identity pool. Pass a nil
// cache to disable response caching.
func NewClient(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = httpTimeout
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 4
	}
	c := opts.Cache
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Client{
		pool:    httputil.NewPool(opts.Timeout),
		sem:     httputil.NewSemaphore(opts.MaxConcurrent),
		cache:   c,
		prefix:  opts.CachePrefix,
		ttl:     opts.CacheTTL,
		headers: opts.Headers,
	}
}

// Close releases all pooled identities.
func (c *Client) Close() { c.pool.Close() }

// Cached retrieves a value from cache or executes fetch and caches the
// result. The fetch function should populate v; on success, v is stored
// under the prefixed key.
func (c *Client) Cached(ctx context.Context, key string, v any, fetch func() error) error {
	full := c.prefix + key
	if data, ok, _ := c.cache.Get(ctx, full); ok {
		return json.Unmarshal(data, v)
	}
	if err := fetch(); err != nil {
		return err
	}
	if data, err := json.Marshal(v); err == nil {
		_ = c.cache.Set(ctx, full, data, c.ttl)
	}
	return nil
}

// GetJSON performs a GET request and decodes the JSON response into v.
func (c *Client) GetJSON(ctx context.Context, url string, headers map[string]string, v any) error {
	return c.do(ctx, http.MethodGet, url, nil, headers, v, nil)
}

// PostJSON performs a POST request with a JSON body and decodes the
// JSON response into v.
func (c *Client) PostJSON(ctx context.Context, url string, payload any, headers map[string]string, v any) error {
	return c.PostJSONChecked(ctx, url, payload, headers, v, nil)
}

// PostJSONChecked is PostJSON with a post-decode check evaluated inside
// the retry loop. APIs that embed error envelopes in 200 responses
// return a retryable error from check to trigger a retry with a fresh
// identity.
func (c *Client) PostJSONChecked(ctx context.Context, url string, payload any, headers map[string]string, v any, check func() error) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, url, body, headers, v, check)
}

// do executes a request under the concurrency gate with retry. The
// first attempt reuses a pooled identity; each retry mints a fresh one.
func (c *Client) do(ctx context.Context, method, url string, body []byte, headers map[string]string, v any, check func() error) error {
	if err := c.sem.Acquire(ctx); err != nil {
		return err
	}
	defer c.sem.Release()

	attempt := 0
	return httputil.RetryWithBackoff(ctx, func() error {
		var id *httputil.Identity
		if attempt == 0 {
			id = c.pool.Acquire()
		} else {
			id = c.pool.AcquireFresh()
		}
		attempt++
		if err := c.once(ctx, id, method, url, body, headers, v); err != nil {
			return err
		}
		if check != nil {
			return check()
		}
		return nil
	})
}

func (c *Client) once(ctx context.Context, id *httputil.Identity, method, url string, body []byte, headers map[string]string, v any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	for k, val := range id.Headers {
		req.Header.Set(k, val)
	}
	for k, val := range c.headers {
		req.Header.Set(k, val)
	}
	for k, val := range headers {
		req.Header.Set(k, val)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := id.Client.Do(req)
	if err != nil {
		if os.IsTimeout(err) {
			return httputil.Retryable(errors.Wrap(errors.ErrCodeTimeout, err, "request timed out"))
		}
		return httputil.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	defer resp.Body.Close()

	if err := checkStatus(resp.StatusCode, resp.Header.Get("Retry-After")); err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
