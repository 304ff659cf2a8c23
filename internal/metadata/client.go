// Package metadata fetches bibliographic metadata for corpus documents from
// the Semantic Scholar graph API. Lookups are best-effort: any failure other
// than rate limiting degrades to an empty value.
package metadata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/claimgraph/internal/cache"
	"github.com/ppiankov/claimgraph/internal/logger"
	"github.com/ppiankov/claimgraph/internal/metrics"
	"github.com/ppiankov/claimgraph/internal/model"
	"github.com/ppiankov/claimgraph/internal/util"
	"github.com/ppiankov/claimgraph/internal/worker"
)

const maxResponseBytes = 32 << 20

// metadataSleepFunc waits between rate-limited attempts (injectable for tests)
var metadataSleepFunc = sleepContext

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Client talks to the metadata API
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	userAgent  string
	retryDelay time.Duration
	maxRetries int
	limiter    *worker.Limiter
	cache      cache.Cache
	log        *logger.Logger
}

// NewClient creates a client. A nil limiter disables throttling and a nil
// cache disables response caching.
func NewClient(cfg model.MetadataConfig, limiter *worker.Limiter, c cache.Cache, log *logger.Logger) *Client {
	if limiter == nil {
		limiter = worker.NewLimiter(0, 1)
	}
	if c == nil {
		c = cache.Nop{}
	}
	if log == nil {
		log = logger.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		userAgent:  cfg.UserAgent,
		retryDelay: cfg.RetryDelay,
		maxRetries: cfg.MaxRetries,
		limiter:    limiter,
		cache:      c,
		log:        log,
	}
}

// paperURL builds a request URL for one paper; suffix is appended to the path
func (c *Client) paperURL(paperID, suffix, query string) string {
	return fmt.Sprintf("%s/paper/%s%s?%s", c.baseURL, paperID, suffix, query)
}

// get returns the body of a successful response, or ok=false after logging why not
func (c *Client) get(ctx context.Context, endpoint, rawURL string) ([]byte, bool) {
	key := cache.CacheKey(rawURL)
	if body, found := c.cache.Get(key); found {
		metrics.MetadataRequests.WithLabelValues(endpoint, "cached").Inc()
		return body, true
	}

	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx, rawURL); err != nil {
			c.log.Warn("metadata request aborted", "url", rawURL, "error", err)
			metrics.MetadataRequests.WithLabelValues(endpoint, "error").Inc()
			return nil, false
		}

		status, body, err := c.do(ctx, rawURL)
		if err != nil {
			c.log.Warn("metadata request failed", "url", rawURL, "error", err)
			metrics.MetadataRequests.WithLabelValues(endpoint, "error").Inc()
			return nil, false
		}

		switch {
		case status == http.StatusOK:
			if err := c.cache.Set(key, body, 0); err != nil {
				c.log.Debug("metadata cache write failed", "url", rawURL, "error", err)
			}
			metrics.MetadataRequests.WithLabelValues(endpoint, "ok").Inc()
			return body, true

		case isRateLimited(status):
			metrics.MetadataRetries.Inc()
			if c.maxRetries > 0 && attempt >= c.maxRetries {
				c.log.Warn("metadata request still rate limited, giving up", "url", rawURL, "status", status, "attempts", attempt+1)
				metrics.MetadataRequests.WithLabelValues(endpoint, "rate_limited").Inc()
				return nil, false
			}
			c.log.Info("rate limited, backing off", "url", rawURL, "status", status, "delay", c.retryDelay)
			if err := metadataSleepFunc(ctx, c.retryDelay); err != nil {
				c.log.Warn("metadata backoff interrupted", "url", rawURL, "error", err)
				metrics.MetadataRequests.WithLabelValues(endpoint, "error").Inc()
				return nil, false
			}

		default:
			c.log.Warn("metadata request returned non-200", "url", rawURL, "status", status, "body", truncate(string(body), 200))
			metrics.MetadataRequests.WithLabelValues(endpoint, "status").Inc()
			return nil, false
		}
	}
}

func (c *Client) do(ctx context.Context, rawURL string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read body: %w", err)
	}
	return resp.StatusCode, body, nil
}

// isRateLimited reports the statuses the API uses for throttling and overload
func isRateLimited(status int) bool {
	return status == http.StatusTooManyRequests ||
		status == http.StatusForbidden ||
		status == http.StatusGatewayTimeout
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
