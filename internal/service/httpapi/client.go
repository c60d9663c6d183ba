package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kapu/ai-demo-hub/internal/constants"
	"github.com/kapu/ai-demo-hub/internal/metrics"
	"github.com/kapu/ai-demo-hub/internal/util"
	"github.com/kapu/ai-demo-hub/pkg/errors"
	"go.uber.org/zap"
)

// Requester is what the demo services need from an upstream API client.
type Requester interface {
	Get(ctx context.Context, path string, params url.Values) ([]byte, error)
	GetJSON(ctx context.Context, path string, params url.Values, dest any) error
}

// Client issues GET requests against one third-party API. Transport errors and 5xx
// responses are retried with exponential backoff; 4xx responses fail immediately.
type Client struct {
	upstream    string
	baseURL     string
	httpClient  *http.Client
	headers     map[string]string
	maxAttempts int
	baseDelay   time.Duration
	jitter      time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
	logger      *zap.Logger
}

type Option func(*Client)

func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers[key] = value
	}
}

func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

func WithBackoff(base, jitter time.Duration) Option {
	return func(c *Client) {
		c.baseDelay = base
		c.jitter = jitter
	}
}

func NewClient(upstream, baseURL string, httpClient *http.Client, logger *zap.Logger, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: constants.APIConfig.HTTPTimeout}
	}

	c := &Client{
		upstream:    upstream,
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  httpClient,
		headers:     map[string]string{"Accept": "application/json"},
		maxAttempts: constants.RetryConfig.MaxAttempts,
		baseDelay:   constants.RetryConfig.BaseDelay,
		jitter:      constants.RetryConfig.Jitter,
		sleep:       sleepContext,
		logger:      logger.With(zap.String("upstream", upstream)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	reqURL := c.buildURL(path, params)
	var lastErr error

	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := c.computeDelay(attempt - 1)
			c.logger.Warn("Request failed, retrying",
				zap.Error(lastErr),
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", delay),
			)
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		body, status, err := c.do(ctx, reqURL)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = errors.NewAPIError("request failed", c.upstream, 0, map[string]any{"path": path}).WithCause(redactError(err))
			continue
		}

		if status >= 500 {
			lastErr = errors.NewAPIError(fmt.Sprintf("Server error: %d", status), c.upstream, status, map[string]any{
				"path": path,
			})
			continue
		}

		if status >= 400 {
			return nil, errors.NewAPIError(fmt.Sprintf("Client error: %d", status), c.upstream, status, map[string]any{
				"path": path,
				"body": util.Preview(string(body), constants.StringLimits.ErrorBody),
			}).WithBody(body)
		}

		return body, nil
	}

	c.logger.Error("Request exhausted retries",
		zap.String("url", redact(reqURL)),
		zap.Error(lastErr),
	)
	return nil, lastErr
}

func (c *Client) GetJSON(ctx context.Context, path string, params url.Values, dest any) error {
	body, err := c.Get(ctx, path, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return errors.NewAPIError("invalid JSON response", c.upstream, http.StatusOK, map[string]any{
			"path": path,
		}).WithCause(err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, reqURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveUpstream(c.upstream, 0, started)
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	metrics.ObserveUpstream(c.upstream, resp.StatusCode, started)
	if err != nil {
		return nil, 0, err
	}

	c.logger.Debug("Upstream response",
		zap.String("url", redact(reqURL)),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(started)),
	)
	return body, resp.StatusCode, nil
}

// buildURL joins path onto the base URL. Absolute paths (caption track links handed out
// by YouTube, for instance) are used as-is.
func (c *Client) buildURL(path string, params url.Values) string {
	reqURL := c.baseURL
	switch {
	case strings.HasPrefix(path, "http://"), strings.HasPrefix(path, "https://"):
		reqURL = path
	case path != "":
		reqURL += "/" + strings.TrimLeft(path, "/")
	}
	if len(params) > 0 {
		sep := "?"
		if strings.Contains(reqURL, "?") {
			sep = "&"
		}
		reqURL += sep + params.Encode()
	}
	return reqURL
}

func (c *Client) computeDelay(attempt int) time.Duration {
	base := c.baseDelay * time.Duration(math.Pow(2, float64(attempt)))
	jitter := time.Duration(rand.Float64() * float64(c.jitter))
	return base + jitter
}

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

var secretParams = []string{"access_key", "api_key", "key"}

// redact hides API keys before a URL reaches the logs.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	for _, name := range secretParams {
		if q.Has(name) {
			q.Set(name, "***")
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// redactError rewrites the URL that net/http embeds in transport errors.
func redactError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &url.Error{Op: urlErr.Op, URL: redact(urlErr.URL), Err: urlErr.Err}
	}
	return err
}
