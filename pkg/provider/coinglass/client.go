// Package coinglass implements the paid CoinGlass v4 data provider.
package coinglass

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"btcpanel/pkg/provider"
	"btcpanel/pkg/provider/cftc"
)

const (
	defaultBaseURL = "https://open-api-v4.coinglass.com"
	defaultTimeout = 30 * time.Second
	defaultPace    = 100 * time.Millisecond

	apiKeyHeader = "CG-API-KEY"
)

// Client is a CoinGlass v4 REST client. All endpoints are plain GETs with
// query parameters; the API key travels in a header. Requests are paced by a
// burst-1 limiter so batch runs stay inside the per-minute quota.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Option customises the client.
type Option func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimRight(strings.TrimSpace(u), "/"); trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithPace sets the minimum delay between consecutive requests.
func WithPace(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.limiter = rate.NewLimiter(rate.Every(d), 1)
		}
	}
}

// NewClient builds a CoinGlass client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
		limiter:    rate.NewLimiter(rate.Every(defaultPace), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func init() {
	provider.Register("coinglass", func(name string, cfg *provider.ProviderConfig) (provider.Provider, error) {
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("coinglass provider requires api_key (set COINGLASS_API_KEY)")
		}
		opts := []Option{}
		if cfg.BaseURL != "" {
			opts = append(opts, WithBaseURL(cfg.BaseURL))
		}
		if cfg.Timeout > 0 {
			opts = append(opts, WithTimeout(cfg.Timeout))
		}
		if cfg.Pace > 0 {
			opts = append(opts, WithPace(cfg.Pace))
		}
		return NewClient(cfg.APIKey, opts...), nil
	})
}

// Fetch performs a single GET and classifies the outcome. Success requires
// both a 2xx transport status and a success code in the body; an HTTP 200
// carrying {"code":"400"} is a failure.
func (c *Client) Fetch(ctx context.Context, endpoint string, params map[string]string) *provider.Response {
	if cftc.IsEndpoint(endpoint) {
		return cftc.Fetch(ctx, c.httpClient, endpoint, params)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return provider.Failure(fmt.Sprintf("pacing interrupted: %v", err), 0)
	}

	u := c.baseURL + endpoint
	if len(params) > 0 {
		q := url.Values{}
		for k, v := range params {
			q.Set(k, v)
		}
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return provider.Failure(fmt.Sprintf("build request: %v", err), 0)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return provider.Failure(fmt.Sprintf("request %s: %v", endpoint, err), 0)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return provider.Failure(fmt.Sprintf("read response %s: %v", endpoint, err), resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return provider.Failure(fmt.Sprintf("http status %d: %s", resp.StatusCode, truncate(body, 200)), resp.StatusCode)
	}

	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return provider.Failure(fmt.Sprintf("decode response %s: %v", endpoint, err), resp.StatusCode)
	}

	if !bodyOK(decoded) {
		msg, _ := decoded["msg"].(string)
		if msg == "" {
			msg = fmt.Sprintf("api code %v", decoded["code"])
		}
		return provider.Failure(msg, resp.StatusCode)
	}
	return provider.OK(decoded, resp.StatusCode)
}

// bodyOK reports whether the v4 envelope carries a success code. The API
// emits "0", "00" or "success" depending on the endpoint generation.
func bodyOK(body map[string]any) bool {
	code, ok := body["code"]
	if !ok {
		return false
	}
	s := strings.ToLower(strings.TrimSpace(fmt.Sprintf("%v", code)))
	return s == "0" || s == "00" || s == "success"
}

func truncate(b []byte, n int) string {
	s := strings.TrimSpace(string(b))
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
