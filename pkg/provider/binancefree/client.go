// Package binancefree implements a keyless fallback provider on top of the
// public Binance REST APIs. It answers the subset of CoinGlass endpoints the
// panel uses by translating them onto Binance equivalents and reshaping the
// rows into the v4-style envelope, so normalizers never know which provider
// served them.
package binancefree

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
	defaultFuturesURL = "https://fapi.binance.com"
	defaultSpotURL    = "https://api.binance.com"
	defaultTimeout    = 15 * time.Second
	defaultPace       = 100 * time.Millisecond

	providerName = "binance free mode"
)

// Translated CoinGlass endpoints.
const (
	epOIHistory        = "/api/futures/open-interest/aggregated-history"
	epFundingHistory   = "/api/futures/funding-rate/oi-weight-history"
	epGlobalLongShort  = "/api/futures/global-long-short-account-ratio/history"
	epLiquidationHist  = "/api/futures/liquidation/aggregated-history"
	epSpotKlinesPrefix = "/api/v3/"
)

// Client is the free-mode provider.
type Client struct {
	futuresURL string
	spotURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Option customises the client.
type Option func(*Client)

// WithFuturesURL overrides the futures API base URL.
func WithFuturesURL(u string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimRight(strings.TrimSpace(u), "/"); trimmed != "" {
			c.futuresURL = trimmed
		}
	}
}

// WithSpotURL overrides the spot API base URL.
func WithSpotURL(u string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimRight(strings.TrimSpace(u), "/"); trimmed != "" {
			c.spotURL = trimmed
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

// NewClient builds a free-mode client. No credentials are required.
func NewClient(opts ...Option) *Client {
	c := &Client{
		futuresURL: defaultFuturesURL,
		spotURL:    defaultSpotURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		limiter:    rate.NewLimiter(rate.Every(defaultPace), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func init() {
	provider.Register("binance_free", func(name string, cfg *provider.ProviderConfig) (provider.Provider, error) {
		opts := []Option{}
		if cfg.BaseURL != "" {
			opts = append(opts, WithFuturesURL(cfg.BaseURL))
		}
		if cfg.Timeout > 0 {
			opts = append(opts, WithTimeout(cfg.Timeout))
		}
		if cfg.Pace > 0 {
			opts = append(opts, WithPace(cfg.Pace))
		}
		return NewClient(opts...), nil
	})
}

// Fetch routes an endpoint to its Binance translation. Native Binance paths
// pass through unchanged, wrapped in the v4-style envelope so the rest of the
// pipeline sees a single body shape. Unmapped endpoints yield a typed
// not-supported failure, never a panic.
func (c *Client) Fetch(ctx context.Context, endpoint string, params map[string]string) *provider.Response {
	switch {
	case cftc.IsEndpoint(endpoint):
		return cftc.Fetch(ctx, c.httpClient, endpoint, params)
	case endpoint == epOIHistory:
		return c.fetchOpenInterestHistory(ctx, params)
	case endpoint == epFundingHistory:
		return c.fetchFundingHistory(ctx, params)
	case endpoint == epGlobalLongShort:
		return c.fetchGlobalLongShort(ctx, params)
	case endpoint == epLiquidationHist:
		return c.fetchLiquidationProxy(ctx, params)
	case strings.HasPrefix(endpoint, "/fapi/") || strings.HasPrefix(endpoint, "/futures/data/"):
		return c.passthrough(ctx, c.futuresURL, endpoint, params)
	case strings.HasPrefix(endpoint, epSpotKlinesPrefix):
		return c.passthrough(ctx, c.spotURL, endpoint, params)
	default:
		return provider.NotSupported(providerName, endpoint)
	}
}

func (c *Client) fetchOpenInterestHistory(ctx context.Context, params map[string]string) *provider.Response {
	q := map[string]string{
		"symbol": mapSymbol(params["symbol"]),
		"period": mapPeriod(params["interval"]),
		"limit":  orDefault(params["limit"], "30"),
	}
	rows, resp := c.getRows(ctx, c.futuresURL, "/futures/data/openInterestHist", q)
	if resp != nil {
		return resp
	}
	out := make([]any, 0, len(rows))
	for _, row := range rows {
		v, ok := numField(row, "sumOpenInterestValue", "sumOpenInterest")
		ts, tsOK := numField(row, "timestamp")
		if !ok || !tsOK {
			continue
		}
		out = append(out, map[string]any{"time": ts, "close": v})
	}
	return envelope(out)
}

func (c *Client) fetchFundingHistory(ctx context.Context, params map[string]string) *provider.Response {
	q := map[string]string{
		"symbol": mapSymbol(params["symbol"]),
		"limit":  orDefault(params["limit"], "30"),
	}
	rows, resp := c.getRows(ctx, c.futuresURL, "/fapi/v1/fundingRate", q)
	if resp != nil {
		return resp
	}
	out := make([]any, 0, len(rows))
	for _, row := range rows {
		v, ok := numField(row, "fundingRate")
		ts, tsOK := numField(row, "fundingTime")
		if !ok || !tsOK {
			continue
		}
		out = append(out, map[string]any{"time": ts, "close": v})
	}
	return envelope(out)
}

func (c *Client) fetchGlobalLongShort(ctx context.Context, params map[string]string) *provider.Response {
	// Binance only publishes its own account ratio; a request scoped to
	// another venue cannot be answered here.
	if ex := strings.ToLower(orDefault(params["exchange"], params["exchange_list"])); ex != "" && ex != "binance" {
		return provider.NotSupported(providerName, epGlobalLongShort+" exchange="+ex)
	}
	q := map[string]string{
		"symbol": mapSymbol(params["symbol"]),
		"period": mapPeriod(params["interval"]),
		"limit":  orDefault(params["limit"], "30"),
	}
	rows, resp := c.getRows(ctx, c.futuresURL, "/futures/data/globalLongShortAccountRatio", q)
	if resp != nil {
		return resp
	}
	out := make([]any, 0, len(rows))
	for _, row := range rows {
		long, longOK := numField(row, "longAccount")
		short, shortOK := numField(row, "shortAccount")
		ratio, ratioOK := numField(row, "longShortRatio")
		ts, tsOK := numField(row, "timestamp")
		if !longOK || !shortOK || !ratioOK || !tsOK {
			continue
		}
		out = append(out, map[string]any{
			"time":                            ts,
			"global_account_long_percent":     long * 100,
			"global_account_short_percent":    short * 100,
			"global_account_long_short_ratio": ratio,
		})
	}
	return envelope(out)
}

// fetchLiquidationProxy approximates liquidation buckets from taker buy/sell
// volume. Binance does not expose historical liquidations on the public API;
// sell volume stands in for long liquidations and buy volume for shorts. The
// magnitudes are volume, not liquidation notional, which is why the metric is
// flagged as an approximation downstream.
func (c *Client) fetchLiquidationProxy(ctx context.Context, params map[string]string) *provider.Response {
	q := map[string]string{
		"symbol": mapSymbol(params["symbol"]),
		"period": "4h",
		"limit":  "6",
	}
	rows, resp := c.getRows(ctx, c.futuresURL, "/futures/data/takerlongshortRatio", q)
	if resp != nil {
		return resp
	}
	out := make([]any, 0, len(rows))
	for _, row := range rows {
		buy, buyOK := numField(row, "buyVol")
		sell, sellOK := numField(row, "sellVol")
		ts, tsOK := numField(row, "timestamp")
		if !buyOK || !sellOK || !tsOK {
			continue
		}
		out = append(out, map[string]any{
			"time":                             ts,
			"aggregated_long_liquidation_usd":  sell,
			"aggregated_short_liquidation_usd": buy,
		})
	}
	return envelope(out)
}

func (c *Client) passthrough(ctx context.Context, base, endpoint string, params map[string]string) *provider.Response {
	body, resp := c.get(ctx, base, endpoint, translateNative(params))
	if resp != nil {
		return resp
	}
	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return provider.Failure(fmt.Sprintf("decode response %s: %v", endpoint, err), 200)
	}
	return envelope(decoded)
}

// get performs a GET and returns the raw body, or a ready failure Response.
func (c *Client) get(ctx context.Context, base, path string, params map[string]string) ([]byte, *provider.Response) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, provider.Failure(fmt.Sprintf("pacing interrupted: %v", err), 0)
	}

	u := base + path
	if len(params) > 0 {
		q := url.Values{}
		for k, v := range params {
			if v != "" {
				q.Set(k, v)
			}
		}
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, provider.Failure(fmt.Sprintf("build request: %v", err), 0)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, provider.Failure(fmt.Sprintf("request %s: %v", path, err), 0)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, provider.Failure(fmt.Sprintf("read response %s: %v", path, err), resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, provider.Failure(fmt.Sprintf("http status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), resp.StatusCode)
	}
	return body, nil
}

func (c *Client) getRows(ctx context.Context, base, path string, params map[string]string) ([]map[string]any, *provider.Response) {
	body, resp := c.get(ctx, base, path, params)
	if resp != nil {
		return nil, resp
	}
	var rows []map[string]any
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, provider.Failure(fmt.Sprintf("decode response %s: %v", path, err), 200)
	}
	return rows, nil
}

// envelope wraps translated rows in the v4-style success body.
func envelope(data any) *provider.Response {
	return provider.OK(map[string]any{"code": "0", "msg": "ok", "data": data}, 200)
}

// mapSymbol converts panel symbols to Binance pairs (BTC -> BTCUSDT).
func mapSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if s == "" {
		return "BTCUSDT"
	}
	if strings.Contains(s, "USDT") {
		return s
	}
	return s + "USDT"
}

// mapPeriod converts panel intervals to supported Binance stat periods.
// Binance has no 8h bucket, so 8h requests coarsen to 12h.
func mapPeriod(interval string) string {
	switch strings.ToLower(strings.TrimSpace(interval)) {
	case "5m", "15m", "30m", "1h", "2h", "4h", "6h", "12h", "1d":
		return strings.ToLower(strings.TrimSpace(interval))
	case "8h":
		return "12h"
	case "24h":
		return "1d"
	default:
		return "1h"
	}
}

// translateNative fixes up params for native Binance endpoints: the symbol
// still needs pair mapping, everything else passes through.
func translateNative(params map[string]string) map[string]string {
	out := make(map[string]string, len(params))
	for k, v := range params {
		if k == "symbol" {
			out[k] = mapSymbol(v)
			continue
		}
		out[k] = v
	}
	return out
}

func numField(row map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		switch v := row[k].(type) {
		case float64:
			return v, true
		case json.Number:
			if f, err := v.Float64(); err == nil {
				return f, true
			}
		case string:
			var f float64
			if _, err := fmt.Sscanf(strings.TrimSpace(v), "%g", &f); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
