// Package cftc resolves cftc:// pseudo-endpoints against the CFTC public
// reporting Socrata API. CME positioning metrics address their data as
// "cftc://legacy/futonly/{dataset}/{market}"; both real providers delegate
// those here, so the weekly COT report is reachable regardless of which
// market-data provider is configured.
package cftc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"btcpanel/pkg/provider"
)

// Scheme prefixes every CFTC pseudo-endpoint.
const Scheme = "cftc://"

const (
	socrataBase = "https://publicreporting.cftc.gov/resource"
	dateColumn  = "report_date_as_yyyy_mm_dd"
)

// Known market slugs and their COT market_and_exchange_names filter.
var markets = map[string]string{
	"cme-bitcoin": "BITCOIN - CHICAGO MERCANTILE EXCHANGE",
}

// IsEndpoint reports whether an endpoint should be resolved here.
func IsEndpoint(endpoint string) bool {
	return strings.HasPrefix(endpoint, Scheme)
}

// Fetch resolves a cftc:// endpoint to its Socrata dataset URL, performs the
// request with the caller's HTTP client and wraps the result rows in the
// standard envelope, newest report first. The only recognized parameter is
// "limit".
func Fetch(ctx context.Context, hc *http.Client, endpoint string, params map[string]string) *provider.Response {
	dataset, market, err := parseEndpoint(endpoint)
	if err != nil {
		return provider.Failure(err.Error(), 0)
	}

	q := url.Values{}
	q.Set("market_and_exchange_names", market)
	q.Set("$order", dateColumn+" DESC")
	if limit := strings.TrimSpace(params["limit"]); limit != "" {
		q.Set("$limit", limit)
	}
	u := fmt.Sprintf("%s/%s.json?%s", socrataBase, dataset, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return provider.Failure(fmt.Sprintf("build request: %v", err), 0)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return provider.Failure(fmt.Sprintf("request %s: %v", endpoint, err), 0)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return provider.Failure(fmt.Sprintf("read response %s: %v", endpoint, err), resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return provider.Failure(fmt.Sprintf("http status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), resp.StatusCode)
	}

	var rows []any
	if err := json.Unmarshal(body, &rows); err != nil {
		return provider.Failure(fmt.Sprintf("decode response %s: %v", endpoint, err), resp.StatusCode)
	}
	return provider.OK(map[string]any{"code": "0", "msg": "ok", "data": rows}, resp.StatusCode)
}

// parseEndpoint splits "cftc://legacy/futonly/{dataset}/{market-slug}" into
// the Socrata dataset ID and the market name filter.
func parseEndpoint(endpoint string) (dataset, market string, err error) {
	parts := strings.Split(strings.TrimPrefix(endpoint, Scheme), "/")
	if len(parts) != 4 {
		return "", "", fmt.Errorf("malformed cftc endpoint %q", endpoint)
	}
	dataset = parts[2]
	market, ok := markets[parts[3]]
	if !ok {
		return "", "", fmt.Errorf("unknown cftc market %q", parts[3])
	}
	return dataset, market, nil
}
