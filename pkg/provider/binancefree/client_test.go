package binancefree

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestClient(serverURL string) *Client {
	return NewClient(
		WithFuturesURL(serverURL),
		WithSpotURL(serverURL),
		WithPace(time.Millisecond),
		WithTimeout(2*time.Second),
	)
}

func serve(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(handler))
	t.Cleanup(server.Close)
	return newTestClient(server.URL)
}

func dataRows(t *testing.T, resp map[string]any) []any {
	t.Helper()
	rows, ok := resp["data"].([]any)
	require.True(t, ok)
	return rows
}

func TestFetchOpenInterestHistoryTranslation(t *testing.T) {
	var gotPath, gotSymbol, gotPeriod string
	client := serve(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotSymbol = r.URL.Query().Get("symbol")
		gotPeriod = r.URL.Query().Get("period")
		w.Write([]byte(`[
			{"symbol":"BTCUSDT","sumOpenInterest":"90000.1","sumOpenInterestValue":"8.1e9","timestamp":1700000000000},
			{"symbol":"BTCUSDT","sumOpenInterest":"91000.2","sumOpenInterestValue":"8.2e9","timestamp":1700043200000}
		]`))
	})

	resp := client.Fetch(context.Background(),
		"/api/futures/open-interest/aggregated-history",
		map[string]string{"interval": "8h", "limit": "2", "symbol": "BTC"})

	require.True(t, resp.Success)
	require.Equal(t, "/futures/data/openInterestHist", gotPath)
	require.Equal(t, "BTCUSDT", gotSymbol, "BTC must map to the Binance pair")
	require.Equal(t, "12h", gotPeriod, "8h must coarsen to the nearest Binance period")
	require.Equal(t, "0", resp.Data["code"])

	rows := dataRows(t, resp.Data)
	require.Len(t, rows, 2)
	first := rows[0].(map[string]any)
	require.Equal(t, 8.1e9, first["close"], "USD-valued OI must populate close")
	require.Equal(t, 1700000000000.0, first["time"])
}

func TestFetchFundingHistoryTranslation(t *testing.T) {
	var gotPath string
	client := serve(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`[{"symbol":"BTCUSDT","fundingRate":"0.0001","fundingTime":1700000000000}]`))
	})

	resp := client.Fetch(context.Background(),
		"/api/futures/funding-rate/oi-weight-history",
		map[string]string{"interval": "8h", "limit": "30", "symbol": "BTC"})

	require.True(t, resp.Success)
	require.Equal(t, "/fapi/v1/fundingRate", gotPath)

	rows := dataRows(t, resp.Data)
	require.Len(t, rows, 1)
	row := rows[0].(map[string]any)
	require.Equal(t, 0.0001, row["close"])
	require.Equal(t, 1700000000000.0, row["time"])
}

func TestFetchGlobalLongShortScaling(t *testing.T) {
	client := serve(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/futures/data/globalLongShortAccountRatio", r.URL.Path)
		w.Write([]byte(`[{"symbol":"BTCUSDT","longAccount":"0.555","shortAccount":"0.445","longShortRatio":"1.247","timestamp":1700000000000}]`))
	})

	resp := client.Fetch(context.Background(),
		"/api/futures/global-long-short-account-ratio/history",
		map[string]string{"interval": "1h", "limit": "1", "symbol": "BTCUSDT", "exchange": "Binance"})

	require.True(t, resp.Success)
	row := dataRows(t, resp.Data)[0].(map[string]any)
	require.InDelta(t, 55.5, row["global_account_long_percent"], 1e-9, "fractions must be scaled to percent")
	require.InDelta(t, 44.5, row["global_account_short_percent"], 1e-9)
	require.Equal(t, 1.247, row["global_account_long_short_ratio"])
}

func TestFetchGlobalLongShortOtherExchange(t *testing.T) {
	called := false
	client := serve(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	resp := client.Fetch(context.Background(),
		"/api/futures/global-long-short-account-ratio/history",
		map[string]string{"symbol": "BTCUSDT", "exchange": "OKX"})

	require.False(t, resp.Success)
	require.Equal(t, 501, resp.StatusCode)
	require.False(t, called, "unsupported venue must fail without a network call")
}

func TestFetchLiquidationProxyTranslation(t *testing.T) {
	var gotPeriod, gotLimit string
	client := serve(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/futures/data/takerlongshortRatio", r.URL.Path)
		gotPeriod = r.URL.Query().Get("period")
		gotLimit = r.URL.Query().Get("limit")
		w.Write([]byte(`[{"buyVol":"1000000","sellVol":"2500000","buySellRatio":"0.4","timestamp":1700000000000}]`))
	})

	resp := client.Fetch(context.Background(),
		"/api/futures/liquidation/aggregated-history",
		map[string]string{"interval": "4h", "limit": "6", "symbol": "BTC"})

	require.True(t, resp.Success)
	require.Equal(t, "4h", gotPeriod)
	require.Equal(t, "6", gotLimit)

	row := dataRows(t, resp.Data)[0].(map[string]any)
	require.Equal(t, 2500000.0, row["aggregated_long_liquidation_usd"], "sell pressure proxies long liquidations")
	require.Equal(t, 1000000.0, row["aggregated_short_liquidation_usd"], "buy pressure proxies short liquidations")
}

func TestFetchPassthroughWrapsEnvelope(t *testing.T) {
	client := serve(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v3/klines", r.URL.Path)
		require.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
		w.Write([]byte(`[[1700000000000,"44000","45500","43900","45000.25","120"]]`))
	})

	resp := client.Fetch(context.Background(), "/api/v3/klines",
		map[string]string{"symbol": "BTC", "interval": "1h", "limit": "2"})

	require.True(t, resp.Success)
	require.Equal(t, "0", resp.Data["code"])
	klines := dataRows(t, resp.Data)
	require.Len(t, klines, 1)
}

func TestFetchUnmappedEndpoint(t *testing.T) {
	client := newTestClient("http://127.0.0.1:0")
	resp := client.Fetch(context.Background(), "/api/option/exchange-vol-history", nil)
	require.False(t, resp.Success)
	require.Equal(t, 501, resp.StatusCode)
	require.Contains(t, resp.Err, "no mapping")
}

func TestFetchHTTPFailure(t *testing.T) {
	client := serve(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":-1003,"msg":"Too many requests"}`, http.StatusTooManyRequests)
	})

	resp := client.Fetch(context.Background(),
		"/api/futures/open-interest/aggregated-history",
		map[string]string{"symbol": "BTC"})

	require.False(t, resp.Success)
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestMapSymbol(t *testing.T) {
	require.Equal(t, "BTCUSDT", mapSymbol("BTC"))
	require.Equal(t, "BTCUSDT", mapSymbol("btcusdt"))
	require.Equal(t, "ETHUSDT", mapSymbol("ETH"))
	require.Equal(t, "BTCUSDT", mapSymbol(""))
}

func TestMapPeriod(t *testing.T) {
	require.Equal(t, "12h", mapPeriod("8h"))
	require.Equal(t, "1d", mapPeriod("24h"))
	require.Equal(t, "4h", mapPeriod("4h"))
	require.Equal(t, "1h", mapPeriod("snapshot"))
}
