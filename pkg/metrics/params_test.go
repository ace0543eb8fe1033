package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeParamsInterval(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want string
	}{
		{"int hours", 4, "4h"},
		{"string passthrough", "1d", "1d"},
		{"uppercase", "8H", "8h"},
		{"bare digits", "12", "12h"},
		{"unsupported falls back", "3h", "1h"},
		{"garbage falls back", "soon", "1h"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := NormalizeParams(map[string]any{"interval": tc.in})
			require.Equal(t, tc.want, out["interval"])
		})
	}
}

func TestNormalizeParamsLimit(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want string
	}{
		{"int", 30, "30"},
		{"numeric string", "14", "14"},
		{"non-numeric string", "many", "1"},
		{"other type", 2.5, "1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := NormalizeParams(map[string]any{"limit": tc.in})
			require.Equal(t, tc.want, out["limit"])
		})
	}
}

func TestNormalizeParamsSymbol(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want string
	}{
		{"uppercased", "btcusdt", "BTCUSDT"},
		{"bitcoin alias", "Bitcoin", "BTC"},
		{"bitcoinusdt alias", "BITCOINUSDT", "BTC"},
		{"non-string", 42, "BTC"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := NormalizeParams(map[string]any{"symbol": tc.in})
			require.Equal(t, tc.want, out["symbol"])
		})
	}
}

func TestNormalizeParamsOtherKeys(t *testing.T) {
	out := NormalizeParams(map[string]any{
		"exchange": "Binance",
		"range":    "60d",
		"count":    7,
	})
	require.Equal(t, "Binance", out["exchange"])
	require.Equal(t, "60d", out["range"])
	require.Equal(t, "7", out["count"])
}
