package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// envelope wraps rows in the v4-style success body the providers return.
func envelope(data any) map[string]any {
	return map[string]any{"code": "0", "msg": "ok", "data": data}
}

func rows(items ...map[string]any) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, item)
	}
	return out
}

func TestBodyOK(t *testing.T) {
	require.True(t, bodyOK(map[string]any{"code": "0"}))
	require.True(t, bodyOK(map[string]any{"code": "00"}))
	require.True(t, bodyOK(map[string]any{"code": "Success"}))
	require.True(t, bodyOK(map[string]any{"code": 0}))
	require.False(t, bodyOK(map[string]any{"code": "400"}))
	require.False(t, bodyOK(map[string]any{"msg": "ok"}))
}

func TestToFloatCoercion(t *testing.T) {
	f, ok := toFloat("123.45")
	require.True(t, ok)
	require.Equal(t, 123.45, f)

	f, ok = toFloat(7)
	require.True(t, ok)
	require.Equal(t, 7.0, f)

	_, ok = toFloat("not a number")
	require.False(t, ok)

	_, ok = toFloat(nil)
	require.False(t, ok)
}

func TestExtractSeriesSortsAscending(t *testing.T) {
	raw := envelope(rows(
		map[string]any{"time": 3000, "close": 30.0},
		map[string]any{"time": 1000, "close": 10.0},
		map[string]any{"time": 2000, "close": 20.0},
	))
	pts := closeSeries(raw, false)
	require.Len(t, pts, 3)
	require.Equal(t, int64(1000), pts[0].ts)
	require.Equal(t, int64(3000), pts[2].ts)
}

func TestNormalizeTotalOpenInterest(t *testing.T) {
	raw := envelope(rows(map[string]any{"time": 1, "close": 27.684e9}))
	v, ok := normalizeTotalOpenInterest(raw)
	require.True(t, ok)
	require.Equal(t, 27.68, v)

	_, ok = normalizeTotalOpenInterest(envelope(rows()))
	require.False(t, ok)

	_, ok = normalizeTotalOpenInterest(map[string]any{"code": "400"})
	require.False(t, ok)
}

func TestNormalizeOIChange(t *testing.T) {
	raw := envelope(rows(
		map[string]any{"time": 1000, "close": 100.0},
		map[string]any{"time": 2000, "close": 102.0},
	))
	v, ok := normalizeOIChange(raw)
	require.True(t, ok)
	require.Equal(t, 2.0, v)

	// Zero closes are filtered, leaving too few bars.
	raw = envelope(rows(
		map[string]any{"time": 1000, "close": 0.0},
		map[string]any{"time": 2000, "close": 102.0},
	))
	_, ok = normalizeOIChange(raw)
	require.False(t, ok)
}

func TestNormalizeWeightedFunding(t *testing.T) {
	// Decimal rates are scaled to percent.
	raw := envelope(rows(map[string]any{"time": 1, "close": 0.0001}))
	v, ok := normalizeWeightedFunding(raw)
	require.True(t, ok)
	require.Equal(t, 0.01, v)

	// Already-percent values pass through.
	raw = envelope(rows(map[string]any{"time": 1, "close": 1.25}))
	v, ok = normalizeWeightedFunding(raw)
	require.True(t, ok)
	require.Equal(t, 1.25, v)
}

func TestNormalizeFundingHistory(t *testing.T) {
	items := rows(
		map[string]any{"time": 5000000, "close": 0.0005},
		map[string]any{"time": 1000000, "close": 0.0001},
		map[string]any{"time": 2000000, "close": 0.0002},
		map[string]any{"time": 3000000, "close": 0.0003},
		map[string]any{"time": 4000000, "close": 0.0004},
	)
	v, ok := normalizeFundingHistory(envelope(items))
	require.True(t, ok)

	series, isList := v.([]any)
	require.True(t, isList)
	require.Len(t, series, 5)

	first, isMap := series[0].(map[string]any)
	require.True(t, isMap)
	require.Equal(t, int64(1000), first["timestamp"])
	require.Equal(t, 0.01, first["value"])

	// Below the sparseness floor the whole series is rejected.
	_, ok = normalizeFundingHistory(envelope(items[:4]))
	require.False(t, ok)
}

func TestNormalizeLongShortGlobal(t *testing.T) {
	raw := envelope(rows(map[string]any{
		"time":                            1000,
		"global_account_long_percent":     55.5,
		"global_account_short_percent":    44.5,
		"global_account_long_short_ratio": 1.247,
	}))
	v, ok := normalizeLongShortGlobal(raw)
	require.True(t, ok)
	require.Equal(t, map[string]any{"long": 55.5, "short": 44.5, "ratio": 1.247}, v)

	// Missing ratio falls back to long/short.
	raw = envelope(rows(map[string]any{
		"global_account_long_percent":  60.0,
		"global_account_short_percent": 40.0,
	}))
	v, ok = normalizeLongShortGlobal(raw)
	require.True(t, ok)
	require.Equal(t, 1.5, v.(map[string]any)["ratio"])
}

func TestNormalizeLiquidationsTotal(t *testing.T) {
	items := make([]any, 0, 6)
	for i := 0; i < 6; i++ {
		items = append(items, map[string]any{
			"time":                             i * 1000,
			"aggregated_long_liquidation_usd":  1e6,
			"aggregated_short_liquidation_usd": 0.5e6,
		})
	}
	v, ok := normalizeLiquidationsTotal(envelope(items))
	require.True(t, ok)
	require.Equal(t, map[string]any{
		"long":          6.0,
		"short":         3.0,
		"total":         9.0,
		"long_percent":  66.7,
		"short_percent": 33.3,
	}, v)

	// Fewer than six buckets is not a full 24h window.
	_, ok = normalizeLiquidationsTotal(envelope(items[:5]))
	require.False(t, ok)
}

func TestNormalizeLiquidationEvents(t *testing.T) {
	raw := envelope(rows(
		map[string]any{"time": 1000000, "aggregated_long_liquidation_usd": 5e6, "aggregated_short_liquidation_usd": 1e6},
		map[string]any{"time": 2000000, "aggregated_long_liquidation_usd": 3e6},
	))
	v, ok := normalizeLiquidationEvents(raw)
	require.True(t, ok)

	events, isList := v.([]any)
	require.True(t, isList)
	require.Len(t, events, 3)

	top, isMap := events[0].(map[string]any)
	require.True(t, isMap)
	require.Equal(t, "long", top["side"])
	require.Equal(t, 5.0, top["amount"])
	require.Equal(t, "Aggregated", top["exchange"])
}

func TestNormalizeCoinbasePremium(t *testing.T) {
	// Newest first on this endpoint.
	raw := envelope(rows(
		map[string]any{"premium_rate": 0.0025},
		map[string]any{"premium_rate": 0.0020},
	))
	v, ok := normalizeCoinbasePremium(raw)
	require.True(t, ok)
	require.Equal(t, map[string]any{"premium": 0.25, "change_1h": 0.05}, v)

	// With a single bar the delta is unknown, not zero.
	raw = envelope(rows(map[string]any{"premium_rate": 0.0025}))
	v, ok = normalizeCoinbasePremium(raw)
	require.True(t, ok)
	require.Nil(t, v.(map[string]any)["change_1h"])
}

func TestNormalizePriceLastClose(t *testing.T) {
	raw := envelope([]any{
		[]any{1000, "44000", "45500", "43900", "44500.5", "120"},
		[]any{2000, "44500", "45600", "44100", "45000.25", "98"},
	})
	v, ok := normalizePriceLastClose(raw)
	require.True(t, ok)
	require.Equal(t, 45000.25, v)

	_, ok = normalizePriceLastClose(envelope([]any{}))
	require.False(t, ok)
}

func TestNormalizeBinanceFundingLast(t *testing.T) {
	raw := envelope(rows(
		map[string]any{"fundingTime": 1700000000000.0, "fundingRate": "0.0001"},
		map[string]any{"fundingTime": 1699971200000.0, "fundingRate": "0.0003"},
	))
	v, ok := normalizeBinanceFundingLast(raw)
	require.True(t, ok)
	require.Equal(t, map[string]any{
		"value":        0.01,
		"funding_time": int64(1700000000),
	}, v)
}

func TestNormalizeBinanceOpenInterest(t *testing.T) {
	raw := envelope(map[string]any{"openInterest": "91234.567", "symbol": "BTCUSDT"})
	v, ok := normalizeBinanceOpenInterest(raw)
	require.True(t, ok)
	require.Equal(t, 91234.57, v)

	_, ok = normalizeBinanceOpenInterest(envelope(map[string]any{"openInterest": "0"}))
	require.False(t, ok)
}

func TestNormalizeBinanceOIChange(t *testing.T) {
	raw := envelope(rows(
		map[string]any{"timestamp": 1000, "sumOpenInterestValue": "100"},
		map[string]any{"timestamp": 2000, "sumOpenInterestValue": "110"},
	))
	v, ok := normalizeBinanceOIChange(raw)
	require.True(t, ok)
	require.Equal(t, 10.0, v)

	// Falls back to the contract-denominated field.
	raw = envelope(rows(
		map[string]any{"timestamp": 1000, "sumOpenInterest": "200"},
		map[string]any{"timestamp": 2000, "sumOpenInterest": "190"},
	))
	v, ok = normalizeBinanceOIChange(raw)
	require.True(t, ok)
	require.Equal(t, -5.0, v)
}
