package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeVolatility30d(t *testing.T) {
	flat := make([]float64, 35)
	for i := range flat {
		flat[i] = 100000
	}
	v, ok := normalizeVolatility30d(dailyCloses(flat...))
	require.True(t, ok)
	require.Equal(t, 0.0, v)

	moving := make([]float64, 35)
	for i := range moving {
		moving[i] = 100000 + float64(i%2)*1000
	}
	v, ok = normalizeVolatility30d(dailyCloses(moving...))
	require.True(t, ok)
	require.Greater(t, v.(float64), 0.0)

	_, ok = normalizeVolatility30d(dailyCloses(flat[:30]...))
	require.False(t, ok)
}

func TestNormalizeStablecoinMarketCap(t *testing.T) {
	times := make([]any, 0, 31)
	data := make([]any, 0, 31)
	for i := 0; i < 31; i++ {
		times = append(times, 1700000000000+int64(i)*dayMs)
		data = append(data, map[string]any{
			"USDT": 100e9 + float64(i)*1e9,
			"USDC": 50e9,
		})
	}
	raw := map[string]any{"code": "0", "data": map[string]any{
		"time_list": times,
		"data_list": data,
	}}
	v, ok := normalizeStablecoinMarketCap(raw)
	require.True(t, ok)
	got := v.(map[string]any)
	require.Equal(t, 180.0, got["value_b"])
	require.Equal(t, 30.0, got["change_30d_b"])
	require.Equal(t, int64(1700000000+30*86400), got["timestamp"])
	require.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, got["date"])

	// With a short history the level is still reported, the change is not.
	raw = map[string]any{"code": "0", "data": map[string]any{
		"time_list": times[:5],
		"data_list": data[:5],
	}}
	v, ok = normalizeStablecoinMarketCap(raw)
	require.True(t, ok)
	require.Nil(t, v.(map[string]any)["change_30d_b"])
}

func TestNormalizeOIGrowth30d(t *testing.T) {
	closes := make([]float64, 35)
	for i := range closes {
		closes[i] = float64(i+1) * 1e9
	}
	v, ok := normalizeOIGrowth30d(dailyCloses(closes...))
	require.True(t, ok)
	require.Equal(t, 600.0, v)

	_, ok = normalizeOIGrowth30d(dailyCloses(closes[:30]...))
	require.False(t, ok)
}

func TestNormalizeOptionsVolumeGrowth30d(t *testing.T) {
	times := make([]any, 0, 60)
	data := make([]any, 0, 60)
	for i := 0; i < 60; i++ {
		times = append(times, int64(i)*dayMs)
		vol := 1e9
		if i >= 30 {
			vol = 2e9
		}
		data = append(data, vol)
	}
	raw := map[string]any{"code": "0", "data": map[string]any{
		"time_list": times,
		"data_list": data,
	}}
	v, ok := normalizeOptionsVolumeGrowth30d(raw)
	require.True(t, ok)
	require.Equal(t, 100.0, v)

	raw = map[string]any{"code": "0", "data": map[string]any{
		"time_list": times[:59],
		"data_list": data[:59],
	}}
	_, ok = normalizeOptionsVolumeGrowth30d(raw)
	require.False(t, ok)
}

func etfRows() []any {
	return rows(
		map[string]any{
			"fund_name": "iShares Bitcoin Trust",
			"fund_type": "Spot",
			"region":    "us",
			"asset_details": []any{
				map[string]any{"holding_quantity": 300000.0},
			},
		},
		map[string]any{
			"fund_name": "Grayscale Bitcoin Trust",
			"fund_type": "Spot",
			"region":    "us",
			"asset_details": []any{
				map[string]any{"holding_quantity": 200000.0},
			},
		},
		map[string]any{
			"fund_name": "Asia Spot Bitcoin ETF",
			"fund_type": "Spot",
			"region":    "hk",
			"asset_details": []any{
				map[string]any{"holding_quantity": 5000.0},
			},
		},
		map[string]any{
			"fund_name": "Bitcoin Strategy Fund",
			"fund_type": "Futures",
			"region":    "us",
			"asset_details": []any{
				map[string]any{"holding_quantity": 9000.0},
			},
		},
	)
}

func TestNormalizeETFHoldings(t *testing.T) {
	v, ok := normalizeETFHoldings(envelope(etfRows()))
	require.True(t, ok)
	require.Equal(t, map[string]any{"value": 500000.0, "funds": 2}, v)

	_, ok = normalizeETFHoldings(envelope(rows()))
	require.False(t, ok)
}

func TestNormalizeGrayscaleHoldings(t *testing.T) {
	v, ok := normalizeGrayscaleHoldings(envelope(etfRows()))
	require.True(t, ok)
	require.Equal(t, map[string]any{"value": 200000.0, "funds": 1}, v)

	// No Grayscale product in the list means no value, not zero.
	raw := envelope(rows(map[string]any{
		"fund_name": "iShares Bitcoin Trust",
		"fund_type": "Spot",
		"region":    "us",
		"asset_details": []any{
			map[string]any{"holding_quantity": 300000.0},
		},
	}))
	_, ok = normalizeGrayscaleHoldings(raw)
	require.False(t, ok)
}
